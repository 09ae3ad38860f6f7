package partials

// Partial is the content block rendered inside the base layout.
type Partial string
