package equity

import "github.com/shopspring/decimal"

// Constitutional thresholds. These are fixed by the company's
// constitution and are not runtime configuration.
var (
	// approval percentages
	SpecialResolutionPct  = decimal.New(75, 0)
	OrdinaryResolutionPct = decimal.NewFromFloat(50.01)
	OrdinaryQuorumPct     = decimal.New(50, 0)
	UnanimousPct          = decimal.New(100, 0)

	// action triggers
	TransferSpecialThresholdPct   = decimal.New(10, 0)
	IssuanceDilutionThresholdPct  = decimal.New(20, 0)
	RepurchaseSpecialThresholdPct = decimal.New(10, 0)
	ChangeOfControlPct            = decimal.New(25, 0)

	// borrowing beyond this amount requires a special resolution
	BorrowingThreshold = decimal.New(1000000, 0)
)

// Notice lead times and workflow durations, in calendar days.
const (
	ROFRWindowDays              = 30
	MeetingNoticeDays           = 30
	QualifiedOfferingNoticeDays = 10
	MergerNoticeDays            = 45

	ConversionWorkflowDays = 5
	MergerWorkflowDays     = 60
)

// An amendment touching more than this many share classes requires
// unanimous consent.
const AmendmentClassLimit = 3
