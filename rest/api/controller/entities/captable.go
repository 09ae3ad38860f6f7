package entities

type SnapshotRequest struct {
	Notes *string `json:"notes"`
}
