package models

// JournalCursor is the publish watermark for the ledger journal
// worker. One row per topic; LastSequence is the highest ledger
// entry sequence already delivered downstream.
type JournalCursor struct {
	Topic        string `gorm:"primary_key" sql:"type:text NOT NULL"`
	LastSequence uint   `gorm:"not null"`
}
