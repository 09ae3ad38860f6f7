package models

import "encoding/json"

// BatchError is used to store mismatches encountered while
// reconciling the external registrar's position file against our
// holdings. Each error is unique by its composite key of processing
// date, file code, and the primary/secondary record identifiers
// (holder number and share class for position records). This keeps
// the records human readable and idempotent between runs, e.g.
// 2026-08-25|REG01|HLD00042|COMMON.
type BatchError struct {
	ProcessDate               string          `gorm:"primary_key" sql:"type:date NOT NULL"`
	FileCode                  string          `gorm:"primary_key" sql:"type:text NOT NULL"`
	PrimaryRecordIdentifier   string          `gorm:"primary_key" sql:"type:text NOT NULL"`
	SecondaryRecordIdentifier string          `gorm:"primary_key" sql:"type:text;default:''"`
	Error                     json.RawMessage `sql:"type:json"`
}

// BatchMetric stores per-file reconciliation stats - parse duration,
// record count and error count, keyed on date and file code.
type BatchMetric struct {
	ProcessDate     string `json:"date" gorm:"primary_key" sql:"type:date NOT NULL"`
	FileCode        string `json:"code" gorm:"primary_key" sql:"type:text NOT NULL"`
	ProcessDuration int    `json:"duration" sql:"type:integer NOT NULL"`
	RecordCount     uint   `json:"successes" gorm:"not null"`
	ErrorCount      uint   `json:"failures" gorm:"not null"`
}
