package storage

import (
	"database/sql"
	"time"
)

// RecordInfo summarises an archived record without its samples.
type RecordInfo struct {
	ID             int64     `json:"id"`             // Row identifier
	Name           string    `json:"name"`           // Record name, unique within the archive
	Source         *string   `json:"source"`         // Path the record was imported from, if known
	ImportedAt     time.Time `json:"importedAt"`     // When the record was stored
	StartFrequency float64   `json:"startFrequency"` // MHz
	StopFrequency  float64   `json:"stopFrequency"`  // MHz
	ReferenceLevel float32   `json:"referenceLevel"` // dBm
	Scale          float32   `json:"scale"`          // dBm per division
	NumSamples     int       `json:"numSamples"`     // Number of samples
}

type recordData struct {
	RecordID       int64
	Name           string
	Source         sql.NullString
	ImportedAt     time.Time
	StartFrequency float64
	StopFrequency  float64
	ReferenceLevel float64
	Scale          float64
	NumSamples     int
	Powers         []byte
}
