package storage

import (
	"database/sql"
	"time"

	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && cErr != sql.ErrTxDone && *err == nil {
		*err = cErr
	}
}

func toRecordData(r *spectrum.Record, source string, importedAt time.Time) *recordData {
	return &recordData{
		// identities are hashes and may use the top bit, SQLite only stores signed integers
		RecordID: int64(r.ID()),
		Name:     r.Name(),
		Source: sql.NullString{
			String: source,
			Valid:  source != "",
		},
		ImportedAt:     importedAt.UTC(),
		StartFrequency: r.StartFrequency(),
		StopFrequency:  r.StopFrequency(),
		ReferenceLevel: float64(r.ReferenceLevel()),
		Scale:          float64(r.Scale()),
		NumSamples:     r.Len(),
		Powers:         r.EncodedPowers(),
	}
}

func fromRecordData(d *recordData) (*spectrum.Record, error) {
	return spectrum.NewRecordWithID(
		uint64(d.RecordID),
		d.Name,
		d.StartFrequency,
		d.StopFrequency,
		float32(d.ReferenceLevel),
		float32(d.Scale),
		d.Powers,
	)
}
