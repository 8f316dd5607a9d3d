package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
)

// ErrNotFound is returned when no record with the requested name is archived.
var ErrNotFound = errors.New("record not found")

// SqliteStore archives decoded spectrum records in a SQLite database
type SqliteStore struct {
	dbPath string
	now    func() time.Time

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the database at dbPath. Connections
// are opened on first use; the schema is created with the first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath, now: time.Now}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// SaveRecord stores r under its name, replacing any record archived with the same
// name, and returns its row ID. source is the path r was decoded from and may be empty.
func (s *SqliteStore) SaveRecord(ctx context.Context, r *spectrum.Record, source string) (id int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("beginning transaction: %w", err)
		return
	}
	defer rollbackWithError(tx, &err)

	data := toRecordData(r, source, s.now())
	if _, err = tx.ExecContext(
		ctx,
		upsertRecordSQL,
		data.RecordID,
		data.Name,
		data.Source,
		data.ImportedAt,
		data.StartFrequency,
		data.StopFrequency,
		data.ReferenceLevel,
		data.Scale,
		data.NumSamples,
		data.Powers,
	); err != nil {
		err = fmt.Errorf("upserting record: %w", err)
		return
	}

	// LastInsertId is not reliable when the upsert took the update path
	if err = tx.QueryRowContext(ctx, selectRecordIDSQL, data.Name).Scan(&id); err != nil {
		err = fmt.Errorf("getting record ID: %w", err)
		return
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("committing transaction: %w", err)
	}
	return
}

// Record loads the archived record with the given name.
func (s *SqliteStore) Record(ctx context.Context, name string) (record *spectrum.Record, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRecordSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data recordData
	err = stmt.QueryRowContext(ctx, name).Scan(
		&data.RecordID,
		&data.Name,
		&data.StartFrequency,
		&data.StopFrequency,
		&data.ReferenceLevel,
		&data.Scale,
		&data.Powers,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %s", ErrNotFound, name)
		return
	}
	if err != nil {
		err = fmt.Errorf("scanning record: %w", err)
		return
	}

	if record, err = fromRecordData(&data); err != nil {
		err = fmt.Errorf("restoring record %s: %w", name, err)
	}
	return
}

// Records lists every archived record ordered by name.
func (s *SqliteStore) Records(ctx context.Context) (records []*RecordInfo, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRecordsSQL)
	if err != nil {
		err = fmt.Errorf("querying records: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data recordData
		var info RecordInfo
		if err = rows.Scan(
			&info.ID,
			&data.Name,
			&data.Source,
			&data.ImportedAt,
			&data.StartFrequency,
			&data.StopFrequency,
			&data.ReferenceLevel,
			&data.Scale,
			&data.NumSamples,
		); err != nil {
			err = fmt.Errorf("scanning record: %w", err)
			return
		}

		info.Name = data.Name
		if data.Source.Valid {
			info.Source = &data.Source.String
		}
		info.ImportedAt = data.ImportedAt
		info.StartFrequency = data.StartFrequency
		info.StopFrequency = data.StopFrequency
		info.ReferenceLevel = float32(data.ReferenceLevel)
		info.Scale = float32(data.Scale)
		info.NumSamples = data.NumSamples
		records = append(records, &info)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating records: %w", err)
	}
	return
}

// DeleteRecord removes the archived record with the given name and reports whether
// one existed.
func (s *SqliteStore) DeleteRecord(ctx context.Context, name string) (deleted bool, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	result, err := db.ExecContext(ctx, deleteRecordSQL, name)
	if err != nil {
		err = fmt.Errorf("deleting record: %w", err)
		return
	}

	n, err := result.RowsAffected()
	if err != nil {
		err = fmt.Errorf("getting affected rows: %w", err)
		return
	}
	return n > 0, nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
