package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	upsertRecordSQL = `
INSERT INTO records (
                     record_id,
                     name,
                     source,
                     imported_at,
                     start_frequency,
                     stop_frequency,
                     reference_level,
                     scale,
                     num_samples,
                     powers)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
    record_id       = excluded.record_id,
    source          = excluded.source,
    imported_at     = excluded.imported_at,
    start_frequency = excluded.start_frequency,
    stop_frequency  = excluded.stop_frequency,
    reference_level = excluded.reference_level,
    scale           = excluded.scale,
    num_samples     = excluded.num_samples,
    powers          = excluded.powers`

	selectRecordIDSQL = `
SELECT 
    id 
FROM records 
WHERE 
    name = ?`

	selectRecordSQL = `
SELECT 
    record_id, 
    name, 
    start_frequency, 
    stop_frequency, 
    reference_level, 
    scale, 
    powers 
FROM records 
WHERE 
    name = ?`

	selectRecordsSQL = `
SELECT 
    id, 
    name, 
    source, 
    imported_at, 
    start_frequency, 
    stop_frequency, 
    reference_level, 
    scale, 
    num_samples 
FROM records 
ORDER BY name`

	deleteRecordSQL = `
DELETE FROM records 
WHERE 
    name = ?`
)
