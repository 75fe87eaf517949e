// Package entdriver implements storage.Driver on top of ent's SQL dialect
// layer. It is database-agnostic and is embedded by the sqlite and postgres
// drivers.
package entdriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"

	"github.com/papercomputeco/measures/pkg/storage"
	"github.com/papercomputeco/measures/pkg/storage/ent/schema"
)

// EntDriver provides audit log operations using an ent SQL driver.
type EntDriver struct {
	Driver *entsql.Driver
}

// New wraps drv and runs ent's auto-migration to create or update the
// audit log table. This handles append-only schema changes.
func New(ctx context.Context, drv *entsql.Driver) (*EntDriver, error) {
	migrate, err := entschema.NewMigrate(drv)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrate.Create(ctx, schema.Tables...); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &EntDriver{Driver: drv}, nil
}

// Record inserts one audit row.
func (ed *EntDriver) Record(ctx context.Context, sequence string, processed []int) (*storage.Record, error) {
	if processed == nil {
		processed = []int{}
	}

	processedJSON, err := json.Marshal(processed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal processed values: %w", err)
	}

	rec := &storage.Record{
		Sequence:  sequence,
		Processed: append([]int{}, processed...),
		CreatedAt: time.Now().UTC(),
	}

	insert := entsql.Dialect(ed.Driver.Dialect()).
		Insert(schema.HistoryTableName).
		Columns(schema.ColumnSequence, schema.ColumnProcessed, schema.ColumnCreatedAt).
		Values(rec.Sequence, string(processedJSON), rec.CreatedAt)

	id, err := ed.insert(ctx, insert)
	if err != nil {
		return nil, fmt.Errorf("could not execute history insert: %w", err)
	}
	rec.ID = id

	return rec, nil
}

// insert executes the builder and returns the generated ID. Postgres has no
// LastInsertId so the ID comes back through RETURNING.
func (ed *EntDriver) insert(ctx context.Context, insert *entsql.InsertBuilder) (int64, error) {
	if ed.Driver.Dialect() == dialect.Postgres {
		query, args := insert.Returning(schema.ColumnID).Query()

		var rows entsql.Rows
		if err := ed.Driver.Query(ctx, query, args, &rows); err != nil {
			return 0, err
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return 0, err
			}
			return 0, sql.ErrNoRows
		}

		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		return id, rows.Err()
	}

	query, args := insert.Query()

	var res sql.Result
	if err := ed.Driver.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAll returns every audit row, newest first.
func (ed *EntDriver) ListAll(ctx context.Context) ([]*storage.Record, error) {
	b := entsql.Dialect(ed.Driver.Dialect())
	query, args := b.Select(
		schema.ColumnID,
		schema.ColumnSequence,
		schema.ColumnProcessed,
		schema.ColumnCreatedAt,
	).
		From(b.Table(schema.HistoryTableName)).
		OrderBy(entsql.Desc(schema.ColumnID)).
		Query()

	var rows entsql.Rows
	if err := ed.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*storage.Record
	for rows.Next() {
		var (
			rec           storage.Record
			processedJSON []byte
		)

		if err := rows.Scan(&rec.ID, &rec.Sequence, &processedJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal(processedJSON, &rec.Processed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal processed values for row %d: %w", rec.ID, err)
		}

		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	if records == nil {
		records = []*storage.Record{}
	}
	return records, nil
}

// Close closes the underlying database connection.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}
