// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jazzpetri/bisep/clock"
	"github.com/jazzpetri/bisep/petri"
	"github.com/jazzpetri/bisep/separator"
)

// timeLayout has fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Record is a stored separator together with the markings it separates and
// the outcome of checking it.
type Record struct {
	ID        string
	Net       string
	Source    petri.Marking
	Target    petri.Marking
	Formula   *separator.Formula
	Valid     bool
	CreatedAt time.Time
}

// Catalog is a SQLite-backed collection of records.
type Catalog struct {
	db    *sql.DB
	clock clock.Clock
}

// OpenCatalog opens or creates the catalogue at path. ":memory:" yields a
// private in-memory catalogue. A nil clk means the real-time clock.
func OpenCatalog(path string, clk clock.Clock) (*Catalog, error) {
	if clk == nil {
		clk = clock.NewRealTimeClock()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db, clock: clk}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS separators (
		id TEXT PRIMARY KEY,
		net TEXT NOT NULL,
		source JSON NOT NULL,
		target JSON NOT NULL,
		formula JSON NOT NULL,
		size TEXT NOT NULL,
		valid INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_separators_net ON separators(net);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Put stores r and returns its id. A record without id gets a fresh UUID;
// an existing id is overwritten.
func (c *Catalog) Put(ctx context.Context, r Record) (string, error) {
	if r.Formula == nil {
		return "", fmt.Errorf("record has no formula")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = c.clock.Now()
	}
	formula, err := separator.EncodeJSON(r.Formula)
	if err != nil {
		return "", fmt.Errorf("failed to encode formula: %w", err)
	}
	source, err := json.Marshal([]float64(r.Source))
	if err != nil {
		return "", fmt.Errorf("failed to encode source marking: %w", err)
	}
	target, err := json.Marshal([]float64(r.Target))
	if err != nil {
		return "", fmt.Errorf("failed to encode target marking: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO separators (id, net, source, target, formula, size, valid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Net, string(source), string(target), string(formula), r.Formula.Size(), r.Valid,
		r.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return r.ID, nil
}

// Get returns the record with the given id.
func (c *Catalog) Get(ctx context.Context, id string) (*Record, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, net, source, target, formula, valid, created_at
		FROM separators WHERE id = ?
	`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// List returns the records for net, oldest first. An empty net lists every
// record.
func (c *Catalog) List(ctx context.Context, net string) ([]*Record, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, net, source, target, formula, valid, created_at
		FROM separators WHERE ? = '' OR net = ?
		ORDER BY created_at, id
	`, net, net)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return out, nil
}

// Delete removes the record with the given id.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM separators WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		r                              Record
		source, target, formula, stamp string
	)
	if err := s.Scan(&r.ID, &r.Net, &source, &target, &formula, &r.Valid, &stamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	if err := json.Unmarshal([]byte(source), &r.Source); err != nil {
		return nil, fmt.Errorf("record %s: failed to decode source marking: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(target), &r.Target); err != nil {
		return nil, fmt.Errorf("record %s: failed to decode target marking: %w", r.ID, err)
	}
	f, err := separator.DecodeJSON([]byte(formula))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	r.Formula = f
	created, err := time.Parse(timeLayout, stamp)
	if err != nil {
		return nil, fmt.Errorf("record %s: failed to parse timestamp: %w", r.ID, err)
	}
	r.CreatedAt = created
	return &r, nil
}
