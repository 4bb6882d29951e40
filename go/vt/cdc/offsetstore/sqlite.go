/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package offsetstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

const (
	sqliteCreateTable = `CREATE TABLE IF NOT EXISTS connector_positions (
  name TEXT NOT NULL PRIMARY KEY,
  position TEXT NOT NULL,
  updated_at INTEGER NOT NULL
)`
	sqliteSelect = `SELECT position, updated_at FROM connector_positions WHERE name = ?`
	sqliteUpsert = `INSERT INTO connector_positions (name, position, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET position = excluded.position, updated_at = excluded.updated_at`
)

func init() {
	RegisterFactory("sqlite", func(dsn string) (Store, error) {
		return NewSQLite(context.Background(), dsn)
	})
}

// SQLite is a Store backed by a table in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database described by dsn and creates the positions
// table if needed.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	if dsn == "" {
		return nil, vterrors.New(vterrors.InvalidArgument, "sqlite offset store needs a DSN")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; serializing here avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteCreateTable); err != nil {
		db.Close()
		return nil, vterrors.Wrap(err, "cannot create positions table")
	}
	return &SQLite{db: db}, nil
}

// Load is part of the Store interface.
func (s *SQLite) Load(ctx context.Context, name string) (replication.PositionSet, error) {
	rec, err := s.LoadRecord(ctx, name)
	return rec.Position, err
}

// LoadRecord is part of the Store interface.
func (s *SQLite) LoadRecord(ctx context.Context, name string) (Record, error) {
	if err := checkName(name); err != nil {
		return Record{}, err
	}
	var (
		rec       record
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, sqliteSelect, name).Scan(&rec.Position, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, notFound(name)
	}
	if err != nil {
		return Record{}, vterrors.Wrapf(err, "cannot load position for %q", name)
	}
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return rec.decode(name)
}

// Save is part of the Store interface.
func (s *SQLite) Save(ctx context.Context, name string, pos replication.PositionSet) error {
	if err := checkName(name); err != nil {
		return err
	}
	rec := newRecord(pos)
	if _, err := s.db.ExecContext(ctx, sqliteUpsert, name, rec.Position, rec.UpdatedAt.UnixNano()); err != nil {
		return vterrors.Wrapf(err, "cannot save position for %q", name)
	}
	return nil
}

// Close is part of the Store interface.
func (s *SQLite) Close() error {
	return s.db.Close()
}
