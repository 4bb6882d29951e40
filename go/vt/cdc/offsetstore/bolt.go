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
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

var positionsBucket = []byte("positions")

func init() {
	RegisterFactory("bolt", func(dsn string) (Store, error) {
		return NewBolt(dsn)
	})
}

// Bolt is a Store backed by a bbolt database file.
type Bolt struct {
	db *bbolt.DB
}

// NewBolt opens (or creates) the bbolt database at path.
func NewBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, vterrors.New(vterrors.InvalidArgument, "bolt offset store needs a database path")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(positionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

// Load is part of the Store interface.
func (b *Bolt) Load(ctx context.Context, name string) (replication.PositionSet, error) {
	rec, err := b.LoadRecord(ctx, name)
	return rec.Position, err
}

// LoadRecord is part of the Store interface.
func (b *Bolt) LoadRecord(ctx context.Context, name string) (Record, error) {
	if err := checkName(name); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		// Values are only valid inside the transaction.
		if v := tx.Bucket(positionsBucket).Get([]byte(name)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	if data == nil {
		return Record{}, notFound(name)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, vterrors.Wrapf(err, "corrupt position record for %q", name)
	}
	return rec.decode(name)
}

// Save is part of the Store interface.
func (b *Bolt) Save(ctx context.Context, name string, pos replication.PositionSet) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(newRecord(pos))
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(positionsBucket).Put([]byte(name), data)
	})
}

// Close is part of the Store interface.
func (b *Bolt) Close() error {
	return b.db.Close()
}
