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
	"errors"
	"net/url"
	"os"
	"path"
	"sync"

	"github.com/spf13/afero"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

func init() {
	RegisterFactory("file", func(dir string) (Store, error) {
		if dir == "" {
			return nil, vterrors.New(vterrors.InvalidArgument, "file offset store needs a directory")
		}
		return NewFile(afero.NewBasePathFs(afero.NewOsFs(), dir))
	})
}

// File is a Store that keeps one JSON file per connector name. Every
// save writes a temporary file and renames it over the previous one, so a
// crash never leaves a half written position behind.
type File struct {
	fs afero.Fs
	mu sync.Mutex
}

// NewFile returns a File store rooted at the top of fs.
func NewFile(fs afero.Fs) (*File, error) {
	if err := fs.MkdirAll("/", 0o755); err != nil {
		return nil, err
	}
	return &File{fs: fs}, nil
}

func (f *File) filename(name string) string {
	return path.Join("/", url.PathEscape(name)+".json")
}

// Load is part of the Store interface.
func (f *File) Load(ctx context.Context, name string) (replication.PositionSet, error) {
	rec, err := f.LoadRecord(ctx, name)
	return rec.Position, err
}

// LoadRecord is part of the Store interface.
func (f *File) LoadRecord(ctx context.Context, name string) (Record, error) {
	if err := checkName(name); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	data, err := afero.ReadFile(f.fs, f.filename(name))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, notFound(name)
	}
	if err != nil {
		return Record{}, vterrors.Wrapf(err, "cannot read position for %q", name)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, vterrors.Wrapf(err, "corrupt position file for %q", name)
	}
	return rec.decode(name)
}

// Save is part of the Store interface.
func (f *File) Save(ctx context.Context, name string, pos replication.PositionSet) error {
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

	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.filename(name)
	tmp := target + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o600); err != nil {
		return vterrors.Wrapf(err, "cannot write position for %q", name)
	}
	if err := f.fs.Rename(tmp, target); err != nil {
		_ = f.fs.Remove(tmp)
		return vterrors.Wrapf(err, "cannot write position for %q", name)
	}
	return nil
}

// Close is part of the Store interface.
func (f *File) Close() error {
	return nil
}
