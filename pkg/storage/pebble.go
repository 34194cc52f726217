// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package storage

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/groupflow/pkg/sql/catalog"
	"github.com/cockroachdb/groupflow/pkg/sql/row"
	"github.com/cockroachdb/groupflow/pkg/sql/rowtype"
	"github.com/cockroachdb/groupflow/pkg/util/log"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// pebbleLogger routes pebble's logging to the log package.
type pebbleLogger struct {
	ctx context.Context
}

var _ pebble.Logger = pebbleLogger{}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	log.InfofDepth(l.ctx, 1, format, args...)
}

func (l pebbleLogger) Errorf(format string, args ...interface{}) {
	log.Errorf(l.ctx, format, args...)
}

func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	log.Errorf(l.ctx, format, args...)
	panic(errors.Newf(format, args...))
}

// PebbleEngine is an Engine backed by a pebble database.
type PebbleEngine struct {
	schema *rowtype.Schema
	db     *pebble.DB
}

var _ Engine = (*PebbleEngine)(nil)

// NewPebbleEngine opens, creating it if needed, a pebble database in dir. A nil
// fs means the local filesystem; tests pass vfs.NewMem().
func NewPebbleEngine(
	ctx context.Context, schema *rowtype.Schema, dir string, fs vfs.FS,
) (*PebbleEngine, error) {
	if fs == nil {
		fs = vfs.Default
	}
	ctx = logtags.AddTag(ctx, "pebble", nil)
	db, err := pebble.Open(dir, &pebble.Options{
		FS:     fs,
		Logger: pebbleLogger{ctx: ctx},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening pebble store in %q", dir)
	}
	return &PebbleEngine{schema: schema, db: db}, nil
}

// PutRow implements Writer.
func (e *PebbleEngine) PutRow(_ context.Context, r *row.TableRow) error {
	g := r.RowType().Table().Group()
	key, err := EncodeRowKey(g, r)
	if err != nil {
		return err
	}
	value, err := EncodeRowValue(r)
	if err != nil {
		return err
	}
	return e.db.Set(key, value, pebble.NoSync)
}

// Flush syncs written rows to disk.
func (e *PebbleEngine) Flush() error {
	return e.db.Flush()
}

// NewGroupIterator implements Reader.
func (e *PebbleEngine) NewGroupIterator(
	_ context.Context, g *catalog.Group, span Span,
) (RowIterator, error) {
	iter, err := e.db.NewIter(&pebble.IterOptions{
		LowerBound: span.Key,
		UpperBound: span.EndKey,
	})
	if err != nil {
		return nil, err
	}
	return &pebbleIterator{iter: iter, decoder: makeRowDecoder(e.schema, g)}, nil
}

// Close implements Engine.
func (e *PebbleEngine) Close() {
	if err := e.db.Close(); err != nil {
		log.Warningf(context.Background(), "closing pebble: %v", err)
	}
}

type pebbleIterator struct {
	iter    *pebble.Iterator
	decoder rowDecoder
	started bool
}

func (it *pebbleIterator) Next() (*row.TableRow, error) {
	if it.iter == nil {
		return nil, nil
	}
	var valid bool
	if !it.started {
		valid = it.iter.First()
		it.started = true
	} else {
		valid = it.iter.Next()
	}
	if !valid {
		return nil, it.iter.Error()
	}
	return it.decoder.decode(it.iter.Key(), it.iter.Value())
}

func (it *pebbleIterator) Close() {
	if it.iter == nil {
		return
	}
	if err := it.iter.Close(); err != nil {
		log.Warningf(context.Background(), "closing pebble iterator: %v", err)
	}
	it.iter = nil
}
