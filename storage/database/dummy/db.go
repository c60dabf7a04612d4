package dummydb

import (
	"context"
	"sync"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/project"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/core/supervisor"
)

type (
	// DB is an in-memory store. Writes are copy-on-write: a transaction works on a clone of the
	// tables and swaps it in on success, so a failed transaction leaves nothing behind.
	DB struct {
		mu     sync.RWMutex
		tables *tables
	}

	tables struct {
		supervisors map[string]supervisor.Supervisor
		groups      map[string]group.Group
		projects    map[string]project.Project
		panels      map[string]panel.Panel
		schedules   map[string]schedule.Schedule
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{
		tables: &tables{
			supervisors: make(map[string]supervisor.Supervisor),
			groups:      make(map[string]group.Group),
			projects:    make(map[string]project.Project),
			panels:      make(map[string]panel.Panel),
			schedules:   make(map[string]schedule.Schedule),
		},
	}
}

// WithinTx serializes transactions. A nested call joins the enclosing transaction.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tables); ok {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	work := db.tables.clone()
	if err := fn(context.WithValue(ctx, txKey{}, work)); err != nil {
		return err
	}
	db.tables = work
	return nil
}

// read runs fn on the transaction's tables, or on the committed ones under a read lock.
func (db *DB) read(ctx context.Context, fn func(t *tables) error) error {
	if t, ok := ctx.Value(txKey{}).(*tables); ok {
		return fn(t)
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.tables)
}

// write runs fn within a transaction.
func (db *DB) write(ctx context.Context, fn func(t *tables) error) error {
	return db.WithinTx(ctx, func(ctx context.Context) error {
		return fn(ctx.Value(txKey{}).(*tables))
	})
}

func (t *tables) clone() *tables {
	c := &tables{
		supervisors: make(map[string]supervisor.Supervisor, len(t.supervisors)),
		groups:      make(map[string]group.Group, len(t.groups)),
		projects:    make(map[string]project.Project, len(t.projects)),
		panels:      make(map[string]panel.Panel, len(t.panels)),
		schedules:   make(map[string]schedule.Schedule, len(t.schedules)),
	}
	for k, v := range t.supervisors {
		c.supervisors[k] = v
	}
	for k, v := range t.groups {
		v.MemberIDs = copyStrings(v.MemberIDs)
		c.groups[k] = v
	}
	for k, v := range t.projects {
		c.projects[k] = v
	}
	for k, v := range t.panels {
		v.MemberIDs = copyStrings(v.MemberIDs)
		c.panels[k] = v
	}
	for k, v := range t.schedules {
		c.schedules[k] = v
	}
	return c
}

// Reset drops all data. For tests.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tables = Open().tables
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
