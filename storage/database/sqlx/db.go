package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/project"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/core/supervisor"
)

type txKey struct{}

// Transactor runs functions in a Postgres transaction carried by the context.
type Transactor struct {
	db *sqlx.DB
}

var _ core.Transactor = (*Transactor)(nil) // interface compliance check

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx commits if fn succeeds and rolls back otherwise. A nested call joins the enclosing transaction.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return mapPGError(errors.Wrap(err, "committing transaction"))
	}
	return nil
}

// store is embedded by every repository.
type store struct {
	db *sqlx.DB
	tx *Transactor
}

func newStore(db *sqlx.DB) store {
	return store{db: db, tx: NewTransactor(db)}
}

// getExec returns the transaction carried by ctx, or the pool.
func (s store) getExec(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// forUpdate locks the selected rows until the end of the transaction, if there is one.
func forUpdate(ctx context.Context) string {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return " FOR UPDATE"
	}
	return ""
}

// constraintErrs maps constraint names to the domain error their violation stands for.
var constraintErrs = map[string]error{
	"supervisor_email_key":             supervisor.ErrEmailExists,
	"supervisor_bounds_check":          supervisor.ErrInvalidCapacity,
	"supervisor_count_check":           supervisor.ErrCapacityExceeded,
	"student_group_supervisor_id_fkey": supervisor.ErrNotFound,
	"group_student_pkey":               group.ErrStudentInGroup,
	"project_group_id_key":             project.ErrExists,
	"project_group_id_fkey":            group.ErrNotFound,
	"project_supervisor_id_fkey":       supervisor.ErrNotFound,
	"panel_member_supervisor_id_fkey":  panel.ErrMemberNotFound,
	"schedule_group_id_key":            schedule.ErrGroupAlreadyScheduled,
	"schedule_room_slot_key":           schedule.ErrRoomConflict,
	"schedule_panel_slot_key":          schedule.ErrPanelConflict,
	"schedule_group_id_fkey":           group.ErrNotFound,
	"schedule_panel_id_fkey":           panel.ErrNotFound,
}

// mapPGError turns unique (23505), foreign key (23503) and check (23514) violations into domain errors.
func mapPGError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505", "23503", "23514":
		if domainErr, ok := constraintErrs[pqErr.Constraint]; ok {
			return domainErr
		}
	}
	return err
}

// trapNoRowsErr maps "no rows" to notFound and wraps any other error with msg.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if mapped := mapPGError(err); mapped != err {
		return mapped
	}
	return errors.Wrap(err, msg)
}

// wrap maps constraint violations and wraps any other error with msg.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if mapped := mapPGError(err); mapped != err {
		return mapped
	}
	return errors.Wrap(err, msg)
}

// where accumulates the conditions of a dynamic WHERE clause. Conditions use "?" placeholders;
// queries are rebound to the driver's bindvars before running.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.args = append(w.args, args...)
	w.conds = append(w.conds, cond)
}

func (w where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
