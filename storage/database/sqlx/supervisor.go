package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/fyp/core/supervisor"
)

const supervisorColumns = `id, name, email, designation, department, max_students, current_student_count,
	is_available_for_supervision, created_at, updated_at`

type supervisorRow struct {
	ID                        string    `db:"id"`
	Name                      string    `db:"name"`
	Email                     string    `db:"email"`
	Designation               string    `db:"designation"`
	Department                string    `db:"department"`
	MaxStudents               int       `db:"max_students"`
	CurrentStudentCount       int       `db:"current_student_count"`
	IsAvailableForSupervision bool      `db:"is_available_for_supervision"`
	CreatedAt                 time.Time `db:"created_at"`
	UpdatedAt                 time.Time `db:"updated_at"`
}

func (r supervisorRow) toModel() supervisor.Supervisor {
	return supervisor.Supervisor{
		ID:                        r.ID,
		Name:                      r.Name,
		Email:                     r.Email,
		Designation:               r.Designation,
		Department:                r.Department,
		MaxStudents:               r.MaxStudents,
		CurrentStudentCount:       r.CurrentStudentCount,
		IsAvailableForSupervision: r.IsAvailableForSupervision,
		CreatedAt:                 r.CreatedAt.UTC(),
		UpdatedAt:                 r.UpdatedAt.UTC(),
	}
}

func supervisorsToModels(rows []supervisorRow) []supervisor.Supervisor {
	sups := make([]supervisor.Supervisor, 0, len(rows))
	for _, r := range rows {
		sups = append(sups, r.toModel())
	}
	return sups
}

type supervisorRepository struct {
	store
}

var _ supervisor.Repository = (*supervisorRepository)(nil) // interface compliance check

func NewSupervisorRepository(db *sqlx.DB) supervisor.Repository {
	return &supervisorRepository{store: newStore(db)}
}

func (repo *supervisorRepository) CreateSupervisor(ctx context.Context, sup supervisor.Supervisor) (supervisor.Supervisor, error) {
	var row supervisorRow
	q := `INSERT INTO supervisor (` + supervisorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + supervisorColumns
	err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
		sup.ID, sup.Name, sup.Email, sup.Designation, sup.Department, sup.MaxStudents,
		sup.CurrentStudentCount, sup.IsAvailableForSupervision, sup.CreatedAt.UTC(), sup.UpdatedAt.UTC(),
	)
	if err != nil {
		return supervisor.Supervisor{}, wrap(err, "inserting supervisor")
	}
	return row.toModel(), nil
}

func (repo *supervisorRepository) GetSupervisorByID(ctx context.Context, id string) (supervisor.Supervisor, error) {
	var row supervisorRow
	q := `SELECT ` + supervisorColumns + ` FROM supervisor WHERE id = $1` + forUpdate(ctx)
	if err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q, id); err != nil {
		return supervisor.Supervisor{}, trapNoRowsErr(err, supervisor.ErrNotFound, "selecting supervisor")
	}
	return row.toModel(), nil
}

// GetSupervisorsByID skips unknown ids.
func (repo *supervisorRepository) GetSupervisorsByID(ctx context.Context, ids ...string) ([]supervisor.Supervisor, error) {
	if len(ids) == 0 {
		return []supervisor.Supervisor{}, nil
	}
	var rows []supervisorRow
	q := `SELECT ` + supervisorColumns + ` FROM supervisor WHERE id = ANY($1) ORDER BY id`
	if err := sqlx.SelectContext(ctx, repo.getExec(ctx), &rows, q, pq.Array(ids)); err != nil {
		return nil, wrap(err, "selecting supervisors")
	}
	return supervisorsToModels(rows), nil
}

func (repo *supervisorRepository) QuerySupervisors(ctx context.Context, filter supervisor.QueryFilter) ([]supervisor.Supervisor, error) {
	var w where
	if filter.Department != "" {
		w.add("department = ?", filter.Department)
	}
	var rows []supervisorRow
	q := repo.db.Rebind(`SELECT ` + supervisorColumns + ` FROM supervisor` + w.String() + ` ORDER BY name, id`)
	if err := sqlx.SelectContext(ctx, repo.getExec(ctx), &rows, q, w.args...); err != nil {
		return nil, wrap(err, "querying supervisors")
	}
	return supervisorsToModels(rows), nil
}

func (repo *supervisorRepository) UpdateSupervisorCapacity(ctx context.Context, sup supervisor.Supervisor) (supervisor.Supervisor, error) {
	var row supervisorRow
	q := `UPDATE supervisor
		SET max_students = $2, current_student_count = $3, is_available_for_supervision = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + supervisorColumns
	err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
		sup.ID, sup.MaxStudents, sup.CurrentStudentCount, sup.IsAvailableForSupervision, sup.UpdatedAt.UTC(),
	)
	if err != nil {
		return supervisor.Supervisor{}, trapNoRowsErr(err, supervisor.ErrNotFound, "updating supervisor capacity")
	}
	return row.toModel(), nil
}
