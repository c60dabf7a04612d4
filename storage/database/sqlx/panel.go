package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core/panel"
)

const panelColumns = `id, name, department, description, is_active, created_by, created_at, updated_at`

type panelRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Department  string    `db:"department"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r panelRow) toModel(memberIDs []string) panel.Panel {
	if memberIDs == nil {
		memberIDs = []string{}
	}
	return panel.Panel{
		ID:          r.ID,
		Name:        r.Name,
		Department:  r.Department,
		MemberIDs:   memberIDs,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type panelMemberRow struct {
	PanelID      string `db:"panel_id"`
	SupervisorID string `db:"supervisor_id"`
}

type panelRepository struct {
	store
}

var _ panel.Repository = (*panelRepository)(nil) // interface compliance check

func NewPanelRepository(db *sqlx.DB) panel.Repository {
	return &panelRepository{store: newStore(db)}
}

func (repo *panelRepository) members(ctx context.Context, ids []string) (map[string][]string, error) {
	var rows []panelMemberRow
	q := `SELECT panel_id, supervisor_id FROM panel_member WHERE panel_id = ANY($1) ORDER BY panel_id, supervisor_id`
	if err := sqlx.SelectContext(ctx, repo.getExec(ctx), &rows, q, pq.Array(ids)); err != nil {
		return nil, wrap(err, "selecting panel members")
	}
	members := make(map[string][]string, len(ids))
	for _, r := range rows {
		members[r.PanelID] = append(members[r.PanelID], r.SupervisorID)
	}
	return members, nil
}

func (repo *panelRepository) setMembers(ctx context.Context, panelID string, memberIDs []string) error {
	exec := repo.getExec(ctx)
	if _, err := exec.ExecContext(ctx, `DELETE FROM panel_member WHERE panel_id = $1`, panelID); err != nil {
		return wrap(err, "clearing panel members")
	}
	for _, id := range memberIDs {
		q := `INSERT INTO panel_member (panel_id, supervisor_id) VALUES ($1, $2)`
		if _, err := exec.ExecContext(ctx, q, panelID, id); err != nil {
			return wrap(err, "inserting panel member")
		}
	}
	return nil
}

func (repo *panelRepository) CreatePanel(ctx context.Context, pnl panel.Panel) (panel.Panel, error) {
	var saved panel.Panel
	err := repo.tx.WithinTx(ctx, func(ctx context.Context) error {
		var row panelRow
		q := `INSERT INTO panel (` + panelColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + panelColumns
		err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
			pnl.ID, pnl.Name, pnl.Department, pnl.Description, pnl.IsActive, pnl.CreatedBy,
			pnl.CreatedAt.UTC(), pnl.UpdatedAt.UTC(),
		)
		if err != nil {
			return wrap(err, "inserting panel")
		}
		if err = repo.setMembers(ctx, pnl.ID, pnl.MemberIDs); err != nil {
			return err
		}
		saved = row.toModel(append([]string{}, pnl.MemberIDs...))
		return nil
	})
	return saved, err
}

func (repo *panelRepository) GetPanelByID(ctx context.Context, id string) (panel.Panel, error) {
	var row panelRow
	q := `SELECT ` + panelColumns + ` FROM panel WHERE id = $1` + forUpdate(ctx)
	if err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q, id); err != nil {
		return panel.Panel{}, trapNoRowsErr(err, panel.ErrNotFound, "selecting panel")
	}
	members, err := repo.members(ctx, []string{id})
	if err != nil {
		return panel.Panel{}, err
	}
	return row.toModel(members[id]), nil
}

// QueryPanels returns the newest panels first.
func (repo *panelRepository) QueryPanels(ctx context.Context, filter panel.QueryFilter) ([]panel.Panel, error) {
	var w where
	if filter.Department != "" {
		w.add("department = ?", filter.Department)
	}
	if filter.MemberID != "" {
		w.add("id IN (SELECT panel_id FROM panel_member WHERE supervisor_id = ?)", filter.MemberID)
	}
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}

	var rows []panelRow
	q := repo.db.Rebind(`SELECT ` + panelColumns + ` FROM panel` + w.String() + ` ORDER BY created_at DESC, id`)
	if err := sqlx.SelectContext(ctx, repo.getExec(ctx), &rows, q, w.args...); err != nil {
		return nil, wrap(err, "querying panels")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	members, err := repo.members(ctx, ids)
	if err != nil {
		return nil, err
	}
	pnls := make([]panel.Panel, 0, len(rows))
	for _, r := range rows {
		pnls = append(pnls, r.toModel(members[r.ID]))
	}
	return pnls, nil
}

func (repo *panelRepository) UpdatePanel(ctx context.Context, pnl panel.Panel) (panel.Panel, error) {
	var saved panel.Panel
	err := repo.tx.WithinTx(ctx, func(ctx context.Context) error {
		var row panelRow
		q := `UPDATE panel SET name = $2, description = $3, is_active = $4, updated_at = $5
			WHERE id = $1
			RETURNING ` + panelColumns
		err := sqlx.GetContext(ctx, repo.getExec(ctx), &row, q,
			pnl.ID, pnl.Name, pnl.Description, pnl.IsActive, pnl.UpdatedAt.UTC(),
		)
		if err != nil {
			return trapNoRowsErr(err, panel.ErrNotFound, "updating panel")
		}
		if err = repo.setMembers(ctx, pnl.ID, pnl.MemberIDs); err != nil {
			return err
		}
		saved = row.toModel(append([]string{}, pnl.MemberIDs...))
		return nil
	})
	return saved, err
}

func (repo *panelRepository) DeletePanel(ctx context.Context, id string) error {
	res, err := repo.getExec(ctx).ExecContext(ctx, `DELETE FROM panel WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return panel.ErrInUse
		}
		return errors.Wrap(err, "deleting panel")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting panel")
	}
	if n == 0 {
		return panel.ErrNotFound
	}
	return nil
}
