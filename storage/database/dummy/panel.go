package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/fyp/core/panel"
)

type panelRepository struct {
	db *DB
}

var _ panel.Repository = (*panelRepository)(nil) // interface compliance check

func NewPanelRepository(db *DB) panel.Repository {
	return &panelRepository{db: db}
}

func (repo *panelRepository) CreatePanel(ctx context.Context, pnl panel.Panel) (panel.Panel, error) {
	pnl.MemberIDs = copyStrings(pnl.MemberIDs)
	err := repo.db.write(ctx, func(t *tables) error {
		t.panels[pnl.ID] = pnl
		return nil
	})
	if err != nil {
		return panel.Panel{}, err
	}
	return pnl, nil
}

func (repo *panelRepository) GetPanelByID(ctx context.Context, id string) (panel.Panel, error) {
	var pnl panel.Panel
	err := repo.db.read(ctx, func(t *tables) error {
		p, ok := t.panels[id]
		if !ok {
			return panel.ErrNotFound
		}
		pnl = p
		pnl.MemberIDs = copyStrings(p.MemberIDs)
		return nil
	})
	return pnl, err
}

func (repo *panelRepository) QueryPanels(ctx context.Context, filter panel.QueryFilter) ([]panel.Panel, error) {
	pnls := make([]panel.Panel, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, p := range t.panels {
			if filter.Department != "" && p.Department != filter.Department {
				continue
			}
			if filter.MemberID != "" && !containsString(p.MemberIDs, filter.MemberID) {
				continue
			}
			if filter.IsActive != nil && p.IsActive != *filter.IsActive {
				continue
			}
			p.MemberIDs = copyStrings(p.MemberIDs)
			pnls = append(pnls, p)
		}
		return nil
	})
	// newest first
	sort.Slice(pnls, func(i, j int) bool {
		if !pnls[i].CreatedAt.Equal(pnls[j].CreatedAt) {
			return pnls[i].CreatedAt.After(pnls[j].CreatedAt)
		}
		return pnls[i].ID < pnls[j].ID
	})
	return pnls, err
}

func (repo *panelRepository) UpdatePanel(ctx context.Context, pnl panel.Panel) (panel.Panel, error) {
	var saved panel.Panel
	err := repo.db.write(ctx, func(t *tables) error {
		orig, ok := t.panels[pnl.ID]
		if !ok {
			return panel.ErrNotFound
		}
		orig.Name = pnl.Name
		orig.MemberIDs = copyStrings(pnl.MemberIDs)
		orig.Description = pnl.Description
		orig.IsActive = pnl.IsActive
		orig.UpdatedAt = pnl.UpdatedAt
		t.panels[pnl.ID] = orig
		saved = orig
		saved.MemberIDs = copyStrings(orig.MemberIDs)
		return nil
	})
	return saved, err
}

func (repo *panelRepository) DeletePanel(ctx context.Context, id string) error {
	return repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.panels[id]; !ok {
			return panel.ErrNotFound
		}
		for _, sch := range t.schedules {
			if sch.PanelID == id {
				return panel.ErrInUse
			}
		}
		delete(t.panels, id)
		return nil
	})
}
