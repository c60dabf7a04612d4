package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/fyp/core/supervisor"
)

type supervisorRepository struct {
	db *DB
}

var _ supervisor.Repository = (*supervisorRepository)(nil) // interface compliance check

func NewSupervisorRepository(db *DB) supervisor.Repository {
	return &supervisorRepository{db: db}
}

func (repo *supervisorRepository) CreateSupervisor(ctx context.Context, sup supervisor.Supervisor) (supervisor.Supervisor, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		for _, s := range t.supervisors {
			if s.Email == sup.Email {
				return supervisor.ErrEmailExists
			}
		}
		if err := checkCapacity(sup); err != nil {
			return err
		}
		t.supervisors[sup.ID] = sup
		return nil
	})
	if err != nil {
		return supervisor.Supervisor{}, err
	}
	return sup, nil
}

func (repo *supervisorRepository) GetSupervisorByID(ctx context.Context, id string) (supervisor.Supervisor, error) {
	var sup supervisor.Supervisor
	err := repo.db.read(ctx, func(t *tables) error {
		s, ok := t.supervisors[id]
		if !ok {
			return supervisor.ErrNotFound
		}
		sup = s
		return nil
	})
	return sup, err
}

func (repo *supervisorRepository) GetSupervisorsByID(ctx context.Context, ids ...string) ([]supervisor.Supervisor, error) {
	sups := make([]supervisor.Supervisor, 0, len(ids))
	err := repo.db.read(ctx, func(t *tables) error {
		for _, id := range ids {
			if s, ok := t.supervisors[id]; ok {
				sups = append(sups, s)
			}
		}
		return nil
	})
	return sups, err
}

func (repo *supervisorRepository) QuerySupervisors(ctx context.Context, filter supervisor.QueryFilter) ([]supervisor.Supervisor, error) {
	sups := make([]supervisor.Supervisor, 0)
	err := repo.db.read(ctx, func(t *tables) error {
		for _, s := range t.supervisors {
			if filter.Department != "" && s.Department != filter.Department {
				continue
			}
			sups = append(sups, s)
		}
		return nil
	})
	sort.Slice(sups, func(i, j int) bool {
		if sups[i].Name != sups[j].Name {
			return sups[i].Name < sups[j].Name
		}
		return sups[i].ID < sups[j].ID
	})
	return sups, err
}

func (repo *supervisorRepository) UpdateSupervisorCapacity(ctx context.Context, sup supervisor.Supervisor) (supervisor.Supervisor, error) {
	var saved supervisor.Supervisor
	err := repo.db.write(ctx, func(t *tables) error {
		orig, ok := t.supervisors[sup.ID]
		if !ok {
			return supervisor.ErrNotFound
		}
		if err := checkCapacity(sup); err != nil {
			return err
		}
		orig.MaxStudents = sup.MaxStudents
		orig.CurrentStudentCount = sup.CurrentStudentCount
		orig.IsAvailableForSupervision = sup.IsAvailableForSupervision
		orig.UpdatedAt = sup.UpdatedAt
		t.supervisors[sup.ID] = orig
		saved = orig
		return nil
	})
	return saved, err
}

// checkCapacity mirrors the database CHECK on supervisors' load.
func checkCapacity(sup supervisor.Supervisor) error {
	if sup.MaxStudents < 0 || sup.CurrentStudentCount < 0 {
		return supervisor.ErrInvalidCapacity
	}
	if sup.CurrentStudentCount > sup.MaxStudents {
		return supervisor.ErrCapacityExceeded
	}
	return nil
}
