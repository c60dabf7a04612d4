package supervisor

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
)

var (
	// errors
	ErrNotFound         = core.NewError(core.KindNotFound, "supervisor_not_found", "supervisor not found")
	ErrUnavailable      = core.NewError(core.KindSupervisorUnavailable, "supervisor_unavailable", "supervisor is not available for supervision")
	ErrCapacityExceeded = core.NewError(core.KindCapacityExceeded, "capacity_exceeded", "supervisor has reached maximum student capacity")
	ErrInvalidCapacity  = core.NewError(core.KindInvalidCapacity, "invalid_capacity", "cannot set max students below current count")
	ErrInvalidSeats     = core.NewError(core.KindInvalid, "invalid_seats", "seats must be positive")
	ErrEmailExists      = core.NewError(core.KindConflict, "supervisor_email_exists", "a supervisor with this email already exists")
)

type (
	Repository interface {
		CreateSupervisor(ctx context.Context, sup Supervisor) (Supervisor, error)
		// GetSupervisorByID locks the supervisor's row until the end of the transaction carried by ctx, if any.
		GetSupervisorByID(ctx context.Context, id string) (Supervisor, error)
		GetSupervisorsByID(ctx context.Context, ids ...string) ([]Supervisor, error)
		QuerySupervisors(ctx context.Context, filter QueryFilter) ([]Supervisor, error)
		// UpdateSupervisorCapacity saves MaxStudents, CurrentStudentCount and IsAvailableForSupervision.
		UpdateSupervisorCapacity(ctx context.Context, sup Supervisor) (Supervisor, error)
	}

	// Service is the capacity ledger: the only writer of supervisors' load and availability.
	Service struct {
		tx   core.Transactor
		repo Repository
	}
)

func NewService(tx core.Transactor, repo Repository) *Service {
	return &Service{tx: tx, repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSupervisor) (Supervisor, error) {
	now := time.Now().UTC()
	sup := Supervisor{
		ID:                        uuid.NewString(),
		Name:                      ns.Name,
		Email:                     ns.Email,
		Designation:               ns.Designation,
		Department:                ns.Department,
		MaxStudents:               ns.MaxStudents,
		IsAvailableForSupervision: ns.MaxStudents > 0,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	return svc.repo.CreateSupervisor(ctx, sup)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Supervisor, error) {
	return svc.repo.GetSupervisorByID(ctx, id)
}

func (svc *Service) GetByIDs(ctx context.Context, ids ...string) ([]Supervisor, error) {
	return svc.repo.GetSupervisorsByID(ctx, core.CleanIDs(ids)...)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Supervisor, error) {
	return svc.repo.QuerySupervisors(ctx, filter)
}

// Availability lists supervisors' load, available ones first, then by name.
func (svc *Service) Availability(ctx context.Context, filter QueryFilter) ([]Availability, error) {
	sups, err := svc.repo.QuerySupervisors(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying supervisors")
	}
	sort.SliceStable(sups, func(i, j int) bool {
		if sups[i].IsAvailableForSupervision != sups[j].IsAvailableForSupervision {
			return sups[i].IsAvailableForSupervision
		}
		return sups[i].Name < sups[j].Name
	})

	res := make([]Availability, 0, len(sups))
	for _, sup := range sups {
		res = append(res, sup.Availability())
	}
	return res, nil
}

// Reserve takes `seats` on the supervisor's capacity.
func (svc *Service) Reserve(ctx context.Context, id string, seats int) (Supervisor, error) {
	var sup Supervisor
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if sup, err = svc.repo.GetSupervisorByID(ctx, id); err != nil {
			return errors.Wrap(err, "finding supervisor by ID")
		}
		if err = sup.reserve(seats); err != nil {
			return err
		}
		sup, err = svc.save(ctx, sup)
		return err
	})
	return sup, err
}

// Release gives `seats` back. Releasing more than the current load floors the count at 0.
func (svc *Service) Release(ctx context.Context, id string, seats int) (Supervisor, error) {
	var sup Supervisor
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if sup, err = svc.repo.GetSupervisorByID(ctx, id); err != nil {
			return errors.Wrap(err, "finding supervisor by ID")
		}
		sup.release(seats)
		sup, err = svc.save(ctx, sup)
		return err
	})
	return sup, err
}

func (svc *Service) SetAvailability(ctx context.Context, id string, ua UpdateAvailability) (Supervisor, error) {
	var sup Supervisor
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if sup, err = svc.repo.GetSupervisorByID(ctx, id); err != nil {
			return errors.Wrap(err, "finding supervisor by ID")
		}
		available := ua.IsAvailable != nil && *ua.IsAvailable
		if err = sup.setAvailability(available, ua.MaxStudents); err != nil {
			return err
		}
		sup, err = svc.save(ctx, sup)
		return err
	})
	return sup, err
}

// Lock locks the given supervisors in id order for the rest of ctx's transaction.
func (svc *Service) Lock(ctx context.Context, ids ...string) error {
	for _, id := range core.CleanIDs(ids) {
		if _, err := svc.repo.GetSupervisorByID(ctx, id); err != nil {
			return errors.Wrap(err, "locking supervisor")
		}
	}
	return nil
}

func (svc *Service) save(ctx context.Context, sup Supervisor) (Supervisor, error) {
	sup.UpdatedAt = time.Now().UTC()
	sup, err := svc.repo.UpdateSupervisorCapacity(ctx, sup)
	return sup, errors.Wrap(err, "updating supervisor capacity")
}
