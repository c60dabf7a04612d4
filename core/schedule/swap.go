package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Swap exchanges the date, time slot, room and panel of two schedules. Groups and departments stay put.
// Both slots were valid bookings before the swap, so exchanging them cannot create a new conflict as
// long as both rows are written together.
func (svc *Service) Swap(ctx context.Context, id1, id2 string) ([]Schedule, error) {
	if id1 == id2 {
		return nil, ErrSelfSwap
	}

	var sch1, sch2 Schedule
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if sch1, err = svc.repo.GetScheduleByID(ctx, id1); err != nil {
			return errors.Wrap(err, "finding first schedule")
		}
		if sch2, err = svc.repo.GetScheduleByID(ctx, id2); err != nil {
			return errors.Wrap(err, "finding second schedule")
		}
		if sch1.Department != sch2.Department {
			return ErrDepartmentMismatch.WithMessage("only schedules of the same department can be swapped")
		}

		slot1 := sch1.Slot()
		sch1.setSlot(sch2.Slot())
		sch2.setSlot(slot1)
		now := time.Now().UTC()
		sch1.UpdatedAt = now
		sch2.UpdatedAt = now

		return errors.Wrap(svc.repo.SwapScheduleSlots(ctx, sch1, sch2), "swapping schedule slots")
	})
	if err != nil {
		return nil, err
	}
	return []Schedule{sch1, sch2}, nil
}
