package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/allocation"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/project"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/core/supervisor"
	"github.com/trezcool/fyp/services/logger"
	"github.com/trezcool/fyp/services/metrics"
	"github.com/trezcool/fyp/storage/database/dummy"
)

// Stores is the storage backend an Env runs on.
type Stores struct {
	Tx          core.Transactor
	Supervisors supervisor.Repository
	Groups      group.Repository
	Projects    project.Repository
	Panels      panel.Repository
	Schedules   schedule.Repository
}

// Env wires every service on a set of stores.
type Env struct {
	Stores

	Registry      *prometheus.Registry
	Metrics       *metricsvc.Recorder
	SupervisorSvc *supervisor.Service
	GroupSvc      *group.Service
	PanelSvc      *panel.Service
	AllocSvc      *allocation.Service
	ScheduleSvc   *schedule.Service
}

func SchedulingConfig() core.SchedulingConfig {
	return core.SchedulingConfig{DayStart: "09:00", DayEnd: "16:00", SlotMinutes: 30}
}

// NewEnv wires every service on a fresh in-memory store.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	db := dummydb.Open()
	return NewEnvWith(t, Stores{
		Tx:          db,
		Supervisors: dummydb.NewSupervisorRepository(db),
		Groups:      dummydb.NewGroupRepository(db),
		Projects:    dummydb.NewProjectRepository(db),
		Panels:      dummydb.NewPanelRepository(db),
		Schedules:   dummydb.NewScheduleRepository(db),
	})
}

func NewEnvWith(t *testing.T, stores Stores) *Env {
	t.Helper()
	reg := prometheus.NewRegistry()
	rec, err := metricsvc.NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}
	logger := logsvc.NewNopLogger()

	env := &Env{Stores: stores, Registry: reg, Metrics: rec}
	env.SupervisorSvc = supervisor.NewService(stores.Tx, stores.Supervisors)
	env.GroupSvc = group.NewService(stores.Groups)
	env.PanelSvc = panel.NewService(stores.Panels, stores.Supervisors)
	env.AllocSvc = allocation.NewService(stores.Tx, stores.Groups, stores.Projects, env.SupervisorSvc, logger, rec)
	env.ScheduleSvc = schedule.NewService(stores.Tx, stores.Schedules, stores.Groups, stores.Panels, SchedulingConfig(), logger, rec)
	return env
}

func CreateSupervisor(t *testing.T, repo supervisor.Repository, name, department string, maxStudents, current int) supervisor.Supervisor {
	t.Helper()
	now := time.Now().UTC()
	sup := supervisor.Supervisor{
		ID:                        uuid.NewString(),
		Name:                      name,
		Email:                     uuid.NewString() + "@uni.test",
		Designation:               "Lecturer",
		Department:                department,
		MaxStudents:               maxStudents,
		CurrentStudentCount:       current,
		IsAvailableForSupervision: current < maxStudents,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	sup, err := repo.CreateSupervisor(context.Background(), sup)
	if err != nil {
		t.Fatalf("CreateSupervisor() failed: %v", err)
	}
	return sup
}

// CreateGroup creates a group with a fresh leader and `members` fresh members.
func CreateGroup(t *testing.T, repo group.Repository, name, department string, members int) group.Group {
	t.Helper()
	now := time.Now().UTC()
	grp := group.Group{
		ID:                 uuid.NewString(),
		Name:               name,
		LeaderID:           uuid.NewString(),
		MemberIDs:          make([]string, 0, members),
		Department:         department,
		IsRegisteredForFYP: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for i := 0; i < members; i++ {
		grp.MemberIDs = append(grp.MemberIDs, uuid.NewString())
	}
	grp, err := repo.CreateGroup(context.Background(), grp)
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func CreatePanel(t *testing.T, repo panel.Repository, name, department string, memberIDs ...string) panel.Panel {
	t.Helper()
	now := time.Now().UTC()
	pnl := panel.Panel{
		ID:         uuid.NewString(),
		Name:       name,
		Department: department,
		MemberIDs:  memberIDs,
		IsActive:   true,
		CreatedBy:  "coordinator",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	pnl, err := repo.CreatePanel(context.Background(), pnl)
	if err != nil {
		t.Fatalf("CreatePanel() failed: %v", err)
	}
	return pnl
}

func CreateSchedule(t *testing.T, repo schedule.Repository, grp group.Group, pnl panel.Panel, date, timeSlot, room string) schedule.Schedule {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate() failed: %v", err)
	}
	now := time.Now().UTC()
	sch := schedule.Schedule{
		ID:         uuid.NewString(),
		GroupID:    grp.ID,
		PanelID:    pnl.ID,
		Date:       d,
		TimeSlot:   timeSlot,
		Room:       room,
		Department: grp.Department,
		CreatedBy:  "coordinator",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	sch, err = repo.CreateSchedule(context.Background(), sch)
	if err != nil {
		t.Fatalf("CreateSchedule() failed: %v", err)
	}
	return sch
}
