package sqlxrepos_test

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/core/supervisor"
	"github.com/trezcool/fyp/storage/database"
	sqlxrepos "github.com/trezcool/fyp/storage/database/sqlx"
	"github.com/trezcool/fyp/tests"
)

const (
	actor = "coordinator-1"
	day   = "2025-12-15"
	room  = "Room 301"
)

// startPostgres runs a throwaway Postgres container and returns a migrated connection to it.
func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "fyp",
			"POSTGRES_PASSWORD": "fyp",
			"POSTGRES_DB":       "fyp",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(time.Minute),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("postgres container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(ctx) })

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "5432")
	require.NoError(t, err)

	conf := &core.Config{Database: core.DatabaseConfig{
		Engine:     "postgres",
		Host:       host,
		Port:       port.Int(),
		Name:       "fyp",
		User:       "fyp",
		Password:   "fyp",
		DisableTLS: true,
	}}
	db, err := database.Open(ctx, conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db.DB))
	return db
}

func newEnv(t *testing.T, db *sqlx.DB) *testutil.Env {
	t.Helper()
	_, err := db.Exec(`TRUNCATE schedule, panel_member, panel, project, group_student, student_group, supervisor`)
	require.NoError(t, err)
	return testutil.NewEnvWith(t, testutil.Stores{
		Tx:          sqlxrepos.NewTransactor(db),
		Supervisors: sqlxrepos.NewSupervisorRepository(db),
		Groups:      sqlxrepos.NewGroupRepository(db),
		Projects:    sqlxrepos.NewProjectRepository(db),
		Panels:      sqlxrepos.NewPanelRepository(db),
		Schedules:   sqlxrepos.NewScheduleRepository(db),
	})
}

func TestPostgres(t *testing.T) {
	db := startPostgres(t)

	t.Run("allocation", func(t *testing.T) { testAllocation(t, newEnv(t, db)) })
	t.Run("concurrent allocation", func(t *testing.T) { testConcurrentAllocation(t, newEnv(t, db)) })
	t.Run("constraints", func(t *testing.T) { testConstraints(t, newEnv(t, db)) })
	t.Run("schedules", func(t *testing.T) { testSchedules(t, newEnv(t, db)) })
	t.Run("swap", func(t *testing.T) { testSwap(t, newEnv(t, db)) })
	t.Run("auto-schedule", func(t *testing.T) { testAutoSchedule(t, newEnv(t, db)) })
}

func testAllocation(t *testing.T, env *testutil.Env) {
	ctx := context.Background()
	ada := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 2, 0)
	bob := testutil.CreateSupervisor(t, env.Supervisors, "Bob", "CS", 3, 0)
	pair := testutil.CreateGroup(t, env.Groups, "Pair", "CS", 1)
	solo := testutil.CreateGroup(t, env.Groups, "Solo", "CS", 0)

	res, err := env.AllocSvc.Assign(ctx, actor, pair.ID, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Supervisor.CurrentStudentCount)
	assert.False(t, res.Supervisor.IsAvailableForSupervision)
	assert.Equal(t, []string{pair.MemberIDs[0]}, res.Group.MemberIDs)

	_, err = env.AllocSvc.Assign(ctx, actor, solo.ID, ada.ID)
	assert.True(t, errors.Is(err, supervisor.ErrCapacityExceeded), err)

	res, err = env.AllocSvc.Change(ctx, actor, pair.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Supervisor.CurrentStudentCount)

	ada, err = env.SupervisorSvc.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, ada.CurrentStudentCount)
	assert.True(t, ada.IsAvailableForSupervision)

	prj, err := env.Projects.GetProjectByGroup(ctx, pair.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, prj.SupervisorID)

	unsupervised, err := env.GroupSvc.WithoutSupervisor(ctx, "CS")
	require.NoError(t, err)
	require.Len(t, unsupervised, 1)
	assert.Equal(t, solo.ID, unsupervised[0].ID)
}

func testConcurrentAllocation(t *testing.T, env *testutil.Env) {
	ctx := context.Background()
	sup := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 5, 0)
	groups := make([]group.Group, 10)
	for i := range groups {
		groups[i] = testutil.CreateGroup(t, env.Groups, fmt.Sprintf("G%d", i), "CS", 0)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, grp := range groups {
		wg.Add(1)
		go func(grp group.Group) {
			defer wg.Done()
			if _, err := env.AllocSvc.Assign(ctx, actor, grp.ID, sup.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(grp)
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	sup, err := env.SupervisorSvc.GetByID(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, sup.CurrentStudentCount)
	assert.False(t, sup.IsAvailableForSupervision)
}

func testConstraints(t *testing.T, env *testutil.Env) {
	ctx := context.Background()
	sup := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 2, 0)

	sup.CurrentStudentCount = 3
	_, err := env.Supervisors.UpdateSupervisorCapacity(ctx, sup)
	assert.True(t, errors.Is(err, supervisor.ErrCapacityExceeded), err)

	sup.CurrentStudentCount = -1
	_, err = env.Supervisors.UpdateSupervisorCapacity(ctx, sup)
	assert.True(t, errors.Is(err, supervisor.ErrInvalidCapacity), err)

	dup := sup
	dup.ID = "other"
	dup.CurrentStudentCount = 0
	_, err = env.Supervisors.CreateSupervisor(ctx, dup)
	assert.True(t, errors.Is(err, supervisor.ErrEmailExists), err)

	grp := testutil.CreateGroup(t, env.Groups, "G1", "CS", 0)
	again := grp
	again.ID = "other"
	_, err = env.Groups.CreateGroup(ctx, again)
	assert.True(t, errors.Is(err, group.ErrStudentInGroup), err)

	_, err = env.Groups.GetGroupByID(ctx, "nope")
	assert.True(t, errors.Is(err, group.ErrNotFound), err)

	pnl := testutil.CreatePanel(t, env.Panels, "P", "CS", sup.ID)
	testutil.CreateSchedule(t, env.Schedules, grp, pnl, day, "09:00-09:30", room)
	assert.True(t, errors.Is(env.PanelSvc.Delete(ctx, pnl.ID), panel.ErrInUse))
	assert.True(t, errors.Is(env.PanelSvc.Delete(ctx, "nope"), panel.ErrNotFound))
}

func testSchedules(t *testing.T, env *testutil.Env) {
	ctx := context.Background()
	ada := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 5, 0)
	bob := testutil.CreateSupervisor(t, env.Supervisors, "Bob", "CS", 5, 0)
	p := testutil.CreatePanel(t, env.Panels, "P", "CS", ada.ID)
	q := testutil.CreatePanel(t, env.Panels, "Q", "CS", bob.ID)
	g1 := testutil.CreateGroup(t, env.Groups, "G1", "CS", 0)
	g2 := testutil.CreateGroup(t, env.Groups, "G2", "CS", 1)

	sch1, err := env.ScheduleSvc.Create(ctx, actor, schedule.NewSchedule{
		GroupID: g1.ID, PanelID: p.ID, Date: day, TimeSlot: "09:00-09:30", Room: room, Department: "CS",
	})
	require.NoError(t, err)
	assert.Equal(t, day, sch1.Date.Format(core.DateLayout))

	_, err = env.ScheduleSvc.Create(ctx, actor, schedule.NewSchedule{
		GroupID: g2.ID, PanelID: q.ID, Date: day, TimeSlot: "09:00-09:30", Room: room, Department: "CS",
	})
	assert.True(t, errors.Is(err, schedule.ErrRoomConflict), err)

	_, err = env.ScheduleSvc.Create(ctx, actor, schedule.NewSchedule{
		GroupID: g2.ID, PanelID: p.ID, Date: day, TimeSlot: "09:00-09:30", Room: "Room 302", Department: "CS",
	})
	assert.True(t, errors.Is(err, schedule.ErrPanelConflict), err)

	// the unique keys catch what the pre-check would have
	raw := sch1
	raw.ID = "raw"
	raw.GroupID = g2.ID
	raw.PanelID = q.ID
	_, err = env.Schedules.CreateSchedule(ctx, raw)
	assert.True(t, errors.Is(err, schedule.ErrRoomConflict), err)

	date, err := core.ParseDate(day)
	require.NoError(t, err)
	got, err := env.ScheduleSvc.Query(ctx, schedule.QueryFilter{Department: "CS", Date: &date})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sch1.ID, got[0].ID)

	done, err := env.ScheduleSvc.MarkCompleted(ctx, sch1.ID, true)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)

	panelSchedules, err := env.ScheduleSvc.ForPanelMember(ctx, ada.ID)
	require.NoError(t, err)
	assert.Len(t, panelSchedules, 1)

	require.NoError(t, env.ScheduleSvc.Remove(ctx, sch1.ID))
	assert.True(t, errors.Is(env.ScheduleSvc.Remove(ctx, sch1.ID), schedule.ErrNotFound))
}

func testSwap(t *testing.T, env *testutil.Env) {
	ctx := context.Background()
	ada := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 5, 0)
	bob := testutil.CreateSupervisor(t, env.Supervisors, "Bob", "CS", 5, 0)
	p := testutil.CreatePanel(t, env.Panels, "P", "CS", ada.ID)
	q := testutil.CreatePanel(t, env.Panels, "Q", "CS", bob.ID)
	g1 := testutil.CreateGroup(t, env.Groups, "G1", "CS", 0)
	g2 := testutil.CreateGroup(t, env.Groups, "G2", "CS", 0)

	// same time, so a row-by-row update would clash on both slot keys
	sch1 := testutil.CreateSchedule(t, env.Schedules, g1, p, day, "09:00-09:30", room)
	sch2 := testutil.CreateSchedule(t, env.Schedules, g2, q, day, "09:00-09:30", "Room 302")

	_, err := env.ScheduleSvc.Swap(ctx, sch1.ID, sch2.ID)
	require.NoError(t, err)

	got1, err := env.ScheduleSvc.GetByID(ctx, sch1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Room 302", got1.Room)
	assert.Equal(t, q.ID, got1.PanelID)
	assert.Equal(t, g1.ID, got1.GroupID)

	_, err = env.ScheduleSvc.Swap(ctx, sch1.ID, "nope")
	assert.True(t, errors.Is(err, schedule.ErrNotFound), err)
}

func testAutoSchedule(t *testing.T, env *testutil.Env) {
	ctx := context.Background()
	ada := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 5, 0)
	p := testutil.CreatePanel(t, env.Panels, "P", "CS", ada.ID)
	for i := 0; i < 20; i++ {
		testutil.CreateGroup(t, env.Groups, fmt.Sprintf("G%02d", i), "CS", 0)
	}

	res, err := env.ScheduleSvc.AutoSchedule(ctx, actor, schedule.AutoSchedule{
		Date: day, Room: room, Department: "CS", PanelID: p.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 14, res.ScheduledCount)
	assert.Equal(t, 6, res.RemainingCount)
}
