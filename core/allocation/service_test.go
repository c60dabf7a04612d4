package allocation_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/allocation"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/project"
	"github.com/trezcool/fyp/core/supervisor"
	"github.com/trezcool/fyp/tests"
)

const actor = "coordinator-1"

// checkCapacityInvariant asserts every supervisor's load equals the seats of the groups assigned to it.
func checkCapacityInvariant(t *testing.T, env *testutil.Env) {
	t.Helper()
	ctx := context.Background()
	sups, err := env.Supervisors.QuerySupervisors(ctx, supervisor.QueryFilter{})
	require.NoError(t, err)
	for _, sup := range sups {
		groups, err := env.Groups.QueryGroups(ctx, group.QueryFilter{SupervisorID: sup.ID})
		require.NoError(t, err)
		seats := 0
		for _, grp := range groups {
			seats += grp.Seats()
		}
		assert.Equal(t, seats, sup.CurrentStudentCount, "supervisor %s load", sup.Name)
		if sup.CurrentStudentCount >= sup.MaxStudents {
			assert.False(t, sup.IsAvailableForSupervision, "supervisor %s is full but available", sup.Name)
		}
	}
}

func TestService_Assign(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	// a full supervisor turns unavailable and refuses more groups
	sup := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 2, 0)
	pair := testutil.CreateGroup(t, env.Groups, "Pair", "CS", 1)
	solo := testutil.CreateGroup(t, env.Groups, "Solo", "CS", 0)

	res, err := env.AllocSvc.Assign(ctx, actor, pair.ID, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Supervisor.CurrentStudentCount)
	assert.False(t, res.Supervisor.IsAvailableForSupervision)
	assert.Equal(t, sup.ID, res.Group.SupervisorID)
	assert.NotEmpty(t, res.Group.ProjectID)

	_, err = env.AllocSvc.Assign(ctx, actor, solo.ID, sup.ID)
	assert.True(t, errors.Is(err, supervisor.ErrCapacityExceeded), err)
	assert.Equal(t, core.KindCapacityExceeded, core.KindOf(err))

	stored, err := env.Groups.GetGroupByID(ctx, solo.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.SupervisorID)

	prj, err := env.Projects.GetProjectByGroup(ctx, pair.ID)
	require.NoError(t, err)
	assert.Equal(t, sup.ID, prj.SupervisorID)
	assert.Equal(t, "CS", prj.Department)
	assert.Equal(t, project.IdeaPending, prj.IdeaStatus)

	checkCapacityInvariant(t, env)
}

func TestService_Assign_errors(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	sup := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 6, 0)
	off := testutil.CreateSupervisor(t, env.Supervisors, "Off", "CS", 6, 0)
	_, err := env.SupervisorSvc.SetAvailability(ctx, off.ID, supervisor.UpdateAvailability{IsAvailable: new(bool)})
	require.NoError(t, err)
	assigned := testutil.CreateGroup(t, env.Groups, "Assigned", "CS", 2)
	_, err = env.AllocSvc.Assign(ctx, actor, assigned.ID, sup.ID)
	require.NoError(t, err)
	free := testutil.CreateGroup(t, env.Groups, "Free", "CS", 2)

	tests := []struct {
		name         string
		groupID      string
		supervisorID string
		wantErr      error
	}{
		{name: "group not found", groupID: "nope", supervisorID: sup.ID, wantErr: group.ErrNotFound},
		{name: "supervisor not found", groupID: free.ID, supervisorID: "nope", wantErr: supervisor.ErrNotFound},
		{name: "already assigned", groupID: assigned.ID, supervisorID: sup.ID, wantErr: allocation.ErrAlreadyAssigned},
		{name: "supervisor unavailable", groupID: free.ID, supervisorID: off.ID, wantErr: supervisor.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.AllocSvc.Assign(ctx, actor, tt.groupID, tt.supervisorID)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}

	// nothing leaked from the failures
	stored, err := env.Supervisors.GetSupervisorByID(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CurrentStudentCount)
	checkCapacityInvariant(t, env)
}

func TestService_Change(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	oldSup := testutil.CreateSupervisor(t, env.Supervisors, "Old", "CS", 3, 0)
	newSup := testutil.CreateSupervisor(t, env.Supervisors, "New", "CS", 5, 0)
	grp := testutil.CreateGroup(t, env.Groups, "Trio", "CS", 2)
	_, err := env.AllocSvc.Assign(ctx, actor, grp.ID, oldSup.ID)
	require.NoError(t, err)

	prj, err := env.Projects.GetProjectByGroup(ctx, grp.ID)
	require.NoError(t, err)
	prj.SelectedIdea = "idea-1"
	prj.CustomIdeaTitle = "Drones"
	prj.CustomIdeaDescription = "Flying things"
	prj.IdeaStatus = project.IdeaApproved
	_, err = env.Projects.UpdateProject(ctx, prj)
	require.NoError(t, err)

	res, err := env.AllocSvc.Change(ctx, actor, grp.ID, newSup.ID)
	require.NoError(t, err)
	assert.Equal(t, newSup.ID, res.Group.SupervisorID)
	assert.Equal(t, 3, res.Supervisor.CurrentStudentCount)

	old, err := env.Supervisors.GetSupervisorByID(ctx, oldSup.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, old.CurrentStudentCount)
	assert.True(t, old.IsAvailableForSupervision)

	prj, err = env.Projects.GetProjectByGroup(ctx, grp.ID)
	require.NoError(t, err)
	assert.Equal(t, newSup.ID, prj.SupervisorID)
	assert.Empty(t, prj.SelectedIdea)
	assert.Empty(t, prj.CustomIdeaTitle)
	assert.Empty(t, prj.CustomIdeaDescription)
	assert.Equal(t, project.IdeaPending, prj.IdeaStatus)

	checkCapacityInvariant(t, env)
}

// A full target supervisor must leave the group and the old supervisor untouched.
func TestService_Change_targetFull(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	oldSup := testutil.CreateSupervisor(t, env.Supervisors, "Old", "CS", 4, 0)
	fullSup := testutil.CreateSupervisor(t, env.Supervisors, "Full", "CS", 2, 0)
	grp := testutil.CreateGroup(t, env.Groups, "Pair", "CS", 1)
	filler := testutil.CreateGroup(t, env.Groups, "Filler", "CS", 1)
	_, err := env.AllocSvc.Assign(ctx, actor, grp.ID, oldSup.ID)
	require.NoError(t, err)
	_, err = env.AllocSvc.Assign(ctx, actor, filler.ID, fullSup.ID)
	require.NoError(t, err)

	_, err = env.AllocSvc.Change(ctx, actor, grp.ID, fullSup.ID)
	assert.True(t, errors.Is(err, supervisor.ErrCapacityExceeded), err)

	stored, err := env.Groups.GetGroupByID(ctx, grp.ID)
	require.NoError(t, err)
	assert.Equal(t, oldSup.ID, stored.SupervisorID)
	old, err := env.Supervisors.GetSupervisorByID(ctx, oldSup.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, old.CurrentStudentCount)

	checkCapacityInvariant(t, env)
}

func TestService_Change_errors(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	sup := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 6, 0)
	assigned := testutil.CreateGroup(t, env.Groups, "Assigned", "CS", 0)
	_, err := env.AllocSvc.Assign(ctx, actor, assigned.ID, sup.ID)
	require.NoError(t, err)
	free := testutil.CreateGroup(t, env.Groups, "Free", "CS", 0)

	tests := []struct {
		name         string
		groupID      string
		supervisorID string
		wantErr      error
	}{
		{name: "group not found", groupID: "nope", supervisorID: sup.ID, wantErr: group.ErrNotFound},
		{name: "not assigned", groupID: free.ID, supervisorID: sup.ID, wantErr: allocation.ErrNotAssigned},
		{name: "same supervisor", groupID: assigned.ID, supervisorID: sup.ID, wantErr: allocation.ErrNoOp},
		{name: "supervisor not found", groupID: assigned.ID, supervisorID: "nope", wantErr: supervisor.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.AllocSvc.Change(ctx, actor, tt.groupID, tt.supervisorID)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
	checkCapacityInvariant(t, env)
}

func TestService_Assign_concurrent(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	sup := testutil.CreateSupervisor(t, env.Supervisors, "Ada", "CS", 5, 0)
	groups := make([]group.Group, 10)
	for i := range groups {
		groups[i] = testutil.CreateGroup(t, env.Groups, "G", "CS", 0)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(groups))
	for i, grp := range groups {
		wg.Add(1)
		go func(i int, groupID string) {
			defer wg.Done()
			_, errs[i] = env.AllocSvc.Assign(ctx, actor, groupID, sup.ID)
		}(i, grp.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, core.KindCapacityExceeded, core.KindOf(err), err)
		}
	}
	assert.Equal(t, 5, succeeded)
	checkCapacityInvariant(t, env)
}
