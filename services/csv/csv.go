// Package csvsvc imports supervisors and groups from CSV files and exports presentation schedules.
package csvsvc

import (
	"context"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/core/supervisor"
)

// memberSep separates student ids in the member_ids column.
const memberSep = ";"

type (
	groupRow struct {
		Name       string `csv:"name"`
		LeaderID   string `csv:"leader_id"`
		MemberIDs  string `csv:"member_ids"`
		Department string `csv:"department"`
	}

	scheduleRow struct {
		Date        string `csv:"date"`
		TimeSlot    string `csv:"time_slot"`
		Room        string `csv:"room"`
		Department  string `csv:"department"`
		GroupName   string `csv:"group"`
		PanelName   string `csv:"panel"`
		IsCompleted bool   `csv:"is_completed"`
		Notes       string `csv:"notes"`
		ScheduleID  string `csv:"schedule_id"`
	}

	// RowError reports a rejected row. Line counts the header as line 1.
	RowError struct {
		Line int
		Err  error
	}

	ImportReport struct {
		Created int
		Failed  []RowError
	}

	Service struct {
		validate    *validator.Validate
		supervisors *supervisor.Service
		groups      *group.Service
		panels      *panel.Service
		schedules   *schedule.Service
		logger      core.Logger
	}
)

func NewService(
	validate *validator.Validate,
	supervisors *supervisor.Service,
	groups *group.Service,
	panels *panel.Service,
	schedules *schedule.Service,
	logger core.Logger,
) *Service {
	return &Service{
		validate:    validate,
		supervisors: supervisors,
		groups:      groups,
		panels:      panels,
		schedules:   schedules,
		logger:      logger,
	}
}

// ImportSupervisors creates a supervisor per row. Invalid rows are reported and skipped.
func (svc *Service) ImportSupervisors(ctx context.Context, r io.Reader) (ImportReport, error) {
	var rows []supervisor.NewSupervisor
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return ImportReport{}, errors.Wrap(err, "parsing supervisors CSV")
	}

	var rep ImportReport
	for i, ns := range rows {
		ns := ns
		err := ns.Validate(svc.validate)
		if err == nil {
			_, err = svc.supervisors.Create(ctx, ns)
		}
		rep.record(i, err)
	}
	svc.logger.Info("supervisors imported", map[string]interface{}{"created": rep.Created, "failed": len(rep.Failed)})
	return rep, nil
}

// ImportGroups creates a group per row. Member ids are separated by semicolons.
func (svc *Service) ImportGroups(ctx context.Context, r io.Reader) (ImportReport, error) {
	var rows []groupRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return ImportReport{}, errors.Wrap(err, "parsing groups CSV")
	}

	var rep ImportReport
	for i, row := range rows {
		ng := group.NewGroup{
			Name:       row.Name,
			LeaderID:   row.LeaderID,
			MemberIDs:  splitMembers(row.MemberIDs),
			Department: row.Department,
		}
		err := ng.Validate(svc.validate)
		if err == nil {
			_, err = svc.groups.Create(ctx, ng)
		}
		rep.record(i, err)
	}
	svc.logger.Info("groups imported", map[string]interface{}{"created": rep.Created, "failed": len(rep.Failed)})
	return rep, nil
}

func (rep *ImportReport) record(idx int, err error) {
	if err != nil {
		rep.Failed = append(rep.Failed, RowError{Line: idx + 2, Err: err})
		return
	}
	rep.Created++
}

func splitMembers(s string) []string {
	members := make([]string, 0, group.MaxMembers)
	for _, id := range strings.Split(s, memberSep) {
		if id = strings.TrimSpace(id); id != "" {
			members = append(members, id)
		}
	}
	return members
}

// ExportSchedules writes the matching schedules, by date then slot, with group and panel names.
func (svc *Service) ExportSchedules(ctx context.Context, w io.Writer, filter schedule.QueryFilter) (int, error) {
	schedules, err := svc.schedules.Query(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "querying schedules")
	}
	groups, err := svc.groups.Query(ctx, group.QueryFilter{Department: filter.Department})
	if err != nil {
		return 0, errors.Wrap(err, "querying groups")
	}
	pnls, err := svc.panels.Query(ctx, panel.QueryFilter{Department: filter.Department})
	if err != nil {
		return 0, errors.Wrap(err, "querying panels")
	}

	groupNames := make(map[string]string, len(groups))
	for _, grp := range groups {
		groupNames[grp.ID] = grp.Name
	}
	panelNames := make(map[string]string, len(pnls))
	for _, pnl := range pnls {
		panelNames[pnl.ID] = pnl.Name
	}

	rows := make([]scheduleRow, 0, len(schedules))
	for _, sch := range schedules {
		rows = append(rows, scheduleRow{
			Date:        sch.Date.Format(core.DateLayout),
			TimeSlot:    sch.TimeSlot,
			Room:        sch.Room,
			Department:  sch.Department,
			GroupName:   groupNames[sch.GroupID],
			PanelName:   panelNames[sch.PanelID],
			IsCompleted: sch.IsCompleted,
			Notes:       sch.Notes,
			ScheduleID:  sch.ID,
		})
	}
	if err = gocsv.Marshal(rows, w); err != nil {
		return 0, errors.Wrap(err, "writing schedules CSV")
	}
	return len(rows), nil
}
