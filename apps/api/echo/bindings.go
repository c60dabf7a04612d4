package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/fyp/core"
)

var (
	orderingParam   = "ordering"
	departmentParam = "department"
	dateParam       = "date"
	panelParam      = "panel"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=-name,created_at`: a leading "-" sorts descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// departmentOrDefault returns the `department` query param, falling back to the caller's department.
func departmentOrDefault(ctx echo.Context) string {
	if dept := core.CleanString(ctx.QueryParam(departmentParam)); dept != "" {
		return dept
	}
	if claims, err := getContextClaims(ctx); err == nil {
		return claims.Department
	}
	return ""
}

// defaultDepartment fills an empty department with the caller's.
func defaultDepartment(ctx echo.Context, dept *string) {
	if core.CleanString(*dept) != "" {
		return
	}
	if claims, err := getContextClaims(ctx); err == nil {
		*dept = claims.Department
	}
}

func actorID(ctx echo.Context) string {
	claims, _ := getContextClaims(ctx)
	return claims.Subject
}
