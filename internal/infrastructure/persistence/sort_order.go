package persistence

import (
	"strings"

	"github.com/ryznreal/offers/internal/domain/shared"
)

// projectSortColumns are the project columns a listing may be ordered by.
// JSON columns are never sortable.
var projectSortColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"city":       true,
	"developer":  true,
	"status":     true,
}

// sortOrder is a whitelisted ORDER BY column with its direction
type sortOrder struct {
	Column string
	Desc   bool
}

// projectOrder reads the filter's ordering. Unknown columns fall back to
// created_at and anything but "asc" sorts descending, so user input never
// reaches the SQL text.
func projectOrder(filter shared.Filter) sortOrder {
	order := sortOrder{Column: "created_at", Desc: true}
	if col := strings.TrimSpace(filter.OrderBy); projectSortColumns[col] {
		order.Column = col
	}
	if strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc") {
		order.Desc = false
	}
	return order
}

func (o sortOrder) direction() string {
	if o.Desc {
		return "DESC"
	}
	return "ASC"
}

// clauses orders by the column, then by id so pages are stable
func (o sortOrder) clauses() []string {
	return []string{o.Column + " " + o.direction(), "id " + o.direction()}
}
