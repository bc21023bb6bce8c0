package persistence

import (
	"testing"

	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestProjectOrder(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
		dir     string
		want    sortOrder
	}{
		{"defaults to newest first", "", "", sortOrder{Column: "created_at", Desc: true}},
		{"known column ascending", "name", "asc", sortOrder{Column: "name"}},
		{"direction is case-insensitive", " city ", " ASC ", sortOrder{Column: "city"}},
		{"unknown direction is descending", "name", "sideways", sortOrder{Column: "name", Desc: true}},
		{"JSON columns are not sortable", "unit_mapping", "asc", sortOrder{Column: "created_at"}},
		{"column names are case-sensitive", "NAME", "", sortOrder{Column: "created_at", Desc: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, projectOrder(shared.Filter{OrderBy: tt.orderBy, OrderDir: tt.dir}))
		})
	}
}

func TestProjectOrder_RejectsInjection(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE projects;--",
		"name' OR '1'='1",
		"name UNION SELECT * FROM properties",
		"CASE WHEN 1=1 THEN name ELSE city END",
		"name\n; DROP TABLE projects",
	}
	for _, p := range payloads {
		order := projectOrder(shared.Filter{OrderBy: p, OrderDir: p})
		assert.Equal(t, []string{"created_at DESC", "id DESC"}, order.clauses(), p)
	}
}
