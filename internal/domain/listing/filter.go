package listing

import (
	"slices"
	"strings"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// SortOrder orders catalog entries by effective price
type SortOrder string

const (
	SortNone SortOrder = "none"
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// MinRoomsBucket is the rooms filter value meaning "this many or more"
const MinRoomsBucket = 5

// Filter narrows the catalog. Zero values match everything.
type Filter struct {
	Search   string
	Type     PropertyType
	City     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortOrder

	// Residential entries only
	Status   inventory.ProjectStatus
	UnitType UnitType
	Rooms    int

	// Land entries only
	LandUse           LandUse
	IsCorner          *bool
	InvestmentAllowed *bool
}

// Apply returns the entries matching f, sorted by f.Sort. The input is
// not modified and the sort is stable, so entries with equal prices keep
// catalog order.
func Apply(props []Property, f Filter) []Property {
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(f.Search))
	city := fold.String(strings.TrimSpace(f.City))

	out := make([]Property, 0, len(props))
	for _, p := range props {
		if f.matches(p, fold, search, city) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortAsc:
		slices.SortStableFunc(out, func(a, b Property) int {
			return a.EffectivePrice().Cmp(b.EffectivePrice())
		})
	case SortDesc:
		slices.SortStableFunc(out, func(a, b Property) int {
			return b.EffectivePrice().Cmp(a.EffectivePrice())
		})
	}
	return out
}

func (f Filter) matches(p Property, fold cases.Caser, search, city string) bool {
	if f.Type != "" && p.Type != f.Type {
		return false
	}

	switch p.Type {
	case PropertyTypeResidential:
		if f.UnitType != "" && p.UnitType != f.UnitType {
			return false
		}
		if f.Status != "" && p.Status != f.Status {
			return false
		}
		if f.Rooms >= MinRoomsBucket && p.Rooms < MinRoomsBucket {
			return false
		}
		if f.Rooms > 0 && f.Rooms < MinRoomsBucket && p.Rooms != f.Rooms {
			return false
		}
	case PropertyTypeLand:
		if f.LandUse != "" && p.LandUse != f.LandUse {
			return false
		}
		if f.IsCorner != nil && p.IsCorner != *f.IsCorner {
			return false
		}
		if f.InvestmentAllowed != nil && p.InvestmentAllowed != *f.InvestmentAllowed {
			return false
		}
	}

	if city != "" && fold.String(p.City) != city {
		return false
	}
	if search != "" {
		hit := false
		for _, field := range []string{p.City, p.District, p.Developer, p.ProjectName} {
			if strings.Contains(fold.String(field), search) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	price := p.EffectivePrice()
	if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
