package listing

import (
	"testing"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func boolPtr(b bool) *bool { return &b }

func sampleCatalog() []Property {
	return []Property{
		{ID: "r1", Type: PropertyTypeResidential, City: "Riyadh", District: "Al Malqa", Developer: "Rawabi",
			ProjectName: "Palm - Corner", Price: decimal.NewFromInt(900000), Rooms: 4,
			Status: inventory.ProjectStatusReady, UnitType: UnitTypeApartment},
		{ID: "r2", Type: PropertyTypeResidential, City: "Jeddah", District: "Al Rawdah", Developer: "Sea View",
			Price: decimal.NewFromInt(1500000), Rooms: 6, Status: inventory.ProjectStatusUnderConstruction, UnitType: UnitTypeVilla},
		{ID: "l1", Type: PropertyTypeLand, City: "Riyadh", District: "Al Narjis", Developer: "Owner",
			TotalPrice: decimal.NewFromInt(700000), IsCorner: true, LandUse: LandUseCommercial},
		{ID: "l2", Type: PropertyTypeLand, City: "RIYADH", District: "Hittin", Developer: "Owner",
			Price: decimal.NewFromInt(400000), LandUse: LandUseResidential, InvestmentAllowed: true},
	}
}

func TestApply(t *testing.T) {
	catalog := sampleCatalog()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter matches all", Filter{}, []string{"r1", "r2", "l1", "l2"}},
		{"type", Filter{Type: PropertyTypeLand}, []string{"l1", "l2"}},
		{"search is case folded", Filter{Search: "riyadh"}, []string{"r1", "l1", "l2"}},
		{"search project name", Filter{Search: "CORNER"}, []string{"r1"}},
		{"search district", Filter{Search: "rawdah"}, []string{"r2"}},
		{"city", Filter{City: "riyadh"}, []string{"r1", "l1", "l2"}},
		{"rooms exact", Filter{Rooms: 4}, []string{"r1", "l1", "l2"}},
		{"rooms five or more", Filter{Rooms: 5}, []string{"r2", "l1", "l2"}},
		{"status only applies to residential", Filter{Status: inventory.ProjectStatusReady}, []string{"r1", "l1", "l2"}},
		{"unit type", Filter{Type: PropertyTypeResidential, UnitType: UnitTypeVilla}, []string{"r2"}},
		{"land use", Filter{LandUse: LandUseCommercial}, []string{"r1", "r2", "l1"}},
		{"corner", Filter{Type: PropertyTypeLand, IsCorner: boolPtr(false)}, []string{"l2"}},
		{"investment", Filter{Type: PropertyTypeLand, InvestmentAllowed: boolPtr(true)}, []string{"l2"}},
		{"min price uses total price", Filter{MinPrice: dec(600000)}, []string{"r1", "r2", "l1"}},
		{"price range", Filter{MinPrice: dec(500000), MaxPrice: dec(1000000)}, []string{"r1", "l1"}},
		{"sort asc", Filter{Sort: SortAsc}, []string{"l2", "l1", "r1", "r2"}},
		{"sort desc", Filter{Sort: SortDesc}, []string{"r2", "r1", "l1", "l2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(catalog, tt.filter)))
		})
	}

	assert.Equal(t, []string{"r1", "r2", "l1", "l2"}, ids(catalog))
}

func TestApply_StableSort(t *testing.T) {
	catalog := []Property{
		{ID: "a", Type: PropertyTypeResidential, Price: decimal.NewFromInt(5)},
		{ID: "b", Type: PropertyTypeResidential, Price: decimal.NewFromInt(5)},
		{ID: "c", Type: PropertyTypeResidential, Price: decimal.NewFromInt(1)},
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids(Apply(catalog, Filter{Sort: SortAsc})))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Apply(catalog, Filter{Sort: SortDesc})))
}
