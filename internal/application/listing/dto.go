package listing

import (
	"time"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/listing"
	"github.com/shopspring/decimal"
)

// PropertyRequest represents a standalone property in create and import requests
type PropertyRequest struct {
	ID          string          `json:"id" binding:"omitempty,max=64"`
	Type        string          `json:"type" binding:"required,oneof=residential land"`
	City        string          `json:"city" binding:"required,max=100"`
	District    string          `json:"district" binding:"omitempty,max=100"`
	Developer   string          `json:"developer" binding:"omitempty,max=200"`
	ProjectName string          `json:"project_name" binding:"omitempty,max=200"`
	Price       decimal.Decimal `json:"price"`
	MapURL      string          `json:"map_url" binding:"omitempty,url"`

	Status     string          `json:"status" binding:"omitempty,oneof=ready under_construction under_finishing"`
	UnitType   string          `json:"unit_type" binding:"omitempty,oneof=apartment floor annex duplex villa"`
	Rooms      int             `json:"rooms" binding:"min=0"`
	Bathrooms  int             `json:"bathrooms" binding:"min=0"`
	Area       decimal.Decimal `json:"area"`
	Floor      string          `json:"floor" binding:"omitempty,max=32"`
	Finishing  string          `json:"finishing" binding:"omitempty,oneof=economic medium luxury"`
	YearBuilt  int             `json:"year_built" binding:"omitempty,min=1900,max=2100"`
	Notes      string          `json:"notes" binding:"omitempty,max=5000"`
	UnitNumber string          `json:"unit_number" binding:"omitempty,max=32"`

	LandArea          decimal.Decimal `json:"land_area"`
	PricePerMeter     decimal.Decimal `json:"price_per_meter"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	LandWidth         decimal.Decimal `json:"land_width"`
	LandDepth         decimal.Decimal `json:"land_depth"`
	StreetWidth       decimal.Decimal `json:"street_width"`
	IsCorner          bool            `json:"is_corner"`
	LandUse           string          `json:"land_use" binding:"omitempty,oneof=residential commercial investment mixed"`
	InvestmentAllowed bool            `json:"investment_allowed"`
	LandNotes         string          `json:"land_notes" binding:"omitempty,max=5000"`
}

// ToDomain converts the request into an unvalidated Property
func (r PropertyRequest) ToDomain() listing.Property {
	return listing.Property{
		ID:                r.ID,
		Type:              listing.PropertyType(r.Type),
		City:              r.City,
		District:          r.District,
		Developer:         r.Developer,
		ProjectName:       r.ProjectName,
		Price:             r.Price,
		MapURL:            r.MapURL,
		Status:            inventory.ProjectStatus(r.Status),
		UnitType:          listing.UnitType(r.UnitType),
		Rooms:             r.Rooms,
		Bathrooms:         r.Bathrooms,
		Area:              r.Area,
		Floor:             r.Floor,
		Finishing:         inventory.Finishing(r.Finishing),
		YearBuilt:         r.YearBuilt,
		Notes:             r.Notes,
		UnitNumber:        r.UnitNumber,
		LandArea:          r.LandArea,
		PricePerMeter:     r.PricePerMeter,
		TotalPrice:        r.TotalPrice,
		LandWidth:         r.LandWidth,
		LandDepth:         r.LandDepth,
		StreetWidth:       r.StreetWidth,
		IsCorner:          r.IsCorner,
		LandUse:           listing.LandUse(r.LandUse),
		InvestmentAllowed: r.InvestmentAllowed,
		LandNotes:         r.LandNotes,
	}
}

// ImportPropertiesRequest represents a batch of standalone properties
type ImportPropertiesRequest struct {
	Properties []PropertyRequest `json:"properties" binding:"required,min=1,max=1000,dive"`
}

// CatalogFilter represents the query options of the public catalog
type CatalogFilter struct {
	Search            string   `form:"search"`
	Type              string   `form:"type" binding:"omitempty,oneof=residential land"`
	City              string   `form:"city"`
	MinPrice          *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice          *float64 `form:"max_price" binding:"omitempty,min=0"`
	Sort              string   `form:"sort" binding:"omitempty,oneof=none asc desc"`
	Status            string   `form:"status" binding:"omitempty,oneof=ready under_construction under_finishing"`
	UnitType          string   `form:"unit_type" binding:"omitempty,oneof=apartment floor annex duplex villa"`
	Rooms             int      `form:"rooms" binding:"omitempty,min=0"`
	LandUse           string   `form:"land_use" binding:"omitempty,oneof=residential commercial investment mixed"`
	IsCorner          *bool    `form:"is_corner"`
	InvestmentAllowed *bool    `form:"investment_allowed"`
}

// ToDomain converts the query into a listing filter
func (f CatalogFilter) ToDomain() listing.Filter {
	out := listing.Filter{
		Search:            f.Search,
		Type:              listing.PropertyType(f.Type),
		City:              f.City,
		Sort:              listing.SortOrder(f.Sort),
		Status:            inventory.ProjectStatus(f.Status),
		UnitType:          listing.UnitType(f.UnitType),
		Rooms:             f.Rooms,
		LandUse:           listing.LandUse(f.LandUse),
		IsCorner:          f.IsCorner,
		InvestmentAllowed: f.InvestmentAllowed,
	}
	if f.MinPrice != nil {
		v := decimal.NewFromFloat(*f.MinPrice)
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := decimal.NewFromFloat(*f.MaxPrice)
		out.MaxPrice = &v
	}
	return out
}

// PropertyResponse represents a catalog entry in API responses
type PropertyResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Synthesized bool            `json:"synthesized"`
	City        string          `json:"city"`
	District    string          `json:"district,omitempty"`
	Developer   string          `json:"developer,omitempty"`
	ProjectName string          `json:"project_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MapURL      string          `json:"map_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`

	ProjectID          string `json:"project_id,omitempty"`
	ModelID            string `json:"model_id,omitempty"`
	ProjectDescription string `json:"project_description,omitempty"`
	ProjectBrochureURL string `json:"project_brochure_url,omitempty"`

	Status     string           `json:"status,omitempty"`
	UnitType   string           `json:"unit_type,omitempty"`
	Rooms      int              `json:"rooms,omitempty"`
	Bathrooms  int              `json:"bathrooms,omitempty"`
	Area       *decimal.Decimal `json:"area,omitempty"`
	Floor      string           `json:"floor,omitempty"`
	Finishing  string           `json:"finishing,omitempty"`
	YearBuilt  int              `json:"year_built,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	UnitNumber string           `json:"unit_number,omitempty"`

	Land *LandResponse `json:"land,omitempty"`
}

// LandResponse holds the land-specific fields of a catalog entry
type LandResponse struct {
	LandArea          decimal.Decimal `json:"land_area"`
	PricePerMeter     decimal.Decimal `json:"price_per_meter"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	LandWidth         decimal.Decimal `json:"land_width"`
	LandDepth         decimal.Decimal `json:"land_depth"`
	StreetWidth       decimal.Decimal `json:"street_width"`
	IsCorner          bool            `json:"is_corner"`
	LandUse           string          `json:"land_use,omitempty"`
	InvestmentAllowed bool            `json:"investment_allowed"`
	LandNotes         string          `json:"land_notes,omitempty"`
}

// CatalogResponse is the filtered catalog with the size of each source
// before filtering
type CatalogResponse struct {
	Items       []PropertyResponse `json:"items"`
	Total       int                `json:"total"`
	Synthesized int                `json:"synthesized"`
	Standalone  int                `json:"standalone"`
}

// ToPropertyResponse converts a Property to its response shape
func ToPropertyResponse(p listing.Property) PropertyResponse {
	resp := PropertyResponse{
		ID:                 p.ID,
		Type:               string(p.Type),
		Synthesized:        p.IsSynthesized(),
		City:               p.City,
		District:           p.District,
		Developer:          p.Developer,
		ProjectName:        p.ProjectName,
		Price:              p.EffectivePrice(),
		MapURL:             p.MapURL,
		CreatedAt:          p.CreatedAt,
		ProjectID:          p.ProjectID,
		ModelID:            p.ModelID,
		ProjectDescription: p.ProjectDescription,
		ProjectBrochureURL: p.ProjectBrochureURL,
	}
	switch p.Type {
	case listing.PropertyTypeLand:
		resp.Land = &LandResponse{
			LandArea:          p.LandArea,
			PricePerMeter:     p.PricePerMeter,
			TotalPrice:        p.TotalPrice,
			LandWidth:         p.LandWidth,
			LandDepth:         p.LandDepth,
			StreetWidth:       p.StreetWidth,
			IsCorner:          p.IsCorner,
			LandUse:           string(p.LandUse),
			InvestmentAllowed: p.InvestmentAllowed,
			LandNotes:         p.LandNotes,
		}
	default:
		resp.Status = string(p.Status)
		resp.UnitType = string(p.UnitType)
		resp.Rooms = p.Rooms
		resp.Bathrooms = p.Bathrooms
		if !p.Area.IsZero() {
			area := p.Area
			resp.Area = &area
		}
		resp.Floor = p.Floor
		resp.Finishing = string(p.Finishing)
		resp.YearBuilt = p.YearBuilt
		resp.Notes = p.Notes
		resp.UnitNumber = p.UnitNumber
	}
	return resp
}

// ToPropertyResponses converts a slice of properties to responses
func ToPropertyResponses(props []listing.Property) []PropertyResponse {
	out := make([]PropertyResponse, len(props))
	for i, p := range props {
		out[i] = ToPropertyResponse(p)
	}
	return out
}
