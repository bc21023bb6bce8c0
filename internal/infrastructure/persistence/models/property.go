package models

import (
	"time"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/listing"
	"github.com/shopspring/decimal"
)

// PropertyModel is the persistence model for a standalone catalog property.
// IDs may come from an import file, so they are free-form strings.
// Position orders the catalog: higher positions are listed first.
type PropertyModel struct {
	ID        string    `gorm:"type:varchar(100);primary_key"`
	Position  int64     `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Type        string          `gorm:"type:varchar(20);not null;index"`
	City        string          `gorm:"type:varchar(100);not null;index"`
	District    string          `gorm:"type:varchar(100)"`
	Developer   string          `gorm:"type:varchar(200)"`
	ProjectName string          `gorm:"type:varchar(200)"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MapURL      string          `gorm:"type:varchar(500)"`

	Status     string          `gorm:"type:varchar(30)"`
	UnitType   string          `gorm:"type:varchar(20)"`
	Rooms      int             `gorm:"not null;default:0"`
	Bathrooms  int             `gorm:"not null;default:0"`
	Area       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Floor      string          `gorm:"type:varchar(50)"`
	Finishing  string          `gorm:"type:varchar(20)"`
	YearBuilt  int             `gorm:"not null;default:0"`
	Notes      string          `gorm:"type:text"`
	UnitNumber string          `gorm:"type:varchar(50)"`

	LandArea          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PricePerMeter     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LandWidth         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	LandDepth         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	StreetWidth       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	IsCorner          bool            `gorm:"not null;default:false"`
	LandUse           string          `gorm:"type:varchar(20)"`
	InvestmentAllowed bool            `gorm:"not null;default:false"`
	LandNotes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property
func (m *PropertyModel) ToDomain() listing.Property {
	return listing.Property{
		ID:          m.ID,
		Type:        listing.PropertyType(m.Type),
		City:        m.City,
		District:    m.District,
		Developer:   m.Developer,
		ProjectName: m.ProjectName,
		Price:       m.Price,
		MapURL:      m.MapURL,
		CreatedAt:   m.CreatedAt,

		Status:     inventory.ProjectStatus(m.Status),
		UnitType:   listing.UnitType(m.UnitType),
		Rooms:      m.Rooms,
		Bathrooms:  m.Bathrooms,
		Area:       m.Area,
		Floor:      m.Floor,
		Finishing:  inventory.Finishing(m.Finishing),
		YearBuilt:  m.YearBuilt,
		Notes:      m.Notes,
		UnitNumber: m.UnitNumber,

		LandArea:          m.LandArea,
		PricePerMeter:     m.PricePerMeter,
		TotalPrice:        m.TotalPrice,
		LandWidth:         m.LandWidth,
		LandDepth:         m.LandDepth,
		StreetWidth:       m.StreetWidth,
		IsCorner:          m.IsCorner,
		LandUse:           listing.LandUse(m.LandUse),
		InvestmentAllowed: m.InvestmentAllowed,
		LandNotes:         m.LandNotes,
	}
}

// FromDomain populates the persistence model from a domain Property
func (m *PropertyModel) FromDomain(p listing.Property) {
	m.ID = p.ID
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.CreatedAt
	m.Type = string(p.Type)
	m.City = p.City
	m.District = p.District
	m.Developer = p.Developer
	m.ProjectName = p.ProjectName
	m.Price = p.Price
	m.MapURL = p.MapURL

	m.Status = string(p.Status)
	m.UnitType = string(p.UnitType)
	m.Rooms = p.Rooms
	m.Bathrooms = p.Bathrooms
	m.Area = p.Area
	m.Floor = p.Floor
	m.Finishing = string(p.Finishing)
	m.YearBuilt = p.YearBuilt
	m.Notes = p.Notes
	m.UnitNumber = p.UnitNumber

	m.LandArea = p.LandArea
	m.PricePerMeter = p.PricePerMeter
	m.TotalPrice = p.TotalPrice
	m.LandWidth = p.LandWidth
	m.LandDepth = p.LandDepth
	m.StreetWidth = p.StreetWidth
	m.IsCorner = p.IsCorner
	m.LandUse = string(p.LandUse)
	m.InvestmentAllowed = p.InvestmentAllowed
	m.LandNotes = p.LandNotes
}

// PropertyModelFromDomain creates a new persistence model from a domain Property
func PropertyModelFromDomain(p listing.Property) *PropertyModel {
	m := &PropertyModel{}
	m.FromDomain(p)
	return m
}
