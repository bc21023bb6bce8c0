package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for the Project aggregate root.
// The model catalog and the per-unit maps are stored as JSON documents
// keyed by unit key.
type ProjectModel struct {
	AggregateModel
	Name         string `gorm:"type:varchar(200);not null;index"`
	DeveloperID  string `gorm:"type:varchar(100)"`
	Developer    string `gorm:"type:varchar(200);not null"`
	Description  string `gorm:"type:text"`
	City         string `gorm:"type:varchar(100);not null;index"`
	District     string `gorm:"type:varchar(100)"`
	GoogleMapURL string `gorm:"type:varchar(500)"`
	BrochureURL  string `gorm:"type:varchar(500)"`
	Status       string `gorm:"type:varchar(30);not null"`

	FloorsCount   int `gorm:"not null;default:0"`
	UnitsPerFloor int `gorm:"not null;default:0"`
	AnnexCount    int `gorm:"not null;default:0"`
	BasementCount int `gorm:"not null;default:0"`

	ModelsJSON       string `gorm:"column:models;type:jsonb;not null;default:'[]'"`
	UnitMappingJSON  string `gorm:"column:unit_mapping;type:jsonb;not null;default:'{}'"`
	UnitStatusJSON   string `gorm:"column:unit_status;type:jsonb;not null;default:'{}'"`
	UnitBookingsJSON string `gorm:"column:unit_bookings;type:jsonb;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

type modelRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ColorTag  string          `json:"color_tag,omitempty"`
	Area      decimal.Decimal `json:"area"`
	Price     decimal.Decimal `json:"price"`
	Rooms     int             `json:"rooms"`
	Bathrooms int             `json:"bathrooms"`
	Halls     int             `json:"halls"`
	Finishing string          `json:"finishing,omitempty"`
	Features  []string        `json:"features,omitempty"`
}

type bookingRecord struct {
	UnitNumber         string          `json:"unit_number"`
	MarketerName       string          `json:"marketer_name"`
	MarketerPhone      string          `json:"marketer_phone,omitempty"`
	CustomerName       string          `json:"customer_name"`
	CustomerPhone      string          `json:"customer_phone,omitempty"`
	Type               string          `json:"type"`
	Timestamp          time.Time       `json:"timestamp"`
	BrokerageFee       decimal.Decimal `json:"brokerage_fee"`
	MarketerPercentage decimal.Decimal `json:"marketer_percentage"`
	IsExternalMarketer bool            `json:"is_external_marketer"`
}

// ToDomain restores the domain Project. Malformed JSON is an error;
// stale unit entries are dropped by inventory.RestoreProject.
func (m *ProjectModel) ToDomain() (*inventory.Project, error) {
	var models []modelRecord
	if err := decodeJSON(m.ModelsJSON, &models); err != nil {
		return nil, fmt.Errorf("project %s: decode models: %w", m.ID, err)
	}
	var mapping, status map[string]string
	if err := decodeJSON(m.UnitMappingJSON, &mapping); err != nil {
		return nil, fmt.Errorf("project %s: decode unit_mapping: %w", m.ID, err)
	}
	if err := decodeJSON(m.UnitStatusJSON, &status); err != nil {
		return nil, fmt.Errorf("project %s: decode unit_status: %w", m.ID, err)
	}
	var bookings map[string]bookingRecord
	if err := decodeJSON(m.UnitBookingsJSON, &bookings); err != nil {
		return nil, fmt.Errorf("project %s: decode unit_bookings: %w", m.ID, err)
	}

	snap := inventory.ProjectSnapshot{
		ID: m.ID,
		Details: inventory.ProjectDetails{
			Name:         m.Name,
			DeveloperID:  m.DeveloperID,
			Developer:    m.Developer,
			Description:  m.Description,
			City:         m.City,
			District:     m.District,
			GoogleMapURL: m.GoogleMapURL,
			BrochureURL:  m.BrochureURL,
			Status:       inventory.ProjectStatus(m.Status),
		},
		Structure:    inventory.NewStructure(m.FloorsCount, m.UnitsPerFloor, m.AnnexCount, m.BasementCount),
		Models:       make([]inventory.ProjectModel, 0, len(models)),
		UnitMapping:  make(map[inventory.UnitKey]string, len(mapping)),
		UnitStatus:   make(map[inventory.UnitKey]inventory.Availability, len(status)),
		UnitBookings: make(map[inventory.UnitKey]inventory.BookingDetails, len(bookings)),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Version:      m.Version,
	}
	for _, r := range models {
		snap.Models = append(snap.Models, inventory.ProjectModel{
			ID: r.ID,
			ModelAttributes: inventory.ModelAttributes{
				Name:      r.Name,
				ColorTag:  r.ColorTag,
				Area:      r.Area,
				Price:     r.Price,
				Rooms:     r.Rooms,
				Bathrooms: r.Bathrooms,
				Halls:     r.Halls,
				Finishing: inventory.Finishing(r.Finishing),
				Features:  r.Features,
			},
		})
	}
	for k, v := range mapping {
		snap.UnitMapping[inventory.UnitKey(k)] = v
	}
	for k, v := range status {
		snap.UnitStatus[inventory.UnitKey(k)] = inventory.Availability(v)
	}
	for k, r := range bookings {
		snap.UnitBookings[inventory.UnitKey(k)] = inventory.BookingDetails{
			UnitKey:            inventory.UnitKey(k),
			UnitNumber:         r.UnitNumber,
			MarketerName:       r.MarketerName,
			MarketerPhone:      r.MarketerPhone,
			CustomerName:       r.CustomerName,
			CustomerPhone:      r.CustomerPhone,
			Type:               inventory.Availability(r.Type),
			Timestamp:          r.Timestamp,
			BrokerageFee:       r.BrokerageFee,
			MarketerPercentage: r.MarketerPercentage,
			IsExternalMarketer: r.IsExternalMarketer,
		}
	}
	return inventory.RestoreProject(snap), nil
}

// FromDomain populates the persistence model from a domain Project
func (m *ProjectModel) FromDomain(p *inventory.Project) error {
	snap := p.Snapshot()
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = snap.Details.Name
	m.DeveloperID = snap.Details.DeveloperID
	m.Developer = snap.Details.Developer
	m.Description = snap.Details.Description
	m.City = snap.Details.City
	m.District = snap.Details.District
	m.GoogleMapURL = snap.Details.GoogleMapURL
	m.BrochureURL = snap.Details.BrochureURL
	m.Status = string(snap.Details.Status)
	m.FloorsCount = snap.Structure.FloorsCount
	m.UnitsPerFloor = snap.Structure.UnitsPerFloor
	m.AnnexCount = snap.Structure.AnnexCount
	m.BasementCount = snap.Structure.BasementCount

	models := make([]modelRecord, 0, len(snap.Models))
	for _, pm := range snap.Models {
		models = append(models, modelRecord{
			ID:        pm.ID,
			Name:      pm.Name,
			ColorTag:  pm.ColorTag,
			Area:      pm.Area,
			Price:     pm.Price,
			Rooms:     pm.Rooms,
			Bathrooms: pm.Bathrooms,
			Halls:     pm.Halls,
			Finishing: string(pm.Finishing),
			Features:  pm.Features,
		})
	}
	mapping := make(map[string]string, len(snap.UnitMapping))
	for k, v := range snap.UnitMapping {
		mapping[string(k)] = v
	}
	status := make(map[string]string, len(snap.UnitStatus))
	for k, v := range snap.UnitStatus {
		status[string(k)] = string(v)
	}
	bookings := make(map[string]bookingRecord, len(snap.UnitBookings))
	for k, b := range snap.UnitBookings {
		bookings[string(k)] = bookingRecord{
			UnitNumber:         b.UnitNumber,
			MarketerName:       b.MarketerName,
			MarketerPhone:      b.MarketerPhone,
			CustomerName:       b.CustomerName,
			CustomerPhone:      b.CustomerPhone,
			Type:               string(b.Type),
			Timestamp:          b.Timestamp,
			BrokerageFee:       b.BrokerageFee,
			MarketerPercentage: b.MarketerPercentage,
			IsExternalMarketer: b.IsExternalMarketer,
		}
	}

	var err error
	if m.ModelsJSON, err = encodeJSON(models); err != nil {
		return err
	}
	if m.UnitMappingJSON, err = encodeJSON(mapping); err != nil {
		return err
	}
	if m.UnitStatusJSON, err = encodeJSON(status); err != nil {
		return err
	}
	if m.UnitBookingsJSON, err = encodeJSON(bookings); err != nil {
		return err
	}
	return nil
}

// ProjectModelFromDomain creates a new persistence model from a domain Project
func ProjectModelFromDomain(p *inventory.Project) (*ProjectModel, error) {
	m := &ProjectModel{}
	if err := m.FromDomain(p); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeJSON treats an empty column as an empty document
func decodeJSON(raw string, v any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
