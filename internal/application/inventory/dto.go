package inventory

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Count is a structural count as typed into the building form. It decodes
// from a JSON number or a string of Western or Arabic-Indic digits;
// anything unparsable or negative becomes zero and huge values saturate
// at math.MaxInt32, failing the max binding below.
type Count int

// UnmarshalJSON implements json.Unmarshaler
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Count(inventory.ParseCount(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	switch {
	case f < 0:
		*c = 0
	case f >= math.MaxInt32:
		*c = math.MaxInt32
	default:
		*c = Count(int(f))
	}
	return nil
}

// StructureRequest describes the building shape. The max bindings mirror
// inventory.MaxFloors and the other ceilings.
type StructureRequest struct {
	FloorsCount   Count `json:"floors_count" binding:"max=200"`
	UnitsPerFloor Count `json:"units_per_floor" binding:"max=50"`
	AnnexCount    Count `json:"annex_count" binding:"max=50"`
	BasementCount Count `json:"basement_count" binding:"max=50"`
}

// ToDomain converts the request into a Structure
func (r StructureRequest) ToDomain() inventory.Structure {
	return inventory.NewStructure(int(r.FloorsCount), int(r.UnitsPerFloor), int(r.AnnexCount), int(r.BasementCount))
}

// ModelRequest represents a model in create and update requests
type ModelRequest struct {
	ID        string          `json:"id" binding:"omitempty,max=64"`
	Name      string          `json:"name" binding:"required,max=200"`
	ColorTag  string          `json:"color_tag" binding:"omitempty,max=32"`
	Area      decimal.Decimal `json:"area"`
	Price     decimal.Decimal `json:"price"`
	Rooms     int             `json:"rooms" binding:"min=0"`
	Bathrooms int             `json:"bathrooms" binding:"min=0"`
	Halls     int             `json:"halls" binding:"min=0"`
	Finishing string          `json:"finishing" binding:"omitempty,oneof=economic medium luxury"`
	Features  []string        `json:"features"`
}

// Attributes converts the request into model attributes
func (r ModelRequest) Attributes() inventory.ModelAttributes {
	return inventory.ModelAttributes{
		Name:      r.Name,
		ColorTag:  r.ColorTag,
		Area:      r.Area,
		Price:     r.Price,
		Rooms:     r.Rooms,
		Bathrooms: r.Bathrooms,
		Halls:     r.Halls,
		Finishing: inventory.Finishing(r.Finishing),
		Features:  r.Features,
	}
}

// ProjectDetailsRequest holds the descriptive fields of a project
type ProjectDetailsRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	DeveloperID  string `json:"developer_id" binding:"omitempty,max=64"`
	Developer    string `json:"developer" binding:"required,max=200"`
	Description  string `json:"description" binding:"omitempty,max=5000"`
	City         string `json:"city" binding:"required,max=100"`
	District     string `json:"district" binding:"omitempty,max=100"`
	GoogleMapURL string `json:"google_map_url" binding:"omitempty,url"`
	BrochureURL  string `json:"brochure_url" binding:"omitempty,url"`
	Status       string `json:"status" binding:"omitempty,oneof=ready under_construction under_finishing"`
}

// ToDomain converts the request into project details
func (r ProjectDetailsRequest) ToDomain() inventory.ProjectDetails {
	return inventory.ProjectDetails{
		Name:         r.Name,
		DeveloperID:  r.DeveloperID,
		Developer:    r.Developer,
		Description:  r.Description,
		City:         r.City,
		District:     r.District,
		GoogleMapURL: r.GoogleMapURL,
		BrochureURL:  r.BrochureURL,
		Status:       inventory.ProjectStatus(r.Status),
	}
}

// CreateProjectRequest represents a request to create a project.
// UnitMapping optionally binds units (key -> model ID) at creation.
type CreateProjectRequest struct {
	ProjectDetailsRequest
	Structure   StructureRequest  `json:"structure"`
	Models      []ModelRequest    `json:"models" binding:"required,min=1,dive"`
	UnitMapping map[string]string `json:"unit_mapping"`
}

// UpdateProjectRequest represents a request to update descriptive fields
type UpdateProjectRequest struct {
	ProjectDetailsRequest
}

// RestructureRequest represents a request to change the building structure
type RestructureRequest struct {
	Structure StructureRequest `json:"structure"`
}

// AssignUnitRequest binds (or, when already bound to the model, unbinds) a unit
type AssignUnitRequest struct {
	UnitKey string `json:"unit_key" binding:"required"`
	ModelID string `json:"model_id" binding:"required"`
}

// SetUnitStatusRequest moves a unit to a new availability
type SetUnitStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available reserved sold"`
}

// RecordBookingRequest records the commercial terms of a booking
type RecordBookingRequest struct {
	Type               string          `json:"type" binding:"required,oneof=available reserved sold"`
	Mode               string          `json:"mode" binding:"omitempty,oneof=quick detailed"`
	MarketerName       string          `json:"marketer_name" binding:"omitempty,max=200"`
	MarketerPhone      string          `json:"marketer_phone" binding:"omitempty,max=32"`
	CustomerName       string          `json:"customer_name" binding:"omitempty,max=200"`
	CustomerPhone      string          `json:"customer_phone" binding:"omitempty,max=32"`
	BrokerageFee       decimal.Decimal `json:"brokerage_fee"`
	MarketerPercentage decimal.Decimal `json:"marketer_percentage"`
	IsExternalMarketer bool            `json:"is_external_marketer"`
}

// BookingMode returns the requested mode, detailed when omitted
func (r RecordBookingRequest) BookingMode() inventory.BookingMode {
	if r.Mode == "" {
		return inventory.BookingModeDetailed
	}
	return inventory.BookingMode(r.Mode)
}

// ToDomain converts the request into a booking input
func (r RecordBookingRequest) ToDomain() inventory.BookingInput {
	return inventory.BookingInput{
		Type:               inventory.Availability(r.Type),
		MarketerName:       r.MarketerName,
		MarketerPhone:      r.MarketerPhone,
		CustomerName:       r.CustomerName,
		CustomerPhone:      r.CustomerPhone,
		BrokerageFee:       r.BrokerageFee,
		MarketerPercentage: r.MarketerPercentage,
		IsExternalMarketer: r.IsExternalMarketer,
	}
}

// ProjectListFilter represents filter options for the project list
type ProjectListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToDomain converts the list filter into a repository filter
func (f ProjectListFilter) ToDomain() shared.Filter {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	return filter
}

// StructureResponse represents the building shape in API responses
type StructureResponse struct {
	FloorsCount   int `json:"floors_count"`
	UnitsPerFloor int `json:"units_per_floor"`
	AnnexCount    int `json:"annex_count"`
	BasementCount int `json:"basement_count"`
	Capacity      int `json:"capacity"`
}

// ModelResponse represents a model in API responses
type ModelResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	ColorTag       string          `json:"color_tag,omitempty"`
	Area           decimal.Decimal `json:"area"`
	Price          decimal.Decimal `json:"price"`
	Rooms          int             `json:"rooms"`
	Bathrooms      int             `json:"bathrooms"`
	Halls          int             `json:"halls"`
	Finishing      string          `json:"finishing,omitempty"`
	Features       []string        `json:"features"`
	AvailableUnits int             `json:"available_units"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	UnitKey            string          `json:"unit_key"`
	UnitNumber         string          `json:"unit_number"`
	ModelID            string          `json:"model_id,omitempty"`
	MarketerName       string          `json:"marketer_name"`
	MarketerPhone      string          `json:"marketer_phone"`
	CustomerName       string          `json:"customer_name"`
	CustomerPhone      string          `json:"customer_phone"`
	Type               string          `json:"type"`
	Timestamp          time.Time       `json:"timestamp"`
	BrokerageFee       decimal.Decimal `json:"brokerage_fee"`
	MarketerPercentage decimal.Decimal `json:"marketer_percentage"`
	IsExternalMarketer bool            `json:"is_external_marketer"`
	IsPlaceholder      bool            `json:"is_placeholder"`
}

// StatsResponse summarizes unit states
type StatsResponse struct {
	Capacity  int `json:"capacity"`
	Assigned  int `json:"assigned"`
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Sold      int `json:"sold"`
}

// ProjectResponse represents a full project in API responses
type ProjectResponse struct {
	ID           uuid.UUID                  `json:"id"`
	Name         string                     `json:"name"`
	DeveloperID  string                     `json:"developer_id,omitempty"`
	Developer    string                     `json:"developer"`
	Description  string                     `json:"description,omitempty"`
	City         string                     `json:"city"`
	District     string                     `json:"district,omitempty"`
	GoogleMapURL string                     `json:"google_map_url,omitempty"`
	BrochureURL  string                     `json:"brochure_url,omitempty"`
	Status       string                     `json:"status"`
	Structure    StructureResponse          `json:"structure"`
	Models       []ModelResponse            `json:"models"`
	UnitMapping  map[string]string          `json:"unit_mapping"`
	UnitStatus   map[string]string          `json:"unit_status"`
	UnitBookings map[string]BookingResponse `json:"unit_bookings"`
	Stats        StatsResponse              `json:"stats"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
	Version      int                        `json:"version"`
}

// ProjectListItemResponse represents a project in list responses
type ProjectListItemResponse struct {
	ID         uuid.UUID     `json:"id"`
	Name       string        `json:"name"`
	Developer  string        `json:"developer"`
	City       string        `json:"city"`
	District   string        `json:"district,omitempty"`
	Status     string        `json:"status"`
	ModelCount int           `json:"model_count"`
	Stats      StatsResponse `json:"stats"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// UnitResponse is one slot of the blueprint grid
type UnitResponse struct {
	Key       string           `json:"key"`
	Zone      string           `json:"zone"`
	Floor     int              `json:"floor,omitempty"`
	Index     int              `json:"index"`
	Number    string           `json:"number"`
	ModelID   string           `json:"model_id,omitempty"`
	ModelName string           `json:"model_name,omitempty"`
	ColorTag  string           `json:"color_tag,omitempty"`
	Status    string           `json:"status,omitempty"`
	Booking   *BookingResponse `json:"booking,omitempty"`
}

// BlueprintResponse is the full unit grid of a project in blueprint order
type BlueprintResponse struct {
	ProjectID uuid.UUID         `json:"project_id"`
	Structure StructureResponse `json:"structure"`
	Units     []UnitResponse    `json:"units"`
	Stats     StatsResponse     `json:"stats"`
}

// ToStructureResponse converts a Structure to its response shape
func ToStructureResponse(s inventory.Structure) StructureResponse {
	return StructureResponse{
		FloorsCount:   s.FloorsCount,
		UnitsPerFloor: s.UnitsPerFloor,
		AnnexCount:    s.AnnexCount,
		BasementCount: s.BasementCount,
		Capacity:      s.Capacity(),
	}
}

// ToStatsResponse converts UnitStats to its response shape
func ToStatsResponse(s inventory.UnitStats) StatsResponse {
	return StatsResponse(s)
}

// ToBookingResponse converts BookingDetails to its response shape
func ToBookingResponse(b inventory.BookingDetails, modelID string) BookingResponse {
	return BookingResponse{
		UnitKey:            b.UnitKey.String(),
		UnitNumber:         b.UnitNumber,
		ModelID:            modelID,
		MarketerName:       b.MarketerName,
		MarketerPhone:      b.MarketerPhone,
		CustomerName:       b.CustomerName,
		CustomerPhone:      b.CustomerPhone,
		Type:               b.Type.String(),
		Timestamp:          b.Timestamp,
		BrokerageFee:       b.BrokerageFee,
		MarketerPercentage: b.MarketerPercentage,
		IsExternalMarketer: b.IsExternalMarketer,
		IsPlaceholder:      b.IsPlaceholder(),
	}
}

// ToProjectResponse converts a Project to its response shape
func ToProjectResponse(p *inventory.Project) ProjectResponse {
	available := p.AvailableByModel()
	models := make([]ModelResponse, 0, len(p.Models()))
	for _, m := range p.Models() {
		features := m.Features
		if features == nil {
			features = []string{}
		}
		models = append(models, ModelResponse{
			ID:             m.ID,
			Name:           m.Name,
			ColorTag:       m.ColorTag,
			Area:           m.Area,
			Price:          m.Price,
			Rooms:          m.Rooms,
			Bathrooms:      m.Bathrooms,
			Halls:          m.Halls,
			Finishing:      string(m.Finishing),
			Features:       features,
			AvailableUnits: available[m.ID],
		})
	}

	mapping := p.UnitMapping()
	unitMapping := make(map[string]string, len(mapping))
	for k, v := range mapping {
		unitMapping[k.String()] = v
	}
	unitStatus := make(map[string]string, len(mapping))
	for k, v := range p.UnitStatus() {
		unitStatus[k.String()] = v.String()
	}
	bookings := p.UnitBookings()
	unitBookings := make(map[string]BookingResponse, len(bookings))
	for k, b := range bookings {
		unitBookings[k.String()] = ToBookingResponse(b, mapping[k])
	}

	return ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		DeveloperID:  p.DeveloperID,
		Developer:    p.Developer,
		Description:  p.Description,
		City:         p.City,
		District:     p.District,
		GoogleMapURL: p.GoogleMapURL,
		BrochureURL:  p.BrochureURL,
		Status:       string(p.Status),
		Structure:    ToStructureResponse(p.Structure()),
		Models:       models,
		UnitMapping:  unitMapping,
		UnitStatus:   unitStatus,
		UnitBookings: unitBookings,
		Stats:        ToStatsResponse(p.Stats()),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// ToProjectListItemResponse converts a Project to its list item shape
func ToProjectListItemResponse(p *inventory.Project) ProjectListItemResponse {
	return ProjectListItemResponse{
		ID:         p.ID,
		Name:       p.Name,
		Developer:  p.Developer,
		City:       p.City,
		District:   p.District,
		Status:     string(p.Status),
		ModelCount: len(p.Models()),
		Stats:      ToStatsResponse(p.Stats()),
		UpdatedAt:  p.UpdatedAt,
	}
}

// ToProjectListItemResponses converts a slice of projects to list items
func ToProjectListItemResponses(projects []*inventory.Project) []ProjectListItemResponse {
	out := make([]ProjectListItemResponse, len(projects))
	for i, p := range projects {
		out[i] = ToProjectListItemResponse(p)
	}
	return out
}

// ToBlueprintResponse renders every slot of the project in blueprint order
func ToBlueprintResponse(p *inventory.Project) BlueprintResponse {
	views := p.Units()
	units := make([]UnitResponse, len(views))
	for i, v := range views {
		u := UnitResponse{
			Key:    v.Key.String(),
			Zone:   string(v.Zone),
			Floor:  v.Floor,
			Index:  v.Index,
			Number: v.Number,
		}
		if v.Assigned() {
			u.ModelID = v.ModelID
			u.Status = v.Status.String()
			if m, ok := p.Model(v.ModelID); ok {
				u.ModelName = m.Name
				u.ColorTag = m.ColorTag
			}
		}
		if v.Booking != nil {
			b := ToBookingResponse(*v.Booking, v.ModelID)
			u.Booking = &b
		}
		units[i] = u
	}
	return BlueprintResponse{
		ProjectID: p.ID,
		Structure: ToStructureResponse(p.Structure()),
		Units:     units,
		Stats:     ToStatsResponse(p.Stats()),
	}
}

// sortedMappingKeys returns the mapping keys in lexical order so that
// initial assignments apply deterministically
func sortedMappingKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
