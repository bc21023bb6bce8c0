package listing

import (
	"fmt"

	"github.com/ryznreal/offers/internal/domain/inventory"
)

// SyntheticIDPrefix marks catalog entries derived from projects
const SyntheticIDPrefix = "SAMPLE-"

// SyntheticID is the catalog identity of a project model
func SyntheticID(projectID, modelID string) string {
	return fmt.Sprintf("%s%s-%s", SyntheticIDPrefix, projectID, modelID)
}

// Synthesize builds the buyer catalog: one entry per model that has at
// least one available unit, in project then catalog order, followed by the
// standalone properties as given. It is pure; equal inputs give equal
// output. Units that are unassigned or bound to unknown models are never
// counted, so inconsistent projects just expose fewer models.
func Synthesize(projects []*inventory.Project, standalone []Property) []Property {
	out := make([]Property, 0, len(standalone))
	for _, p := range projects {
		if p == nil {
			continue
		}
		available := p.AvailableByModel()
		for _, m := range p.Models() {
			if available[m.ID] == 0 {
				continue
			}
			out = append(out, synthesize(p, m))
		}
	}
	return append(out, standalone...)
}

func synthesize(p *inventory.Project, m inventory.ProjectModel) Property {
	projectID := p.ID.String()
	return Property{
		ID:                 SyntheticID(projectID, m.ID),
		Type:               PropertyTypeResidential,
		City:               p.City,
		District:           p.District,
		Developer:          p.Developer,
		ProjectName:        fmt.Sprintf("%s - %s", p.Name, m.Name),
		Price:              m.Price,
		MapURL:             p.GoogleMapURL,
		CreatedAt:          p.CreatedAt,
		ProjectID:          projectID,
		ModelID:            m.ID,
		ProjectDescription: p.Description,
		ProjectBrochureURL: p.BrochureURL,
		Status:             p.ProjectDetails.Status,
		UnitType:           UnitTypeApartment,
		Rooms:              m.Rooms,
		Bathrooms:          m.Bathrooms,
		Area:               m.Area,
		Finishing:          m.Finishing,
		Notes:              fmt.Sprintf("Model %s with its own specifications, currently available in %s.", m.Name, p.Name),
	}
}
