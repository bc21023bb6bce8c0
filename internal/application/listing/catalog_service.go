package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/listing"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/ryznreal/offers/internal/infrastructure/telemetry"
)

// CatalogMetrics records the outcome of a catalog computation
type CatalogMetrics interface {
	RecordCatalog(ctx context.Context, synthesized, standalone int, took time.Duration)
}

// CatalogService serves the buyer catalog. Synthesized entries are
// recomputed from the current projects on every read.
type CatalogService struct {
	projectRepo  inventory.ProjectRepository
	propertyRepo listing.PropertyRepository
	metrics      CatalogMetrics
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(projectRepo inventory.ProjectRepository, propertyRepo listing.PropertyRepository) *CatalogService {
	return &CatalogService{
		projectRepo:  projectRepo,
		propertyRepo: propertyRepo,
	}
}

// SetMetrics sets the recorder for catalog size and synthesis time
func (s *CatalogService) SetMetrics(metrics CatalogMetrics) {
	s.metrics = metrics
}

// Catalog synthesizes the full catalog and applies filter to it
func (s *CatalogService) Catalog(ctx context.Context, filter CatalogFilter) (*CatalogResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "list")
	defer span.End()

	projects, err := s.projectRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	standalone, err := s.propertyRepo.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	catalog := listing.Synthesize(projects, standalone)
	synthesized := len(catalog) - len(standalone)
	if s.metrics != nil {
		s.metrics.RecordCatalog(ctx, synthesized, len(standalone), time.Since(start))
	}

	items := listing.Apply(catalog, filter.ToDomain())
	telemetry.SetAttributes(span,
		"synthesized", synthesized,
		"standalone", len(standalone),
		telemetry.SpanAttrResultCount, len(items),
	)

	return &CatalogResponse{
		Items:       ToPropertyResponses(items),
		Total:       len(items),
		Synthesized: synthesized,
		Standalone:  len(standalone),
	}, nil
}

// GetProperty returns a catalog entry by ID, synthesized or standalone.
// A synthesized entry exists only while its model has an available unit.
func (s *CatalogService) GetProperty(ctx context.Context, id string) (*PropertyResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "get_property")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPropertyID, id)

	var (
		prop listing.Property
		err  error
	)
	if strings.HasPrefix(id, listing.SyntheticIDPrefix) {
		prop, err = s.findSynthesized(ctx, id)
	} else {
		prop, err = s.findStandalone(ctx, id)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToPropertyResponse(prop)
	return &resp, nil
}

func (s *CatalogService) findSynthesized(ctx context.Context, id string) (listing.Property, error) {
	// SAMPLE-{project uuid}-{model id}
	rest := strings.TrimPrefix(id, listing.SyntheticIDPrefix)
	const uuidLen = 36
	if len(rest) <= uuidLen+1 || rest[uuidLen] != '-' {
		return listing.Property{}, errPropertyNotFound()
	}
	projectID, err := uuid.Parse(rest[:uuidLen])
	if err != nil {
		return listing.Property{}, errPropertyNotFound()
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return listing.Property{}, errPropertyNotFound()
		}
		return listing.Property{}, err
	}
	for _, p := range listing.Synthesize([]*inventory.Project{project}, nil) {
		if p.ID == id {
			return p, nil
		}
	}
	return listing.Property{}, errPropertyNotFound()
}

func (s *CatalogService) findStandalone(ctx context.Context, id string) (listing.Property, error) {
	prop, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return listing.Property{}, errPropertyNotFound()
		}
		return listing.Property{}, err
	}
	return *prop, nil
}

// CreateProperty validates and stores one standalone property
func (s *CatalogService) CreateProperty(ctx context.Context, req PropertyRequest) (*PropertyResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "create_property")
	defer span.End()

	prop, err := listing.NewStandaloneProperty(req.ToDomain())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPropertyID, prop.ID)

	if err := s.propertyRepo.SaveBatch(ctx, []listing.Property{prop}); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToPropertyResponse(prop)
	return &resp, nil
}

// ImportProperties validates a batch and stores it ahead of existing
// properties in input order. Nothing is stored if any entry is invalid.
func (s *CatalogService) ImportProperties(ctx context.Context, req ImportPropertiesRequest) ([]PropertyResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "import_properties")
	defer span.End()
	telemetry.SetAttribute(span, "batch_size", len(req.Properties))

	props := make([]listing.Property, 0, len(req.Properties))
	for i, r := range req.Properties {
		prop, err := listing.NewStandaloneProperty(r.ToDomain())
		if err != nil {
			err = annotateRow(i, err)
			telemetry.RecordError(span, err)
			return nil, err
		}
		props = append(props, prop)
	}

	if err := s.propertyRepo.SaveBatch(ctx, props); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return ToPropertyResponses(props), nil
}

// DeleteProperty removes a standalone property. Synthesized entries
// disappear only when their model has no available unit left.
func (s *CatalogService) DeleteProperty(ctx context.Context, id string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "delete_property")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPropertyID, id)

	if strings.HasPrefix(id, listing.SyntheticIDPrefix) {
		err := shared.NewDomainError(shared.CodeInvalidState,
			"Synthesized entries are derived from project inventory and cannot be deleted")
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = errPropertyNotFound()
		}
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

func errPropertyNotFound() *shared.DomainError {
	return shared.NewDomainError(shared.CodeNotFound, "Property not found")
}

// annotateRow prefixes a validation error with its 1-based row number,
// keeping the error code
func annotateRow(i int, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return shared.NewDomainErrorf(de.Code, "Row %d: %s", i+1, de.Message)
	}
	return err
}
