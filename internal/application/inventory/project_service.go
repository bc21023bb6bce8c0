package inventory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/ryznreal/offers/internal/domain/inventory"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/ryznreal/offers/internal/infrastructure/logger"
	"github.com/ryznreal/offers/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultMaxBrochureSize is the largest brochure accepted (25 MB)
const DefaultMaxBrochureSize int64 = 25 << 20

// ProjectService handles project inventory operations. Each mutation loads
// the project, applies a domain mutator, saves the new snapshot and
// publishes its events. Mutations of one project are serialized within
// the process; across processes the last write wins.
type ProjectService struct {
	projectRepo     inventory.ProjectRepository
	brochures       BrochureStorage
	eventPublisher  shared.EventPublisher
	maxBrochureSize int64
	locks           projectLocks
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo inventory.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo:     projectRepo,
		maxBrochureSize: DefaultMaxBrochureSize,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProjectService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBrochureStorage enables brochure uploads
func (s *ProjectService) SetBrochureStorage(storage BrochureStorage, maxSize int64) {
	s.brochures = storage
	if maxSize > 0 {
		s.maxBrochureSize = maxSize
	}
}

// publishEvents publishes events after a successful save.
// Errors are logged by the event bus, not propagated.
func (s *ProjectService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// update runs a load-mutate-save cycle for one project. Events are
// published once the project lock is released.
func (s *ProjectService) update(
	ctx context.Context,
	id uuid.UUID,
	mutate func(*inventory.Project) (*inventory.Project, error),
) (*inventory.Project, error) {
	next, err := s.save(ctx, id, mutate)
	if err != nil {
		return nil, err
	}
	events := next.GetDomainEvents()
	next.ClearDomainEvents()
	s.publishEvents(ctx, events)
	return next, nil
}

func (s *ProjectService) save(
	ctx context.Context,
	id uuid.UUID,
	mutate func(*inventory.Project) (*inventory.Project, error),
) (*inventory.Project, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := mutate(current)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *ProjectService) find(ctx context.Context, id uuid.UUID) (*inventory.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Project not found")
		}
		return nil, err
	}
	return project, nil
}

// Create creates a project and applies the optional initial unit mapping
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "create")
	defer span.End()

	models := make([]inventory.ProjectModel, 0, len(req.Models))
	for _, m := range req.Models {
		model, err := inventory.NewProjectModel(m.ID, m.Attributes())
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		models = append(models, model)
	}

	project, err := inventory.NewProject(req.ProjectDetailsRequest.ToDomain(), req.Structure.ToDomain(), models)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	events := project.GetDomainEvents()

	for _, key := range sortedMappingKeys(req.UnitMapping) {
		project, err = project.AssignUnit(inventory.UnitKey(key), req.UnitMapping[key])
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		events = append(events, project.GetDomainEvents()...)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, project.ID.String(),
		telemetry.SpanAttrEventCount, len(events),
	)

	if err := s.projectRepo.Save(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, events)
	project.ClearDomainEvents()

	resp := ToProjectResponse(project)
	return &resp, nil
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "get")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, id.String())

	project, err := s.find(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToProjectResponse(project)
	return &resp, nil
}

// List retrieves a page of projects, newest first
func (s *ProjectService) List(ctx context.Context, filter ProjectListFilter) ([]ProjectListItemResponse, int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "list")
	defer span.End()

	domainFilter := filter.ToDomain()
	projects, err := s.projectRepo.FindAll(ctx, domainFilter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, err
	}
	total, err := s.projectRepo.Count(ctx, domainFilter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrResultCount, len(projects))
	return ToProjectListItemResponses(projects), total, nil
}

// UpdateDetails replaces the descriptive fields of a project
func (s *ProjectService) UpdateDetails(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "update_details")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, id.String())

	details := req.ProjectDetailsRequest.ToDomain()
	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		// the brochure is managed by UploadBrochure unless explicitly replaced
		if details.BrochureURL == "" {
			details.BrochureURL = p.BrochureURL
		}
		return p.UpdateDetails(details)
	})
	return s.respond(span, project, err)
}

// Restructure changes the building structure of a project
func (s *ProjectService) Restructure(ctx context.Context, id uuid.UUID, req RestructureRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "restructure")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, id.String())

	structure := req.Structure.ToDomain()
	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		return p.Restructure(structure)
	})
	return s.respond(span, project, err)
}

// AddModel appends a model to the project catalog
func (s *ProjectService) AddModel(ctx context.Context, id uuid.UUID, req ModelRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "add_model")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, id.String())

	model, err := inventory.NewProjectModel(req.ID, req.Attributes())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrModelID, model.ID)

	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		return p.AddModel(model)
	})
	return s.respond(span, project, err)
}

// UpdateModel replaces the attributes of a model
func (s *ProjectService) UpdateModel(ctx context.Context, id uuid.UUID, modelID string, req ModelRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "update_model")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, id.String(),
		telemetry.SpanAttrModelID, modelID,
	)

	attrs := req.Attributes()
	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		return p.UpdateModel(modelID, attrs)
	})
	return s.respond(span, project, err)
}

// RemoveModel removes a model and releases its units
func (s *ProjectService) RemoveModel(ctx context.Context, id uuid.UUID, modelID string) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "remove_model")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, id.String(),
		telemetry.SpanAttrModelID, modelID,
	)

	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		return p.RemoveModel(modelID)
	})
	return s.respond(span, project, err)
}

// AssignUnit binds a unit to a model, or unbinds it when it is already
// bound to that model
func (s *ProjectService) AssignUnit(ctx context.Context, id uuid.UUID, req AssignUnitRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "assign_unit")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, id.String(),
		telemetry.SpanAttrUnitKey, req.UnitKey,
		telemetry.SpanAttrModelID, req.ModelID,
	)

	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		return p.AssignUnit(inventory.UnitKey(req.UnitKey), req.ModelID)
	})
	return s.respond(span, project, err)
}

// SetUnitStatus moves an assigned unit to a new availability
func (s *ProjectService) SetUnitStatus(ctx context.Context, id uuid.UUID, unitKey string, req SetUnitStatusRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "set_unit_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, id.String(),
		telemetry.SpanAttrUnitKey, unitKey,
		telemetry.SpanAttrUnitStatus, req.Status,
	)

	status, err := inventory.ParseAvailability(req.Status)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		return p.SetUnitStatus(inventory.UnitKey(unitKey), status)
	})
	return s.respond(span, project, err)
}

// RecordBooking records the commercial terms of a unit booking
func (s *ProjectService) RecordBooking(ctx context.Context, id uuid.UUID, unitKey string, req RecordBookingRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "record_booking")
	defer span.End()
	mode := req.BookingMode()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, id.String(),
		telemetry.SpanAttrUnitKey, unitKey,
		telemetry.SpanAttrUnitStatus, req.Type,
		telemetry.SpanAttrBookingMode, string(mode),
	)

	input := req.ToDomain()
	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		return p.RecordBooking(inventory.UnitKey(unitKey), input, mode)
	})
	return s.respond(span, project, err)
}

// ListBookings returns the bookings of a project, most recent first
func (s *ProjectService) ListBookings(ctx context.Context, id uuid.UUID) ([]BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "list_bookings")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, id.String())

	project, err := s.find(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	bookings := project.ListBookings()
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		modelID, _ := project.ModelOf(b.UnitKey)
		out[i] = ToBookingResponse(b, modelID)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrResultCount, len(out))
	return out, nil
}

// Stats returns the unit state counts of a project
func (s *ProjectService) Stats(ctx context.Context, id uuid.UUID) (*StatsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "stats")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, id.String())

	project, err := s.find(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	stats := ToStatsResponse(project.Stats())
	return &stats, nil
}

// Blueprint returns every unit slot of a project for grid rendering
func (s *ProjectService) Blueprint(ctx context.Context, id uuid.UUID) (*BlueprintResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "blueprint")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrProjectID, id.String())

	project, err := s.find(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToBlueprintResponse(project)
	return &resp, nil
}

// UploadBrochure stores a brochure file and points the project at it
func (s *ProjectService) UploadBrochure(ctx context.Context, id uuid.UUID, upload BrochureUpload) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "upload_brochure")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, id.String(),
		"content_type", upload.ContentType,
		"size", upload.Size,
	)

	if s.brochures == nil {
		err := shared.NewDomainError(shared.CodeInvalidState, "Brochure storage is not configured")
		telemetry.RecordError(span, err)
		return nil, err
	}
	contentType := normalizeContentType(upload.ContentType)
	if _, ok := AllowedBrochureTypes[contentType]; !ok {
		err := shared.NewDomainErrorf(shared.CodeInvalidInput,
			"Content type %q is not allowed. Allowed types: PDF, JPEG, PNG and WebP.", upload.ContentType)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if upload.Size <= 0 || upload.Size > s.maxBrochureSize {
		err := shared.NewDomainErrorf(shared.CodeInvalidInput,
			"Brochure size must be between 1 byte and %d bytes", s.maxBrochureSize)
		telemetry.RecordError(span, err)
		return nil, err
	}

	// fail before uploading when the project does not exist
	if _, err := s.find(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	key := brochureKey(id, upload.FileName, contentType)
	url, err := s.brochures.Upload(ctx, key, upload.Body, upload.Size, contentType)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	project, err := s.update(ctx, id, func(p *inventory.Project) (*inventory.Project, error) {
		return p.SetBrochureURL(url)
	})
	if err != nil {
		if delErr := s.brochures.Delete(ctx, key); delErr != nil {
			logger.L(ctx).Warn("Failed to remove orphaned brochure",
				zap.String("storage_key", key),
				zap.Error(delErr),
			)
		}
	}
	return s.respond(span, project, err)
}

// UnitTotals aggregates unit state over every project
func (s *ProjectService) UnitTotals(ctx context.Context) (telemetry.UnitTotals, error) {
	projects, err := s.projectRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return telemetry.UnitTotals{}, err
	}
	totals := telemetry.UnitTotals{Projects: int64(len(projects))}
	for _, p := range projects {
		stats := p.Stats()
		totals.Capacity += int64(stats.Capacity)
		totals.Assigned += int64(stats.Assigned)
		totals.Available += int64(stats.Available)
		totals.Reserved += int64(stats.Reserved)
		totals.Sold += int64(stats.Sold)
	}
	return totals, nil
}

var _ telemetry.UnitTotalsProvider = (*ProjectService)(nil)

// respond records err on the span or renders the saved snapshot
func (s *ProjectService) respond(span trace.Span, project *inventory.Project, err error) (*ProjectResponse, error) {
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToProjectResponse(project)
	return &resp, nil
}

// projectLocks hands out one mutex per project ID and forgets it once no
// caller holds or waits for it
type projectLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*projectLock
}

type projectLock struct {
	mu   sync.Mutex
	refs int
}

func (l *projectLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*projectLock)
	}
	pl, ok := l.locks[id]
	if !ok {
		pl = &projectLock{}
		l.locks[id] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
