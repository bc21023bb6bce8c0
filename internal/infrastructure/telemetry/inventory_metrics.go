package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// UnitTotals aggregates unit state across all projects.
type UnitTotals struct {
	Projects  int64
	Capacity  int64
	Assigned  int64
	Available int64
	Reserved  int64
	Sold      int64
}

// UnitTotalsProvider computes UnitTotals for periodic collection.
type UnitTotalsProvider interface {
	UnitTotals(ctx context.Context) (UnitTotals, error)
}

// InventoryMetricsConfig holds configuration for inventory metrics.
type InventoryMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// InventoryMetrics records unit transitions, bookings and catalog size.
type InventoryMetrics struct {
	logger *zap.Logger

	statusTransitions *Counter
	bookingsRecorded  *Counter
	assignments       *Counter

	catalogEntries    *Gauge
	synthesisDuration *Histogram
	projects          *Gauge
	units             *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// NewInventoryMetrics creates the inventory instruments on meter.
func NewInventoryMetrics(cfg InventoryMetricsConfig) (*InventoryMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &InventoryMetrics{logger: logger, stopChan: make(chan struct{})}

	var err error
	if m.statusTransitions, err = NewCounter(cfg.Meter,
		"offers_unit_status_transitions_total",
		"Unit availability transitions",
		"{transitions}",
	); err != nil {
		return nil, err
	}
	if m.bookingsRecorded, err = NewCounter(cfg.Meter,
		"offers_bookings_recorded_total",
		"Detailed bookings written to the ledger",
		"{bookings}",
	); err != nil {
		return nil, err
	}
	if m.assignments, err = NewCounter(cfg.Meter,
		"offers_unit_assignments_total",
		"Unit to model assignment changes",
		"{changes}",
	); err != nil {
		return nil, err
	}
	if m.catalogEntries, err = NewGauge(cfg.Meter,
		"offers_catalog_entries",
		"Entries in the last computed public catalog",
		"{entries}",
	); err != nil {
		return nil, err
	}
	if m.synthesisDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "offers_catalog_synthesis_duration_seconds",
		Description: "Time spent computing the public catalog",
		Unit:        "s",
		Boundaries:  SynthesisDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.projects, err = NewGauge(cfg.Meter,
		"offers_projects",
		"Projects in the inventory",
		"{projects}",
	); err != nil {
		return nil, err
	}
	if m.units, err = NewGauge(cfg.Meter,
		"offers_units",
		"Units across all projects by state",
		"{units}",
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordStatusTransition counts one availability change
func (m *InventoryMetrics) RecordStatusTransition(ctx context.Context, from, to string) {
	m.statusTransitions.Inc(ctx, AttrUnitStatusFrom.String(from), AttrUnitStatusTo.String(to))
}

// RecordBooking counts one detailed booking
func (m *InventoryMetrics) RecordBooking(ctx context.Context, status string) {
	m.bookingsRecorded.Inc(ctx, AttrUnitStatus.String(status))
}

// RecordAssignment counts an assign or unassign
func (m *InventoryMetrics) RecordAssignment(ctx context.Context, action string) {
	m.assignments.Inc(ctx, AttrAssignment.String(action))
}

// RecordCatalog records the size of a computed catalog and how long it took
func (m *InventoryMetrics) RecordCatalog(ctx context.Context, synthesized, standalone int, took time.Duration) {
	m.catalogEntries.Record(ctx, int64(synthesized), AttrEntrySource.String("synthesized"))
	m.catalogEntries.Record(ctx, int64(standalone), AttrEntrySource.String("standalone"))
	m.synthesisDuration.RecordDuration(ctx, took)
}

// RecordUnitTotals records the unit gauges
func (m *InventoryMetrics) RecordUnitTotals(ctx context.Context, t UnitTotals) {
	m.projects.Record(ctx, t.Projects)
	m.units.Record(ctx, t.Capacity, AttrUnitStatus.String("capacity"))
	m.units.Record(ctx, t.Assigned, AttrUnitStatus.String("assigned"))
	m.units.Record(ctx, t.Available, AttrUnitStatus.String("available"))
	m.units.Record(ctx, t.Reserved, AttrUnitStatus.String("reserved"))
	m.units.Record(ctx, t.Sold, AttrUnitStatus.String("sold"))
}

// StartPeriodicCollection refreshes the unit gauges every interval until
// Stop is called or ctx is done. Only the first call starts a collector.
func (m *InventoryMetrics) StartPeriodicCollection(ctx context.Context, provider UnitTotalsProvider, interval time.Duration) {
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go m.runPeriodicCollection(ctx, provider, interval)
	})
}

func (m *InventoryMetrics) runPeriodicCollection(ctx context.Context, provider UnitTotalsProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.collect(ctx, provider)
	for {
		select {
		case <-m.stopChan:
			m.logger.Info("Stopping periodic inventory metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collect(ctx, provider)
		}
	}
}

func (m *InventoryMetrics) collect(ctx context.Context, provider UnitTotalsProvider) {
	totals, err := provider.UnitTotals(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect unit totals", zap.Error(err))
		return
	}
	m.RecordUnitTotals(ctx, totals)
}

// Stop stops the periodic collection.
func (m *InventoryMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}
