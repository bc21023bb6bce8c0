package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound variables in db.statement. Development only.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	// DBSystem is "postgresql" or "sqlite"
	DBSystem string
}

// DefaultDBTracingConfig returns tracing disabled with a 200ms slow query threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin registers otelgorm and adds slow query marking on top of it.
// A slow project save (the whole unit tree is rewritten) is the usual offender,
// so slow statements are also logged with their table.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type startedAtKey struct{}

// RegisterOtelGorm installs otelgorm and the timing callbacks. It is a
// no-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	for _, op := range []string{"create", "query", "update", "delete", "row", "raw"} {
		if err := p.register(db, op); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", p.config.DBSystem),
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) register(db *gorm.DB, op string) error {
	target := "gorm:" + op
	before := "offers_timing:before_" + op
	after := "offers_timing:after_" + op

	cb := db.Callback()
	switch op {
	case "create":
		if err := cb.Create().Before(target).Register(before, markStart); err != nil {
			return err
		}
		return cb.Create().After(target).Register(after, p.finish)
	case "query":
		if err := cb.Query().Before(target).Register(before, markStart); err != nil {
			return err
		}
		return cb.Query().After(target).Register(after, p.finish)
	case "update":
		if err := cb.Update().Before(target).Register(before, markStart); err != nil {
			return err
		}
		return cb.Update().After(target).Register(after, p.finish)
	case "delete":
		if err := cb.Delete().Before(target).Register(before, markStart); err != nil {
			return err
		}
		return cb.Delete().After(target).Register(after, p.finish)
	case "row":
		if err := cb.Row().Before(target).Register(before, markStart); err != nil {
			return err
		}
		return cb.Row().After(target).Register(after, p.finish)
	default:
		if err := cb.Raw().Before(target).Register(before, markStart); err != nil {
			return err
		}
		return cb.Raw().After(target).Register(after, p.finish)
	}
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, startedAtKey{}, time.Now())
	}
}

// finish annotates the statement span with rows, table, errors and slowness.
func (p *DBTracingPlugin) finish(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	var elapsed time.Duration
	if startedAt, ok := ctx.Value(startedAtKey{}).(time.Time); ok {
		elapsed = time.Since(startedAt)
	}
	slow := elapsed > p.config.SlowQueryThresh
	if slow {
		p.logger.Warn("Slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", db.Statement.RowsAffected),
		)
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
	if slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
