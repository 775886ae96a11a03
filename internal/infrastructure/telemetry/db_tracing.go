package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing settings. Query parameters are
// excluded from spans unless LogFullSQL is set, so customer and supplier
// data never leaks into the trace backend.
type DBTracingConfig struct {
	Enabled            bool
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
	DBName             string
}

// DefaultDBTracingConfig returns the tracing defaults used by the server.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThreshold: 200 * time.Millisecond,
		DBName:             "sewline",
	}
}

// DBTracingPlugin layers slow-statement detection on top of the otelgorm
// spans. A receipt commit that crosses the threshold gets flagged on its
// span, which is how slow allocation writes get found in production.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold == 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs the otelgorm plugin plus timing callbacks around every
// gorm operation.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerStatementCallbacks(db, "span_timing", p.markStart, p.annotateSpan); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", p.config.SlowQueryThreshold),
		zap.Bool("log_full_sql", p.config.LogFullSQL),
	)
	return nil
}

func (p *DBTracingPlugin) markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, statementStartKey, time.Now())
	}
}

// annotateSpan runs after each statement: it records the affected table and
// row count, marks real errors, and flags statements over the threshold.
func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	// ErrRecordNotFound is an expected lookup miss, not a failure
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(statementStartKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThreshold.Milliseconds()),
		))
	}
}

type statementContextKey string

const statementStartKey statementContextKey = "db_statement_start"

// registerStatementCallbacks hooks before/after funcs around all six gorm
// operation kinds under the given callback prefix. Either hook may be nil.
func registerStatementCallbacks(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	targets := []struct {
		op             string
		registerBefore func(string, func(*gorm.DB)) error
		registerAfter  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, t := range targets {
		if before != nil {
			if err := t.registerBefore(prefix+":before_"+t.op, before); err != nil {
				return err
			}
		}
		if after != nil {
			if err := t.registerAfter(prefix+":after_"+t.op, after); err != nil {
				return err
			}
		}
	}
	return nil
}
