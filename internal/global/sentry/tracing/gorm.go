package tracing

import (
	"time"

	"social-event-system/config"

	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"
)

const (
	gormSpanKey    = "sentry:span"
	gormStartKey   = "sentry:start"
	callbackPrefix = "sentry_tracing"
)

// GormTracingPlugin 为每条 SQL 在当前请求的 transaction 下创建 span
type GormTracingPlugin struct {
	slowThreshold time.Duration
}

func NewGormTracingPlugin() *GormTracingPlugin {
	ms := config.Get().Sentry.Tracing.DBSlowThresholdMs
	return &GormTracingPlugin{slowThreshold: time.Duration(ms) * time.Millisecond}
}

func (p *GormTracingPlugin) Name() string {
	return "SentryTracingPlugin"
}

func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		before func() error
		after  func() error
	}{
		{
			func() error { return cb.Create().Before("gorm:create").Register(callbackPrefix+":before_create", p.before("db.sql.create")) },
			func() error { return cb.Create().After("gorm:create").Register(callbackPrefix+":after_create", p.after) }},
		{
			func() error { return cb.Query().Before("gorm:query").Register(callbackPrefix+":before_query", p.before("db.sql.query")) },
			func() error { return cb.Query().After("gorm:query").Register(callbackPrefix+":after_query", p.after) }},
		{
			func() error { return cb.Update().Before("gorm:update").Register(callbackPrefix+":before_update", p.before("db.sql.update")) },
			func() error { return cb.Update().After("gorm:update").Register(callbackPrefix+":after_update", p.after) }},
		{
			func() error { return cb.Delete().Before("gorm:delete").Register(callbackPrefix+":before_delete", p.before("db.sql.delete")) },
			func() error { return cb.Delete().After("gorm:delete").Register(callbackPrefix+":after_delete", p.after) }},
		{
			func() error { return cb.Row().Before("gorm:row").Register(callbackPrefix+":before_row", p.before("db.sql.row")) },
			func() error { return cb.Row().After("gorm:row").Register(callbackPrefix+":after_row", p.after) }},
		{
			func() error { return cb.Raw().Before("gorm:raw").Register(callbackPrefix+":before_raw", p.before("db.sql.raw")) },
			func() error { return cb.Raw().After("gorm:raw").Register(callbackPrefix+":after_raw", p.after) }},
	}
	for _, h := range hooks {
		if err := h.before(); err != nil {
			return err
		}
		if err := h.after(); err != nil {
			return err
		}
	}
	return nil
}

func (p *GormTracingPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement == nil || db.Statement.Context == nil {
			return
		}
		db.InstanceSet(gormStartKey, time.Now())

		parent := sentry.SpanFromContext(db.Statement.Context)
		if parent == nil {
			return
		}
		span := parent.StartChild(operation)
		// 只记录表名，不记录完整 SQL
		span.Description = db.Statement.Table
		if span.Description == "" {
			span.Description = "unknown"
		}
		span.SetData("db.system", db.Dialector.Name())
		db.InstanceSet(gormSpanKey, span)
		db.Statement.Context = span.Context()
	}
}

func (p *GormTracingPlugin) after(db *gorm.DB) {
	startVal, ok := db.InstanceGet(gormStartKey)
	if !ok {
		return
	}
	start, _ := startVal.(time.Time)
	spanVal, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}
	span, _ := spanVal.(*sentry.Span)
	if span == nil {
		return
	}
	span.SetData("db.rows_affected", db.RowsAffected)
	finish(span, time.Since(start), p.slowThreshold, db.Error)
}
