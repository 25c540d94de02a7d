// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/app/store/audit"
	"go.uber.org/zap"
)

// Mode controls where audit events go.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only),
// "off" (disabled).
type Mode = string

// Logger records audit events to MongoDB (via audit.Store) and to
// structured logs (via zap). A nil *Logger is a no-op, so handlers can
// take one without guarding every call site.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	mode   Mode
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, mode Mode) *Logger {
	return &Logger{store: store, zapLog: zapLog, mode: mode}
}

// Log records an audit event per the configured mode.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil || l.mode == "off" {
		return
	}

	if l.mode == "all" || l.mode == "log" {
		l.logToZap(event)
	}
	if l.mode == "all" || l.mode == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.ProjectID != nil {
		fields = append(fields, zap.String("project_id", event.ProjectID.Hex()))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}
