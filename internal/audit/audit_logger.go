package audit

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	PlanID    string    `json:"plan_id"`
	Clock     int64     `json:"clock,omitempty"`
	Postings  int       `json:"postings,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

// AuditLogger writes one structured entry per plan operation to the "audit" logger.
type AuditLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger.Named("audit"),
		now:    time.Now,
	}
}

func (a *AuditLogger) LogOperation(planID, operation string, clock int64, postings int) AuditEvent {
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: a.now().UTC(),
		EventType: operation,
		PlanID:    planID,
		Clock:     clock,
		Postings:  postings,
		Status:    "SUCCESS",
	}
	a.log(event)
	return event
}

func (a *AuditLogger) LogError(planID, operation string, err error) AuditEvent {
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: a.now().UTC(),
		EventType: operation,
		PlanID:    planID,
		Status:    "FAILED",
		Error:     err.Error(),
	}
	a.log(event)
	return event
}

func (a *AuditLogger) log(event AuditEvent) {
	fields := []zap.Field{
		zap.String("event_id", event.EventID),
		zap.Time("timestamp", event.Timestamp),
		zap.String("event_type", event.EventType),
		zap.String("plan_id", event.PlanID),
		zap.String("status", event.Status),
	}
	if event.Clock != 0 {
		fields = append(fields, zap.Int64("clock", event.Clock))
	}
	if event.Postings != 0 {
		fields = append(fields, zap.Int("postings", event.Postings))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	a.logger.Info("AUDIT", fields...)
}
