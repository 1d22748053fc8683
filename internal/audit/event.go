package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event types recorded by the auth core. Every login, logout, refresh and
// password-change outcome produces exactly one event.
const (
	EventLoginSuccess      = "login_success"
	EventLoginFailure      = "login_failure"
	EventAccountLocked     = "account_locked"
	EventLogout            = "logout"
	EventTokenRefresh      = "token_refresh"
	EventSessionInvalid    = "session_validate_failure"
	EventPasswordChange    = "password_change"
	EventRateLimitExceeded = "rate_limit_exceeded"
	EventInternalError     = "internal_error"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Event is an append-only security audit record. UserID is empty when the
// attempt never resolved to an account; Detail must stay free of secrets.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	EventType string    `json:"event_type"`
	RiskLevel RiskLevel `json:"risk_level"`
	Success   bool      `json:"success"`
	IPAddress string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink receives dispatched events. Implementations must be safe for
// concurrent use and must not block indefinitely.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// LogSink writes events through the structured logger, which is the default
// destination: durable event storage is owned by the platform, not this core.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

func (s *LogSink) Emit(_ context.Context, event Event) {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", event.EventType),
		zap.String("risk_level", string(event.RiskLevel)),
		zap.Bool("success", event.Success),
		zap.Time("created_at", event.CreatedAt),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.IPAddress != "" {
		fields = append(fields, zap.String("ip", event.IPAddress))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.Detail != "" {
		fields = append(fields, zap.String("detail", event.Detail))
	}

	switch event.RiskLevel {
	case RiskHigh:
		s.logger.Warn("security event", fields...)
	default:
		s.logger.Info("security event", fields...)
	}
}

// ChannelSink buffers events for inspection, used by tests.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}
