// Package notify emits workflow events to interested parties. Delivery is
// best-effort and happens after the owning transaction commits; a failed
// notification is logged, never rolled back into the workflow.
package notify

import (
	"context"
	"log/slog"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

// Event describes one committed workflow change.
type Event struct {
	ObligationID     string
	ClientID         string
	Kind             domain.ObligationKind
	FromStage        *domain.StageID
	ToStage          domain.StageID
	ActorID          string
	ActorName        string
	AssignedReviewer *string
}

// Notifier receives committed workflow events.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NoopNotifier ignores all events.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Event) {}

// LogNotifier writes events through a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a Notifier backed by the given logger; a nil
// logger uses the default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) {
	attrs := []any{
		"obligation_id", event.ObligationID,
		"client_id", event.ClientID,
		"kind", string(event.Kind),
		"to_stage", string(event.ToStage),
		"actor", event.ActorID,
	}
	if event.FromStage != nil {
		attrs = append(attrs, "from_stage", string(*event.FromStage))
	}
	if event.AssignedReviewer != nil {
		attrs = append(attrs, "assigned_reviewer", *event.AssignedReviewer)
	}
	n.logger.InfoContext(ctx, "workflow_event", attrs...)
}
