package api

import (
	"context"
	"log/slog"
)

// Observer receives callbacks for case lifecycle events. It is the seam
// through which notification delivery (email, in-app) is attached:
// callbacks are fire-and-forget from the engine's point of view and run
// after the triggering transaction has committed, so an observer can
// never roll back an accepted write.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay the calling actor.
type Observer interface {
	// OnCaseCreated is called once when a case is created, after the
	// requester participant has been stored.
	OnCaseCreated(ctx context.Context, c *Case)

	// OnPhaseChanged is called whenever the case phase advances.
	OnPhaseChanged(ctx context.Context, c *Case, previous Phase)

	// OnInvitationCreated is called when a requester invites the second
	// party. The invitation carries the token the notification channel
	// renders into a shareable link.
	OnInvitationCreated(ctx context.Context, inv *Invitation)

	// OnInvitationAccepted is called when an invitation leaves Pending by
	// acceptance, either by an authenticated actor or by the token flow
	// finishing the spouse subset.
	OnInvitationAccepted(ctx context.Context, inv *Invitation)

	// OnSpouseDataCompleted is called when the spouse's personal-data
	// subset finishes and the case moves into the shared traversal.
	OnSpouseDataCompleted(ctx context.Context, c *Case)

	// OnCaseCompleted is called when the case reaches PhaseCompleted and
	// becomes eligible for settlement-document generation.
	OnCaseCompleted(ctx context.Context, c *Case)
}

// NoopObserver is an Observer that does nothing. It is the default when
// no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnCaseCreated(ctx context.Context, c *Case)                  {}
func (NoopObserver) OnPhaseChanged(ctx context.Context, c *Case, previous Phase) {}
func (NoopObserver) OnInvitationCreated(ctx context.Context, inv *Invitation)    {}
func (NoopObserver) OnInvitationAccepted(ctx context.Context, inv *Invitation)   {}
func (NoopObserver) OnSpouseDataCompleted(ctx context.Context, c *Case)          {}
func (NoopObserver) OnCaseCompleted(ctx context.Context, c *Case)                {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnCaseCreated(ctx context.Context, cs *Case) {
	for _, o := range c.observers {
		o.OnCaseCreated(ctx, cs)
	}
}

func (c *CompositeObserver) OnPhaseChanged(ctx context.Context, cs *Case, previous Phase) {
	for _, o := range c.observers {
		o.OnPhaseChanged(ctx, cs, previous)
	}
}

func (c *CompositeObserver) OnInvitationCreated(ctx context.Context, inv *Invitation) {
	for _, o := range c.observers {
		o.OnInvitationCreated(ctx, inv)
	}
}

func (c *CompositeObserver) OnInvitationAccepted(ctx context.Context, inv *Invitation) {
	for _, o := range c.observers {
		o.OnInvitationAccepted(ctx, inv)
	}
}

func (c *CompositeObserver) OnSpouseDataCompleted(ctx context.Context, cs *Case) {
	for _, o := range c.observers {
		o.OnSpouseDataCompleted(ctx, cs)
	}
}

func (c *CompositeObserver) OnCaseCompleted(ctx context.Context, cs *Case) {
	for _, o := range c.observers {
		o.OnCaseCompleted(ctx, cs)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs case lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is
// used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnCaseCreated(ctx context.Context, c *Case) {
	o.Logger.InfoContext(ctx, "tramite_created",
		slog.String("tramite_id", c.ID),
		slog.String("kind", string(c.Kind)),
	)
}

func (o *LoggingObserver) OnPhaseChanged(ctx context.Context, c *Case, previous Phase) {
	o.Logger.InfoContext(ctx, "tramite_phase_changed",
		slog.String("tramite_id", c.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(c.Phase)),
	)
}

func (o *LoggingObserver) OnInvitationCreated(ctx context.Context, inv *Invitation) {
	o.Logger.InfoContext(ctx, "invitation_created",
		slog.String("tramite_id", inv.CaseID),
		slog.String("invitation_id", inv.ID),
		slog.Time("expires_at", inv.ExpiresAt),
	)
}

func (o *LoggingObserver) OnInvitationAccepted(ctx context.Context, inv *Invitation) {
	o.Logger.InfoContext(ctx, "invitation_accepted",
		slog.String("tramite_id", inv.CaseID),
		slog.String("invitation_id", inv.ID),
	)
}

func (o *LoggingObserver) OnSpouseDataCompleted(ctx context.Context, c *Case) {
	o.Logger.InfoContext(ctx, "spouse_data_completed",
		slog.String("tramite_id", c.ID),
	)
}

func (o *LoggingObserver) OnCaseCompleted(ctx context.Context, c *Case) {
	o.Logger.InfoContext(ctx, "tramite_completed",
		slog.String("tramite_id", c.ID),
	)
}
