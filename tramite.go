package tramite

import (
	"context"
	"database/sql"

	"github.com/jfuentesmx/tramite/internal/engine"
	"github.com/jfuentesmx/tramite/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine         = api.Engine
	Case           = api.Case
	CaseKind       = api.CaseKind
	CaseView       = api.CaseView
	Phase          = api.Phase
	Role           = api.Role
	DataStatus     = api.DataStatus
	Participant    = api.Participant
	Answers        = api.Answers
	StepDefinition = api.StepDefinition
	StepKind       = api.StepKind
	Predicate      = api.Predicate
	TitleFunc      = api.TitleFunc
	SubmitBatch    = api.SubmitBatch
	Invitation     = api.Invitation
	InvitationView = api.InvitationView

	Observer          = api.Observer
	LoggingObserver   = api.LoggingObserver
	CompositeObserver = api.CompositeObserver
	NoopObserver      = api.NoopObserver
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export the error taxonomy so callers can classify failures with
// errors.Is without importing pkg/api.

var (
	ErrCaseNotFound       = api.ErrCaseNotFound
	ErrForbidden          = api.ErrForbidden
	ErrFieldOwnership     = api.ErrFieldOwnership
	ErrPhaseConflict      = api.ErrPhaseConflict
	ErrValidation         = api.ErrValidation
	ErrInvitationNotFound = api.ErrInvitationNotFound
	ErrInvitationExpired  = api.ErrInvitationExpired
	ErrInvitationUsed     = api.ErrInvitationUsed
	ErrInvitationExists   = api.ErrInvitationExists
	ErrEmailMismatch      = api.ErrEmailMismatch
	ErrUnavailable        = api.ErrUnavailable
)

// Re-export phase, role, and status values for convenience.

const (
	CaseKindVoluntaryDivorce = api.CaseKindVoluntaryDivorce

	PhaseDraft               = api.PhaseDraft
	PhaseAwaitingSecondParty = api.PhaseAwaitingSecondParty
	PhaseInProgress          = api.PhaseInProgress
	PhaseCompleted           = api.PhaseCompleted

	RoleRequester = api.RoleRequester
	RoleSpouse    = api.RoleSpouse

	DataPending   = api.DataPending
	DataCompleted = api.DataCompleted

	StepText = api.StepText
	StepCURP = api.StepCURP

	AnswerModality   = api.AnswerModality
	ModalityTogether = api.ModalityTogether
	ModalitySeparate = api.ModalitySeparate
)

// Engine constructors
// These wrap the internal/engine package so external callers
// never need to import internal packages.

// NewInMemoryEngine returns an Engine backed entirely by an in-memory store.
func NewInMemoryEngine(graph []StepDefinition) Engine {
	return engine.NewMemoryEngine(graph)
}

// NewInMemoryEngineWithObserver returns an in-memory Engine with the given Observer.
func NewInMemoryEngineWithObserver(graph []StepDefinition, obs Observer) Engine {
	return engine.NewMemoryEngineWithObserver(graph, obs)
}

// NewSQLiteEngine returns an Engine that persists cases, participants,
// and invitations in a SQLite database. The step graph is kept in-memory.
func NewSQLiteEngine(db *sql.DB, graph []StepDefinition) (Engine, error) {
	return engine.NewSQLiteEngine(db, graph)
}

// NewSQLiteEngineWithObserver returns a SQLite-backed Engine with the given Observer.
func NewSQLiteEngineWithObserver(db *sql.DB, graph []StepDefinition, obs Observer) (Engine, error) {
	return engine.NewSQLiteEngineWithObserver(db, graph, obs)
}

// Convenience helpers that just forward to the underlying Engine.

// CreateCase opens a new tramite owned by the given actor.
func CreateCase(ctx context.Context, eng Engine, actorID string, kind CaseKind) (*CaseView, error) {
	return eng.CreateCase(ctx, actorID, kind)
}

// GetCase fetches the actor-scoped view of a tramite.
func GetCase(ctx context.Context, eng Engine, actorID, caseID string) (*CaseView, error) {
	return eng.GetCase(ctx, actorID, caseID)
}

// SubmitSteps records a batch of answers for an authenticated participant.
func SubmitSteps(ctx context.Context, eng Engine, actorID, caseID string, batch SubmitBatch) (*CaseView, error) {
	return eng.SubmitSteps(ctx, actorID, caseID, batch)
}

// Invite issues an invitation so the second party can fill in their half.
func Invite(ctx context.Context, eng Engine, actorID, caseID, email string) (*Invitation, error) {
	return eng.CreateInvitation(ctx, actorID, caseID, email)
}
