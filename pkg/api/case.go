package api

import "time"

// CaseKind identifies the legal matter a case processes.
// Only voluntary divorce is supported today; the enum exists so
// additional tramite kinds can be added without schema changes.
type CaseKind string

const (
	CaseKindVoluntaryDivorce CaseKind = "DIVORCIO_VOLUNTARIO"
)

// Phase is the case-level state machine position. Progression is
// forward-only: Draft -> AwaitingSecondParty -> InProgress -> Completed,
// except that the together modality skips AwaitingSecondParty entirely.
type Phase string

const (
	PhaseDraft               Phase = "BORRADOR"
	PhaseAwaitingSecondParty Phase = "ESPERANDO_CONYUGE_2"
	PhaseInProgress          Phase = "EN_PROGRESO"
	PhaseCompleted           Phase = "COMPLETADO"
)

// Answers is the accumulated answer document of a case: step id -> value.
// Values are arbitrary JSON-shaped data (string, number, bool, list,
// nested map). Keys are appended or overwritten, never auto-deleted, and
// the map may hold keys with no matching step definition (schema
// evolution tolerance).
type Answers map[string]any

// Clone returns a shallow copy of the answer map. Values are shared;
// callers treat them as immutable.
func (a Answers) Clone() Answers {
	if a == nil {
		return Answers{}
	}
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Bool reads a boolean answer. Missing or non-boolean values read false.
func (a Answers) Bool(key string) bool {
	v, _ := a[key].(bool)
	return v
}

// String reads a string answer. Missing or non-string values read "".
func (a Answers) String(key string) string {
	v, _ := a[key].(string)
	return v
}

// Answer keys with engine-level meaning. The modality answer drives the
// phase machine: "separado" routes the case through the invitation flow,
// "juntos" collects the spouse block inline in the requester's session.
const (
	AnswerModality   = "modalidad_tramite"
	ModalitySeparate = "separado"
	ModalityTogether = "juntos"
)

// Field-ownership namespaces. While a case has not reached
// PhaseInProgress, answer keys under one party's prefix may only be
// written by that party (subject to the together-modality exception, see
// the engine docs).
const (
	RequesterFieldPrefix = "conyuge1_"
	SpouseFieldPrefix    = "conyuge2_"
)

// Case is one legal matter instance ("tramite") being processed
// end-to-end by up to two parties.
type Case struct {
	ID        string
	Kind      CaseKind
	Phase     Phase
	Answers   Answers
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role distinguishes the two parties of a case.
type Role string

const (
	// RoleRequester (solicitante) initiates the case. Exactly one per case.
	RoleRequester Role = "SOLICITANTE"
	// RoleSpouse (conyuge) joins via invitation, or never materializes when
	// the together modality collects their data inline.
	RoleSpouse Role = "CONYUGE"
)

// DataStatus tracks whether one actor's own personal-data section is
// finished, independent of the overall case phase.
type DataStatus string

const (
	DataPending   DataStatus = "PENDIENTE"
	DataCompleted DataStatus = "COMPLETADO"
)

// Participant binds an actor to a case with a role. At most one
// participant per role per case; the requester's participant is created
// atomically with the case, the spouse's only through an invitation.
type Participant struct {
	CaseID       string
	ActorID      string
	Role         Role
	PersonalData DataStatus

	// StepPointer is the saved resume offset into the actor's addressable
	// step subset. It is honored only while PersonalData is still pending;
	// afterwards traversal always restarts at the first addressable step.
	StepPointer int

	JoinedAt time.Time
}
