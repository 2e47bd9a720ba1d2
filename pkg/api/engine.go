package api

import "context"

// CaseView is a case plus the caller-scoped projection: the caller's
// role, their own data status, and where their traversal resumes. MyRole
// is a read-time convenience only; every write re-derives role and phase
// from the stored participant and case records.
type CaseView struct {
	Case

	MyRole       Role
	MyDataStatus DataStatus

	// ResumeStep is the index into the caller's addressable step subset
	// where traversal should resume: the saved pointer while the caller's
	// own personal data is pending, index 0 afterwards.
	ResumeStep int

	Participants []Participant
}

// InvitationView is an invitation plus the denormalized case summary an
// invited party sees before contributing data: the requester-entered
// answers feed the spouse's review step.
type InvitationView struct {
	Invitation

	CaseKind      CaseKind
	CasePhase     Phase
	CaseAnswers   Answers
	RequesterName string
}

// SubmitBatch is one answer submission: a partial answer map to merge,
// an optional saved-pointer hint, and the completion flag raised by the
// final call of a subset traversal.
type SubmitBatch struct {
	// StepPointer, when non-nil, updates the caller's saved resume offset.
	StepPointer *int

	// Answers are merged key-by-key into the case's answer map after
	// ownership and validation checks pass.
	Answers Answers

	// Complete marks the caller's current subset as finished, updating
	// their personal-data status and triggering the phase-transition
	// check atomically with the merge.
	Complete bool
}

// Engine is the workflow engine API. All operations are synchronous and
// transactional: every read-modify-write of a case, its participants,
// and its invitations commits atomically or not at all.
type Engine interface {
	// CreateCase opens a new case in PhaseDraft with empty answers and
	// creates the requester participant atomically with it. An empty kind
	// defaults to voluntary divorce.
	CreateCase(ctx context.Context, actorID string, kind CaseKind) (*CaseView, error)

	// GetCase returns the caller-scoped view of a case. Callers who are
	// not participants get ErrCaseNotFound, never a permission error.
	GetCase(ctx context.Context, actorID, caseID string) (*CaseView, error)

	// ListCases returns the caller-scoped views of every case the actor
	// participates in.
	ListCases(ctx context.Context, actorID string) ([]*CaseView, error)

	// SubmitSteps validates ownership of the batch's keys, merges them
	// into the case answers, and runs the phase-transition check when the
	// batch is flagged complete. Ownership violations reject the whole
	// batch with no partial merge.
	SubmitSteps(ctx context.Context, actorID, caseID string, batch SubmitBatch) (*CaseView, error)

	// DeleteCase removes a case with its participants and invitations.
	// Only the requester may delete.
	DeleteCase(ctx context.Context, actorID, caseID string) error

	// CreateInvitation mints a single-use token inviting the given email
	// to contribute the spouse data of the case. Requires the caller to be
	// the requester, the case to be awaiting the second party, and no
	// pending invitation for that email to exist.
	CreateInvitation(ctx context.Context, actorID, caseID, email string) (*Invitation, error)

	// VerifyInvitation looks up an invitation by token and returns it with
	// the denormalized case summary. Reading a pending invitation past its
	// expiry flips it to Expired as a side effect.
	VerifyInvitation(ctx context.Context, token string) (*InvitationView, error)

	// AcceptInvitation lets an authenticated actor claim the invitation.
	// The actor's verified email must match the invited address in
	// canonical form. On success the invitation is accepted and the spouse
	// participant is created, transactionally. Acceptance authorizes data
	// entry; it does not itself advance the case phase. Once any spouse
	// has joined, or the case has left the awaiting phase, remaining
	// pending tokens fail with ErrPhaseConflict.
	AcceptInvitation(ctx context.Context, token, actorID, actorEmail string) (*CaseView, error)

	// SubmitViaInvitation is the unauthenticated spouse write path: the
	// token scopes the write to the invitation's case and to the spouse's
	// ownership namespace, and is honored only while the invitation is
	// pending and unexpired, the case is still awaiting its second party,
	// and no spouse participant exists. The final call, flagged complete,
	// accepts the invitation, materializes the spouse participant, and
	// re-evaluates the case phase in the same transaction. Until that
	// call no participant record exists, so a StepPointer hint is
	// reflected in the returned view's ResumeStep but not persisted.
	SubmitViaInvitation(ctx context.Context, token string, batch SubmitBatch) (*CaseView, error)
}
