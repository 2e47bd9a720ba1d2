package api

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers classify failures with errors.Is; the
// presentation layer owns user-facing wording.
var (
	// ErrCaseNotFound covers both a genuinely unknown case id and a caller
	// who is not a participant of an existing case: existence is never
	// leaked to non-participants.
	ErrCaseNotFound = errors.New("tramite not found")

	// ErrForbidden indicates the caller's role does not permit the
	// operation (for example a spouse deleting the case).
	ErrForbidden = errors.New("operation not permitted for caller")

	// ErrFieldOwnership indicates a write touching answer keys outside the
	// caller's ownership scope. The whole batch is rejected; no keys merge.
	ErrFieldOwnership = errors.New("answer keys outside caller's scope")

	// ErrPhaseConflict indicates the case is no longer in a phase that
	// accepts the request, typically because the other party moved it on
	// between the caller's read and write.
	ErrPhaseConflict = errors.New("tramite phase does not accept this operation")

	// ErrValidation is the class of per-step answer validation failures.
	// Concrete failures are *ValidationError values wrapping it.
	ErrValidation = errors.New("invalid answer")

	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation expired")
	ErrInvitationUsed     = errors.New("invitation no longer pending")

	// ErrInvitationExists rejects creating a second pending invitation for
	// the same case and email.
	ErrInvitationExists = errors.New("pending invitation already exists for this email")

	// ErrEmailMismatch rejects accepting an invitation with a verified
	// email that does not match the invited address.
	ErrEmailMismatch = errors.New("invitation was sent to a different email")

	// ErrUnavailable wraps transient storage failures. The request had no
	// effect and may be retried as-is.
	ErrUnavailable = errors.New("storage unavailable")
)

// ValidationError is a field-level validation failure, local to one step.
type ValidationError struct {
	StepID string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s: %s", e.StepID, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a field-level error for the given step.
func NewValidationError(stepID, reason string) error {
	return &ValidationError{StepID: stepID, Reason: reason}
}
