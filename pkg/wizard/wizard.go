// Package wizard drives single-step-at-a-time traversal of a step
// graph: computing the phase- and role-scoped subset of addressable
// steps, scanning for the next or previous visible step, validating
// answers, and running a resumable Walker session over the subset.
//
// Traversal is a pure function of the step declarations and the
// accumulated answers. Persistence happens only through the Saver a
// Walker is constructed with, so the rendering layer can drive a wizard
// without knowing anything about storage.
package wizard

import (
	"unicode/utf8"

	"github.com/jfuentesmx/tramite/pkg/api"
)

// Subset filters the full step graph down to the steps addressable by
// the given role in the given phase:
//
//   - Draft / AwaitingSecondParty: shared steps plus the caller's own
//     role-filtered steps. When the modality answer is "juntos" the
//     requester additionally addresses the spouse-filtered steps, since
//     no second actor will ever join to claim them.
//   - InProgress / Completed: shared steps only; both individual-data
//     blocks are hidden entirely, regardless of role.
func Subset(steps []api.StepDefinition, phase api.Phase, role api.Role, answers api.Answers) []api.StepDefinition {
	out := make([]api.StepDefinition, 0, len(steps))
	inline := role == api.RoleRequester && answers.String(api.AnswerModality) == api.ModalityTogether

	for _, s := range steps {
		switch phase {
		case api.PhaseDraft, api.PhaseAwaitingSecondParty:
			if s.Shared() || s.Actor == role || (inline && s.Actor == api.RoleSpouse) {
				out = append(out, s)
			}
		default:
			if s.Shared() {
				out = append(out, s)
			}
		}
	}
	return out
}

// NextVisible scans forward from from+1 and returns the index of the
// first step whose predicate passes. Every remaining index is checked: a
// later step may be visible even when an intervening one is not. Returns
// len(steps) when no visible step remains.
func NextVisible(steps []api.StepDefinition, from int, answers api.Answers) int {
	for i := from + 1; i < len(steps); i++ {
		if steps[i].VisibleFor(answers) {
			return i
		}
	}
	return len(steps)
}

// PreviousVisible scans backward from from-1 and returns the index of
// the first visible step, clamping to 0 when none is found. The first
// step of every subset is a predicate-free landing step, so index 0 is
// always addressable.
func PreviousVisible(steps []api.StepDefinition, from int, answers api.Answers) int {
	for i := from - 1; i >= 0; i-- {
		if steps[i].VisibleFor(answers) {
			return i
		}
	}
	return 0
}

// ResumeIndex decides where an actor's traversal of the given subset
// resumes. The saved pointer is honored only while the actor's own
// personal data is still pending; once it is complete, traversal always
// restarts at index 0. That deliberately restarts the signing ceremony
// from the top on every return; honoring a signing-phase pointer instead
// would be a change to this one function.
func ResumeIndex(subset []api.StepDefinition, p api.Participant) int {
	if p.PersonalData != api.DataPending {
		return 0
	}
	if p.StepPointer < 0 {
		return 0
	}
	if p.StepPointer >= len(subset) {
		if len(subset) == 0 {
			return 0
		}
		return len(subset) - 1
	}
	return p.StepPointer
}

// ValidateAnswer applies the engine-level answer constraints for one
// step: non-optional steps require a present answer, and CURP steps
// require exactly 18 characters. A stored false or zero is a present
// answer; only nil and the empty string count as absent.
func ValidateAnswer(step api.StepDefinition, value any) error {
	if isEmpty(value) {
		if step.Optional {
			return nil
		}
		return api.NewValidationError(step.ID, "answer is required")
	}
	if step.Kind == api.StepCURP {
		s, ok := value.(string)
		if !ok || utf8.RuneCountInString(s) != api.CURPLength {
			return api.NewValidationError(step.ID, "CURP must be exactly 18 characters")
		}
	}
	return nil
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}
