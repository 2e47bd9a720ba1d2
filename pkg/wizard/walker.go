package wizard

import (
	"context"

	"github.com/jfuentesmx/tramite/pkg/api"
)

// Saver persists a checkpoint of the walker's draft answers. pointer is
// the index the traversal is about to move to (len(subset) on the final
// call), and complete is raised exactly once, when the traversal leaves
// the subset. Implementations typically forward to Engine.SubmitSteps or
// Engine.SubmitViaInvitation.
type Saver func(ctx context.Context, pointer int, answers api.Answers, complete bool) error

// Walker is one actor's in-progress traversal of a step subset. It
// keeps the working draft of answers client-side and checkpoints it
// through the Saver on every advance, so canonical state only ever
// changes through the engine's merge path.
//
// A Walker is not safe for concurrent use; each actor session holds its
// own.
type Walker struct {
	subset  []api.StepDefinition
	answers api.Answers
	idx     int
	save    Saver
	done    bool
}

// NewWalker starts a traversal of subset at start (clamped into range),
// seeded with the canonical answers fetched from the engine. save must
// not be nil.
func NewWalker(subset []api.StepDefinition, initial api.Answers, start int, save Saver) *Walker {
	if save == nil {
		panic("wizard: walker requires a Saver")
	}
	if start < 0 {
		start = 0
	}
	if start >= len(subset) && len(subset) > 0 {
		start = len(subset) - 1
	}
	return &Walker{
		subset:  subset,
		answers: initial.Clone(),
		idx:     start,
		save:    save,
	}
}

// Current returns the step the walker is positioned on. ok is false once
// the traversal has completed or when the subset is empty.
func (w *Walker) Current() (api.StepDefinition, bool) {
	if w.done || w.idx >= len(w.subset) {
		return api.StepDefinition{}, false
	}
	return w.subset[w.idx], true
}

// Index returns the walker's position in the subset.
func (w *Walker) Index() int { return w.idx }

// Completed reports whether the traversal has left the subset.
func (w *Walker) Completed() bool { return w.done }

// Answers returns the working draft, including keys not yet persisted.
func (w *Walker) Answers() api.Answers { return w.answers }

// Title resolves the current step's wording against the working draft.
func (w *Walker) Title() string {
	step, ok := w.Current()
	if !ok {
		return ""
	}
	return step.TitleFor(w.answers)
}

// SetAnswer records a draft answer for the current step. It does not
// persist; persistence happens on Advance.
func (w *Walker) SetAnswer(value any) {
	step, ok := w.Current()
	if !ok {
		return
	}
	w.answers[step.ID] = value
}

// Advance validates the current step's answer, checkpoints the draft
// through the Saver, and moves to the next visible step. Reaching the
// end of the subset marks the walker completed and raises the Saver's
// complete flag on that final checkpoint.
//
// On any error the pointer stays where it was and the draft answers are
// retained, so a failed persistence attempt loses no keystrokes and may
// simply be retried.
func (w *Walker) Advance(ctx context.Context) error {
	step, ok := w.Current()
	if !ok {
		return nil
	}

	if err := ValidateAnswer(step, w.answers[step.ID]); err != nil {
		return err
	}

	next := NextVisible(w.subset, w.idx, w.answers)
	complete := next >= len(w.subset)

	if err := w.save(ctx, next, w.answers, complete); err != nil {
		return err
	}

	w.idx = next
	if complete {
		w.done = true
	}
	return nil
}

// Retreat moves to the previous visible step. It is purely local
// navigation: nothing is persisted and nothing fails.
func (w *Walker) Retreat() {
	if w.done || w.idx == 0 {
		return
	}
	w.idx = PreviousVisible(w.subset, w.idx, w.answers)
}
