package engine

import (
	"context"
	"fmt"

	"github.com/jfuentesmx/tramite/internal/guard"
	"github.com/jfuentesmx/tramite/internal/persistence"
	"github.com/jfuentesmx/tramite/pkg/api"
)

// caseEvents records what happened inside a transaction so observers
// can fire after commit.
type caseEvents struct {
	phaseChanged   bool
	previousPhase  api.Phase
	spouseDataDone bool
	completed      bool
}

// applyBatch validates, authorizes, and merges a batch for an
// authenticated participant, then advances the phase machine if the
// batch closes the participant's subset.
func (e *engineImpl) applyBatch(tx persistence.Tx, c *api.Case, p *api.Participant, batch api.SubmitBatch, events *caseEvents) error {
	if err := e.checkAndMerge(c, p, batch); err != nil {
		return err
	}

	if batch.StepPointer != nil {
		p.StepPointer = *batch.StepPointer
	}
	if batch.Complete {
		p.PersonalData = api.DataCompleted
		e.transition(c, p, events)
	}

	if err := tx.PutParticipant(p); err != nil {
		return err
	}
	return tx.PutCase(c)
}

// checkAndMerge runs the write-side guards and folds the batch into the
// case answers. The case is left untouched when any guard rejects.
func (e *engineImpl) checkAndMerge(c *api.Case, p *api.Participant, batch api.SubmitBatch) error {
	if c.Phase == api.PhaseCompleted {
		return fmt.Errorf("%w: tramite is already %s", api.ErrPhaseConflict, api.PhaseCompleted)
	}
	if err := guard.ValidateBatch(e.graph, batch.Answers); err != nil {
		return err
	}
	if err := guard.CheckOwnership(p.Role, c.Phase, c.Answers, batch.Answers); err != nil {
		return err
	}

	if len(batch.Answers) > 0 {
		c.Answers = guard.Merge(c.Answers, batch.Answers)
		c.UpdatedAt = e.now().UTC()
	}
	return nil
}

// transition advances the case phase after a participant finishes its
// current subset.
//
//	BORRADOR            --requester done, separado--> ESPERANDO_CONYUGE_2
//	BORRADOR            --requester done, juntos---->  EN_PROGRESO
//	ESPERANDO_CONYUGE_2 --spouse done-------------->  EN_PROGRESO
//	EN_PROGRESO         --either party done--------->  COMPLETADO
func (e *engineImpl) transition(c *api.Case, p *api.Participant, events *caseEvents) {
	previous := c.Phase

	switch c.Phase {
	case api.PhaseDraft:
		if p.Role == api.RoleRequester {
			if c.Answers.String(api.AnswerModality) == api.ModalitySeparate {
				c.Phase = api.PhaseAwaitingSecondParty
			} else {
				// Both parties answered in one sitting; nothing left to
				// wait for before the shared walkthrough.
				c.Phase = api.PhaseInProgress
			}
		} else {
			c.Phase = api.PhaseInProgress
			events.spouseDataDone = true
		}
	case api.PhaseAwaitingSecondParty:
		if p.Role == api.RoleSpouse {
			c.Phase = api.PhaseInProgress
			events.spouseDataDone = true
		}
	case api.PhaseInProgress:
		c.Phase = api.PhaseCompleted
		events.completed = true
	}

	if c.Phase != previous {
		c.UpdatedAt = e.now().UTC()
		events.phaseChanged = true
		events.previousPhase = previous
	}
}

// fire notifies the observer of everything a committed transaction did.
func (e *engineImpl) fire(ctx context.Context, c *api.Case, events caseEvents) {
	if events.spouseDataDone {
		e.observer.OnSpouseDataCompleted(ctx, c)
	}
	if events.phaseChanged {
		e.observer.OnPhaseChanged(ctx, c, events.previousPhase)
	}
	if events.completed {
		e.observer.OnCaseCompleted(ctx, c)
	}
}
