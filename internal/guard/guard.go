// Package guard enforces field ownership and applies answer merges. It
// is the single seam between a client's working draft and the canonical
// per-field-owned state: the engine never trusts a full-document
// overwrite, only a guarded key-by-key overlay.
package guard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jfuentesmx/tramite/pkg/api"
	"github.com/jfuentesmx/tramite/pkg/wizard"
)

// CheckOwnership rejects a batch containing answer keys outside the
// writer's ownership scope. While the case has not reached InProgress, a
// requester may not write spouse-namespaced keys and a spouse may not
// write requester-namespaced keys; once InProgress the restriction is
// lifted and both parties co-edit the shared signing fields.
//
// One exception, taken from the together modality: when the accumulated
// answers (or the incoming batch) select "juntos", the requester also
// owns the spouse namespace, because the spouse's data is collected
// inline in the requester's session and no second actor ever joins.
//
// A violation rejects the batch in full; no keys merge.
func CheckOwnership(role api.Role, phase api.Phase, existing, incoming api.Answers) error {
	if phase == api.PhaseInProgress {
		return nil
	}

	var foreign string
	switch role {
	case api.RoleRequester:
		modality := existing.String(api.AnswerModality)
		if m := incoming.String(api.AnswerModality); m != "" {
			modality = m
		}
		if modality == api.ModalityTogether {
			return nil
		}
		foreign = api.SpouseFieldPrefix
	case api.RoleSpouse:
		foreign = api.RequesterFieldPrefix
	default:
		return fmt.Errorf("%w: unknown role %q", api.ErrForbidden, role)
	}

	var bad []string
	for key := range incoming {
		if strings.HasPrefix(key, foreign) {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("%w: %s", api.ErrFieldOwnership, strings.Join(bad, ", "))
	}
	return nil
}

// ValidateBatch applies the engine-level answer constraints to every
// incoming key that matches a step definition. Keys with no matching
// definition pass through untouched (schema evolution tolerance);
// required-answer gating is a traversal concern, so only present values
// are checked here.
func ValidateBatch(graph []api.StepDefinition, incoming api.Answers) error {
	byID := make(map[string]api.StepDefinition, len(graph))
	for _, s := range graph {
		byID[s.ID] = s
	}
	for key, value := range incoming {
		step, ok := byID[key]
		if !ok {
			continue
		}
		if value == nil {
			continue
		}
		if err := wizard.ValidateAnswer(step, value); err != nil {
			return err
		}
	}
	return nil
}

// Merge overlays the incoming keys onto the existing answers and
// returns the result. The merge is shallow and key-local: incoming keys
// overwrite same-named keys, keys absent from the batch are untouched.
// Callers run it inside the same transaction that re-read existing, so
// two actors writing disjoint keys both survive.
func Merge(existing, incoming api.Answers) api.Answers {
	out := existing.Clone()
	for k, v := range incoming {
		out[k] = v
	}
	return out
}
