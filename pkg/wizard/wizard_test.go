package wizard

import (
	"errors"
	"testing"

	"github.com/jfuentesmx/tramite/pkg/api"
)

func testGraph() []api.StepDefinition {
	return []api.StepDefinition{
		{ID: "bienvenida", Kind: api.StepText},
		{ID: "conyuge1_nombre", Actor: api.RoleRequester, Kind: api.StepText},
		{ID: "conyuge1_curp", Actor: api.RoleRequester, Kind: api.StepCURP},
		{ID: "matrimonio_tieneHijos", Actor: api.RoleRequester, Kind: api.StepText},
		{
			ID:    "matrimonio_numeroHijos",
			Actor: api.RoleRequester,
			Kind:  api.StepText,
			Visible: func(a api.Answers) bool {
				return a.Bool("matrimonio_tieneHijos")
			},
		},
		{ID: api.AnswerModality, Actor: api.RoleRequester, Kind: api.StepText},
		{ID: "conyuge2_nombre", Actor: api.RoleSpouse, Kind: api.StepText},
		{ID: "firma_conyuge1", Kind: api.StepText},
		{ID: "firma_conyuge2", Kind: api.StepText},
	}
}

func ids(steps []api.StepDefinition) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSubsetDraftRequester(t *testing.T) {
	got := ids(Subset(testGraph(), api.PhaseDraft, api.RoleRequester, api.Answers{}))
	want := []string{
		"bienvenida", "conyuge1_nombre", "conyuge1_curp",
		"matrimonio_tieneHijos", "matrimonio_numeroHijos",
		api.AnswerModality, "firma_conyuge1", "firma_conyuge2",
	}
	if !equalIDs(got, want) {
		t.Fatalf("requester draft subset = %v, want %v", got, want)
	}
}

func TestSubsetTogetherModalityUnlocksSpouseSteps(t *testing.T) {
	answers := api.Answers{api.AnswerModality: api.ModalityTogether}
	got := ids(Subset(testGraph(), api.PhaseDraft, api.RoleRequester, answers))

	found := false
	for _, id := range got {
		if id == "conyuge2_nombre" {
			found = true
		}
	}
	if !found {
		t.Fatalf("together modality should expose spouse steps to the requester, got %v", got)
	}

	// The separate modality must not.
	answers[api.AnswerModality] = api.ModalitySeparate
	for _, id := range ids(Subset(testGraph(), api.PhaseDraft, api.RoleRequester, answers)) {
		if id == "conyuge2_nombre" {
			t.Fatalf("separate modality must hide spouse steps from the requester")
		}
	}
}

func TestSubsetAwaitingSpouse(t *testing.T) {
	got := ids(Subset(testGraph(), api.PhaseAwaitingSecondParty, api.RoleSpouse, api.Answers{}))
	want := []string{"bienvenida", "conyuge2_nombre", "firma_conyuge1", "firma_conyuge2"}
	if !equalIDs(got, want) {
		t.Fatalf("spouse awaiting subset = %v, want %v", got, want)
	}
}

func TestSubsetInProgressSharedOnly(t *testing.T) {
	for _, role := range []api.Role{api.RoleRequester, api.RoleSpouse} {
		got := ids(Subset(testGraph(), api.PhaseInProgress, role, api.Answers{api.AnswerModality: api.ModalityTogether}))
		want := []string{"bienvenida", "firma_conyuge1", "firma_conyuge2"}
		if !equalIDs(got, want) {
			t.Fatalf("role %s in-progress subset = %v, want %v", role, got, want)
		}
	}
}

func TestNextVisibleSkipsMaskedSteps(t *testing.T) {
	steps := []api.StepDefinition{
		{ID: "a"},
		{ID: "b", Visible: func(a api.Answers) bool { return a.Bool("show_b") }},
		{ID: "c"},
	}

	if got := NextVisible(steps, 0, api.Answers{}); got != 2 {
		t.Fatalf("NextVisible over hidden step = %d, want 2", got)
	}
	if got := NextVisible(steps, 0, api.Answers{"show_b": true}); got != 1 {
		t.Fatalf("NextVisible with predicate true = %d, want 1", got)
	}
	if got := NextVisible(steps, 2, api.Answers{}); got != len(steps) {
		t.Fatalf("NextVisible past the end = %d, want %d", got, len(steps))
	}
}

func TestNextVisibleFindsLaterStepBehindHiddenRun(t *testing.T) {
	steps := []api.StepDefinition{
		{ID: "a"},
		{ID: "b", Visible: func(api.Answers) bool { return false }},
		{ID: "c", Visible: func(api.Answers) bool { return false }},
		{ID: "d"},
	}
	if got := NextVisible(steps, 0, api.Answers{}); got != 3 {
		t.Fatalf("NextVisible = %d, want 3", got)
	}
}

func TestPreviousVisibleClampsToZero(t *testing.T) {
	steps := []api.StepDefinition{
		{ID: "a"},
		{ID: "b", Visible: func(api.Answers) bool { return false }},
		{ID: "c"},
	}
	if got := PreviousVisible(steps, 2, api.Answers{}); got != 0 {
		t.Fatalf("PreviousVisible over hidden step = %d, want 0", got)
	}
	if got := PreviousVisible(steps, 0, api.Answers{}); got != 0 {
		t.Fatalf("PreviousVisible at the start = %d, want 0", got)
	}
}

func TestResumeIndex(t *testing.T) {
	subset := []api.StepDefinition{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	pending := api.Participant{PersonalData: api.DataPending, StepPointer: 2}
	if got := ResumeIndex(subset, pending); got != 2 {
		t.Fatalf("pending resume = %d, want 2", got)
	}

	pending.StepPointer = 99
	if got := ResumeIndex(subset, pending); got != 2 {
		t.Fatalf("out-of-range pointer should clamp to last index, got %d", got)
	}

	pending.StepPointer = -1
	if got := ResumeIndex(subset, pending); got != 0 {
		t.Fatalf("negative pointer should clamp to 0, got %d", got)
	}

	done := api.Participant{PersonalData: api.DataCompleted, StepPointer: 2}
	if got := ResumeIndex(subset, done); got != 0 {
		t.Fatalf("completed data must restart at 0, got %d", got)
	}

	if got := ResumeIndex(nil, pending); got != 0 {
		t.Fatalf("empty subset resume = %d, want 0", got)
	}
}

func TestValidateAnswerRequired(t *testing.T) {
	step := api.StepDefinition{ID: "conyuge1_nombre", Kind: api.StepText}

	for _, missing := range []any{nil, ""} {
		err := ValidateAnswer(step, missing)
		if !errors.Is(err, api.ErrValidation) {
			t.Fatalf("value %#v: want validation error, got %v", missing, err)
		}
		var verr *api.ValidationError
		if !errors.As(err, &verr) || verr.StepID != "conyuge1_nombre" {
			t.Fatalf("error should carry the step id, got %v", err)
		}
	}

	// Stored false and zero are answers, not absences.
	for _, present := range []any{false, 0, "x"} {
		if err := ValidateAnswer(step, present); err != nil {
			t.Fatalf("value %#v should be accepted: %v", present, err)
		}
	}
}

func TestValidateAnswerOptional(t *testing.T) {
	step := api.StepDefinition{ID: "doc_actaMatrimonio", Kind: api.StepText, Optional: true}
	if err := ValidateAnswer(step, nil); err != nil {
		t.Fatalf("optional step should accept a missing answer: %v", err)
	}
}

func TestValidateAnswerCURP(t *testing.T) {
	step := api.StepDefinition{ID: "conyuge1_curp", Kind: api.StepCURP}

	if err := ValidateAnswer(step, "GOMC800101HDFRRL09"); err != nil {
		t.Fatalf("18-character CURP rejected: %v", err)
	}
	if err := ValidateAnswer(step, "SHORT"); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("short CURP must fail validation, got %v", err)
	}
	if err := ValidateAnswer(step, 12345678901234567); !errors.Is(err, api.ErrValidation) {
		t.Fatalf("non-string CURP must fail validation, got %v", err)
	}
}
