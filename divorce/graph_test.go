package divorce

import (
	"strings"
	"testing"

	"github.com/jfuentesmx/tramite"
)

func stepByID(t *testing.T, id string) tramite.StepDefinition {
	t.Helper()
	for _, s := range Graph() {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("step %q not in graph", id)
	return tramite.StepDefinition{}
}

func TestGraphStepIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range Graph() {
		if seen[s.ID] {
			t.Fatalf("duplicate step id %q", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestGraphActorPartition(t *testing.T) {
	shared := []string{KeyWelcome, KeyRequesterSignature, KeySpouseSignature}
	for _, id := range shared {
		if !stepByID(t, id).Shared() {
			t.Fatalf("step %q should be shared", id)
		}
	}

	for _, s := range Graph() {
		switch {
		case strings.HasPrefix(s.ID, "conyuge1_"):
			if s.Actor != tramite.RoleRequester {
				t.Fatalf("step %q should belong to the requester", s.ID)
			}
		case strings.HasPrefix(s.ID, "conyuge2_"):
			if s.Actor != tramite.RoleSpouse {
				t.Fatalf("step %q should belong to the spouse", s.ID)
			}
		}
	}

	// The settlement data is entered by the requester, so the spouse's
	// pre-join subset stays small.
	for _, id := range []string{KeyMarriageDate, KeyChildrenCount, KeyAlimonyAmount, KeyAddressStreet} {
		if stepByID(t, id).Actor != tramite.RoleRequester {
			t.Fatalf("step %q should belong to the requester", id)
		}
	}
}

func TestGraphCURPSteps(t *testing.T) {
	for _, id := range []string{KeyRequesterCURP, KeySpouseCURP} {
		if stepByID(t, id).Kind != tramite.StepCURP {
			t.Fatalf("step %q should validate as CURP", id)
		}
	}
}

func TestGraphChildrenStepsGated(t *testing.T) {
	gated := []string{
		KeyChildrenCount, KeyChildLivesWith, KeyVisitationDays, KeyVisitationHolidays,
		KeyMedicalExpenses, KeySchoolExpenses, KeyAlimonyAmount, KeyAlimonyResponsible,
	}
	for _, id := range gated {
		s := stepByID(t, id)
		if s.VisibleFor(tramite.Answers{}) {
			t.Fatalf("step %q should hide without children", id)
		}
		if !s.VisibleFor(tramite.Answers{KeyMarriageHasChildren: true}) {
			t.Fatalf("step %q should show with children", id)
		}
	}
}

func TestGraphOtherFollowUps(t *testing.T) {
	withChildren := tramite.Answers{KeyMarriageHasChildren: true}

	s := stepByID(t, KeyMedicalExpensesOther)
	if s.VisibleFor(withChildren) {
		t.Fatal("follow-up should hide until Otro is chosen")
	}
	withChildren[KeyMedicalExpenses] = OptionOther
	if !s.VisibleFor(withChildren) {
		t.Fatal("follow-up should show once Otro is chosen")
	}

	// Children gate still applies.
	if s.VisibleFor(tramite.Answers{KeyMedicalExpenses: OptionOther}) {
		t.Fatal("follow-up should stay hidden without children")
	}
}

func TestGraphReviewStepOnlyOnSeparatePath(t *testing.T) {
	s := stepByID(t, KeyReview)
	if s.Actor != tramite.RoleSpouse {
		t.Fatal("review step belongs to the spouse")
	}
	if s.VisibleFor(tramite.Answers{tramite.AnswerModality: tramite.ModalityTogether}) {
		t.Fatal("review step should hide on the together path")
	}
	if !s.VisibleFor(tramite.Answers{tramite.AnswerModality: tramite.ModalitySeparate}) {
		t.Fatal("review step should show on the separate path")
	}
}

func TestGraphDynamicTitles(t *testing.T) {
	city := stepByID(t, KeyMarriageCity)
	got := city.TitleFor(tramite.Answers{KeyMarriageState: "Jalisco"})
	if !strings.Contains(got, "Jalisco") {
		t.Fatalf("city title should name the chosen state, got %q", got)
	}
	if city.TitleFor(tramite.Answers{}) == "" {
		t.Fatal("city title should fall back to generic wording")
	}

	days := stepByID(t, KeyVisitationDays)
	if got := days.TitleFor(tramite.Answers{KeyChildLivesWith: "Ana"}); !strings.Contains(got, "Ana") {
		t.Fatalf("visitation title should name the custodial parent, got %q", got)
	}
}

func TestGraphWelcomeAndDocumentsOptional(t *testing.T) {
	if !stepByID(t, KeyWelcome).Optional {
		t.Fatal("welcome step must not demand an answer")
	}
	if !stepByID(t, KeyMarriageCertificate).Optional {
		t.Fatal("certificate upload is deferrable")
	}
}

func TestValidCURP(t *testing.T) {
	valid := []string{"GOMC800101HDFRRL09", "LOPL820202MDFXXX01"}
	for _, curp := range valid {
		if !ValidCURP(curp) {
			t.Fatalf("ValidCURP(%q) = false", curp)
		}
	}
	invalid := []string{
		"",
		"GOMC800101HDFRRL0",   // 17 characters
		"gomc800101hdfrrl09",  // lowercase
		"GOMC800101XDFRRL09",  // sex marker must be H or M
		"GOMC80010AHDFRRL09",  // letter inside the date
		"GOMC800101HDFRRL091", // 19 characters
	}
	for _, curp := range invalid {
		if ValidCURP(curp) {
			t.Fatalf("ValidCURP(%q) = true", curp)
		}
	}
}
