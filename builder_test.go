package tramite

import "testing"

func TestGraphBuilder_StepOptions(t *testing.T) {
	graph := NewGraph().
		Step("bienvenida", Optional()).
		Step("conyuge1_curp", For(RoleRequester), AsCURP()).
		Step("matrimonio_numeroHijos",
			For(RoleRequester),
			When(func(a Answers) bool { return a.Bool("matrimonio_tieneHijos") }),
			Titled(func(Answers) string { return "¿Cuántos hijos tienen?" }),
		).
		Build()

	if len(graph) != 3 {
		t.Fatalf("unexpected graph length %d", len(graph))
	}

	if !graph[0].Optional || !graph[0].Shared() {
		t.Fatalf("welcome step misconfigured: %+v", graph[0])
	}

	curp := graph[1]
	if curp.Actor != RoleRequester || curp.Kind != StepCURP {
		t.Fatalf("curp step misconfigured: %+v", curp)
	}

	children := graph[2]
	if children.VisibleFor(Answers{}) {
		t.Fatal("predicate should hide the step without children")
	}
	if !children.VisibleFor(Answers{"matrimonio_tieneHijos": true}) {
		t.Fatal("predicate should show the step with children")
	}
	if children.TitleFor(Answers{}) != "¿Cuántos hijos tienen?" {
		t.Fatalf("unexpected title %q", children.TitleFor(Answers{}))
	}
}

func TestGraphBuilder_PanicsOnEmptyID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("empty step id should panic")
		}
	}()
	NewGraph().Step("")
}

func TestGraphBuilder_PanicsOnDuplicateID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate step id should panic")
		}
	}()
	NewGraph().Step("a").Step("a")
}

func TestGraphBuilder_ExtendComposesSubSequences(t *testing.T) {
	personal := NewGraph().Step("conyuge1_nombre").Step("conyuge1_curp").Build()
	signing := NewGraph().Step("firma_conyuge1").Step("firma_conyuge2").Build()

	graph := NewGraph().
		Step("bienvenida").
		Extend(personal).
		Extend(signing).
		Build()

	want := []string{"bienvenida", "conyuge1_nombre", "conyuge1_curp", "firma_conyuge1", "firma_conyuge2"}
	if len(graph) != len(want) {
		t.Fatalf("graph length %d, want %d", len(graph), len(want))
	}
	for i, id := range want {
		if graph[i].ID != id {
			t.Fatalf("step[%d] = %q, want %q", i, graph[i].ID, id)
		}
	}
}

func TestGraphBuilder_ExtendRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("extending with a duplicate id should panic")
		}
	}()
	NewGraph().Step("a").Extend(NewGraph().Step("a").Build())
}

func TestGraphBuilder_BuildReturnsCopy(t *testing.T) {
	b := NewGraph().Step("a")
	first := b.Build()
	b.Step("b")

	if len(first) != 1 {
		t.Fatalf("earlier Build result grew to %d steps", len(first))
	}
	if b.Len() != 2 {
		t.Fatalf("builder length %d, want 2", b.Len())
	}
}
