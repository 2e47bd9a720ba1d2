package tramite

import (
	"fmt"

	"github.com/jfuentesmx/tramite/pkg/api"
)

// GraphBuilder provides a fluent API for defining step graphs:
//
//	graph := tramite.NewGraph().
//	    Step("bienvenida").
//	    Step("conyuge1_nombre", tramite.For(tramite.RoleRequester)).
//	    Step("conyuge1_curp", tramite.For(tramite.RoleRequester), tramite.AsCURP()).
//	    Step("matrimonio_numeroHijos",
//	        tramite.For(tramite.RoleRequester),
//	        tramite.When(func(a tramite.Answers) bool { return a.Bool("matrimonio_tieneHijos") }),
//	    ).
//	    Build()
//
//	eng := tramite.NewInMemoryEngine(graph)
type GraphBuilder struct {
	steps []api.StepDefinition
	seen  map[string]struct{}
}

// StepOption customizes a single step definition.
type StepOption func(*api.StepDefinition)

// NewGraph creates an empty step graph builder.
func NewGraph() *GraphBuilder {
	return &GraphBuilder{
		steps: make([]api.StepDefinition, 0),
		seen:  make(map[string]struct{}),
	}
}

// For restricts a step to one role. Steps without it are shared.
func For(role api.Role) StepOption {
	return func(s *api.StepDefinition) { s.Actor = role }
}

// Optional marks a step as skippable without an answer.
func Optional() StepOption {
	return func(s *api.StepDefinition) { s.Optional = true }
}

// When attaches a visibility predicate. The predicate must be pure: it
// may read answers but never mutate them.
func When(pred api.Predicate) StepOption {
	return func(s *api.StepDefinition) { s.Visible = pred }
}

// AsCURP makes the step validate its answer as an 18-character CURP.
func AsCURP() StepOption {
	return func(s *api.StepDefinition) { s.Kind = api.StepCURP }
}

// Titled attaches a dynamic title computed from the current answers.
func Titled(fn api.TitleFunc) StepOption {
	return func(s *api.StepDefinition) { s.Title = fn }
}

// Step appends a step with the given id and options.
func (b *GraphBuilder) Step(id string, opts ...StepOption) *GraphBuilder {
	if id == "" {
		panic("tramite: step id must not be empty")
	}
	if _, dup := b.seen[id]; dup {
		panic(fmt.Sprintf("tramite: duplicate step id %q", id))
	}

	s := api.StepDefinition{ID: id, Kind: api.StepText}
	for _, opt := range opts {
		opt(&s)
	}

	b.seen[id] = struct{}{}
	b.steps = append(b.steps, s)
	return b
}

// Extend appends previously built steps, preserving their order.
// Useful for composing a graph out of reusable sub-sequences.
func (b *GraphBuilder) Extend(steps []api.StepDefinition) *GraphBuilder {
	for _, s := range steps {
		if _, dup := b.seen[s.ID]; dup {
			panic(fmt.Sprintf("tramite: duplicate step id %q", s.ID))
		}
		b.seen[s.ID] = struct{}{}
		b.steps = append(b.steps, s)
	}
	return b
}

// Len returns the number of steps added so far.
func (b *GraphBuilder) Len() int {
	return len(b.steps)
}

// Build returns the ordered step definitions. The returned slice is a
// copy; the builder can keep being extended afterwards.
func (b *GraphBuilder) Build() []api.StepDefinition {
	out := make([]api.StepDefinition, len(b.steps))
	copy(out, b.steps)
	return out
}
