package api

// StepKind selects engine-level validation for a step's answer.
// Most steps are free-form; the CURP kind additionally requires the
// stored value to be exactly 18 characters, the one cross-cutting rule
// enforced by the engine rather than by the rendering widget.
type StepKind string

const (
	StepText StepKind = "TEXT"
	StepCURP StepKind = "CURP"
)

// CURPLength is the fixed length of a CURP identity code.
const CURPLength = 18

// Predicate decides whether a step applies given the accumulated
// answers. Predicates must be pure: no external state, no side effects,
// so that recomputing visibility at any point, from any step, yields
// identical results. That purity is what makes jumping forward and
// backward through the graph well-defined.
type Predicate func(Answers) bool

// TitleFunc renders a step's wording from the accumulated answers, for
// steps whose phrasing depends on earlier answers.
type TitleFunc func(Answers) string

// StepDefinition is one atomic question in the step graph. Definitions
// are static declarations; they are never persisted.
type StepDefinition struct {
	// ID is the stable identity of the step and the key under which its
	// answer is stored in the case's answer map.
	ID string

	// Actor restricts the step to one role. Empty means shared: both
	// parties may address it, and it survives into the signing phase.
	Actor Role

	// Optional marks steps whose absence of an answer does not block
	// advancing.
	Optional bool

	Kind StepKind

	// Visible masks the step at runtime. Nil means always visible.
	Visible Predicate

	// Title is the renderer-facing wording. Static wording is captured by
	// closing over a constant; nil is allowed for steps whose rendering
	// layer supplies its own copy.
	Title TitleFunc
}

// TitleFor resolves the step's wording against the given answers.
func (s StepDefinition) TitleFor(a Answers) string {
	if s.Title == nil {
		return ""
	}
	return s.Title(a)
}

// VisibleFor reports whether the step applies under the given answers.
func (s StepDefinition) VisibleFor(a Answers) bool {
	return s.Visible == nil || s.Visible(a)
}

// Shared reports whether the step has no actor filter.
func (s StepDefinition) Shared() bool {
	return s.Actor == ""
}
