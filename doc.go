// Package tramite provides a lightweight, embeddable two-party wizard engine
// for Go.
//
// Tramite is designed for backend services that guide two people through a
// shared legal filing — a requester who opens the case and a second party who
// joins later — without introducing external dependencies or heavy
// infrastructure. It runs fully in Go, supports in-memory and SQLite
// persistence, and integrates cleanly into existing codebases.
//
// # Core Concepts
//
// The programming model is intentionally small and idiomatic:
//
//  1. Engine
//  2. Step graph
//  3. GraphBuilder
//  4. Walker
//  5. Invitations
//
// These components form a complete guided-form system with phase-gated
// authorization, durable state (when using the SQLite backend), and a clear
// mental model.
//
// # Engine
//
// The Engine stores cases, participants, and invitations, and provides APIs
// to:
//   - open a case and record answers step by step
//   - advance the case through its phases as each party finishes
//   - invite the second party by email and accept the invitation
//   - read an actor-scoped view of a case
//
// Every answer write passes a guard: a participant may only touch answer keys
// their role owns in the case's current phase, and a batch with a single
// offending key is rejected whole. Engines can be backed by an in-memory
// store (non-durable, best for tests) or by SQLite (embedded durability).
//
// # Step graph
//
// A case's questionnaire is an ordered list of StepDefinitions. Each step
// carries an id that doubles as its answer key, an owning role (or none, for
// shared steps), an optional visibility predicate over the answers collected
// so far, and a kind that selects answer validation. The engine never stores
// the graph; callers define it once and pass it to the constructor.
//
// # GraphBuilder
//
// GraphBuilder provides the ergonomic, declarative API used to define step
// graphs:
//
//	tramite.NewGraph().
//	    Step("bienvenida").
//	    Step("conyuge1_curp", tramite.For(tramite.RoleRequester), tramite.AsCURP()).
//	    Step("matrimonio_numeroHijos",
//	        tramite.For(tramite.RoleRequester),
//	        tramite.When(hasChildren),
//	    ).
//	    Build()
//
// The divorce package ships a ready-made graph for the voluntary divorce
// filing.
//
// # Walker
//
// Walker is a client-side cursor over the steps visible to one participant.
// It validates the current answer, skips steps whose predicates turn false,
// and persists progress through a Saver callback after every advance, so a
// participant can close their session and resume mid-form later.
//
// # Invitations
//
// When the requester chooses to fill the form separately from their spouse,
// the engine issues a single-use, expiring token bound to the spouse's email.
// The token authenticates the spouse's step submissions until their half is
// complete; accepting it atomically records the acceptance and enrolls the
// spouse as a participant.
//
// For examples, see the /examples directory.
package tramite
