// Package api contains the core building blocks of the tramite workflow
// engine: the case data model, the step-graph primitives, the invitation
// types, the Engine interface, and the Observer used for notification
// fan-out.
//
// Most users interact with the higher-level tramite package, which
// re-exports selected types and helpers from this package and constructs
// engines over concrete persistence. The api package is intended for
// custom integrations or contributors extending the engine itself.
//
// # Concepts
//
// The api package centers around a small set of concepts:
//
//   - Cases, participants, and phases
//   - Step definitions and visibility predicates
//   - Invitations
//   - Observability
//
// # Cases and Phases
//
// A Case is one legal matter processed end-to-end by up to two parties.
// Its Phase is a forward-only state machine (Draft, AwaitingSecondParty,
// InProgress, Completed) deciding which subset of the step graph each
// role may address. Accumulated answers live in a single Answers
// document keyed by step id.
//
// # Steps
//
// A StepDefinition is a static declaration: an identity, an optional
// actor filter, an optional visibility predicate over the accumulated
// answers, and answer-dependent wording. Predicates must be pure so that
// visibility can be recomputed identically at any point in time; the
// graph is a flat declaration order with runtime masking, not a literal
// graph structure.
//
// # Invitations
//
// An Invitation is a time-boxed, single-use token binding an email
// address to a case. It is the only credential that lets an
// unauthenticated second party contribute spouse data, and it never
// authorizes a write once it has left the pending state.
//
// # Observability
//
// The Observer interface reports case lifecycle events after their
// transaction commits. Ready-made implementations cover logging
// (log/slog), fan-out composition, and the no-op default. Notification
// delivery hangs off this seam; its failures are logged, never fatal.
//
// See the tramite package documentation and the examples directory for
// end-to-end usage.
package api
