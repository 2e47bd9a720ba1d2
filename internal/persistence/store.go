package persistence

import (
	"context"
	"errors"

	"github.com/jfuentesmx/tramite/pkg/api"
)

var (
	// ErrCaseNotFound is returned when a case id is unknown.
	ErrCaseNotFound = errors.New("case not found")

	// ErrParticipantNotFound is returned when an actor has no participant
	// record on a case.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrInvitationNotFound is returned when a token matches no invitation.
	ErrInvitationNotFound = errors.New("invitation not found")
)

// Tx is the set of reads and writes available inside one transaction.
// Writes become visible to later reads in the same transaction and are
// committed together when the Update function returns nil, or discarded
// entirely when it returns an error.
type Tx interface {
	GetCase(id string) (*api.Case, error)
	PutCase(c *api.Case) error
	DeleteCase(id string) error
	ListCaseIDsByActor(actorID string) ([]string, error)

	GetParticipant(caseID, actorID string) (*api.Participant, error)
	ListParticipants(caseID string) ([]api.Participant, error)
	PutParticipant(p *api.Participant) error

	GetInvitationByToken(token string) (*api.Invitation, error)
	FindPendingInvitation(caseID, email string) (*api.Invitation, error)
	PutInvitation(inv *api.Invitation) error
}

// Store is the durable home of cases, participants, and invitations.
// Every read-modify-write the engine performs runs inside Update so that
// case, participant, and invitation changes commit atomically; the phase
// is always re-validated against what the transaction reads, never
// against what the client last fetched.
type Store interface {
	// Update runs fn inside a read-write transaction. Implementations
	// serialize Update transactions against each other.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn inside a read-only transaction.
	View(ctx context.Context, fn func(tx Tx) error) error
}
