package persistence

import (
	"context"
	"errors"
	"sync"

	"github.com/jfuentesmx/tramite/pkg/api"
)

// MemoryStore is a goroutine-safe Store backed by maps. It is the
// default for tests and development; nothing survives a restart.
//
// A single mutex serializes transactions, which matches the scale of
// the domain: a case sees at most two human writers.
type MemoryStore struct {
	mu           sync.Mutex
	cases        map[string]*api.Case
	participants map[string]map[string]api.Participant
	invitations  map[string]*api.Invitation
	tokens       map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases:        make(map[string]*api.Case),
		participants: make(map[string]map[string]api.Participant),
		invitations:  make(map[string]*api.Invitation),
		tokens:       make(map[string]string),
	}
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Values are cloned on every read and write, so a shallow backup of
	// the maps is enough to roll the whole transaction back.
	backup := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(backup)
		return err
	}
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{s: s, readonly: true})
}

type memSnapshot struct {
	cases        map[string]*api.Case
	participants map[string]map[string]api.Participant
	invitations  map[string]*api.Invitation
	tokens       map[string]string
}

func (s *MemoryStore) snapshot() memSnapshot {
	snap := memSnapshot{
		cases:        make(map[string]*api.Case, len(s.cases)),
		participants: make(map[string]map[string]api.Participant, len(s.participants)),
		invitations:  make(map[string]*api.Invitation, len(s.invitations)),
		tokens:       make(map[string]string, len(s.tokens)),
	}
	for k, v := range s.cases {
		snap.cases[k] = v
	}
	for k, v := range s.participants {
		inner := make(map[string]api.Participant, len(v))
		for ak, av := range v {
			inner[ak] = av
		}
		snap.participants[k] = inner
	}
	for k, v := range s.invitations {
		snap.invitations[k] = v
	}
	for k, v := range s.tokens {
		snap.tokens[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.cases = snap.cases
	s.participants = snap.participants
	s.invitations = snap.invitations
	s.tokens = snap.tokens
}

type memTx struct {
	s        *MemoryStore
	readonly bool
}

var _ Tx = (*memTx)(nil)

var errReadOnly = errors.New("write inside read-only transaction")

func cloneCase(c *api.Case) *api.Case {
	out := *c
	out.Answers = c.Answers.Clone()
	return &out
}

func cloneInvitation(inv *api.Invitation) *api.Invitation {
	out := *inv
	if inv.AcceptedAt != nil {
		t := *inv.AcceptedAt
		out.AcceptedAt = &t
	}
	return &out
}

func (t *memTx) GetCase(id string) (*api.Case, error) {
	c, ok := t.s.cases[id]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return cloneCase(c), nil
}

func (t *memTx) PutCase(c *api.Case) error {
	if t.readonly {
		return errReadOnly
	}
	t.s.cases[c.ID] = cloneCase(c)
	return nil
}

func (t *memTx) DeleteCase(id string) error {
	if t.readonly {
		return errReadOnly
	}
	if _, ok := t.s.cases[id]; !ok {
		return ErrCaseNotFound
	}
	delete(t.s.cases, id)
	delete(t.s.participants, id)
	for invID, inv := range t.s.invitations {
		if inv.CaseID == id {
			delete(t.s.tokens, inv.Token)
			delete(t.s.invitations, invID)
		}
	}
	return nil
}

func (t *memTx) ListCaseIDsByActor(actorID string) ([]string, error) {
	var ids []string
	for caseID, byActor := range t.s.participants {
		if _, ok := byActor[actorID]; ok {
			ids = append(ids, caseID)
		}
	}
	return ids, nil
}

func (t *memTx) GetParticipant(caseID, actorID string) (*api.Participant, error) {
	p, ok := t.s.participants[caseID][actorID]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	out := p
	return &out, nil
}

func (t *memTx) ListParticipants(caseID string) ([]api.Participant, error) {
	byActor := t.s.participants[caseID]
	out := make([]api.Participant, 0, len(byActor))
	for _, p := range byActor {
		out = append(out, p)
	}
	return out, nil
}

func (t *memTx) PutParticipant(p *api.Participant) error {
	if t.readonly {
		return errReadOnly
	}
	byActor, ok := t.s.participants[p.CaseID]
	if !ok {
		byActor = make(map[string]api.Participant)
		t.s.participants[p.CaseID] = byActor
	}
	byActor[p.ActorID] = *p
	return nil
}

func (t *memTx) GetInvitationByToken(token string) (*api.Invitation, error) {
	id, ok := t.s.tokens[token]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	inv, ok := t.s.invitations[id]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	return cloneInvitation(inv), nil
}

func (t *memTx) FindPendingInvitation(caseID, email string) (*api.Invitation, error) {
	for _, inv := range t.s.invitations {
		if inv.CaseID == caseID && inv.Email == email && inv.Status == api.InvitationPending {
			return cloneInvitation(inv), nil
		}
	}
	return nil, ErrInvitationNotFound
}

func (t *memTx) PutInvitation(inv *api.Invitation) error {
	if t.readonly {
		return errReadOnly
	}
	t.s.invitations[inv.ID] = cloneInvitation(inv)
	t.s.tokens[inv.Token] = inv.ID
	return nil
}
