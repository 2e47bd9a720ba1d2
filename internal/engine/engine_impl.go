package engine

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jfuentesmx/tramite/internal/persistence"
	"github.com/jfuentesmx/tramite/pkg/api"
	"github.com/jfuentesmx/tramite/pkg/wizard"
)

// engineImpl is a synchronous, in-process engine implementation. All
// mutations run inside a single store transaction; observers fire after
// commit.
type engineImpl struct {
	store    persistence.Store
	graph    []api.StepDefinition
	observer api.Observer

	now      func() time.Time
	newID    func() string
	newToken func() (string, error)
}

// Config describes how to construct an engineImpl. Only used inside
// this package; external callers use the tramite package constructors.
type Config struct {
	Store    persistence.Store
	Graph    []api.StepDefinition
	Observer api.Observer

	// Now, NewID, and NewToken are injectable for tests. Nil means the
	// real clock, uuid identifiers, and 32-byte crypto/rand hex tokens.
	Now      func() time.Time
	NewID    func() string
	NewToken func() (string, error)
}

// NewMemoryEngine returns an Engine backed by an in-memory store.
func NewMemoryEngine(graph []api.StepDefinition) api.Engine {
	return NewEngineWithConfig(Config{
		Store: persistence.NewMemoryStore(),
		Graph: graph,
	})
}

// NewMemoryEngineWithObserver returns an in-memory Engine with the
// given Observer.
func NewMemoryEngineWithObserver(graph []api.StepDefinition, obs api.Observer) api.Engine {
	return NewEngineWithConfig(Config{
		Store:    persistence.NewMemoryStore(),
		Graph:    graph,
		Observer: obs,
	})
}

// NewSQLiteEngine returns an Engine that persists cases, participants,
// and invitations in a SQLite database.
func NewSQLiteEngine(db *sql.DB, graph []api.StepDefinition) (api.Engine, error) {
	store, err := persistence.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return NewEngineWithConfig(Config{
		Store: store,
		Graph: graph,
	}), nil
}

// NewSQLiteEngineWithObserver returns a SQLite-backed Engine with the
// given Observer.
func NewSQLiteEngineWithObserver(db *sql.DB, graph []api.StepDefinition, obs api.Observer) (api.Engine, error) {
	store, err := persistence.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return NewEngineWithConfig(Config{
		Store:    store,
		Graph:    graph,
		Observer: obs,
	}), nil
}

// NewEngineWithConfig creates a new Engine using the given configuration.
func NewEngineWithConfig(cfg Config) api.Engine {
	e := &engineImpl{
		store:    cfg.Store,
		graph:    cfg.Graph,
		observer: cfg.Observer,
		now:      cfg.Now,
		newID:    cfg.NewID,
		newToken: cfg.NewToken,
	}
	if e.observer == nil {
		e.observer = api.NoopObserver{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.newToken == nil {
		e.newToken = defaultToken
	}
	return e
}

// defaultToken mints a 32-byte hex-encoded invitation secret.
func defaultToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// domainErrs are the typed failures that pass through update unchanged;
// anything else coming out of the store is a transient infrastructure
// error and surfaces as retryable.
var domainErrs = []error{
	api.ErrCaseNotFound,
	api.ErrForbidden,
	api.ErrFieldOwnership,
	api.ErrPhaseConflict,
	api.ErrValidation,
	api.ErrInvitationNotFound,
	api.ErrInvitationExpired,
	api.ErrInvitationUsed,
	api.ErrInvitationExists,
	api.ErrEmailMismatch,
	api.ErrUnavailable,
}

func isDomainErr(err error) bool {
	for _, d := range domainErrs {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}

func (e *engineImpl) update(ctx context.Context, fn func(tx persistence.Tx) error) error {
	err := e.store.Update(ctx, fn)
	if err == nil || isDomainErr(err) {
		return err
	}
	return fmt.Errorf("%w: %v", api.ErrUnavailable, err)
}

func (e *engineImpl) view(ctx context.Context, fn func(tx persistence.Tx) error) error {
	err := e.store.View(ctx, fn)
	if err == nil || isDomainErr(err) {
		return err
	}
	return fmt.Errorf("%w: %v", api.ErrUnavailable, err)
}

// notFound maps missing case or participant records to the single
// not-found error callers see, so existence never leaks.
func notFound(err error) error {
	if errors.Is(err, persistence.ErrCaseNotFound) || errors.Is(err, persistence.ErrParticipantNotFound) {
		return api.ErrCaseNotFound
	}
	return err
}

func (e *engineImpl) CreateCase(ctx context.Context, actorID string, kind api.CaseKind) (*api.CaseView, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: case creation requires an authenticated actor", api.ErrForbidden)
	}
	if kind == "" {
		kind = api.CaseKindVoluntaryDivorce
	}
	if kind != api.CaseKindVoluntaryDivorce {
		return nil, fmt.Errorf("unsupported case kind %q: %w", kind, api.ErrValidation)
	}

	now := e.now().UTC()
	c := &api.Case{
		ID:        e.newID(),
		Kind:      kind,
		Phase:     api.PhaseDraft,
		Answers:   api.Answers{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	p := &api.Participant{
		CaseID:       c.ID,
		ActorID:      actorID,
		Role:         api.RoleRequester,
		PersonalData: api.DataPending,
		StepPointer:  0,
		JoinedAt:     now,
	}

	var out *api.CaseView
	err := e.update(ctx, func(tx persistence.Tx) error {
		if err := tx.PutCase(c); err != nil {
			return err
		}
		if err := tx.PutParticipant(p); err != nil {
			return err
		}
		v, err := e.caseView(tx, c, p)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.observer.OnCaseCreated(ctx, &out.Case)
	return out, nil
}

func (e *engineImpl) GetCase(ctx context.Context, actorID, caseID string) (*api.CaseView, error) {
	var out *api.CaseView
	err := e.view(ctx, func(tx persistence.Tx) error {
		p, err := tx.GetParticipant(caseID, actorID)
		if err != nil {
			return notFound(err)
		}
		c, err := tx.GetCase(caseID)
		if err != nil {
			return notFound(err)
		}
		v, err := e.caseView(tx, c, p)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *engineImpl) ListCases(ctx context.Context, actorID string) ([]*api.CaseView, error) {
	var out []*api.CaseView
	err := e.view(ctx, func(tx persistence.Tx) error {
		ids, err := tx.ListCaseIDsByActor(actorID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			p, err := tx.GetParticipant(id, actorID)
			if err != nil {
				return notFound(err)
			}
			c, err := tx.GetCase(id)
			if err != nil {
				return notFound(err)
			}
			v, err := e.caseView(tx, c, p)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Case.ID < out[j].Case.ID
	})
	return out, nil
}

func (e *engineImpl) SubmitSteps(ctx context.Context, actorID, caseID string, batch api.SubmitBatch) (*api.CaseView, error) {
	var (
		out    *api.CaseView
		events caseEvents
	)
	err := e.update(ctx, func(tx persistence.Tx) error {
		p, err := tx.GetParticipant(caseID, actorID)
		if err != nil {
			return notFound(err)
		}
		c, err := tx.GetCase(caseID)
		if err != nil {
			return notFound(err)
		}

		if err := e.applyBatch(tx, c, p, batch, &events); err != nil {
			return err
		}

		v, err := e.caseView(tx, c, p)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.fire(ctx, &out.Case, events)
	return out, nil
}

func (e *engineImpl) DeleteCase(ctx context.Context, actorID, caseID string) error {
	return e.update(ctx, func(tx persistence.Tx) error {
		p, err := tx.GetParticipant(caseID, actorID)
		if err != nil {
			return notFound(err)
		}
		if p.Role != api.RoleRequester {
			return fmt.Errorf("%w: only the requester may delete the tramite", api.ErrForbidden)
		}
		if err := tx.DeleteCase(caseID); err != nil {
			return notFound(err)
		}
		return nil
	})
}

func (e *engineImpl) CreateInvitation(ctx context.Context, actorID, caseID, email string) (*api.Invitation, error) {
	email = api.CanonicalEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("invalid email address: %w", api.ErrValidation)
	}

	token, err := e.newToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrUnavailable, err)
	}

	var out *api.Invitation
	err = e.update(ctx, func(tx persistence.Tx) error {
		p, err := tx.GetParticipant(caseID, actorID)
		if err != nil {
			return notFound(err)
		}
		if p.Role != api.RoleRequester {
			return fmt.Errorf("%w: only the requester may invite the second party", api.ErrForbidden)
		}
		c, err := tx.GetCase(caseID)
		if err != nil {
			return notFound(err)
		}
		if c.Phase != api.PhaseAwaitingSecondParty {
			return fmt.Errorf("%w: invitations require phase %s", api.ErrPhaseConflict, api.PhaseAwaitingSecondParty)
		}

		if _, err := tx.FindPendingInvitation(caseID, email); err == nil {
			return api.ErrInvitationExists
		} else if !errors.Is(err, persistence.ErrInvitationNotFound) {
			return err
		}

		now := e.now().UTC()
		inv := &api.Invitation{
			ID:          e.newID(),
			CaseID:      caseID,
			RequesterID: actorID,
			Email:       email,
			Token:       token,
			Status:      api.InvitationPending,
			ExpiresAt:   now.Add(api.InvitationTTL),
			CreatedAt:   now,
		}
		if err := tx.PutInvitation(inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.observer.OnInvitationCreated(ctx, out)
	return out, nil
}

func (e *engineImpl) VerifyInvitation(ctx context.Context, token string) (*api.InvitationView, error) {
	var (
		out    *api.InvitationView
		invErr error
	)
	err := e.update(ctx, func(tx persistence.Tx) error {
		out, invErr = nil, nil

		inv, err := tx.GetInvitationByToken(token)
		if err != nil {
			if errors.Is(err, persistence.ErrInvitationNotFound) {
				return api.ErrInvitationNotFound
			}
			return err
		}

		switch inv.Status {
		case api.InvitationPending:
		case api.InvitationExpired:
			invErr = api.ErrInvitationExpired
			return nil
		default:
			invErr = fmt.Errorf("%w: status %s", api.ErrInvitationUsed, inv.Status)
			return nil
		}

		if inv.ExpiredAt(e.now().UTC()) {
			// Lazy flip; the status change commits even though the caller
			// gets an expiry error.
			inv.Status = api.InvitationExpired
			if err := tx.PutInvitation(inv); err != nil {
				return err
			}
			invErr = api.ErrInvitationExpired
			return nil
		}

		c, err := tx.GetCase(inv.CaseID)
		if err != nil {
			return notFound(err)
		}
		out = &api.InvitationView{
			Invitation:    *inv,
			CaseKind:      c.Kind,
			CasePhase:     c.Phase,
			CaseAnswers:   c.Answers.Clone(),
			RequesterName: c.Answers.String(api.RequesterFieldPrefix + "nombre"),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if invErr != nil {
		return nil, invErr
	}
	return out, nil
}

func (e *engineImpl) AcceptInvitation(ctx context.Context, token, actorID, actorEmail string) (*api.CaseView, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: accepting requires an authenticated actor", api.ErrForbidden)
	}

	var (
		out      *api.CaseView
		accepted *api.Invitation
		invErr   error
	)
	err := e.update(ctx, func(tx persistence.Tx) error {
		out, accepted, invErr = nil, nil, nil

		inv, err := tx.GetInvitationByToken(token)
		if err != nil {
			if errors.Is(err, persistence.ErrInvitationNotFound) {
				return api.ErrInvitationNotFound
			}
			return err
		}

		switch inv.Status {
		case api.InvitationPending:
		case api.InvitationExpired:
			invErr = api.ErrInvitationExpired
			return nil
		default:
			invErr = fmt.Errorf("%w: status %s", api.ErrInvitationUsed, inv.Status)
			return nil
		}

		now := e.now().UTC()
		if inv.ExpiredAt(now) {
			inv.Status = api.InvitationExpired
			if err := tx.PutInvitation(inv); err != nil {
				return err
			}
			invErr = api.ErrInvitationExpired
			return nil
		}

		if api.CanonicalEmail(actorEmail) != inv.Email {
			return api.ErrEmailMismatch
		}

		c, err := tx.GetCase(inv.CaseID)
		if err != nil {
			return notFound(err)
		}
		if err := secondPartyOpen(tx, c); err != nil {
			return err
		}
		if _, err := tx.GetParticipant(inv.CaseID, actorID); err == nil {
			return fmt.Errorf("%w: already a participant of this tramite", api.ErrForbidden)
		} else if !errors.Is(err, persistence.ErrParticipantNotFound) {
			return err
		}

		inv.Status = api.InvitationAccepted
		inv.AcceptedAt = &now
		inv.AcceptedBy = actorID
		if err := tx.PutInvitation(inv); err != nil {
			return err
		}

		p := &api.Participant{
			CaseID:       inv.CaseID,
			ActorID:      actorID,
			Role:         api.RoleSpouse,
			PersonalData: api.DataPending,
			StepPointer:  0,
			JoinedAt:     now,
		}
		if err := tx.PutParticipant(p); err != nil {
			return err
		}

		v, err := e.caseView(tx, c, p)
		if err != nil {
			return err
		}
		out = v
		accepted = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	if invErr != nil {
		return nil, invErr
	}

	e.observer.OnInvitationAccepted(ctx, accepted)
	return out, nil
}

func (e *engineImpl) SubmitViaInvitation(ctx context.Context, token string, batch api.SubmitBatch) (*api.CaseView, error) {
	var (
		out      *api.CaseView
		accepted *api.Invitation
		events   caseEvents
		invErr   error
	)
	err := e.update(ctx, func(tx persistence.Tx) error {
		out, accepted, invErr = nil, nil, nil
		events = caseEvents{}

		inv, err := tx.GetInvitationByToken(token)
		if err != nil {
			if errors.Is(err, persistence.ErrInvitationNotFound) {
				return api.ErrInvitationNotFound
			}
			return err
		}

		switch inv.Status {
		case api.InvitationPending:
		case api.InvitationExpired:
			invErr = api.ErrInvitationExpired
			return nil
		default:
			invErr = fmt.Errorf("%w: status %s", api.ErrInvitationUsed, inv.Status)
			return nil
		}

		now := e.now().UTC()
		if inv.ExpiredAt(now) {
			inv.Status = api.InvitationExpired
			if err := tx.PutInvitation(inv); err != nil {
				return err
			}
			invErr = api.ErrInvitationExpired
			return nil
		}

		c, err := tx.GetCase(inv.CaseID)
		if err != nil {
			return notFound(err)
		}
		if err := secondPartyOpen(tx, c); err != nil {
			return err
		}

		// The token stands in for the prospective spouse until the final,
		// complete-flagged call materializes a participant.
		p := &api.Participant{
			CaseID:       c.ID,
			Role:         api.RoleSpouse,
			PersonalData: api.DataPending,
			JoinedAt:     now,
		}
		if batch.StepPointer != nil {
			p.StepPointer = *batch.StepPointer
		}

		if err := e.checkAndMerge(c, p, batch); err != nil {
			return err
		}

		if batch.Complete {
			p.ActorID = e.newID()
			p.PersonalData = api.DataCompleted

			inv.Status = api.InvitationAccepted
			inv.AcceptedAt = &now
			inv.AcceptedBy = p.ActorID
			if err := tx.PutInvitation(inv); err != nil {
				return err
			}
			if err := tx.PutParticipant(p); err != nil {
				return err
			}
			e.transition(c, p, &events)
			accepted = inv
		}

		if err := tx.PutCase(c); err != nil {
			return err
		}
		v, err := e.caseView(tx, c, p)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if invErr != nil {
		return nil, invErr
	}

	if accepted != nil {
		e.observer.OnInvitationAccepted(ctx, accepted)
	}
	e.fire(ctx, &out.Case, events)
	return out, nil
}

// secondPartyOpen checks that the case can still admit its second party
// through an invitation token: the phase must still be awaiting the
// second party and no spouse participant may exist yet. Sibling tokens
// left pending after the real spouse joins fail this check.
func secondPartyOpen(tx persistence.Tx, c *api.Case) error {
	if c.Phase != api.PhaseAwaitingSecondParty {
		return fmt.Errorf("%w: case is %s", api.ErrPhaseConflict, c.Phase)
	}
	participants, err := tx.ListParticipants(c.ID)
	if err != nil {
		return err
	}
	for i := range participants {
		if participants[i].Role == api.RoleSpouse {
			return fmt.Errorf("%w: second party already joined", api.ErrPhaseConflict)
		}
	}
	return nil
}

// caseView assembles the caller-scoped projection of a case.
func (e *engineImpl) caseView(tx persistence.Tx, c *api.Case, p *api.Participant) (*api.CaseView, error) {
	participants, err := tx.ListParticipants(c.ID)
	if err != nil {
		return nil, err
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Role < participants[j].Role
	})

	subset := wizard.Subset(e.graph, c.Phase, p.Role, c.Answers)
	return &api.CaseView{
		Case:         *c,
		MyRole:       p.Role,
		MyDataStatus: p.PersonalData,
		ResumeStep:   wizard.ResumeIndex(subset, *p),
		Participants: participants,
	}, nil
}
