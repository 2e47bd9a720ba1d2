package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jfuentesmx/tramite/pkg/api"
)

func seedCase(t *testing.T, store Store, id string) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := store.Update(context.Background(), func(tx Tx) error {
		if err := tx.PutCase(&api.Case{
			ID:        id,
			Kind:      api.CaseKindVoluntaryDivorce,
			Phase:     api.PhaseDraft,
			Answers:   api.Answers{"conyuge1_nombre": "Ana"},
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		return tx.PutParticipant(&api.Participant{
			CaseID:       id,
			ActorID:      "actor-1",
			Role:         api.RoleRequester,
			PersonalData: api.DataPending,
			StepPointer:  3,
			JoinedAt:     now,
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// runStoreTests exercises the Store contract shared by every backend.
func runStoreTests(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("CaseRoundTrip", func(t *testing.T) {
		seedCase(t, store, "case-rt")

		err := store.View(ctx, func(tx Tx) error {
			c, err := tx.GetCase("case-rt")
			if err != nil {
				return err
			}
			if c.Phase != api.PhaseDraft || c.Answers.String("conyuge1_nombre") != "Ana" {
				t.Fatalf("round trip mismatch: %+v", c)
			}
			p, err := tx.GetParticipant("case-rt", "actor-1")
			if err != nil {
				return err
			}
			if p.Role != api.RoleRequester || p.StepPointer != 3 {
				t.Fatalf("participant mismatch: %+v", p)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View: %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := store.View(ctx, func(tx Tx) error {
			if _, err := tx.GetCase("nope"); !errors.Is(err, ErrCaseNotFound) {
				t.Fatalf("GetCase miss = %v", err)
			}
			if _, err := tx.GetParticipant("nope", "actor-1"); !errors.Is(err, ErrParticipantNotFound) {
				t.Fatalf("GetParticipant miss = %v", err)
			}
			if _, err := tx.GetInvitationByToken("nope"); !errors.Is(err, ErrInvitationNotFound) {
				t.Fatalf("GetInvitationByToken miss = %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View: %v", err)
		}
	})

	t.Run("UpdateRollsBackOnError", func(t *testing.T) {
		seedCase(t, store, "case-rb")
		boom := errors.New("boom")

		err := store.Update(ctx, func(tx Tx) error {
			c, err := tx.GetCase("case-rb")
			if err != nil {
				return err
			}
			c.Phase = api.PhaseCompleted
			if err := tx.PutCase(c); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Update error = %v", err)
		}

		err = store.View(ctx, func(tx Tx) error {
			c, err := tx.GetCase("case-rb")
			if err != nil {
				return err
			}
			if c.Phase != api.PhaseDraft {
				t.Fatalf("write should have rolled back, phase = %s", c.Phase)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View: %v", err)
		}
	})

	t.Run("WritesVisibleInSameTransaction", func(t *testing.T) {
		err := store.Update(ctx, func(tx Tx) error {
			now := time.Now().UTC()
			if err := tx.PutCase(&api.Case{ID: "case-tx", Kind: api.CaseKindVoluntaryDivorce, Phase: api.PhaseDraft, CreatedAt: now, UpdatedAt: now}); err != nil {
				return err
			}
			if _, err := tx.GetCase("case-tx"); err != nil {
				t.Fatalf("write not visible inside its own transaction: %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	})

	t.Run("InvitationLookups", func(t *testing.T) {
		seedCase(t, store, "case-inv")
		now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		accepted := now.Add(time.Hour)

		err := store.Update(ctx, func(tx Tx) error {
			return tx.PutInvitation(&api.Invitation{
				ID:          "inv-1",
				CaseID:      "case-inv",
				RequesterID: "actor-1",
				Email:       "luis@example.com",
				Token:       "tok-1",
				Status:      api.InvitationPending,
				ExpiresAt:   now.Add(api.InvitationTTL),
				CreatedAt:   now,
			})
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		err = store.View(ctx, func(tx Tx) error {
			inv, err := tx.GetInvitationByToken("tok-1")
			if err != nil {
				return err
			}
			if inv.Email != "luis@example.com" || inv.Status != api.InvitationPending {
				t.Fatalf("invitation mismatch: %+v", inv)
			}
			if inv.AcceptedAt != nil {
				t.Fatalf("AcceptedAt should be nil, got %v", inv.AcceptedAt)
			}
			if _, err := tx.FindPendingInvitation("case-inv", "luis@example.com"); err != nil {
				t.Fatalf("FindPendingInvitation: %v", err)
			}
			if _, err := tx.FindPendingInvitation("case-inv", "otra@example.com"); !errors.Is(err, ErrInvitationNotFound) {
				t.Fatalf("FindPendingInvitation for unknown email = %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View: %v", err)
		}

		// Accepting stops the pending lookup but not the token lookup.
		err = store.Update(ctx, func(tx Tx) error {
			inv, err := tx.GetInvitationByToken("tok-1")
			if err != nil {
				return err
			}
			inv.Status = api.InvitationAccepted
			inv.AcceptedAt = &accepted
			inv.AcceptedBy = "actor-2"
			return tx.PutInvitation(inv)
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		err = store.View(ctx, func(tx Tx) error {
			if _, err := tx.FindPendingInvitation("case-inv", "luis@example.com"); !errors.Is(err, ErrInvitationNotFound) {
				t.Fatalf("accepted invitation still pending: %v", err)
			}
			inv, err := tx.GetInvitationByToken("tok-1")
			if err != nil {
				return err
			}
			if inv.Status != api.InvitationAccepted || inv.AcceptedBy != "actor-2" {
				t.Fatalf("acceptance not persisted: %+v", inv)
			}
			if inv.AcceptedAt == nil || !inv.AcceptedAt.Equal(accepted) {
				t.Fatalf("AcceptedAt mismatch: %v", inv.AcceptedAt)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View: %v", err)
		}
	})

	t.Run("ListCaseIDsByActor", func(t *testing.T) {
		seedCase(t, store, "case-l1")
		seedCase(t, store, "case-l2")

		err := store.View(ctx, func(tx Tx) error {
			ids, err := tx.ListCaseIDsByActor("actor-1")
			if err != nil {
				return err
			}
			found := make(map[string]bool, len(ids))
			for _, id := range ids {
				found[id] = true
			}
			if !found["case-l1"] || !found["case-l2"] {
				t.Fatalf("ListCaseIDsByActor = %v", ids)
			}
			if ids, _ := tx.ListCaseIDsByActor("unknown"); len(ids) != 0 {
				t.Fatalf("unknown actor should list nothing, got %v", ids)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View: %v", err)
		}
	})

	t.Run("DeleteCaseCascades", func(t *testing.T) {
		seedCase(t, store, "case-del")
		now := time.Now().UTC()
		err := store.Update(ctx, func(tx Tx) error {
			return tx.PutInvitation(&api.Invitation{
				ID: "inv-del", CaseID: "case-del", RequesterID: "actor-1",
				Email: "x@example.com", Token: "tok-del",
				Status: api.InvitationPending, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
			})
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		if err := store.Update(ctx, func(tx Tx) error { return tx.DeleteCase("case-del") }); err != nil {
			t.Fatalf("DeleteCase: %v", err)
		}

		err = store.View(ctx, func(tx Tx) error {
			if _, err := tx.GetCase("case-del"); !errors.Is(err, ErrCaseNotFound) {
				t.Fatalf("case survived delete: %v", err)
			}
			if _, err := tx.GetParticipant("case-del", "actor-1"); !errors.Is(err, ErrParticipantNotFound) {
				t.Fatalf("participant survived delete: %v", err)
			}
			if _, err := tx.GetInvitationByToken("tok-del"); !errors.Is(err, ErrInvitationNotFound) {
				t.Fatalf("invitation survived delete: %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View: %v", err)
		}

		if err := store.Update(ctx, func(tx Tx) error { return tx.DeleteCase("case-del") }); !errors.Is(err, ErrCaseNotFound) {
			t.Fatalf("double delete = %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestMemoryStoreViewIsReadOnly(t *testing.T) {
	store := NewMemoryStore()
	err := store.View(context.Background(), func(tx Tx) error {
		return tx.PutCase(&api.Case{ID: "x"})
	})
	if err == nil {
		t.Fatal("writes inside View must fail")
	}
}

func TestMemoryStoreClonesValues(t *testing.T) {
	store := NewMemoryStore()
	seedCase(t, store, "case-clone")
	ctx := context.Background()

	var got *api.Case
	err := store.View(ctx, func(tx Tx) error {
		var err error
		got, err = tx.GetCase("case-clone")
		return err
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	// Mutating the returned value must not leak into the store.
	got.Answers["conyuge1_nombre"] = "tampered"
	err = store.View(ctx, func(tx Tx) error {
		c, err := tx.GetCase("case-clone")
		if err != nil {
			return err
		}
		if c.Answers.String("conyuge1_nombre") != "Ana" {
			t.Fatal("stored answers were mutated through a read")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}
