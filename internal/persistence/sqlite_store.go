package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jfuentesmx/tramite/pkg/api"
)

// SQLiteStore is a Store backed by SQLite.
//
// It expects an *sql.DB opened with a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//
// For write-heavy use, open the database with "_txlock=immediate" so
// update transactions take their write lock up front.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database
// and returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tramites (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			phase TEXT NOT NULL,
			answers BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS participants (
			case_id TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			role TEXT NOT NULL,
			personal_data TEXT NOT NULL,
			step_pointer INTEGER NOT NULL,
			joined_at INTEGER NOT NULL,
			PRIMARY KEY (case_id, actor_id)
		);
		CREATE TABLE IF NOT EXISTS invitations (
			id TEXT PRIMARY KEY,
			case_id TEXT NOT NULL,
			requester_id TEXT NOT NULL,
			email TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			accepted_at INTEGER,
			accepted_by TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_participants_actor ON participants(actor_id);
		CREATE INDEX IF NOT EXISTS idx_invitations_case_email ON invitations(case_id, email);`,
	)
	return err
}

func (s *SQLiteStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&sqliteTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) View(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// Read-only use: discard instead of committing.
	defer func() { _ = tx.Rollback() }()
	return fn(&sqliteTx{tx: tx})
}

type sqliteTx struct {
	tx *sql.Tx
}

var _ Tx = (*sqliteTx)(nil)

func (t *sqliteTx) GetCase(id string) (*api.Case, error) {
	row := t.tx.QueryRow(`
		SELECT id, kind, phase, answers, created_at, updated_at
		FROM tramites WHERE id = ?`, id)

	var c api.Case
	var kind, phase string
	var answers []byte
	var createdAt, updatedAt int64

	if err := row.Scan(&c.ID, &kind, &phase, &answers, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	c.Kind = api.CaseKind(kind)
	c.Phase = api.Phase(phase)
	c.CreatedAt = time.Unix(0, createdAt).UTC()
	c.UpdatedAt = time.Unix(0, updatedAt).UTC()

	a, err := DecodeAnswers(answers)
	if err != nil {
		return nil, err
	}
	c.Answers = a

	return &c, nil
}

func (t *sqliteTx) PutCase(c *api.Case) error {
	answers, err := EncodeAnswers(c.Answers)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(`
		INSERT INTO tramites (id, kind, phase, answers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			phase = excluded.phase,
			answers = excluded.answers,
			updated_at = excluded.updated_at`,
		c.ID,
		string(c.Kind),
		string(c.Phase),
		answers,
		c.CreatedAt.UnixNano(),
		c.UpdatedAt.UnixNano(),
	)
	return err
}

func (t *sqliteTx) DeleteCase(id string) error {
	res, err := t.tx.Exec(`DELETE FROM tramites WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCaseNotFound
	}
	if _, err := t.tx.Exec(`DELETE FROM participants WHERE case_id = ?`, id); err != nil {
		return err
	}
	if _, err := t.tx.Exec(`DELETE FROM invitations WHERE case_id = ?`, id); err != nil {
		return err
	}
	return nil
}

func (t *sqliteTx) ListCaseIDsByActor(actorID string) ([]string, error) {
	rows, err := t.tx.Query(`SELECT case_id FROM participants WHERE actor_id = ?`, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanParticipant(scan func(dest ...any) error) (*api.Participant, error) {
	var p api.Participant
	var role, personalData string
	var joinedAt int64

	if err := scan(&p.CaseID, &p.ActorID, &role, &personalData, &p.StepPointer, &joinedAt); err != nil {
		return nil, err
	}
	p.Role = api.Role(role)
	p.PersonalData = api.DataStatus(personalData)
	p.JoinedAt = time.Unix(0, joinedAt).UTC()
	return &p, nil
}

func (t *sqliteTx) GetParticipant(caseID, actorID string) (*api.Participant, error) {
	row := t.tx.QueryRow(`
		SELECT case_id, actor_id, role, personal_data, step_pointer, joined_at
		FROM participants WHERE case_id = ? AND actor_id = ?`, caseID, actorID)

	p, err := scanParticipant(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (t *sqliteTx) ListParticipants(caseID string) ([]api.Participant, error) {
	rows, err := t.tx.Query(`
		SELECT case_id, actor_id, role, personal_data, step_pointer, joined_at
		FROM participants WHERE case_id = ?`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.Participant
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (t *sqliteTx) PutParticipant(p *api.Participant) error {
	_, err := t.tx.Exec(`
		INSERT INTO participants (case_id, actor_id, role, personal_data, step_pointer, joined_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(case_id, actor_id) DO UPDATE SET
			role = excluded.role,
			personal_data = excluded.personal_data,
			step_pointer = excluded.step_pointer`,
		p.CaseID,
		p.ActorID,
		string(p.Role),
		string(p.PersonalData),
		p.StepPointer,
		p.JoinedAt.UnixNano(),
	)
	return err
}

func scanInvitation(scan func(dest ...any) error) (*api.Invitation, error) {
	var inv api.Invitation
	var status string
	var expiresAt, createdAt int64
	var acceptedAt sql.NullInt64

	if err := scan(
		&inv.ID, &inv.CaseID, &inv.RequesterID, &inv.Email, &inv.Token,
		&status, &expiresAt, &createdAt, &acceptedAt, &inv.AcceptedBy,
	); err != nil {
		return nil, err
	}
	inv.Status = api.InvitationStatus(status)
	inv.ExpiresAt = time.Unix(0, expiresAt).UTC()
	inv.CreatedAt = time.Unix(0, createdAt).UTC()
	if acceptedAt.Valid {
		ts := time.Unix(0, acceptedAt.Int64).UTC()
		inv.AcceptedAt = &ts
	}
	return &inv, nil
}

const invitationColumns = `id, case_id, requester_id, email, token, status, expires_at, created_at, accepted_at, accepted_by`

func (t *sqliteTx) GetInvitationByToken(token string) (*api.Invitation, error) {
	row := t.tx.QueryRow(
		`SELECT `+invitationColumns+` FROM invitations WHERE token = ?`, token)

	inv, err := scanInvitation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (t *sqliteTx) FindPendingInvitation(caseID, email string) (*api.Invitation, error) {
	row := t.tx.QueryRow(
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE case_id = ? AND email = ? AND status = ?`,
		caseID, email, string(api.InvitationPending))

	inv, err := scanInvitation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (t *sqliteTx) PutInvitation(inv *api.Invitation) error {
	var acceptedAt sql.NullInt64
	if inv.AcceptedAt != nil {
		acceptedAt = sql.NullInt64{Int64: inv.AcceptedAt.UnixNano(), Valid: true}
	}
	_, err := t.tx.Exec(`
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			accepted_at = excluded.accepted_at,
			accepted_by = excluded.accepted_by`,
		inv.ID,
		inv.CaseID,
		inv.RequesterID,
		inv.Email,
		inv.Token,
		string(inv.Status),
		inv.ExpiresAt.UnixNano(),
		inv.CreatedAt.UnixNano(),
		acceptedAt,
		inv.AcceptedBy,
	)
	return err
}
