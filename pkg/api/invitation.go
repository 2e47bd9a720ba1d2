package api

import (
	"strings"
	"time"
)

// InvitationTTL is the fixed validity window of an invitation.
const InvitationTTL = 7 * 24 * time.Hour

// InvitationStatus is the lifecycle state of an invitation. Forward-only,
// except that Pending flips to Expired lazily on any read past the
// expiry timestamp.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDIENTE"
	InvitationAccepted InvitationStatus = "ACEPTADA"
	InvitationRejected InvitationStatus = "RECHAZADA"
	InvitationExpired  InvitationStatus = "EXPIRADA"
)

// Invitation is a time-boxed, single-use token binding an email address
// to a case, letting an unauthenticated second party contribute spouse
// data. The token is the sole credential for that contribution; once the
// invitation leaves Pending it never again authorizes a write.
type Invitation struct {
	ID          string
	CaseID      string
	RequesterID string
	Email       string

	// Token is a high-entropy secret (32 random bytes, hex-encoded).
	Token string

	Status    InvitationStatus
	ExpiresAt time.Time
	CreatedAt time.Time

	// AcceptedAt and AcceptedBy are set once, on Pending -> Accepted.
	AcceptedAt *time.Time
	AcceptedBy string
}

// ExpiredAt reports whether the invitation is past its validity window
// at the given instant.
func (i *Invitation) ExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// CanonicalEmail normalizes an email address to the single canonical
// form invitations are matched against.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
