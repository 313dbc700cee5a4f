package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/astroview/voprod/internal/products"
)

// Session is one client's resolution state: the menu selections and
// component values that have to survive across requests.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`

	// Ctx carries the live selection state. It is never nil.
	Ctx *products.Context `json:"-"`
}

// Record is the serializable form of a Session, used for persistence.
type Record struct {
	ID        string                   `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	LastSeen  time.Time                `json:"last_seen"`
	State     products.ContextSnapshot `json:"state"`
}

// ToRecord snapshots the session for persistence.
func (s *Session) ToRecord() Record {
	return Record{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.LastSeen,
		State:     s.Ctx.Snapshot(),
	}
}

// FromRecord rebuilds a live session from its persisted form.
func FromRecord(r Record) *Session {
	ctx := products.NewContext()
	ctx.Restore(r.State)
	return &Session{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		LastSeen:  r.LastSeen,
		Ctx:       ctx,
	}
}

// NewID returns a random 128-bit hex session id.
func NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// rand.Read only fails when the OS entropy source is broken;
		// fall back to a time-derived id rather than crash.
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))[:32]
	}
	return hex.EncodeToString(b[:])
}
