package verify

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quanghng/discord-tft-notify/internal/riotid"
	"github.com/quanghng/discord-tft-notify/internal/stats"
)

var (
	// ErrNoSession means the owner has no pending verification.
	ErrNoSession = errors.New("no pending verification")
	// ErrExpired means the confirmation deadline elapsed. The session
	// is discarded.
	ErrExpired = errors.New("verification expired")
	// ErrMismatch means the confirm named a different riot id than the
	// pending one. The session is kept.
	ErrMismatch = errors.New("riot id does not match pending verification")
)

// Session is a pending tracking request awaiting confirmation. It is
// ephemeral and never persisted.
type Session struct {
	ID      uuid.UUID
	OwnerID string
	RiotID  riotid.RiotID
	Region  string
	Profile *stats.Profile
	Expires time.Time
}

// Manager holds at most one open session per owner. A second tracking
// request from the same owner overwrites the first.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Begin opens a session for an owner whose account lookup already
// succeeded, replacing any previous pending session.
func (m *Manager) Begin(ownerID string, id riotid.RiotID, region string, profile *stats.Profile) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := Session{
		ID:      uuid.New(),
		OwnerID: ownerID,
		RiotID:  id,
		Region:  region,
		Profile: profile,
		Expires: m.now().Add(m.ttl),
	}
	m.sessions[ownerID] = session
	return session
}

// Confirm completes a pending session. The named riot id must match the
// pending one case-insensitively; a mismatch is rejected without
// changing state. Confirming after the deadline fails and discards the
// session.
func (m *Manager) Confirm(ownerID string, id riotid.RiotID) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[ownerID]
	if !ok {
		return Session{}, ErrNoSession
	}
	if m.now().After(session.Expires) {
		delete(m.sessions, ownerID)
		return Session{}, ErrExpired
	}
	if !session.RiotID.Equal(id) {
		return Session{}, ErrMismatch
	}

	delete(m.sessions, ownerID)
	return session, nil
}

// Cancel discards the owner's pending session, reporting whether one
// existed.
func (m *Manager) Cancel(ownerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[ownerID]; !ok {
		return false
	}
	delete(m.sessions, ownerID)
	return true
}

// Pending returns the owner's open session if one exists and has not
// expired. Expired sessions are dropped lazily here.
func (m *Manager) Pending(ownerID string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[ownerID]
	if !ok {
		return Session{}, false
	}
	if m.now().After(session.Expires) {
		delete(m.sessions, ownerID)
		return Session{}, false
	}
	return session, true
}

// Purge drops every expired session. Expiry is advisory; nothing relies
// on purge running for correctness.
func (m *Manager) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := m.now()
	for owner, session := range m.sessions {
		if now.After(session.Expires) {
			delete(m.sessions, owner)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("purged expired verification sessions")
	}
	return removed
}
