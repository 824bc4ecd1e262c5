package stats

import (
	"errors"
	"time"
)

var (
	// ErrNotFound means every source answered that the account does
	// not exist.
	ErrNotFound = errors.New("account not found")
	// ErrUnavailable means no source could produce data right now.
	// Callers treat it as a normal, retryable outcome.
	ErrUnavailable = errors.New("stats sources unavailable")
)

// Rank is a current-rank summary for a tracked account.
type Rank struct {
	Tier    string // e.g. "Gold II", "Unranked"
	LP      int
	Wins    int
	Losses  int
	WinRate float64 // percentage, derived
	Level   int
}

// Trait is an active trait in a match composition.
type Trait struct {
	Name string
	Tier int
}

// Unit is a fielded unit in a match composition.
type Unit struct {
	Name string
	Tier int
}

// Match is one recent match summary. ID is unique enough to use for
// deduplication against a stored last-seen id.
type Match struct {
	ID        string
	Placement int // 1-8
	Level     int
	Traits    []Trait
	Units     []Unit
	Duration  time.Duration
	Time      time.Time
}

// Profile is everything a source knows about a tracked account, tagged
// with the source that produced it.
type Profile struct {
	Rank    Rank
	Matches []Match // newest first; may be empty for rank-only sources
	Source  string
}

// LatestMatch returns the newest match, or nil when the source had no
// match history.
func (p *Profile) LatestMatch() *Match {
	if len(p.Matches) == 0 {
		return nil
	}
	return &p.Matches[0]
}
