package models

import "time"

// Subscriber links a Discord user to a tracked Riot ID and the channel
// that receives match notifications. The (OwnerID, RiotIDNorm) pair is
// unique across the store.
type Subscriber struct {
	OwnerID     string
	OwnerName   string
	RiotID      string // display form, e.g. "PlayerName#VN2"
	RiotIDNorm  string // lowercase form used as part of the key
	Region      string
	ChannelID   string
	LastMatchID string
	AddedAt     time.Time
	LastChecked time.Time

	// Per-subscriber settings
	AutoNotify      bool
	MentionOnNotify bool
	IncludeAnalysis bool

	// Counters
	TotalNotified int64
	LastNotified  time.Time
}
