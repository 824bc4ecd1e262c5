package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quanghng/discord-tft-notify/internal/models"
)

var (
	// ErrAlreadyTracked is returned when the (owner, riot id) pair
	// already exists in the store.
	ErrAlreadyTracked = errors.New("already tracked")
	// ErrNotTracked is returned when a lookup or delete names a pair
	// that is not in the store.
	ErrNotTracked = errors.New("not tracked")
)

// Repository handles store operations for subscribers.
type Repository struct {
	db *sql.DB
}

func NewRepository() *Repository {
	return &Repository{db: DB}
}

// NewRepositoryWithDB is used by tests that open their own database.
func NewRepositoryWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const subscriberColumns = `owner_id, owner_name, riot_id, riot_id_norm, region, channel_id,
    last_match_id, added_at, last_checked, auto_notify, mention_on_notify, include_analysis,
    total_notified, last_notified`

func scanSubscriber(row interface{ Scan(...any) error }) (*models.Subscriber, error) {
	var s models.Subscriber
	var addedAt, lastChecked, lastNotified int64
	err := row.Scan(
		&s.OwnerID, &s.OwnerName, &s.RiotID, &s.RiotIDNorm, &s.Region, &s.ChannelID,
		&s.LastMatchID, &addedAt, &lastChecked, &s.AutoNotify, &s.MentionOnNotify,
		&s.IncludeAnalysis, &s.TotalNotified, &lastNotified,
	)
	if err != nil {
		return nil, err
	}
	s.AddedAt = time.Unix(addedAt, 0)
	if lastChecked > 0 {
		s.LastChecked = time.Unix(lastChecked, 0)
	}
	if lastNotified > 0 {
		s.LastNotified = time.Unix(lastNotified, 0)
	}
	return &s, nil
}

// Add inserts a new subscriber. Adding a pair that already exists fails
// with ErrAlreadyTracked and leaves the store untouched.
func (r *Repository) Add(s *models.Subscriber) error {
	return WithRetry(func() error {
		res, err := r.db.Exec(`
            INSERT INTO subscribers
            (owner_id, owner_name, riot_id, riot_id_norm, region, channel_id,
             last_match_id, added_at, last_checked, auto_notify, mention_on_notify,
             include_analysis, total_notified, last_notified)
            VALUES (?, ?, ?, ?, ?, ?, '', ?, 0, ?, ?, ?, 0, 0)
            ON CONFLICT (owner_id, riot_id_norm) DO NOTHING
        `, s.OwnerID, s.OwnerName, s.RiotID, s.RiotIDNorm, s.Region, s.ChannelID,
			s.AddedAt.Unix(), s.AutoNotify, s.MentionOnNotify, s.IncludeAnalysis)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyTracked
		}
		return nil
	})
}

// Get returns a subscriber, or (nil, nil) when the pair is unknown.
func (r *Repository) Get(ownerID, riotIDNorm string) (*models.Subscriber, error) {
	row := r.db.QueryRow(`SELECT `+subscriberColumns+` FROM subscribers
        WHERE owner_id = ? AND riot_id_norm = ?`, ownerID, riotIDNorm)

	s, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByOwner returns all subscribers belonging to one Discord user.
func (r *Repository) ListByOwner(ownerID string) ([]models.Subscriber, error) {
	rows, err := r.db.Query(`SELECT `+subscriberColumns+` FROM subscribers
        WHERE owner_id = ? ORDER BY added_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListAll returns every subscriber in the store.
func (r *Repository) ListAll() ([]models.Subscriber, error) {
	rows, err := r.db.Query(`SELECT ` + subscriberColumns + ` FROM subscribers ORDER BY added_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]models.Subscriber, error) {
	var subs []models.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// Remove deletes a subscriber. Removing an unknown pair fails with
// ErrNotTracked without writing anything.
func (r *Repository) Remove(ownerID, riotIDNorm string) error {
	return WithRetry(func() error {
		res, err := r.db.Exec(`DELETE FROM subscribers
            WHERE owner_id = ? AND riot_id_norm = ?`, ownerID, riotIDNorm)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotTracked
		}
		return nil
	})
}

// MarkNotified advances the last-seen match id and bumps the
// notification counters in a single statement, so the record never
// holds a half-applied update.
func (r *Repository) MarkNotified(ownerID, riotIDNorm, matchID string, matchTime time.Time) error {
	return WithRetry(func() error {
		res, err := r.db.Exec(`UPDATE subscribers
            SET last_match_id = ?, last_checked = ?, total_notified = total_notified + 1,
                last_notified = ?
            WHERE owner_id = ? AND riot_id_norm = ?`,
			matchID, time.Now().Unix(), matchTime.Unix(), ownerID, riotIDNorm)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotTracked
		}
		return nil
	})
}

// TouchChecked records that a poll cycle looked at the subscriber.
func (r *Repository) TouchChecked(ownerID, riotIDNorm string) error {
	return WithRetry(func() error {
		_, err := r.db.Exec(`UPDATE subscribers SET last_checked = ?
            WHERE owner_id = ? AND riot_id_norm = ?`,
			time.Now().Unix(), ownerID, riotIDNorm)
		return err
	})
}

var settingColumns = map[string]string{
	"auto":     "auto_notify",
	"mention":  "mention_on_notify",
	"analysis": "include_analysis",
}

// SettingKeys lists the user-facing setting names.
func SettingKeys() []string {
	return []string{"auto", "mention", "analysis"}
}

// UpdateSetting flips one of the per-subscriber boolean flags. Counters
// are left alone on settings changes.
func (r *Repository) UpdateSetting(ownerID, riotIDNorm, key string, value bool) error {
	column, ok := settingColumns[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (expected one of %s)", key, strings.Join(SettingKeys(), ", "))
	}
	return WithRetry(func() error {
		res, err := r.db.Exec(`UPDATE subscribers SET `+column+` = ?
            WHERE owner_id = ? AND riot_id_norm = ?`, value, ownerID, riotIDNorm)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotTracked
		}
		return nil
	})
}

// Count returns the number of subscribers in the store.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM subscribers`).Scan(&count)
	return count, err
}

// WithRetry retries an operation a few times when sqlite reports the
// database as locked.
func WithRetry(operation func() error) error {
	const maxRetries = 5
	var err error
	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		time.Sleep(time.Duration(100*(i+1)) * time.Millisecond)
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries, err)
}
