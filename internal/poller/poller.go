package poller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quanghng/discord-tft-notify/internal/models"
	"github.com/quanghng/discord-tft-notify/internal/riotid"
	"github.com/quanghng/discord-tft-notify/internal/stats"
)

// Store is the subset of the repository the poll cycle needs.
type Store interface {
	ListAll() ([]models.Subscriber, error)
	MarkNotified(ownerID, riotIDNorm, matchID string, matchTime time.Time) error
	TouchChecked(ownerID, riotIDNorm string) error
}

// MatchFetcher resolves the most recent match for a tracked account.
type MatchFetcher interface {
	LatestMatch(ctx context.Context, id riotid.RiotID, region string) (*stats.Match, error)
}

// Notifier delivers a new-match notification for a subscriber.
type Notifier interface {
	NotifyMatch(ctx context.Context, sub models.Subscriber, match stats.Match) error
}

// Poller runs the fetch → dedupe → notify cycle for all subscribers on
// a fixed period. Ticks never overlap; a tick that runs long simply
// delays the next one.
type Poller struct {
	store    Store
	fetcher  MatchFetcher
	notifier Notifier
	limiter  Limiter
	interval time.Duration

	// Housekeeping runs once per tick, e.g. purging expired
	// verification sessions.
	Housekeeping func()

	running atomic.Bool
	stop    chan struct{}
}

func New(store Store, fetcher MatchFetcher, notifier Notifier, limiter Limiter, interval time.Duration) *Poller {
	return &Poller{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		limiter:  limiter,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the polling loop once the ready channel closes.
// Starting an already-running poller is a no-op.
func (p *Poller) Start(ctx context.Context, ready <-chan struct{}) {
	if !p.running.CompareAndSwap(false, true) {
		log.Debug().Msg("poller already running, start ignored")
		return
	}

	go func() {
		select {
		case <-ready:
		case <-ctx.Done():
			p.running.Store(false)
			return
		case <-p.stop:
			p.running.Store(false)
			return
		}

		log.Info().Dur("interval", p.interval).Msg("poller started")
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("poller stopped: context cancelled")
				p.running.Store(false)
				return
			case <-p.stop:
				log.Info().Msg("poller stopped")
				p.running.Store(false)
				return
			case <-ticker.C:
				p.Tick(ctx)
			}
		}
	}()
}

// Stop signals the polling loop to exit.
func (p *Poller) Stop() {
	close(p.stop)
}

// Running reports whether the polling loop is active.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// Tick runs one cycle over all subscribers. Subscribers are processed
// sequentially with the limiter between them; a failure on one never
// aborts the batch.
func (p *Poller) Tick(ctx context.Context) {
	if p.Housekeeping != nil {
		p.Housekeeping()
	}

	subs, err := p.store.ListAll()
	if err != nil {
		log.Error().Err(err).Msg("could not list subscribers")
		return
	}
	if len(subs) == 0 {
		return
	}

	log.Debug().Int("subscribers", len(subs)).Msg("running poll cycle")

	for i, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		if !sub.AutoNotify {
			continue
		}
		if i > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				return
			}
		}
		if err := p.CheckSubscriber(ctx, sub); err != nil {
			log.Error().
				Str("riot_id", sub.RiotID).
				Str("owner", sub.OwnerID).
				Err(err).
				Msg("subscriber check failed")
		}
	}
}

// CheckSubscriber fetches the subscriber's most recent match and
// notifies when its id differs from the stored last-seen id. The store
// is updated before the notification is dispatched, so a crash in
// between loses at most one notification instead of duplicating it.
func (p *Poller) CheckSubscriber(ctx context.Context, sub models.Subscriber) error {
	if sub.ChannelID == "" {
		log.Warn().Str("riot_id", sub.RiotID).Msg("subscriber has no notification channel, skipping")
		return nil
	}

	id, err := riotid.Parse(sub.RiotID)
	if err != nil {
		return fmt.Errorf("stored riot id is malformed: %w", err)
	}

	match, err := p.fetcher.LatestMatch(ctx, id, sub.Region)
	if err != nil {
		if errors.Is(err, stats.ErrUnavailable) || errors.Is(err, stats.ErrNotFound) {
			// Soft failure, retried on the next tick
			log.Debug().Str("riot_id", sub.RiotID).Err(err).Msg("no data this cycle")
			return nil
		}
		return err
	}
	if match == nil || match.ID == sub.LastMatchID {
		return p.store.TouchChecked(sub.OwnerID, sub.RiotIDNorm)
	}

	if err := p.store.MarkNotified(sub.OwnerID, sub.RiotIDNorm, match.ID, match.Time); err != nil {
		return fmt.Errorf("could not record match %s: %w", match.ID, err)
	}

	if err := p.notifier.NotifyMatch(ctx, sub, *match); err != nil {
		log.Error().
			Str("riot_id", sub.RiotID).
			Str("channel", sub.ChannelID).
			Err(err).
			Msg("could not deliver notification")
		return nil
	}

	log.Info().
		Str("riot_id", sub.RiotID).
		Str("match", match.ID).
		Int("placement", match.Placement).
		Msg("notified new match")
	return nil
}
