package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quanghng/discord-tft-notify/internal/riotid"
)

// Source produces a profile for a tracked account, or fails with
// ErrNotFound / ErrUnavailable.
type Source interface {
	Name() string
	Profile(ctx context.Context, id riotid.RiotID, region string) (*Profile, error)
}

// Fetcher queries sources in order, falling through on any failure, and
// caches successful results for a fixed time-to-live.
type Fetcher struct {
	sources []Source
	cache   *cache
}

// NewFetcher builds a fetcher over the given sources, tried in order.
func NewFetcher(cacheTTL time.Duration, sources ...Source) *Fetcher {
	return &Fetcher{
		sources: sources,
		cache:   newCache(cacheTTL),
	}
}

// Profile returns the current profile for an account. The cache is
// consulted before any network call.
func (f *Fetcher) Profile(ctx context.Context, id riotid.RiotID, region string) (*Profile, error) {
	key := cacheKey(id, region)
	if p, ok := f.cache.get(key); ok {
		return p, nil
	}

	allNotFound := true
	for _, source := range f.sources {
		p, err := source.Profile(ctx, id, region)
		if err == nil {
			p.Source = source.Name()
			f.cache.put(key, p)
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			allNotFound = false
		}
		log.Debug().
			Str("source", source.Name()).
			Str("riot_id", id.String()).
			Err(err).
			Msg("source failed, falling through")
	}

	if allNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil, ErrUnavailable
}

// Rank returns the current-rank summary for an account.
func (f *Fetcher) Rank(ctx context.Context, id riotid.RiotID, region string) (*Rank, error) {
	p, err := f.Profile(ctx, id, region)
	if err != nil {
		return nil, err
	}
	rank := p.Rank
	return &rank, nil
}

// LatestMatch returns the most recent match, or (nil, nil) when the
// sources had no match history for the account.
func (f *Fetcher) LatestMatch(ctx context.Context, id riotid.RiotID, region string) (*Match, error) {
	p, err := f.Profile(ctx, id, region)
	if err != nil {
		return nil, err
	}
	return p.LatestMatch(), nil
}

func cacheKey(id riotid.RiotID, region string) string {
	return id.Normalized() + "|" + region
}
