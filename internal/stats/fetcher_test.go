package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quanghng/discord-tft-notify/internal/riotid"
)

const trackerBody = `{
  "data": {
    "segments": [
      {
        "type": "overview",
        "stats": {
          "tier": {"value": null, "displayValue": "Gold II"},
          "rating": {"value": 45, "displayValue": "45"},
          "wins": {"value": 30, "displayValue": "30"},
          "losses": {"value": 10, "displayValue": "10"},
          "level": {"value": 120, "displayValue": "120"}
        }
      },
      {
        "type": "match",
        "metadata": {"matchId": "m200", "timestamp": "2026-08-28T10:00:00Z"},
        "stats": {
          "placement": {"value": 2, "displayValue": "2"},
          "level": {"value": 8, "displayValue": "8"},
          "gameLength": {"value": 1900, "displayValue": "31:40"},
          "trait_duelist": {"value": 2, "displayValue": "2"},
          "trait_bruiser": {"value": 7, "displayValue": "7"},
          "unit_jinx": {"value": 1, "displayValue": "1"}
        }
      },
      {
        "type": "match",
        "metadata": {"matchId": "m100", "timestamp": "2026-08-27T10:00:00Z"},
        "stats": {
          "placement": {"value": 99, "displayValue": "99"}
        }
      }
    ]
  }
}`

const opggBody = `{
  "tft_info": {"rank_info": {"tier": "PLATINUM", "division": "IV", "lp": 12}},
  "summary": {"win": 5, "lose": 15},
  "level": 80
}`

func testID(t *testing.T) riotid.RiotID {
	t.Helper()
	id, err := riotid.Parse("Faker#KR1")
	require.NoError(t, err)
	return id
}

func TestTrackerGGProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.EscapedPath(), "Faker%23KR1")
		w.Write([]byte(trackerBody))
	}))
	defer ts.Close()

	p, err := NewTrackerGGWithBaseURL(ts.URL).Profile(context.Background(), testID(t), "vn")
	require.NoError(t, err)

	require.Equal(t, "Gold II", p.Rank.Tier)
	require.Equal(t, 45, p.Rank.LP)
	require.Equal(t, 30, p.Rank.Wins)
	require.Equal(t, 10, p.Rank.Losses)
	require.InDelta(t, 75.0, p.Rank.WinRate, 0.01)

	require.Len(t, p.Matches, 2)
	latest := p.LatestMatch()
	require.NotNil(t, latest)
	require.Equal(t, "m200", latest.ID)
	require.Equal(t, 2, latest.Placement)
	require.Equal(t, 8, latest.Level)
	require.Equal(t, 1900*time.Second, latest.Duration)
	require.Equal(t, []Trait{{Name: "Bruiser", Tier: 3}, {Name: "Duelist", Tier: 2}}, latest.Traits)
	require.Equal(t, []Unit{{Name: "Jinx", Tier: 1}}, latest.Units)

	// Out-of-range placements are clamped to last place.
	require.Equal(t, 8, p.Matches[1].Placement)
}

func TestTrackerGGNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := NewTrackerGGWithBaseURL(ts.URL).Profile(context.Background(), testID(t), "vn")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTrackerGGMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>blocked</html>"))
	}))
	defer ts.Close()

	_, err := NewTrackerGGWithBaseURL(ts.URL).Profile(context.Background(), testID(t), "vn")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTrackerGGEmptySegments(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"segments": []}}`))
	}))
	defer ts.Close()

	p, err := NewTrackerGGWithBaseURL(ts.URL).Profile(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	require.Equal(t, "Unranked", p.Rank.Tier)
	require.Nil(t, p.LatestMatch())
}

func TestOpGGSummary(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/vn/")
		w.Write([]byte(opggBody))
	}))
	defer ts.Close()

	p, err := NewOpGGWithBaseURL(ts.URL).Profile(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	require.Equal(t, "Platinum IV", p.Rank.Tier)
	require.Equal(t, 12, p.Rank.LP)
	require.InDelta(t, 25.0, p.Rank.WinRate, 0.01)
	require.Empty(t, p.Matches)
}

func TestOpGGScrapeFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/summoners/vn/Faker-KR1" {
			w.Write([]byte(`<html><body><div class="tier-rank">diamond iii</div></body></html>`))
			return
		}
		// JSON endpoint answers with something unparseable
		w.Write([]byte("<html>challenge page</html>"))
	}))
	defer ts.Close()

	p, err := NewOpGGWithBaseURL(ts.URL).Profile(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	require.Equal(t, "Diamond III", p.Rank.Tier)
}

func TestFetcherFallsThrough(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(opggBody))
	}))
	defer secondary.Close()

	f := NewFetcher(time.Minute, NewTrackerGGWithBaseURL(primary.URL), NewOpGGWithBaseURL(secondary.URL))

	p, err := f.Profile(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	require.Equal(t, "op.gg", p.Source)
	require.Equal(t, "Platinum IV", p.Rank.Tier)
}

func TestFetcherNotFoundOnlyWhenAllSourcesAgree(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	f := NewFetcher(time.Minute, NewTrackerGGWithBaseURL(notFound.URL), NewOpGGWithBaseURL(notFound.URL))
	_, err := f.Profile(context.Background(), testID(t), "vn")
	require.ErrorIs(t, err, ErrNotFound)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	mixed := NewFetcher(time.Minute, NewTrackerGGWithBaseURL(notFound.URL), NewOpGGWithBaseURL(down.URL))
	_, err = mixed.Profile(context.Background(), testID(t), "vn")
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestFetcherCachesWithinTTL(t *testing.T) {
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(trackerBody))
	}))
	defer ts.Close()

	f := NewFetcher(time.Minute, NewTrackerGGWithBaseURL(ts.URL))

	now := time.Now()
	f.cache.now = func() time.Time { return now }

	_, err := f.Profile(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	_, err = f.Profile(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	require.EqualValues(t, 1, hits.Load())

	// Expired entries are refetched.
	now = now.Add(2 * time.Minute)
	_, err = f.Profile(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())
}

func TestFetcherRankAndLatestMatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(trackerBody))
	}))
	defer ts.Close()

	f := NewFetcher(time.Minute, NewTrackerGGWithBaseURL(ts.URL))

	rank, err := f.Rank(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	require.Equal(t, "Gold II", rank.Tier)

	match, err := f.LatestMatch(context.Background(), testID(t), "vn")
	require.NoError(t, err)
	require.NotNil(t, match)
	require.Equal(t, "m200", match.ID)
}

func TestTitleCase(t *testing.T) {
	require.Equal(t, "Platinum IV", titleCase("PLATINUM IV"))
	require.Equal(t, "Grandmaster", titleCase("grandmaster"))
	require.Equal(t, "Gold II", titleCase("gold ii"))
}
