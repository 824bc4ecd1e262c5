package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quanghng/discord-tft-notify/internal/riotid"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// TrackerGG reads TFT profiles from the tracker.gg JSON API.
type TrackerGG struct {
	http *resty.Client
}

func NewTrackerGG() *TrackerGG {
	client := resty.New().
		SetBaseURL("https://api.tracker.gg").
		SetTimeout(10 * time.Second).
		SetHeaders(map[string]string{
			"User-Agent": browserUserAgent,
			"Accept":     "application/json, text/plain, */*",
			"Origin":     "https://tracker.gg",
			"Referer":    "https://tracker.gg/",
		})
	return &TrackerGG{http: client}
}

// NewTrackerGGWithBaseURL is used by tests to point the source at a
// fake server.
func NewTrackerGGWithBaseURL(baseURL string) *TrackerGG {
	t := NewTrackerGG()
	t.http.SetBaseURL(baseURL)
	return t
}

func (t *TrackerGG) Name() string { return "tracker.gg" }

func (t *TrackerGG) Profile(ctx context.Context, id riotid.RiotID, region string) (*Profile, error) {
	res, err := t.http.R().
		SetContext(ctx).
		Get("/api/v2/tft/standard/profile/riot/" + id.PathEscaped())
	if err != nil {
		return nil, fmt.Errorf("%w: tracker.gg: %v", ErrUnavailable, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w on tracker.gg: %s", ErrNotFound, id)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: tracker.gg answered %d", ErrUnavailable, res.StatusCode())
	}

	var body trackerResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: tracker.gg sent malformed json: %v", ErrUnavailable, err)
	}
	return body.toProfile(), nil
}

// trackerStat values arrive as numbers or display strings depending on
// the stat, so the raw value is kept loose and converted on demand.
type trackerStat struct {
	Value        any    `json:"value"`
	DisplayValue string `json:"displayValue"`
}

func (s trackerStat) number() float64 {
	switch v := s.Value.(type) {
	case float64:
		return v
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

type trackerSegment struct {
	Type     string `json:"type"`
	Metadata struct {
		MatchID   string `json:"matchId"`
		Timestamp string `json:"timestamp"`
	} `json:"metadata"`
	Stats map[string]trackerStat `json:"stats"`
}

type trackerResponse struct {
	Data struct {
		Segments []trackerSegment `json:"segments"`
	} `json:"data"`
}

func (r trackerResponse) toProfile() *Profile {
	p := &Profile{Rank: Rank{Tier: "Unranked"}}

	for _, seg := range r.Data.Segments {
		switch seg.Type {
		case "overview":
			p.Rank = overviewRank(seg)
		case "match":
			p.Matches = append(p.Matches, matchSummary(seg))
		}
	}

	sort.SliceStable(p.Matches, func(i, j int) bool {
		return p.Matches[i].Time.After(p.Matches[j].Time)
	})
	return p
}

func overviewRank(seg trackerSegment) Rank {
	rank := Rank{Tier: "Unranked"}

	// Prefer the tier stat, it carries the division ("Gold II")
	if tier := seg.Stats["tier"].DisplayValue; tier != "" {
		rank.Tier = tier
	} else if display := seg.Stats["rank"].DisplayValue; display != "" {
		rank.Tier = display
	}

	rank.LP = int(seg.Stats["rating"].number())
	rank.Wins = int(seg.Stats["wins"].number())
	rank.Losses = int(seg.Stats["losses"].number())
	rank.Level = int(seg.Stats["level"].number())
	if total := rank.Wins + rank.Losses; total > 0 {
		rank.WinRate = float64(rank.Wins) / float64(total) * 100
	}
	return rank
}

func matchSummary(seg trackerSegment) Match {
	matchTime := time.Now()
	if seg.Metadata.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, seg.Metadata.Timestamp); err == nil {
			matchTime = parsed
		}
	}

	placement := int(seg.Stats["placement"].number())
	if placement < 1 || placement > 8 {
		placement = 8
	}

	m := Match{
		ID:        seg.Metadata.MatchID,
		Placement: placement,
		Level:     int(seg.Stats["level"].number()),
		Duration:  time.Duration(seg.Stats["gameLength"].number()) * time.Second,
		Time:      matchTime,
	}
	if m.ID == "" {
		m.ID = fmt.Sprintf("tracker_%d", matchTime.Unix())
	}

	for key, stat := range seg.Stats {
		value := int(stat.number())
		if value <= 0 {
			continue
		}
		switch {
		case strings.HasPrefix(key, "trait_"):
			tier := value
			if tier > 3 {
				tier = 3
			}
			m.Traits = append(m.Traits, Trait{Name: statName(key, "trait_"), Tier: tier})
		case strings.HasPrefix(key, "unit_"):
			m.Units = append(m.Units, Unit{Name: statName(key, "unit_"), Tier: 1})
		}
	}
	sort.Slice(m.Traits, func(i, j int) bool { return m.Traits[i].Name < m.Traits[j].Name })
	sort.Slice(m.Units, func(i, j int) bool { return m.Units[i].Name < m.Units[j].Name })
	return m
}

func statName(key, prefix string) string {
	name := strings.TrimPrefix(key, prefix)
	name = strings.ReplaceAll(name, "_", " ")
	return titleCase(name)
}
