package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/quanghng/discord-tft-notify/internal/riotid"
)

// OpGG reads TFT rank summaries from op.gg. It tries the internal JSON
// endpoint first and falls back to scraping the profile page. It is a
// rank-only source: profiles it produces carry no match history.
type OpGG struct {
	http *resty.Client
}

func NewOpGG() *OpGG {
	client := resty.New().
		SetBaseURL("https://op.gg").
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", browserUserAgent).
		SetHeader("Accept-Language", "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7")
	return &OpGG{http: client}
}

// NewOpGGWithBaseURL is used by tests to point the source at a fake
// server.
func NewOpGGWithBaseURL(baseURL string) *OpGG {
	o := NewOpGG()
	o.http.SetBaseURL(baseURL)
	return o
}

func (o *OpGG) Name() string { return "op.gg" }

func (o *OpGG) Profile(ctx context.Context, id riotid.RiotID, region string) (*Profile, error) {
	slug := url.PathEscape(id.Name) + "-" + url.PathEscape(id.Tag)

	res, err := o.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(fmt.Sprintf("/api/v1.0/internal/bypass/summoners/%s/%s/tft/summary", region, slug))
	if err != nil {
		return nil, fmt.Errorf("%w: op.gg: %v", ErrUnavailable, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w on op.gg: %s", ErrNotFound, id)
	}

	if res.IsSuccess() {
		var body opggSummary
		if err := json.Unmarshal(res.Body(), &body); err == nil {
			return body.toProfile(), nil
		}
	}

	// The JSON endpoint is unstable; the profile page is the backstop.
	return o.scrapeProfile(ctx, region, slug)
}

type opggSummary struct {
	TFTInfo struct {
		RankInfo struct {
			Tier     string `json:"tier"`
			Division string `json:"division"`
			LP       int    `json:"lp"`
		} `json:"rank_info"`
	} `json:"tft_info"`
	Summary struct {
		Win  int `json:"win"`
		Lose int `json:"lose"`
	} `json:"summary"`
	Level int `json:"level"`
}

func (s opggSummary) toProfile() *Profile {
	rank := Rank{
		Tier:   "Unranked",
		LP:     s.TFTInfo.RankInfo.LP,
		Wins:   s.Summary.Win,
		Losses: s.Summary.Lose,
		Level:  s.Level,
	}
	tier := s.TFTInfo.RankInfo.Tier
	if tier != "" && !strings.EqualFold(tier, "UNRANKED") {
		rank.Tier = strings.TrimSpace(titleCase(tier) + " " + s.TFTInfo.RankInfo.Division)
	}
	if total := rank.Wins + rank.Losses; total > 0 {
		rank.WinRate = float64(rank.Wins) / float64(total) * 100
	}
	return &Profile{Rank: rank}
}

func (o *OpGG) scrapeProfile(ctx context.Context, region, slug string) (*Profile, error) {
	res, err := o.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		Get(fmt.Sprintf("/summoners/%s/%s", region, slug))
	if err != nil {
		return nil, fmt.Errorf("%w: op.gg: %v", ErrUnavailable, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w on op.gg", ErrNotFound)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: op.gg answered %d", ErrUnavailable, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: op.gg sent malformed html: %v", ErrUnavailable, err)
	}

	// Page structure is an unstable contract; a missing selector means
	// "Unranked", not an error.
	rank := Rank{Tier: "Unranked"}
	for _, selector := range []string{"div.tier-rank", "span.tier-rank", "div.rank-tier"} {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" && len(text) < 20 {
			rank.Tier = titleCase(text)
			break
		}
	}
	return &Profile{Rank: rank}, nil
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		// Keep roman numeral divisions upper case
		if isRomanNumeral(w) {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isRomanNumeral(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case 'i', 'v', 'x', 'I', 'V', 'X':
		default:
			return false
		}
	}
	return true
}
