package riotid

import (
	"fmt"
	"net/url"
	"strings"
)

// RiotID is a game identity in "Name#Tag" form.
type RiotID struct {
	Name string
	Tag  string
}

// DefaultRegion is used when a region tag is not recognized.
const DefaultRegion = "vn"

var knownRegions = map[string]struct{}{
	"vn": {}, "na": {}, "euw": {}, "eune": {}, "kr": {}, "jp": {},
	"br": {}, "oce": {}, "las": {}, "lan": {}, "tr": {}, "ru": {},
}

// Parse splits a raw "Name#Tag" string. It fails when the separator is
// missing or either side is empty, so callers can reject bad input
// before touching the network.
func Parse(raw string) (RiotID, error) {
	name, tag, found := strings.Cut(raw, "#")
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if !found || name == "" || tag == "" {
		return RiotID{}, fmt.Errorf("invalid riot id %q: expected Name#Tag", raw)
	}
	return RiotID{Name: name, Tag: tag}, nil
}

func (id RiotID) String() string {
	return id.Name + "#" + id.Tag
}

// Normalized returns the lowercase form used for store keys and
// case-insensitive comparison.
func (id RiotID) Normalized() string {
	return strings.ToLower(id.String())
}

// Equal compares two riot ids case-insensitively.
func (id RiotID) Equal(other RiotID) bool {
	return id.Normalized() == other.Normalized()
}

// PathEscaped renders the id the way the tracker sites expect it in a
// URL path: escaped name, "%23" separator, raw tag.
func (id RiotID) PathEscaped() string {
	return url.PathEscape(id.Name) + "%23" + id.Tag
}

// NormalizeRegion maps a user-supplied region tag onto the recognized
// set, falling back to DefaultRegion instead of rejecting.
func NormalizeRegion(region string) string {
	region = strings.ToLower(strings.TrimSpace(region))
	if _, ok := knownRegions[region]; ok {
		return region
	}
	return DefaultRegion
}
