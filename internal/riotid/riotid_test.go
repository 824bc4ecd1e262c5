package riotid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	id, err := Parse("Faker#KR1")
	require.NoError(t, err)
	require.Equal(t, "Faker", id.Name)
	require.Equal(t, "KR1", id.Tag)
	require.Equal(t, "Faker#KR1", id.String())
}

func TestParseTrimsSpaces(t *testing.T) {
	id, err := Parse("  Hide on bush # KR1 ")
	require.NoError(t, err)
	require.Equal(t, "Hide on bush", id.Name)
	require.Equal(t, "KR1", id.Tag)
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "NoSeparator", "#Tag", "Name#", "  #  "} {
		_, err := Parse(raw)
		require.Error(t, err, "raw=%q", raw)
	}
}

func TestNormalizedAndEqual(t *testing.T) {
	a, err := Parse("Faker#KR1")
	require.NoError(t, err)
	b, err := Parse("faker#kr1")
	require.NoError(t, err)

	require.Equal(t, "faker#kr1", a.Normalized())
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(RiotID{Name: "Faker", Tag: "KR2"}))
}

func TestPathEscaped(t *testing.T) {
	id := RiotID{Name: "Hide on bush", Tag: "KR1"}
	require.Equal(t, "Hide%20on%20bush%23KR1", id.PathEscaped())
}

func TestNormalizeRegion(t *testing.T) {
	require.Equal(t, "na", NormalizeRegion("NA"))
	require.Equal(t, "euw", NormalizeRegion(" euw "))
	require.Equal(t, DefaultRegion, NormalizeRegion(""))
	require.Equal(t, DefaultRegion, NormalizeRegion("moon"))
}
