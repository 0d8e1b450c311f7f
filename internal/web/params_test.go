package web

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/models"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query                 string
		wantLimit, wantOffset int
	}{
		{"", 50, 0},
		{"limit=abc&offset=xyz", 50, 0},
		{"limit=-1&offset=-5", 50, 0},
		{"limit=0&offset=0", 50, 0},
		{"limit=25&offset=75", 25, 75},
		{"limit=9999&offset=1", 500, 1},
		{"limit=1.5&offset=2", 50, 2},
		{"limit=%2010%20", 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			limit, offset := ParsePage(q)
			require.Equal(t, tt.wantLimit, limit)
			require.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestParseDays(t *testing.T) {
	require.Equal(t, 7, ParseDays(""))
	require.Equal(t, 7, ParseDays("7"))
	require.Equal(t, 14, ParseDays("14"))
	require.Equal(t, 30, ParseDays("30"))
	require.Equal(t, 7, ParseDays("90"))
	require.Equal(t, 7, ParseDays("-14"))
	require.Equal(t, 7, ParseDays("two weeks"))
}

func TestTruncateJSON(t *testing.T) {
	short := models.JSON(`{"a": 1}`)
	require.Equal(t, `{"a":1}`, TruncateJSON(short))

	exact := models.JSON(`"` + strings.Repeat("y", 198) + `"`)
	require.Equal(t, string(exact), TruncateJSON(exact))

	long := models.JSON(`"` + strings.Repeat("é", 250) + `"`)
	got := TruncateJSON(long)
	require.Equal(t, 201, utf8.RuneCountInString(got))
	require.True(t, strings.HasSuffix(got, "…"))
	require.Equal(t, 1, strings.Count(got, "…"))
	require.Equal(t, string([]rune(string(long))[:200]), strings.TrimSuffix(got, "…"))

	require.Equal(t, "null", TruncateJSON(nil))
}

func TestTheme(t *testing.T) {
	th := NewTheme(config.ThemeConfig{Mode: "Dark", AccentPalette: "rose"})
	require.Equal(t, ModeDark, th.Mode)
	require.Equal(t, "#e11d48", th.Primary())
	require.Equal(t, "dark", th.ColorScheme())

	fallback := NewTheme(config.ThemeConfig{Mode: "sepia", AccentPalette: "plaid"})
	require.Equal(t, ModeSystem, fallback.Mode)
	require.Equal(t, "indigo", fallback.Accent)
	require.Equal(t, "light dark", fallback.ColorScheme())
}
