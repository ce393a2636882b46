package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-emojiclock"
	"github.com/tartampluch/go-emojiclock/internal/config"
)

// TestSortEntries verifies entries are ordered around the dial, then by name.
func TestSortEntries(t *testing.T) {
	entries := []Entry{
		{Name: "late", Slot: emojiclock.Slot{Hour: 23, Half: true}},
		{Name: "b", Slot: emojiclock.Slot{Hour: 9, Half: true}},
		{Name: "a", Slot: emojiclock.Slot{Hour: 9, Half: true}},
		{Name: "nine", Slot: emojiclock.Slot{Hour: 9}},
		{Name: "midnight", Slot: emojiclock.Slot{Hour: 0}},
	}

	sortEntries(entries)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"midnight", "nine", "a", "b", "late"}, names)
}

func TestNewSourceConfig(t *testing.T) {
	web := NewSourceConfig("https://example.com/feed.ics?key=1", "", "u", "p")
	assert.Equal(t, config.SourceModeWeb, web.Mode)
	assert.Equal(t, "https://example.com/feed.ics?key=1", web.WebURL)
	assert.Equal(t, "u", web.WebUser)
	assert.Equal(t, "p", web.WebPass)

	local := NewSourceConfig("/tmp/people.vcf", "", "u", "p")
	assert.Equal(t, config.SourceModeLocal, local.Mode)
	assert.Equal(t, "/tmp/people.vcf", local.LocalPath)
	assert.Empty(t, local.WebPass, "credentials only apply to web sources")
}

func TestSourceConfig_ResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		cfg      SourceConfig
		expected string
		wantErr  bool
	}{
		{"ics file", SourceConfig{Mode: config.SourceModeLocal, LocalPath: "team.ics"}, config.FormatICS, false},
		{"ical upper case", SourceConfig{Mode: config.SourceModeLocal, LocalPath: "TEAM.ICAL"}, config.FormatICS, false},
		{"vcf file", SourceConfig{Mode: config.SourceModeLocal, LocalPath: "people.vcf"}, config.FormatVCF, false},
		{"vcard file", SourceConfig{Mode: config.SourceModeLocal, LocalPath: "people.vcard"}, config.FormatVCF, false},
		{"url ignores query", SourceConfig{Mode: config.SourceModeWeb, WebURL: "https://x/cal.ics?ext=.vcf"}, config.FormatICS, false},
		{"explicit format wins", SourceConfig{Mode: config.SourceModeWeb, WebURL: "https://x/feed", Format: config.FormatVCF}, config.FormatVCF, false},
		{"no extension", SourceConfig{Mode: config.SourceModeWeb, WebURL: "https://x/feed"}, "", true},
		{"bad explicit format", SourceConfig{Mode: config.SourceModeLocal, LocalPath: "a.ics", Format: "xml"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ResolveFormat()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStyle_Clock(t *testing.T) {
	plain := Style{Rounding: emojiclock.Floor}.Clock(emojiclock.At(9, 25))
	assert.Equal(t, "🕘", plain.String())

	m := emojiclock.Meridiem{AM: 'a', PM: 'p'}
	marked := Style{Rounding: emojiclock.Round, Meridiem: &m}.Clock(emojiclock.At(21, 25))
	assert.Equal(t, "🕤p", marked.String())
}

func TestStripFace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Standup", "Standup"},
		{"🕤 Standup", "Standup"},
		{"🕤🌞 Standup", "Standup"},
		{"🕧p Lunch", "Lunch"},
		{"🕛", ""},
		{"🕛🌝", ""},
		{"🕐Lunch", "🕐Lunch"},
		{"🌞 Standup", "🌞 Standup"},
		{"🕤 🕤 Standup", "🕤 Standup"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFace(tt.in))
		})
	}
}

func TestStableUID(t *testing.T) {
	a := stableUID("Standup", "20250310T092500Z")
	assert.Len(t, a, 2*config.UIDHashLength)
	assert.Equal(t, a, stableUID("Standup", "20250310T092500Z"))
	assert.NotEqual(t, a, stableUID("Standup", "20250311T092500Z"))
}

func TestFixedAt(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	c := FixedAt(time.Date(2025, 3, 10, 23, 59, 0, 0, zone), emojiclock.At(7, 45))

	assert.Equal(t, time.Date(2025, 3, 10, 7, 45, 0, 0, zone), c.Now())
	assert.Same(t, zone, c.Now().Location())
}
