package emojiclock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-emojiclock"
)

func slot(hour int, half bool) emojiclock.Slot {
	return emojiclock.Slot{Hour: hour, Half: half}
}

func TestRounding_Slot(t *testing.T) {
	tests := []struct {
		name     string
		rounding emojiclock.Rounding
		hour     int
		minute   int
		expected emojiclock.Slot
	}{
		{"floor on the hour", emojiclock.Floor, 1, 0, slot(1, false)},
		{"floor before half", emojiclock.Floor, 2, 29, slot(2, false)},
		{"floor on half", emojiclock.Floor, 3, 30, slot(3, true)},
		{"floor end of hour", emojiclock.Floor, 3, 59, slot(3, true)},
		{"floor never wraps", emojiclock.Floor, 23, 59, slot(23, true)},

		{"ceil on the hour", emojiclock.Ceil, 1, 0, slot(1, false)},
		{"ceil one past", emojiclock.Ceil, 7, 1, slot(7, true)},
		{"ceil before half", emojiclock.Ceil, 2, 29, slot(2, true)},
		{"ceil on half", emojiclock.Ceil, 3, 30, slot(3, true)},
		{"ceil past half", emojiclock.Ceil, 3, 31, slot(4, false)},
		{"ceil end of hour", emojiclock.Ceil, 3, 59, slot(4, false)},

		{"round on the hour", emojiclock.Round, 1, 0, slot(1, false)},
		{"round down to hour", emojiclock.Round, 2, 14, slot(2, false)},
		{"round up to half", emojiclock.Round, 3, 15, slot(3, true)},
		{"round down to half", emojiclock.Round, 4, 44, slot(4, true)},
		{"round up to next hour", emojiclock.Round, 5, 45, slot(6, false)},

		{"round wraps midnight", emojiclock.Round, 23, 45, slot(0, false)},
		{"ceil wraps midnight", emojiclock.Ceil, 23, 31, slot(0, false)},
		{"ceil wraps late", emojiclock.Ceil, 23, 45, slot(0, false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rounding.Slot(emojiclock.At(tt.hour, tt.minute))
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestRounding_SlotAlwaysValid sweeps every minute of the day.
func TestRounding_SlotAlwaysValid(t *testing.T) {
	for _, r := range []emojiclock.Rounding{emojiclock.Round, emojiclock.Floor, emojiclock.Ceil} {
		for hour := 0; hour < 24; hour++ {
			for minute := 0; minute < 60; minute++ {
				s := r.Slot(emojiclock.At(hour, minute))
				require.GreaterOrEqual(t, s.Hour, 0)
				require.Less(t, s.Hour, 24, "%s %02d:%02d", r, hour, minute)
			}
		}
	}
}

func TestRounding_SlotPanicsOnBrokenSource(t *testing.T) {
	tests := []struct {
		name   string
		hour   int
		minute int
	}{
		{"hour 24", 24, 0},
		{"negative hour", -1, 0},
		{"minute 60", 12, 60},
		{"negative minute", 12, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { emojiclock.Round.Slot(emojiclock.At(tt.hour, tt.minute)) })
		})
	}

	assert.Panics(t, func() { emojiclock.Rounding(42).Slot(emojiclock.At(1, 0)) }, "unknown strategy must panic")
}

func TestParseRounding(t *testing.T) {
	for _, r := range []emojiclock.Rounding{emojiclock.Round, emojiclock.Floor, emojiclock.Ceil} {
		parsed, err := emojiclock.ParseRounding(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	parsed, err := emojiclock.ParseRounding("  CEIL ")
	require.NoError(t, err)
	assert.Equal(t, emojiclock.Ceil, parsed)

	_, err = emojiclock.ParseRounding("truncate")
	assert.ErrorContains(t, err, "truncate")

	assert.Equal(t, "Rounding(9)", emojiclock.Rounding(9).String())
}

func TestSlot_String(t *testing.T) {
	assert.Equal(t, "09:30", slot(9, true).String())
	assert.Equal(t, "00:00", slot(0, false).String())
}
