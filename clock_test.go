package emojiclock_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-emojiclock"
)

func TestClock_Scenarios(t *testing.T) {
	custom := emojiclock.Meridiem{AM: 'a', PM: 'p'}

	tests := []struct {
		name     string
		clock    emojiclock.Clock
		expected string
	}{
		{"midnight default", emojiclock.New(emojiclock.At(0, 0)), "🕛"},
		{"morning with meridiem", emojiclock.New(emojiclock.At(9, 25)).WithRounding(emojiclock.Round).WithDefaultMeridiem(), "🕤🌞"},
		{"evening with meridiem", emojiclock.New(emojiclock.At(21, 25)).WithRounding(emojiclock.Round).WithDefaultMeridiem(), "🕤🌝"},
		{"half past noon", emojiclock.New(emojiclock.At(12, 30)).WithRounding(emojiclock.Round), "🕧"},
		{"custom AM", emojiclock.New(emojiclock.At(0, 0)).WithMeridiem(custom), "🕛a"},
		{"custom PM", emojiclock.New(emojiclock.At(12, 0)).WithMeridiem(custom), "🕛p"},
		{"meridiem follows rounded hour", emojiclock.New(emojiclock.At(11, 50)).WithDefaultMeridiem(), "🕛🌝"},
		{"midnight wrap is AM", emojiclock.New(emojiclock.At(23, 50)).WithDefaultMeridiem(), "🕛🌞"},
		{"floor", emojiclock.New(emojiclock.At(3, 59)).WithRounding(emojiclock.Floor), "🕞"},
		{"ceil", emojiclock.New(emojiclock.At(3, 59)).WithRounding(emojiclock.Ceil), "🕓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.clock.String())
			assert.Equal(t, tt.expected, fmt.Sprint(tt.clock), "fmt must use String")
		})
	}
}

// TestClock_FullDay renders every whole and half hour of two days, with and
// without the default meridiem.
func TestClock_FullDay(t *testing.T) {
	for hour := 0; hour < 48; hour++ {
		for i, minute := range []int{0, 30} {
			h := hour % 24
			face := string(dial[(h%12)*2+i])
			c := emojiclock.New(emojiclock.At(h, minute))
			assert.Equal(t, face, c.String(), "%02d:%02d", h, minute)

			day := "🌞"
			if h >= 12 {
				day = "🌝"
			}
			assert.Equal(t, face+day, c.WithDefaultMeridiem().String(), "%02d:%02d", h, minute)
		}
	}
}

func TestClock_UpdatesAreNonDestructive(t *testing.T) {
	base := emojiclock.New(emojiclock.At(9, 25))
	floored := base.WithRounding(emojiclock.Floor)
	withDay := floored.WithDefaultMeridiem()
	plain := withDay.WithoutMeridiem()

	assert.Equal(t, emojiclock.Round, base.Rounding())
	_, enabled := base.Meridiem()
	assert.False(t, enabled, "base must stay without meridiem")

	assert.Equal(t, emojiclock.Floor, floored.Rounding())
	_, enabled = floored.Meridiem()
	assert.False(t, enabled)

	m, enabled := withDay.Meridiem()
	assert.True(t, enabled)
	assert.Equal(t, emojiclock.DefaultMeridiem(), m)
	assert.Equal(t, emojiclock.Floor, withDay.Rounding(), "rounding survives a meridiem update")

	_, enabled = plain.Meridiem()
	assert.False(t, enabled)
	assert.Equal(t, emojiclock.Floor, plain.Rounding())

	assert.Equal(t, "🕤", base.String())
	assert.Equal(t, "🕘", floored.String())
	assert.Equal(t, "🕘🌞", withDay.String())
	assert.Equal(t, "🕘", plain.String())
	assert.Equal(t, emojiclock.At(9, 25), plain.Time())
}

func TestClock_AcceptsStdlibTime(t *testing.T) {
	tm := time.Date(2024, 5, 4, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "🕧", emojiclock.New(tm).String())
	assert.Equal(t, emojiclock.Slot{Hour: 12, Half: true}, emojiclock.New(tm).Slot())
}

func TestClock_MarshalText(t *testing.T) {
	payload := map[string]emojiclock.Clock{
		"face": emojiclock.New(emojiclock.At(21, 25)).WithDefaultMeridiem(),
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"face":"🕤🌝"}`, string(data))
}

func TestClock_PanicsOnBrokenSource(t *testing.T) {
	c := emojiclock.New(emojiclock.At(25, 0))
	assert.Panics(t, func() { _ = c.String() })
}

// TestClock_ConcurrentRender shares one Clock across goroutines (run with -race).
func TestClock_ConcurrentRender(t *testing.T) {
	c := emojiclock.New(emojiclock.At(21, 25)).WithDefaultMeridiem()

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.String()
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "🕤🌝", r)
	}
}

func TestWallTime(t *testing.T) {
	w, err := emojiclock.ParseWallTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, w.Hour())
	assert.Equal(t, 5, w.Minute())
	assert.Equal(t, "09:05", w.String())

	w, err = emojiclock.ParseWallTime(" 23:59 ")
	require.NoError(t, err)
	assert.Equal(t, emojiclock.At(23, 59), w)

	for _, bad := range []string{"", "24:00", "12:60", "noon", "12h30"} {
		_, err := emojiclock.ParseWallTime(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestMeridiem_Glyph(t *testing.T) {
	m := emojiclock.Meridiem{AM: 'a', PM: 'p'}
	for hour := 0; hour < 12; hour++ {
		assert.Equal(t, 'a', m.Glyph(hour), "hour %d", hour)
		assert.Equal(t, 'p', m.Glyph(hour+12), "hour %d", hour+12)
	}
	assert.Panics(t, func() { m.Glyph(24) })
}
