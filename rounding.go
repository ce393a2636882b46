package emojiclock

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-emojiclock/internal/config"
)

// Rounding selects how a minute value collapses to a half-hour slot.
type Rounding int

const (
	// Round picks the nearest slot.
	//   01:45 - 02:14 : 02:00
	//   02:15 - 02:44 : 02:30
	Round Rounding = iota
	// Floor picks the slot at or before the time.
	//   02:00 - 02:29 : 02:00
	//   02:30 - 02:59 : 02:30
	Floor
	// Ceil picks the slot at or after the time.
	//   01:31 - 02:00 : 02:00
	//   02:01 - 02:30 : 02:30
	Ceil
)

// String returns the lower-case name used on the command line.
func (r Rounding) String() string {
	switch r {
	case Round:
		return config.RoundingNameRound
	case Floor:
		return config.RoundingNameFloor
	case Ceil:
		return config.RoundingNameCeil
	default:
		return fmt.Sprintf(config.FormatRounding, int(r))
	}
}

// ParseRounding is the inverse of Rounding.String. It is case-insensitive.
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.RoundingNameRound:
		return Round, nil
	case config.RoundingNameFloor:
		return Floor, nil
	case config.RoundingNameCeil:
		return Ceil, nil
	default:
		return Round, fmt.Errorf("%s: %q", config.ErrRoundingParse, s)
	}
}

// Slot is a time collapsed to half-hour precision.
// Hour is always in [0,23].
type Slot struct {
	Hour int
	Half bool
}

// Glyph returns the clock face showing the slot.
func (s Slot) Glyph() rune {
	return Glyph(s.Hour, s.Half)
}

// String formats the slot as HH:00 or HH:30.
func (s Slot) String() string {
	minute := 0
	if s.Half {
		minute = config.HalfHourMinute
	}
	return fmt.Sprintf(config.FormatWallTime, s.Hour, minute)
}

// Slot rounds t to half-hour precision. Moving past 23:59 wraps to hour 0.
//
// Panics if t reports an hour outside [0,23] or a minute outside [0,59]:
// that is a broken TimeSource, not a recoverable condition.
func (r Rounding) Slot(t TimeSource) Slot {
	hour, minute := t.Hour(), t.Minute()
	if hour < 0 || hour >= config.HoursPerDay {
		panic(fmt.Sprintf("%s: %d", config.ErrHourRange, hour))
	}
	if minute < 0 || minute >= config.MinutesPerHour {
		panic(fmt.Sprintf("%s: %d", config.ErrMinuteRange, minute))
	}

	switch r {
	case Floor:
		return Slot{Hour: hour, Half: minute >= config.FloorHalfStart}
	case Ceil:
		switch {
		case minute == 0:
			return Slot{Hour: hour}
		case minute < config.CeilNextStart:
			return Slot{Hour: hour, Half: true}
		default:
			return Slot{Hour: nextHour(hour)}
		}
	case Round:
		switch {
		case minute < config.RoundHalfStart:
			return Slot{Hour: hour}
		case minute < config.RoundNextStart:
			return Slot{Hour: hour, Half: true}
		default:
			return Slot{Hour: nextHour(hour)}
		}
	}
	panic(fmt.Sprintf("%s: %d", config.ErrRoundingUnknown, int(r)))
}

func nextHour(hour int) int {
	return (hour + 1) % config.HoursPerDay
}
