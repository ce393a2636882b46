package emojiclock

import (
	"fmt"

	"github.com/tartampluch/go-emojiclock/internal/config"
)

// Meridiem holds the glyphs marking the morning and the evening half of the day.
type Meridiem struct {
	AM rune
	PM rune
}

// DefaultMeridiem returns 🌞 for AM and 🌝 for PM.
func DefaultMeridiem() Meridiem {
	return Meridiem{AM: config.DefaultAMGlyph, PM: config.DefaultPMGlyph}
}

// Glyph returns AM for hours 0-11 and PM for hours 12-23.
// Panics on an hour outside [0,23].
func (m Meridiem) Glyph(hour int) rune {
	if hour < 0 || hour >= config.HoursPerDay {
		panic(fmt.Sprintf("%s: %d", config.ErrHourRange, hour))
	}
	if hour < config.MeridiemPMStart {
		return m.AM
	}
	return m.PM
}
