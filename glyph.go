package emojiclock

import (
	"fmt"
	"unicode/utf8"

	"github.com/tartampluch/go-emojiclock/internal/config"
)

// Glyph returns the clock face emoji with the hour hand on hour and the
// minute hand on 12, or on 6 when half is set.
//
// Only the hand position matters, so hour and hour+12 share a face.
// Panics on a negative hour.
func Glyph(hour int, half bool) rune {
	if hour < 0 {
		panic(fmt.Sprintf("%s: %d", config.ErrHourNegative, hour))
	}
	// 12 o'clock sits after 11 o'clock in the block.
	offset := (hour + config.HoursPerHalfDay - 1) % config.HoursPerHalfDay
	if half {
		offset += config.HoursPerHalfDay
	}
	r := config.ClockFaceBase + rune(offset)
	if !utf8.ValidRune(r) {
		panic(fmt.Sprintf("%s: %U", config.ErrGlyphInvalid, r))
	}
	return r
}
