// Package emojiclock renders a time of day as a Unicode clock face emoji,
// optionally followed by a day/night glyph.
//
//	emojiclock.New(emojiclock.At(9, 25)).WithDefaultMeridiem().String() // "🕤🌞"
//
// Times are read through TimeSource, which time.Time already satisfies.
package emojiclock

import "strings"

// Clock renders a time as emoji.
//
// A Clock is an immutable value: the With* methods return a configured copy
// and leave the receiver untouched, so a Clock can be shared and rendered
// from any number of goroutines.
type Clock struct {
	time        TimeSource
	rounding    Rounding
	meridiem    Meridiem
	hasMeridiem bool
}

// New returns a Clock for t using Round and no meridiem glyph.
func New(t TimeSource) Clock {
	return Clock{time: t, rounding: Round}
}

// WithRounding returns a copy of c using r.
func (c Clock) WithRounding(r Rounding) Clock {
	c.rounding = r
	return c
}

// WithMeridiem returns a copy of c that appends m's glyph after the clock face.
func (c Clock) WithMeridiem(m Meridiem) Clock {
	c.meridiem = m
	c.hasMeridiem = true
	return c
}

// WithDefaultMeridiem is WithMeridiem(DefaultMeridiem()).
func (c Clock) WithDefaultMeridiem() Clock {
	return c.WithMeridiem(DefaultMeridiem())
}

// WithoutMeridiem returns a copy of c rendering the clock face alone.
func (c Clock) WithoutMeridiem() Clock {
	c.meridiem = Meridiem{}
	c.hasMeridiem = false
	return c
}

// Time returns the TimeSource the clock renders.
func (c Clock) Time() TimeSource { return c.time }

// Rounding returns the strategy used to pick the slot. Round by default.
func (c Clock) Rounding() Rounding { return c.rounding }

// Meridiem reports the meridiem glyphs and whether they are rendered.
func (c Clock) Meridiem() (Meridiem, bool) {
	return c.meridiem, c.hasMeridiem
}

// Slot returns the half-hour slot the clock renders.
func (c Clock) Slot() Slot {
	return c.rounding.Slot(c.time)
}

// String renders the clock face, followed by the meridiem glyph when enabled.
// The meridiem follows the rounded hour: 11:50 with Round is 🕛🌝.
func (c Clock) String() string {
	slot := c.Slot()

	var b strings.Builder
	b.WriteRune(slot.Glyph())
	if c.hasMeridiem {
		b.WriteRune(c.meridiem.Glyph(slot.Hour))
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
