package engine

import (
	"time"

	"github.com/tartampluch/go-emojiclock"
)

// Clock is where the Annotator reads "now" from when rendering the current face.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant. The command line uses it to
// pin every mode to the -at time.
type FixedClock struct {
	At time.Time
}

// Now returns c.At.
func (c FixedClock) Now() time.Time {
	return c.At
}

// FixedAt returns a FixedClock showing w on the day of base, in base's location.
func FixedAt(base time.Time, w emojiclock.WallTime) FixedClock {
	y, m, d := base.Date()
	return FixedClock{At: time.Date(y, m, d, w.Hour(), w.Minute(), 0, 0, base.Location())}
}
