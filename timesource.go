package emojiclock

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-emojiclock/internal/config"
)

// TimeSource is the minimal capability the renderer reads a time from.
// Hour reports the wall-clock hour in [0,23] and Minute the minute in [0,59].
//
// time.Time satisfies it as is, reporting the wall clock of its own location.
// Converting to another zone is the caller's job.
type TimeSource interface {
	Hour() int
	Minute() int
}

// WallTime is a plain hour/minute pair with no date and no zone.
type WallTime struct {
	hour   int
	minute int
}

// At returns the WallTime hour:minute.
// Values are not validated here; rendering panics on out-of-range input.
func At(hour, minute int) WallTime {
	return WallTime{hour: hour, minute: minute}
}

// ParseWallTime parses "HH:MM" (24-hour clock).
func ParseWallTime(s string) (WallTime, error) {
	t, err := time.Parse(config.LayoutWallTime, strings.TrimSpace(s))
	if err != nil {
		return WallTime{}, fmt.Errorf("%s: %w", config.ErrWallTimeParse, err)
	}
	return At(t.Hour(), t.Minute()), nil
}

// Hour reports the hour as given to At or parsed.
func (w WallTime) Hour() int { return w.hour }

// Minute reports the minute as given to At or parsed.
func (w WallTime) Minute() int { return w.minute }

// String formats the time as HH:MM.
func (w WallTime) String() string {
	return fmt.Sprintf(config.FormatWallTime, w.hour, w.minute)
}
