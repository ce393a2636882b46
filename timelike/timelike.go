// Package timelike adapts calendar and contact time values to emojiclock.TimeSource.
//
// time.Time needs no adapter. The functions here pull a time of day out of
// iCalendar properties and vCard fields; converting to the viewer's zone
// happens here, never in the renderer.
package timelike

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-emojiclock"
	"github.com/tartampluch/go-emojiclock/internal/config"
)

var (
	// ErrMissing is returned when the property or field is absent or empty.
	ErrMissing = errors.New(config.ErrTimeMissing)
	// ErrNoTimeOfDay is returned for date-only values such as all-day events.
	ErrNoTimeOfDay = errors.New(config.ErrNoTimeOfDay)
)

// birthLayouts are the vCard BDAY forms that carry a time of day.
var birthLayouts = []string{
	config.LayoutBasicZoned,
	config.LayoutBasicSeconds,
	config.LayoutBasicMinutes,
	config.LayoutExtendedZoned,
	config.LayoutExtended,
	config.LayoutNoYearSeconds,
	config.LayoutNoYearMinutes,
	config.LayoutTimeOnlySecond,
	config.LayoutTimeOnlyMinute,
}

// FromTime returns the wall-clock time of t in loc, or in t's own location when loc is nil.
func FromTime(t time.Time, loc *time.Location) emojiclock.WallTime {
	if loc != nil {
		t = t.In(loc)
	}
	return emojiclock.At(t.Hour(), t.Minute())
}

// ICalProp reads a DATE-TIME property as seen from loc.
// Floating times are interpreted in loc; loc nil means UTC.
func ICalProp(p *ical.Prop, loc *time.Location) (emojiclock.WallTime, error) {
	if p == nil || p.Value == "" {
		return emojiclock.WallTime{}, ErrMissing
	}
	if p.ValueType() == ical.ValueDate || len(p.Value) == config.ICalDateLength {
		return emojiclock.WallTime{}, ErrNoTimeOfDay
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := p.DateTime(loc)
	if err != nil {
		return emojiclock.WallTime{}, fmt.Errorf("%s: %w", config.ErrTimeParse, err)
	}
	return FromTime(t, loc), nil
}

// ICalEventStart reads the DTSTART of e as seen from loc.
func ICalEventStart(e ical.Event, loc *time.Location) (emojiclock.WallTime, error) {
	if e.Component == nil {
		return emojiclock.WallTime{}, ErrMissing
	}
	return ICalProp(e.Props.Get(ical.PropDateTimeStart), loc)
}

// VCardBirth reads the time of birth from the BDAY field.
// The time is used as written; a trailing zone designator is ignored.
func VCardBirth(card vcard.Card) (emojiclock.WallTime, error) {
	value := strings.TrimSpace(card.Value(vcard.FieldBirthday))
	if value == "" {
		return emojiclock.WallTime{}, ErrMissing
	}
	if !strings.Contains(value, config.TimeDesignator) {
		return emojiclock.WallTime{}, ErrNoTimeOfDay
	}

	for _, layout := range birthLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return emojiclock.At(t.Hour(), t.Minute()), nil
		}
	}
	return emojiclock.WallTime{}, fmt.Errorf("%s: %q", config.ErrTimeParse, value)
}

// VCardRevision reads the REV timestamp as seen from loc (UTC when loc is nil).
func VCardRevision(card vcard.Card, loc *time.Location) (emojiclock.WallTime, error) {
	if card.Value(vcard.FieldRevision) == "" {
		return emojiclock.WallTime{}, ErrMissing
	}
	t, err := card.Revision()
	if err != nil {
		return emojiclock.WallTime{}, fmt.Errorf("%s: %w", config.ErrTimeParse, err)
	}
	return FromTime(t, loc), nil
}
