package engine

import "github.com/tartampluch/go-emojiclock"

// Entry is one timed calendar event or contact, rendered as a clock face.
type Entry struct {
	// UID is the event UID, or a stable hash for contacts.
	UID string

	// Name is the event summary (before annotation) or the contact's display name.
	Name string

	// Start is the wall-clock time read from DTSTART or BDAY.
	Start emojiclock.WallTime

	// Slot is Start rounded with the Annotator's style. It is the sort key.
	Slot emojiclock.Slot

	// Face is the rendered clock, meridiem glyph included when enabled.
	Face string
}

// Result is the outcome of one annotation run.
type Result struct {
	// Calendar is the re-encoded iCalendar with clock faces prefixed to every
	// timed SUMMARY. It is nil for vCard sources and when the annotated
	// calendar cannot be encoded.
	Calendar []byte

	// Entries lists the timed entries sorted by slot, then name.
	Entries []Entry

	// Skipped counts events without a time of day and contacts without a birth time.
	Skipped int

	// Unchanged reports that a web feed answered 304 and the previous
	// result was reused.
	Unchanged bool
}
