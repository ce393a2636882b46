package engine

import (
	"bytes"
	"cmp"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-emojiclock"
	"github.com/tartampluch/go-emojiclock/internal/config"
	"github.com/tartampluch/go-emojiclock/timelike"
)

// SourceConfig describes where to read the feed to annotate.
type SourceConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	Format    string // config.FormatICS or config.FormatVCF; inferred from the extension when empty
	LocalPath string // Path to the .ics or .vcf file
	WebURL    string // Feed URL
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// NewSourceConfig builds a SourceConfig from a file path or an http(s) URL.
func NewSourceConfig(source, format, user, pass string) SourceConfig {
	if u, err := url.Parse(source); err == nil && (u.Scheme == config.SchemeHTTP || u.Scheme == config.SchemeHTTPS) {
		return SourceConfig{
			Mode:    config.SourceModeWeb,
			Format:  format,
			WebURL:  source,
			WebUser: user,
			WebPass: pass,
		}
	}
	return SourceConfig{
		Mode:      config.SourceModeLocal,
		Format:    format,
		LocalPath: source,
	}
}

// ResolveFormat returns the explicit format, or the one implied by the file extension.
func (c SourceConfig) ResolveFormat() (string, error) {
	if c.Format != "" {
		switch c.Format {
		case config.FormatICS, config.FormatVCF:
			return c.Format, nil
		}
		return "", fmt.Errorf("%s: %q", config.ErrFormatUnknown, c.Format)
	}

	var ext string
	switch c.Mode {
	case config.SourceModeWeb:
		if u, err := url.Parse(c.WebURL); err == nil {
			ext = path.Ext(u.Path)
		}
	default:
		ext = filepath.Ext(c.LocalPath)
	}

	switch strings.ToLower(ext) {
	case config.ExtICS, config.ExtICal:
		return config.FormatICS, nil
	case config.ExtVCF, config.ExtVCard:
		return config.FormatVCF, nil
	}
	return "", fmt.Errorf("%s: %q", config.ErrFormatUnknown, ext)
}

// Style is the rendering applied to every clock the Annotator produces.
type Style struct {
	Rounding emojiclock.Rounding
	Meridiem *emojiclock.Meridiem // nil renders the face alone
}

// Clock returns the configured renderer for t.
func (s Style) Clock(t emojiclock.TimeSource) emojiclock.Clock {
	c := emojiclock.New(t).WithRounding(s.Rounding)
	if s.Meridiem != nil {
		c = c.WithMeridiem(*s.Meridiem)
	}
	return c
}

// Annotator turns calendar events and contacts into clock faces.
type Annotator struct {
	Clock   Clock   // Interface for time mocking.
	Fetcher Fetcher // Interface for network abstraction.
	Style   Style

	// Location is the viewer's zone used for zoned and UTC calendar times.
	// nil means time.Local.
	Location *time.Location

	// Last result per web feed, reused when the feed answers 304.
	mu    sync.Mutex
	feeds map[string]cachedFeed
}

type cachedFeed struct {
	etag string
	res  Result
}

// Now reports the clock's current time in the viewer location.
func (a *Annotator) Now() time.Time {
	return a.Clock.Now().In(a.location())
}

// Face renders the current time.
func (a *Annotator) Face() string {
	face := a.Style.Clock(a.Now()).String()
	slog.Debug(config.MsgFaceRendered,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyFace, face)
	return face
}

// Run executes the fetching, parsing and annotation pipeline.
func (a *Annotator) Run(ctx context.Context, cfg SourceConfig) (Result, error) {
	start := time.Now()

	format, err := cfg.ResolveFormat()
	if err != nil {
		return Result{}, err
	}

	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
		config.LogKeyFormat, format,
	)
	log.InfoContext(ctx, config.MsgAnnotateStarted)

	reader, feed, err := a.acquireStream(ctx, cfg, format)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%s: %w", config.ErrSourceOpen, err)
	}
	if feed.NotModified {
		prev, ok := a.cached(cfg.WebURL)
		if !ok {
			return Result{}, errors.New(config.ErrStaleValidator)
		}
		log.InfoContext(ctx, config.MsgFeedNotModified, config.LogKeyETag, feed.ETag)
		return prev, nil
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var res Result
	if format == config.FormatICS {
		res, err = a.annotateCalendar(ctx, reader)
	} else {
		res, err = a.collectBirths(ctx, reader)
	}

	if err != nil {
		return Result{}, err
	}
	if feed.ETag != "" {
		a.remember(cfg.WebURL, feed.ETag, res)
	}

	log.Debug(config.MsgAnnotateFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	return res, nil
}

// cached returns a copy of the last result for feedURL, marked Unchanged.
func (a *Annotator) cached(feedURL string) (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.feeds[feedURL]
	if !ok {
		return Result{}, false
	}
	res := c.res
	res.Entries = slices.Clone(c.res.Entries)
	res.Unchanged = true
	return res, true
}

func (a *Annotator) validator(feedURL string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.feeds[feedURL].etag
}

func (a *Annotator) remember(feedURL, etag string, res Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.feeds == nil {
		a.feeds = make(map[string]cachedFeed)
	}
	res.Entries = slices.Clone(res.Entries)
	a.feeds[feedURL] = cachedFeed{etag: etag, res: res}
}

// acquireStream opens the data source. Web sources are fetched conditionally
// when a previous download left a validator.
func (a *Annotator) acquireStream(ctx context.Context, cfg SourceConfig, format string) (io.ReadCloser, Feed, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, Feed{}, errors.New(config.ErrLocalPathEmpty)
		}
		f, err := os.Open(cfg.LocalPath)
		if err != nil {
			return nil, Feed{}, err
		}
		return f, Feed{}, nil
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, Feed{}, errors.New(config.ErrWebURLEmpty)
		}
		if a.Fetcher == nil {
			return nil, Feed{}, errors.New(config.ErrFetcherMissing)
		}
		feed, err := a.Fetcher.Fetch(ctx, FeedRequest{
			URL:    cfg.WebURL,
			User:   cfg.WebUser,
			Pass:   cfg.WebPass,
			Format: format,
			ETag:   a.validator(cfg.WebURL),
		})
		if err != nil {
			return nil, Feed{}, err
		}
		return feed.Body, feed, nil
	default:
		return nil, Feed{}, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// annotateCalendar prefixes the SUMMARY of every timed event with its clock
// face and re-encodes the calendar. All-day events pass through untouched
// apart from the UID and DTSTAMP every VEVENT needs to be encoded.
// A face left by an earlier run is replaced, not stacked.
func (a *Annotator) annotateCalendar(ctx context.Context, r io.Reader) (Result, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", config.ErrICalParse, err)
	}

	if cal.Props.Get(ical.PropVersion) == nil {
		cal.Props.SetText(ical.PropVersion, config.ICalVersion)
	}
	if cal.Props.Get(ical.PropProductID) == nil {
		cal.Props.SetText(ical.PropProductID, config.ICalProdid)
	}

	loc := a.location()
	now := a.Clock.Now()
	total := 0
	var res Result

	for _, child := range cal.Children {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if child.Name != ical.CompEvent {
			continue
		}
		total++

		event := ical.Event{Component: child}
		normalizeEvent(event, now)
		uid, _ := event.Props.Text(ical.PropUID)

		start, err := timelike.ICalEventStart(event, loc)
		if err != nil {
			res.Skipped++
			slog.Debug(config.MsgSkippedEvent,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyUID, uid,
				config.LogKeyError, err)
			continue
		}

		summary, _ := event.Props.Text(ical.PropSummary)
		summary = stripFace(summary)
		clock := a.Style.Clock(start)
		face := clock.String()

		annotated := face
		if summary != "" {
			annotated += config.SummarySeparator + summary
		}
		event.Props.SetText(ical.PropSummary, annotated)

		res.Entries = append(res.Entries, Entry{
			UID:   uid,
			Name:  summary,
			Start: start,
			Slot:  clock.Slot(),
			Face:  face,
		})
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		// The entries are still good; only the feed cannot be served.
		slog.Warn(config.MsgEncodeFallback,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyError, fmt.Errorf("%s: %w", config.ErrICalEncode, err))
	} else {
		res.Calendar = buf.Bytes()
	}

	sortEntries(res.Entries)
	a.logSuccess(total, len(res.Entries), res.Skipped)
	return res, nil
}

// collectBirths renders the birth time of every contact whose BDAY carries one.
func (a *Annotator) collectBirths(ctx context.Context, r io.Reader) (Result, error) {
	decoder := vcard.NewDecoder(r)
	total, failures := 0, 0
	var res Result

	for {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A persistent read error would otherwise loop forever.
			failures++
			if failures >= config.MaxDecodeFailures {
				return Result{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}
		failures = 0
		total++

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(vcard.FieldFormattedName); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(vcard.FieldName); n != nil && n.Value != "" {
			name = n.Value
		}

		start, err := timelike.VCardBirth(card)
		if err != nil {
			res.Skipped++
			slog.Debug(config.MsgSkippedBirth,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyError, err)
			continue
		}

		uid := card.Value(vcard.FieldUID)
		if uid == "" {
			uid = stableUID(name, card.Value(vcard.FieldBirthday))
		}

		clock := a.Style.Clock(start)
		res.Entries = append(res.Entries, Entry{
			UID:   uid,
			Name:  name,
			Start: start,
			Slot:  clock.Slot(),
			Face:  clock.String(),
		})
	}

	sortEntries(res.Entries)
	a.logSuccess(total, len(res.Entries), res.Skipped)
	return res, nil
}

func (a *Annotator) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

// logSuccess logs the final statistics of the annotation run.
func (a *Annotator) logSuccess(total, timed, skipped int) {
	slog.Info(config.MsgAnnotateSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, total),
			slog.Int(config.LogKeyTimed, timed),
			slog.Int(config.LogKeySkipped, skipped),
		),
	)
}

// sortEntries orders entries around the dial: by slot, then by name.
func sortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(x, y Entry) int {
		if c := cmp.Compare(x.Slot.Hour, y.Slot.Hour); c != 0 {
			return c
		}
		if x.Slot.Half != y.Slot.Half {
			if x.Slot.Half {
				return 1
			}
			return -1
		}
		return strings.Compare(x.Name, y.Name)
	})
}

// stableUID derives a UID that survives refreshes of the same feed.
func stableUID(name, when string) string {
	input := fmt.Sprintf(config.FormatHashInput, name, when, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// normalizeEvent fills a missing DTSTAMP with now and a missing UID with a
// hash of the summary and start, both of which the encoder requires.
func normalizeEvent(event ical.Event, now time.Time) {
	if event.Props.Get(ical.PropDateTimeStamp) == nil {
		event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		slog.Debug(config.MsgEventNormalized,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyProp, ical.PropDateTimeStamp)
	}
	if event.Props.Get(ical.PropUID) == nil {
		summary, _ := event.Props.Text(ical.PropSummary)
		var start string
		if p := event.Props.Get(ical.PropDateTimeStart); p != nil {
			start = p.Value
		}
		event.Props.SetText(ical.PropUID, stableUID(stripFace(summary), start))
		slog.Debug(config.MsgEventNormalized,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyProp, ical.PropUID)
	}
}

// stripFace removes a leading clock face, its optional meridiem glyph and the
// separator, as written by annotateCalendar.
func stripFace(summary string) string {
	r, n := utf8.DecodeRuneInString(summary)
	if r < config.ClockFaceBase || r >= config.ClockFaceBase+config.HoursPerDay {
		return summary
	}
	rest := summary[n:]
	if rest == "" {
		return ""
	}
	if after, ok := strings.CutPrefix(rest, config.SummarySeparator); ok {
		return after
	}

	// Meridiem glyph.
	_, m := utf8.DecodeRuneInString(rest)
	rest = rest[m:]
	if rest == "" {
		return ""
	}
	if after, ok := strings.CutPrefix(rest, config.SummarySeparator); ok {
		return after
	}
	return summary
}
