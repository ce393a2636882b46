package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-emojiclock/internal/config"
)

// FeedRequest describes one download of a calendar or contacts feed.
type FeedRequest struct {
	URL    string
	User   string // HTTP Basic Auth, sent when User or Pass is set
	Pass   string
	Format string // config.FormatICS or config.FormatVCF; picks the Accept header

	// ETag from the previous download. When set the request is conditional
	// and the server may answer 304.
	ETag string
}

// Feed is a downloaded feed.
type Feed struct {
	Body        io.ReadCloser // nil when NotModified
	ETag        string        // validator to send with the next request
	NotModified bool
}

// Fetcher retrieves remote feeds. Tests replace it with a mock.
type Fetcher interface {
	Fetch(ctx context.Context, req FeedRequest) (Feed, error)
}

// HTTPFetcher downloads feeds with conditional GET.
type HTTPFetcher struct {
	Client *http.Client

	// MaxBytes caps the body; reading past it fails.
	MaxBytes int64
}

// NewHTTPFetcher returns an HTTPFetcher with the configured timeout and size cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// Fetch downloads req.URL. A 304 answer to a conditional request returns a
// Feed with NotModified set and no body.
func (f *HTTPFetcher) Fetch(ctx context.Context, fr FeedRequest) (Feed, error) {
	u, err := url.Parse(fr.URL)
	if err != nil {
		return Feed{}, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return Feed{}, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Feed URLs often carry tokens in the query.
	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path,
		config.LogKeyFormat, fr.Format,
	)
	log.DebugContext(ctx, config.MsgDownloadStarting, config.LogKeyETag, fr.ETag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fr.URL, nil)
	if err != nil {
		return Feed{}, fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, acceptFor(fr.Format))
	if fr.ETag != "" {
		req.Header.Set(config.HeaderIfNoneMatch, fr.ETag)
	}
	if fr.User != "" || fr.Pass != "" {
		req.SetBasicAuth(fr.User, fr.Pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return Feed{}, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotModified && fr.ETag != "":
		_ = resp.Body.Close()
		log.Debug(config.MsgFeedNotModified)
		return Feed{ETag: fr.ETag, NotModified: true}, nil

	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		log.Warn(config.MsgDownloadBadStatus, config.LogKeyStatus, resp.StatusCode)
		return Feed{}, fmt.Errorf("%s: %d %s", config.ErrHTTPStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	log.Info(config.MsgDownloading, config.LogKeyLength, resp.ContentLength)

	return Feed{
		Body: &cappedBody{
			r:     io.LimitReader(resp.Body, f.MaxBytes+1),
			limit: f.MaxBytes,
			c:     resp.Body,
		},
		ETag: resp.Header.Get(config.HeaderETag),
	}, nil
}

func acceptFor(format string) string {
	if format == config.FormatVCF {
		return config.AcceptVCard
	}
	return config.AcceptCalendar
}

// cappedBody fails once more than limit bytes were read, so a truncated feed
// is never mistaken for a complete one.
type cappedBody struct {
	r     io.Reader
	limit int64
	read  int64
	c     io.Closer
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	if over := b.read - b.limit; over > 0 {
		return max(n-int(over), 0), errors.New(config.ErrFeedTooLarge)
	}
	return n, err
}

func (b *cappedBody) Close() error {
	return b.c.Close()
}
