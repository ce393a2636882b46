package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-emojiclock/internal/config"
)

// cacheItem stores a rendered payload and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

func newCacheItem(data []byte) *cacheItem {
	hash := sha256.Sum256(data)
	return &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
}

// ClockServer serves the current clock face and the annotated calendar over HTTP.
type ClockServer struct {
	// Both payloads are read on every request and replaced wholesale by the
	// worker, so readers never lock.
	face     atomic.Pointer[cacheItem]
	calendar atomic.Pointer[cacheItem]
	Port     string
}

// NewClockServer creates a new instance of the server.
func NewClockServer(port string) *ClockServer {
	return &ClockServer{
		Port: port,
	}
}

// Addr is the listen address.
func (s *ClockServer) Addr() string {
	return config.LocalhostBindAddr + config.AddrSeparator + s.Port
}

// Handler returns the routes served by the ClockServer.
func (s *ClockServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleFaceRequest)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *ClockServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateFace atomically replaces the served clock face.
// An unchanged face keeps its ETag and Last-Modified.
func (s *ClockServer) UpdateFace(face string) {
	if cur := s.face.Load(); cur != nil && string(cur.data) == face {
		return
	}
	s.store(&s.face, config.RouteRoot, []byte(face))
}

// UpdateCalendar atomically replaces the served calendar.
func (s *ClockServer) UpdateCalendar(data []byte) {
	s.store(&s.calendar, config.RouteCalendar, data)
}

func (s *ClockServer) store(slot *atomic.Pointer[cacheItem], route string, data []byte) {
	item := newCacheItem(data)
	slot.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
}

func (s *ClockServer) handleFaceRequest(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.face.Load(), config.MimeTextPlain)
}

func (s *ClockServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.calendar.Load(), config.MimeTextCalendar)
}

// serveCached writes item with HTTP caching support.
func serveCached(w http.ResponseWriter, r *http.Request, item *cacheItem, mime string) {
	// 1. Method Validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Readiness Check
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// 3. Set Response Headers
	w.Header().Set(config.HeaderContentType, mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	// 4. Check Conditional Headers
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	// 5. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
