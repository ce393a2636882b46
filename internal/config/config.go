package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-EmojiClock/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Emoji Clock"
	CmdName           = "emoji-clock"
	AppID             = "com.github.tartampluch.go-emojiclock"
	KeyringService    = "com.github.tartampluch.go-emojiclock"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Clock Faces
// -----------------------------------------------------------------------------

const (
	// ClockFaceBase is U+1F550 CLOCK FACE ONE OCLOCK, the start of the block:
	// 12 whole-hour faces (one to twelve) followed by 12 half-hour faces.
	ClockFaceBase rune = 128336

	HoursPerDay     = 24
	HoursPerHalfDay = 12
	MinutesPerHour  = 60

	// Rounding thresholds (minutes).
	HalfHourMinute  = 30
	RoundHalfStart  = 15
	RoundNextStart  = 45
	CeilNextStart   = 31
	FloorHalfStart  = HalfHourMinute
	MeridiemPMStart = HoursPerHalfDay

	DefaultAMGlyph = '🌞'
	DefaultPMGlyph = '🌝'

	RoundingNameRound = "round"
	RoundingNameFloor = "floor"
	RoundingNameCeil  = "ceil"

	FormatWallTime = "%02d:%02d"
	FormatRounding = "Rounding(%d)"
	LayoutWallTime = "15:04"
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion  = "version"
	FlagDebug    = "debug"
	FlagAt       = "at"
	FlagRounding = "rounding"
	FlagMeridiem = "meridiem"
	FlagAM       = "am"
	FlagPM       = "pm"
	FlagLang     = "lang"
	FlagSource   = "source"
	FlagUser     = "user"
	FlagServe    = "serve"
	FlagPort     = "port"
	FlagInterval = "interval"
	FlagFormat   = "format"
	FlagTray     = "tray"

	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging"
	FlagDescAt       = "Time to render as HH:MM (default: now)"
	FlagDescRounding = "Rounding strategy: round, floor or ceil"
	FlagDescMeridiem = "Append an AM/PM glyph"
	FlagDescAM       = "AM glyph used with -meridiem"
	FlagDescPM       = "PM glyph used with -meridiem"
	FlagDescLang     = "Output language, one of: %s"
	FlagDescSource   = "Calendar (.ics) or contacts (.vcf) file path or URL to annotate"
	FlagDescUser     = "HTTP Basic Auth user for -source; password is read from the OS keyring"
	FlagDescServe    = "Serve the clock face and annotated calendar over HTTP"
	FlagDescPort     = "HTTP port used with -serve"
	FlagDescInterval = "Minutes between calendar refreshes with -serve or -tray"
	FlagDescFormat   = "Source format (ics or vcf); inferred from the extension when empty"
	FlagDescTray     = "Show the clock face and the annotated entries in the system tray"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	FormatEntryLine  = "%s %s %s\n"
	FormatEntryLabel = "%s %s %s"
	FormatTrayFace   = "%s %s"
)

// SupportedLanguages defines the list of available output languages (ISO 639-1).
// Only locale files listed here are loaded.
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyEntriesNone    = "entries_none"
	TKeyEntriesSummary = "entries_summary" // Requires Count, Skipped
	TKeyServerReady    = "server_ready"    // Requires Addr
	TKeyErrInvalidAt   = "err_invalid_at"  // Requires Value
	TKeyErrRounding    = "err_invalid_rounding"
	TKeyErrLang        = "err_invalid_lang"
	TKeyErrGlyph       = "err_invalid_glyph"
	TKeyErrFailed      = "err_failed"           // Requires Error
	TKeyErrInterval    = "err_invalid_interval" // Requires Max
	TKeyTrayError      = "tray_error"
	TKeyMenuRefresh    = "menu_refresh"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	FormatICS         = "ics"
	FormatVCF         = "vcf"
	DefaultPort       = "18081"
	DefaultRefreshMin = 60
	MaxRefreshMin     = 7 * 24 * 60 // One week
	DefaultLanguage   = "en"
	FaceRefresh       = time.Minute
	MaxDecodeFailures = 100
	UIDSalt           = "go-emojiclock-v1-"
	SummarySeparator  = " "
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Emoji Clock//Annotator//EN"

	// Date-time layouts accepted for a vCard BDAY carrying a time of day.
	// A trailing zone is accepted and ignored: the written wall-clock time is used.
	LayoutBasicZoned     = "20060102T150405Z0700"
	LayoutBasicSeconds   = "20060102T150405"
	LayoutBasicMinutes   = "20060102T1504"
	LayoutExtendedZoned  = time.RFC3339
	LayoutExtended       = "2006-01-02T15:04:05"
	LayoutNoYearSeconds  = "--0102T150405"
	LayoutNoYearMinutes  = "--0102T1504"
	LayoutTimeOnlySecond = "T150405"
	LayoutTimeOnlyMinute = "T1504"

	// TimeDesignator separates the date and time parts of ISO 8601 values.
	TimeDesignator = "T"
	ICalDateLength = len("20060102")

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"

	// File Extensions
	ExtICS   = ".ics"
	ExtICal  = ".ical"
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/{$}"
	RouteCalendar       = "/calendar.ics"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	AcceptCalendar      = "text/calendar, text/plain;q=0.5, */*;q=0.1"
	AcceptVCard         = "text/vcard, text/x-vcard;q=0.9, text/directory;q=0.5, */*;q=0.1"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	// Contract violations (panics).
	ErrHourRange       = "hour out of range [0,23]"
	ErrMinuteRange     = "minute out of range [0,59]"
	ErrHourNegative    = "hour must not be negative"
	ErrRoundingUnknown = "unknown rounding strategy"
	ErrGlyphInvalid    = "clock face code point is not a valid character"

	ErrRoundingParse  = "unsupported rounding strategy"
	ErrWallTimeParse  = "invalid wall-clock time, expected HH:MM"
	ErrGlyphParse     = "glyph must be exactly one character"
	ErrLangParse      = "unsupported language"
	ErrTimeMissing    = "time property is missing"
	ErrNoTimeOfDay    = "value carries a date but no time of day"
	ErrTimeParse      = "unable to parse time of day"
	ErrLocalPathEmpty = "configuration error: local path is empty"
	ErrWebURLEmpty    = "configuration error: web URL is empty"
	ErrFetcherMissing = "internal error: network fetcher is not initialized"
	ErrModeUnsupport  = "configuration error: unsupported source mode"
	ErrFormatUnknown  = "configuration error: unsupported source format"
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrICalParse      = "failed to parse iCalendar stream"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrVCardParse     = "failed to parse vCard stream"
	ErrSourceOpen     = "failed to open source"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrLocNotInit     = "localizer not initialized"
	ErrRequestBuild   = "failed to create request"
	ErrNetwork        = "network error during fetch"
	ErrHTTPStatus     = "server returned unexpected status"
	ErrFeedTooLarge   = "feed exceeds the download size limit"
	ErrStaleValidator = "server answered 304 without a cached result"
	ErrTrayNotSupport = "system tray is not supported by this driver"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Clock initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackName          = "Unknown"
	FallbackEntriesNone   = "No timed entries found."
	FallbackEntriesSumm   = "%d timed entries, %d skipped"
	FallbackServerReady   = "Serving clock on http://%s"
	FallbackFailed        = "Failed: %v"
	FallbackInvalidAt     = "Invalid time %q: expected HH:MM"
	FallbackInvalidRound  = "Invalid rounding: expected round, floor or ceil"
	FallbackInvalidLang   = "Unsupported language"
	FallbackInvalidGlyph  = "A glyph must be exactly one character"
	FallbackInvalidIntv   = "Invalid interval: expected at most %d minutes"
	FallbackTrayError     = "Refresh failed"
	FallbackMenuRefresh   = "Refresh now"
	MsgAnnotateStarted    = "Annotation started"
	MsgAnnotateSuccess    = "Annotation completed"
	MsgWorkerStart        = "Background worker started"
	MsgWorkerStop         = "Worker stopping due to context cancellation"
	MsgAppStop            = "Application stopped gracefully"
	MsgAppStarting        = "Starting application"
	MsgServerListen       = "HTTP server listening"
	MsgServerStop         = "Shutting down HTTP server..."
	MsgCacheUpdated       = "Cache updated"
	MsgFaceRendered       = "Clock face rendered"
	MsgSkippedCard        = "Skipping malformed vCard"
	MsgSkippedEvent       = "Skipping event without time of day"
	MsgSkippedBirth       = "Skipping contact without birth time"
	MsgLocaleSkip         = "Skipping non-locale file"
	MsgLocaleBadName      = "Skipping malformed locale filename"
	MsgLocaleLoaded       = "Locale loaded successfully"
	MsgTransMissing       = "Missing translation key"
	MsgPassFail           = "Password retrieval failed (might be empty)"
	MsgLogWarning         = "Warning: %s at %s: %v\n"
	MsgDownloadStarting   = "Initiating feed download"
	MsgDownloading        = "Feed downloading"
	MsgDownloadBadStatus  = "Server returned error status"
	MsgAnnotateFinished   = "Annotation finished"
	MsgRefreshCalendar    = "Refreshing annotated calendar"
	MsgRefreshCalendarErr = "Annotated calendar refresh failed"
	MsgCalendarUnchanged  = "Feed not modified, keeping annotated calendar"
	MsgFeedNotModified    = "Feed not modified"
	MsgEventNormalized    = "Filled missing event property"
	MsgEncodeFallback     = "Annotated calendar could not be encoded, listing entries only"
	MsgCtxCancel          = "Context cancelled, quitting tray"
	MsgTrayReady          = "System tray ready"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyFormat    = "format"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total"
	LogKeyTimed     = "timed"
	LogKeySkipped   = "skipped"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"
	LogKeyETag      = "etag"
	LogKeyStats     = "stats"
	LogKeyUID       = "uid"
	LogKeyName      = "name"
	LogKeyFace      = "face"
	LogKeyRoute     = "route"
	LogKeyDuration  = "duration_ms"
	LogKeyProp      = "property"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompUI      = "ui"
)
