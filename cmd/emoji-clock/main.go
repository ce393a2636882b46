package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-emojiclock"
	"github.com/tartampluch/go-emojiclock/internal/config"
	"github.com/tartampluch/go-emojiclock/internal/engine"
	"github.com/tartampluch/go-emojiclock/internal/i18n"
	"github.com/tartampluch/go-emojiclock/internal/server"
	"github.com/tartampluch/go-emojiclock/internal/ui"
	"github.com/zalando/go-keyring"
)

// main is the application entry point.
// It delegates execution to runMain so that deferred calls (like closing the
// log file) run before the process terminates.
func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	showVersion bool
	debug       bool
	meridiem    bool
	serve       bool
	tray        bool

	at       string
	rounding string
	am       string
	pm       string
	lang     string
	source   string
	format   string
	user     string
	port     string
	interval int
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain(args []string, stdout, stderr io.Writer) int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return config.ExitCodeSuccess
	}
	if err != nil {
		return config.ExitCodeUsage
	}

	if opts.showVersion {
		printVersion(stdout)
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Validation
	// -------------------------------------------------------------------------
	tr := i18n.New()
	if opts.lang != "" {
		if err := tr.SetLanguage(opts.lang); err != nil {
			_, _ = fmt.Fprintln(stderr, tr.GetMsg(config.TKeyErrLang, config.FallbackInvalidLang, nil))
			return config.ExitCodeUsage
		}
	}

	rounding, err := emojiclock.ParseRounding(opts.rounding)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, tr.GetMsg(config.TKeyErrRounding, config.FallbackInvalidRound, nil))
		return config.ExitCodeUsage
	}

	style, err := buildStyle(rounding, opts)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, tr.GetMsg(config.TKeyErrGlyph, config.FallbackInvalidGlyph, nil))
		return config.ExitCodeUsage
	}

	if opts.interval > config.MaxRefreshMin {
		_, _ = fmt.Fprintln(stderr, tr.GetMsg(config.TKeyErrInterval,
			fmt.Sprintf(config.FallbackInvalidIntv, config.MaxRefreshMin),
			map[string]any{"Max": config.MaxRefreshMin}))
		return config.ExitCodeUsage
	}

	var clock engine.Clock = engine.RealClock{}
	if opts.at != "" {
		w, err := emojiclock.ParseWallTime(opts.at)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, tr.GetMsg(config.TKeyErrInvalidAt,
				fmt.Sprintf(config.FallbackInvalidAt, opts.at),
				map[string]any{"Value": opts.at}))
			return config.ExitCodeUsage
		}
		clock = engine.FixedAt(time.Now(), w)
	}

	// -------------------------------------------------------------------------
	// 3. Logging Initialization
	// -------------------------------------------------------------------------
	logCloser := setupLogging(opts.debug, stderr)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	// -------------------------------------------------------------------------
	// 4. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo(opts)

	// -------------------------------------------------------------------------
	// 5. Application Logic
	// -------------------------------------------------------------------------
	a := &engine.Annotator{
		Clock:   clock,
		Fetcher: engine.NewHTTPFetcher(),
		Style:   style,
	}

	if err := run(ctx, opts, a, tr, stdout); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		_, _ = fmt.Fprintln(stderr, tr.GetMsg(config.TKeyErrFailed,
			fmt.Sprintf(config.FallbackFailed, err),
			map[string]any{"Error": err.Error()}))
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// parseOptions reads the command line into options.
func parseOptions(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet(config.CmdName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&o.showVersion, config.FlagVersion, false, config.FlagDescVersion)
	fs.BoolVar(&o.debug, config.FlagDebug, false, config.FlagDescDebug)
	fs.StringVar(&o.at, config.FlagAt, "", config.FlagDescAt)
	fs.StringVar(&o.rounding, config.FlagRounding, config.RoundingNameRound, config.FlagDescRounding)
	fs.BoolVar(&o.meridiem, config.FlagMeridiem, false, config.FlagDescMeridiem)
	fs.StringVar(&o.am, config.FlagAM, string(config.DefaultAMGlyph), config.FlagDescAM)
	fs.StringVar(&o.pm, config.FlagPM, string(config.DefaultPMGlyph), config.FlagDescPM)
	fs.StringVar(&o.lang, config.FlagLang, "",
		fmt.Sprintf(config.FlagDescLang, strings.Join(config.SupportedLanguages, ", ")))
	fs.StringVar(&o.source, config.FlagSource, "", config.FlagDescSource)
	fs.StringVar(&o.format, config.FlagFormat, "", config.FlagDescFormat)
	fs.StringVar(&o.user, config.FlagUser, "", config.FlagDescUser)
	fs.BoolVar(&o.serve, config.FlagServe, false, config.FlagDescServe)
	fs.BoolVar(&o.tray, config.FlagTray, false, config.FlagDescTray)
	fs.StringVar(&o.port, config.FlagPort, config.DefaultPort, config.FlagDescPort)
	fs.IntVar(&o.interval, config.FlagInterval, config.DefaultRefreshMin, config.FlagDescInterval)

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

// buildStyle turns the meridiem flags into an engine.Style.
func buildStyle(r emojiclock.Rounding, o options) (engine.Style, error) {
	style := engine.Style{Rounding: r}
	if !o.meridiem {
		return style, nil
	}

	am, err := parseGlyph(o.am)
	if err != nil {
		return engine.Style{}, err
	}
	pm, err := parseGlyph(o.pm)
	if err != nil {
		return engine.Style{}, err
	}
	style.Meridiem = &emojiclock.Meridiem{AM: am, PM: pm}
	return style, nil
}

// parseGlyph accepts exactly one character.
func parseGlyph(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s: %q", config.ErrGlyphParse, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0, fmt.Errorf("%s: %q", config.ErrGlyphParse, s)
	}
	return r, nil
}

// run dispatches to the selected mode. Every mode reads the time from a.Clock,
// which -at pins.
func run(ctx context.Context, o options, a *engine.Annotator, tr *i18n.Translator, out io.Writer) error {
	switch {
	case o.tray:
		return runTray(ctx, o, a, tr)
	case o.serve:
		return serve(ctx, o, a, tr, out)
	case o.source != "":
		return annotate(ctx, o, a, tr, out)
	default:
		_, err := fmt.Fprintln(out, a.Face())
		return err
	}
}

// sourceConfig builds the engine configuration for -source, reading the
// password from the OS keyring when -user is set.
func sourceConfig(o options) engine.SourceConfig {
	return engine.NewSourceConfig(o.source, o.format, o.user, lookupPassword(o.user))
}

func lookupPassword(user string) string {
	if user == "" {
		return ""
	}
	p, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyUser, user,
			config.LogKeyError, err,
		)
		return ""
	}
	return p
}

// annotate prints one line per timed entry followed by a summary.
func annotate(ctx context.Context, o options, a *engine.Annotator, tr *i18n.Translator, out io.Writer) error {
	res, err := a.Run(ctx, sourceConfig(o))
	if err != nil {
		return err
	}

	for _, e := range res.Entries {
		if _, err := fmt.Fprintf(out, config.FormatEntryLine, e.Face, e.Start, e.Name); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(out, tr.Summary(len(res.Entries), res.Skipped))
	return err
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, o options, a *engine.Annotator, tr *i18n.Translator, out io.Writer) error {
	srv := server.NewClockServer(o.port)

	var src *engine.SourceConfig
	if o.source != "" {
		cfg := sourceConfig(o)
		src = &cfg
	}

	go backgroundWorker(ctx, a, srv, src, refreshInterval(o))

	addr := srv.Addr()
	_, _ = fmt.Fprintln(out, tr.GetMsg(config.TKeyServerReady,
		fmt.Sprintf(config.FallbackServerReady, addr),
		map[string]any{"Addr": addr}))

	return srv.Start(ctx)
}

// runTray shows the clock in the system tray until ctx is cancelled or the
// user quits from the tray menu.
func runTray(ctx context.Context, o options, a *engine.Annotator, tr *i18n.Translator) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fyneApp := app.NewWithID(config.AppID)
	tray := ui.NewClockTray(ctx, fyneApp, a, tr)
	tray.Interval = refreshInterval(o)
	if o.source != "" {
		cfg := sourceConfig(o)
		tray.Source = &cfg
	}

	// Bridge context cancellation (signals) to the Fyne lifecycle.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
			fyneApp.Quit()
		case <-done:
		}
	}()

	tray.Run()
	return nil
}

// refreshInterval returns -interval as a duration. runMain has already
// rejected values above config.MaxRefreshMin.
func refreshInterval(o options) time.Duration {
	interval := o.interval
	if interval <= 0 {
		interval = config.DefaultRefreshMin
	}
	return time.Duration(interval) * time.Minute
}

// backgroundWorker keeps the served face current and refreshes the annotated
// calendar every interval. A nil src serves the face only.
func backgroundWorker(ctx context.Context, a *engine.Annotator, srv *server.ClockServer, src *engine.SourceConfig, interval time.Duration) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	srv.UpdateFace(a.Face())

	var calendarTick <-chan time.Time
	if src != nil {
		refreshCalendar(ctx, a, srv, *src)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		calendarTick = ticker.C
	}

	faceTicker := time.NewTicker(config.FaceRefresh)
	defer faceTicker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-faceTicker.C:
			srv.UpdateFace(a.Face())

		case <-calendarTick:
			refreshCalendar(ctx, a, srv, *src)
		}
	}
}

func refreshCalendar(ctx context.Context, a *engine.Annotator, srv *server.ClockServer, src engine.SourceConfig) {
	slog.Info(config.MsgRefreshCalendar, config.LogKeyComponent, config.CompWorker)

	res, err := a.Run(ctx, src)
	if err != nil {
		slog.Error(config.MsgRefreshCalendarErr,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err,
		)
		return
	}
	if res.Unchanged {
		slog.Debug(config.MsgCalendarUnchanged, config.LogKeyComponent, config.CompWorker)
		return
	}
	// vCard sources have no calendar to serve.
	if res.Calendar != nil {
		srv.UpdateCalendar(res.Calendar)
	}
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo(o options) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
		config.LogKeyMode, mode(o),
	)
}

func mode(o options) string {
	switch {
	case o.tray:
		return config.FlagTray
	case o.serve:
		return config.FlagServe
	case o.source != "":
		return config.FlagSource
	default:
		return config.FlagAt
	}
}

// setupLogging configures the default slog logger. Standard output carries
// the clock, so logs go to stderr and the cache-dir log file.
func setupLogging(debugMode bool, stderr io.Writer) io.Closer {
	writers := []io.Writer{stderr}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			_, _ = fmt.Fprintf(stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
