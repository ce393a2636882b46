package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/tartampluch/go-emojiclock/internal/config"
	"github.com/tartampluch/go-emojiclock/internal/engine"
	"github.com/tartampluch/go-emojiclock/internal/i18n"
)

// ClockTray shows the current clock face in the system tray menu. With a
// Source it also lists the annotated entries in a submenu.
type ClockTray struct {
	App        fyne.App
	Ctx        context.Context
	Annotator  *engine.Annotator
	Translator *i18n.Translator

	// Source is annotated every Interval. Nil shows the face only.
	Source   *engine.SourceConfig
	Interval time.Duration

	Tray desktop.App
	Menu *fyne.Menu

	FaceItem    *fyne.MenuItem
	EntriesItem *fyne.MenuItem
	RefreshItem *fyne.MenuItem
}

// NewClockTray wires the tray to its dependencies.
func NewClockTray(ctx context.Context, a fyne.App, ann *engine.Annotator, tr *i18n.Translator) *ClockTray {
	a.SetIcon(theme.HistoryIcon())

	return &ClockTray{
		App:        a,
		Ctx:        ctx,
		Annotator:  ann,
		Translator: tr,
		Interval:   time.Duration(config.DefaultRefreshMin) * time.Minute,
	}
}

// Run installs the tray menu, starts the refresh worker and blocks in the
// Fyne event loop.
func (t *ClockTray) Run() {
	if desk, ok := t.App.(desktop.App); ok {
		t.Tray = desk
		t.Tray.SetSystemTrayIcon(t.App.Icon())
		t.setupTrayMenu()
		slog.Info(config.MsgTrayReady, config.LogKeyComponent, config.CompUI)
	} else {
		slog.Warn(config.ErrTrayNotSupport, config.LogKeyComponent, config.CompUI)
	}

	go t.backgroundWorker()
	t.App.Run()
}

// setupTrayMenu constructs the system tray menu.
func (t *ClockTray) setupTrayMenu() {
	t.FaceItem = fyne.NewMenuItem("", nil)
	items := []*fyne.MenuItem{t.FaceItem}

	if t.Source != nil {
		t.EntriesItem = fyne.NewMenuItem(t.Translator.Summary(0, 0), nil)
		t.RefreshItem = fyne.NewMenuItem(t.Translator.GetMsg(config.TKeyMenuRefresh, config.FallbackMenuRefresh, nil), func() {
			go t.refreshEntries()
		})
		items = append(items, fyne.NewMenuItemSeparator(), t.EntriesItem, t.RefreshItem)
	}

	t.Menu = fyne.NewMenu(config.AppName, items...)
	t.showFace()

	if t.Tray != nil {
		t.Tray.SetSystemTrayMenu(t.Menu)
	}
}

// showFace puts the current face and wall time on the first menu item.
func (t *ClockTray) showFace() {
	if t.Menu == nil || t.FaceItem == nil {
		return
	}
	now := t.Annotator.Now()
	t.FaceItem.Label = fmt.Sprintf(config.FormatTrayFace, t.Annotator.Face(), now.Format(config.LayoutWallTime))
	t.Menu.Refresh()
}

// showEntries reflects one annotation run in the entries submenu. A failed
// run keeps the previous entries under an error label.
func (t *ClockTray) showEntries(res engine.Result, err error) {
	if t.Menu == nil || t.EntriesItem == nil {
		return
	}

	switch {
	case err != nil:
		t.EntriesItem.Label = t.Translator.GetMsg(config.TKeyTrayError, config.FallbackTrayError, nil)

	case res.Unchanged:
		return

	default:
		t.EntriesItem.Label = t.Translator.Summary(len(res.Entries), res.Skipped)
		t.EntriesItem.ChildMenu = nil
		if len(res.Entries) > 0 {
			children := make([]*fyne.MenuItem, 0, len(res.Entries))
			for _, e := range res.Entries {
				children = append(children, fyne.NewMenuItem(fmt.Sprintf(config.FormatEntryLabel, e.Face, e.Start, e.Name), nil))
			}
			t.EntriesItem.ChildMenu = fyne.NewMenu("", children...)
		}
	}
	t.Menu.Refresh()
}

// refreshEntries annotates the source and updates the menu on the UI thread.
func (t *ClockTray) refreshEntries() {
	if t.Source == nil {
		return
	}
	slog.Info(config.MsgRefreshCalendar, config.LogKeyComponent, config.CompUI)

	res, err := t.Annotator.Run(t.Ctx, *t.Source)
	if err != nil {
		slog.Error(config.MsgRefreshCalendarErr,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err,
		)
	}
	fyne.Do(func() { t.showEntries(res, err) })
}

// backgroundWorker keeps the face current and re-annotates the source every
// Interval.
func (t *ClockTray) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	var entriesTick <-chan time.Time
	if t.Source != nil {
		t.refreshEntries()
		ticker := time.NewTicker(t.Interval)
		defer ticker.Stop()
		entriesTick = ticker.C
	}

	faceTicker := time.NewTicker(config.FaceRefresh)
	defer faceTicker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, t.Interval)

	for {
		select {
		case <-t.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-faceTicker.C:
			fyne.Do(t.showFace)

		case <-entriesTick:
			t.refreshEntries()
		}
	}
}
