package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"autoclick/internal/core/autoclicker"
)

const (
	positionCurrentLabel = "Current mouse"
	positionFixedLabel   = "Fixed position"
)

type clickerTheme struct {
	base fyne.Theme
}

func newClickerTheme() fyne.Theme {
	return &clickerTheme{base: theme.DarkTheme()}
}

func (t *clickerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x0d, G: 0x10, B: 0x14, A: 0xff}
	case theme.ColorNameHeaderBackground:
		return color.NRGBA{R: 0x12, G: 0x16, B: 0x1c, A: 0xff}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x1d, G: 0x23, B: 0x2c, A: 0xff}
	case theme.ColorNameDisabledButton:
		return color.NRGBA{R: 0x16, G: 0x1a, B: 0x20, A: 0xff}
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x13, G: 0x18, B: 0x1f, A: 0xff}
	case theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return color.NRGBA{R: 0x2b, G: 0x33, B: 0x40, A: 0xff}
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return color.NRGBA{R: 0x5a, G: 0xa9, B: 0xff, A: 0xff}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0x7a, G: 0xba, B: 0xff, A: 0x66}
	case theme.ColorNameHover:
		return color.NRGBA{R: 0x7a, G: 0xba, B: 0xff, A: 0x22}
	case theme.ColorNamePressed:
		return color.NRGBA{R: 0x7a, G: 0xba, B: 0xff, A: 0x40}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x5a, G: 0xa9, B: 0xff, A: 0x44}
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xf2, G: 0xf4, B: 0xf8, A: 0xff}
	case theme.ColorNamePlaceHolder:
		return color.NRGBA{R: 0xa9, G: 0xb3, B: 0xc2, A: 0xff}
	case theme.ColorNameError:
		return color.NRGBA{R: 0xff, G: 0x82, B: 0x82, A: 0xff}
	case theme.ColorNameWarning:
		return color.NRGBA{R: 0xff, G: 0x9f, B: 0x5a, A: 0xff}
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 0x7f, G: 0xd4, B: 0xa8, A: 0xff}
	}
	return t.base.Color(name, variant)
}

func (t *clickerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *clickerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *clickerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInnerPadding:
		return 8
	case theme.SizeNameInputRadius:
		return 8
	}
	return t.base.Size(name)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// syncEntry rewrites an entry only when its parsed value differs, so typing
// "1." or "0010" is not clobbered by the echo of its own update.
func syncEntry(entry *hubEntry, value float64) {
	current, err := strconv.ParseFloat(strings.TrimSpace(entry.Text), 64)
	if err == nil && current == value {
		return
	}
	entry.SetText(formatNumber(value))
}

func statusLine(snap autoclicker.Snapshot) string {
	switch {
	case snap.Picking:
		return "Picking position..."
	case snap.State == autoclicker.StateRunning && snap.Settings.ClickCount > 0:
		return fmt.Sprintf("Running: %d / %d clicks", snap.ClickCount, snap.Settings.ClickCount)
	case snap.State == autoclicker.StateRunning:
		return fmt.Sprintf("Running: %d clicks", snap.ClickCount)
	}
	switch snap.Reason {
	case autoclicker.ReasonLimit:
		return "Stopped: click limit reached"
	case autoclicker.ReasonHotkey:
		return "Stopped by hotkey"
	}
	return "Stopped"
}

func runUI(cfg config) error {
	fApp := app.New()
	fApp.Settings().SetTheme(newClickerTheme())

	window := fApp.NewWindow("Auto-Clicker")
	window.Resize(fyne.NewSize(560, 520))
	window.SetFixedSize(true)
	window.CenterOnScreen()

	errorText := canvas.NewText("", nil)
	errorText.Color = theme.Color(theme.ColorNameError)
	setError := func(text string) {
		errorText.Text = text
		errorText.Refresh()
	}

	statusText := widget.NewLabel("Initializing...")
	statusText.TextStyle = fyne.TextStyle{Bold: true}
	historyText := widget.NewLabel("")

	logGrid := widget.NewTextGrid()
	logScroll := container.NewVScroll(logGrid)
	logScroll.SetMinSize(fyne.NewSize(0, 150))

	const maxUILogLines = 50
	var logMu sync.Mutex
	logLines := make([]string, 0, maxUILogLines)
	debugLogs := debugLogsEnabled()
	appendLogLine := func(line string) {
		if !debugLogs {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return
		}

		logMu.Lock()
		logLines = append(logLines, line)
		if len(logLines) > maxUILogLines {
			logLines = logLines[len(logLines)-maxUILogLines:]
		}
		logText := strings.Join(logLines, "\n")
		logMu.Unlock()

		fyne.Do(func() {
			logGrid.SetText(logText)
			logScroll.ScrollToBottom()
		})
	}

	hub := newLocalHub()
	hub.attach(window.Canvas())

	countEntry := newHubEntry(hub)
	countEntry.SetPlaceHolder("0 = unlimited")
	intervalEntry := newHubEntry(hub)
	unitSelect := widget.NewSelect([]string{
		autoclicker.UnitMilliseconds.String(),
		autoclicker.UnitSeconds.String(),
	}, nil)
	buttonSelect := widget.NewSelect([]string{
		autoclicker.ButtonLeft.String(),
		autoclicker.ButtonRight.String(),
		autoclicker.ButtonMiddle.String(),
	}, nil)
	positionRadio := widget.NewRadioGroup([]string{positionCurrentLabel, positionFixedLabel}, nil)
	positionRadio.Horizontal = true
	xEntry := newHubEntry(hub)
	yEntry := newHubEntry(hub)
	pickBtn := widget.NewButton("Pick", nil)

	hotkeyLabel := widget.NewLabel("-")
	hotkeyLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	recordBtn := widget.NewButton("Record", nil)
	resetBtn := widget.NewButton("Reset", nil)

	startBtn := widget.NewButton("Start", nil)
	startBtn.Importance = widget.HighImportance
	initProgress := widget.NewProgressBarInfinite()

	controls := []fyne.Disableable{
		countEntry, intervalEntry, unitSelect, buttonSelect, positionRadio,
		xEntry, yEntry, pickBtn, recordBtn, resetBtn, startBtn,
	}
	setControlsEnabled := func(enabled bool) {
		for _, c := range controls {
			if enabled {
				c.Enable()
			} else {
				c.Disable()
			}
		}
	}
	setControlsEnabled(false)

	var (
		stateMu sync.Mutex
		sess    *session
	)
	getSession := func() *session {
		stateMu.Lock()
		defer stateMu.Unlock()
		return sess
	}

	var (
		rendering   bool
		wasRunning  bool
		lastClicks  int
		totalRuns   int
		totalClicks int64
	)
	render := func(snap autoclicker.Snapshot) {
		rendering = true
		defer func() { rendering = false }()

		statusText.SetText(statusLine(snap))
		if snap.State == autoclicker.StateRunning {
			lastClicks = snap.ClickCount
			wasRunning = true
			startBtn.SetText("Stop")
		} else {
			if wasRunning {
				wasRunning = false
				totalRuns++
				totalClicks += int64(lastClicks)
			}
			startBtn.SetText("Start")
		}
		if s := getSession(); s != nil && s.db != nil {
			historyText.SetText(fmt.Sprintf("History: %d runs, %d clicks", totalRuns, totalClicks))
		}

		settings := snap.Settings
		syncEntry(countEntry, float64(settings.ClickCount))
		syncEntry(intervalEntry, settings.Interval)
		unitSelect.SetSelected(settings.IntervalUnit.String())
		buttonSelect.SetSelected(settings.Button.String())
		if settings.PositionMode == autoclicker.PositionFixed {
			positionRadio.SetSelected(positionFixedLabel)
			xEntry.Enable()
			yEntry.Enable()
		} else {
			positionRadio.SetSelected(positionCurrentLabel)
			xEntry.Disable()
			yEntry.Disable()
		}
		syncEntry(xEntry, settings.FixedX)
		syncEntry(yEntry, settings.FixedY)

		if snap.Recording {
			hotkeyLabel.SetText("Press a key combination...")
			recordBtn.SetText("Cancel")
		} else {
			hotkeyLabel.SetText(snap.Binding.Display)
			recordBtn.SetText("Record")
		}
		if snap.Picking {
			pickBtn.Disable()
		} else {
			pickBtn.Enable()
		}
	}

	update := func(fn func(*autoclicker.Settings)) {
		if rendering {
			return
		}
		if s := getSession(); s != nil {
			s.ctrl.UpdateSettings(fn)
		}
	}
	countEntry.OnChanged = func(text string) {
		v, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return
		}
		update(func(s *autoclicker.Settings) { s.ClickCount = v })
	}
	intervalEntry.OnChanged = func(text string) {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return
		}
		update(func(s *autoclicker.Settings) { s.Interval = v })
	}
	unitSelect.OnChanged = func(text string) {
		if unit, ok := autoclicker.ParseIntervalUnit(text); ok {
			update(func(s *autoclicker.Settings) { s.IntervalUnit = unit })
		}
	}
	buttonSelect.OnChanged = func(text string) {
		if button, ok := autoclicker.ParseButton(text); ok {
			update(func(s *autoclicker.Settings) { s.Button = button })
		}
	}
	positionRadio.OnChanged = func(text string) {
		mode := autoclicker.PositionCurrentMouse
		if text == positionFixedLabel {
			mode = autoclicker.PositionFixed
		}
		update(func(s *autoclicker.Settings) { s.PositionMode = mode })
	}
	xEntry.OnChanged = func(text string) {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return
		}
		update(func(s *autoclicker.Settings) { s.FixedX = v })
	}
	yEntry.OnChanged = func(text string) {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return
		}
		update(func(s *autoclicker.Settings) { s.FixedY = v })
	}

	startBtn.OnTapped = func() {
		s := getSession()
		if s == nil {
			return
		}
		if s.ctrl.Snapshot().State == autoclicker.StateRunning {
			s.ctrl.Stop()
			return
		}
		if !s.backend.gate.Granted() {
			setError(permissionDeniedHint())
			appendLogLine("ERROR " + permissionDeniedHint())
			return
		}
		setError("")
		s.ctrl.Start()
	}

	recordBtn.OnTapped = func() {
		s := getSession()
		if s == nil {
			return
		}
		if s.ctrl.Snapshot().Recording {
			s.ctrl.CancelRecording()
			return
		}
		window.Canvas().Unfocus()
		s.ctrl.StartRecording()
	}
	resetBtn.OnTapped = func() {
		if s := getSession(); s != nil {
			s.ctrl.ResetHotkey()
		}
	}

	var picker *autoclicker.Picker

	pickBtn.OnTapped = func() {
		s := getSession()
		if s == nil || picker == nil {
			return
		}
		if err := s.ctrl.PickPosition(picker); err != nil {
			setError(err.Error())
		}
	}

	startSession := func() error {
		logger := newSlogLogger(cfg.logLevel, appendLogLine)
		s, err := newSession(cfg, logger)
		if err != nil {
			return err
		}

		global, foreground := muteWhileForeground(s.backend.global,
			func() bool { return keysReachHub(window.Canvas()) },
			hub.resetModifiers)
		fApp.Lifecycle().SetOnEnteredForeground(func() {
			foreground.Store(true)
		})
		fApp.Lifecycle().SetOnExitedForeground(func() {
			foreground.Store(false)
			hub.resetModifiers()
		})

		surface := &pickerSurface{app: fApp, main: window, hub: hub, tracked: s.backend.tracked}
		p, err := autoclicker.NewPicker(autoclicker.PickerConfig{
			Executor: s.loop,
			Surface:  surface,
			Pointer:  s.backend.pointer,
			Global:   global,
			Local:    hub,
			Logger:   logger,
		})
		if err != nil {
			s.Close()
			return err
		}
		surface.cancel = p.Cancel
		s.picker = p

		if err := s.ctrl.Listen(global, hub); err != nil {
			logger.Warn("Global hotkey unavailable", "hotkey", s.ctrl.Binding().Display, "err", err)
			appendLogLine("WARNING global hotkey unavailable: " + err.Error())
		}

		if s.db != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			runs, clicks, err := s.db.Totals(ctx)
			cancel()
			if err != nil {
				logger.Warn("Failed to read history totals", "err", err)
			}
			fyne.DoAndWait(func() {
				totalRuns = runs
				totalClicks = clicks
			})
		}

		stateMu.Lock()
		sess = s
		stateMu.Unlock()

		s.unsubscribe = append(s.unsubscribe, s.ctrl.Subscribe(func(snap autoclicker.Snapshot) {
			fyne.Do(func() { render(snap) })
		}))
		fyne.Do(func() {
			picker = p
			setControlsEnabled(true)
			render(s.ctrl.Snapshot())
		})
		logger.Info("Backend", "name", s.backend.name)
		return nil
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			if s := getSession(); s != nil {
				s.Close()
			}
		})
	}

	quit := func() {
		cleanup()
		if currentApp := fyne.CurrentApp(); currentApp != nil {
			currentApp.Quit()
			return
		}
		window.SetCloseIntercept(nil)
		window.Close()
	}

	go func() {
		<-sigCh
		fyne.Do(quit)
	}()

	// Some GUI backends can leave Ctrl+C as raw ETX byte instead of SIGINT.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 && buf[0] == 3 {
				fyne.Do(quit)
				return
			}
		}
	}()

	window.SetCloseIntercept(quit)

	titleText := canvas.NewText("AUTO-CLICKER", color.NRGBA{R: 0x5a, G: 0xa9, B: 0xff, A: 0xff})
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 26

	accentLine := canvas.NewRectangle(color.NRGBA{R: 0x5a, G: 0xa9, B: 0xff, A: 0xff})
	accentLine.SetMinSize(fyne.NewSize(220, 3))

	clickForm := widget.NewForm(
		widget.NewFormItem("Clicks", countEntry),
		widget.NewFormItem("Interval", container.NewGridWithColumns(2, intervalEntry, unitSelect)),
		widget.NewFormItem("Button", buttonSelect),
	)
	positionForm := container.NewVBox(
		positionRadio,
		container.NewGridWithColumns(3,
			container.NewBorder(nil, nil, widget.NewLabel("X"), nil, xEntry),
			container.NewBorder(nil, nil, widget.NewLabel("Y"), nil, yEntry),
			pickBtn,
		),
	)
	hotkeyRow := container.NewBorder(nil, nil, nil, container.NewHBox(recordBtn, resetBtn), hotkeyLabel)

	mainContent := container.NewVBox(
		titleText,
		accentLine,
		widget.NewCard("Clicking", "", clickForm),
		widget.NewCard("Position", "", positionForm),
		widget.NewCard("Hotkey", "", hotkeyRow),
		container.NewBorder(nil, nil, statusText, historyText, nil),
		errorText,
		initProgress,
		startBtn,
	)
	mainPanel := container.NewPadded(mainContent)

	var rootContent fyne.CanvasObject = mainPanel
	if debugLogs {
		logsCard := widget.NewCard("Logs", "", logScroll)
		split := container.NewVSplit(mainPanel, logsCard)
		split.SetOffset(0.72)
		rootContent = split
		window.Resize(fyne.NewSize(560, 720))
	}

	appendLogLine("INFO Initializing input backend...")
	go func() {
		err := startSession()
		fyne.Do(func() {
			initProgress.Hide()
			if err == nil {
				appendLogLine("INFO Initialization complete")
				return
			}
			switch {
			case isPermissionError(err):
				setError(permissionDeniedHint())
			case errors.Is(err, syscall.EBUSY):
				setError("Input device is in use by another app. Close the other app and try again.")
			default:
				setError(err.Error())
			}
			statusText.SetText("Unavailable")
			appendLogLine("ERROR " + errorText.Text)
		})
	}()

	window.SetContent(rootContent)
	window.ShowAndRun()
	cleanup()
	return nil
}
