package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"autoclick/internal/core/autoclicker"
	"autoclick/internal/history"
	"autoclick/internal/settings"
)

type config struct {
	backend      string
	devicePaths  []string
	settingsPath string
	historyPath  string
	noHistory    bool
	ui           bool
	start        bool
	listDevices  bool
	listRuns     int
	logLevel     slog.Level
	overrides    overrides
}

// overrides are command-line settings applied on top of the stored ones.
// Nil fields were not given.
type overrides struct {
	count    *int
	interval *float64
	unit     *autoclicker.IntervalUnit
	button   *autoclicker.Button
	position *autoclicker.Point
}

func (o overrides) apply(s *autoclicker.Settings) {
	if o.count != nil {
		s.ClickCount = *o.count
	}
	if o.interval != nil {
		s.Interval = *o.interval
	}
	if o.unit != nil {
		s.IntervalUnit = *o.unit
	}
	if o.button != nil {
		s.Button = *o.button
	}
	if o.position != nil {
		s.PositionMode = autoclicker.PositionFixed
		s.FixedX = o.position.X
		s.FixedY = o.position.Y
	}
}

func (o overrides) empty() bool {
	return o.count == nil && o.interval == nil && o.unit == nil && o.button == nil && o.position == nil
}

type lineSinkWriter struct {
	sink  func(line string)
	mu    sync.Mutex
	lines bytes.Buffer
}

func (w *lineSinkWriter) Write(p []byte) (int, error) {
	if w.sink == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx == -1 {
			_, _ = w.lines.Write(p)
			break
		}
		_, _ = w.lines.Write(p[:idx])
		line := strings.TrimSpace(w.lines.String())
		w.lines.Reset()
		if line != "" {
			w.sink(line)
		}
		p = p[idx+1:]
	}
	return total, nil
}

func newSlogLogger(level slog.Level, sink func(line string)) *slog.Logger {
	if !debugLogsEnabled() {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		}))
	}

	out := io.Writer(os.Stderr)
	if sink != nil {
		out = io.MultiWriter(os.Stderr, &lineSinkWriter{sink: sink})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

func debugLogsEnabled() bool {
	return strings.TrimSpace(os.Getenv("DEBUG")) == "1"
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func parsePosition(value string) (autoclicker.Point, error) {
	xRaw, yRaw, ok := strings.Cut(value, ",")
	if !ok {
		return autoclicker.Point{}, fmt.Errorf("invalid --position %q (expected X,Y)", value)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xRaw), 64)
	if err != nil {
		return autoclicker.Point{}, fmt.Errorf("invalid --position x %q: %w", xRaw, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(yRaw), 64)
	if err != nil {
		return autoclicker.Point{}, fmt.Errorf("invalid --position y %q: %w", yRaw, err)
	}
	if x < 0 || y < 0 {
		return autoclicker.Point{}, fmt.Errorf("--position must be >= 0")
	}
	return autoclicker.Point{X: x, Y: y}, nil
}

func parseConfig(args []string) (config, error) {
	cfg := config{}
	flags := flag.NewFlagSet("clicker", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var (
		backendRaw  string
		logLevelRaw string
		devicesRaw  string
		countRaw    int
		intervalRaw float64
		unitRaw     string
		buttonRaw   string
		positionRaw string
		cliMode     bool
	)

	flags.StringVar(&backendRaw, "backend", "auto", "Input backend. Linux: auto|hook|x11|evdev. Others: auto|hook.")
	flags.StringVar(&devicesRaw, "device", "", "Comma-separated input event devices for the evdev backend. Auto-detected if omitted.")
	flags.StringVar(&cfg.settingsPath, "settings", settings.DefaultPath(), "Settings file path.")
	flags.StringVar(&cfg.historyPath, "history", history.DefaultPath(), "Click history database path.")
	flags.BoolVar(&cfg.noHistory, "no-history", false, "Do not record finished runs.")
	flags.IntVar(&countRaw, "count", 0, "Clicks per run (0 = unlimited).")
	flags.Float64Var(&intervalRaw, "interval", 0, "Interval between clicks, in --unit.")
	flags.StringVar(&unitRaw, "unit", "", "Interval unit: milliseconds|seconds.")
	flags.StringVar(&buttonRaw, "button", "", "Mouse button: left|right|middle.")
	flags.StringVar(&positionRaw, "position", "", "Click at a fixed X,Y (top-left origin) instead of the pointer.")
	flags.BoolVar(&cfg.start, "start", false, "Start clicking immediately (terminal mode).")
	flags.BoolVar(&cfg.listDevices, "list-devices", false, "Print available input devices and exit.")
	flags.IntVar(&cfg.listRuns, "list-runs", 0, "Print the N most recent runs and exit.")
	flags.BoolVar(&cfg.ui, "ui", true, "Start desktop GUI (Fyne) by default. Use --ui=false or --cli for terminal mode.")
	flags.BoolVar(&cliMode, "cli", false, "Force terminal mode (disables GUI).")
	flags.StringVar(&logLevelRaw, "log-level", "info", "Log verbosity (default: info). Allowed: debug, info, warning, error.")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if cliMode {
		cfg.ui = false
	}
	if cfg.listRuns < 0 {
		return cfg, fmt.Errorf("--list-runs must be >= 0")
	}

	var parseErr error
	flags.Visit(func(f *flag.Flag) {
		if parseErr != nil {
			return
		}
		switch f.Name {
		case "count":
			if countRaw < 0 {
				parseErr = fmt.Errorf("--count must be >= 0")
				return
			}
			cfg.overrides.count = &countRaw
		case "interval":
			if intervalRaw < 0 {
				parseErr = fmt.Errorf("--interval must be >= 0")
				return
			}
			cfg.overrides.interval = &intervalRaw
		case "unit":
			unit, ok := autoclicker.ParseIntervalUnit(unitRaw)
			if !ok {
				parseErr = fmt.Errorf("invalid --unit %q (expected milliseconds|seconds)", unitRaw)
				return
			}
			cfg.overrides.unit = &unit
		case "button":
			button, ok := autoclicker.ParseButton(buttonRaw)
			if !ok {
				parseErr = fmt.Errorf("invalid --button %q (expected left|right|middle)", buttonRaw)
				return
			}
			cfg.overrides.button = &button
		case "position":
			p, err := parsePosition(positionRaw)
			if err != nil {
				parseErr = err
				return
			}
			cfg.overrides.position = &p
		}
	})
	if parseErr != nil {
		return cfg, parseErr
	}

	for _, path := range strings.Split(devicesRaw, ",") {
		if path = strings.TrimSpace(path); path != "" {
			cfg.devicePaths = append(cfg.devicePaths, path)
		}
	}

	parsedLevel, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return cfg, err
	}
	backendChoice, err := parseBackendChoice(backendRaw)
	if err != nil {
		return cfg, err
	}

	cfg.backend = backendChoice
	cfg.logLevel = parsedLevel
	return cfg, nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) ||
		errors.Is(err, autoclicker.ErrPermissionDenied)
}

func listRuns(path string, limit int, out io.Writer) error {
	db, err := history.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runs, err := db.Recent(ctx, limit)
	if err != nil {
		return err
	}
	total, clicks, err := db.Totals(ctx)
	if err != nil {
		return err
	}

	for _, r := range runs {
		limitText := "unlimited"
		if r.ClickLimit > 0 {
			limitText = strconv.Itoa(r.ClickLimit)
		}
		fmt.Fprintf(out, "%s  %6d clicks  limit=%-9s interval=%gms  %-6s %-13s %-8s %s\n",
			r.StartedAt.Format(time.DateTime), r.Clicks, limitText, r.IntervalMs,
			r.Button, r.PositionMode, r.Reason, r.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(out, "%d runs, %d clicks total\n", total, clicks)
	return nil
}

func runCLI(cfg config, stderr io.Writer) int {
	logger := newSlogLogger(cfg.logLevel, nil)
	s, err := newSession(cfg, logger)
	if err != nil {
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
			return 1
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer s.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	finished := make(chan struct{})
	var finishOnce sync.Once
	unsubscribe := s.ctrl.Subscribe(func(snap autoclicker.Snapshot) {
		if snap.State == autoclicker.StateStopped && snap.Reason == autoclicker.ReasonLimit && cfg.start {
			finishOnce.Do(func() { close(finished) })
		}
	})
	defer unsubscribe()

	if err := s.ctrl.Listen(s.backend.global, nil); err != nil {
		logger.Warn("Global hotkey unavailable", "hotkey", s.ctrl.Binding().Display, "err", err)
	}

	current := s.ctrl.Settings()
	logger.Info("Backend", "name", s.backend.name)
	logger.Info("Hotkey", "binding", s.ctrl.Binding().Display)
	logger.Info("Settings",
		"count", current.ClickCount,
		"interval_ms", current.IntervalMilliseconds(),
		"button", current.Button.String(),
		"position", current.PositionMode.String(),
	)

	if cfg.start {
		if !s.backend.gate.Granted() {
			fmt.Fprintln(stderr, permissionDeniedHint())
			return 1
		}
		s.ctrl.Start()
		fmt.Fprintln(stderr, "Clicking. Press the hotkey to toggle, Ctrl+C to quit.")
	} else {
		fmt.Fprintf(stderr, "Press %s to start or stop clicking, Ctrl+C to quit.\n", s.ctrl.Binding().Display)
	}

	select {
	case <-ctx.Done():
	case <-finished:
	}
	return 0
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.listDevices {
		if err := listInputDevices(cfg.backend); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if cfg.listRuns > 0 {
		if err := listRuns(cfg.historyPath, cfg.listRuns, os.Stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if cfg.ui {
		if err := runUI(cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	return runCLI(cfg, stderr)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
