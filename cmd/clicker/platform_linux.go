//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"autoclick/internal/adapters/linuxinput"
	"autoclick/internal/adapters/x11input"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "hook", "x11", "evdev":
		return backend, nil
	case "wayland":
		return "evdev", nil
	default:
		return "", fmt.Errorf("invalid --backend %q (linux supports auto|hook|x11|evdev)", value)
	}
}

func listInputDevices(_ string) error {
	devices, err := linuxinput.ListInputDevices()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		virtualTag := "physical"
		if dev.IsVirtual {
			virtualTag = "virtual"
		}
		kinds := make([]string, 0, 2)
		if dev.IsKeyboard {
			kinds = append(kinds, "keyboard")
		}
		if dev.IsPointer {
			kinds = append(kinds, "pointer")
		}
		if len(kinds) == 0 {
			kinds = append(kinds, "other")
		}
		fmt.Printf("%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag, strings.Join(kinds, "+"))
	}
	return nil
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend. For evdev grant access to /dev/input and write access to /dev/uinput (udev rule or the input group). On X11 ensure an active X11 session and DISPLAY is set."
}

func openBackend(cfg config, logger *slog.Logger) (*backend, error) {
	switch resolveLinuxBackend(cfg.backend) {
	case "x11":
		return openX11Backend(cfg, logger)
	case "hook":
		return openHookBackend(logger)
	default:
		return openEvdevBackend(cfg, logger)
	}
}

func openX11Backend(cfg config, logger *slog.Logger) (*backend, error) {
	if len(cfg.devicePaths) > 0 {
		logger.Warn("--device is ignored on X11 backend")
	}

	runtime, err := x11input.NewRuntime(logger)
	if err != nil {
		return nil, err
	}
	if err := runtime.Start(); err != nil {
		runtime.Stop()
		return nil, err
	}

	return &backend{
		name:     "x11",
		injector: runtime,
		pointer:  runtime,
		global:   runtime,
		gate:     grantedGate{},
		stop:     runtime.Stop,
	}, nil
}

func openEvdevBackend(cfg config, logger *slog.Logger) (*backend, error) {
	runtime, err := linuxinput.NewRuntime(linuxinput.RuntimeConfig{DevicePaths: cfg.devicePaths}, logger)
	if err != nil {
		return nil, err
	}
	if err := runtime.Start(); err != nil {
		runtime.Stop()
		return nil, err
	}

	tracked := &trackedPointer{}
	return &backend{
		name:     "evdev",
		injector: runtime.Injector(),
		pointer:  tracked,
		global:   runtime.Monitors(),
		gate:     linuxinput.PermissionGate{},
		stop:     runtime.Stop,
		tracked:  tracked,
	}, nil
}

func resolveLinuxBackend(configured string) string {
	choice := strings.ToLower(strings.TrimSpace(configured))
	if choice == "" {
		choice = "auto"
	}
	if choice != "auto" {
		return choice
	}

	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return "evdev"
	case "x11":
		return "x11"
	}

	if strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		return "evdev"
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "evdev"
}
