//go:build !linux

package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" || backend == "auto" || backend == "hook" {
		return "hook", nil
	}
	return "", fmt.Errorf("invalid --backend %q (%s supports auto|hook)", value, runtime.GOOS)
}

func listInputDevices(_ string) error {
	return fmt.Errorf("input device listing is not supported on %s", runtime.GOOS)
}

func permissionDeniedHint() string {
	if runtime.GOOS == "darwin" {
		return "Accessibility permission is required. Enable this app under System Settings > Privacy & Security > Accessibility, then start again."
	}
	return "Permission denied opening input backend."
}

func openBackend(cfg config, logger *slog.Logger) (*backend, error) {
	if len(cfg.devicePaths) > 0 {
		logger.Warn("--device is ignored on hook backend")
	}
	return openHookBackend(logger)
}
