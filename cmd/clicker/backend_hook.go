package main

import (
	"log/slog"

	"autoclick/internal/adapters/hookinput"
	"autoclick/internal/adapters/macaccess"
)

func openHookBackend(logger *slog.Logger) (*backend, error) {
	runtime, err := hookinput.NewRuntime(logger)
	if err != nil {
		return nil, err
	}
	if err := runtime.Start(); err != nil {
		runtime.Stop()
		return nil, err
	}

	return &backend{
		name:     "hook",
		injector: runtime,
		pointer:  runtime,
		global:   runtime,
		gate:     macaccess.Gate{Prompt: true},
		stop:     runtime.Stop,
	}, nil
}
