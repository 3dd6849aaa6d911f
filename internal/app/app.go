package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	spec   *config.Specification
	now    func() time.Time
}

// NewApp loads the release specification and returns a ready App. Reports
// and created paths go to outW, log lines to logW.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	spec, err := loader.Load(ctx, appConfig.SpecPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load specification: %w", err)
	}
	spec = spec.WithRelease(appConfig.Release)
	logger.Debug("Specification loaded.", "content", len(spec.Release.Content), "sub_types", spec.Release.ContentSubTypes)

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		spec:   spec,
		now:    time.Now,
	}, nil
}

// Specification returns the merged specification. This is primarily for testing.
func (a *App) Specification() *config.Specification {
	return a.spec
}
