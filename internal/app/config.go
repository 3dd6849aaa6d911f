package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/rf2kit/internal/config"
)

const (
	CommandCreate = "create"
	CommandDiff   = "diff"
)

// DefaultOutDir is where releases are created when no output directory is given.
const DefaultOutDir = "target"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command   string
	SpecPaths []string // hcl files or directories

	// create
	Sources []string
	OutDir  string
	Release config.Release // overrides of the specification's release fields
	Archive bool

	// diff
	Base    string
	Compare string

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandCreate:
		if cfg.OutDir == "" {
			cfg.OutDir = DefaultOutDir
		}
	case CommandDiff:
		if cfg.Base == "" || cfg.Compare == "" {
			return nil, errors.New("diff requires both a base and a compare path")
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("WorkerCount cannot be negative")
	}
	return &cfg, nil
}
