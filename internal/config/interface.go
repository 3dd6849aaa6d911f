package config

import "context"

// Loader is the interface for a format-specific specification loader.
type Loader interface {
	// Load reads the specification documents found at the given paths, merges
	// them over the built-in default specification and returns the result.
	Load(ctx context.Context, paths ...string) (*Specification, error)
}
