package hcl

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/ctxlog"
)

//go:embed default_spec.hcl
var defaultSpec []byte

const defaultSpecName = "default_spec.hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	converter converter
}

// NewLoader creates a new HCL specification loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Default returns the built-in specification.
func (l *Loader) Default(ctx context.Context) (*config.Specification, error) {
	return l.Parse(ctx, defaultSpecName, defaultSpec)
}

// Load merges every .hcl document found at paths, in order, over the
// built-in specification and validates the result. Directories are walked
// recursively.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Specification, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	spec, err := l.Default(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load default specification: %w", err)
	}

	hclFiles, err := l.findAllHCLFiles(logger, paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	for _, file := range hclFiles {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read HCL file %s: %w", file, err)
		}
		user, err := l.Parse(ctx, file, src)
		if err != nil {
			return nil, err
		}
		spec = spec.Merge(user)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "files", len(hclFiles), "content", len(spec.Release.Content))
	return spec, nil
}

// Parse decodes a single document. Release blocks are merged in order of
// appearance. The result is not validated.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.Specification, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	spec := &config.Specification{}
	for _, r := range root.Releases {
		translated, err := l.translateRelease(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", filename, err)
		}
		spec = spec.Merge(translated)
	}
	return spec, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(logger *slog.Logger, paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("Specification path does not exist, skipping.", "path", path)
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}
