package hcl

import (
	"context"
	"fmt"

	"github.com/specialistvlad/rf2kit/internal/config"
	"github.com/specialistvlad/rf2kit/internal/ctxlog"
)

// translateRelease converts a decoded release block into the agnostic model.
func (l *Loader) translateRelease(ctx context.Context, r *releaseBlock) (*config.Specification, error) {
	out := &config.Specification{Release: config.Release{
		Product:         r.Product,
		Status:          r.Status,
		Country:         r.Country,
		Namespace:       r.Namespace,
		Date:            r.Date,
		Time:            r.Time,
		ContentSubTypes: r.ContentSubTypes,
	}}
	for _, c := range r.Content {
		content := config.Content{Name: c.Name}
		for _, f := range c.Files {
			spec, err := l.translateFile(ctx, f)
			if err != nil {
				return nil, fmt.Errorf("content %q: file %q: %w", c.Name, f.ContentType, err)
			}
			content.Files = append(content.Files, spec)
		}
		out.Release.Content = append(out.Release.Content, content)
	}
	return out, nil
}

// translateFile converts a file block. data_file defaults to true.
func (l *Loader) translateFile(ctx context.Context, f *fileBlock) (config.FileSpec, error) {
	logger := ctxlog.FromContext(ctx).With("content_type", f.ContentType, "summary", f.Summary)

	dataFile := true
	if f.DataFile != nil {
		dataFile = *f.DataFile
	}
	spec := config.FileSpec{
		ContentType:    f.ContentType,
		FileType:       f.FileType,
		Summary:        f.Summary,
		LanguageCode:   f.LanguageCode,
		Header:         f.Header,
		Dependencies:   f.Dependencies,
		DataFile:       dataFile,
		ContentSubType: f.ContentSubType,
		Extension:      f.Extension,
	}

	var err error
	if spec.Inclusions, err = l.translateFilters(ctx, f.Include); err != nil {
		return config.FileSpec{}, fmt.Errorf("include: %w", err)
	}
	if spec.Exclusions, err = l.translateFilters(ctx, f.Exclude); err != nil {
		return config.FileSpec{}, fmt.Errorf("exclude: %w", err)
	}
	logger.Debug("Translated file specification.", "data_file", dataFile, "inclusions", len(spec.Inclusions), "exclusions", len(spec.Exclusions))
	return spec, nil
}

func (l *Loader) translateFilters(ctx context.Context, blocks []*filterBlock) ([]config.Filter, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	out := make([]config.Filter, 0, len(blocks))
	for _, b := range blocks {
		if b == nil || b.Body == nil {
			continue
		}
		attrs, diags := b.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, diags
		}
		filter := make(config.Filter, len(attrs))
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			s, err := l.converter.toString(ctx, val)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			filter[name] = s
		}
		out = append(out, filter)
	}
	return out, nil
}
