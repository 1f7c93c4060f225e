package pipeline

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/camalot/fyles/pkg/catalog"
	"github.com/camalot/fyles/pkg/errors"
	"github.com/camalot/fyles/pkg/icon"
	"github.com/camalot/fyles/pkg/observability"
)

// Extract queries the source for every registered extension, followed by the
// DEFAULT sentinel, at every size class, and adds the surviving icons to the
// catalog. Each (extension, size class) pair is attempted exactly once.
//
// No failure aborts extraction: a registry error leaves only the DEFAULT
// sentinel to process, and per-pair failures are counted and skipped.
func (r *Runner) Extract(ctx context.Context, st *State) {
	done := stage(ctx, StageExtract)
	logger := st.Options.Logger

	exts, err := r.Registry.Extensions(ctx)
	if err != nil {
		logger.Warn("listing extensions failed",
			"error", errors.Wrap(errors.ErrCodeSourceUnavailable, err, "registry"))
		exts = nil
	}

	valid := make([]string, 0, len(exts)+1)
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if icon.IsDefault(ext) {
			continue
		}
		if err := errors.ValidateExtension(ext); err != nil {
			logger.Warn("skipping extension", "error", err)
			continue
		}
		// Selectors are lower-case, so ".TXT" and ".txt" share one key.
		k := keyExtension(ext)
		if seen[k] {
			logger.Debug("skipping repeated extension", "ext", ext)
			continue
		}
		seen[k] = true
		valid = append(valid, ext)
	}
	valid = append(valid, icon.DefaultExtension)
	st.Stats.Extensions = len(valid)

	hooks := observability.Extract()
	for i, ext := range valid {
		hooks.OnExtensionStart(ctx, ext, i, len(valid))
		for _, size := range icon.SizeClasses {
			outcome := r.extractOne(ctx, st, ext, size)
			st.Stats.count(outcome)
			hooks.OnIcon(ctx, ext, size.String(), outcome)
		}
	}

	st.Stats.ExtractTime = done(st.Catalog.Len(), nil)
	logger.Info("extracted icons",
		"run", st.RunID,
		"extensions", st.Stats.Extensions,
		"entries", st.Catalog.Len(),
		"not_found", st.Stats.NotFound,
		"oversized", st.Stats.Oversized,
		"failed", st.Stats.SourceErrors+st.Stats.EncodingFailures,
		"duration", st.Stats.ExtractTime)
}

func (r *Runner) extractOne(ctx context.Context, st *State, ext string, size icon.SizeClass) observability.Outcome {
	logger := st.Options.Logger

	v, err := r.Source.Icon(ctx, ext, size)
	switch {
	case stderrors.Is(err, icon.ErrNotFound), err == nil && v == nil:
		logger.Debug("no icon", "ext", ext, "size", size)
		return observability.OutcomeNotFound
	case err != nil:
		logger.Warn("icon source failed", "ext", ext, "size", size,
			"error", errors.Wrap(errors.ErrCodeSourceUnavailable, err, "extract %s/%s", ext, size))
		return observability.OutcomeSourceError
	}

	if v.Width > st.Options.MaxSize {
		logger.Debug("icon too large", "ext", ext, "size", size, "width", v.Width, "max", st.Options.MaxSize)
		return observability.OutcomeOversized
	}
	if !v.Valid() {
		logger.Warn("invalid icon", "ext", ext, "size", size,
			"error", errors.New(errors.ErrCodeEncodingFailure, "icon is %dx%d", v.Width, v.Height))
		return observability.OutcomeEncoding
	}

	key := catalog.KeyFor(keyExtension(ext), v.Width)
	added, err := st.Catalog.Add(key, v.Image)
	if err != nil {
		logger.Warn("cannot encode icon", "key", key, "error", err)
		return observability.OutcomeEncoding
	}
	if !added {
		logger.Debug("icon already extracted", "key", key, "size", size)
		return observability.OutcomeRepeated
	}
	logger.Debug("saving icon", "key", key)
	return observability.OutcomeAdded
}

// keyExtension folds ext to the case used for catalog keys. The DEFAULT
// sentinel keeps its spelling.
func keyExtension(ext string) string {
	if icon.IsDefault(ext) {
		return ext
	}
	return strings.ToLower(ext)
}

func (s *Stats) count(o observability.Outcome) {
	s.Attempts++
	switch o {
	case observability.OutcomeAdded:
		s.Added++
	case observability.OutcomeRepeated:
		s.Repeated++
	case observability.OutcomeNotFound:
		s.NotFound++
	case observability.OutcomeSourceError:
		s.SourceErrors++
	case observability.OutcomeOversized:
		s.Oversized++
	case observability.OutcomeEncoding:
		s.EncodingFailures++
	}
}
