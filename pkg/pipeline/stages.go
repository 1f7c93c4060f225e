package pipeline

import (
	"bytes"
	"context"

	"github.com/vincent-petithory/dataurl"

	"github.com/camalot/fyles/pkg/errors"
	"github.com/camalot/fyles/pkg/pack"
	"github.com/camalot/fyles/pkg/sink"
	"github.com/camalot/fyles/pkg/stylesheet"
)

// Finalize resolves duplicate groups and seals the catalog.
func (r *Runner) Finalize(ctx context.Context, st *State) {
	done := stage(ctx, StageFinalize)
	logger := st.Options.Logger

	st.Groups = st.Catalog.Finalize()
	for _, g := range st.Groups {
		logger.Debug("adding group", "survivor", g.Survivor, "members", len(g.Members))
	}
	st.Stats.Entries = st.Catalog.Len()
	st.Stats.Groups = len(st.Groups)
	st.Stats.Members = st.Catalog.Members()

	st.Stats.FinalizeTime = done(len(st.Groups), nil)
	logger.Info("resolved duplicates",
		"groups", st.Stats.Groups,
		"members", st.Stats.Members,
		"entries", st.Stats.Entries,
		"duration", st.Stats.FinalizeTime)
}

// Pack places the surviving entries and composites the sprite.
func (r *Runner) Pack(ctx context.Context, st *State) error {
	done := stage(ctx, StagePack)
	logger := st.Options.Logger

	st.Layout = pack.Pack(st.Catalog.Keys(), st.Options.PackOptions()...)
	for _, p := range st.Layout.Positions {
		logger.Debug("adding to sprite", "key", p.Key, "x", p.X, "y", p.Y)
	}

	sprite, err := pack.Composite(st.Layout, st.Catalog)
	if err != nil {
		done(0, err)
		return errors.Wrap(errors.ErrCodeInternal, err, "composite sprite")
	}
	st.Sprite = sprite
	st.Stats.CanvasWidth = st.Layout.CanvasWidth
	st.Stats.CanvasHeight = st.Layout.CanvasHeight
	st.Stats.Overflow = len(st.Layout.Overflow())

	st.Stats.PackTime = done(len(st.Layout.Positions), nil)
	logger.Info("packed sprite",
		"width", st.Layout.CanvasWidth,
		"height", st.Layout.CanvasHeight,
		"positions", len(st.Layout.Positions),
		"duration", st.Stats.PackTime)
	if st.Stats.Overflow > 0 {
		logger.Warn("sprite canvas is too small for its icons; they will be clipped",
			"clipped", st.Stats.Overflow,
			"row_rounding", st.Options.RowRounding)
	}
	return nil
}

// Style generates the stylesheet.
func (r *Runner) Style(ctx context.Context, st *State) error {
	done := stage(ctx, StageStyle)
	o := st.Options

	opts := []stylesheet.Option{stylesheet.WithNamespace(o.Namespace)}
	switch {
	case o.InlineImage:
		u, err := inlineURL(st)
		if err != nil {
			done(0, err)
			return err
		}
		opts = append(opts, stylesheet.WithImageURL(u))
	case o.ImageURL != "":
		opts = append(opts, stylesheet.WithImageURL(o.ImageURL))
	}
	if o.CompatCSS {
		opts = append(opts, stylesheet.WithCompat())
	}

	st.Sheet = stylesheet.Generate(st.Layout, st.Groups, opts...)
	st.CSS = st.Sheet.Bytes()
	st.Stats.Rules = len(st.Sheet.Rules)
	st.Stats.Fallbacks = len(st.Sheet.Fallbacks)

	st.Stats.StyleTime = done(st.Sheet.Len(), nil)
	o.Logger.Info("generated stylesheet",
		"rules", st.Stats.Rules,
		"fallbacks", st.Stats.Fallbacks,
		"bytes", len(st.CSS),
		"duration", st.Stats.StyleTime)
	return nil
}

func inlineURL(st *State) (string, error) {
	var buf bytes.Buffer
	if err := sink.EncodePNG(&buf, st.Sprite, st.Options.Palette); err != nil {
		return "", errors.Wrap(errors.ErrCodeOutputWrite, err, "encode inline sprite")
	}
	return dataurl.New(buf.Bytes(), "image/png").String(), nil
}

// Write hands the artifacts to the sink.
func (r *Runner) Write(ctx context.Context, st *State) error {
	done := stage(ctx, StageWrite)

	a := sink.Artifacts{Sprite: st.Sprite, CSS: st.CSS}
	for _, e := range st.Catalog.Entries() {
		a.Icons = append(a.Icons, sink.Icon{Name: e.Key.String(), Image: e.Image})
	}

	if err := r.Sink.Write(ctx, a); err != nil {
		done(0, err)
		if code := errors.GetCode(err); code == "" || !code.Fatal() {
			err = errors.Wrap(errors.ErrCodeOutputWrite, err, "write artifacts")
		}
		return err
	}

	st.Stats.WriteTime = done(len(a.Icons), nil)
	st.Options.Logger.Info("wrote artifacts",
		"run", st.RunID,
		"icons", len(a.Icons),
		"css_bytes", len(st.CSS),
		"duration", st.Stats.WriteTime)
	return nil
}
