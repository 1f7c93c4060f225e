// Package pipeline drives the icon sprite pipeline for fyles.
//
// This package implements the complete extract → finalize → pack → style →
// write pipeline used by the CLI. A run is strictly sequential and owns all
// of its intermediate data through an explicit [State].
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Extract: query the icon source for every extension and size class
//  2. Finalize: resolve pixel-identical icons into duplicate groups
//  3. Pack: place the surviving icons and composite the sprite
//  4. Style: generate the stylesheet rules
//  5. Write: hand sprite, stylesheet and icons to the output sink
//
// Per-icon failures never abort a run. Only an output failure, or invalid
// options before the run starts, is returned as an error.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	src, _ := dir.New("icons")
//	runner := pipeline.NewRunner(src, src, sink.NewFileSink("fyles.png", "fyles.css"), logger)
//	state, err := runner.Execute(ctx, pipeline.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(state.Stats.Entries, "icons packed")
//
// Run without writing, for previews and inspection:
//
//	state, err := runner.Render(ctx, opts)
package pipeline

import (
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/camalot/fyles/pkg/catalog"
	"github.com/camalot/fyles/pkg/errors"
	"github.com/camalot/fyles/pkg/pack"
	"github.com/camalot/fyles/pkg/stylesheet"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxSize is the largest icon width kept, in pixels.
	DefaultMaxSize = 48

	// DefaultSlotsPerRow is the number of width-set copies per sprite row.
	DefaultSlotsPerRow = pack.DefaultSlotsPerRow

	// DefaultPadding is the gap after every icon, in pixels.
	DefaultPadding = pack.DefaultPadding

	// DefaultNamespace is the stylesheet class prefix.
	DefaultNamespace = stylesheet.DefaultNamespace
)

// Stage names, as reported to observability hooks.
const (
	StageExtract  = "extract"
	StageFinalize = "finalize"
	StagePack     = "pack"
	StageStyle    = "style"
	StageWrite    = "write"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Extraction
	MaxSize int `json:"max_size,omitempty"`

	// Packing
	SlotsPerRow int    `json:"slots_per_row,omitempty"`
	Padding     int    `json:"padding"`
	RowRounding string `json:"row_rounding,omitempty"` // "nearest" (default) or "ceil"

	// Stylesheet
	Namespace   string `json:"namespace,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	InlineImage bool   `json:"inline_image,omitempty"` // embed the sprite as a data: URL
	CompatCSS   bool   `json:"compat_css,omitempty"`

	// Output
	Palette int `json:"palette,omitempty"` // 0 keeps full color

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// DefaultOptions returns the options of a default run.
func DefaultOptions() Options {
	return Options{
		MaxSize:     DefaultMaxSize,
		SlotsPerRow: DefaultSlotsPerRow,
		Padding:     DefaultPadding,
		RowRounding: string(pack.RoundHalfEven),
		Namespace:   DefaultNamespace,
	}
}

// ValidateAndSetDefaults checks ranges and fills unset fields.
// Padding is taken as given since zero is a valid gap.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.MaxSize == 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.MaxSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_size must be positive, got %d", o.MaxSize)
	}
	if o.SlotsPerRow == 0 {
		o.SlotsPerRow = DefaultSlotsPerRow
	}
	if o.SlotsPerRow < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "slots_per_row must be positive, got %d", o.SlotsPerRow)
	}
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "padding must be >= 0, got %d", o.Padding)
	}
	r, err := pack.ParseRounding(o.RowRounding)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid row_rounding")
	}
	o.RowRounding = string(r)

	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if err := errors.ValidateNamespace(o.Namespace); err != nil {
		return err
	}
	if o.ImageURL != "" {
		if o.InlineImage {
			return errors.New(errors.ErrCodeInvalidConfig, "image_url and inline_image are mutually exclusive")
		}
		if err := errors.ValidateImageURL(o.ImageURL); err != nil {
			return err
		}
	}
	if o.Palette < 0 || o.Palette > 256 {
		return errors.New(errors.ErrCodeInvalidConfig, "palette must be between 0 and 256, got %d", o.Palette)
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// PackOptions returns the packer options for o.
func (o *Options) PackOptions() []pack.Option {
	return []pack.Option{
		pack.WithSlotsPerRow(o.SlotsPerRow),
		pack.WithPadding(o.Padding),
		pack.WithRounding(pack.Rounding(o.RowRounding)),
	}
}

// =============================================================================
// State - Run Data
// =============================================================================

// State is the data of one run, threaded through every stage.
type State struct {
	// RunID identifies the run in logs.
	RunID string

	Options Options

	// Catalog is filled by Extract and sealed by Finalize.
	Catalog *catalog.Catalog

	// Groups are the duplicate groups found by Finalize.
	Groups []catalog.Group

	// Layout and Sprite are produced by Pack.
	Layout pack.Layout
	Sprite *image.NRGBA

	// Sheet and CSS are produced by Style.
	Sheet *stylesheet.Sheet
	CSS   []byte

	Stats Stats
}

// NewState validates opts and returns an empty run state.
func NewState(opts Options) (*State, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &State{
		RunID:   uuid.NewString(),
		Options: opts,
		Catalog: catalog.New(),
	}, nil
}

// Stats contains run statistics.
type Stats struct {
	// Extraction outcomes. Attempts is the sum of the outcome counters.
	Extensions       int
	Attempts         int
	Added            int
	Repeated         int
	NotFound         int
	SourceErrors     int
	Oversized        int
	EncodingFailures int

	// Catalog
	Entries int
	Groups  int
	Members int

	// Layout
	CanvasWidth  int
	CanvasHeight int
	Overflow     int

	// Stylesheet
	Rules     int
	Fallbacks int

	ExtractTime  time.Duration
	FinalizeTime time.Duration
	PackTime     time.Duration
	StyleTime    time.Duration
	WriteTime    time.Duration
}

// Total returns the combined duration of all stages.
func (s Stats) Total() time.Duration {
	return s.ExtractTime + s.FinalizeTime + s.PackTime + s.StyleTime + s.WriteTime
}
