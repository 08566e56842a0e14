// Package render turns a view and a star catalog into drawing directives.
//
// A frame reads every star in catalog order, drops the ones fainter than the
// view's limiting magnitude, projects the rest and sizes their symbols. A star
// that cannot be read is skipped; it never contributes stale data.
package render

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/litescript/deepskies/internal/astro"
	"github.com/litescript/deepskies/internal/catalog"
	"github.com/litescript/deepskies/internal/logging"
)

const (
	MinSymbolSize = 1.0
	MaxSymbolSize = 8.0

	// sizeCeiling caps the limiting magnitude used for symbol sizing.
	sizeCeiling = 15.0

	// labelMargin is how much brighter than the limit a star must be to get a label.
	labelMargin = 3.0
)

// Source is random access to stars by 1-based index. *catalog.Catalog
// satisfies it.
type Source interface {
	Count() int
	Read(index int) (catalog.Star, error)
}

// Fingerprinter is implemented by sources that can identify their exact
// contents. A selector is only consulted for such sources.
type Fingerprinter interface {
	Fingerprint() (string, error)
}

// Selector narrows a frame to candidate indices, in ascending order, whose
// magnitude is at or below limit. ok is false when the selector was not built
// from the source with this fingerprint, and the frame falls back to a full
// scan.
type Selector interface {
	Select(ctx context.Context, limit float64, fingerprint string) (indices []int, ok bool, err error)
}

// Observer is told about every finished frame.
type Observer interface {
	ObserveFrame(Stats)
}

// FailureObserver is optionally implemented by observers that want to know
// about frames aborted by a catalog error.
type FailureObserver interface {
	ObserveFailure(error)
}

// Stats describes one frame.
type Stats struct {
	Considered   int // indices examined
	Drawn        int // directives emitted
	Labeled      int
	Faint        int // skipped by the magnitude limit
	ReadFailures int // skipped because the record could not be read
	Indexed      bool
	Cancelled    bool
	Duration     time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSelector uses sel to pick candidate stars.
func WithSelector(sel Selector) Option {
	return func(r *Renderer) {
		r.selector = sel
	}
}

// WithObserver adds an observer for frame stats.
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		r.observers = append(r.observers, o)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// Renderer produces frames from a Source.
type Renderer struct {
	src       Source
	selector  Selector
	observers []Observer
	logger    *logging.Logger
}

// New returns a Renderer reading from src.
func New(src Source, opts ...Option) *Renderer {
	r := &Renderer{
		src:    src,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Frame returns the directives for v, lazily, in catalog index order. Each
// range over the result re-reads the source, so a frame can be replayed. The
// sequence ends early when ctx is cancelled. v must pass Validate.
func (r *Renderer) Frame(ctx context.Context, v astro.View) iter.Seq[Directive] {
	return func(yield func(Directive) bool) {
		start := time.Now()
		var stats Stats
		defer func() {
			stats.Duration = time.Since(start)
			r.observe(stats)
		}()

		indices, indexed := r.candidates(ctx, v.LimitingMag)
		stats.Indexed = indexed

		total := r.src.Count()
		if indexed {
			total = len(indices)
		}

		for i := 0; i < total; i++ {
			if ctx.Err() != nil {
				stats.Cancelled = true
				return
			}

			index := i + 1
			if indexed {
				index = indices[i]
			}
			stats.Considered++

			star, err := r.src.Read(index)
			if err != nil {
				stats.ReadFailures++
				r.logger.Debug("skipping star %d: %v", index, err)
				continue
			}

			d, ok := Plot(v, index, star)
			if !ok {
				stats.Faint++
				continue
			}

			stats.Drawn++
			if d.Labeled {
				stats.Labeled++
			}
			if !yield(d) {
				return
			}
		}
	}
}

// candidates asks the selector for indices. A nil slice with false means scan all.
func (r *Renderer) candidates(ctx context.Context, limit float64) ([]int, bool) {
	if r.selector == nil {
		return nil, false
	}
	fp, ok := r.src.(Fingerprinter)
	if !ok {
		r.logger.Debug("source has no fingerprint, scanning catalog")
		return nil, false
	}
	fingerprint, err := fp.Fingerprint()
	if err != nil {
		r.logger.Warn("cannot fingerprint catalog, scanning: %v", err)
		return nil, false
	}

	indices, ok, err := r.selector.Select(ctx, limit, fingerprint)
	if err != nil {
		r.logger.Warn("index unavailable, scanning catalog: %v", err)
		return nil, false
	}
	if !ok {
		r.logger.Debug("index does not match catalog, scanning catalog")
		return nil, false
	}
	return indices, true
}

func (r *Renderer) observe(stats Stats) {
	for _, o := range r.observers {
		o.ObserveFrame(stats)
	}
}

func (r *Renderer) fail(err error) {
	for _, o := range r.observers {
		if fo, ok := o.(FailureObserver); ok {
			fo.ObserveFailure(err)
		}
	}
}

// Plot builds the directive for one star, or reports false when the star is
// fainter than the view's limit.
func Plot(v astro.View, index int, s catalog.Star) (Directive, bool) {
	if s.Mag > v.LimitingMag {
		return Directive{}, false
	}

	x, y := astro.Project(v, s.RA, s.Dec)
	size := SymbolSize(v.LimitingMag, s.Mag)

	d := Directive{
		Index: index,
		X:     x,
		Y:     y,
		Shape: ShapeCircle,
		Size:  size,
	}
	if size == MinSymbolSize {
		d.Shape = ShapePoint
	}
	if s.Mag < v.LimitingMag-labelMargin {
		// Label sits up and to the right, offset by the whole-pixel size
		offset := int(size)
		d.Labeled = true
		d.Label = s.Label
		d.LabelX = x + offset
		d.LabelY = y - offset
	}
	return d, true
}

// SymbolSize returns the symbol size for a star of magnitude mag under a
// limiting magnitude limit, clamped to [MinSymbolSize, MaxSymbolSize].
func SymbolSize(limit, mag float64) float64 {
	if limit > sizeCeiling {
		limit = sizeCeiling
	}
	size := limit - mag + 0.5
	switch {
	case size < MinSymbolSize:
		return MinSymbolSize
	case size > MaxSymbolSize:
		return MaxSymbolSize
	default:
		return size
	}
}

// RenderFile runs one complete pass over the data file at path: open,
// validate, read every star, close. A catalog that fails validation aborts the
// pass with its error and nothing is drawn. The file is closed on every path.
func RenderFile(ctx context.Context, path string, v astro.View, s Surface, opts ...Option) (Stats, error) {
	var stats Stats
	opts = append(opts, WithObserver(statsRecorder{&stats}))

	if err := v.Validate(); err != nil {
		return stats, fmt.Errorf("render: invalid view: %w", err)
	}

	cat, err := catalog.Open(path)
	if err != nil {
		New(nil, opts...).fail(err)
		return stats, err
	}
	defer cat.Close()

	r := New(cat, opts...)
	Draw(s, r.Frame(ctx, v))
	return stats, nil
}

type statsRecorder struct {
	dst *Stats
}

func (s statsRecorder) ObserveFrame(stats Stats) {
	*s.dst = stats
}
