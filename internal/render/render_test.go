package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/litescript/deepskies/internal/astro"
	"github.com/litescript/deepskies/internal/catalog"
)

func testView() astro.View {
	return astro.DefaultView().WithDisplay(800, 600)
}

func storeBytes(t *testing.T, stars ...catalog.Star) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := catalog.NewWriter(&buf)
	for _, s := range stars {
		if err := w.Write(s); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func openStore(t *testing.T, stars ...catalog.Star) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(bytes.NewReader(storeBytes(t, stars...)))
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

// recorder is a Surface that logs every primitive.
type recorder struct {
	calls []string
}

func (r *recorder) Point(x, y int) {
	r.calls = append(r.calls, fmt.Sprintf("point %d,%d", x, y))
}

func (r *recorder) Circle(x, y int, radius float64) {
	r.calls = append(r.calls, fmt.Sprintf("circle %d,%d r=%g", x, y, radius))
}

func (r *recorder) Text(x, y int, s string) {
	r.calls = append(r.calls, fmt.Sprintf("text %d,%d %s", x, y, s))
}

// flakySource fails reads for the listed indices.
type flakySource struct {
	stars []catalog.Star
	fail  map[int]bool
	reads []int
}

func (f *flakySource) Count() int { return len(f.stars) }

func (f *flakySource) Read(index int) (catalog.Star, error) {
	f.reads = append(f.reads, index)
	if f.fail[index] {
		return catalog.Star{}, &catalog.AccessError{Index: index, Kind: catalog.ShortRead}
	}
	return f.stars[index-1], nil
}

func (f *flakySource) Fingerprint() (string, error) { return "flaky", nil }

// plainSource hides the fingerprint of the source it wraps.
type plainSource struct {
	src *flakySource
}

func (p plainSource) Count() int { return p.src.Count() }
func (p plainSource) Read(index int) (catalog.Star, error) { return p.src.Read(index) }

type fixedSelector struct {
	indices []int
	ok      bool
	err     error
	asked   *[]string
}

func (s fixedSelector) Select(_ context.Context, _ float64, fingerprint string) ([]int, bool, error) {
	if s.asked != nil {
		*s.asked = append(*s.asked, fingerprint)
	}
	return s.indices, s.ok, s.err
}

type statsSink struct {
	frames   []Stats
	failures []error
}

func (s *statsSink) ObserveFrame(st Stats)  { s.frames = append(s.frames, st) }
func (s *statsSink) ObserveFailure(e error) { s.failures = append(s.failures, e) }

func TestFrame_MagnitudeFilter(t *testing.T) {
	cat := openStore(t,
		catalog.Star{Label: "Deneb", RA: 310.358, Dec: 45.280, Mag: 2.0},
		catalog.Star{Label: "Faint", RA: 301, Dec: 41, Mag: 9.0},
	)

	got := slices.Collect(New(cat).Frame(context.Background(), testView()))
	if len(got) != 1 {
		t.Fatalf("got %d directives, want 1: %+v", len(got), got)
	}

	d := got[0]
	if d.Index != 1 {
		t.Errorf("Index = %d, want 1", d.Index)
	}
	if d.Shape != ShapeCircle || d.Size != 5.0 {
		t.Errorf("symbol = %v size %v, want circle size 5", d.Shape, d.Size)
	}
	if !d.Labeled || d.Label != "Deneb" {
		t.Errorf("label = %v %q, want Deneb", d.Labeled, d.Label)
	}
	if d.LabelX != d.X+5 || d.LabelY != d.Y-5 {
		t.Errorf("label at (%d,%d), want (%d,%d)", d.LabelX, d.LabelY, d.X+5, d.Y-5)
	}
}

func TestFrame_AtLimitIsIncluded(t *testing.T) {
	cat := openStore(t, catalog.Star{Label: "Edge", RA: 300, Dec: 40, Mag: 6.5})
	got := slices.Collect(New(cat).Frame(context.Background(), testView()))
	if len(got) != 1 {
		t.Fatalf("star at the limit should be drawn, got %d directives", len(got))
	}
	if got[0].Shape != ShapePoint {
		t.Errorf("shape = %v, want point (size clamps to 1)", got[0].Shape)
	}
}

func TestPlot_PointAndLabelThresholds(t *testing.T) {
	v := testView()
	tests := []struct {
		mag       float64
		wantShape Shape
		wantSize  float64
		wantLabel bool
	}{
		{6.0, ShapePoint, 1.0, false},  // 6.5 - 6.0 + 0.5 = 1
		{5.0, ShapeCircle, 2.0, false}, // not 3 magnitudes brighter
		{3.5, ShapeCircle, 3.5, false}, // exactly 3 brighter: no label
		{3.4, ShapeCircle, 3.6, true},
		{-1.46, ShapeCircle, 8.0, true}, // clamped
	}

	for _, tt := range tests {
		d, ok := Plot(v, 1, catalog.Star{Label: "S", RA: 300, Dec: 40, Mag: tt.mag})
		if !ok {
			t.Fatalf("mag %v: not plotted", tt.mag)
		}
		if d.Shape != tt.wantShape {
			t.Errorf("mag %v: shape = %v, want %v", tt.mag, d.Shape, tt.wantShape)
		}
		if diff := d.Size - tt.wantSize; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("mag %v: size = %v, want %v", tt.mag, d.Size, tt.wantSize)
		}
		if d.Labeled != tt.wantLabel {
			t.Errorf("mag %v: labeled = %v, want %v", tt.mag, d.Labeled, tt.wantLabel)
		}
	}
}

func TestPlot_CenterStar(t *testing.T) {
	v := testView()
	d, ok := Plot(v, 7, catalog.Star{RA: v.CenterRA, Dec: v.CenterDec, Mag: 1})
	if !ok {
		t.Fatal("not plotted")
	}
	if abs(d.X-400) > 1 || abs(d.Y-300) > 1 {
		t.Errorf("centre star at (%d,%d), want (400,300)", d.X, d.Y)
	}
}

func TestSymbolSize_Clamped(t *testing.T) {
	for _, limit := range []float64{-5, 6.5, 30} {
		for mag := -30.0; mag <= 30; mag += 0.25 {
			size := SymbolSize(limit, mag)
			if size < MinSymbolSize || size > MaxSymbolSize {
				t.Errorf("SymbolSize(%v, %v) = %v, out of [1, 8]", limit, mag, size)
			}
		}
	}
}

func TestSymbolSize_Values(t *testing.T) {
	tests := []struct {
		limit, mag, want float64
	}{
		{6.5, 2.0, 5.0},
		{6.5, 6.0, 1.0},
		{15, 10, 5.5},
		{30, 10, 5.5}, // limit above 15 sizes as 15
		{30, 2, 8},
		{-5, -5, 1},
	}
	for _, tt := range tests {
		if got := SymbolSize(tt.limit, tt.mag); got != tt.want {
			t.Errorf("SymbolSize(%v, %v) = %v, want %v", tt.limit, tt.mag, got, tt.want)
		}
	}
}

func TestFrame_SkipsFailedReads(t *testing.T) {
	src := &flakySource{
		stars: []catalog.Star{
			{Label: "A", RA: 300, Dec: 40, Mag: 1},
			{Label: "B", RA: 301, Dec: 40, Mag: 1},
			{Label: "C", RA: 302, Dec: 40, Mag: 1},
		},
		fail: map[int]bool{2: true},
	}
	sink := &statsSink{}

	got := slices.Collect(New(src, WithObserver(sink)).Frame(context.Background(), testView()))

	var indices []int
	for _, d := range got {
		indices = append(indices, d.Index)
	}
	if !slices.Equal(indices, []int{1, 3}) {
		t.Errorf("drawn indices = %v, want [1 3]", indices)
	}
	if len(sink.frames) != 1 {
		t.Fatalf("observed %d frames, want 1", len(sink.frames))
	}
	st := sink.frames[0]
	if st.ReadFailures != 1 || st.Drawn != 2 || st.Considered != 3 {
		t.Errorf("stats = %+v", st)
	}
}

func TestFrame_Restartable(t *testing.T) {
	cat := openStore(t, catalog.BrightStars()...)
	frame := New(cat).Frame(context.Background(), testView())

	first := slices.Collect(frame)
	second := slices.Collect(frame)
	if len(first) == 0 {
		t.Fatal("expected bright stars in the default view")
	}
	if !slices.Equal(first, second) {
		t.Error("replaying a frame produced different directives")
	}

	for i := 1; i < len(first); i++ {
		if first[i].Index <= first[i-1].Index {
			t.Fatalf("directives out of catalog order at %d", i)
		}
	}
}

func TestFrame_EarlyStop(t *testing.T) {
	cat := openStore(t, catalog.BrightStars()...)
	sink := &statsSink{}
	r := New(cat, WithObserver(sink))

	n := 0
	for range r.Frame(context.Background(), testView()) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("iterated %d times", n)
	}
	if len(sink.frames) != 1 || sink.frames[0].Drawn != 1 {
		t.Errorf("stats after early stop = %+v", sink.frames)
	}
}

func TestFrame_Cancelled(t *testing.T) {
	cat := openStore(t, catalog.BrightStars()...)
	sink := &statsSink{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := slices.Collect(New(cat, WithObserver(sink)).Frame(ctx, testView()))
	if len(got) != 0 {
		t.Errorf("cancelled frame produced %d directives", len(got))
	}
	if !sink.frames[0].Cancelled {
		t.Error("stats should record cancellation")
	}
}

func TestFrame_Selector(t *testing.T) {
	stars := []catalog.Star{
		{Label: "A", RA: 300, Dec: 40, Mag: 1},
		{Label: "B", RA: 301, Dec: 40, Mag: 8},
		{Label: "C", RA: 302, Dec: 40, Mag: 2},
	}
	v := testView()

	full := slices.Collect(New(&flakySource{stars: stars}).Frame(context.Background(), v))

	t.Run("uses candidates", func(t *testing.T) {
		src := &flakySource{stars: stars}
		sink := &statsSink{}
		var asked []string
		sel := fixedSelector{indices: []int{1, 3}, ok: true, asked: &asked}
		got := slices.Collect(New(src, WithSelector(sel), WithObserver(sink)).Frame(context.Background(), v))
		if !slices.Equal(got, full) {
			t.Errorf("indexed frame differs from full scan")
		}
		if !slices.Equal(asked, []string{"flaky"}) {
			t.Errorf("selector asked with %v, want the source fingerprint", asked)
		}
		if !slices.Equal(src.reads, []int{1, 3}) {
			t.Errorf("reads = %v, want [1 3]", src.reads)
		}
		if !sink.frames[0].Indexed {
			t.Error("stats should mark the frame as indexed")
		}
	})

	t.Run("stale index falls back", func(t *testing.T) {
		src := &flakySource{stars: stars}
		got := slices.Collect(New(src, WithSelector(fixedSelector{ok: false})).Frame(context.Background(), v))
		if !slices.Equal(got, full) || len(src.reads) != 3 {
			t.Errorf("stale selector: reads = %v", src.reads)
		}
	})

	t.Run("source without fingerprint scans", func(t *testing.T) {
		src := &flakySource{stars: stars}
		var asked []string
		sel := fixedSelector{indices: []int{1}, ok: true, asked: &asked}
		got := slices.Collect(New(plainSource{src}, WithSelector(sel)).Frame(context.Background(), v))
		if !slices.Equal(got, full) || len(src.reads) != 3 {
			t.Errorf("reads = %v, want a full scan", src.reads)
		}
		if len(asked) != 0 {
			t.Error("selector should not be consulted without a fingerprint")
		}
	})

	t.Run("selector error falls back", func(t *testing.T) {
		src := &flakySource{stars: stars}
		got := slices.Collect(New(src, WithSelector(fixedSelector{err: errors.New("db locked")})).Frame(context.Background(), v))
		if !slices.Equal(got, full) {
			t.Error("selector error should fall back to a full scan")
		}
	})
}

func TestDraw_Order(t *testing.T) {
	cat := openStore(t,
		catalog.Star{Label: "Bright", RA: 300, Dec: 40, Mag: 1},
		catalog.Star{Label: "Dim", RA: 300, Dec: 40, Mag: 6.2},
	)
	rec := &recorder{}
	n := Draw(rec, New(cat).Frame(context.Background(), testView()))

	if n != 2 {
		t.Fatalf("Draw() = %d, want 2", n)
	}
	want := []string{
		"circle 400,300 r=6",
		"text 406,294 Bright",
		"point 400,300",
	}
	if !slices.Equal(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "STARS.DAT")
	if err := os.WriteFile(good, storeBytes(t,
		catalog.Star{Label: "Sadr", RA: 305.557, Dec: 40.257, Mag: 2.23},
		catalog.Star{Label: "Faint", RA: 300, Dec: 40, Mag: 9},
	), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	stats, err := RenderFile(context.Background(), good, testView(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Drawn != 1 || stats.Faint != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(rec.calls) != 2 {
		t.Errorf("calls = %q, want circle and label", rec.calls)
	}
}

func TestRenderFile_FormatError(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "STARS.DAT")
	data := append(storeBytes(t, catalog.Star{Label: "X", Mag: 1}), 'x')
	if err := os.WriteFile(bad, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	sink := &statsSink{}
	_, err := RenderFile(context.Background(), bad, testView(), rec, WithObserver(sink))
	if !errors.Is(err, catalog.ErrFormat) {
		t.Fatalf("error = %v, want ErrFormat", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("nothing should be drawn, got %q", rec.calls)
	}
	if len(sink.failures) != 1 {
		t.Errorf("failure observer called %d times, want 1", len(sink.failures))
	}
}

func TestRenderFile_InvalidView(t *testing.T) {
	v := testView()
	v.FOV = 0
	if _, err := RenderFile(context.Background(), "unused", v, &recorder{}); err == nil {
		t.Error("zero FOV should be rejected before reading")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
