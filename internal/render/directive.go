package render

import "iter"

// Shape is the symbol drawn for a star.
type Shape int

const (
	ShapePoint Shape = iota
	ShapeCircle
)

func (s Shape) String() string {
	switch s {
	case ShapePoint:
		return "point"
	case ShapeCircle:
		return "circle"
	default:
		return "unknown"
	}
}

// Directive is the drawing instruction for one star: a symbol at a pixel
// position and, for stars well inside the magnitude limit, a label.
type Directive struct {
	Index int // catalog index of the star
	X, Y  int
	Shape Shape
	Size  float64 // symbol size in pixels, [MinSymbolSize, MaxSymbolSize]

	Labeled bool
	Label   string
	LabelX  int
	LabelY  int
}

// Surface receives drawing primitives. Coordinates may fall outside the
// surface; implementations clip.
type Surface interface {
	Point(x, y int)
	Circle(x, y int, radius float64)
	Text(x, y int, s string)
}

// Draw sends each directive to s in order, symbol before label, and returns
// the number of directives drawn.
func Draw(s Surface, directives iter.Seq[Directive]) int {
	n := 0
	for d := range directives {
		switch d.Shape {
		case ShapePoint:
			s.Point(d.X, d.Y)
		default:
			s.Circle(d.X, d.Y, d.Size)
		}
		if d.Labeled {
			s.Text(d.LabelX, d.LabelY, d.Label)
		}
		n++
	}
	return n
}
