// Package astro provides the sky math: equatorial-to-screen projection for a
// view, and sidereal time for pointing a view at an observer's zenith.
package astro

import (
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	twoPi  = 2 * math.Pi
	halfPi = math.Pi / 2

	// referenceFOV is the field of view, in degrees, that the pixel scale is
	// normalized against.
	referenceFOV = 120.0
)

// View describes what the display is looking at.
type View struct {
	CenterRA    float64 `yaml:"center_ra" env:"CENTER_RA"`   // degrees, [0, 360)
	CenterDec   float64 `yaml:"center_dec" env:"CENTER_DEC"` // degrees, [-90, 90]
	FOV         float64 `yaml:"fov" env:"FOV"`               // degrees, > 0
	Rotation    float64 `yaml:"rotation" env:"ROTATION"`     // degrees, any value
	LimitingMag float64 `yaml:"limiting_magnitude" env:"LIMITING_MAGNITUDE"`

	// Supplied by the drawing surface every frame.
	DisplayWidth  int `yaml:"-" env:"-"`
	DisplayHeight int `yaml:"-" env:"-"`
}

// DefaultView returns the startup view: Cygnus, 60° wide, naked-eye limit.
func DefaultView() View {
	return View{
		CenterRA:    300.0,
		CenterDec:   40.0,
		FOV:         60.0,
		LimitingMag: 6.5,
		Rotation:    0.0,
	}
}

var errNotFinite = errors.New("must be a finite number")

func finite(value interface{}) error {
	if f, ok := value.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return errNotFinite
	}
	return nil
}

// Validate checks the view invariants. Projection divides by FOV and the
// display size, so a view must pass Validate before it is rendered.
func (v View) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.CenterRA, validation.By(finite), validation.Min(0.0), validation.Max(360.0).Exclusive()),
		validation.Field(&v.CenterDec, validation.By(finite), validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&v.FOV, validation.Required, validation.By(finite), validation.Min(0.0).Exclusive()),
		validation.Field(&v.Rotation, validation.By(finite)),
		validation.Field(&v.LimitingMag, validation.By(finite)),
		validation.Field(&v.DisplayWidth, validation.Required, validation.Min(1)),
		validation.Field(&v.DisplayHeight, validation.Required, validation.Min(1)),
	)
}

// WithDisplay returns a copy of v sized for a width x height surface.
func (v View) WithDisplay(width, height int) View {
	v.DisplayWidth = width
	v.DisplayHeight = height
	return v
}

// Horizon returns the azimuth and altitude, in radians, of a star relative to
// the view centre, which plays the role of the zenith.
func Horizon(v View, ra, dec float64) (az, alt float64) {
	centerRA := degToRad(v.CenterRA)
	centerDec := degToRad(v.CenterDec)
	starRA := degToRad(ra)
	starDec := degToRad(dec)

	h := centerRA - starRA

	p1 := math.Sin(h)
	p2 := math.Cos(h)*math.Sin(centerDec) - math.Tan(starDec)*math.Cos(centerDec)
	// atan2 of a signed zero pair depends on the zero signs; pin it to 0.
	if p1 == 0 && p2 == 0 {
		az = 0
	} else {
		az = math.Atan2(p1, p2)
	}

	t := math.Sin(centerDec)*math.Sin(starDec) + math.Cos(centerDec)*math.Cos(starDec)*math.Cos(h)
	return az, altitude(t)
}

// altitude is asin with the argument clamped to its domain.
func altitude(t float64) float64 {
	switch {
	case t >= 1:
		return halfPi
	case t <= -1:
		return -halfPi
	default:
		return math.Asin(t)
	}
}

// Planar maps a star onto the unscaled view plane. Angular distance from the
// centre maps linearly to radius: 0 at the centre, 1 at 90°.
func Planar(v View, ra, dec float64) (px, py float64) {
	az, alt := Horizon(v, ra, dec)

	radius := 1 - 2*alt/math.Pi
	adjusted := az - halfPi + NormalizeAngle(degToRad(v.Rotation))
	fov := degToRad(v.FOV)

	px = radius * math.Cos(adjusted) * math.Pi / fov
	py = -radius * math.Sin(adjusted) * math.Pi / fov
	return px, py
}

// Scale returns pixels per plane unit for the view's display width.
func Scale(v View) float64 {
	return (float64(v.DisplayWidth) / degToRad(v.FOV)) / (referenceFOV / v.FOV)
}

// Project maps equatorial coordinates in degrees to a pixel position. The
// result may lie outside the display; clipping is the surface's job.
func Project(v View, ra, dec float64) (x, y int) {
	px, py := Planar(v, ra, dec)
	s := Scale(v)
	x = int(math.Round(float64(v.DisplayWidth)/2 + px*s))
	y = int(math.Round(float64(v.DisplayHeight)/2 + py*s))
	return x, y
}

// NormalizeAngle wraps radians into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	// -ε + 2π can round up to 2π exactly
	if a >= twoPi {
		a = 0
	}
	return a
}

// Normalize360 wraps degrees into [0, 360).
func Normalize360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
