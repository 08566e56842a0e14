package astro

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// j2000 is the Julian date of 2000-01-01 12:00 UTC.
const j2000 = 2451545.0

// Observer is a ground site.
type Observer struct {
	LatDeg float64 // north positive
	LonDeg float64 // east positive
}

// Validate checks the site coordinates.
func (o Observer) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.LatDeg, validation.By(finite), validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&o.LonDeg, validation.By(finite), validation.Min(-180.0), validation.Max(180.0)),
	)
}

// ParseObserver parses "lat,lon" in decimal degrees.
func ParseObserver(s string) (Observer, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return Observer{}, fmt.Errorf("observer %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Observer{}, fmt.Errorf("observer latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return Observer{}, fmt.Errorf("observer longitude: %w", err)
	}
	obs := Observer{LatDeg: lat, LonDeg: lon}
	if err := obs.Validate(); err != nil {
		return Observer{}, fmt.Errorf("observer: %w", err)
	}
	return obs, nil
}

// ZenithView returns v re-centred on the observer's zenith at t. Rotation,
// field of view and magnitude limit are kept.
func ZenithView(v View, obs Observer, t time.Time) View {
	v.CenterRA = LocalSiderealTime(t, obs.LonDeg)
	v.CenterDec = obs.LatDeg
	return v
}

// LocalSiderealTime returns LST in degrees, [0, 360).
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	return Normalize360(greenwichSiderealTime(t) + lonDeg)
}

// greenwichSiderealTime is GMST in degrees (IAU 1982).
func greenwichSiderealTime(t time.Time) float64 {
	jd := julianDate(t)
	d := jd - j2000
	c := d / 36525.0

	gmst := 280.46061837 + 360.98564736629*d + 0.000387933*c*c - c*c*c/38710000.0
	return Normalize360(gmst)
}

// julianDate converts t to a Julian date (Meeus, Gregorian calendar).
func julianDate(t time.Time) float64 {
	t = t.UTC()

	year := float64(t.Year())
	month := float64(t.Month())
	if month <= 2 {
		year--
		month += 12
	}

	sinceMidnight := t.Sub(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	day := float64(t.Day()) + sinceMidnight.Hours()/24

	a := math.Floor(year / 100)
	b := 2 - a + math.Floor(a/4)

	return math.Floor(365.25*(year+4716)) + math.Floor(30.6001*(month+1)) + day + b - 1524.5
}
