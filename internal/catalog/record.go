package catalog

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// RecordLength is the fixed size of every record in the store, newline included.
	RecordLength = 61

	// HeaderRecords is the number of reserved records before star 1.
	HeaderRecords = 5

	// lineLength is the number of data columns a record line can carry.
	lineLength = RecordLength - 1

	// MaxLabel is the number of visible label characters kept from a record.
	MaxLabel = 16
)

// field is a fixed byte range of a record line.
type field struct {
	start, width int
}

var (
	fieldLabel = field{0, 17}
	fieldRA    = field{17, 11}
	fieldDec   = field{28, 12}
	fieldMag   = field{40, 5}
	fieldClass = field{45, 2}
	fieldPMRA  = field{47, 9}
	fieldPMDec = field{56, 9} // runs past the line; only 4 columns survive
)

// Star is one parsed catalog record.
type Star struct {
	Label string  // trailing spaces trimmed
	RA    float64 // degrees
	Dec   float64 // degrees
	Mag   float64 // visual magnitude
	Class string  // spectral class, up to 2 chars
	PMRA  float64 // proper motion in RA, mas/yr
	PMDec float64 // proper motion in Dec, mas/yr
}

// ParseRecord extracts a Star from a raw record.
//
// The line ends at the first newline or after lineLength columns, and each
// field is clamped to what the line actually holds. Numeric fields that do not
// parse, or parse to NaN or an infinity, are read as 0. That leniency matches
// the catalogs this format comes from and is intentional.
//
// A field must parse as a whole once surrounding spaces are trimmed. A number
// followed by junk, such as "12.5abc", is read as 0, not as its numeric
// prefix 12.5.
func ParseRecord(raw []byte) Star {
	line := raw
	if len(line) > lineLength {
		line = line[:lineLength]
	}
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	label := fieldLabel.text(line)
	if len(label) > MaxLabel {
		label = label[:MaxLabel]
	}

	return Star{
		Label: TrimLabel(label),
		RA:    fieldRA.number(line),
		Dec:   fieldDec.number(line),
		Mag:   fieldMag.number(line),
		Class: strings.TrimRight(fieldClass.text(line), " "),
		PMRA:  fieldPMRA.number(line),
		PMDec: fieldPMDec.number(line),
	}
}

func (f field) text(line []byte) string {
	if f.start >= len(line) {
		return ""
	}
	end := f.start + f.width
	if end > len(line) {
		end = len(line)
	}
	return string(line[f.start:end])
}

func (f field) number(line []byte) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.text(line)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// TrimLabel removes trailing spaces only. Leading and interior spaces are kept.
func TrimLabel(s string) string {
	return strings.TrimRight(s, " ")
}

// FormatRecord encodes a Star as one RecordLength-byte record.
func FormatRecord(s Star) ([]byte, error) {
	if len(s.Label) > MaxLabel {
		return nil, fmt.Errorf("label %q longer than %d characters", s.Label, MaxLabel)
	}
	if len(s.Class) > fieldClass.width {
		return nil, fmt.Errorf("spectral class %q longer than %d characters", s.Class, fieldClass.width)
	}

	pmDecWidth := lineLength - fieldPMDec.start
	cols := []struct {
		name  string
		value string
		width int
	}{
		{"label", fmt.Sprintf("%-17s", s.Label), fieldLabel.width},
		{"ra", fmt.Sprintf("%11.6f", s.RA), fieldRA.width},
		{"dec", fmt.Sprintf("%12.6f", s.Dec), fieldDec.width},
		{"mag", fmt.Sprintf("%5.2f", s.Mag), fieldMag.width},
		{"class", fmt.Sprintf("%-2s", s.Class), fieldClass.width},
		{"pmra", fmt.Sprintf("%9.2f", s.PMRA), fieldPMRA.width},
		{"pmdec", fmt.Sprintf("%*.0f", pmDecWidth, s.PMDec), pmDecWidth},
	}

	rec := make([]byte, 0, RecordLength)
	for _, c := range cols {
		if len(c.value) != c.width {
			return nil, fmt.Errorf("%s value %q does not fit %d columns", c.name, strings.TrimSpace(c.value), c.width)
		}
		rec = append(rec, c.value...)
	}
	return append(rec, '\n'), nil
}

// formatHeader pads or truncates text to one header record.
func formatHeader(text string) []byte {
	if len(text) > lineLength {
		text = text[:lineLength]
	}
	rec := make([]byte, 0, RecordLength)
	rec = append(rec, fmt.Sprintf("%-*s", lineLength, text)...)
	return append(rec, '\n')
}
