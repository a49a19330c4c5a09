package fonts

import (
	"sync"

	"golang.org/x/text/encoding/charmap"
)

// Helvetica is the standard font used when a document has no embedded font
const Helvetica = "Helvetica"

// helveticaWidths holds the AFM widths of the printable ASCII range
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // ' '../
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556, // 0..?
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778, // @..O
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556, // P.._
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556, // `..o
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584, // p..~
}

// Standard is one of the 14 standard PDF fonts used with WinAnsiEncoding
type Standard struct {
	name string

	coverageOnce sync.Once
	coverage     map[rune]struct{}
}

// NewStandard returns the standard font with the given base name. Only
// Helvetica metrics are bundled; other names fall back to them.
func NewStandard(name string) *Standard {
	return &Standard{name: name}
}

// Name returns the base font name
func (s *Standard) Name() string {
	return s.name
}

// Metrics returns the vertical metrics of the font
func (s *Standard) Metrics() Metrics {
	return Metrics{
		Ascent:    718,
		Descent:   -207,
		CapHeight: 718,
		BBox:      [4]float64{-166, -225, 1000, 931},
	}
}

// EncodeRune maps r to its WinAnsiEncoding code
func (s *Standard) EncodeRune(r rune) (byte, bool) {
	if r < ' ' || (r >= 0x7F && r <= 0x9F) {
		return 0, false
	}
	return charmap.Windows1252.EncodeRune(r)
}

// Width returns the advance of an encoded byte in 1000-unit glyph space
func (s *Standard) Width(code byte) float64 {
	if code >= ' ' && code <= '~' {
		return float64(helveticaWidths[code-' '])
	}
	return 556
}

// SupportedCodePoints returns the runes representable in WinAnsiEncoding.
// The set must not be modified by callers.
func (s *Standard) SupportedCodePoints() map[rune]struct{} {
	s.coverageOnce.Do(func() {
		coverage := make(map[rune]struct{})
		for code := 0x20; code <= 0xFF; code++ {
			r := charmap.Windows1252.DecodeByte(byte(code))
			if _, ok := s.EncodeRune(r); ok {
				coverage[r] = struct{}{}
			}
		}
		s.coverage = coverage
	})
	return s.coverage
}
