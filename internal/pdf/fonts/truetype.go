// Package fonts loads the font programs embedded by the form filler and answers
// the questions the PDF layer asks about them: which code points they cover,
// how wide glyphs are, and which bytes to embed.
package fonts

import (
	"bytes"
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	program "seehuhn.de/go/sfnt"
)

// Glyph space used for all metrics returned by this package
const unitsPerEm = 1000

var (
	magicTrueType = []byte{0x00, 0x01, 0x00, 0x00}
	magicApple    = []byte("true")
	magicCFF      = []byte("OTTO")
	magicCollect  = []byte("ttcf")
)

// Metrics describes the vertical font metrics in 1000-unit glyph space
type Metrics struct {
	Ascent    float64
	Descent   float64 // negative, below the baseline
	CapHeight float64
	BBox      [4]float64
}

// TrueType is a parsed TrueType font program. It is immutable after parsing
// and safe for concurrent use. Measurement uses x/image; subsetting works on
// the seehuhn.de/go/sfnt representation.
type TrueType struct {
	data    []byte
	font    *sfnt.Font
	program *program.Font
	name    string
	metrics Metrics

	coverageOnce sync.Once
	coverage     map[rune]struct{}
}

// ParseTrueType parses a glyf-based TrueType font program
func ParseTrueType(data []byte) (*TrueType, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("font data too short: %d bytes", len(data))
	}

	magic := data[:4]
	switch {
	case bytes.Equal(magic, magicCFF):
		return nil, fmt.Errorf("CFF-flavoured OpenType fonts are not supported")
	case bytes.Equal(magic, magicCollect):
		return nil, fmt.Errorf("font collections are not supported")
	case !bytes.Equal(magic, magicTrueType) && !bytes.Equal(magic, magicApple):
		return nil, fmt.Errorf("not a TrueType font (magic %x)", magic)
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TrueType font: %w", err)
	}

	prog, err := program.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read TrueType font program: %w", err)
	}
	if !prog.IsGlyf() {
		return nil, fmt.Errorf("font has no glyf outlines")
	}

	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDPostScript)
	if err != nil || name == "" {
		name, err = f.Name(&buf, sfnt.NameIDFull)
		if err != nil || name == "" {
			name = "EmbeddedFont"
		}
	}

	tt := &TrueType{
		data:    data,
		font:    f,
		program: prog,
		name:    sanitizeName(name),
	}

	ppem := fixed.I(unitsPerEm)
	m, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("failed to read font metrics: %w", err)
	}
	bounds, err := f.Bounds(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("failed to read font bounds: %w", err)
	}

	tt.metrics = Metrics{
		Ascent:    fromFixed(m.Ascent),
		Descent:   -fromFixed(m.Descent),
		CapHeight: fromFixed(m.CapHeight),
		BBox: [4]float64{
			fromFixed(bounds.Min.X),
			-fromFixed(bounds.Max.Y),
			fromFixed(bounds.Max.X),
			-fromFixed(bounds.Min.Y),
		},
	}
	if tt.metrics.CapHeight == 0 {
		tt.metrics.CapHeight = tt.metrics.Ascent
	}

	return tt, nil
}

// Name returns the PostScript name of the font
func (t *TrueType) Name() string {
	return t.name
}

// Data returns the raw font program
func (t *TrueType) Data() []byte {
	return t.data
}

// Metrics returns the vertical metrics of the font
func (t *TrueType) Metrics() Metrics {
	return t.metrics
}

// NumGlyphs returns the number of glyphs in the font
func (t *TrueType) NumGlyphs() int {
	return t.font.NumGlyphs()
}

// GlyphIndex maps a rune to its glyph. The second result is false when the
// font has no glyph for r.
func (t *TrueType) GlyphIndex(r rune) (uint16, bool) {
	var buf sfnt.Buffer
	gid, err := t.font.GlyphIndex(&buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return uint16(gid), true
}

// Advance returns the horizontal advance of a glyph in 1000-unit glyph space
func (t *TrueType) Advance(gid uint16) float64 {
	var buf sfnt.Buffer
	adv, err := t.font.GlyphAdvance(&buf, sfnt.GlyphIndex(gid), fixed.I(unitsPerEm), font.HintingNone)
	if err != nil {
		return 0
	}
	return fromFixed(adv)
}

// SupportedCodePoints returns the set of runes the font has glyphs for. The
// set is computed once and must not be modified by callers.
func (t *TrueType) SupportedCodePoints() map[rune]struct{} {
	t.coverageOnce.Do(func() {
		var buf sfnt.Buffer
		coverage := make(map[rune]struct{})
		for r := rune(0); r <= utf8.MaxRune; r++ {
			if r >= 0xD800 && r <= 0xDFFF {
				continue
			}
			gid, err := t.font.GlyphIndex(&buf, r)
			if err == nil && gid != 0 {
				coverage[r] = struct{}{}
			}
		}
		t.coverage = coverage
	})
	return t.coverage
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// sanitizeName keeps a font name usable as a PDF name object
func sanitizeName(name string) string {
	var b bytes.Buffer
	for _, r := range name {
		if r > ' ' && r < 0x7F && r != '/' && r != '(' && r != ')' && r != '<' && r != '>' &&
			r != '[' && r != ']' && r != '{' && r != '}' && r != '%' && r != '#' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "EmbeddedFont"
	}
	return b.String()
}
