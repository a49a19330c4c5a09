package pdf

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"unicode/utf16"

	pdferrors "github.com/a3tai/pdf-form-filler/internal/pdf/errors"
	"github.com/a3tai/pdf-form-filler/internal/pdf/fonts"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const defaultStandardFont = fonts.Helvetica

// Font is a font resource owned by one Document
type Font struct {
	doc  *Document
	ref  types.IndirectRef
	dict types.Dict

	std *fonts.Standard

	tt     *fonts.TrueType
	subset bool
	used   map[uint16]rune
	glyphs int // glyphs covered by the last finalize

	// objects written by finalize, replaced in place when it runs again
	fontFile, descriptor, cidFont, toUnicode, cidToGID *types.IndirectRef
}

// FontBundle holds the fonts used to fill one document. Primary may be nil,
// in which case fields are written through the ordinary text path.
type FontBundle struct {
	Primary  *Font
	Fallback *Font
}

// StandardFont returns the standard font with WinAnsiEncoding, adding it to
// the document on first use
func (d *Document) StandardFont(name string) (*Font, error) {
	if f, ok := d.std[name]; ok {
		return f, nil
	}

	dict := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(name),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	ref, err := d.newObject(dict)
	if err != nil {
		return nil, err
	}

	f := &Font{doc: d, ref: *ref, dict: dict, std: fonts.NewStandard(name)}
	d.std[name] = f
	return f, nil
}

// EmbedTrueType adds a TrueType font as a Type0 font with Identity-H
// encoding. With subset set, only glyphs drawn through the font are kept in
// the embedded program.
func (d *Document) EmbedTrueType(tt *fonts.TrueType, subset bool) (*Font, error) {
	if tt == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFont, "no font program")
	}

	dict := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type0"),
		"BaseFont": types.Name(tt.Name()),
		"Encoding": types.Name("Identity-H"),
	}
	ref, err := d.newObject(dict)
	if err != nil {
		return nil, err
	}

	f := &Font{
		doc:    d,
		ref:    *ref,
		dict:   dict,
		tt:     tt,
		subset: subset,
		used:   make(map[uint16]rune),
	}
	d.fonts = append(d.fonts, f)
	return f, nil
}

// Name returns the base font name
func (f *Font) Name() string {
	if f.std != nil {
		return f.std.Name()
	}
	return f.tt.Name()
}

// SupportedCodePoints returns the runes the font can draw. The set must not
// be modified.
func (f *Font) SupportedCodePoints() map[rune]struct{} {
	if f.std != nil {
		return f.std.SupportedCodePoints()
	}
	return f.tt.SupportedCodePoints()
}

// Metrics returns the vertical metrics in 1000-unit glyph space
func (f *Font) Metrics() fonts.Metrics {
	if f.std != nil {
		return f.std.Metrics()
	}
	return f.tt.Metrics()
}

// TextWidth returns the width of text in points. Runes the font cannot
// draw do not contribute.
func (f *Font) TextWidth(text string, size float64) float64 {
	var w float64
	for _, r := range text {
		if f.std != nil {
			if code, ok := f.std.EncodeRune(r); ok {
				w += f.std.Width(code)
			}
			continue
		}
		if gid, ok := f.tt.GlyphIndex(r); ok {
			w += f.tt.Advance(gid)
		}
	}
	return w * size / 1000
}

// encode returns text as a hex string operand. Runes the font cannot draw
// are dropped. Glyphs of embedded fonts are recorded for subsetting.
func (f *Font) encode(text string) string {
	var sb strings.Builder
	sb.WriteByte('<')
	for _, r := range text {
		if f.std != nil {
			if code, ok := f.std.EncodeRune(r); ok {
				fmt.Fprintf(&sb, "%02X", code)
			}
			continue
		}
		gid, ok := f.tt.GlyphIndex(r)
		if !ok {
			continue
		}
		if _, seen := f.used[gid]; !seen {
			f.used[gid] = r
		}
		fmt.Fprintf(&sb, "%04X", gid)
	}
	sb.WriteByte('>')
	return sb.String()
}

// finalize writes the descendant font, descriptor, widths, ToUnicode map and
// font program of an embedded font. It runs again only when new glyphs were
// drawn since the last call and then rewrites the same objects.
func (f *Font) finalize() error {
	if f.tt == nil || (f.cidFont != nil && f.glyphs == len(f.used)) {
		return nil
	}

	gids := make([]uint16, 0, len(f.used))
	for gid := range f.used {
		gids = append(gids, gid)
	}
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })

	data := f.tt.Data()
	baseFont := f.tt.Name()
	var cidToGID types.Object = types.Name("Identity")
	if f.subset {
		sub, err := f.tt.Subset(gids)
		if err != nil {
			return fmt.Errorf("failed to subset font: %w", err)
		}
		data = sub.Program
		baseFont = subsetTag(gids) + "+" + baseFont

		if err := f.doc.putStream(&f.cidToGID, types.Dict{}, cidToGIDMap(gids, sub.GIDs), true); err != nil {
			return err
		}
		cidToGID = *f.cidToGID
	}

	if err := f.doc.putStream(&f.fontFile, types.Dict{"Length1": types.Integer(len(data))}, data, true); err != nil {
		return err
	}

	m := f.tt.Metrics()
	descriptor := types.Dict{
		"Type":        types.Name("FontDescriptor"),
		"FontName":    types.Name(baseFont),
		"Flags":       types.Integer(4),
		"FontBBox":    numberArray(m.BBox[:]...),
		"ItalicAngle": types.Integer(0),
		"Ascent":      types.Integer(int(math.Round(m.Ascent))),
		"Descent":     types.Integer(int(math.Round(m.Descent))),
		"CapHeight":   types.Integer(int(math.Round(m.CapHeight))),
		"StemV":       types.Integer(80),
		"FontFile2":   *f.fontFile,
	}
	if err := f.doc.put(&f.descriptor, descriptor); err != nil {
		return err
	}

	widths := types.Array{}
	for _, gid := range gids {
		widths = append(widths,
			types.Integer(int(gid)),
			types.Array{types.Integer(int(math.Round(f.tt.Advance(gid))))})
	}

	cidFont := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("CIDFontType2"),
		"BaseFont": types.Name(baseFont),
		"CIDSystemInfo": types.Dict{
			"Registry":   types.StringLiteral("Adobe"),
			"Ordering":   types.StringLiteral("Identity"),
			"Supplement": types.Integer(0),
		},
		"FontDescriptor": *f.descriptor,
		"DW":             types.Integer(1000),
		"W":              widths,
		"CIDToGIDMap":    cidToGID,
	}
	if err := f.doc.put(&f.cidFont, cidFont); err != nil {
		return err
	}

	if err := f.doc.putStream(&f.toUnicode, types.Dict{}, toUnicodeCMap(gids, f.used), true); err != nil {
		return err
	}

	f.dict["BaseFont"] = types.Name(baseFont)
	f.dict["DescendantFonts"] = types.Array{*f.cidFont}
	f.dict["ToUnicode"] = *f.toUnicode
	f.glyphs = len(f.used)
	return nil
}

// cidToGIDMap maps the original glyph ids, used as CIDs in content streams,
// to glyph ids of the subset program. Unused CIDs map to .notdef.
func cidToGIDMap(gids []uint16, subset map[uint16]uint16) []byte {
	var maxCID uint16
	for _, gid := range gids {
		if gid > maxCID {
			maxCID = gid
		}
	}

	m := make([]byte, 2*(int(maxCID)+1))
	for _, gid := range gids {
		n := subset[gid]
		m[2*int(gid)] = byte(n >> 8)
		m[2*int(gid)+1] = byte(n)
	}
	return m
}

// subsetTag derives the six-letter subset prefix from the glyph set
func subsetTag(gids []uint16) string {
	h := fnv.New32a()
	for _, gid := range gids {
		h.Write([]byte{byte(gid >> 8), byte(gid)})
	}
	sum := h.Sum32()

	tag := make([]byte, 6)
	for i := range tag {
		tag[i] = 'A' + byte(sum%26)
		sum /= 26
	}
	return string(tag)
}

func toUnicodeCMap(gids []uint16, runes map[uint16]rune) []byte {
	var b bytes.Buffer
	b.WriteString("/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\n")
	b.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n")
	b.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")

	for start := 0; start < len(gids); start += 100 {
		end := start + 100
		if end > len(gids) {
			end = len(gids)
		}
		fmt.Fprintf(&b, "%d beginbfchar\n", end-start)
		for _, gid := range gids[start:end] {
			fmt.Fprintf(&b, "<%04X> <", gid)
			for _, u := range utf16.Encode([]rune{runes[gid]}) {
				fmt.Fprintf(&b, "%04X", u)
			}
			b.WriteString(">\n")
		}
		b.WriteString("endbfchar\n")
	}

	b.WriteString("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return b.Bytes()
}

func numberArray(values ...float64) types.Array {
	arr := make(types.Array, len(values))
	for i, v := range values {
		arr[i] = types.Float(v)
	}
	return arr
}
