package pdf

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	pdferrors "github.com/a3tai/pdf-form-filler/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Layout constants for generated text appearances, in points
const (
	textPadding     = 2.0
	autoSizeMax     = 12.0
	autoSizeMin     = 4.0
	lineSpacing     = 1.15
	defaultDAColor  = "0 g"
	defaultFontSize = 0.0
)

// defaultAppearance holds the parts of a /DA string the generator reuses
type defaultAppearance struct {
	size  float64
	color string
}

// parseDA extracts the font size and fill color from a default appearance
// string such as "/Helv 0 Tf 0 g"
func parseDA(da string) defaultAppearance {
	result := defaultAppearance{size: defaultFontSize, color: defaultDAColor}
	tokens := strings.Fields(da)

	for i, tok := range tokens {
		var operands int
		switch tok {
		case "Tf":
			if i >= 1 {
				if size, err := strconv.ParseFloat(tokens[i-1], 64); err == nil && size >= 0 {
					result.size = size
				}
			}
			continue
		case "g":
			operands = 1
		case "rg":
			operands = 3
		case "k":
			operands = 4
		default:
			continue
		}
		if i >= operands {
			result.color = strings.Join(tokens[i-operands:i+1], " ")
		}
	}
	return result
}

// UpdateAppearance regenerates the normal appearance of every widget of a
// text or choice field from its current value, drawing with font
func (fld *field) UpdateAppearance(font *Font) error {
	kind := fld.Kind()
	if kind != KindText && kind != KindChoice {
		return &pdferrors.FieldKindError{Path: fld.name, Kind: kind.String(), Expected: KindText.String()}
	}
	if font == nil {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFont, "no font for appearance").WithContext(fld.name)
	}

	resName, err := fld.form.registerFont(font)
	if err != nil {
		return err
	}

	da := parseDA(fld.da)
	fld.da = fmt.Sprintf("/%s %s Tf %s", resName, formatNumber(da.size), da.color)
	fld.dict["DA"] = types.StringLiteral(fld.da)

	value := fld.Value()
	for _, w := range fld.widgets {
		if _, found := w.dict.Find("DA"); found {
			w.dict["DA"] = types.StringLiteral(fld.da)
		}
		if err := fld.renderWidget(w, font, resName, da, value); err != nil {
			return err
		}
	}

	fld.form.setNeedAppearances(false)
	return nil
}

func (fld *field) renderWidget(w widget, font *Font, resName string, da defaultAppearance, value string) error {
	rectObj, found := w.dict.Find("Rect")
	if !found {
		return nil
	}
	rect, ok := fld.form.doc.rectangle(rectObj)
	if !ok {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedObject, "invalid widget rectangle").WithContext(fld.name)
	}

	layout := textLayout{
		font:    font,
		resName: resName,
		width:   rect.Width(),
		height:  rect.Height(),
		size:    da.size,
		color:   da.color,
		align:   fld.alignment(),
	}

	var content []byte
	switch {
	case fld.flags&flagComb != 0 && fld.hasMax && fld.maxLen > 0:
		content = layout.comb(value, fld.maxLen)
	case fld.flags&flagMultiline != 0:
		content = layout.multiline(value)
	default:
		content = layout.singleLine(value)
	}

	streamDict := types.Dict{
		"Type":    types.Name("XObject"),
		"Subtype": types.Name("Form"),
		"BBox":    numberArray(0, 0, rect.Width(), rect.Height()),
		"Resources": types.Dict{
			"Font": types.Dict{resName: font.ref},
		},
	}
	ref, err := fld.form.doc.newStream(streamDict, content, true)
	if err != nil {
		return err
	}

	w.dict["AP"] = types.Dict{"N": *ref}
	return nil
}

type textLayout struct {
	font    *Font
	resName string
	width   float64
	height  float64
	size    float64
	color   string
	align   Alignment
}

// lineHeight is the distance from the lowest descender to the highest ascender
func (l textLayout) lineHeight(size float64) float64 {
	m := l.font.Metrics()
	return (m.Ascent - m.Descent) * size / 1000
}

// autoSize picks the largest size up to autoSizeMax at which text fits the
// box on one line
func (l textLayout) autoSize(text string) float64 {
	m := l.font.Metrics()
	span := (m.Ascent - m.Descent) / 1000
	size := autoSizeMax
	if span > 0 {
		size = math.Min(size, (l.height-2*textPadding)/span)
	}
	if w := l.font.TextWidth(text, 1); w > 0 {
		size = math.Min(size, (l.width-2*textPadding)/w)
	}
	return math.Max(size, autoSizeMin)
}

func (l textLayout) baseline(size float64) float64 {
	m := l.font.Metrics()
	return (l.height-l.lineHeight(size))/2 - m.Descent*size/1000
}

func (l textLayout) begin(b *bytes.Buffer, size float64) {
	b.WriteString("/Tx BMC\nq\n")
	fmt.Fprintf(b, "%s %s %s %s re W n\n",
		formatNumber(1), formatNumber(1), formatNumber(l.width-2), formatNumber(l.height-2))
	fmt.Fprintf(b, "BT\n/%s %s Tf %s\n", l.resName, formatNumber(size), l.color)
}

func (l textLayout) end(b *bytes.Buffer) []byte {
	b.WriteString("ET\nQ\nEMC\n")
	return b.Bytes()
}

func (l textLayout) offset(text string, size float64) float64 {
	tw := l.font.TextWidth(text, size)
	switch l.align {
	case AlignCenter:
		return (l.width - tw) / 2
	case AlignRight:
		return l.width - textPadding - tw
	default:
		return textPadding
	}
}

func (l textLayout) singleLine(text string) []byte {
	size := l.size
	if size == 0 {
		size = l.autoSize(text)
	}

	var b bytes.Buffer
	l.begin(&b, size)
	fmt.Fprintf(&b, "%s %s Td\n%s Tj\n",
		formatNumber(l.offset(text, size)), formatNumber(l.baseline(size)), l.font.encode(text))
	return l.end(&b)
}

// comb places one character in the center of each of cells equal-width cells
func (l textLayout) comb(text string, cells int) []byte {
	cellWidth := l.width / float64(cells)
	size := l.size
	if size == 0 {
		m := l.font.Metrics()
		size = math.Max(math.Min(autoSizeMax, (l.height-2*textPadding)*1000/(m.Ascent-m.Descent)), autoSizeMin)
	}

	var b bytes.Buffer
	l.begin(&b, size)
	y := l.baseline(size)
	prevX := 0.0
	i := 0
	for _, r := range text {
		if i >= cells {
			break
		}
		ch := string(r)
		x := float64(i)*cellWidth + (cellWidth-l.font.TextWidth(ch, size))/2
		fmt.Fprintf(&b, "%s %s Td\n%s Tj\n", formatNumber(x-prevX), formatNumber(y), l.font.encode(ch))
		prevX = x
		y = 0
		i++
	}
	return l.end(&b)
}

// multiline wraps text at spaces and explicit line breaks, shrinking an
// automatic size until every line fits the box
func (l textLayout) multiline(text string) []byte {
	size := l.size
	auto := size == 0
	if auto {
		size = autoSizeMax
	}

	var lines []string
	for {
		lines = l.wrap(text, size)
		if !auto || size <= autoSizeMin ||
			float64(len(lines))*l.lineHeight(size)*lineSpacing <= l.height-2*textPadding {
			break
		}
		size = math.Max(size-0.5, autoSizeMin)
	}

	m := l.font.Metrics()
	leading := l.lineHeight(size) * lineSpacing
	top := l.height - textPadding - m.Ascent*size/1000

	var b bytes.Buffer
	l.begin(&b, size)
	prevX, prevY := 0.0, 0.0
	for i, line := range lines {
		x := l.offset(line, size)
		y := top - float64(i)*leading
		fmt.Fprintf(&b, "%s %s Td\n%s Tj\n", formatNumber(x-prevX), formatNumber(y-prevY), l.font.encode(line))
		prevX, prevY = x, y
	}
	return l.end(&b)
}

func (l textLayout) wrap(text string, size float64) []string {
	maxWidth := l.width - 2*textPadding
	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if l.font.TextWidth(candidate, size) > maxWidth {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// formatNumber writes v with at most three decimals and no trailing zeros
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// appearanceStream resolves the normal appearance of a widget, honoring the
// appearance state of check boxes and radio buttons
func appearanceStream(ctx *model.Context, w types.Dict) (types.Object, bool) {
	apObj, found := w.Find("AP")
	if !found {
		return nil, false
	}
	ap, err := ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return nil, false
	}
	nObj, found := ap.Find("N")
	if !found {
		return nil, false
	}

	target, err := ctx.Dereference(nObj)
	if err != nil || target == nil {
		return nil, false
	}
	if _, ok := target.(types.StreamDict); ok {
		return nObj, true
	}

	states, ok := target.(types.Dict)
	if !ok {
		return nil, false
	}
	state := "Off"
	if asObj, found := w.Find("AS"); found {
		if as, err := ctx.DereferenceName(asObj, model.V10, nil); err == nil {
			state = string(as)
		}
	}
	stream, found := states.Find(state)
	if !found {
		return nil, false
	}
	return stream, true
}
