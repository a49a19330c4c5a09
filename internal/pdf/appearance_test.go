package pdf

import (
	"strings"
	"testing"

	"github.com/a3tai/pdf-form-filler/internal/pdf/fonts"
	"github.com/a3tai/pdf-form-filler/internal/pdf/pdftest"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseDA(t *testing.T) {
	tests := []struct {
		name string
		da   string
		want defaultAppearance
	}{
		{"auto size gray", "/Helv 0 Tf 0 g", defaultAppearance{size: 0, color: "0 g"}},
		{"fixed size rgb", "/HeBo 9 Tf 0.2 0.3 0.4 rg", defaultAppearance{size: 9, color: "0.2 0.3 0.4 rg"}},
		{"cmyk", "0 0 0 1 k /Cour 10.5 Tf", defaultAppearance{size: 10.5, color: "0 0 0 1 k"}},
		{"empty", "", defaultAppearance{size: 0, color: "0 g"}},
		{"malformed size", "/Helv x Tf", defaultAppearance{size: 0, color: "0 g"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDA(tt.da))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "12", formatNumber(12))
	assert.Equal(t, "0.5", formatNumber(0.5))
	assert.Equal(t, "3.333", formatNumber(10.0/3))
	assert.Equal(t, "-2", formatNumber(-2))
}

func testLayout(t *testing.T, size float64) textLayout {
	t.Helper()
	doc, err := Open(pdftest.Build(1))
	require.NoError(t, err)
	font, err := doc.StandardFont(fonts.Helvetica)
	require.NoError(t, err)
	return textLayout{font: font, resName: "FF0", width: 100, height: 20, size: size, color: "0 g"}
}

func TestSingleLineLayout(t *testing.T) {
	content := string(testLayout(t, 10).singleLine("Ada"))

	assert.True(t, strings.HasPrefix(content, "/Tx BMC\n"))
	assert.True(t, strings.HasSuffix(content, "EMC\n"))
	assert.Contains(t, content, "/FF0 10 Tf 0 g")
	assert.Contains(t, content, "<416461> Tj")
}

func TestAutoSizeShrinksLongText(t *testing.T) {
	layout := testLayout(t, 0)

	short := layout.autoSize("A")
	long := layout.autoSize(strings.Repeat("W", 40))

	assert.LessOrEqual(t, short, autoSizeMax)
	assert.Less(t, long, short)
	assert.GreaterOrEqual(t, long, autoSizeMin)
}

func TestCombLayout(t *testing.T) {
	content := string(testLayout(t, 10).comb("123456", 4))

	// one show operator per cell, extra characters are not drawn
	assert.Equal(t, 4, strings.Count(content, " Tj"))
	assert.Contains(t, content, "<31> Tj")
	assert.Contains(t, content, "<34> Tj")
	assert.NotContains(t, content, "<35> Tj")
}

func TestMultilineWrap(t *testing.T) {
	layout := testLayout(t, 10)

	lines := layout.wrap("one two three four five six seven eight nine ten", 10)
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, layout.font.TextWidth(line, 10), layout.width-2*textPadding)
	}

	assert.Equal(t, []string{"first", "second"}, layout.wrap("first\nsecond", 10))
}

func TestUpdateAppearanceWithEmbeddedFont(t *testing.T) {
	doc, form := openForm(t, pdftest.Build(1, pdftest.Field{Name: "tin", MaxLen: 9, Flags: flagComb}))

	tt, err := fonts.ParseTrueType(goregular.TTF)
	require.NoError(t, err)
	font, err := doc.EmbedTrueType(tt, true)
	require.NoError(t, err)

	f, err := form.Field("tin")
	require.NoError(t, err)
	f.DisableRichText()
	f.SetRawValue("Zoë 123")
	require.NoError(t, f.UpdateAppearance(font))

	fld := f.(*field)
	assert.True(t, strings.HasPrefix(fld.da, "/FF"))
	_, hasAP := fld.widgets[0].dict.Find("AP")
	assert.True(t, hasAP)
	_, needAppearances := form.dict.Find("NeedAppearances")
	assert.False(t, needAppearances)
	assert.NotEmpty(t, font.used)

	data, err := doc.Bytes()
	require.NoError(t, err)
	require.NoError(t, VerifyOutput(data, 1))

	baseFont, ok := font.dict["BaseFont"].(types.Name)
	require.True(t, ok)
	assert.Contains(t, string(baseFont), "+")
	_, hasDescendants := font.dict.Find("DescendantFonts")
	assert.True(t, hasDescendants)

	_, form = openForm(t, data)
	f, err = form.Field("tin")
	require.NoError(t, err)
	assert.Equal(t, "Zoë 123", f.Value())
}

func TestFinalizeRewritesFontObjects(t *testing.T) {
	doc, err := Open(pdftest.Build(1))
	require.NoError(t, err)

	tt, err := fonts.ParseTrueType(goregular.TTF)
	require.NoError(t, err)
	font, err := doc.EmbedTrueType(tt, true)
	require.NoError(t, err)

	font.encode("AB")
	require.NoError(t, font.finalize())
	objects := len(doc.ctx.Table)
	cidFont, fontFile := *font.cidFont, *font.fontFile

	font.encode("CD")
	require.NoError(t, font.finalize())
	assert.Equal(t, objects, len(doc.ctx.Table))
	assert.Equal(t, cidFont, *font.cidFont)
	assert.Equal(t, fontFile, *font.fontFile)
	assert.Equal(t, types.Array{cidFont}, font.dict["DescendantFonts"])

	entry, ok := doc.ctx.FindTableEntryForIndRef(font.cidToGID)
	require.True(t, ok)
	sd, ok := entry.Object.(types.StreamDict)
	require.True(t, ok)

	// the subset keeps .notdef and A-D, renumbered in glyph order
	gidD, _ := tt.GlyphIndex('D')
	require.Len(t, sd.Content, 2*(int(gidD)+1))
	assert.Equal(t, []byte{0, 4}, sd.Content[2*int(gidD):])

	data, err := doc.Bytes()
	require.NoError(t, err)
	require.NoError(t, VerifyOutput(data, 1))
}

func TestStandardFontIsCached(t *testing.T) {
	doc, err := Open(pdftest.Build(1))
	require.NoError(t, err)

	a, err := doc.StandardFont(fonts.Helvetica)
	require.NoError(t, err)
	b, err := doc.StandardFont(fonts.Helvetica)
	require.NoError(t, err)
	assert.Same(t, a, b)

	// WinAnsi cannot encode Hangul, so it is dropped from the operand
	assert.Equal(t, "<41>", a.encode("A한"))
	assert.Equal(t, a.TextWidth("A", 10), a.TextWidth("A한", 10))
}
