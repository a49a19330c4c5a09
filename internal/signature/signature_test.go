package signature

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/a3tai/pdf-form-filler/internal/pdf/fonts"
	"github.com/a3tai/pdf-form-filler/internal/pdf/pdftest"
	"github.com/a3tai/pdf-form-filler/internal/textfit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func newDoc(t *testing.T) (*pdf.Document, *pdf.Font) {
	t.Helper()
	doc, err := pdf.Open(pdftest.Build(1))
	require.NoError(t, err)
	fallback, err := doc.StandardFont(fonts.Helvetica)
	require.NoError(t, err)
	return doc, fallback
}

func TestAddCoveredName(t *testing.T) {
	doc, fallback := newDoc(t)

	r, err := Add(doc, "Ada Lovelace", Options{X: 100, Y: 80, Fallback: fallback})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", r.Text)
	assert.False(t, r.Fallback)
	assert.Equal(t, textfit.SignatureFontSize("Ada Lovelace"), r.Size)
	assert.NotEqual(t, fonts.Helvetica, r.Font)

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.NoError(t, pdf.VerifyOutput(data, 1))
}

func TestAddSwitchesToFallback(t *testing.T) {
	doc, err := pdf.Open(pdftest.Build(1))
	require.NoError(t, err)

	// WinAnsi has no Cyrillic, Go Regular does
	primary, err := doc.StandardFont(fonts.Helvetica)
	require.NoError(t, err)
	tt, err := fonts.ParseTrueType(goregular.TTF)
	require.NoError(t, err)
	fallback, err := doc.EmbedTrueType(tt, true)
	require.NoError(t, err)

	name := "Ада Лавлейс"
	r, err := Add(doc, name, Options{Font: primary, Fallback: fallback, X: 10, Y: 10})
	require.NoError(t, err)

	assert.True(t, r.Fallback)
	assert.Equal(t, name, r.Text)
	assert.Equal(t, fallback.Name(), r.Font)
	assert.InDelta(t, textfit.SignatureFontSize(name)*FallbackScale, r.Size, 1e-9)

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.NoError(t, pdf.VerifyOutput(data, 1))
}

func TestAddSubstitutesUnsupportedCharacters(t *testing.T) {
	doc, fallback := newDoc(t)

	name := strings.Repeat("Ada Lovelace ", 5) + "한" + strings.Repeat("x", 4)
	require.Equal(t, 70, utf8.RuneCountInString(name))

	r, err := Add(doc, name, Options{X: 50, Y: 50, Fallback: fallback})
	require.NoError(t, err)

	assert.False(t, r.Fallback)
	assert.Equal(t, utf8.RuneCountInString(name), utf8.RuneCountInString(r.Text))
	assert.Equal(t, strings.Replace(name, "한", "?", 1), r.Text)
	assert.Equal(t, textfit.MinSignatureSize, r.Size)
}

func TestAddWithoutFallback(t *testing.T) {
	doc, _ := newDoc(t)

	r, err := Add(doc, "名前", Options{})
	require.NoError(t, err)
	assert.Equal(t, "??", r.Text)
}

func TestAddRejectsInvalidPage(t *testing.T) {
	doc, fallback := newDoc(t)

	_, err := Add(doc, "Ada", Options{Page: 3, Fallback: fallback})
	assert.Error(t, err)
}

func TestAddRejectsInvalidFontData(t *testing.T) {
	doc, fallback := newDoc(t)

	_, err := Add(doc, "Ada", Options{Fallback: fallback, FontData: []byte("not a font")})
	assert.Error(t, err)
}

func TestSubstitute(t *testing.T) {
	supported := map[rune]struct{}{'a': {}, 'b': {}}
	assert.Equal(t, "ab?a?", substitute("abcad", supported))
	assert.Equal(t, "", substitute("", supported))
}
