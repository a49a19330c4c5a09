package pdf

import (
	"errors"
	"testing"

	pdferrors "github.com/a3tai/pdf-form-filler/internal/pdf/errors"
	"github.com/a3tai/pdf-form-filler/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openForm(t *testing.T, data []byte) (*Document, *AcroForm) {
	t.Helper()
	doc, err := Open(data)
	require.NoError(t, err)
	form, err := doc.Form()
	require.NoError(t, err)
	return doc, form
}

func reopen(t *testing.T, doc *Document) (*Document, *AcroForm) {
	t.Helper()
	data, err := doc.Bytes()
	require.NoError(t, err)
	return openForm(t, data)
}

func TestOpenRejectsInvalidData(t *testing.T) {
	_, err := Open([]byte("definitely not a PDF"))
	require.Error(t, err)

	var pdfErr *pdferrors.PDFError
	require.True(t, errors.As(err, &pdfErr))
	assert.Equal(t, pdferrors.ErrorTypeInvalidTemplate, pdfErr.Type)
}

func TestFieldNames(t *testing.T) {
	data := pdftest.Build(2,
		pdftest.Field{Name: "topmostSubform[0].Page1[0].f1_01[0]"},
		pdftest.Field{Name: "topmostSubform[0].Page1[0].c1_1[0]", Kind: pdftest.CheckBox},
		pdftest.Field{Name: "topmostSubform[0].Page2[0].f2_01[0]", Page: 1},
		pdftest.Field{Name: "standalone"},
	)
	doc, form := openForm(t, data)

	assert.Equal(t, 2, doc.PageCount())
	assert.Equal(t, []string{
		"topmostSubform[0].Page1[0].f1_01[0]",
		"topmostSubform[0].Page1[0].c1_1[0]",
		"topmostSubform[0].Page2[0].f2_01[0]",
		"standalone",
	}, form.FieldNames())
	assert.Len(t, form.FieldSet(), 4)
}

func TestFieldAccessor(t *testing.T) {
	data := pdftest.Build(2,
		pdftest.Field{Name: "form.ssn", MaxLen: 3, Rect: [4]float64{100, 500, 160, 520}},
		pdftest.Field{Name: "form.name", Value: "Ada"},
		pdftest.Field{Name: "form.signed", Kind: pdftest.CheckBox, Page: 1, Rect: [4]float64{50, 60, 40, 70}},
	)
	_, form := openForm(t, data)

	ssn, err := form.Field("form.ssn")
	require.NoError(t, err)
	assert.Equal(t, KindText, ssn.Kind())
	maxLen, ok := ssn.MaxLen()
	assert.True(t, ok)
	assert.Equal(t, 3, maxLen)
	rect, ok := ssn.Rect()
	require.True(t, ok)
	assert.Equal(t, Rect{LLX: 100, LLY: 500, URX: 160, URY: 520}, rect)
	assert.Equal(t, 0, ssn.Page())

	name, err := form.Field("form.name")
	require.NoError(t, err)
	_, ok = name.MaxLen()
	assert.False(t, ok)
	assert.Equal(t, "Ada", name.Value())

	signed, err := form.Field("form.signed")
	require.NoError(t, err)
	assert.Equal(t, KindCheckBox, signed.Kind())
	assert.False(t, signed.IsChecked())
	assert.Equal(t, 1, signed.Page())
	rect, ok = signed.Rect()
	require.True(t, ok)
	assert.Equal(t, Rect{LLX: 40, LLY: 60, URX: 50, URY: 70}, rect)
}

func TestFieldNotFound(t *testing.T) {
	_, form := openForm(t, pdftest.Build(1, pdftest.Field{Name: "a"}))

	_, err := form.Field("b")
	require.Error(t, err)

	var notFound *pdferrors.FieldNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "b", notFound.Path)
}

func TestMissingAcroForm(t *testing.T) {
	doc, form := openForm(t, pdftest.Build(1, pdftest.Field{Name: "a"}))
	require.NoError(t, FlattenForm(doc, FlattenOptions{}))
	assert.NotNil(t, form)

	_, err := doc.Form()
	var pdfErr *pdferrors.PDFError
	require.True(t, errors.As(err, &pdfErr))
	assert.Equal(t, pdferrors.ErrorTypeMissingAcroForm, pdfErr.Type)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		onState string
		want    string
	}{
		{"default on-state", "", "Yes"},
		{"custom on-state", "1", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, form := openForm(t, pdftest.Build(1,
				pdftest.Field{Name: "box", Kind: pdftest.CheckBox, OnState: tt.onState}))

			box, err := form.Field("box")
			require.NoError(t, err)
			require.NoError(t, box.Check())
			assert.True(t, box.IsChecked())

			_, form = reopen(t, doc)
			box, err = form.Field("box")
			require.NoError(t, err)
			assert.True(t, box.IsChecked())
			assert.Equal(t, tt.want, box.Value())
		})
	}
}

func TestWrongKind(t *testing.T) {
	_, form := openForm(t, pdftest.Build(1,
		pdftest.Field{Name: "text"},
		pdftest.Field{Name: "box", Kind: pdftest.CheckBox},
	))

	text, err := form.Field("text")
	require.NoError(t, err)
	var kindErr *pdferrors.FieldKindError
	require.True(t, errors.As(text.Check(), &kindErr))
	assert.Equal(t, "text", kindErr.Path)

	box, err := form.Field("box")
	require.NoError(t, err)
	assert.True(t, errors.As(box.SetText("x"), &kindErr))
	assert.True(t, errors.As(box.UpdateAppearance(nil), &kindErr))
}

func TestSetTextPersists(t *testing.T) {
	doc, form := openForm(t, pdftest.Build(1, pdftest.Field{Name: "name"}))

	name, err := form.Field("name")
	require.NoError(t, err)
	require.NoError(t, name.SetText("Lovelace"))

	_, form = reopen(t, doc)
	name, err = form.Field("name")
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", name.Value())
}

func TestReadOnly(t *testing.T) {
	doc, form := openForm(t, pdftest.Build(1,
		pdftest.Field{Name: "name", Flags: flagMultiline}))

	name, err := form.Field("name")
	require.NoError(t, err)
	assert.False(t, name.ReadOnly())
	name.SetReadOnly()
	assert.True(t, name.ReadOnly())

	_, form = reopen(t, doc)
	name, err = form.Field("name")
	require.NoError(t, err)
	assert.True(t, name.ReadOnly())
}

func TestDisableRichText(t *testing.T) {
	_, form := openForm(t, pdftest.Build(1,
		pdftest.Field{Name: "name", Flags: flagRichText | flagMultiline}))

	name, err := form.Field("name")
	require.NoError(t, err)
	name.DisableRichText()

	fld := name.(*field)
	assert.Zero(t, fld.flags&flagRichText)
	assert.NotZero(t, fld.flags&flagMultiline)
}

func TestNewRect(t *testing.T) {
	r := NewRect(10, 20, 5, 2)
	assert.Equal(t, Rect{LLX: 5, LLY: 2, URX: 10, URY: 20}, r)
	assert.Equal(t, 5.0, r.Width())
	assert.Equal(t, 18.0, r.Height())
}

func TestEncodeTextString(t *testing.T) {
	assert.Equal(t, "416461", string(encodeTextString("Ada")))
	assert.Equal(t, "FEFF005A006F00EB", string(encodeTextString("Zoë")))
}
