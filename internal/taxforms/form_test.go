package taxforms_test

import (
	"fmt"
	"testing"

	"github.com/a3tai/pdf-form-filler/internal/checker"
	"github.com/a3tai/pdf-form-filler/internal/fielddef"
	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/a3tai/pdf-form-filler/internal/pdf/fonts"
	"github.com/a3tai/pdf-form-filler/internal/pdf/pdftest"
	"github.com/a3tai/pdf-form-filler/internal/taxforms"
	"github.com/a3tai/pdf-form-filler/internal/taxforms/taxformstest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	w9Page1 = "topmostSubform[0].Page1[0]."
	w9Boxes = w9Page1 + "Boxes3a-b_ReadOrder[0]."
)

func openTemplate(t *testing.T, form *taxforms.Form) (*pdf.Document, *pdf.AcroForm, pdf.FontBundle) {
	t.Helper()
	doc, err := pdf.Open(taxformstest.Template(form, taxformstest.DefaultMaxLen()))
	require.NoError(t, err)
	acro, err := doc.Form()
	require.NoError(t, err)

	fallback, err := doc.StandardFont(fonts.Helvetica)
	require.NoError(t, err)
	tt, err := fonts.ParseTrueType(goregular.TTF)
	require.NoError(t, err)
	primary, err := doc.EmbedTrueType(tt, true)
	require.NoError(t, err)

	return doc, acro, pdf.FontBundle{Primary: primary, Fallback: fallback}
}

func value(t *testing.T, form pdf.Form, path string) string {
	t.Helper()
	field, err := form.Field(path)
	require.NoError(t, err)
	return field.Value()
}

func checked(t *testing.T, form pdf.Form, path string) bool {
	t.Helper()
	field, err := form.Field(path)
	require.NoError(t, err)
	return field.IsChecked()
}

func TestW9SocialSecurityNumber(t *testing.T) {
	doc, form, bundle := openTemplate(t, taxforms.W9)

	values := &taxforms.W9Values{
		Signer:          taxforms.Name{FirstName: "Ada", LastName: "Lovelace"},
		TaxIDNumberType: "SSN",
		TaxIDNumber:     "123-45-6789",
	}
	require.NoError(t, taxforms.W9.FillPDF(doc, values, bundle, taxforms.FillOptions{}))

	assert.Equal(t, "Ada Lovelace", value(t, form, w9Page1+"f1_01[0]"))
	assert.Equal(t, "123", value(t, form, w9Page1+"f1_11[0]"))
	assert.Equal(t, "45", value(t, form, w9Page1+"f1_12[0]"))
	assert.Equal(t, "6789", value(t, form, w9Page1+"f1_13[0]"))

	// EIN boxes are guarded by the identification number type
	assert.Empty(t, value(t, form, w9Page1+"f1_14[0]"))
	assert.Empty(t, value(t, form, w9Page1+"f1_15[0]"))

	for i := 0; i <= 6; i++ {
		path := fmt.Sprintf("%sc1_1[%d]", w9Boxes, i)
		assert.False(t, checked(t, form, path), path)
	}

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.NoError(t, pdf.VerifyOutput(data, taxforms.W9.Pages))
}

func TestW9EmployerIdentificationNumber(t *testing.T) {
	doc, form, bundle := openTemplate(t, taxforms.W9)

	values := &taxforms.W9Values{
		BusinessName:      "Analytical Engines Ltd",
		TaxClassification: taxforms.ClassificationLLC,
		LLCClassification: "C",
		// Guarded by the OTHER classification
		OtherClassification: "ignored",
		TaxIDNumberType:     "ein",
		TaxIDNumber:         "12-3456789",
		Exemptions:          taxforms.W9Exemptions{PayeeCode: "5"},
		Address: taxforms.Address{
			Address1:   "12 St James's Square",
			Address2:   "Suite 4",
			City:       "London",
			Zone:       "LDN",
			PostalCode: "SW1Y 4JH",
		},
	}
	require.NoError(t, taxforms.W9.FillPDF(doc, values, bundle, taxforms.FillOptions{}))

	assert.Equal(t, "12", value(t, form, w9Page1+"f1_14[0]"))
	assert.Equal(t, "3456789", value(t, form, w9Page1+"f1_15[0]"))
	assert.Empty(t, value(t, form, w9Page1+"f1_11[0]"))

	assert.True(t, checked(t, form, w9Boxes+"c1_1[5]"))
	assert.False(t, checked(t, form, w9Boxes+"c1_1[0]"))
	assert.Equal(t, "C", value(t, form, w9Boxes+"f1_03[0]"))
	assert.Empty(t, value(t, form, w9Boxes+"f1_04[0]"))

	assert.Equal(t, "Analytical Engines Ltd", value(t, form, w9Page1+"f1_02[0]"))
	assert.Equal(t, "5", value(t, form, w9Page1+"f1_05[0]"))
	assert.Empty(t, value(t, form, w9Page1+"f1_06[0]"))
	address := w9Page1 + "Address_ReadOrder[0]."
	assert.Equal(t, "12 St James's Square, Suite 4", value(t, form, address+"f1_07[0]"))
	assert.Equal(t, "London, LDN SW1Y 4JH", value(t, form, address+"f1_08[0]"))
}

func TestW9UnknownClassificationIsIgnored(t *testing.T) {
	doc, form, bundle := openTemplate(t, taxforms.W9)

	values := &taxforms.W9Values{TaxClassification: "COOPERATIVE"}
	require.NoError(t, taxforms.W9.FillPDF(doc, values, bundle, taxforms.FillOptions{Debug: true}))

	for _, path := range fielddef.Paths(taxforms.W9.Fields["taxClassification"]) {
		assert.False(t, checked(t, form, path), path)
	}
}

func TestW9Signed(t *testing.T) {
	doc, _, bundle := openTemplate(t, taxforms.W9)

	values := &taxforms.W9Values{
		Signer:   taxforms.Name{FirstName: "Ada", LastName: "Lovelace"},
		IsSigned: true,
		Date:     "10/16/2026",
	}
	require.NoError(t, taxforms.W9.FillPDF(doc, values, bundle, taxforms.FillOptions{}))
	require.NoError(t, pdf.FlattenForm(doc, pdf.FlattenOptions{}))

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.NoError(t, pdf.VerifyOutput(data, taxforms.W9.Pages))
}

func TestW8BENSignaturePlacement(t *testing.T) {
	_, form, _ := openTemplate(t, taxforms.W8BEN)

	capacity, err := form.Field("topmostSubform[0].Page1[0].c1_02[0]")
	require.NoError(t, err)
	rect, ok := capacity.Rect()
	require.True(t, ok)

	spot, err := taxforms.W8BEN.Signature(form)
	require.NoError(t, err)
	assert.Equal(t, 0, spot.Page)
	assert.Equal(t, rect.URX+40, spot.X)
	assert.Equal(t, rect.LLY+14, spot.Y)
	assert.False(t, spot.HasDate)
}

func TestW8BENFill(t *testing.T) {
	doc, form, bundle := openTemplate(t, taxforms.W8BEN)

	values := &taxforms.W8BENValues{
		Signer:             taxforms.Name{FirstName: "Zoë", LastName: "Ångström"},
		CitizenshipCountry: "Sweden",
		PermanentAddress: taxforms.Address{
			Address1:    "Drottninggatan 1",
			City:        "Stockholm",
			PostalCode:  "111 51",
			CountryCode: "SE",
		},
		TaxIDNumberType:         "FOREIGN",
		TaxIDNumber:             "not written",
		ForeignTaxIDNotRequired: true,
		Treaty:                  &taxforms.Treaty{Country: "Sweden", Rate: "15"},
		CapacityToSign:          true,
		IsSigned:                true,
		Date:                    "10-16-2026",
	}
	require.NoError(t, taxforms.W8BEN.FillPDF(doc, values, bundle, taxforms.FillOptions{}))

	page := "topmostSubform[0].Page1[0]."
	assert.Equal(t, "Zoë Ångström", value(t, form, page+"f_1[0]"))
	assert.Equal(t, "Zoë Ångström", value(t, form, page+"f_21[0]"))
	assert.Equal(t, "Drottninggatan 1", value(t, form, page+"f_3[0]"))
	assert.Equal(t, "Stockholm, 111 51", value(t, form, page+"f_4[0]"))
	assert.Equal(t, "SE", value(t, form, page+"f_5[0]"))
	assert.Empty(t, value(t, form, page+"f_6[0]"), "no mailing address")
	assert.Empty(t, value(t, form, page+"f_9[0]"), "US TIN guarded by type")
	assert.True(t, checked(t, form, page+"c1_01[0]"))
	assert.Equal(t, "Sweden", value(t, form, page+"f_13[0]"))
	assert.Equal(t, "15", value(t, form, page+"f_15[0]"))
	assert.Empty(t, value(t, form, page+"f_14[0]"))
	assert.True(t, checked(t, form, page+"c1_02[0]"))
	assert.Equal(t, "10-16-2026", value(t, form, page+"f_20[0]"))
}

func TestW8BENEHybridCombo(t *testing.T) {
	yes, no := true, false
	page := "topmostSubform[0].Page1[0]."

	tests := []struct {
		name    string
		hybrid  *bool
		checked string
	}{
		{"yes", &yes, page + "c1_2[0]"},
		{"no", &no, page + "c1_2[1]"},
		{"unset", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, form, bundle := openTemplate(t, taxforms.W8BENE)
			values := &taxforms.W8BENEValues{
				OrganizationName:    "Analytical Engines AB",
				Chapter3Status:      taxforms.Chapter3Corporation,
				Chapter4Status:      taxforms.Chapter4ActiveNFFE,
				IsHybridTreatyClaim: tt.hybrid,
			}
			require.NoError(t, taxforms.W8BENE.FillPDF(doc, values, bundle, taxforms.FillOptions{}))

			assert.True(t, checked(t, form, page+"c1_1[0]"))
			assert.True(t, checked(t, form, page+"c1_3[5]"))
			for _, path := range []string{page + "c1_2[0]", page + "c1_2[1]"} {
				assert.Equal(t, path == tt.checked, checked(t, form, path), path)
			}
		})
	}
}

func TestFieldDefinitionsResolve(t *testing.T) {
	for _, form := range taxforms.All() {
		t.Run(string(form.Type), func(t *testing.T) {
			missing, err := checker.CheckFieldDefinitions(taxformstest.Template(form, nil), form.Fields)
			require.NoError(t, err)
			assert.Empty(t, missing)
		})
	}
}

func TestFieldDefinitionsReportDrift(t *testing.T) {
	fields := taxformstest.Fields(taxforms.W9, nil)
	dropped := w9Page1 + "f1_12[0]"

	var kept []pdftest.Field
	for _, f := range fields {
		if f.Name != dropped {
			kept = append(kept, f)
		}
	}

	results, err := checker.Run([]checker.Target{{
		Name:   string(taxforms.TypeW9),
		Bytes:  pdftest.Build(taxforms.W9.Pages, kept...),
		Fields: taxforms.W9.Fields,
	}})
	require.NoError(t, err)

	want := []string{"Field " + dropped + " is missing in Form W9"}
	if diff := cmp.Diff(want, checker.Messages(results)); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want taxforms.Type
	}{
		{"W9", taxforms.TypeW9},
		{"w9", taxforms.TypeW9},
		{"W8_BEN", taxforms.TypeW8BEN},
		{"w8-ben-e", taxforms.TypeW8BENE},
		{" W8_BEN_E ", taxforms.TypeW8BENE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := taxforms.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, form.Type)
		})
	}

	_, err := taxforms.Lookup("1099")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "W8_BEN, W8_BEN_E, W9")
}

func TestAllIsOrdered(t *testing.T) {
	var types []taxforms.Type
	for _, f := range taxforms.All() {
		types = append(types, f.Type)
	}
	assert.Equal(t, []taxforms.Type{taxforms.TypeW8BEN, taxforms.TypeW8BENE, taxforms.TypeW9}, types)
}
