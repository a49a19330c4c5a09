package taxforms_test

import (
	"errors"
	"testing"

	"github.com/a3tai/pdf-form-filler/internal/checker"
	"github.com/a3tai/pdf-form-filler/internal/taxforms"
	"github.com/stretchr/testify/assert"
)

func TestFormatFields(t *testing.T) {
	result := &taxforms.FieldsResult{
		FormType: taxforms.TypeW9,
		Template: "/srv/templates/fw9.pdf",
		Pages:    6,
		Fields: []taxforms.FieldInfo{
			{Name: "a", Kind: "text field", Page: 0, MaxLen: 3, Referenced: true},
			{Name: "b", Kind: "check box", Page: 1, ReadOnly: true},
		},
		Unreferenced: 1,
		PageText:     []string{"Request for Taxpayer"},
	}

	formatted := taxforms.FormatFields(result)
	assert.Contains(t, formatted, "Form W9 (fw9.pdf): 6 pages, 2 fields, 1 unreferenced")
	assert.Contains(t, formatted, "a [text field, page 1, max 3]\n")
	assert.Contains(t, formatted, "b [check box, page 2, read-only] (unreferenced)\n")
	assert.Contains(t, formatted, "--- Page 1 ---\nRequest for Taxpayer")

	// Documents without a form configuration have nothing to reference
	result.FormType = ""
	formatted = taxforms.FormatFields(result)
	assert.Contains(t, formatted, "Document: 6 pages")
	assert.NotContains(t, formatted, "(unreferenced)")
}

func TestFormatCheck(t *testing.T) {
	ok := []checker.Result{{Name: "W9"}, {Name: "W8_BEN"}}
	assert.Equal(t, "All field definitions are valid (W9, W8_BEN)\n", taxforms.FormatCheck(ok, nil))

	loadErr := errors.New("template not found")
	failed := []checker.Result{
		{Name: "W9", Missing: []string{"f1_01[0]"}},
		{Name: "W8_BEN", Err: loadErr},
	}
	formatted := taxforms.FormatCheck(failed, loadErr)
	assert.Contains(t, formatted, "Field f1_01[0] is missing in Form W9\n")
	assert.Contains(t, formatted, "Form W8_BEN could not be checked: template not found\n")
	assert.NotContains(t, formatted, "All field definitions are valid")
}
