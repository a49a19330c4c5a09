// Package taxformstest builds stand-in templates for the configured tax
// forms, holding exactly the fields their configurations reference.
package taxformstest

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/a3tai/pdf-form-filler/internal/fielddef"
	"github.com/a3tai/pdf-form-filler/internal/pdf/pdftest"
	"github.com/a3tai/pdf-form-filler/internal/taxforms"
)

// EINSuffixLength is the /MaxLen of auto-sized EIN boxes in built templates
const EINSuffixLength = 7

var pageSegment = regexp.MustCompile(`Page(\d+)\[`)

// Fields returns the synthetic fields of form. Paths whose last segment
// starts with "c" become check boxes, all others text fields.
func Fields(form *taxforms.Form, maxLen map[string]int) []pdftest.Field {
	perPage := make(map[int]int)
	var fields []pdftest.Field
	for _, path := range fielddef.AllPaths(form.Fields) {
		page := 0
		if m := pageSegment.FindStringSubmatch(path); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				page = n - 1
			}
		}

		slot := perPage[page]
		perPage[page]++
		x := 36 + float64(slot/20)*190
		y := 700 - float64(slot%20)*30

		f := pdftest.Field{Name: path, Page: page, MaxLen: maxLen[path]}
		last := path[strings.LastIndex(path, ".")+1:]
		if strings.HasPrefix(last, "c") {
			f.Kind = pdftest.CheckBox
			f.Rect = [4]float64{x, y, x + 12, y + 12}
		} else {
			f.Rect = [4]float64{x, y, x + 180, y + 20}
		}
		fields = append(fields, f)
	}
	return fields
}

// Template builds a template for form with the given /MaxLen overrides
func Template(form *taxforms.Form, maxLen map[string]int) []byte {
	return pdftest.Build(form.Pages, Fields(form, maxLen)...)
}

// DefaultMaxLen are the capacities of auto-sized parts of the configured forms
func DefaultMaxLen() map[string]int {
	return map[string]int{
		"topmostSubform[0].Page1[0].f1_15[0]": EINSuffixLength,
	}
}

// WriteTemplates writes a template for every configured form into dir
func WriteTemplates(t testing.TB, dir string) {
	t.Helper()
	for _, form := range taxforms.All() {
		data := Template(form, DefaultMaxLen())
		if err := os.WriteFile(filepath.Join(dir, form.Template), data, 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", form.Template, err)
		}
	}
}
