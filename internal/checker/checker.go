// Package checker verifies that every field path referenced by a form's
// field definitions exists in the form's PDF template.
package checker

import (
	"fmt"

	"github.com/a3tai/pdf-form-filler/internal/fielddef"
	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/multierr"
)

// CheckFieldDefinitions loads the PDF in formBytes and returns the field
// paths referenced by fields that the PDF does not define, in walk order
func CheckFieldDefinitions(formBytes []byte, fields fielddef.Fields) ([]string, error) {
	doc, err := pdf.Open(formBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open form: %w", err)
	}
	form, err := doc.Form()
	if err != nil {
		return nil, fmt.Errorf("failed to read form fields: %w", err)
	}

	existing := form.FieldSet()
	missing := []string{}
	for _, path := range fielddef.AllPaths(fields) {
		if _, ok := existing[path]; !ok {
			missing = append(missing, path)
		}
	}
	return missing, nil
}

// Target is one form to check
type Target struct {
	Name   string
	Bytes  []byte
	Fields fielddef.Fields
}

// Result is the outcome of checking one Target
type Result struct {
	Name    string
	Missing []string
	Err     error
}

// Messages renders one line per missing field
func (r Result) Messages() []string {
	lines := make([]string, len(r.Missing))
	for i, path := range r.Missing {
		lines[i] = fmt.Sprintf("Field %s is missing in Form %s", path, r.Name)
	}
	return lines
}

// Run checks the targets concurrently. Results are in target order; forms
// that could not be loaded are reported through the combined error.
func Run(targets []Target) ([]Result, error) {
	results, _ := iter.MapErr(targets, func(t *Target) (Result, error) {
		missing, err := CheckFieldDefinitions(t.Bytes, t.Fields)
		if err != nil {
			err = fmt.Errorf("form %s: %w", t.Name, err)
		}
		return Result{Name: t.Name, Missing: missing, Err: err}, nil
	})

	var errs error
	for _, r := range results {
		errs = multierr.Append(errs, r.Err)
	}
	return results, errs
}

// Messages flattens the messages of all results
func Messages(results []Result) []string {
	var lines []string
	for _, r := range results {
		lines = append(lines, r.Messages()...)
	}
	return lines
}
