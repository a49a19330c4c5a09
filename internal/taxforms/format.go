package taxforms

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/a3tai/pdf-form-filler/internal/checker"
)

// FormatCheck renders check results as one line per missing field, followed
// by the forms that could not be checked. A success line is written when
// nothing is missing and err is nil.
func FormatCheck(results []checker.Result, err error) string {
	var b strings.Builder

	messages := checker.Messages(results)
	for _, line := range messages {
		b.WriteString(line + "\n")
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(&b, "Form %s could not be checked: %v\n", r.Name, r.Err)
		}
	}

	if len(messages) == 0 && err == nil {
		names := make([]string, len(results))
		for i, r := range results {
			names[i] = r.Name
		}
		fmt.Fprintf(&b, "All field definitions are valid (%s)\n", strings.Join(names, ", "))
	}
	return b.String()
}

// FormatFields renders a field inventory, one field per line
func FormatFields(result *FieldsResult) string {
	var b strings.Builder

	switch {
	case result.FormType != "" && result.Template != "":
		fmt.Fprintf(&b, "Form %s (%s): ", result.FormType, filepath.Base(result.Template))
	case result.FormType != "":
		fmt.Fprintf(&b, "Form %s: ", result.FormType)
	default:
		b.WriteString("Document: ")
	}
	fmt.Fprintf(&b, "%d pages, %d fields, %d unreferenced\n\n", result.Pages, len(result.Fields), result.Unreferenced)

	for _, f := range result.Fields {
		if f.Page < 0 {
			fmt.Fprintf(&b, "%s [%s, no widget", f.Name, f.Kind)
		} else {
			fmt.Fprintf(&b, "%s [%s, page %d", f.Name, f.Kind, f.Page+1)
		}
		if f.MaxLen > 0 {
			fmt.Fprintf(&b, ", max %d", f.MaxLen)
		}
		if f.ReadOnly {
			b.WriteString(", read-only")
		}
		b.WriteString("]")
		if !f.Referenced && result.FormType != "" {
			b.WriteString(" (unreferenced)")
		}
		b.WriteString("\n")
	}

	for i, page := range result.PageText {
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s\n", i+1, page)
	}
	return b.String()
}
