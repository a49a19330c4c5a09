package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	TaxformFillDescription = `Fill an IRS tax form (W-9, W-8BEN, W-8BEN-E) from a JSON values tree and save the finalized PDF.

**When to use:** A payee or vendor record is complete and a signed, non-editable tax form has to be produced.

**Values:** A JSON object whose attributes depend on the form, for example
{"signer": {"firstName": "Ada", "lastName": "Lovelace"}, "taxIdNumberType": "SSN", "taxIdNumber": "123-45-6789", "isSigned": true}
Identification numbers may contain hyphens. Unknown enumeration values are ignored.
With field_names set the values are ignored and every text field shows its own name, which helps when a template revision moved fields.

**Examples:**
• Vendor onboarding: "Fill a W9 for Analytical Engines Ltd with EIN 12-3456789"
• Foreign contractor: "Fill a W8_BEN for Zoë Ångström, Swedish resident, treaty rate 15%"

**Output:** The path of the written PDF, its size and the request id used in server logs.`

	TaxformCheckDescription = `Verify that every field referenced by the form configurations exists in the installed templates.

**When to use:** After replacing a template with a new IRS revision, or before deploying configuration changes.

**Output:** One "Field X is missing in Form Y" line per missing field, or a success line. Forms whose template cannot be loaded are reported as errors.

**Best practices:** Run for all forms at once by leaving form_type empty.`

	TaxformFieldsDescription = `List the interactive fields of a form template with their kind, page and capacity.

**When to use:** Mapping a new template revision, or finding out why a value does not appear in the output.

**Output:** One line per field, marked when no configuration references it. Optionally the plain text of every page.`

	TaxformListDescription = `List the supported tax forms, their template files and whether each template is installed.

**When to use:** Discover the accepted form_type values before calling taxform_fill.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"taxform_fill":   TaxformFillDescription,
	"taxform_check":  TaxformCheckDescription,
	"taxform_fields": TaxformFieldsDescription,
	"taxform_list":   TaxformListDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a sorted list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
