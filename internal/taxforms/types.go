package taxforms

// Request Types

// FillRequest asks for a filled form written to the output directory
type FillRequest struct {
	FormType string `json:"form_type"`
	// Values is the JSON encoded values tree of the form
	Values []byte `json:"values"`
	// Output is the file name below the output directory, generated when empty
	Output string `json:"output"`
	// FieldNames fills every text field with its own name and ignores Values
	FieldNames bool `json:"field_names,omitempty"`
}

// FieldsRequest asks for the field inventory of a template
type FieldsRequest struct {
	FormType    string `json:"form_type"`
	IncludeText bool   `json:"include_text"`
}

// Response Types

// FillResult describes a written form
type FillResult struct {
	FormType  Type   `json:"form_type"`
	RequestID string `json:"request_id"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Pages     int    `json:"pages"`
}

// FieldInfo describes one terminal field of a template
type FieldInfo struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Page       int    `json:"page"`
	MaxLen     int    `json:"max_len,omitempty"`
	ReadOnly   bool   `json:"read_only,omitempty"`
	Referenced bool   `json:"referenced"`
}

// FieldsResult is the field inventory of a template
type FieldsResult struct {
	FormType     Type        `json:"form_type"`
	Template     string      `json:"template"`
	Pages        int         `json:"pages"`
	Fields       []FieldInfo `json:"fields"`
	Unreferenced int         `json:"unreferenced"`
	PageText     []string    `json:"page_text,omitempty"`
}
