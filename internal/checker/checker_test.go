package checker

import (
	"testing"

	"github.com/a3tai/pdf-form-filler/internal/fielddef"
	"github.com/a3tai/pdf-form-filler/internal/pdf/pdftest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCheckFieldDefinitions(t *testing.T) {
	form := pdftest.Build(1, pdftest.Field{Name: "A"}, pdftest.Field{Name: "B", Kind: pdftest.CheckBox})

	tests := []struct {
		name   string
		fields fielddef.Fields
		want   []string
	}{
		{
			name:   "one missing",
			fields: fielddef.Fields{"a": fielddef.Simple{Path: "A"}, "c": fielddef.Simple{Path: "C"}},
			want:   []string{"C"},
		},
		{
			name:   "all present",
			fields: fielddef.Fields{"a": fielddef.Simple{Path: "A"}, "b": fielddef.Simple{Path: "B"}},
			want:   []string{},
		},
		{
			name: "nested shapes",
			fields: fielddef.Fields{
				"combo": fielddef.Combo{Options: map[string]string{"x": "B", "y": "Y"}},
				"split": fielddef.SplitText{Parts: []fielddef.Part{fielddef.Fixed("A", 1), fielddef.Auto("S2")}},
				"group": fielddef.Nested{Fields: fielddef.Fields{
					"inner": fielddef.Combine(fielddef.Simple{Path: "A"}, fielddef.Advanced{Path: "M"}),
				}},
			},
			want: []string{"Y", "M", "S2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing, err := CheckFieldDefinitions(form, tt.fields)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, missing); diff != "" {
				t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckFieldDefinitionsInvalidPDF(t *testing.T) {
	_, err := CheckFieldDefinitions([]byte("not a pdf"), fielddef.Fields{})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	targets := []Target{
		{
			Name:   "W9",
			Bytes:  pdftest.Build(1, pdftest.Field{Name: "A"}),
			Fields: fielddef.Fields{"a": fielddef.Simple{Path: "A"}, "c": fielddef.Simple{Path: "C"}},
		},
		{
			Name:   "BROKEN",
			Bytes:  []byte("garbage"),
			Fields: fielddef.Fields{},
		},
		{
			Name:   "W8_BEN",
			Bytes:  pdftest.Build(1, pdftest.Field{Name: "A"}),
			Fields: fielddef.Fields{"a": fielddef.Simple{Path: "A"}},
		},
	}

	results, err := Run(targets)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), "BROKEN")

	require.Len(t, results, 3)
	assert.Equal(t, "W9", results[0].Name)
	assert.Equal(t, "BROKEN", results[1].Name)
	assert.Equal(t, "W8_BEN", results[2].Name)

	want := []string{"Field C is missing in Form W9"}
	if diff := cmp.Diff(want, Messages(results)); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}
