// Package taxforms holds the field configurations of the supported IRS
// forms and the service that fills them.
package taxforms

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/a3tai/pdf-form-filler/internal/fielddef"
	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/a3tai/pdf-form-filler/internal/pdf/fonts"
	"github.com/a3tai/pdf-form-filler/internal/signature"
)

// Type identifies a form configuration
type Type string

const (
	TypeW9     Type = "W9"
	TypeW8BEN  Type = "W8_BEN"
	TypeW8BENE Type = "W8_BEN_E"
)

// Values is implemented by the typed values of every form
type Values interface {
	// SignerName is the name drawn as the signature
	SignerName() string
	// Signed reports whether the signer asked for a drawn signature
	Signed() bool
	// SignatureDate is drawn next to forms without a date field, may be empty
	SignatureDate() string
}

// Spot is where a signature is drawn. DateX and DateY locate the signing
// date when HasDate is set.
type Spot struct {
	Page         int
	X, Y         float64
	HasDate      bool
	DateX, DateY float64
}

// Placement computes the signature position, possibly from the form
// itself such as the rectangle of a certification check box
type Placement func(form pdf.Form) (Spot, error)

// Form is the configuration of one tax form type
type Form struct {
	Type  Type
	Title string
	// Template is the file name of the blank form in the template directory
	Template string
	// Pages is the page count of the official template
	Pages  int
	Fields fielddef.Fields
	// UseFallbackReadonly selects read-only marking over flattening
	UseFallbackReadonly bool
	// NewValues returns a pointer to an empty values struct for decoding
	NewValues func() Values
	Signature Placement
}

// FillOptions tunes FillPDF
type FillOptions struct {
	// SignatureFont is the handwriting font, the bundled font when nil
	SignatureFont *fonts.TrueType
	Logger        *log.Logger
	Debug         bool
}

// DateSize is the font size of a drawn signing date
const DateSize = 10

// FillPDF signs doc when values ask for it and then writes every attribute
// of values into the form fields. Fonts of bundle must belong to doc.
func (f *Form) FillPDF(doc *pdf.Document, values Values, bundle pdf.FontBundle, opts FillOptions) error {
	form, err := doc.Form()
	if err != nil {
		return fmt.Errorf("failed to read %s form: %w", f.Type, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = doc.Logger()
	}

	// The signature font is embedded before any field is written
	if values.Signed() && f.Signature != nil {
		if err := f.sign(doc, form, values, bundle, opts, logger); err != nil {
			return err
		}
	}

	filler := &fielddef.Filler{
		Form:   form,
		Font:   bundle.Primary,
		Logger: logger,
		Debug:  opts.Debug,
	}
	if err := filler.FillAll(f.Fields, values); err != nil {
		return fmt.Errorf("failed to fill %s: %w", f.Type, err)
	}
	return nil
}

// FillNamesPDF writes every text field's name into doc instead of values
func (f *Form) FillNamesPDF(doc *pdf.Document, bundle pdf.FontBundle, opts FillOptions) error {
	form, err := doc.Form()
	if err != nil {
		return fmt.Errorf("failed to read %s form: %w", f.Type, err)
	}

	filler := &fielddef.Filler{
		Form:   form,
		Font:   bundle.Primary,
		Logger: opts.Logger,
		Debug:  opts.Debug,
	}
	if err := filler.FillNames(); err != nil {
		return fmt.Errorf("failed to fill %s field names: %w", f.Type, err)
	}
	return nil
}

func (f *Form) sign(doc *pdf.Document, form pdf.Form, values Values, bundle pdf.FontBundle, opts FillOptions, logger *log.Logger) error {
	spot, err := f.Signature(form)
	if err != nil {
		return fmt.Errorf("failed to place %s signature: %w", f.Type, err)
	}

	name := strings.TrimSpace(values.SignerName())
	if name != "" {
		r, err := signature.Add(doc, name, signature.Options{
			Page:     spot.Page,
			X:        spot.X,
			Y:        spot.Y,
			Fallback: bundle.Fallback,
			Program:  opts.SignatureFont,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("failed to sign %s: %w", f.Type, err)
		}
		if opts.Debug {
			logger.Printf("Signed %s with %s at %.1f pt", f.Type, r.Font, r.Size)
		}
	}

	date := strings.TrimSpace(values.SignatureDate())
	if spot.HasDate && date != "" && bundle.Fallback != nil {
		if err := doc.DrawText(spot.Page, spot.DateX, spot.DateY, bundle.Fallback, DateSize, date); err != nil {
			return fmt.Errorf("failed to date %s signature: %w", f.Type, err)
		}
	}
	return nil
}

// FieldAt places the signature relative to the first widget of the named
// field, typically the certification check box next to the signature line
func FieldAt(path string, dx, dy float64) Placement {
	return func(form pdf.Form) (Spot, error) {
		field, err := form.Field(path)
		if err != nil {
			return Spot{}, err
		}
		rect, ok := field.Rect()
		if !ok {
			return Spot{}, fmt.Errorf("field %s has no widget rectangle", path)
		}
		return Spot{Page: field.Page(), X: rect.URX + dx, Y: rect.LLY + dy}, nil
	}
}

// FixedAt places the signature at a constant position
func FixedAt(spot Spot) Placement {
	return func(pdf.Form) (Spot, error) {
		return spot, nil
	}
}

var registry = map[Type]*Form{
	TypeW9:     W9,
	TypeW8BEN:  W8BEN,
	TypeW8BENE: W8BENE,
}

// Lookup returns the configuration of a form type, matching
// case-insensitively and accepting hyphens for underscores
func Lookup(name string) (*Form, error) {
	key := Type(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_")))
	if f, ok := registry[key]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unknown form type %q (supported: %s)", name, strings.Join(typeNames(), ", "))
}

// All returns every form configuration ordered by type
func All() []*Form {
	forms := make([]*Form, 0, len(registry))
	for _, f := range registry {
		forms = append(forms, f)
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i].Type < forms[j].Type })
	return forms
}

func typeNames() []string {
	var names []string
	for _, f := range All() {
		names = append(names, string(f.Type))
	}
	return names
}
