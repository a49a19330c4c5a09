package fielddef

import (
	"fmt"
	"log"
	"strings"

	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/a3tai/pdf-form-filler/internal/textfit"
)

// Filler writes values into a form according to field definitions
type Filler struct {
	Form pdf.Form
	// Font, when set, renders text values instead of the form's default font
	Font   *pdf.Font
	Logger *log.Logger
	// Debug enables logging of tolerated mismatches such as unknown combo keys
	Debug bool
}

// Fill evaluates def against value, writing into form. all is the complete
// values tree handed to transforms and guards.
func Fill(form pdf.Form, def Definition, value, all any, font *pdf.Font) error {
	f := &Filler{Form: form, Font: font}
	return f.Fill(def, value, all)
}

// Fill evaluates a single definition
func (f *Filler) Fill(def Definition, value, all any) error {
	return def.Accept(evaluator{filler: f, value: value, all: all})
}

// FillAll evaluates every attribute of fields against the member of all
// with the same name
func (f *Filler) FillAll(fields Fields, all any) error {
	for _, key := range fields.Keys() {
		if err := f.Fill(fields[key], Get(all, key), all); err != nil {
			return fmt.Errorf("failed to fill %s: %w", key, err)
		}
	}
	return nil
}

// FillNames writes the name of every text field into the field itself,
// shortened to its capacity. The result shows where each field sits on the
// template.
func (f *Filler) FillNames() error {
	e := evaluator{filler: f}
	for _, name := range f.Form.FieldNames() {
		field, err := f.Form.Field(name)
		if err != nil {
			return err
		}
		if field.Kind() != pdf.KindText {
			continue
		}

		limit, _ := field.MaxLen()
		field.SetAlignment(pdf.AlignLeft)
		if err := e.writeText(field, textfit.TruncateMiddle(name, limit)); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func (f *Filler) debugf(format string, args ...any) {
	if !f.Debug {
		return
	}
	logger := f.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

type evaluator struct {
	filler *Filler
	value  any
	all    any
}

func (e evaluator) with(value any) evaluator {
	e.value = value
	return e
}

func (e evaluator) VisitSimple(d Simple) error {
	return e.fillField(d.Path, e.value)
}

func (e evaluator) VisitAdvanced(d Advanced) error {
	if d.If != nil && !d.If(e.value, e.all) {
		return nil
	}
	value := e.value
	if d.Transform != nil {
		value = d.Transform(e.value, e.all)
	}
	return e.fillField(d.Path, value)
}

func (e evaluator) VisitCombo(d Combo) error {
	key := String(e.value)
	if d.Transform != nil {
		key = d.Transform(e.value, e.all)
	}

	path, ok := d.Options[key]
	if !ok {
		if key != "" {
			e.filler.debugf("Ignoring value %q outside of combo options %v", key, d.optionKeys())
		}
		return nil
	}

	field, err := e.filler.Form.Field(path)
	if err != nil {
		return err
	}
	return field.Check()
}

func (e evaluator) VisitSplitText(d SplitText) error {
	if d.If != nil && !d.If(e.value, e.all) {
		return nil
	}

	text := String(e.value)
	if d.Transform != nil {
		text = d.Transform(e.value, e.all)
	}
	if text == "" {
		return nil
	}

	// slices are cut from the untrimmed text and trimmed one by one
	runes := []rune(text)
	start := 0
	for _, part := range d.Parts {
		field, err := e.filler.Form.Field(part.Path)
		if err != nil {
			return err
		}

		end := len(runes)
		if n, ok := capacity(part, field); ok {
			end = min(start+n, len(runes))
		}
		if start >= end {
			start = end
			continue
		}

		slice := strings.TrimSpace(string(runes[start:end]))
		if slice != "" {
			if err := e.writeText(field, slice); err != nil {
				return fmt.Errorf("failed to write %s: %w", part.Path, err)
			}
		}
		start = end
	}
	return nil
}

// capacity resolves the number of characters a part holds. The second
// result is false when the field declares no limit.
func capacity(part Part, field pdf.Field) (int, bool) {
	if !part.Auto {
		return max(part.MaxLen, 0), true
	}
	return field.MaxLen()
}

func (e evaluator) VisitNested(d Nested) error {
	for _, key := range d.Fields.Keys() {
		if err := d.Fields[key].Accept(e.with(Get(e.value, key))); err != nil {
			return err
		}
	}
	return nil
}

func (e evaluator) VisitMulti(d Multi) error {
	for _, sub := range d.Definitions {
		if err := sub.Accept(e); err != nil {
			return err
		}
	}
	return nil
}

func (e evaluator) fillField(path string, value any) error {
	field, err := e.filler.Form.Field(path)
	if err != nil {
		return err
	}
	if !Truthy(value) {
		return nil
	}

	switch field.Kind() {
	case pdf.KindText:
		field.SetAlignment(pdf.AlignLeft)
		if err := e.writeText(field, strings.TrimSpace(String(value))); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	case pdf.KindCheckBox:
		return field.Check()
	}
	return nil
}

// writeText stores text without letting the form's default font render it
// when a font was supplied
func (e evaluator) writeText(field pdf.Field, text string) error {
	font := e.filler.Font
	if font == nil {
		return field.SetText(text)
	}
	field.DisableRichText()
	field.SetRawValue(text)
	return field.UpdateAppearance(font)
}
