package pdf

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"

	pdferrors "github.com/a3tai/pdf-form-filler/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldKind is the closed set of AcroForm field kinds
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindText
	KindCheckBox
	KindRadio
	KindPushButton
	KindChoice
	KindSignature
)

// String returns a human readable name of the kind
func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text field"
	case KindCheckBox:
		return "check box"
	case KindRadio:
		return "radio group"
	case KindPushButton:
		return "push button"
	case KindChoice:
		return "choice field"
	case KindSignature:
		return "signature field"
	default:
		return "unknown field"
	}
}

// Alignment is the quadding (/Q) of a text field
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Field flags (/Ff), PDF 32000-1 tables 221, 226 and 228
const (
	flagReadOnly    = 1 << 0
	flagMultiline   = 1 << 12
	flagRadio       = 1 << 15
	flagPushButton  = 1 << 16
	flagComb        = 1 << 24
	flagRichText    = 1 << 25
	annotFlagHidden = 1 << 1
	annotFlagNoView = 1 << 5
)

// Rect is a normalized rectangle in default user space
type Rect struct {
	LLX, LLY, URX, URY float64
}

// NewRect builds a rectangle from two opposite corners
func NewRect(x1, y1, x2, y2 float64) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{LLX: x1, LLY: y1, URX: x2, URY: y2}
}

// Width returns the horizontal extent
func (r Rect) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent
func (r Rect) Height() float64 { return r.URY - r.LLY }

// Form resolves fields of an interactive form by fully qualified name
type Form interface {
	// Field returns the terminal field with the given dotted name, or a
	// *errors.FieldNotFoundError.
	Field(path string) (Field, error)
	// FieldNames lists every terminal field in document order
	FieldNames() []string
}

// Field is one terminal AcroForm field
type Field interface {
	Name() string
	Kind() FieldKind

	// MaxLen returns the declared maximum length of a text field
	MaxLen() (int, bool)
	// Rect returns the rectangle of the first widget
	Rect() (Rect, bool)
	// Page returns the page index of the first widget, or -1
	Page() int
	// Value returns the current value; check boxes report their state name
	Value() string
	IsChecked() bool
	ReadOnly() bool
	SetReadOnly()

	SetAlignment(a Alignment)
	DisableRichText()
	// SetRawValue writes the encoded value into /V without touching appearances
	SetRawValue(value string)
	// UpdateAppearance regenerates every widget appearance using font
	UpdateAppearance(font *Font) error
	// SetText stores value and renders it with the document default font
	SetText(value string) error
	// Check turns a check box on
	Check() error
}

// AcroForm is the interactive form of a Document
type AcroForm struct {
	doc    *Document
	dict   types.Dict
	fields map[string]*field
	order  []string
}

type field struct {
	form     *AcroForm
	name     string
	dict     types.Dict
	widgets  []widget
	ft       string
	flags    int
	maxLen   int
	hasMax   bool
	da       string
	defaultV types.Object
	raw      *string // value written in this session
}

type widget struct {
	dict types.Dict
	ref  *types.IndirectRef
}

// inheritable field attributes, PDF 32000-1 12.7.3.1
type inherited struct {
	ft     string
	flags  int
	maxLen int
	hasMax bool
	da     string
	v      types.Object
}

// Form returns the interactive form of the document
func (d *Document) Form() (*AcroForm, error) {
	if d.form != nil {
		return d.form, nil
	}

	root, err := d.ctx.Catalog()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidTemplate, "failed to get catalog", err)
	}

	acroFormObj, found := root.Find("AcroForm")
	if !found {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeMissingAcroForm, "document has no AcroForm dictionary")
	}

	acroFormDict, err := d.ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference AcroForm", err)
	}
	if acroFormDict == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeMissingAcroForm, "AcroForm dictionary is null")
	}

	form := &AcroForm{
		doc:    d,
		dict:   acroFormDict,
		fields: make(map[string]*field),
	}

	base := inherited{}
	if daObj, found := acroFormDict.Find("DA"); found {
		if da, err := d.ctx.DereferenceStringOrHexLiteral(daObj, model.V10, nil); err == nil {
			base.da = da
		}
	}

	if fieldsObj, found := acroFormDict.Find("Fields"); found {
		fieldsArray, err := d.ctx.DereferenceArray(fieldsObj)
		if err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference Fields array", err)
		}
		for _, fieldObj := range fieldsArray {
			if err := form.walk(fieldObj, "", base, 0); err != nil {
				return nil, err
			}
		}
	}

	d.form = form
	return form, nil
}

// walk registers the terminal fields below a field dictionary
func (f *AcroForm) walk(obj types.Object, parent string, inh inherited, depth int) error {
	if depth > maxTreeDepth {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedObject, "field tree too deep").WithContext(parent)
	}

	ctx := f.doc.ctx
	dict, err := ctx.DereferenceDict(obj)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference field", err).WithContext(parent)
	}
	if dict == nil {
		return nil
	}

	name := parent
	if tObj, found := dict.Find("T"); found {
		if t, err := ctx.DereferenceStringOrHexLiteral(tObj, model.V10, nil); err == nil {
			if name == "" {
				name = t
			} else {
				name = parent + "." + t
			}
		}
	}

	f.inherit(dict, &inh)

	var childFields, widgetKids types.Array
	if kidsObj, found := dict.Find("Kids"); found {
		kids, err := ctx.DereferenceArray(kidsObj)
		if err != nil {
			return pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference field kids", err).WithContext(name)
		}
		for _, kid := range kids {
			kidDict, err := ctx.DereferenceDict(kid)
			if err != nil || kidDict == nil {
				continue
			}
			if _, hasT := kidDict.Find("T"); hasT {
				childFields = append(childFields, kid)
			} else {
				widgetKids = append(widgetKids, kid)
			}
		}
	}

	if len(childFields) > 0 {
		for _, kid := range childFields {
			if err := f.walk(kid, name, inh, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if name == "" {
		return nil
	}

	fld := &field{
		form:     f,
		name:     name,
		dict:     dict,
		ft:       inh.ft,
		flags:    inh.flags,
		maxLen:   inh.maxLen,
		hasMax:   inh.hasMax,
		da:       inh.da,
		defaultV: inh.v,
	}

	if len(widgetKids) == 0 {
		w := widget{dict: dict}
		if ref, ok := obj.(types.IndirectRef); ok {
			w.ref = &ref
		}
		fld.widgets = append(fld.widgets, w)
	}
	for _, kid := range widgetKids {
		kidDict, _ := ctx.DereferenceDict(kid)
		w := widget{dict: kidDict}
		if ref, ok := kid.(types.IndirectRef); ok {
			w.ref = &ref
		}
		fld.widgets = append(fld.widgets, w)
	}

	if _, dup := f.fields[name]; !dup {
		f.order = append(f.order, name)
	}
	f.fields[name] = fld
	return nil
}

func (f *AcroForm) inherit(dict types.Dict, inh *inherited) {
	ctx := f.doc.ctx

	if ftObj, found := dict.Find("FT"); found {
		if ft, err := ctx.DereferenceName(ftObj, model.V10, nil); err == nil {
			inh.ft = string(ft)
		}
	}
	if ffObj, found := dict.Find("Ff"); found {
		if ff, err := ctx.DereferenceInteger(ffObj); err == nil && ff != nil {
			inh.flags = int(*ff)
		}
	}
	if mlObj, found := dict.Find("MaxLen"); found {
		if ml, err := ctx.DereferenceInteger(mlObj); err == nil && ml != nil {
			inh.maxLen = int(*ml)
			inh.hasMax = true
		}
	}
	if daObj, found := dict.Find("DA"); found {
		if da, err := ctx.DereferenceStringOrHexLiteral(daObj, model.V10, nil); err == nil {
			inh.da = da
		}
	}
	if vObj, found := dict.Find("V"); found {
		inh.v = vObj
	}
}

// Field implements Form
func (f *AcroForm) Field(path string) (Field, error) {
	fld, ok := f.fields[path]
	if !ok {
		return nil, &pdferrors.FieldNotFoundError{Path: path}
	}
	return fld, nil
}

// FieldNames implements Form
func (f *AcroForm) FieldNames() []string {
	return append([]string(nil), f.order...)
}

// FieldSet returns the field names as a set
func (f *AcroForm) FieldSet() map[string]struct{} {
	set := make(map[string]struct{}, len(f.order))
	for _, name := range f.order {
		set[name] = struct{}{}
	}
	return set
}

// setNeedAppearances tells viewers whether they must rebuild appearances
func (f *AcroForm) setNeedAppearances(need bool) {
	if need {
		f.dict["NeedAppearances"] = types.Boolean(true)
		return
	}
	delete(f.dict, "NeedAppearances")
}

// registerFont adds font to the default resources of the form
func (f *AcroForm) registerFont(font *Font) (string, error) {
	var dr types.Dict
	if drObj, found := f.dict.Find("DR"); found {
		dict, err := f.doc.ctx.DereferenceDict(drObj)
		if err != nil {
			return "", pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference AcroForm DR", err)
		}
		dr = dict
	}
	if dr == nil {
		dr = types.Dict{}
		f.dict["DR"] = dr
	}
	return f.doc.addResource(dr, "Font", "FF", font.ref)
}

func (fld *field) Name() string {
	return fld.name
}

func (fld *field) Kind() FieldKind {
	switch fld.ft {
	case "Tx":
		return KindText
	case "Btn":
		switch {
		case fld.flags&flagRadio != 0:
			return KindRadio
		case fld.flags&flagPushButton != 0:
			return KindPushButton
		default:
			return KindCheckBox
		}
	case "Ch":
		return KindChoice
	case "Sig":
		return KindSignature
	default:
		return KindUnknown
	}
}

func (fld *field) MaxLen() (int, bool) {
	return fld.maxLen, fld.hasMax
}

func (fld *field) Rect() (Rect, bool) {
	if len(fld.widgets) == 0 {
		return Rect{}, false
	}
	rectObj, found := fld.widgets[0].dict.Find("Rect")
	if !found {
		return Rect{}, false
	}
	return fld.form.doc.rectangle(rectObj)
}

func (fld *field) Page() int {
	if len(fld.widgets) == 0 {
		return -1
	}
	w := fld.widgets[0]
	return fld.form.doc.pageOf(w.ref, w.dict)
}

func (fld *field) Value() string {
	if fld.raw != nil {
		return *fld.raw
	}
	ctx := fld.form.doc.ctx

	vObj, found := fld.dict.Find("V")
	if !found {
		vObj = fld.defaultV
	}
	if vObj == nil {
		return ""
	}

	if fld.ft == "Btn" {
		if name, err := ctx.DereferenceName(vObj, model.V10, nil); err == nil {
			return string(name)
		}
		return ""
	}
	if s, err := ctx.DereferenceStringOrHexLiteral(vObj, model.V10, nil); err == nil {
		return s
	}
	return ""
}

func (fld *field) IsChecked() bool {
	if fld.Kind() != KindCheckBox && fld.Kind() != KindRadio {
		return false
	}
	v := fld.Value()
	return v != "" && v != "Off"
}

func (fld *field) ReadOnly() bool {
	return fld.flags&flagReadOnly != 0
}

func (fld *field) SetReadOnly() {
	fld.setFlags(fld.flags | flagReadOnly)
}

func (fld *field) setFlags(flags int) {
	fld.flags = flags
	fld.dict["Ff"] = types.Integer(flags)
}

func (fld *field) SetAlignment(a Alignment) {
	fld.dict["Q"] = types.Integer(int(a))
	for _, w := range fld.widgets {
		if _, found := w.dict.Find("Q"); found {
			w.dict["Q"] = types.Integer(int(a))
		}
	}
}

func (fld *field) alignment() Alignment {
	for _, d := range []types.Dict{fld.widgetDict(), fld.dict} {
		if d == nil {
			continue
		}
		if qObj, found := d.Find("Q"); found {
			if q, err := fld.form.doc.ctx.DereferenceInteger(qObj); err == nil && q != nil {
				return Alignment(*q)
			}
		}
	}
	return AlignLeft
}

func (fld *field) widgetDict() types.Dict {
	if len(fld.widgets) == 0 {
		return nil
	}
	return fld.widgets[0].dict
}

func (fld *field) DisableRichText() {
	if fld.flags&flagRichText != 0 {
		fld.setFlags(fld.flags &^ flagRichText)
	}
	delete(fld.dict, "RV")
}

func (fld *field) SetRawValue(value string) {
	fld.dict["V"] = encodeTextString(value)
	fld.raw = &value
}

func (fld *field) SetText(value string) error {
	if fld.Kind() != KindText {
		return &pdferrors.FieldKindError{Path: fld.name, Kind: fld.Kind().String(), Expected: KindText.String()}
	}

	font, err := fld.form.doc.StandardFont(defaultStandardFont)
	if err != nil {
		return err
	}

	fld.SetRawValue(value)
	return fld.UpdateAppearance(font)
}

func (fld *field) Check() error {
	if fld.Kind() != KindCheckBox {
		return &pdferrors.FieldKindError{Path: fld.name, Kind: fld.Kind().String(), Expected: KindCheckBox.String()}
	}

	ctx := fld.form.doc.ctx
	onValue := ""
	states := make([]string, len(fld.widgets))
	for i, w := range fld.widgets {
		states[i] = onState(ctx, w.dict)
		if onValue == "" {
			onValue = states[i]
		}
	}
	if onValue == "" {
		onValue = "Yes"
	}

	fld.dict["V"] = types.Name(onValue)
	fld.raw = &onValue
	for i, w := range fld.widgets {
		if states[i] == onValue || states[i] == "" {
			w.dict["AS"] = types.Name(onValue)
		} else {
			w.dict["AS"] = types.Name("Off")
		}
	}
	return nil
}

// onState returns the name of the "on" appearance of a check box widget
func onState(ctx *model.Context, w types.Dict) string {
	apObj, found := w.Find("AP")
	if !found {
		return ""
	}
	ap, err := ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return ""
	}

	for _, key := range []string{"N", "D"} {
		nObj, found := ap.Find(key)
		if !found {
			continue
		}
		states, err := ctx.DereferenceDict(nObj)
		if err != nil || states == nil {
			continue
		}
		names := make([]string, 0, len(states))
		for name := range states {
			if name != "Off" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			sort.Strings(names)
			return names[0]
		}
	}
	return ""
}

// encodeTextString encodes a PDF text string: plain bytes for printable
// ASCII, UTF-16BE with a byte order mark otherwise
func encodeTextString(s string) types.HexLiteral {
	ascii := true
	for _, r := range s {
		if r < 0x20 || r > 0x7E {
			ascii = false
			break
		}
	}
	if ascii {
		return types.HexLiteral(strings.ToUpper(hex.EncodeToString([]byte(s))))
	}

	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2, 2+2*len(units))
	buf[0], buf[1] = 0xFE, 0xFF
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(buf)))
}

// describe is used in diagnostics
func (fld *field) String() string {
	maxLen := ""
	if fld.hasMax {
		maxLen = fmt.Sprintf(" maxlen=%d", fld.maxLen)
	}
	return fmt.Sprintf("%s (%s%s)", fld.name, fld.Kind(), maxLen)
}
