package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"log"

	pdferrors "github.com/a3tai/pdf-form-filler/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Limits the depth of page and field trees to guard against reference cycles
const maxTreeDepth = 64

// Document is one in-memory PDF opened from template bytes. A Document is
// owned by a single request and is not safe for concurrent use.
type Document struct {
	ctx    *model.Context
	pages  []*page
	form   *AcroForm
	fonts  []*Font
	std    map[string]*Font
	logger *log.Logger

	// annotation object number -> page index
	annotPages map[int]int
}

type page struct {
	dict      types.Dict
	ref       *types.IndirectRef
	inherited types.Object // Resources inherited from the page tree
	wrapped   bool         // existing content already enclosed in q/Q
}

// Open parses template bytes into a fresh document
func Open(data []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidTemplate, "failed to read PDF context", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidTemplate, "failed to ensure page count", err)
	}

	doc := &Document{
		ctx:        ctx,
		std:        make(map[string]*Font),
		logger:     log.Default(),
		annotPages: make(map[int]int),
	}

	if err := doc.collectPages(); err != nil {
		return nil, err
	}

	return doc, nil
}

// SetLogger replaces the logger used for degraded-path diagnostics
func (d *Document) SetLogger(logger *log.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Logger returns the logger used for degraded-path diagnostics
func (d *Document) Logger() *log.Logger {
	return d.logger
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Context exposes the underlying pdfcpu context
func (d *Document) Context() *model.Context {
	return d.ctx
}

// Write finalizes embedded fonts and serializes the document
func (d *Document) Write(w io.Writer) error {
	for _, f := range d.fonts {
		if err := f.finalize(); err != nil {
			return pdferrors.WrapError(pdferrors.ErrorTypeInvalidFont, "failed to finalize font "+f.Name(), err)
		}
	}

	if err := api.WriteContext(d.ctx, w); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeWriteFailed, "failed to write PDF", err)
	}
	return nil
}

// Bytes serializes the document into a new buffer
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// collectPages walks the page tree in document order
func (d *Document) collectPages() error {
	root, err := d.ctx.Catalog()
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeInvalidTemplate, "failed to get catalog", err)
	}

	pagesObj, found := root.Find("Pages")
	if !found {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidTemplate, "catalog has no page tree")
	}

	if err := d.walkPages(pagesObj, nil, 0); err != nil {
		return err
	}

	for i, p := range d.pages {
		annots, err := d.pageAnnots(p)
		if err != nil {
			return err
		}
		for _, a := range annots {
			if ref, ok := a.(types.IndirectRef); ok {
				d.annotPages[int(ref.ObjectNumber)] = i
			}
		}
	}

	return nil
}

func (d *Document) walkPages(obj types.Object, inherited types.Object, depth int) error {
	if depth > maxTreeDepth {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedObject, "page tree too deep")
	}

	dict, err := d.ctx.DereferenceDict(obj)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference page tree node", err)
	}
	if dict == nil {
		return nil
	}

	if res, found := dict.Find("Resources"); found {
		inherited = res
	}

	kidsObj, found := dict.Find("Kids")
	if !found {
		p := &page{dict: dict, inherited: inherited}
		if ref, ok := obj.(types.IndirectRef); ok {
			p.ref = &ref
		}
		d.pages = append(d.pages, p)
		return nil
	}

	kids, err := d.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference page kids", err)
	}
	for _, kid := range kids {
		if err := d.walkPages(kid, inherited, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) page(index int) (*page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidPage,
			fmt.Sprintf("invalid page index %d (document has %d pages)", index, len(d.pages)))
	}
	return d.pages[index], nil
}

func (d *Document) pageAnnots(p *page) (types.Array, error) {
	obj, found := p.dict.Find("Annots")
	if !found {
		return nil, nil
	}
	annots, err := d.ctx.DereferenceArray(obj)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference page annotations", err)
	}
	return annots, nil
}

// pageOf returns the page index of an annotation, or -1 if it is not on any page
func (d *Document) pageOf(ref *types.IndirectRef, annot types.Dict) int {
	if ref != nil {
		if i, ok := d.annotPages[int(ref.ObjectNumber)]; ok {
			return i
		}
	}
	if pObj, found := annot.Find("P"); found {
		if pRef, ok := pObj.(types.IndirectRef); ok {
			for i, p := range d.pages {
				if p.ref != nil && p.ref.ObjectNumber == pRef.ObjectNumber {
					return i
				}
			}
		}
	}
	return -1
}

// pageResources returns the resource dictionary owned by the page, copying
// inherited resources onto the page first
func (d *Document) pageResources(p *page) (types.Dict, error) {
	obj, found := p.dict.Find("Resources")
	if found {
		res, err := d.ctx.DereferenceDict(obj)
		if err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference page resources", err)
		}
		if res != nil {
			return res, nil
		}
	}

	res := types.Dict{}
	if p.inherited != nil {
		inherited, err := d.ctx.DereferenceDict(p.inherited)
		if err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference inherited resources", err)
		}
		for k, v := range inherited {
			res[k] = v
		}
	}
	p.dict["Resources"] = res
	return res, nil
}

// addResource registers ref under category (Font, XObject) and returns its name
func (d *Document) addResource(res types.Dict, category, prefix string, ref types.IndirectRef) (string, error) {
	var sub types.Dict
	if obj, found := res.Find(category); found {
		dict, err := d.ctx.DereferenceDict(obj)
		if err != nil {
			return "", pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference "+category+" resources", err)
		}
		sub = dict
	}
	if sub == nil {
		sub = types.Dict{}
		res[category] = sub
	}

	for name, obj := range sub {
		if existing, ok := obj.(types.IndirectRef); ok && existing.ObjectNumber == ref.ObjectNumber {
			return name, nil
		}
	}

	for i := len(sub); ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		if _, taken := sub[name]; !taken {
			sub[name] = ref
			return name, nil
		}
	}
}

// appendPageContent adds a content stream after the existing page content.
// The existing content is enclosed in q/Q once so its graphics state cannot
// leak into the appended drawing.
func (d *Document) appendPageContent(p *page, content []byte) error {
	ref, err := d.newStream(types.Dict{}, content, true)
	if err != nil {
		return err
	}

	var existing types.Array
	if obj, found := p.dict.Find("Contents"); found {
		switch o := obj.(type) {
		case types.IndirectRef:
			target, err := d.ctx.Dereference(o)
			if err != nil {
				return pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference page contents", err)
			}
			if arr, ok := target.(types.Array); ok {
				existing = append(existing, arr...)
			} else {
				existing = types.Array{o}
			}
		case types.Array:
			existing = append(existing, o...)
		}
	}

	if !p.wrapped && len(existing) > 0 {
		open, err := d.newStream(types.Dict{}, []byte("q\n"), false)
		if err != nil {
			return err
		}
		closeRef, err := d.newStream(types.Dict{}, []byte("Q\n"), false)
		if err != nil {
			return err
		}
		existing = append(types.Array{*open}, existing...)
		existing = append(existing, *closeRef)
	}
	p.wrapped = true

	p.dict["Contents"] = append(existing, *ref)
	return nil
}

// newStream adds a stream object to the document
func (d *Document) newStream(dict types.Dict, content []byte, compress bool) (*types.IndirectRef, error) {
	sd, err := streamDict(dict, content, compress)
	if err != nil {
		return nil, err
	}

	ref, err := d.ctx.IndRefForNewObject(sd)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeWriteFailed, "failed to add stream object", err)
	}
	return ref, nil
}

func streamDict(dict types.Dict, content []byte, compress bool) (types.StreamDict, error) {
	raw := content
	var pipeline []types.PDFFilter
	if compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(content); err != nil {
			return types.StreamDict{}, pdferrors.WrapError(pdferrors.ErrorTypeWriteFailed, "failed to compress stream", err)
		}
		if err := zw.Close(); err != nil {
			return types.StreamDict{}, pdferrors.WrapError(pdferrors.ErrorTypeWriteFailed, "failed to compress stream", err)
		}
		raw = buf.Bytes()
		dict["Filter"] = types.Name("FlateDecode")
		pipeline = []types.PDFFilter{{Name: "FlateDecode"}}
	}

	length := int64(len(raw))
	dict["Length"] = types.Integer(len(raw))

	sd := types.NewStreamDict(dict, 0, &length, nil, pipeline)
	sd.Content = content
	sd.Raw = raw
	return sd, nil
}

// put stores obj under *ref. The first call adds a new object and sets
// *ref; later calls replace the object in place.
func (d *Document) put(ref **types.IndirectRef, obj types.Object) error {
	if *ref == nil {
		r, err := d.newObject(obj)
		if err != nil {
			return err
		}
		*ref = r
		return nil
	}

	entry, ok := d.ctx.FindTableEntryForIndRef(*ref)
	if !ok {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeWriteFailed,
			fmt.Sprintf("object %d not found", (*ref).ObjectNumber.Value()))
	}
	entry.Object = obj
	return nil
}

// putStream is put for stream objects
func (d *Document) putStream(ref **types.IndirectRef, dict types.Dict, content []byte, compress bool) error {
	sd, err := streamDict(dict, content, compress)
	if err != nil {
		return err
	}
	return d.put(ref, sd)
}

// newObject adds a plain object to the document
func (d *Document) newObject(obj types.Object) (*types.IndirectRef, error) {
	ref, err := d.ctx.IndRefForNewObject(obj)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeWriteFailed, "failed to add object", err)
	}
	return ref, nil
}

// number reads a numeric object, following references
func (d *Document) number(obj types.Object) (float64, bool) {
	f, err := d.ctx.DereferenceNumber(obj)
	if err != nil {
		return 0, false
	}
	return f, true
}

// rectangle reads a four-number array and normalizes its corners
func (d *Document) rectangle(obj types.Object) (Rect, bool) {
	arr, err := d.ctx.DereferenceArray(obj)
	if err != nil || len(arr) != 4 {
		return Rect{}, false
	}

	var c [4]float64
	for i, o := range arr {
		v, ok := d.number(o)
		if !ok {
			return Rect{}, false
		}
		c[i] = v
	}
	return NewRect(c[0], c[1], c[2], c[3]), true
}
