package pdf

import (
	"bytes"
	"errors"
	"fmt"

	pdferrors "github.com/a3tai/pdf-form-filler/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FlattenOptions selects how a filled form is finalized
type FlattenOptions struct {
	// UseFallbackReadonly marks every field read-only instead of flattening.
	// It is a static per-template choice for documents known to break the
	// flatten path.
	UseFallbackReadonly bool
}

// FlattenForm finalizes the interactive form of doc. By default every
// visible widget appearance is drawn into its page, widget annotations are
// removed and the AcroForm is dropped from the catalog. A document without
// a form is left unchanged.
func FlattenForm(doc *Document, opts FlattenOptions) error {
	form, err := doc.Form()
	if err != nil {
		var pdfErr *pdferrors.PDFError
		if errors.As(err, &pdfErr) && pdfErr.Type == pdferrors.ErrorTypeMissingAcroForm {
			return nil
		}
		return err
	}

	if opts.UseFallbackReadonly {
		for _, name := range form.order {
			form.fields[name].SetReadOnly()
		}
		doc.logger.Printf("Marked %d form fields read-only instead of flattening", len(form.order))
		return nil
	}

	for i, p := range doc.pages {
		if err := doc.flattenPage(p); err != nil {
			return fmt.Errorf("failed to flatten page %d: %w", i+1, err)
		}
	}

	root, err := doc.ctx.Catalog()
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeInvalidTemplate, "failed to get catalog", err)
	}
	delete(root, "AcroForm")
	doc.form = nil

	return nil
}

func (d *Document) flattenPage(p *page) error {
	annots, err := d.pageAnnots(p)
	if err != nil || len(annots) == 0 {
		return err
	}

	var kept types.Array
	var content bytes.Buffer
	for _, annotObj := range annots {
		annot, err := d.ctx.DereferenceDict(annotObj)
		if err != nil || annot == nil {
			kept = append(kept, annotObj)
			continue
		}
		var subtype types.Name
		if subtypeObj, found := annot.Find("Subtype"); found {
			subtype, _ = d.ctx.DereferenceName(subtypeObj, model.V10, nil)
		}
		if subtype != "Widget" {
			kept = append(kept, annotObj)
			continue
		}

		if err := d.drawWidget(p, annot, &content); err != nil {
			return err
		}
	}

	if len(kept) == 0 {
		delete(p.dict, "Annots")
	} else {
		p.dict["Annots"] = kept
	}

	if content.Len() == 0 {
		return nil
	}
	return d.appendPageContent(p, content.Bytes())
}

// drawWidget appends the operators painting the normal appearance of a
// widget at its rectangle
func (d *Document) drawWidget(p *page, annot types.Dict, content *bytes.Buffer) error {
	if fObj, found := annot.Find("F"); found {
		if flags, err := d.ctx.DereferenceInteger(fObj); err == nil && flags != nil {
			if int(*flags)&(annotFlagHidden|annotFlagNoView) != 0 {
				return nil
			}
		}
	}

	rectObj, found := annot.Find("Rect")
	if !found {
		return nil
	}
	rect, ok := d.rectangle(rectObj)
	if !ok || rect.Width() == 0 || rect.Height() == 0 {
		return nil
	}

	apObj, ok := appearanceStream(d.ctx, annot)
	if !ok {
		return nil
	}
	apRef, ok := apObj.(types.IndirectRef)
	if !ok {
		return nil
	}
	target, err := d.ctx.Dereference(apRef)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeMalformedObject, "failed to dereference widget appearance", err)
	}
	sd, ok := target.(types.StreamDict)
	if !ok {
		return nil
	}
	if _, found := sd.Dict.Find("Subtype"); !found {
		sd.Dict["Subtype"] = types.Name("Form")
	}

	bboxObj, found := sd.Dict.Find("BBox")
	if !found {
		return nil
	}
	bbox, ok := d.rectangle(bboxObj)
	if !ok || bbox.Width() == 0 || bbox.Height() == 0 {
		return nil
	}
	bbox = d.transformedBBox(sd.Dict, bbox)

	res, err := d.pageResources(p)
	if err != nil {
		return err
	}
	name, err := d.addResource(res, "XObject", "FlatAP", apRef)
	if err != nil {
		return err
	}

	sx := rect.Width() / bbox.Width()
	sy := rect.Height() / bbox.Height()
	fmt.Fprintf(content, "q %s 0 0 %s %s %s cm /%s Do Q\n",
		formatNumber(sx), formatNumber(sy),
		formatNumber(rect.LLX-bbox.LLX*sx), formatNumber(rect.LLY-bbox.LLY*sy),
		name)
	return nil
}

// transformedBBox applies the /Matrix of a form XObject to its bounding box
func (d *Document) transformedBBox(dict types.Dict, bbox Rect) Rect {
	mObj, found := dict.Find("Matrix")
	if !found {
		return bbox
	}
	arr, err := d.ctx.DereferenceArray(mObj)
	if err != nil || len(arr) != 6 {
		return bbox
	}
	var m [6]float64
	for i, o := range arr {
		v, ok := d.number(o)
		if !ok {
			return bbox
		}
		m[i] = v
	}

	corners := [4][2]float64{
		{bbox.LLX, bbox.LLY}, {bbox.URX, bbox.LLY},
		{bbox.LLX, bbox.URY}, {bbox.URX, bbox.URY},
	}
	var out Rect
	for i, c := range corners {
		x := m[0]*c[0] + m[2]*c[1] + m[4]
		y := m[1]*c[0] + m[3]*c[1] + m[5]
		if i == 0 {
			out = Rect{LLX: x, LLY: y, URX: x, URY: y}
			continue
		}
		out = NewRect(min(out.LLX, x), min(out.LLY, y), max(out.URX, x), max(out.URY, y))
	}
	return out
}
