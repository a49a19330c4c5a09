// Package pdftest builds small AcroForm documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Kind of a synthetic field
type Kind int

const (
	Text Kind = iota
	CheckBox
)

// Field describes one terminal field. Name may be a dotted hierarchical
// name; intermediate nodes are created as needed.
type Field struct {
	Name    string
	Kind    Kind
	Page    int
	Rect    [4]float64 // zero value places the field automatically
	MaxLen  int        // 0 means no /MaxLen
	Flags   int
	Value   string
	OnState string // check box on-state name, "Yes" when empty
	DA      string // "/Helv 0 Tf 0 g" when empty
}

// Page size of generated documents
const (
	PageWidth  = 612
	PageHeight = 792
)

type builder struct {
	objects [][]byte
}

func (b *builder) alloc() int {
	b.objects = append(b.objects, nil)
	return len(b.objects)
}

func (b *builder) set(num int, body string) {
	b.objects[num-1] = []byte(body)
}

func (b *builder) stream(num int, dict string, data string) {
	b.set(num, fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data))
}

type node struct {
	name     string
	num      int
	children map[string]*node
	order    []string
	field    *Field
}

func (n *node) child(name string) *node {
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c, ok := n.children[name]
	if !ok {
		c = &node{name: name}
		n.children[name] = c
		n.order = append(n.order, name)
	}
	return c
}

// Build returns a PDF with the given number of pages and fields
func Build(pages int, fields ...Field) []byte {
	if pages < 1 {
		pages = 1
	}

	b := &builder{}
	catalog := b.alloc()
	pageTree := b.alloc()
	acroForm := b.alloc()
	helv := b.alloc()

	b.set(helv, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	pageNums := make([]int, pages)
	for i := range pageNums {
		pageNums[i] = b.alloc()
	}

	root := &node{}
	for i := range fields {
		f := &fields[i]
		n := root
		for _, part := range strings.Split(f.Name, ".") {
			n = n.child(part)
		}
		n.field = f
	}

	annots := make([][]int, pages)
	slot := make([]int, pages)
	var walk func(n *node, parent int)
	walk = func(n *node, parent int) {
		n.num = b.alloc()
		for _, name := range n.order {
			walk(n.children[name], n.num)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "<< /T %s", literal(n.name))
		if parent != 0 {
			fmt.Fprintf(&sb, " /Parent %d 0 R", parent)
		}
		if len(n.order) > 0 {
			sb.WriteString(" /Kids [")
			for _, name := range n.order {
				fmt.Fprintf(&sb, " %d 0 R", n.children[name].num)
			}
			sb.WriteString(" ]")
		}
		if f := n.field; f != nil {
			p := f.Page
			if p < 0 || p >= pages {
				p = 0
			}
			rect := f.Rect
			if rect == [4]float64{} {
				y := float64(PageHeight - 72 - 30*(slot[p]+1))
				rect = [4]float64{72, y, 272, y + 20}
			}
			slot[p]++
			annots[p] = append(annots[p], n.num)
			b.widget(&sb, f, rect, pageNums[p])
		}
		sb.WriteString(" >>")
		b.set(n.num, sb.String())
	}

	var top []int
	for _, name := range root.order {
		c := root.children[name]
		walk(c, 0)
		top = append(top, c.num)
	}

	kids := make([]string, pages)
	for i, num := range pageNums {
		content := b.alloc()
		b.stream(content, "", fmt.Sprintf("BT /F1 12 Tf 72 %d Td (Page %d) Tj ET", PageHeight-50, i+1))

		var sb strings.Builder
		fmt.Fprintf(&sb, "<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %d %d] /Contents %d 0 R",
			pageTree, PageWidth, PageHeight, content)
		fmt.Fprintf(&sb, " /Resources << /Font << /F1 %d 0 R >> >>", helv)
		if len(annots[i]) > 0 {
			sb.WriteString(" /Annots" + refs(annots[i]))
		}
		sb.WriteString(" >>")
		b.set(num, sb.String())
		kids[i] = fmt.Sprintf("%d 0 R", num)
	}

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /AcroForm %d 0 R >>", pageTree, acroForm))
	b.set(pageTree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	b.set(acroForm, fmt.Sprintf("<< /Fields%s /DR << /Font << /Helv %d 0 R >> >> /DA (/Helv 0 Tf 0 g) >>",
		refs(top), helv))

	return b.bytes(catalog)
}

func (b *builder) widget(sb *strings.Builder, f *Field, rect [4]float64, page int) {
	fmt.Fprintf(sb, " /Type /Annot /Subtype /Widget /F 4 /P %d 0 R /Rect [%g %g %g %g]",
		page, rect[0], rect[1], rect[2], rect[3])
	if f.Flags != 0 {
		fmt.Fprintf(sb, " /Ff %d", f.Flags)
	}

	da := f.DA
	if da == "" {
		da = "/Helv 0 Tf 0 g"
	}

	switch f.Kind {
	case CheckBox:
		on := f.OnState
		if on == "" {
			on = "Yes"
		}
		w, h := rect[2]-rect[0], rect[3]-rect[1]
		onAP, offAP := b.alloc(), b.alloc()
		bbox := fmt.Sprintf("/Type /XObject /Subtype /Form /BBox [0 0 %g %g]", w, h)
		b.stream(onAP, bbox, fmt.Sprintf("q 0 g 1 1 %g %g re f Q", w-2, h-2))
		b.stream(offAP, bbox, "")

		state := "Off"
		if f.Value != "" {
			state = f.Value
		}
		fmt.Fprintf(sb, " /FT /Btn /V /%s /AS /%s /AP << /N << /%s %d 0 R /Off %d 0 R >> >>",
			state, state, on, onAP, offAP)
	default:
		fmt.Fprintf(sb, " /FT /Tx /DA %s", literal(da))
		if f.MaxLen > 0 {
			fmt.Fprintf(sb, " /MaxLen %d", f.MaxLen)
		}
		if f.Value != "" {
			fmt.Fprintf(sb, " /V %s", literal(f.Value))
		}
	}
}

func (b *builder) bytes(root int) []byte {
	var out bytes.Buffer
	out.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", i+1)
		out.Write(body)
		out.WriteString("\nendobj\n")
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(b.objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.objects)+1, root, xref)
	return out.Bytes()
}

func refs(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d 0 R", n)
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}

// Names returns the sorted field names of fields
func Names(fields ...Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}
