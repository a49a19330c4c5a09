package pdf

import (
	"bytes"
	"fmt"
)

// DrawText draws text in black at (x, y) in default user space of the page
// with the given 0-based index. Runes the font cannot draw are dropped.
func (d *Document) DrawText(pageIndex int, x, y float64, font *Font, size float64, text string) error {
	p, err := d.page(pageIndex)
	if err != nil {
		return err
	}

	res, err := d.pageResources(p)
	if err != nil {
		return err
	}
	name, err := d.addResource(res, "Font", "FF", font.ref)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	b.WriteString("q\nBT\n")
	fmt.Fprintf(&b, "/%s %s Tf\n0 g\n", name, formatNumber(size))
	fmt.Fprintf(&b, "%s %s Td\n%s Tj\n", formatNumber(x), formatNumber(y), font.encode(text))
	b.WriteString("ET\nQ\n")

	return d.appendPageContent(p, b.Bytes())
}
