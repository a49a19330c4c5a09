// Package fielddef describes how the attributes of a values tree map onto the
// named fields of a PDF form, and fills forms from those descriptions.
package fielddef

import "sort"

// Transform turns an attribute value into the string written to a field.
// all is the complete values tree of the form.
type Transform func(value, all any) string

// Guard decides whether a definition applies to a value at all
type Guard func(value, all any) bool

// Definition is a closed set of shapes: Simple, Advanced, Combo, SplitText,
// Nested and Multi. Consumers dispatch through Visitor, so a new shape is a
// compile error in every consumer that does not handle it.
type Definition interface {
	Accept(v Visitor) error
	definition()
}

// Visitor handles every shape of Definition
type Visitor interface {
	VisitSimple(d Simple) error
	VisitAdvanced(d Advanced) error
	VisitCombo(d Combo) error
	VisitSplitText(d SplitText) error
	VisitNested(d Nested) error
	VisitMulti(d Multi) error
}

// Simple maps an attribute onto a single field
type Simple struct {
	Path string
}

// Advanced is a Simple with an optional transform and guard
type Advanced struct {
	Path      string
	Transform Transform
	If        Guard
}

// Combo checks exactly one of a fixed set of check boxes. Transform, when
// set, computes the option key from the value.
type Combo struct {
	Options   map[string]string
	Transform Transform
}

// Part is one fixed-capacity field of a SplitText
type Part struct {
	Path   string
	MaxLen int
	// Auto takes the capacity from the field's own /MaxLen
	Auto bool
}

// SplitText partitions the value left to right across Parts
type SplitText struct {
	Parts     []Part
	Transform Transform
	If        Guard
}

// Nested evaluates each key of a record value against its own definition
type Nested struct {
	Fields Fields
}

// Multi feeds the same value to several definitions in order
type Multi struct {
	Definitions []Definition
}

// Fields maps attribute names to definitions
type Fields map[string]Definition

// Keys returns the attribute names in sorted order
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fixed returns a part holding at most n characters
func Fixed(path string, n int) Part {
	return Part{Path: path, MaxLen: n}
}

// Auto returns a part whose capacity is the field's declared maximum length
func Auto(path string) Part {
	return Part{Path: path, Auto: true}
}

// Combine returns a Multi of the given definitions
func Combine(defs ...Definition) Multi {
	return Multi{Definitions: defs}
}

func (d Simple) Accept(v Visitor) error    { return v.VisitSimple(d) }
func (d Advanced) Accept(v Visitor) error  { return v.VisitAdvanced(d) }
func (d Combo) Accept(v Visitor) error     { return v.VisitCombo(d) }
func (d SplitText) Accept(v Visitor) error { return v.VisitSplitText(d) }
func (d Nested) Accept(v Visitor) error    { return v.VisitNested(d) }
func (d Multi) Accept(v Visitor) error     { return v.VisitMulti(d) }

func (Simple) definition()    {}
func (Advanced) definition()  {}
func (Combo) definition()     {}
func (SplitText) definition() {}
func (Nested) definition()    {}
func (Multi) definition()     {}

// optionKeys returns the keys of a combo in sorted order
func (d Combo) optionKeys() []string {
	keys := make([]string, 0, len(d.Options))
	for k := range d.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Paths returns every field path referenced by def, in walk order. A path
// referenced more than once is reported at its first occurrence.
func Paths(def Definition) []string {
	c := &pathCollector{}
	_ = def.Accept(c)
	return c.paths
}

// AllPaths returns the distinct field paths of every definition in fields,
// walking attributes in sorted order
func AllPaths(fields Fields) []string {
	c := &pathCollector{}
	for _, key := range fields.Keys() {
		_ = fields[key].Accept(c)
	}
	return c.paths
}

type pathCollector struct {
	paths []string
	seen  map[string]struct{}
}

func (c *pathCollector) add(path string) {
	if _, ok := c.seen[path]; ok {
		return
	}
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	c.seen[path] = struct{}{}
	c.paths = append(c.paths, path)
}

func (c *pathCollector) VisitSimple(d Simple) error {
	c.add(d.Path)
	return nil
}

func (c *pathCollector) VisitAdvanced(d Advanced) error {
	c.add(d.Path)
	return nil
}

func (c *pathCollector) VisitCombo(d Combo) error {
	for _, key := range d.optionKeys() {
		c.add(d.Options[key])
	}
	return nil
}

func (c *pathCollector) VisitSplitText(d SplitText) error {
	for _, p := range d.Parts {
		c.add(p.Path)
	}
	return nil
}

func (c *pathCollector) VisitNested(d Nested) error {
	for _, key := range d.Fields.Keys() {
		if err := d.Fields[key].Accept(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *pathCollector) VisitMulti(d Multi) error {
	for _, sub := range d.Definitions {
		if err := sub.Accept(c); err != nil {
			return err
		}
	}
	return nil
}
