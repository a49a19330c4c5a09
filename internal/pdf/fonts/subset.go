package fonts

import (
	"bytes"
	"fmt"
	"sort"

	program "seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/glyph"
)

// Subset is a reduced font program. Glyphs are renumbered in ascending
// order of their original ids, starting with .notdef.
type Subset struct {
	Program []byte
	// GIDs maps original glyph ids to glyph ids in Program
	GIDs map[uint16]uint16
}

// Subset builds a font program holding glyph 0 and the given glyphs
func (t *TrueType) Subset(gids []uint16) (*Subset, error) {
	sorted := append([]uint16(nil), gids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	keep := []glyph.ID{0}
	for _, gid := range sorted {
		if gid != 0 && glyph.ID(gid) != keep[len(keep)-1] {
			keep = append(keep, glyph.ID(gid))
		}
	}

	orig := t.program.Clone()
	orig.CMapTable = nil
	orig.Gdef = nil
	orig.Gsub = nil
	orig.Gpos = nil

	sub, err := subsetGlyphs(orig, keep)
	if err != nil {
		return nil, fmt.Errorf("TrueType font subset: %w", err)
	}

	var buf bytes.Buffer
	if _, err := sub.WriteTrueTypePDF(&buf); err != nil {
		return nil, fmt.Errorf("failed to write font subset: %w", err)
	}

	mapping := make(map[uint16]uint16, len(keep))
	for i, gid := range keep {
		mapping[uint16(gid)] = uint16(i)
	}
	return &Subset{Program: buf.Bytes(), GIDs: mapping}, nil
}

// subsetGlyphs calls Font.Subset, which returns an error only in some sfnt
// releases
func subsetGlyphs(f *program.Font, glyphs []glyph.ID) (*program.Font, error) {
	switch subset := any(f.Subset).(type) {
	case func([]glyph.ID) (*program.Font, error):
		return subset(glyphs)
	case func([]glyph.ID) *program.Font:
		return subset(glyphs), nil
	}
	return nil, fmt.Errorf("unsupported sfnt subset signature %T", f.Subset)
}
