// Package signature draws a signer's name onto a form page in a
// handwriting-style font.
package signature

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/a3tai/pdf-form-filler/internal/pdf/fonts"
	"github.com/a3tai/pdf-form-filler/internal/textfit"
	"golang.org/x/image/font/gofont/goitalic"
)

// FallbackScale shrinks the fallback font, whose glyphs look larger than
// the handwriting font's at the same size
const FallbackScale = 0.7

// Replacement stands in for characters no available font can draw
const Replacement = '?'

// Options controls where and how a signature is drawn
type Options struct {
	// Page is the 0-based page index
	Page int
	X, Y float64
	// Fallback is used when it covers the name and the handwriting font does not
	Fallback *pdf.Font
	// Font is an already embedded handwriting font. When nil, Program or
	// FontData is embedded as a subset.
	Font    *pdf.Font
	Program *fonts.TrueType
	// FontData is a TrueType handwriting font; Go Italic when empty
	FontData []byte
	Logger   *log.Logger
}

// Rendered describes the drawn signature
type Rendered struct {
	Text     string
	Font     string
	Size     float64
	Fallback bool
}

var (
	bundledOnce sync.Once
	bundled     *fonts.TrueType
	bundledErr  error
)

func handwritingFont(opts Options) (*fonts.TrueType, error) {
	if opts.Program != nil {
		return opts.Program, nil
	}
	if len(opts.FontData) > 0 {
		return fonts.ParseTrueType(opts.FontData)
	}
	bundledOnce.Do(func() {
		bundled, bundledErr = fonts.ParseTrueType(goitalic.TTF)
	})
	return bundled, bundledErr
}

// Add embeds the handwriting font into doc and draws fullName at the
// configured position. Text that neither font covers is drawn with every
// unsupported character replaced, so the result never depends on the
// input; only document errors are returned.
func Add(doc *pdf.Document, fullName string, opts Options) (Rendered, error) {
	font := opts.Font
	if font == nil {
		tt, err := handwritingFont(opts)
		if err != nil {
			return Rendered{}, fmt.Errorf("failed to load signature font: %w", err)
		}
		font, err = doc.EmbedTrueType(tt, true)
		if err != nil {
			return Rendered{}, fmt.Errorf("failed to embed signature font: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = doc.Logger()
	}

	r := Rendered{
		Text: fullName,
		Font: font.Name(),
		Size: textfit.SignatureFontSize(fullName),
	}

	if !textfit.AllCharsValid(fullName, font.SupportedCodePoints()) {
		if opts.Fallback != nil && textfit.AllCharsValid(fullName, opts.Fallback.SupportedCodePoints()) {
			font = opts.Fallback
			r.Font = font.Name()
			r.Size *= FallbackScale
			r.Fallback = true
			logger.Printf("Signature drawn with fallback font %s", r.Font)
		} else {
			r.Text = substitute(fullName, font.SupportedCodePoints())
			logger.Printf("Signature has characters outside of font %s, substituted with %q", r.Font, Replacement)
		}
	}

	if err := doc.DrawText(opts.Page, opts.X, opts.Y, font, r.Size, r.Text); err != nil {
		return Rendered{}, fmt.Errorf("failed to draw signature: %w", err)
	}
	return r, nil
}

// substitute replaces every rune outside supported, keeping the rune count
func substitute(text string, supported map[rune]struct{}) string {
	return strings.Map(func(r rune) rune {
		if _, ok := supported[r]; ok {
			return r
		}
		return Replacement
	}, text)
}
