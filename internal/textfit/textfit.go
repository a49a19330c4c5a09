// Package textfit holds the small text measurement helpers shared by the form
// filler: glyph coverage checks, middle truncation and signature sizing.
package textfit

import (
	"math"
	"unicode/utf8"
)

const (
	// Ellipsis is inserted by TruncateMiddle in place of the removed runes
	Ellipsis = "…"

	// MaxSignatureLength is the name length at which signatures reach MinSignatureSize
	MaxSignatureLength = 60

	// Signature font size bounds in points
	MinSignatureSize = 4.0
	MaxSignatureSize = 26.0
)

// AllCharsValid reports whether every rune of text is present in supported.
// The empty string is always valid.
func AllCharsValid(text string, supported map[rune]struct{}) bool {
	for _, r := range text {
		if _, ok := supported[r]; !ok {
			return false
		}
	}
	return true
}

// TruncateMiddle shortens text to at most limit runes by replacing its middle
// with an ellipsis. A non-positive limit disables truncation.
func TruncateMiddle(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	frontChars := int(math.Ceil(float64(limit-1) / 2))
	backChars := (limit - 1) / 2

	return string(runes[:frontChars]) + Ellipsis + string(runes[len(runes)-backChars:])
}

// ScaleValue maps value linearly from the range from onto the range to.
// With clamp set the result never leaves the target range.
func ScaleValue(value float64, from, to [2]float64, clamp bool) float64 {
	if from[1] == from[0] {
		return to[0]
	}

	scaled := (value-from[0])/(from[1]-from[0])*(to[1]-to[0]) + to[0]
	if !clamp {
		return scaled
	}

	lo, hi := math.Min(to[0], to[1]), math.Max(to[0], to[1])
	return math.Max(lo, math.Min(hi, scaled))
}

// SignatureFontSize returns the point size used to draw a handwritten
// signature: short names are drawn large, long names small.
func SignatureFontSize(text string) float64 {
	length := utf8.RuneCountInString(text)
	return ScaleValue(
		float64(MaxSignatureLength-length),
		[2]float64{0, MaxSignatureLength},
		[2]float64{MinSignatureSize, MaxSignatureSize},
		true,
	)
}
