package pdf

import (
	"bytes"
	"fmt"

	pdferrors "github.com/a3tai/pdf-form-filler/internal/pdf/errors"
	lpdf "github.com/ledongthuc/pdf"
)

// VerifyOutput re-parses serialized output with an independent reader and
// checks that it has the expected number of pages
func VerifyOutput(data []byte, expectedPages int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pdferrors.NewPDFError(pdferrors.ErrorTypeVerificationFailed, fmt.Sprintf("output cannot be parsed: %v", r))
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeVerificationFailed, "output cannot be parsed", err)
	}

	if n := reader.NumPage(); n != expectedPages {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeVerificationFailed,
			fmt.Sprintf("output has %d pages, expected %d", n, expectedPages))
	}
	return nil
}

// ExtractText returns the plain text of every page of data
func ExtractText(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during text extraction: %v", r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
