package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	pdferrors "github.com/a3tai/pdf-form-filler/internal/pdf/errors"
	lpdf "github.com/ledongthuc/pdf"
)

// Validator reads input files within a size limit
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new validator with the specified size limit
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ReadFile reads a regular, non-empty file of at most the size limit
func (v *Validator) ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := v.checkInfo(path, info); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ReadPDF reads a file like ReadFile and checks that it parses as a PDF
// document
func (v *Validator) ReadPDF(path string) ([]byte, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", path)
	}

	data, err := v.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := CheckPDF(data); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidTemplate, "invalid PDF file", err).WithContext(path)
	}
	return data, nil
}

func (v *Validator) checkInfo(path string, info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if info.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			info.Size(), v.maxFileSize)
	}
	return nil
}

// CheckPDF reports whether data starts with a PDF header and has a
// readable cross-reference table
func CheckPDF(data []byte) (err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return fmt.Errorf("missing %%PDF- header")
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cannot be parsed: %v", r)
		}
	}()

	if _, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return err
	}
	return nil
}
