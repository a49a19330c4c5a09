package taxforms

import (
	"fmt"
	"os"
	"sync"

	"github.com/a3tai/pdf-form-filler/internal/pdf"
	"github.com/a3tai/pdf-form-filler/internal/pdf/security"
)

// TemplateCache loads blank form templates from a directory once and hands
// out the same read-only bytes afterwards. Documents are always opened
// from a fresh parse of those bytes.
type TemplateCache struct {
	mu        sync.RWMutex
	templates map[Type][]byte
	paths     *security.PathValidator
	files     *pdf.Validator
}

// NewTemplateCache creates a cache reading from directory
func NewTemplateCache(directory string, maxFileSize int64) (*TemplateCache, error) {
	paths, err := security.NewPathValidator(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	return &TemplateCache{
		templates: make(map[Type][]byte),
		paths:     paths,
		files:     pdf.NewValidator(maxFileSize),
	}, nil
}

// Directory returns the template directory
func (c *TemplateCache) Directory() string {
	return c.paths.Directory()
}

// Path returns the location of the template of form
func (c *TemplateCache) Path(form *Form) (string, error) {
	path, err := c.paths.Resolve(form.Template)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return path, nil
}

// Load returns the template bytes of form, reading them on first use.
// Callers must not modify the returned slice.
func (c *TemplateCache) Load(form *Form) ([]byte, error) {
	c.mu.RLock()
	data, ok := c.templates[form.Type]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.templates[form.Type]; ok {
		return data, nil
	}

	path, err := c.Path(form)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("template for %s not found: %w", form.Type, err)
	}
	data, err = c.files.ReadPDF(path)
	if err != nil {
		return nil, fmt.Errorf("template for %s: %w", form.Type, err)
	}

	c.templates[form.Type] = data
	return data, nil
}
