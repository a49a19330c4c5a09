package taxforms_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/a3tai/pdf-form-filler/internal/taxforms"
	"github.com/a3tai/pdf-form-filler/internal/taxforms/taxformstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCacheLoad(t *testing.T) {
	dir := t.TempDir()
	taxformstest.WriteTemplates(t, dir)

	cache, err := taxforms.NewTemplateCache(dir, 1024*1024)
	require.NoError(t, err)
	assert.Equal(t, dir, cache.Directory())

	first, err := cache.Load(taxforms.W9)
	require.NoError(t, err)

	// Later reads are served from memory
	require.NoError(t, os.Remove(filepath.Join(dir, taxforms.W9.Template)))
	second, err := cache.Load(taxforms.W9)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Other forms are still read from disk
	_, err = cache.Load(taxforms.W8BEN)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, taxforms.W8BENE.Template)))
	_, err = cache.Load(taxforms.W8BENE)
	assert.ErrorContains(t, err, "not found")
}

func TestTemplateCacheLoadErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, taxforms.W8BEN.Template), []byte("not a pdf"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, taxforms.W9.Template), taxformstest.Template(taxforms.W9, nil), 0o600))

	cache, err := taxforms.NewTemplateCache(dir, 1024)
	require.NoError(t, err)

	_, err = cache.Load(taxforms.W8BENE)
	assert.ErrorContains(t, err, "not found")

	_, err = cache.Load(taxforms.W8BEN)
	assert.ErrorContains(t, err, "invalid PDF file")

	_, err = cache.Load(taxforms.W9)
	assert.ErrorContains(t, err, "file too large")
}

func TestTemplateCachePath(t *testing.T) {
	dir := t.TempDir()
	cache, err := taxforms.NewTemplateCache(dir, 1024)
	require.NoError(t, err)

	path, err := cache.Path(taxforms.W8BENE)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fw8bene.pdf"), path)

	escaping := *taxforms.W9
	escaping.Template = "../fw9.pdf"
	_, err = cache.Path(&escaping)
	assert.Error(t, err)
}
