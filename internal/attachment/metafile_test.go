package attachment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "factura.pdf")
	assert.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 contenido"), 0o644))

	meta, err := MetaFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "factura.pdf", meta.Name)
	assert.Equal(t, "application/pdf", meta.MimeType)
	assert.Equal(t, int64(len("%PDF-1.4 contenido")), meta.SizeBytes)
}

func TestMetaFromFileUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volcado.rawdump")
	assert.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	meta, err := MetaFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "application/octet-stream", meta.MimeType)
}

func TestMetaFromFileMissing(t *testing.T) {
	_, err := MetaFromFile(filepath.Join(t.TempDir(), "no-existe.png"))
	assert.Error(t, err)
}

func TestMetaFromFileDirectory(t *testing.T) {
	_, err := MetaFromFile(t.TempDir())
	assert.Error(t, err)
}
