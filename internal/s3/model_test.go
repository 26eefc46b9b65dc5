package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

var (
	pngHeader  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 0x4A, 0x46, 0x49, 0x46, 0}
	pdfHeader  = []byte("%PDF-1.3\n%\xe2\xe3\xcf\xd3\n")
)

func TestDetectContentType(t *testing.T) {
	mime, err := DetectContentType(pngHeader, ContentKindImage, "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	mime, err = DetectContentType(jpegHeader, ContentKindImage, "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	mime, err = DetectContentType(pdfHeader, ContentKindPdf, "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
}

func TestDetectContentTypeRejects(t *testing.T) {
	_, err := DetectContentType(pdfHeader, ContentKindImage, "image/png")
	assert.True(t, ierr.IsValidation(err))

	_, err = DetectContentType(pngHeader, ContentKindPdf, "")
	assert.True(t, ierr.IsValidation(err))

	_, err = DetectContentType(nil, ContentKindImage, "image/png")
	assert.True(t, ierr.IsValidation(err))

	_, err = DetectContentType([]byte("just some text"), ContentKindImage, "text/plain")
	assert.True(t, ierr.IsValidation(err))
}

func TestMemoryService(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryService("https://cdn.example.com/files/")

	require.NoError(t, m.Upload(ctx, "jobFiles/YAI-0001/before/abc", pngHeader, "image/png"))

	ok, err := m.Exists(ctx, "jobFiles/YAI-0001/before/abc")
	require.NoError(t, err)
	assert.True(t, ok)

	url, err := m.GetPublicURL(ctx, "jobFiles/YAI-0001/before/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/files/jobFiles/YAI-0001/before/abc", url)

	data, err := m.GetObject(ctx, "jobFiles/YAI-0001/before/abc")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = m.GetObject(ctx, "missing")
	assert.True(t, ierr.IsNotFound(err))
}
