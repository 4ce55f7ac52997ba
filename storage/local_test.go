package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSignedURLPointsIntoBasePath(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalStorage(dir, "http://localhost:8080/files/")
	require.NoError(t, err)

	path := "tenants/t-1/petitions/minuta.docx"
	require.NoError(t, local.Upload(context.Background(), path, "application/octet-stream", strings.NewReader("docx")))

	url, err := local.SignedURL(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/"+path, url)

	// The path segment of the URL must resolve to a real file under
	// BasePath, which the server mounts at /files.
	rel := strings.TrimPrefix(url, "http://localhost:8080/files/")
	_, err = os.Stat(filepath.Join(local.BasePath(), filepath.FromSlash(rel)))
	require.NoError(t, err)
}

func TestLocalSignedURLMissingFile(t *testing.T) {
	local, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	_, err = local.SignedURL(context.Background(), "tenants/t-1/nope.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}
