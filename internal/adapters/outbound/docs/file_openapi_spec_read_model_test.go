//go:build !integration

package docs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/stretchr/testify/require"
)

func TestFileOpenAPISpecReadModelReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openapi: 3.0.3\n"), 0o600))

	content, contentType, appErr := NewFileOpenAPISpecReadModel(path).Read(context.Background())
	require.Nil(t, appErr)
	require.Equal(t, "openapi: 3.0.3\n", string(content))
	require.Equal(t, "application/yaml; charset=utf-8", contentType)
}

func TestFileOpenAPISpecReadModelJSONContentType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"openapi":"3.0.3"}`), 0o600))

	_, contentType, appErr := NewFileOpenAPISpecReadModel(path).Read(context.Background())
	require.Nil(t, appErr)
	require.Equal(t, "application/json; charset=utf-8", contentType)
}

func TestFileOpenAPISpecReadModelMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	_, _, appErr := NewFileOpenAPISpecReadModel(path).Read(context.Background())
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.TypeNotFound, appErr.Type)
	require.Equal(t, CodeOpenAPISpecMissing, appErr.Code)
	require.Equal(t, path, appErr.Details["path"])
}
