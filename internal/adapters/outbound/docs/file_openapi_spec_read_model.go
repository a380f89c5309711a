package docs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "addrpool/internal/shared_kernel/errors"
)

const (
	CodeOpenAPISpecMissing    = "openapi_spec_missing"
	CodeOpenAPISpecReadFailed = "openapi_spec_read_failed"
)

type FileOpenAPISpecReadModel struct {
	path string
}

func NewFileOpenAPISpecReadModel(path string) *FileOpenAPISpecReadModel {
	return &FileOpenAPISpecReadModel{
		path: filepath.Clean(path),
	}
}

// Read returns the document on every call so edits show up without a restart.
func (r *FileOpenAPISpecReadModel) Read(_ context.Context) ([]byte, string, *apperrors.AppError) {
	content, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", apperrors.NewNotFound(
			CodeOpenAPISpecMissing,
			"OpenAPI document not found",
			map[string]any{"path": r.path},
		)
	}
	if err != nil {
		return nil, "", apperrors.NewInternal(
			CodeOpenAPISpecReadFailed,
			"failed to read OpenAPI document",
			map[string]any{"path": r.path, "error": err.Error()},
		)
	}

	return content, contentTypeFor(r.path), nil
}

func contentTypeFor(path string) string {
	if filepath.Ext(path) == ".json" {
		return "application/json; charset=utf-8"
	}
	return "application/yaml; charset=utf-8"
}
