package source

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/dmitrymomot/hxcompose/pkg/storage"
)

var (
	ErrInvalidPath = errors.New("source: invalid path")
	ErrFrontMatter = errors.New("source: invalid front matter")
	ErrRender      = errors.New("source: render failed")
)

// statusOf maps a load failure to the status written for the fragment.
func statusOf(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPath), errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrPermission), errors.Is(err, storage.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrObjectTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrReadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
