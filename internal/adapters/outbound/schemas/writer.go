// Package schemas exports payload schemas next to the document that declares them.
package schemas

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Dir is the directory, relative to the declaring file, that receives schemas.
const Dir = "schemas"

const ext = ".schema"

type Writer struct {
	fs billy.Filesystem
}

func New(fs billy.Filesystem) *Writer {
	return &Writer{fs: fs}
}

// NewOS writes to the host filesystem. Paths are made absolute first, so the
// chroot at "/" sees them unchanged.
func NewOS() *Writer {
	return New(osfs.New("/"))
}

// WriteSchema writes the payload's JSON Schema to <dir(file)>/schemas/,
// replacing any previous export, and returns the written path.
func (w *Writer) WriteSchema(_ context.Context, file string, p domain.Payload) (string, error) {
	dir, err := filepath.Abs(filepath.Join(filepath.Dir(file), Dir))
	if err != nil {
		return "", &domain.WriteError{File: file, Path: Dir, Err: err}
	}
	path := filepath.Join(dir, FileName(p.ID()))

	data, err := p.JSONSchema()
	if err != nil {
		return "", &domain.WriteError{File: file, Path: path, Err: err}
	}
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.WriteError{File: file, Path: path, Err: err}
	}
	if err := util.WriteFile(w.fs, path, data, 0o644); err != nil {
		return "", &domain.WriteError{File: file, Path: path, Err: err}
	}
	return path, nil
}

// FileName turns an escaped payload identifier into a flat file name:
// "users%2Fusers/get/200/application%2Fjson" becomes "users_users_get_200_application_json.schema".
func FileName(id string) string {
	decoded, err := url.PathUnescape(id)
	if err != nil {
		decoded = id
	}
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(decoded)
	return strings.TrimLeft(name, "_") + ext
}
