// Package filestore saves uploaded files under a local directory and hands
// back the URL path the web layer serves them from.
package filestore

import (
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

// Store writes uploads into Dir and returns references below URLPrefix.
type Store struct {
	Dir       string
	URLPrefix string
}

func NewStore(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &Store{Dir: dir, URLPrefix: urlPrefix}, nil
}

// Save persists the uploaded file under a collision-free name and returns
// its URL path. A header without a filename yields an empty reference.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", nil
	}
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	name := common.UUID() + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "write upload file")
	}
	return path.Join(s.URLPrefix, name), nil
}
