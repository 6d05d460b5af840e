// Package upload stores user-submitted images on local disk and serves them
// under a static URL prefix. Stored names are derived from the upload time,
// never from the client-supplied filename.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	dErrors "campusconnect/pkg/domain-errors"
)

// URLPrefix is where stored files are served from.
const URLPrefix = "/uploads"

// MaxFileSize caps a single upload at 5 MiB.
const MaxFileSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// DiskStorage writes uploads into a single directory.
type DiskStorage struct {
	dir string
}

func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStorage{dir: dir}, nil
}

// Dir returns the backing directory, for static file serving.
func (s *DiskStorage) Dir() string {
	return s.dir
}

// Save persists an uploaded image and returns its public URL path.
func (s *DiskStorage) Save(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxFileSize {
		return "", dErrors.New(dErrors.CodeInvalidInput, "image exceeds the 5 MiB limit")
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported image type")
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxFileSize)); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path.Join(URLPrefix, name), nil
}
