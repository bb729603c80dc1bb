package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Folder groups stored files by what they are for.
type Folder string

const (
	IDDocuments     Folder = "id_documents"
	ResidencePhotos Folder = "residence_photos"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file is too large")
	ErrInvalidMimeType = errors.New("file must be a JPEG, PNG, GIF or WebP image")
)

// AllowedMimeTypes lists the image types accepted for upload.
var AllowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// FromMultipart adapts a multipart file header.
func FromMultipart(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromBytes wraps an in-memory file.
func FromBytes(name string, data []byte) Upload {
	return Upload{
		Filename: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FileStorage persists uploads and hands back the public URL of each file.
type FileStorage interface {
	Check(u Upload) error
	Save(ctx context.Context, folder Folder, u Upload) (string, error)
	Remove(ctx context.Context, url string) error
}

// Local stores files under root and serves them below baseURL.
type Local struct {
	root    string
	baseURL string
	maxSize int64
}

func NewLocal(root, baseURL string, maxSize int64) *Local {
	return &Local{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}
}

func (s *Local) Root() string { return s.root }

// Check validates size and content type without storing anything.
func (s *Local) Check(u Upload) error {
	_, err := s.detect(u)
	return err
}

func (s *Local) detect(u Upload) (string, error) {
	if u.Size == 0 {
		return "", ErrEmptyFile
	}
	if s.maxSize > 0 && u.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	f, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if _, ok := AllowedMimeTypes[mimeType]; !ok {
		return "", ErrInvalidMimeType
	}
	return mimeType, nil
}

// Save writes the upload to <root>/<folder>/<uuid><ext> and returns
// <baseURL>/<folder>/<uuid><ext>.
func (s *Local) Save(ctx context.Context, folder Folder, u Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mimeType, err := s.detect(u)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, string(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + AllowedMimeTypes[mimeType]
	absPath := filepath.Join(dir, name)

	src, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	var reader io.Reader = src
	if s.maxSize > 0 {
		reader = io.LimitReader(src, s.maxSize+1)
	}
	written, err := io.Copy(dst, reader)
	closeErr := dst.Close()
	if err == nil && s.maxSize > 0 && written > s.maxSize {
		err = ErrFileTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return s.baseURL + "/" + path.Join(string(folder), name), nil
}

// Remove deletes a file previously returned by Save. Unknown URLs and
// missing files are ignored.
func (s *Local) Remove(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
