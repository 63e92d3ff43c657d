package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
)

const (
	defaultMaxUploadBytes = 10 * 1024 * 1024
	sniffLength           = 512
)

// Folder groups uploaded objects by owning entity.
type Folder string

const (
	FolderPets   Folder = "pets"
	FolderEvents Folder = "events"
)

// File is one uploaded part. Size may be zero when unknown.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type objectStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	PublicURL(name string) string
}

// Service uploads images to object storage and returns their public URLs.
type Service interface {
	UploadFile(ctx context.Context, folder Folder, file File) (string, error)
	UploadFiles(ctx context.Context, folder Folder, files []File) ([]string, error)
	DeleteByURL(ctx context.Context, url string) error
}

type service struct {
	store    objectStore
	maxBytes int64
}

// NewService constructs a media service backed by the provided object store.
func NewService(store objectStore, maxUploadMB int) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	maxBytes := int64(defaultMaxUploadBytes)
	if maxUploadMB > 0 {
		maxBytes = int64(maxUploadMB) * 1024 * 1024
	}
	return &service{store: store, maxBytes: maxBytes}, nil
}

func (s *service) UploadFile(ctx context.Context, folder Folder, file File) (string, error) {
	if file.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}
	if file.Size > s.maxBytes {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "file must be ≤ %d bytes", s.maxBytes)
	}

	reader := bufio.NewReaderSize(io.LimitReader(file.Body, s.maxBytes+1), sniffLength)
	head, _ := reader.Peek(sniffLength)
	mimeType, err := normalizeMimeType(file.ContentType, head)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file")
	}
	if !isAllowedMime(mimeType) {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "mime type %s not allowed, upload an image", mimeType)
	}

	key := buildObjectKey(folder, uuid.New(), file.Name)
	counted := &countingReader{r: reader}
	url, err := s.store.Upload(ctx, key, mimeType, counted)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload file")
	}
	if counted.n > s.maxBytes {
		_ = s.store.Delete(ctx, key)
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "file must be ≤ %d bytes", s.maxBytes)
	}
	return url, nil
}

// UploadFiles uploads every file in order. Files already uploaded when a
// later one fails are removed again.
func (s *service) UploadFiles(ctx context.Context, folder Folder, files []File) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.UploadFile(ctx, folder, file)
		if err != nil {
			for _, uploaded := range urls {
				_ = s.DeleteByURL(ctx, uploaded)
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// DeleteByURL removes an object previously returned by UploadFile. URLs that
// do not belong to the store are ignored.
func (s *service) DeleteByURL(ctx context.Context, url string) error {
	prefix := s.store.PublicURL("")
	if prefix == "" || !strings.HasPrefix(url, prefix) {
		return nil
	}
	if err := s.store.Delete(ctx, strings.TrimPrefix(url, prefix)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete file")
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func buildObjectKey(folder Folder, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("pawfund/%s/%s/%s", folder, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
