package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var (
	ErrPhotoTooLarge = errors.New("photo exceeds size limit")
	ErrPhotoInvalid  = errors.New("photo is not a decodable image")
)

// PhotoStore keeps proof-of-presence selfies on local disk. Callers only ever see the
// generated file name, which is what gets persisted on the attendance record.
type PhotoStore struct {
	Dir      string
	MaxWidth int
	MaxBytes int64
}

// NewPhotoStore returns a store rooted at dir. Images wider than maxWidth are downscaled.
func NewPhotoStore(dir string, maxWidth, maxSizeMB int) *PhotoStore {
	return &PhotoStore{
		Dir:      dir,
		MaxWidth: maxWidth,
		MaxBytes: int64(maxSizeMB) * 1024 * 1024,
	}
}

// SaveUpload stores a multipart upload and returns its reference.
func (s *PhotoStore) SaveUpload(fh *multipart.FileHeader) (string, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", ErrPhotoTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return s.Save(f)
}

// Save decodes r, normalizes orientation and width, and writes it as JPEG.
func (s *PhotoStore) Save(r io.Reader) (string, error) {
	if s.MaxBytes > 0 {
		r = &maxBytesReader{r: io.LimitReader(r, s.MaxBytes+1), max: s.MaxBytes}
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, ErrPhotoTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrPhotoInvalid, err)
	}
	if s.MaxWidth > 0 && img.Bounds().Dx() > s.MaxWidth {
		img = imaging.Resize(img, s.MaxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.jpg", time.Now().Format("20060102"), uuid.NewString())
	if err := imaging.Save(img, filepath.Join(s.Dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return name, nil
}

// Remove deletes a stored photo. Missing files are not an error.
func (s *PhotoStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type maxBytesReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (m *maxBytesReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	m.read += int64(n)
	if m.read > m.max {
		return n, ErrPhotoTooLarge
	}
	return n, err
}
