// Package uploads stores image files sent to POST /api/images/{hotelId}.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"hotel_api/internal/adapters/observability"
	"hotel_api/internal/domain"
)

// Disk writes files into one directory, which is also served under /uploads.
type Disk struct{ dir string }

func NewDisk(dir string) *Disk { return &Disk{dir: dir} }

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (err error) {
	defer func() { observability.ObserveUpload("disk", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(d.dir, filepath.Base(name)), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// Delete removes a stored file; a file that is already gone is not an error.
func (d *Disk) Delete(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(d.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Handler serves the stored files; mount it under /uploads/.
func (d *Disk) Handler() http.Handler {
	return http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.dir)))
}

// Sniff detects the content type of an upload from its first bytes and
// rewinds r. Only images are accepted.
func Sniff(r io.ReadSeeker) (contentType, ext string, err error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", "", &domain.ValidationError{Message: "Only image files are allowed"}
	}
	return mt.String(), mt.Extension(), nil
}

// NewFilename returns "<unix-millis>-<random><ext>".
func NewFilename(now time.Time, ext string) string {
	return fmt.Sprintf("%d-%d%s", now.UnixMilli(), rand.IntN(1_000_000_000), ext)
}
