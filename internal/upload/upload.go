// Package upload checks resume files before they seed the editor.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/starford/cvdraft/internal/resume"
)

// MaxSize is the largest accepted upload.
const MaxSize = 10 << 20 // 10 MB

// sniffLen is how much of a file is read for type detection.
const sniffLen = 3072

// Accepted MIME types.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrTooManyFiles    = errors.New("only one file can be uploaded")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

// RejectError explains why a file was refused. It unwraps to one of the
// Err* sentinels above.
type RejectError struct {
	Reason error
	Msg    string
}

func (e *RejectError) Error() string { return e.Msg }

func (e *RejectError) Unwrap() error { return e.Reason }

func reject(reason error, format string, args ...any) error {
	return &RejectError{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// File is a candidate upload. Head holds at least the first bytes of the
// content, enough for type detection.
type File struct {
	Name string
	Size int64
	Head []byte
	// MIME is set by Validate.
	MIME string
}

// Validate accepts exactly one PDF or DOCX file no larger than MaxSize.
func Validate(files ...File) (File, error) {
	switch {
	case len(files) == 0:
		return File{}, reject(ErrNoFile, "no file provided: choose a PDF or DOCX file")
	case len(files) > 1:
		return File{}, reject(ErrTooManyFiles, "only one file can be uploaded, got %d", len(files))
	}
	f := files[0]

	if f.Size > MaxSize {
		return File{}, reject(ErrTooLarge, "file %q is %s, the limit is %s", f.Name, humanSize(f.Size), humanSize(MaxSize))
	}

	m := mimetype.Detect(f.Head)
	switch {
	case m.Is(MIMEPDF):
		f.MIME = MIMEPDF
	case m.Is(MIMEDOCX):
		f.MIME = MIMEDOCX
	default:
		return File{}, reject(ErrUnsupportedType, "file %q is %s; only PDF and DOCX files are accepted", f.Name, m.String())
	}
	return f, nil
}

// FromMultipart turns form file headers into candidates.
func FromMultipart(headers []*multipart.FileHeader) ([]File, error) {
	out := make([]File, 0, len(headers))
	for _, h := range headers {
		fh, err := h.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", h.Filename, err)
		}
		head, err := readHead(fh)
		_ = fh.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %w", h.Filename, err)
		}
		out = append(out, File{Name: h.Filename, Size: h.Size, Head: head})
	}
	return out, nil
}

// FromPath reads a candidate from disk.
func FromPath(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return File{}, err
	}
	head, err := readHead(fh)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Size: info.Size(), Head: head}, nil
}

func readHead(r io.Reader) ([]byte, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func humanSize(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

// Seeder builds the record that replaces the draft after an accepted upload.
type Seeder interface {
	Seed(ctx context.Context, f File) (resume.Data, error)
}

// SampleSeeder stands in for document parsing: every file yields the sample record.
type SampleSeeder struct{}

func (SampleSeeder) Seed(_ context.Context, _ File) (resume.Data, error) {
	return resume.Sample(), nil
}
