package upload

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
}

func docxBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, body string }{
		{"word/document.xml", `<?xml version="1.0"?><w:document/>`},
		{"[Content_Types].xml", `<?xml version="1.0"?><Types/>`},
		{"_rels/.rels", `<?xml version="1.0"?><Relationships/>`},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestValidate_PDF(t *testing.T) {
	data := pdfBytes()
	f, err := Validate(File{Name: "cv.pdf", Size: int64(len(data)), Head: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.MIME != MIMEPDF {
		t.Errorf("mime = %q", f.MIME)
	}
}

func TestValidate_DOCX(t *testing.T) {
	data := docxBytes(t)
	f, err := Validate(File{Name: "cv.docx", Size: int64(len(data)), Head: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.MIME != MIMEDOCX {
		t.Errorf("mime = %q", f.MIME)
	}
}

func TestValidate_Rejections(t *testing.T) {
	pdf := pdfBytes()
	cases := []struct {
		name   string
		files  []File
		reason error
		msg    string
	}{
		{"none", nil, ErrNoFile, "no file"},
		{"two", []File{{Name: "a.pdf", Head: pdf}, {Name: "b.pdf", Head: pdf}}, ErrTooManyFiles, "got 2"},
		{"text", []File{{Name: "cv.txt", Size: 5, Head: []byte("hello")}}, ErrUnsupportedType, "text/plain"},
		{"renamed text", []File{{Name: "cv.pdf", Size: 5, Head: []byte("hello")}}, ErrUnsupportedType, "only PDF and DOCX"},
		{"large", []File{{Name: "big.pdf", Size: MaxSize + 1, Head: pdf}}, ErrTooLarge, "10.0 MB"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.files...)
			if !errors.Is(err, tc.reason) {
				t.Fatalf("expected %v, got %v", tc.reason, err)
			}
			var re *RejectError
			if !errors.As(err, &re) {
				t.Fatalf("expected *RejectError, got %T", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("message %q should mention %q", err.Error(), tc.msg)
			}
		})
	}
}

func TestValidate_ExactLimitAccepted(t *testing.T) {
	if _, err := Validate(File{Name: "cv.pdf", Size: MaxSize, Head: pdfBytes()}); err != nil {
		t.Errorf("file at the limit should pass: %v", err)
	}
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	if err := os.WriteFile(path, pdfBytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if f.Name != "cv.pdf" || f.Size != int64(len(pdfBytes())) {
		t.Errorf("file = %+v", f)
	}
	if _, err := Validate(f); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFromMultipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "cv.docx")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(docxBytes(t))
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(MaxSize); err != nil {
		t.Fatal(err)
	}

	files, err := FromMultipart(req.MultipartForm.File["file"])
	if err != nil {
		t.Fatalf("FromMultipart: %v", err)
	}
	f, err := Validate(files...)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if f.Name != "cv.docx" || f.MIME != MIMEDOCX {
		t.Errorf("file = %+v", f)
	}
}

func TestSampleSeeder(t *testing.T) {
	d, err := SampleSeeder{}.Seed(context.Background(), File{Name: "cv.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if d.PersonalInfo.FullName != "John Doe" {
		t.Errorf("seed = %+v", d.PersonalInfo)
	}
}
