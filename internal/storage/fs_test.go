package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempExportDir(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(filepath.Join(t.TempDir(), "exports"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempExportDir(t)
	content := []byte("{\n  \"summary\": \"hi\"\n}\n")
	if err := s.Write("resume_2026-10-19.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("resume_2026-10-19.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := tempExportDir(t)
	_ = s.Write("a.json", []byte("one"))
	if err := s.Write("a.json", []byte("two")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("a.json")
	if string(got) != "two" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempExportDir(t)
	_ = s.Write("del.json", []byte("bye"))
	if err := s.Delete("del.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.json"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := tempExportDir(t)
	_ = s.Write("old.json", []byte("a"))
	_ = s.Write("new.json", []byte("bb"))
	_ = s.Write("notes.txt", []byte("skip"))

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(s.Root(), "old.json"), past, past); err != nil {
		t.Fatal(err)
	}

	files, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(files), files)
	}
	if files[0].Name != "new.json" || files[1].Name != "old.json" {
		t.Errorf("order = %s, %s", files[0].Name, files[1].Name)
	}
	if files[0].Size != 2 || files[0].Checksum == "" {
		t.Errorf("info = %+v", files[0])
	}
}

func TestPathTraversal(t *testing.T) {
	s := tempExportDir(t)
	for _, p := range []string{"../escape.json", "/etc/passwd", ""} {
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", p)
		}
	}
}
