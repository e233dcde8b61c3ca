package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "cvdraft")
	path := writeFile(t, "name: ${SAMPLE_NAME}\nport: 8080\n")

	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "cvdraft" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadValidates(t *testing.T) {
	path := writeFile(t, "name: x\n")
	var cfg sample
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 1}
	read, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	if err != nil || read {
		t.Fatalf("missing file: read=%v err=%v", read, err)
	}
	if cfg.Port != 1 {
		t.Errorf("defaults changed: %+v", cfg)
	}

	if _, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &sample{}); err == nil {
		t.Error("invalid defaults should fail")
	}

	path := writeFile(t, "port: 2\n")
	read, err = LoadOptional(path, &cfg)
	if err != nil || !read || cfg.Port != 2 {
		t.Errorf("read=%v err=%v cfg=%+v", read, err, cfg)
	}
}
