// Package storage defines the export directory abstraction.
package storage

import "time"

// FileInfo describes one exported resume file.
type FileInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for export directory operations. Paths are
// relative to the directory root.
type Provider interface {
	// List returns every .json file directly under the root, newest first.
	List() ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
