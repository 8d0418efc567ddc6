// Package storage defines the file-system abstraction shared by the export
// reader and the Markdown writer.
package storage

// Provider is the interface for export-tree and archive file operations.
// All paths are relative to the provider's root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Dirs returns the names of the root's immediate subdirectories, sorted.
	Dirs() ([]string, error)
	// List returns the sorted names of files in dir with the given extension.
	List(dir, ext string) ([]string, error)
}
