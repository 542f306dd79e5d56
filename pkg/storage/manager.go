package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"igloader/pkg/config"
)

// Manager handles file storage operations and duplicate detection
type Manager struct {
	baseDir     string
	userFolders bool
	overwrite   bool
	saved       map[string]bool
	mu          sync.RWMutex
}

// NewManager creates a storage manager rooted at cfg.BaseDirectory
func NewManager(cfg config.OutputConfig) (*Manager, error) {
	baseDir := cfg.BaseDirectory
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	m := &Manager{
		baseDir:     baseDir,
		userFolders: cfg.CreateUserFolders,
		overwrite:   cfg.OverwriteExisting,
		saved:       make(map[string]bool),
	}

	if err := m.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}
	return m, nil
}

// scanExistingFiles records every media file below the base directory
func (m *Manager) scanExistingFiles() error {
	return filepath.WalkDir(m.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".tmp") || strings.HasSuffix(path, ".json") {
			return nil
		}
		rel, err := filepath.Rel(m.baseDir, path)
		if err != nil {
			return err
		}
		m.saved[filepath.ToSlash(rel)] = true
		return nil
	})
}

// Dir returns the directory files for folder are written to. Folders are
// only used when per-user folders are enabled.
func (m *Manager) Dir(folder string) string {
	if !m.userFolders || folder == "" {
		return m.baseDir
	}
	return filepath.Join(m.baseDir, sanitize(folder))
}

// Path returns where name in folder is stored
func (m *Manager) Path(folder, name string) string {
	return filepath.Join(m.Dir(folder), sanitize(name))
}

func (m *Manager) key(folder, name string) string {
	rel, err := filepath.Rel(m.baseDir, m.Path(folder, name))
	if err != nil {
		return name
	}
	return filepath.ToSlash(rel)
}

// IsDownloaded reports whether name already exists in folder. With
// overwrite enabled nothing counts as downloaded.
func (m *Manager) IsDownloaded(folder, name string) bool {
	if m.overwrite {
		return false
	}

	key := m.key(folder, name)
	m.mu.RLock()
	known := m.saved[key]
	m.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(m.Path(folder, name)); err == nil {
		m.mu.Lock()
		m.saved[key] = true
		m.mu.Unlock()
		return true
	}
	return false
}

// Save writes r to name in folder and returns the final path
func (m *Manager) Save(folder, name string, r io.Reader) (string, error) {
	f, err := m.Create(folder, name)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Abort()
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := f.Commit(); err != nil {
		return "", err
	}
	return f.Path(), nil
}

// Create opens a pending file for name in folder. Data becomes visible at
// the final path only on Commit.
func (m *Manager) Create(folder, name string) (*File, error) {
	dir := m.Dir(folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	path := m.Path(folder, name)
	tmp, err := os.Create(path + ".tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	return &File{File: tmp, path: path, key: m.key(folder, name), m: m}, nil
}

// BaseDir returns the output directory path
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Count returns the number of files known to be stored
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.saved)
}

// File is a temporary file that is renamed into place on Commit
type File struct {
	*os.File
	path string
	key  string
	m    *Manager
	done bool
}

// Path is the final location of the file
func (f *File) Path() string {
	return f.path
}

// Commit closes the file and atomically moves it to its final path
func (f *File) Commit() error {
	if f.done {
		return nil
	}
	f.done = true

	tmp := f.File.Name()
	if err := f.File.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	f.m.mu.Lock()
	f.m.saved[f.key] = true
	f.m.mu.Unlock()
	return nil
}

// Abort discards the file. It is a no-op after Commit.
func (f *File) Abort() {
	if f.done {
		return
	}
	f.done = true
	tmp := f.File.Name()
	f.File.Close()
	os.Remove(tmp)
}

// sanitize keeps a name from escaping its directory
func sanitize(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	if name == "." || name == ".." || name == "" {
		return "_"
	}
	return name
}
