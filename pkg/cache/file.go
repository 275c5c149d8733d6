package cache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// tempPattern names in-flight writes; the suffix keeps them out of Count and Clear
const tempPattern = ".entry-*.tmp"

// FileBackend stores each entry as a JSON file named by the key's hash
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file backend rooted at dir. An empty dir selects
// the user cache directory.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		var err error
		dir, err = getCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get cache directory: %w", err)
		}
	}

	// Ensure cache directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileBackend{dir: dir}, nil
}

// Dir returns the cache directory
func (b *FileBackend) Dir() string {
	return b.dir
}

func (b *FileBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return data, nil
}

// Set writes the entry; ttl is enforced by Cache on read, not by the file system.
// The entry is written to a temp file and renamed so readers never see a
// partial file.
func (b *FileBackend) Set(key string, data []byte, ttl time.Duration) error {
	tmp, err := os.CreateTemp(b.dir, tempPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, b.path(key)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (b *FileBackend) Delete(key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry file and keeps the directory
func (b *FileBackend) Clear() error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(b.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// CleanExpired removes entry files older than maxAge
func (b *FileBackend) CleanExpired(maxAge time.Duration) error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filePath := filepath.Join(b.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		// Remove files older than the freshness window
		if time.Since(info.ModTime()) > maxAge {
			os.Remove(filePath)
		}
	}

	return nil
}

// Count returns the number of entry files
func (b *FileBackend) Count() (int, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			count++
		}
	}

	return count, nil
}

// path returns the full path for a cache file
func (b *FileBackend) path(key string) string {
	// Hash the key to create a safe filename
	hash := sha256.Sum256([]byte(key))
	filename := fmt.Sprintf("%x.json", hash)
	return filepath.Join(b.dir, filename)
}

// getCacheDir returns the appropriate cache directory for the current user
func getCacheDir() (string, error) {
	// Try XDG_CACHE_HOME first (Linux/Unix standard)
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, CacheDirName), nil
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CacheDirName), nil
}
