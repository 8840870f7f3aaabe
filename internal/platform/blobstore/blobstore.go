// Package blobstore persists uploaded document bytes. It defines the Store
// interface, a disk implementation rooted at the configured upload
// directory, and an in-memory implementation for tests. Paths are derived
// from the owning intake and a sanitized filename prefixed with the upload
// timestamp, so repeated uploads of the same name never overwrite each
// other.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a stored path has no bytes behind it, for
// example after manual cleanup of the upload directory.
var ErrNotFound = errors.New("blob not found")

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Store reads and writes document bytes by relative path.
type Store interface {
	// Save persists data and returns the relative path it was stored
	// under.
	Save(ctx context.Context, intakeID, fileName string, data []byte) (string, error)
	// Load returns the bytes stored at a path previously returned by Save.
	Load(ctx context.Context, path string) ([]byte, error)
}

// DerivePath builds the storage path for an upload: the intake's directory
// plus the original name with unsafe characters replaced and a millisecond
// timestamp prefix.
func DerivePath(intakeID, fileName string, now time.Time) string {
	safe := unsafeChars.ReplaceAllString(fileName, "_")
	return filepath.Join("uploads", "documents", intakeID,
		fmt.Sprintf("%d-%s", now.UnixMilli(), safe))
}

// Disk stores blobs under a root directory.
type Disk struct {
	root string
	now  func() time.Time
}

func NewDisk(root string) *Disk {
	return &Disk{root: root, now: time.Now}
}

func (d *Disk) Save(ctx context.Context, intakeID, fileName string, data []byte) (string, error) {
	rel := DerivePath(intakeID, fileName, d.now())
	abs := filepath.Join(d.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return rel, nil
}

func (d *Disk) Load(ctx context.Context, path string) ([]byte, error) {
	// Stored paths are server-derived, but reject traversal anyway in case
	// a row was tampered with.
	if strings.Contains(path, "..") {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(d.root, path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Memory is an in-memory Store for tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{blobs: map[string][]byte{}, now: time.Now}
}

// NewMemoryAt pins the clock so derived paths are deterministic in tests.
func NewMemoryAt(now func() time.Time) *Memory {
	return &Memory{blobs: map[string][]byte{}, now: now}
}

func (m *Memory) Save(ctx context.Context, intakeID, fileName string, data []byte) (string, error) {
	rel := DerivePath(intakeID, fileName, m.now())
	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.blobs[rel] = cp
	m.mu.Unlock()
	return rel, nil
}

func (m *Memory) Load(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.blobs[path]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}
