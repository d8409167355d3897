package filestore

import (
	"context"
	"io"
	"io/ioutil"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
)

// MemoryStore is an in-memory FileStore for tests. It enforces the same
// contract as the FTP server: a file can only be stored under a directory
// that was created first, one level at a time.
type MemoryStore struct {
	mu    sync.Mutex
	dirs  map[string]bool
	files map[string][]byte

	// error injection, checked before the corresponding operation
	EnsureDirErr error
	StoreErr     error
	FetchErr     error
	DeleteErr    error

	// every path Delete was called with, in order
	DeleteCalls []string
}

var _ core.FileStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		dirs:  map[string]bool{"": true, ".": true, "/": true},
		files: make(map[string][]byte),
	}
}

func (s *MemoryStore) EnsureDir(_ context.Context, p string) error {
	if s.EnsureDirErr != nil {
		return s.EnsureDirErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p = strings.TrimSuffix(p, "/")
	if !s.dirs[path.Dir(p)] {
		return errors.Errorf("no such directory: %s", path.Dir(p))
	}
	s.dirs[p] = true // creating an existing directory is not an error
	return nil
}

func (s *MemoryStore) Store(_ context.Context, p string, r io.Reader) error {
	if s.StoreErr != nil {
		return s.StoreErr
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirs[path.Dir(p)] {
		return errors.Errorf("no such directory: %s", path.Dir(p))
	}
	s.files[p] = data
	return nil
}

func (s *MemoryStore) Fetch(_ context.Context, p string) ([]byte, error) {
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[p]
	if !ok {
		return nil, errors.Errorf("no such file: %s", p)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, p string) error {
	s.mu.Lock()
	s.DeleteCalls = append(s.DeleteCalls, p)
	s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[p]; !ok {
		return errors.Errorf("no such file: %s", p)
	}
	delete(s.files, p)
	return nil
}

func (s *MemoryStore) List(_ context.Context, p string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for f := range s.files {
		if path.Dir(f) == strings.TrimSuffix(p, "/") {
			names = append(names, f)
		}
	}
	return names, nil
}

func (s *MemoryStore) Close() error { return nil }

// Exists reports whether a file is currently stored at p.
func (s *MemoryStore) Exists(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[p]
	return ok
}

// HasDir reports whether the directory p was created.
func (s *MemoryStore) HasDir(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[strings.TrimSuffix(p, "/")]
}
