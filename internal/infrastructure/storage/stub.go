package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	appinventory "github.com/ryznreal/offers/internal/application/inventory"
)

// DefaultStubBaseURL is where stub objects claim to be served from
const DefaultStubBaseURL = "https://storage.example.com"

// StubBrochureStorage keeps brochures in memory. It backs development
// runs and tests where no bucket is available.
type StubBrochureStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]stubObject
}

type stubObject struct {
	contentType string
	data        []byte
}

var _ appinventory.BrochureStorage = (*StubBrochureStorage)(nil)

// NewStubBrochureStorage creates an empty stub storage
func NewStubBrochureStorage(baseURL string) *StubBrochureStorage {
	if baseURL == "" {
		baseURL = DefaultStubBaseURL
	}
	return &StubBrochureStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]stubObject),
	}
}

// Upload reads body fully and returns a stable fake URL
func (s *StubBrochureStorage) Upload(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.objects[storageKey] = stubObject{contentType: contentType, data: buf.Bytes()}
	s.mu.Unlock()
	return s.BaseURL + "/" + storageKey, nil
}

// Delete forgets an object; missing keys are ignored
func (s *StubBrochureStorage) Delete(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	delete(s.objects, storageKey)
	s.mu.Unlock()
	return nil
}

// Object returns a stored object's bytes and content type
func (s *StubBrochureStorage) Object(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj.data, obj.contentType, ok
}

// Len returns the number of stored objects
func (s *StubBrochureStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
