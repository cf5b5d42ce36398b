package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type memoryBlob struct {
	contentType string
	data        []byte
}

// MemoryStore keeps blobs in process. Failures can be injected per key
// prefix with FailPuts.
type MemoryStore struct {
	mu       sync.RWMutex
	baseURL  string
	blobs    map[string]memoryBlob
	failPuts map[string]error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL:  strings.TrimRight(baseURL, "/"),
		blobs:    make(map[string]memoryBlob),
		failPuts: make(map[string]error),
	}
}

// FailPuts makes every Put whose key starts with prefix return err.
func (m *MemoryStore) FailPuts(prefix string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPuts[prefix] = err
}

func (m *MemoryStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for prefix, failure := range m.failPuts {
		if strings.HasPrefix(key, prefix) {
			return "", failure
		}
	}

	m.blobs[key] = memoryBlob{contentType: contentType, data: data}
	return m.baseURL + "/" + key, nil
}

func (m *MemoryStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, found := strings.CutPrefix(url, m.baseURL+"/")
	if !found {
		return ErrBlobNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[key]; !ok {
		return ErrBlobNotFound
	}
	delete(m.blobs, key)
	return nil
}

// Get returns the stored bytes and content type for a URL returned by Put.
func (m *MemoryStore) Get(url string) ([]byte, string, bool) {
	key, found := strings.CutPrefix(url, m.baseURL+"/")
	if !found {
		return nil, "", false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	return blob.data, blob.contentType, ok
}

// Len reports how many blobs are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// MountPath is the URL path blob URLs start with, or "" when the base URL
// points at another host's root and nothing here can serve them.
func (m *MemoryStore) MountPath() string {
	u, err := url.Parse(m.baseURL)
	if err != nil || strings.Trim(u.Path, "/") == "" {
		return ""
	}
	return "/" + strings.Trim(u.Path, "/")
}

// ServeHTTP serves the blob whose key is the request path, so the store can
// sit behind http.StripPrefix(MountPath()+"/", ...).
func (m *MemoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")

	m.mu.RLock()
	blob, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if blob.contentType != "" {
		w.Header().Set("Content-Type", blob.contentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, key, time.Time{}, bytes.NewReader(blob.data))
}
