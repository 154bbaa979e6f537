package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

func init() {
	RegisterScheme("http", openHTTP)
	RegisterScheme("https", openHTTP)
}

// HTTPTimeout bounds each request of an HTTP store.
var HTTPTimeout = 30 * time.Second

type httpStore struct {
	base   string
	client *http.Client
}

// NewHTTPStore returns a read-only store fetching keys relative to the base URL.
func NewHTTPStore(base string, client *http.Client) Store {
	if client == nil {
		client = &http.Client{Timeout: HTTPTimeout}
	}
	return &httpStore{base: strings.TrimRight(base, "/"), client: client}
}

func openHTTP(ctx context.Context, ref string) (Store, error) {
	return NewHTTPStore(ref, nil), nil
}

func (s *httpStore) do(ctx context.Context, method, key string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.base+"/"+strings.TrimLeft(key, "/"), nil)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

func (s *httpStore) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.do(ctx, http.MethodGet, key)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s/%s returned status %d", s.base, key, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *httpStore) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, key)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusForbidden:
		return false, nil
	}
	return false, fmt.Errorf("HEAD %s/%s returned status %d", s.base, key, resp.StatusCode)
}

func (s *httpStore) String() string {
	return fmt.Sprintf("http store @ %s", s.base)
}

func (s *httpStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
