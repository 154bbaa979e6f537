/*
	This file contains functions useful for testing the layer service in other
	packages.  They are exported and contain the "Test" keyword since *_test.go
	files are unavailable to test files in external packages.
*/

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestHTTPResponse returns the recorded response of a request to the handler.
// Use TestHTTP if you just want the response body bytes.
func TestHTTPResponse(t *testing.T, h http.Handler, method, urlStr string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, urlStr, nil)
	if err != nil {
		t.Fatalf("Unsuccessful %s on %q: %v\n", method, urlStr, err)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

// TestHTTP returns the response body of a request that must succeed.
func TestHTTP(t *testing.T, h http.Handler, method, urlStr string) []byte {
	t.Helper()
	resp := TestHTTPResponse(t, h, method, urlStr)
	if resp.Code != http.StatusOK {
		t.Fatalf("Bad server response (%d) to %s %q: %s\n", resp.Code, method, urlStr, resp.Body.String())
	}
	return resp.Body.Bytes()
}

// TestBadHTTP checks that a request fails with the expected status.
func TestBadHTTP(t *testing.T, h http.Handler, method, urlStr string, status int) {
	t.Helper()
	resp := TestHTTPResponse(t, h, method, urlStr)
	if resp.Code != status {
		t.Fatalf("Expected status %d for %s %q, got %d: %s\n", status, method, urlStr, resp.Code, resp.Body.String())
	}
}

// TestHTTPResponseFor returns the recorded response of a prepared request.
func TestHTTPResponseFor(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}
