package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAuth(keys []string, method, path, authz string) *httptest.ResponseRecorder {
	handler := BearerAuthMiddleware(keys)(okHandler())
	req := httptest.NewRequest(method, path, http.NoBody)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_EmptyKeys_PassThrough(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		if rr := serveAuth(keys, "GET", "/documents", ""); rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_MissingHeader_401(t *testing.T) {
	rr := serveAuth([]string{"secret"}, "GET", "/documents", "")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing header: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != ErrorCodeUnauthorized {
		t.Errorf("error code: got %s, want %s", errResp.Code, ErrorCodeUnauthorized)
	}
}

func TestAuthMiddleware_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		authz string
	}{
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"wrong key", "Bearer wrong-key"},
		{"key prefix", "Bearer secre"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := serveAuth([]string{"secret"}, "GET", "/points", tc.authz)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_MultipleKeys(t *testing.T) {
	for _, key := range []string{"key1", "key2"} {
		rr := serveAuth([]string{"key1", "key2"}, "DELETE", "/points/1", "Bearer "+key)
		if rr.Code != http.StatusOK {
			t.Errorf("key %s: got %d, want %d", key, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_ExemptPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		if rr := serveAuth([]string{"secret"}, "GET", path, ""); rr.Code != http.StatusOK {
			t.Errorf("exempt path %s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_PreflightPassesThrough(t *testing.T) {
	if rr := serveAuth([]string{"secret"}, "OPTIONS", "/documents", ""); rr.Code != http.StatusOK {
		t.Errorf("preflight: got %d, want %d", rr.Code, http.StatusOK)
	}
}
