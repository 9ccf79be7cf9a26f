package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSession_StoresHeader(t *testing.T) {
	var got string
	handler := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetSessionID(r)
	}))

	req := httptest.NewRequest(http.MethodPost, "/chat/complete", nil)
	req.Header.Set(SessionHeader, "3f2b7c1e-9d4a-4e55-8b1a-0c2d3e4f5a6b")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "3f2b7c1e-9d4a-4e55-8b1a-0c2d3e4f5a6b", got)
}

func TestSession_MissingHeader(t *testing.T) {
	called := false
	handler := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, err := GetSessionID(r)
		assert.Error(t, err)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestSession_RejectsMalformed(t *testing.T) {
	handler := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	for _, bad := range []string{"../etc/passwd", "id with spaces", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(SessionHeader, bad)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := AccessLog(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "/brew", ctx["path"])
		assert.Equal(t, int64(http.StatusTeapot), ctx["status"])
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{"listed origin", []string{"https://app.example.com"}, "https://app.example.com", http.MethodPost, "https://app.example.com", http.StatusTeapot},
		{"unlisted origin", []string{"https://app.example.com"}, "https://evil.example.com", http.MethodPost, "", http.StatusTeapot},
		{"wildcard", []string{"*"}, "https://any.example.com", http.MethodGet, "https://any.example.com", http.StatusTeapot},
		{"preflight", []string{"*"}, "https://any.example.com", http.MethodOptions, "https://any.example.com", http.StatusNoContent},
		{"no origin header", []string{"*"}, "", http.MethodGet, "", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/chat/complete", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tt.allowed)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
			}
		})
	}
}
