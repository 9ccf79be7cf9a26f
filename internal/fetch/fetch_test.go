package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Jane Doe\nBackend Engineer"))
	}))
	defer server.Close()

	result, err := New(nil, nil).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Equal(t, "Jane Doe\nBackend Engineer", string(result.Body))
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestFetch_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-valid-url", "/relative/path"} {
		t.Run(raw, func(t *testing.T) {
			_, err := New(nil, nil).Fetch(context.Background(), raw)
			require.Error(t, err)

			var fetchErr *Error
			assert.ErrorAs(t, err, &fetchErr)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestFetch_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   error
	}{
		{http.StatusUnauthorized, ErrAccessDenied},
		{http.StatusForbidden, ErrAccessDenied},
		{http.StatusNotFound, ErrInvalidInput},
		{http.StatusTooManyRequests, ErrTransientNetwork},
		{http.StatusBadGateway, ErrTransientNetwork},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			result, err := New(nil, nil).Fetch(context.Background(), server.URL)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			require.NotNil(t, result)
			assert.Equal(t, tt.status, result.StatusCode)
		})
	}
}

func TestFetch_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(nil, nil).Fetch(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransientNetwork)
	assert.False(t, errors.Is(err, ErrAccessDenied))
}

func TestFetch_SignInWall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><form action="/signin/v2"><input type="email"><input type="password"></form></body></html>`))
	}))
	defer server.Close()

	_, err := New(nil, nil).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestFetch_SignInMarkupIgnoredForNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/markdown")
		_, _ = w.Write([]byte(`Sign in - Google Accounts is a phrase in this resume`))
	}))
	defer server.Close()

	_, err := New(nil, nil).Fetch(context.Background(), server.URL)
	assert.NoError(t, err)
}

func TestResolve_FollowsRelativeRedirects(t *testing.T) {
	var heads atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			heads.Add(1)
		}
		http.Redirect(w, r, "/middle", http.StatusFound)
	})
	mux.HandleFunc("/middle", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("done"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	resolved := New(nil, nil).Resolve(context.Background(), server.URL+"/start")
	assert.Equal(t, server.URL+"/final", resolved)
	assert.Equal(t, int32(1), heads.Load())
}

func TestResolve_StopsAtMaxDepth(t *testing.T) {
	var hops atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hops.Add(1)
		http.Redirect(w, r, "/hop"+strings.Repeat("x", int(n)), http.StatusFound)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.MaxRedirects = 3
	resolved := New(opts, nil).Resolve(context.Background(), server.URL+"/")
	assert.Equal(t, int32(3), hops.Load())
	assert.Equal(t, server.URL+"/hopxxx", resolved)
}

func TestResolve_ProbeErrorFallsBackToOriginal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL + "/doc"
	server.Close()

	assert.Equal(t, url, New(nil, nil).Resolve(context.Background(), url))
}

func TestResolve_ShareLinkSkipsProbe(t *testing.T) {
	resolved := New(nil, nil).Resolve(context.Background(), "https://drive.google.com/file/d/abc-123_X/view?usp=sharing")
	assert.Equal(t, DirectDownloadBase+"abc-123_X", resolved)
}

func TestExtractMainText(t *testing.T) {
	html := `<html><body><nav>Menu</nav><main><h1>Senior Engineer</h1>
	<p>Build APIs</p>

	</main><footer>Footer</footer></body></html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer\nBuild APIs", text)
	assert.NotContains(t, text, "Menu")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `<html><body><div class="job-description">Role<div class="eeo-statement">EEO</div></div></body></html>`
	text, err := ExtractMainText(html, JobPostingSelectors(), ".eeo-statement")
	require.NoError(t, err)
	assert.Equal(t, "Role", text)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("short"))
	assert.False(t, ShouldUseBrowser(strings.Repeat("a", MinContentLength)))
}
