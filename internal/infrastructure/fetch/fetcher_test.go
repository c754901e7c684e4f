package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplylens/backend/internal/domain"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Run("sends browser headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
			assert.Equal(t, "fr-FR", r.Header.Get("Accept-Language"))
			_, _ = w.Write([]byte("<html><title>Lamp</title></html>"))
		}))
		defer server.Close()

		f := NewHTTPFetcher(Config{AcceptLanguage: "fr-FR"}, nil)
		html, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><title>Lamp</title></html>", html)
	})

	t.Run("non 200 fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := NewHTTPFetcher(Config{}, nil).Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})

	t.Run("bot wall fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html><head><title>Just a moment...</title></head></html>"))
		}))
		defer server.Close()

		_, err := NewHTTPFetcher(Config{}, nil).Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})

	t.Run("body is truncated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 100)))
		}))
		defer server.Close()

		html, err := NewHTTPFetcher(Config{MaxBodyBytes: 10}, nil).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Len(t, html, 10)
	})

	t.Run("cancelled context is returned unwrapped", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewHTTPFetcher(Config{}, nil).Fetch(ctx, "http://127.0.0.1:1/")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsChallengePage(t *testing.T) {
	tests := []struct {
		html string
		want bool
	}{
		{"<title>Attention Required! | Cloudflare</title>", true},
		{"<TITLE>Robot Check</TITLE>", true},
		{"<title>Ceramic Mug</title><script src=\"https://cdn.cloudflare.com/captcha.js\"></script>", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsChallengePage(tt.html), tt.html)
	}
}
