package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplylens/backend/internal/domain"
)

func TestNewRenderer_IsLazy(t *testing.T) {
	r := NewRenderer(Config{Bin: "/nonexistent/chromium"}, nil)
	assert.Nil(t, r.browser)
	assert.NoError(t, r.Close())
}

func TestRenderer_LaunchFailure(t *testing.T) {
	r := NewRenderer(Config{Bin: "/nonexistent/chromium"}, nil)

	_, err := r.Render(context.Background(), "https://example.com")
	assert.Error(t, err)

	// the failure is remembered rather than relaunching per call
	_, err2 := r.Render(context.Background(), "https://example.com")
	assert.Equal(t, err, err2)
}

func TestRenderer_RenderAfterClose(t *testing.T) {
	tests := []struct {
		name        string
		renderFirst bool
	}{
		{name: "never started"},
		{name: "after failed launch", renderFirst: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(Config{Bin: "/nonexistent/chromium"}, nil)
			if tt.renderFirst {
				_, _ = r.Render(context.Background(), "https://example.com")
			}
			require.NoError(t, r.Close())

			_, err := r.Render(context.Background(), "https://example.com")
			assert.ErrorIs(t, err, domain.ErrScrapeServiceFailure)
			assert.Contains(t, err.Error(), "renderer closed")
			assert.NoError(t, r.Close())
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	if os.Getenv("SUPPLYLENS_TEST_BROWSER") == "" {
		t.Skip("SUPPLYLENS_TEST_BROWSER not set")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Desk Lamp</title></head>
<body><script>document.body.insertAdjacentHTML("beforeend", "<p id=price>$24.99</p>")</script></body></html>`))
	}))
	defer server.Close()

	r := NewRenderer(Config{Bin: os.Getenv("SUPPLYLENS_BROWSER_BIN")}, nil)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := r.Render(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", page.Metadata.Title)
	assert.Contains(t, page.HTML, "$24.99")

	require.NoError(t, r.Close())
	_, err = r.Render(ctx, server.URL)
	assert.ErrorIs(t, err, domain.ErrScrapeServiceFailure)
}
