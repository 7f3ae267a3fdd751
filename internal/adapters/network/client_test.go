// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	client := NewHTTPClient(30 * time.Second)

	assert.Equal(t, 30*time.Second, client.client.Timeout)

	transport, ok := client.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.Proxy)
}

func TestDownloadFileReportsProgress(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("w", 64*1024)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "widgetctl", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Length", "65536")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "weather.pock")

	var reports []float64

	err := NewHTTPClient(5*time.Second).DownloadFile(context.Background(), server.URL, dest, func(value float64) {
		reports = append(reports, value)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Len(t, data, len(payload))

	require.NotEmpty(t, reports)
	assert.InDelta(t, 1.0, reports[len(reports)-1], 0.0001)

	for i, value := range reports {
		assert.GreaterOrEqual(t, value, 0.0)
		assert.LessOrEqual(t, value, 1.0)

		if i > 0 {
			assert.GreaterOrEqual(t, value, reports[i-1])
		}
	}
}

func TestDownloadFileFailsOnStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	err := NewHTTPClient(5*time.Second).DownloadFile(context.Background(), server.URL, filepath.Join(t.TempDir(), "x"), nil)
	require.EqualError(t, err, "download failed with status 404")
}

func TestFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[widgets]\n"))
	}))
	defer server.Close()

	body, err := NewHTTPClient(5*time.Second).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "[widgets]\n", string(body))
}

func TestFetchHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPClient(5*time.Second).Fetch(ctx, "http://127.0.0.1:1/index.toml")
	require.ErrorIs(t, err, context.Canceled)
}
