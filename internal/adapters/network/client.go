// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package network downloads widget archives and the version index.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pockwidgets/widgetctl/internal/domain"
)

// maxFetchSize caps in-memory responses such as the version index.
const maxFetchSize = 8 << 20

// userAgent identifies widgetctl to the index server.
const userAgent = "widgetctl"

// Request failures.
var (
	ErrRequestFailed = errors.New("network request failed")
	ErrBadStatus     = errors.New("download failed")
)

// HTTPClient implements domain.NetworkClient.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new HTTP client with timeout. The environment's
// proxy settings are honoured.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		},
	}
}

// DownloadFile downloads a file from a URL to a destination path. When the
// server sends a Content-Length, onProgress receives the fraction written.
func (c *HTTPClient) DownloadFile(ctx context.Context, url, destPath string, onProgress domain.ProgressFunc) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	// #nosec G304 -- destPath is provided by the caller and should be validated there
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	defer func() {
		_ = out.Close()
	}()

	var dst io.Writer = out
	if onProgress != nil && resp.ContentLength > 0 {
		dst = &progressWriter{out: out, total: resp.ContentLength, report: onProgress}
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if onProgress != nil {
		onProgress(1)
	}

	return nil
}

// Fetch returns the body of url.
func (c *HTTPClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

func (c *HTTPClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("%w with status %d", ErrBadStatus, resp.StatusCode)
	}

	return resp, nil
}

// progressWriter reports the written fraction after every write.
type progressWriter struct {
	out     io.Writer
	total   int64
	written int64
	report  domain.ProgressFunc
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.out.Write(p)
	w.written += int64(n)

	fraction := float64(w.written) / float64(w.total)
	if fraction > 1 {
		fraction = 1
	}

	w.report(fraction)

	return n, err
}
