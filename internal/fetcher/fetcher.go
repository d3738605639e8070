// Package fetcher downloads raw provider payloads over HTTP and decodes them.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body. The caller
	// closes it.
	Download(ctx context.Context, url string, opts ...RequestOption) (io.ReadCloser, error)
}

// RequestOption customizes a single request.
type RequestOption func(h map[string]string)

// WithBearer sets an Authorization: Bearer header.
func WithBearer(token string) RequestOption {
	return func(h map[string]string) {
		if token != "" {
			h["Authorization"] = "Bearer " + token
		}
	}
}

// WithHeader sets an arbitrary request header.
func WithHeader(key, value string) RequestOption {
	return func(h map[string]string) {
		h[key] = value
	}
}
