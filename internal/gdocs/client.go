// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gdocs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/pdiddy/docextract/pkg/types"
)

// Client fetches documents through the Docs API.
type Client struct {
	svc *docs.Service
}

// NewClient builds a Client on an authorized HTTP client. Extra options
// (an alternate endpoint in tests) are passed to the service constructor.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating docs service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Get fetches and converts one document.
func (c *Client) Get(ctx context.Context, documentID string) (*types.Document, error) {
	d, err := c.svc.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching document %s: %w", documentID, err)
	}
	return FromAPI(d), nil
}

// LoadFile reads a Docs API JSON response saved to disk.
func LoadFile(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d docs.Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return FromAPI(&d), nil
}
