// Package media resolves photo handles into inline image content.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/KobaLuck/recipe-bot/internal/collab"
)

const (
	magicNumberSeek = 512
	maxImageBytes   = 20 << 20 // ~20 MB
)

// HTTPFetcher downloads media by treating the handle as a URL the host
// transport resolved for us.
type HTTPFetcher struct {
	http *retryablehttp.Client
}

var _ collab.MediaFetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(client *retryablehttp.Client) *HTTPFetcher {
	if client == nil {
		client = retryablehttp.NewClient()
		client.Logger = nil
	}
	return &HTTPFetcher{http: client}
}

// FetchBinary downloads the media and sniffs its MIME type. Callers must
// substitute a placeholder on any error.
func (f *HTTPFetcher) FetchBinary(ctx context.Context, handle string) ([]byte, string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, handle, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building media request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching media: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching media: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading media body: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("fetching media: empty body")
	}

	mimeType := http.DetectContentType(data[:min(len(data), magicNumberSeek)])
	return data, mimeType, nil
}

// DataURI encodes image bytes as a data URI suitable for the create
// payload's image field.
func DataURI(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
