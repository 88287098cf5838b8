package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ArtifactClient retrieves the raw text content of a submitted file.
// A non-2xx response is fatal for the evaluation run; there is no retry
// here because the caller surfaces the failure immediately.
type ArtifactClient interface {
	FetchText(ctx context.Context, url string) (string, error)
}

type artifactClient struct {
	client  *http.Client
	maxSize int64
	logger  zerolog.Logger
}

func NewArtifactClient(timeout time.Duration, logger zerolog.Logger) ArtifactClient {
	return &artifactClient{
		client: &http.Client{
			Timeout: timeout,
		},
		maxSize: 1 << 20, // 1 MiB of artifact text is plenty for a prompt
		logger:  logger,
	}
}

func (c *artifactClient) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("artifact fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize))
	if err != nil {
		return "", fmt.Errorf("failed to read artifact body: %w", err)
	}

	c.logger.Debug().
		Str("url", url).
		Int("content_size", len(content)).
		Msg("Fetched artifact content")

	return string(content), nil
}
