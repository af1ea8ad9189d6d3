package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/etnz/btcfolio"
	"github.com/rs/zerolog"
)

// RawReader reads a published file from raw.githubusercontent.com. The token
// is optional and only needed for private repositories. The revision is the
// response ETag.
type RawReader struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

// NewRawReader returns a reader of the repository described by cfg.
func NewRawReader(cfg Config, log zerolog.Logger) (*RawReader, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}
	return &RawReader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("component", "github-raw").Str("repo", cfg.Repo).Logger(),
	}, nil
}

func (r *RawReader) ReadFile(ctx context.Context, path string) ([]byte, string, error) {
	addr := fmt.Sprintf("%s/%s/%s/%s", r.cfg.RawURL, r.cfg.Repo, r.cfg.Branch, escapePath(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("%s on %s: %w", path, r.cfg.Branch, btcfolio.ErrNotFound)
	}
	if err := btcfolio.CheckResponse(resp); err != nil {
		return nil, "", err
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	r.log.Debug().Str("path", path).Int("size", len(content)).Msg("read raw document")
	return content, resp.Header.Get("ETag"), nil
}
