// Package github stores the portfolio document in a GitHub repository.
//
// Store reads and commits through the contents API; RawReader reads the
// published file without going through the API rate limit.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etnz/btcfolio"
	"github.com/rs/zerolog"
)

const (
	// DefaultAPIURL is the public GitHub REST API.
	DefaultAPIURL = "https://api.github.com"
	// DefaultRawURL serves raw file content.
	DefaultRawURL = "https://raw.githubusercontent.com"
)

// Config holds the repository coordinates.
type Config struct {
	Repo   string // owner/repo
	Branch string // main when empty
	Token  string
	APIURL string // DefaultAPIURL when empty
	RawURL string // DefaultRawURL when empty
}

func (c *Config) defaults() error {
	owner, repo, ok := strings.Cut(c.Repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("invalid github repository %q, want owner/repo", c.Repo)
	}
	if c.Branch == "" {
		c.Branch = "main"
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.RawURL == "" {
		c.RawURL = DefaultRawURL
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")
	c.RawURL = strings.TrimSuffix(c.RawURL, "/")
	return nil
}

// Store is a btcfolio.Store backed by the contents API. Revisions are blob shas.
type Store struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

// NewStore returns a Store of the repository described by cfg.
func NewStore(cfg Config, log zerolog.Logger) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errors.New("a github token is required to write to the repository")
	}
	return &Store{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("component", "github").Str("repo", cfg.Repo).Logger(),
	}, nil
}

func (s *Store) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", s.cfg.APIURL, s.cfg.Repo, escapePath(path))
}

func escapePath(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func (s *Store) newRequest(ctx context.Context, method, addr string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, addr, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type contentFile struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Size     int    `json:"size"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
}

// ReadFile returns the decoded content of path on the configured branch.
func (s *Store) ReadFile(ctx context.Context, path string) ([]byte, string, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.contentsURL(path)+"?ref="+url.QueryEscape(s.cfg.Branch), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("%s on %s: %w", path, s.cfg.Branch, btcfolio.ErrNotFound)
	}
	if err := btcfolio.CheckResponse(resp); err != nil {
		return nil, "", err
	}

	var file contentFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, "", fmt.Errorf("failed to parse contents of %s: %w", path, err)
	}
	if file.Type != "" && file.Type != "file" {
		return nil, "", fmt.Errorf("%s is a %s, not a file", path, file.Type)
	}
	if file.Encoding != "base64" {
		// the contents api does not inline files larger than 1MB
		return nil, "", fmt.Errorf("%s (%d bytes) has unsupported encoding %q", path, file.Size, file.Encoding)
	}
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 content of %s: %w", path, err)
	}
	s.log.Debug().Str("path", path).Str("sha", file.SHA).Int("size", len(content)).Msg("read document")
	return content, file.SHA, nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// WriteFile commits content to path. revision is the blob sha of the last
// read, or "" to create the file.
func (s *Store) WriteFile(ctx context.Context, path string, content []byte, revision string) (string, error) {
	body, err := json.Marshal(putRequest{
		Message: "Update " + path,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  s.cfg.Branch,
		SHA:     revision,
	})
	if err != nil {
		return "", err
	}
	req, err := s.newRequest(ctx, http.MethodPut, s.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// 409 when the sha is stale, 422 when it is missing for an existing file
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return "", fmt.Errorf("cannot commit %s at revision %q: %s: %w", path, revision, strings.TrimSpace(string(msg)), btcfolio.ErrConflict)
	default:
		return "", btcfolio.CheckResponse(resp)
	}

	var out putResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse commit response: %w", err)
	}
	s.log.Info().
		Str("path", path).
		Str("sha", out.Content.SHA).
		Str("commit", out.Commit.SHA).
		Msg("committed document")
	return out.Content.SHA, nil
}
