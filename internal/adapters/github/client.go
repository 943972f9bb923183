// Package github reads commit history and file revisions from the GitHub
// REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mdoc/internal/domain"
)

const (
	DefaultAPIURL = "https://api.github.com"

	// commitsPerPage is how many commits are requested per history lookup
	commitsPerPage = 50

	maxBodySize = 10 << 20
)

// ErrRateLimited is returned when the API answers 403
var ErrRateLimited = errors.New("github: rate limited")

// StatusError is returned for any other non-2xx response
type StatusError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github: %s returned %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: %s returned %d", e.URL, e.StatusCode)
}

// Client implements ports.HistorySource against the GitHub REST API
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Options configures a Client
type Options struct {
	BaseURL           string        // defaults to DefaultAPIURL
	Token             string        // sent as a bearer token when set
	Timeout           time.Duration // per request
	RequestsPerSecond float64       // 0 disables client-side throttling
	Logger            *slog.Logger
}

// NewClient creates a new GitHub client
func NewClient(opts Options) *Client {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: baseURL,
		token:   opts.Token,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// apiCommit is the subset of the commits payload we read
type apiCommit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Author struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
		Message string `json:"message"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

// ListCommits returns up to limit commits touching path, newest first
func (c *Client) ListCommits(ctx context.Context, repo, path string, limit int) ([]domain.Commit, error) {
	query := url.Values{}
	query.Set("path", path)
	query.Set("per_page", fmt.Sprint(commitsPerPage))

	data, err := c.get(ctx, "/repos/"+repo+"/commits", query, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var payload []apiCommit
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("github: failed to decode commits: %w", err)
	}

	if limit > 0 && len(payload) > limit {
		payload = payload[:limit]
	}

	commits := make([]domain.Commit, 0, len(payload))
	for _, pc := range payload {
		commit := domain.Commit{
			Hash:    pc.SHA,
			Author:  pc.Commit.Author.Name,
			Date:    pc.Commit.Author.Date,
			Message: firstLine(pc.Commit.Message),
			URL:     pc.HTMLURL,
		}
		commit.ShortHash = pc.SHA[:min(7, len(pc.SHA))]
		if pc.Author != nil {
			commit.AuthorUsername = pc.Author.Login
		}
		commits = append(commits, commit)
	}

	return commits, nil
}

// FileAtRevision returns the raw content of path at revision
func (c *Client) FileAtRevision(ctx context.Context, repo, path, revision string) (string, error) {
	query := url.Values{}
	query.Set("ref", revision)

	data, err := c.get(ctx, "/repos/"+repo+"/contents/"+path, query, "application/vnd.github.v3.raw")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// get performs a throttled GET request and returns the response body
func (c *Client) get(ctx context.Context, path string, query url.Values, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("github: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("github: failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "mdoc")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("github: failed to read response: %w", err)
	}

	c.logger.Debug("github request",
		"url", u,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        u,
			Message:    errorMessage(data),
		}
	}

	return data, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
