// Package github implements the source-control provider for the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"langdetect-agent/src/contracts"
	"langdetect-agent/src/provider"
)

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

// Client is a GitHub API client
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new GitHub client authenticating with a personal access token
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListLanguages fetches the language to byte-count map of a repository
func (c *Client) ListLanguages(ctx context.Context, owner, repo string) (contracts.LanguageByteMap, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/languages", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	var languages contracts.LanguageByteMap
	if err := c.getJSON(ctx, endpoint, &languages); err != nil {
		return nil, err
	}
	if languages == nil {
		languages = contracts.LanguageByteMap{}
	}
	return languages, nil
}

// Repository is the subset of repository metadata the step reports.
type Repository struct {
	FullName      string `json:"full_name"`
	Language      string `json:"language"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
}

// GetRepository fetches repository metadata
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	var r Repository
	if err := c.getJSON(ctx, endpoint, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %v", provider.ErrNetworkTimeout, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apiError(resp, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode GitHub response: %w", err)
	}
	return nil
}

// apiError maps a non-200 response to an error carrying the matching provider sentinel.
func apiError(resp *http.Response, body []byte) error {
	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = provider.ErrAuthFailed
	case http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			sentinel = provider.ErrRateLimited
		} else {
			sentinel = provider.ErrAuthFailed
		}
	case http.StatusNotFound:
		sentinel = provider.ErrRepoNotFound
	case http.StatusTooManyRequests:
		sentinel = provider.ErrRateLimited
	}

	if sentinel == nil {
		return fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("GitHub API error %d: %s: %w", resp.StatusCode, string(body), sentinel)
}
