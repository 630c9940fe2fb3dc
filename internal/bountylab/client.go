// Package bountylab is a client for the BountyLab developer and repository
// search API.
package bountylab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/talent-scout/internal/apierror"
)

const (
	defaultBaseURL = "https://api.bountylab.io"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// Endpoint paths relative to the base URL.
const (
	PathSearchUsers        = "/api/search/users"
	PathUsersByLogin       = "/api/raw/users/by-login"
	PathSearchRepos        = "/api/search/repos"
	PathNaturalRepoSearch  = "/api/search/repos/natural-language"
	defaultUserAgentHeader = "talent-scout/1.0"
)

// ErrMissingAPIKey is returned by NewClient when no key is configured.
var ErrMissingAPIKey = errors.New("bountylab: API key is required (set BOUNTYLAB_API_KEY)")

// Config configures a Client.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues requests against the provider.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates a client, filling defaults for unset fields.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// SearchUsers runs a full-text developer search.
func (c *Client) SearchUsers(ctx context.Context, req SearchRequest) (*UserSearchResponse, error) {
	var out UserSearchResponse
	if err := c.post(ctx, PathSearchUsers, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UsersByLogin fetches developers by exact login.
func (c *Client) UsersByLogin(ctx context.Context, req ByLoginRequest) (*UsersResponse, error) {
	var out UsersResponse
	if err := c.post(ctx, PathUsersByLogin, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchRepos runs a full-text repository search.
func (c *Client) SearchRepos(ctx context.Context, req SearchRequest) (*RepoSearchResponse, error) {
	var out RepoSearchResponse
	if err := c.post(ctx, PathSearchRepos, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NaturalLanguageRepos runs a repository search where the provider interprets
// the free-text query itself.
func (c *Client) NaturalLanguageRepos(ctx context.Context, req SearchRequest) (*RepoSearchResponse, error) {
	var out RepoSearchResponse
	if err := c.post(ctx, PathNaturalRepoSearch, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("bountylab: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("bountylab: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgentHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bountylab: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("bountylab: decode response: %w", err)
	}
	return nil
}

// decodeError reads a provider error body, either bare or wrapped in an
// "error" envelope. Anything else is kept as the error message.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	remote := &apierror.RemoteError{Status: resp.StatusCode}

	var body apierror.Body
	if err := json.Unmarshal(raw, &body); err == nil && hasContent(&body) {
		remote.Body = &body
		return remote
	}

	var envelope struct {
		Error *apierror.Body `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && hasContent(envelope.Error) {
		remote.Body = envelope.Error
		return remote
	}

	remote.Message = strings.TrimSpace(string(raw))
	if remote.Message == "" {
		remote.Message = http.StatusText(resp.StatusCode)
	}
	return remote
}

func hasContent(b *apierror.Body) bool {
	return b != nil && (b.Error != "" || b.Code != "" || b.Details != nil)
}
