// Package harvest is a small client for the Harvest v2 REST API.
package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-autotracker/internal/validation"
)

const (
	DefaultBaseURL = "https://api.harvestapp.com/v2"
	userAgent      = "autotracker (https://github.com/imrishuroy/go-autotracker)"

	// maxPages stops a misbehaving next_page chain.
	maxPages = 50
)

// APIError is a non-2xx response from Harvest.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("harvest: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Retryable reports whether the failure is worth retrying.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client talks to one Harvest account. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	baseURL   string
	accountID string
	token     string
	validate  *validatorv10.Validate
}

// NewClient returns a Client. An empty baseURL uses DefaultBaseURL and a nil
// httpClient gets a 10s timeout, matching the Lambda timeout.
func NewClient(httpClient *http.Client, baseURL, accountID, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(baseURL, "/"),
		accountID: accountID,
		token:     token,
		validate:  validation.New(),
	}
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// ProjectAssignments returns every project assignment of the authenticated
// user, following pagination.
func (c *Client) ProjectAssignments(ctx context.Context) ([]ProjectAssignment, error) {
	var out []ProjectAssignment
	page := 1
	for i := 0; i < maxPages; i++ {
		var resp projectAssignmentsPage
		path := "/users/me/project_assignments?per_page=100&page=" + strconv.Itoa(page)
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.ProjectAssignments...)
		if resp.NextPage == nil || *resp.NextPage <= page {
			return out, nil
		}
		page = *resp.NextPage
	}
	return nil, fmt.Errorf("harvest: project assignments exceeded %d pages", maxPages)
}

// CreateTimeEntry validates req and creates the entry.
func (c *Client) CreateTimeEntry(ctx context.Context, req CreateTimeEntryRequest) (*TimeEntry, error) {
	if err := validation.Check(c.validate, req); err != nil {
		return nil, fmt.Errorf("harvest: time entry: %w", err)
	}
	var entry TimeEntry
	if err := c.do(ctx, http.MethodPost, "/time_entries", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("harvest: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("harvest: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Harvest-Account-ID", c.accountID)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("harvest: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("harvest: decode %s %s: %w", method, path, err)
	}
	return nil
}
