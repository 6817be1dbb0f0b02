// Package client is the HTTP consumer of the popup API. It implements the
// orchestrator's Fetcher contract so an embedding process (SSR front-end,
// kiosk shell, smoke tester) can run the full display engine against a remote
// popup service.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/pkg/httpretry"
)

// Client talks to the popup API on behalf of one viewer. The viewer and
// session IDs it carries scope the server-side suppression records.
type Client struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
	viewerID   string
	sessionID  string
}

// New creates a client for the given API base URL (no trailing slash needed).
// Transient upstream failures are retried with backoff; the caller's context
// still bounds the total wait.
func New(baseURL, viewerID, sessionID string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpretry.NewRetryClient(&http.Client{Timeout: 10 * time.Second}, 2),
		viewerID:   viewerID,
		sessionID:  sessionID,
	}
}

// FetchActivePopups returns the candidates the server considers displayable
// for this page visit, in priority order, suppression already applied.
func (c *Client) FetchActivePopups(ctx context.Context, route string, device domain.Device, role domain.Role) ([]domain.Popup, error) {
	q := url.Values{}
	q.Set("route", route)
	q.Set("device", string(device))
	q.Set("role", string(role))

	req, err := c.newRequest(ctx, http.MethodGet, "/api/popups/active?"+q.Encode())
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching active popups: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("popup feed returned status %d", resp.StatusCode)
	}

	var payload struct {
		Popups []domain.Popup `json:"popups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding popup feed: %w", err)
	}
	return payload.Popups, nil
}

// ReportShown tells the server the popup was displayed, so the viewer's
// suppression record and the impression counter are updated.
func (c *Client) ReportShown(ctx context.Context, popupID string) error {
	return c.track(ctx, popupID, "shown")
}

// ReportClick records a CTA click-through.
func (c *Client) ReportClick(ctx context.Context, popupID string) error {
	return c.track(ctx, popupID, "click")
}

func (c *Client) track(ctx context.Context, popupID, event string) error {
	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/popups/%s/%s", url.PathEscape(popupID), event))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reporting popup %s: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("popup %s report returned status %d", event, resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.viewerID != "" {
		req.Header.Set("X-Viewer-ID", c.viewerID)
	}
	if c.sessionID != "" {
		req.Header.Set("X-Session-ID", c.sessionID)
	}
	return req, nil
}
