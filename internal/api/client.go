package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"animewatch/internal/catalog"
)

const defaultClientTimeout = 10 * time.Second

// Error is a non-2xx response from the daemon.
type Error struct {
	Status  int
	Message string
	Kind    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned %d", e.Status)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

// Client talks to the daemon HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the API at bind (host:port or full URL).
func NewClient(bind, token string) *Client {
	base := strings.TrimRight(strings.TrimSpace(bind), "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: defaultClientTimeout},
	}
}

// Recognize submits a playback title.
func (c *Client) Recognize(ctx context.Context, title string) (*Observation, error) {
	var resp Observation
	if err := c.do(ctx, http.MethodPost, "/api/recognize", RecognizeRequest{Title: title}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status returns daemon status and engine stats.
func (c *Client) Status(ctx context.Context) (*DaemonStatus, error) {
	var resp DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListAnime returns the catalog.
func (c *Client) ListAnime(ctx context.Context) ([]Anime, error) {
	var resp AnimeListResponse
	if err := c.do(ctx, http.MethodGet, "/api/anime", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// AddAnime inserts a single entry.
func (c *Client) AddAnime(ctx context.Context, anime catalog.Anime) (*Anime, error) {
	var resp Anime
	if err := c.do(ctx, http.MethodPost, "/api/anime", anime, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Import inserts a batch atomically.
func (c *Client) Import(ctx context.Context, items []catalog.Anime) (int, error) {
	var resp ImportResponse
	if err := c.do(ctx, http.MethodPost, "/api/anime/import", ImportRequest{Items: items}, &resp); err != nil {
		return 0, err
	}
	return resp.Imported, nil
}

// LinkExternalIDs upserts remote identifiers for an anime.
func (c *Client) LinkExternalIDs(ctx context.Context, id int64, ids ExternalIDsRequest) (*Anime, error) {
	var resp Anime
	path := "/api/anime/" + strconv.FormatInt(id, 10) + "/external-ids"
	if err := c.do(ctx, http.MethodPost, path, ids, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns recent watch history.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": []string{strconv.Itoa(limit)}}.Encode()
	}
	var resp HistoryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Invalidate resets the daemon's recognition engine.
func (c *Client) Invalidate(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/recognition/invalidate", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var payload ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
			apiErr.Kind = payload.Kind
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
