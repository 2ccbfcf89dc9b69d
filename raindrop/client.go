package raindrop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"dropbot/types"
)

const (
	// UnsortedCollection is the reserved Raindrop collection holding
	// bookmarks that were saved but never filed.
	UnsortedCollection = "-1"

	defaultTimeout = 30 * time.Second
)

// Client talks to a Raindrop-compatible bookmark service over its REST API.
// Each call is a single timeout-bounded attempt; retry policy belongs to
// the caller.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a bookmark service client for the given base URL and
// bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// raindropItem mirrors the subset of the remote item schema the pipeline consumes.
type raindropItem struct {
	ID         int64     `json:"_id"`
	Link       string    `json:"link"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Note       string    `json:"note"`
	Type       string    `json:"type"`
	Tags       []string  `json:"tags"`
	Created    time.Time `json:"created"`
	LastUpdate time.Time `json:"lastUpdate"`
}

func (it *raindropItem) toBookmark() *types.Bookmark {
	return &types.Bookmark{
		ID:         strconv.FormatInt(it.ID, 10),
		Link:       it.Link,
		Title:      it.Title,
		Type:       types.BookmarkType(it.Type),
		Excerpt:    it.Excerpt,
		Note:       it.Note,
		Tags:       it.Tags,
		Created:    it.Created,
		LastUpdate: it.LastUpdate,
	}
}

// FetchUnsorted returns the bookmarks in the unsorted collection.
func (c *Client) FetchUnsorted(ctx context.Context) ([]*types.Bookmark, error) {
	var result struct {
		Items []raindropItem `json:"items"`
	}

	path := fmt.Sprintf("/rest/v1/raindrops/%s", UnsortedCollection)
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch unsorted bookmarks: %w", err)
	}

	bookmarks := make([]*types.Bookmark, len(result.Items))
	for i := range result.Items {
		bookmarks[i] = result.Items[i].toBookmark()
	}
	return bookmarks, nil
}

// Get fetches a single bookmark by its identifier.
func (c *Client) Get(ctx context.Context, id string) (*types.Bookmark, error) {
	var result struct {
		Item raindropItem `json:"item"`
	}

	if err := c.doJSONRequest(ctx, http.MethodGet, "/rest/v1/raindrop/"+id, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch bookmark %s: %w", id, err)
	}
	return result.Item.toBookmark(), nil
}

// Update writes the merged tag set and note back to the remote bookmark.
// Tags and note travel in the same call so the classified marker lands
// together with the enrichment it marks.
func (c *Client) Update(ctx context.Context, id string, tags []string, note string) error {
	payload := map[string]interface{}{
		"tags": tags,
	}
	if note != "" {
		payload["note"] = note
	}

	if err := c.doJSONRequest(ctx, http.MethodPut, "/rest/v1/raindrop/"+id, payload, nil); err != nil {
		return fmt.Errorf("%w: bookmark %s: %v", types.ErrRemoteWriteFailed, id, err)
	}
	return nil
}

// Create saves a new link bookmark into the unsorted collection and
// returns its identifier.
func (c *Client) Create(ctx context.Context, link, title, excerpt string) (string, error) {
	payload := map[string]interface{}{
		"link":    link,
		"title":   title,
		"excerpt": excerpt,
	}

	var result struct {
		Item raindropItem `json:"item"`
	}
	if err := c.doJSONRequest(ctx, http.MethodPost, "/rest/v1/raindrop", payload, &result); err != nil {
		return "", fmt.Errorf("failed to create bookmark for %s: %w", link, err)
	}
	return strconv.FormatInt(result.Item.ID, 10), nil
}

// doJSONRequest performs a JSON request with the given method, path, payload, and result.
// If result is nil, the response body is not decoded.
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload, result interface{}) error {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
