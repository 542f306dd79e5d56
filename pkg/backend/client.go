package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"igloader/pkg/config"
	errs "igloader/pkg/errors"
	"igloader/pkg/logger"
	"igloader/pkg/models"
	"igloader/pkg/ratelimit"
)

// Client talks to the media backend over its JSON API
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	defaults   models.Settings
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a backend client. A nil limiter means no pacing and a
// nil logger falls back to the global one.
func NewClient(cfg config.BackendConfig, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "igloader/1.0"
	}

	return &Client{
		// A zero timeout leaves requests unbounded; long jobs answer slowly
		httpClient: &http.Client{Timeout: cfg.Timeout},
		headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		baseURL: baseURL,
		defaults: models.Settings{
			Proxy: cfg.Proxy,
			DocID: cfg.DocID,
		},
		limiter: limiter,
		logger:  log.WithField("component", "backend"),
	}
}

// BaseURL returns the backend root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHeader sets a custom header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// ProxyImageURL returns the proxied form of imageURL for this backend
func (c *Client) ProxyImageURL(imageURL string) string {
	return ProxyImageURL(c.baseURL, imageURL)
}

type searchRequest struct {
	URL      string          `json:"url,omitempty"`
	Username string          `json:"username,omitempty"`
	Settings models.Settings `json:"settings"`
}

type taskRequest struct {
	TaskID    string           `json:"task_id"`
	EndCursor string           `json:"end_cursor,omitempty"`
	Settings  *models.Settings `json:"settings,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// FetchPost looks up a single post by its URL or shortcode
func (c *Client) FetchPost(ctx context.Context, postURL string, settings models.Settings) (*models.Post, error) {
	return c.fetchPost(ctx, postURL, settings, FallbackSearch)
}

// FetchFullPost re-fetches a thin grid post by shortcode to get the
// engagement counts and full resolution media
func (c *Client) FetchFullPost(ctx context.Context, shortcode string, settings models.Settings) (*models.Post, error) {
	return c.fetchPost(ctx, shortcode, settings, FallbackFullPost)
}

func (c *Client) fetchPost(ctx context.Context, postURL string, settings models.Settings, fallback string) (*models.Post, error) {
	var out struct {
		Post models.Post `json:"post"`
	}
	req := searchRequest{URL: postURL, Settings: c.settings(settings)}
	if _, err := c.postJSON(ctx, PostEndpoint, req, &out, fallback, false); err != nil {
		return nil, err
	}
	return &out.Post, nil
}

// FetchProfile looks up a profile. The backend starts the posts and
// highlights jobs for it and returns their ids.
func (c *Client) FetchProfile(ctx context.Context, username string, settings models.Settings) (*models.ProfileLookup, error) {
	var out models.ProfileLookup
	req := searchRequest{Username: username, Settings: c.settings(settings)}
	if _, err := c.postJSON(ctx, ProfileEndpoint, req, &out, FallbackSearch, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchHighlight looks up a single highlight reel by URL
func (c *Client) FetchHighlight(ctx context.Context, highlightURL string, settings models.Settings) (*models.Highlight, error) {
	var out struct {
		Highlight models.Highlight `json:"highlight"`
	}
	req := searchRequest{URL: highlightURL, Settings: c.settings(settings)}
	if _, err := c.postJSON(ctx, HighlightEndpoint, req, &out, FallbackSearch, false); err != nil {
		return nil, err
	}
	return &out.Highlight, nil
}

// FetchProfilePosts requests one page from the posts job. Pass StartCursor
// for the first page. A 202 answer is not an error: the page comes back
// with Pending set and whatever the body carried.
func (c *Client) FetchProfilePosts(ctx context.Context, taskID, cursor string) (*models.PostPage, error) {
	fallback := FallbackMorePosts
	if cursor == StartCursor {
		fallback = FallbackInitialPosts
	}

	var page models.PostPage
	status, err := c.postJSON(ctx, ProfilePostsEndpoint, taskRequest{TaskID: taskID, EndCursor: cursor}, &page, fallback, true)
	if err != nil {
		return nil, err
	}
	page.Pending = status == http.StatusAccepted
	if page.Cursor != nil && *page.Cursor == "" {
		page.Cursor = nil
	}
	return &page, nil
}

// FetchHighlights polls the highlights job
func (c *Client) FetchHighlights(ctx context.Context, taskID string) (*models.HighlightList, error) {
	var list models.HighlightList
	if _, err := c.postJSON(ctx, ProfileHighlightsEndpoint, taskRequest{TaskID: taskID}, &list, FallbackHighlights, true); err != nil {
		return nil, err
	}
	return &list, nil
}

// DownloadProfileArchive streams the ZIP of every post the job collected
// into w and returns the number of bytes written
func (c *Client) DownloadProfileArchive(ctx context.Context, taskID string, settings models.Settings, w io.Writer) (int64, error) {
	s := c.settings(settings)
	resp, err := c.post(ctx, ProfileDownloadEndpoint, taskRequest{TaskID: taskID, Settings: &s})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, c.statusError(resp, FallbackArchive)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errs.Network(err)
	}
	return n, nil
}

// FetchMedia downloads rawURL into w. Any absolute URL is accepted so both
// CDN links and proxied links work.
func (c *Client) FetchMedia(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, errs.Validation(fmt.Sprintf("invalid media url: %v", err))
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, c.statusError(resp, FallbackMedia)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errs.Network(err)
	}
	return n, nil
}

// settings fills empty request settings from the configured defaults
func (c *Client) settings(s models.Settings) models.Settings {
	return s.Merge(c.defaults)
}

// postJSON posts body to endpoint and decodes the answer into out. With
// allowPending a 202 is decoded like a 200; an empty 202 body is fine.
func (c *Client) postJSON(ctx context.Context, endpoint string, body, out interface{}, fallback string, allowPending bool) (int, error) {
	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	pending := allowPending && resp.StatusCode == http.StatusAccepted
	if !pending && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return resp.StatusCode, c.statusError(resp, fallback)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errs.Network(err)
	}
	if pending && len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"endpoint":     endpoint,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return resp.StatusCode, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fallback,
			Code:    resp.StatusCode,
			Err:     err,
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeRequest, fmt.Sprintf("failed to encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeRequest, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// do sends req with the configured headers and logs the outcome
func (c *Client) do(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":      req.Method,
			"endpoint":    req.URL.Path,
			"error":       err.Error(),
			"duration_ms": elapsed,
		})
		return nil, errs.Network(err)
	}

	logger.LogRequest(c.logger, req.Method, req.URL.Path, resp.StatusCode, elapsed)
	return resp, nil
}

// statusError builds the error for a failed response, preferring the
// backend's own {error} message over fallback
func (c *Client) statusError(resp *http.Response, fallback string) error {
	message := fallback
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body errorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		message = body.Error
	}
	return errs.FromStatus(resp.StatusCode, message)
}
