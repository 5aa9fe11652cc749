package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/constants"
	"github.com/medialens/medialens/internal/http"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/ratelimit"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Error().Interface("details", keysAndValues).Msg("retry: " + msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings, not all info
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Warn().Interface("details", keysAndValues).Msg("retry: " + msg)
}

// apiMetrics tracks API usage statistics
type apiMetrics struct {
	sync.Mutex
	totalCalls    int64
	callsByPath   map[string]int64
	windowStart   time.Time
	callsInWindow int64
}

// Client talks to the media platform's admin, search and upload APIs on
// behalf of one environment.
type Client struct {
	httpClient     *nethttp.Client // retrying client for admin/search calls
	transferClient *nethttp.Client // plain pooled client for upload streams
	baseURL        string          // {api_base}/v1_1/{cloud_name}
	cloudName      string
	apiKey         string
	apiSecret      string
	adminLimiter   *ratelimit.RateLimiter // resource/folder listing, details, deletes
	searchLimiter  *ratelimit.RateLimiter // POST /resources/search only
	uploadLimiter  *ratelimit.RateLimiter // upload job starts
	metrics        *apiMetrics
}

// NewClient creates an API client for the given environment.
func NewClient(env config.Environment, settings *config.Settings) (*Client, error) {
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("cannot build API client: %w", err)
	}

	// Wrap the pooled transport with retry logic
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = http.NewAPIClient()
	retryClient.RetryMax = constants.RetryMax
	retryClient.RetryWaitMin = constants.RetryWaitMin
	retryClient.RetryWaitMax = constants.RetryWaitMax
	retryClient.Logger = &retryLogger{}

	base := strings.TrimSuffix(settings.APIBaseURL, "/")

	return &Client{
		httpClient:     retryClient.StandardClient(),
		transferClient: http.NewTransferClient(),
		baseURL:        fmt.Sprintf("%s/v1_1/%s", base, env.CloudName),
		cloudName:      env.CloudName,
		apiKey:         env.APIKey,
		apiSecret:      env.APISecret,
		adminLimiter:   ratelimit.NewAdminScopeRateLimiter(),
		searchLimiter:  ratelimit.NewSearchScopeRateLimiter(),
		uploadLimiter:  ratelimit.NewUploadScopeRateLimiter(),
		metrics: &apiMetrics{
			callsByPath: make(map[string]int64),
			windowStart: time.Now(),
		},
	}, nil
}

// CloudName returns the cloud this client is bound to.
func (c *Client) CloudName() string {
	return c.cloudName
}

// SignUploadParams computes the upload signature for the given parameters
// using this client's secret.
func (c *Client) SignUploadParams(params map[string]string) string {
	return SignParams(params, c.apiSecret)
}

// APIKey returns the key identifying this client to the platform. Needed as
// a form field on signed uploads.
func (c *Client) APIKey() string {
	return c.apiKey
}

// doRequest performs an HTTP request with authentication and rate limiting
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*nethttp.Response, error) {
	// Select the rate limiter for the endpoint's scope. Search has its own
	// budget; everything else on the admin API shares one.
	limiter := c.adminLimiter
	if strings.HasPrefix(path, "/resources/search") {
		limiter = c.searchLimiter
	}

	// Wait for rate limiter to allow request
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	c.trackCall(path)

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Str("method", method).Str("path", path).Err(err).Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	// Log throttle events with whatever headers the platform sent
	if resp.StatusCode == nethttp.StatusTooManyRequests {
		evt := log.Warn().Str("method", method).Str("path", path)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			evt = evt.Str("retry_after", retryAfter)
		}
		if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
			evt = evt.Str("ratelimit_remaining", remaining)
		}
		evt.Msg("throttled: scope rate limit exceeded")
	}

	return resp, nil
}

// trackCall records per-path usage and logs a rate summary every 30 seconds.
func (c *Client) trackCall(path string) {
	c.metrics.Lock()
	defer c.metrics.Unlock()

	c.metrics.totalCalls++
	c.metrics.callsByPath[path]++
	c.metrics.callsInWindow++

	if time.Since(c.metrics.windowStart) >= 30*time.Second {
		reqPerSec := float64(c.metrics.callsInWindow) / time.Since(c.metrics.windowStart).Seconds()
		log.Debug().
			Float64("req_per_sec", reqPerSec).
			Int64("total_calls", c.metrics.totalCalls).
			Msg("API usage")

		c.metrics.callsInWindow = 0
		c.metrics.windowStart = time.Now()
	}
}

// Ping verifies connectivity and credentials against the active cloud.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.APIConnectionTestTimeout)
	defer cancel()

	resp, err := c.doRequest(ctx, "GET", "/ping", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return newAPIError("ping", resp)
	}
	return nil
}

// GetUsage retrieves the account's usage and quota report.
func (c *Client) GetUsage(ctx context.Context) (*models.Usage, error) {
	resp, err := c.doRequest(ctx, "GET", "/usage", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, newAPIError("get usage", resp)
	}

	var usage models.Usage
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		return nil, fmt.Errorf("failed to decode usage: %w", err)
	}
	return &usage, nil
}

// ListAssetsPage retrieves one page of assets under a folder prefix.
// An empty cursor requests the first page; the response carries the cursor
// for the next one. Result order is the API's pagination order.
func (c *Client) ListAssetsPage(ctx context.Context, resourceType models.ResourceType, prefix, cursor string, pageSize int) (*models.AssetListResponse, error) {
	if !resourceType.Valid() {
		return nil, fmt.Errorf("%w: unknown resource type %q", ErrValidation, resourceType)
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	q := url.Values{}
	q.Set("type", "upload")
	q.Set("max_results", fmt.Sprintf("%d", pageSize))
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if cursor != "" {
		q.Set("next_cursor", cursor)
	}

	path := fmt.Sprintf("/resources/%s?%s", resourceType, q.Encode())
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, newAPIError("list resources", resp)
	}

	var page models.AssetListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode resource list: %w", err)
	}
	return &page, nil
}

// ListAssets retrieves all assets under a folder prefix, following the
// cursor until exhaustion.
func (c *Client) ListAssets(ctx context.Context, resourceType models.ResourceType, prefix string) ([]models.Asset, error) {
	var all []models.Asset
	cursor := ""

	for page := 0; page < constants.MaxPaginationPages; page++ {
		resp, err := c.ListAssetsPage(ctx, resourceType, prefix, cursor, constants.DefaultPageSize)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Assets...)

		if resp.NextCursor == "" {
			return all, nil
		}
		cursor = resp.NextCursor
	}

	return nil, fmt.Errorf("list resources: cursor did not terminate after %d pages", constants.MaxPaginationPages)
}

// searchRequest is the body of POST /resources/search.
type searchRequest struct {
	Expression string `json:"expression"`
	MaxResults int    `json:"max_results,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Search runs a search expression and returns one page of matches.
// The expression is forwarded verbatim; the platform owns the syntax.
func (c *Client) Search(ctx context.Context, expression, cursor string, maxResults int) (*models.AssetListResponse, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("%w: empty search expression", ErrValidation)
	}
	if maxResults <= 0 {
		maxResults = constants.DefaultPageSize
	}

	body := searchRequest{
		Expression: expression,
		MaxResults: maxResults,
		NextCursor: cursor,
	}

	resp, err := c.doRequest(ctx, "POST", "/resources/search", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, newAPIError("search resources", resp)
	}

	var page models.AssetListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &page, nil
}

// SearchAll runs a search expression and follows the cursor until
// exhaustion.
func (c *Client) SearchAll(ctx context.Context, expression string) ([]models.Asset, error) {
	var all []models.Asset
	cursor := ""

	for page := 0; page < constants.MaxPaginationPages; page++ {
		resp, err := c.Search(ctx, expression, cursor, constants.DefaultPageSize)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Assets...)

		if resp.NextCursor == "" {
			return all, nil
		}
		cursor = resp.NextCursor
	}

	return nil, fmt.Errorf("search resources: cursor did not terminate after %d pages", constants.MaxPaginationPages)
}

// GetAsset retrieves full details for a single asset.
func (c *Client) GetAsset(ctx context.Context, resourceType models.ResourceType, publicID string) (*models.Asset, error) {
	if !resourceType.Valid() {
		return nil, fmt.Errorf("%w: unknown resource type %q", ErrValidation, resourceType)
	}

	path := fmt.Sprintf("/resources/%s/upload/%s", resourceType, url.PathEscape(publicID))
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, newAPIError("get resource", resp)
	}

	var asset models.Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, fmt.Errorf("failed to decode resource: %w", err)
	}
	return &asset, nil
}

// DeleteAsset removes an asset from the library.
func (c *Client) DeleteAsset(ctx context.Context, resourceType models.ResourceType, publicID string) error {
	if !resourceType.Valid() {
		return fmt.Errorf("%w: unknown resource type %q", ErrValidation, resourceType)
	}

	path := fmt.Sprintf("/resources/%s/upload/%s", resourceType, url.PathEscape(publicID))
	resp, err := c.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusNoContent {
		return newAPIError("delete resource", resp)
	}
	return nil
}

// ListRootFolders lists the top-level folders of the library.
func (c *Client) ListRootFolders(ctx context.Context) ([]models.Folder, error) {
	return c.listFolders(ctx, "/folders")
}

// ListSubfolders lists the immediate subfolders of a folder path.
func (c *Client) ListSubfolders(ctx context.Context, path string) ([]models.Folder, error) {
	if path == "" {
		return c.ListRootFolders(ctx)
	}

	escaped := make([]string, 0, 4)
	for _, seg := range strings.Split(path, "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return c.listFolders(ctx, "/folders/"+strings.Join(escaped, "/"))
}

func (c *Client) listFolders(ctx context.Context, basePath string) ([]models.Folder, error) {
	var all []models.Folder
	cursor := ""

	for page := 0; page < constants.MaxPaginationPages; page++ {
		path := basePath
		if cursor != "" {
			path += "?next_cursor=" + url.QueryEscape(cursor)
		}

		resp, err := c.doRequest(ctx, "GET", path, nil)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != nethttp.StatusOK {
			apiErr := newAPIError("list folders", resp)
			resp.Body.Close()
			return nil, apiErr
		}

		var result models.FolderListResponse
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode folder list: %w", err)
		}

		all = append(all, result.Folders...)

		if result.NextCursor == "" {
			return all, nil
		}
		cursor = result.NextCursor
	}

	return nil, fmt.Errorf("list folders: cursor did not terminate after %d pages", constants.MaxPaginationPages)
}

// Upload posts a prepared multipart stream to the upload endpoint for the
// given resource type. The caller builds the multipart body (including the
// signature fields) and owns progress accounting; contentType carries the
// multipart boundary.
//
// Uses the transfer client without automatic retries: the stream is consumed
// by the attempt, so replaying it is the caller's decision.
func (c *Client) Upload(ctx context.Context, resourceType models.ResourceType, body io.Reader, contentType string) (*models.UploadResult, error) {
	if !resourceType.Valid() {
		return nil, fmt.Errorf("%w: unknown resource type %q", ErrValidation, resourceType)
	}

	// Gate job starts, not transfer bandwidth
	if err := c.uploadLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}
	c.trackCall("/upload")

	endpoint := fmt.Sprintf("%s/%s/upload", c.baseURL, resourceType)
	req, err := nethttp.NewRequestWithContext(ctx, "POST", endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
		return nil, newAPIError("upload", resp)
	}

	var result models.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}
