package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/billboard/internal/client/models"
	"github.com/dmitrijs2005/billboard/internal/common"
	"github.com/dmitrijs2005/billboard/internal/logging"
	"github.com/google/uuid"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewHTTPClient builds a client for the API rooted at baseURL. Every request
// is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "api"),
	}, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/me/profile", nil, token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) PutProfile(ctx context.Context, token string, profile models.ProfileInput) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodPut, "/api/me/profile", nil, token, profile, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListSaved(ctx context.Context, token string) ([]models.Bill, error) {
	bills := []models.Bill{}
	if err := c.do(ctx, http.MethodGet, "/api/me/saved", nil, token, nil, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (c *HTTPClient) SaveBill(ctx context.Context, token string, billID int64) error {
	return c.do(ctx, http.MethodPost, "/api/me/saved", nil, token, models.SaveBillRequest{BillID: billID}, nil)
}

func (c *HTTPClient) UnsaveBill(ctx context.Context, token string, billID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/me/saved/"+strconv.FormatInt(billID, 10), nil, token, nil, nil)
}

func (c *HTTPClient) MyRecommendations(ctx context.Context, token string, limit int) ([]models.Bill, error) {
	var resp models.RecommendationResponse
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/api/me/recommendations", q, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/api/me", nil, token, nil, nil)
}

func (c *HTTPClient) Search(ctx context.Context, query string, limit int) ([]models.Bill, error) {
	bills := []models.Bill{}
	q := url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/api/search/", q, "", nil, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (c *HTTPClient) ListProfiles(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := c.do(ctx, http.MethodGet, "/api/profiles/", nil, "", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// GetPublicProfile fetches the public profile of username. Unknown names
// yield ErrNotFound.
func (c *HTTPClient) GetPublicProfile(ctx context.Context, username string) (*models.UserProfile, error) {
	var p models.UserProfile
	path := "/api/profiles/" + url.PathEscape(common.NormalizeIdentifier(username))
	if err := c.do(ctx, http.MethodGet, path, nil, "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Recommendations(ctx context.Context, username string, limit int) ([]models.Bill, error) {
	var resp models.RecommendationResponse
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	path := "/api/recommendations/" + url.PathEscape(common.NormalizeIdentifier(username))
	if err := c.do(ctx, http.MethodGet, path, q, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// Health reports backend status. A 503 carrying a health payload is a
// degraded answer rather than a failure.
func (c *HTTPClient) Health(ctx context.Context) (*models.Health, error) {
	var h models.Health
	err := c.do(ctx, http.MethodGet, "/health", nil, "", nil, &h)
	if err == nil {
		return &h, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable && apiErr.Detail != "" {
		if jerr := json.Unmarshal([]byte(apiErr.Detail), &h); jerr == nil && h.Status != "" {
			return &h, nil
		}
	}
	return nil, err
}

// do performs one JSON request. body, when non-nil, is sent as JSON; out,
// when non-nil, receives the decoded 2xx response.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, token string, body any, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "method", method, "path", path, "request_id", requestID,
		"status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Detail: extractDetail(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// extractDetail pulls FastAPI's "detail" out of an error body. String details
// are returned as is, structured ones as their JSON text. Non-JSON bodies are
// returned trimmed.
func extractDetail(raw []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}
	return string(env.Detail)
}
