package linkedin

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/oauth2"

	"github.com/guarzo/linkedinapi/common"
	"github.com/guarzo/linkedinapi/common/model"
)

// RestClient defines lower-level HTTP operations against the LinkedIn REST
// API: GET/POST handling, bearer-token injection, response caching.
type RestClient interface {
	GetJSON(ctx context.Context, endpoint string, entity interface{}, token *oauth2.Token, params map[string]string) error
	GetBytes(ctx context.Context, endpoint string, token *oauth2.Token, params map[string]string) ([]byte, error)
	PostForm(ctx context.Context, endpoint string, data url.Values, expectedStatus ...int) ([]byte, error)
	DoRequest(ctx context.Context, method, urlStr string, token *oauth2.Token, body io.Reader, expectedStatus ...int) ([]byte, error)
}

type restClient struct {
	baseURL    string
	httpClient common.HttpClient
	cache      common.CacheRepository
}

// Some metrics counters (optional)
var (
	totalCalls   int64
	successCount int64
	failCount    int64
)

// Profile data changes rarely; cache it for the common.DefaultExpiration
// window so repeated accessor reads never hit the network twice.
const profileCacheExpiration = common.DefaultExpiration

// NewRestClient creates a RestClient that talks to the LinkedIn API at
// baseURL (normally APIBaseURL).
func NewRestClient(baseURL string, httpClient common.HttpClient, cache common.CacheRepository) RestClient {
	return &restClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache,
	}
}

// ---------------------------------------------------
// Implementation of RestClient interface
// ---------------------------------------------------

// GetJSON retrieves JSON from an endpoint and unmarshals into entity.
func (c *restClient) GetJSON(ctx context.Context, endpoint string, entity interface{}, token *oauth2.Token, params map[string]string) error {
	data, err := c.GetBytes(ctx, endpoint, token, params)
	if err != nil {
		return err
	}
	return model.JSONUnmarshal(data, entity)
}

// GetBytes retrieves raw bytes from an endpoint, with caching.
func (c *restClient) GetBytes(ctx context.Context, endpoint string, token *oauth2.Token, params map[string]string) ([]byte, error) {
	if params == nil {
		params = map[string]string{}
	}
	// the v1 API answers XML unless asked otherwise
	if _, found := params["format"]; !found {
		params["format"] = "json"
	}

	// Responses are member data, so the cache key must be scoped to the
	// token: two accounts logging in from one process must never see each
	// other's cached profile.
	cacheKey := c.buildCacheKey(endpoint, params, token)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached, nil
	}

	urlStr, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, err
	}

	operation := func() (interface{}, error) {
		data, err := c.DoRequest(ctx, http.MethodGet, urlStr, token, nil)
		if err != nil {
			return nil, err
		}
		// store in cache
		c.cache.Set(cacheKey, data, profileCacheExpiration)
		return data, nil
	}

	result, err := c.httpClient.RetryWithExponentialBackoff(operation)
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// PostForm sends an URL-encoded POST (the token endpoint's content type)
// with optional expected status codes.
func (c *restClient) PostForm(ctx context.Context, endpoint string, data url.Values, expectedStatus ...int) ([]byte, error) {
	urlStr, err := c.buildURL(endpoint, nil)
	if err != nil {
		return nil, err
	}
	if len(expectedStatus) == 0 {
		expectedStatus = []int{http.StatusOK}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %v", readErr)
	}
	countCall(resp.StatusCode)
	if !statusMatches(resp.StatusCode, expectedStatus) {
		return nil, &common.HTTPError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}

// DoRequest is the core method that actually performs the HTTP request.
func (c *restClient) DoRequest(ctx context.Context, method, urlStr string, token *oauth2.Token, body io.Reader, expectedStatus ...int) ([]byte, error) {
	if len(expectedStatus) == 0 {
		expectedStatus = []int{http.StatusOK}
	}

	var bodyBytes []byte
	if body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		bodyBytes = b
	}

	data, status, err := c.executeRequest(ctx, method, urlStr, token, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}

	countCall(status)

	if !statusMatches(status, expectedStatus) {
		return nil, &common.HTTPError{
			StatusCode: status,
			Body:       data,
		}
	}
	return data, nil
}

// executeRequest actually does the low-level HTTP
func (c *restClient) executeRequest(ctx context.Context, method, urlStr string, token *oauth2.Token, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if token != nil && token.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %v", readErr)
	}
	return data, resp.StatusCode, nil
}

// buildURL merges baseURL + endpoint + params
func (c *restClient) buildURL(endpoint string, params map[string]string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	path, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	fullURL := base.ResolveReference(path)
	q := fullURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	fullURL.RawQuery = q.Encode()
	return fullURL.String(), nil
}

// buildCacheKey composes the cache key from endpoint, params and a token
// fingerprint (never the raw token).
func (c *restClient) buildCacheKey(endpoint string, params map[string]string, token *oauth2.Token) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	queryParams := ""
	for _, k := range keys {
		queryParams += fmt.Sprintf("&%s=%s", k, params[k])
	}
	return fmt.Sprintf("linkedin:%s:%s:%s", tokenFingerprint(token), endpoint, queryParams)
}

func tokenFingerprint(token *oauth2.Token) string {
	if token == nil || token.AccessToken == "" {
		return "anon"
	}
	sum := sha256.Sum256([]byte(token.AccessToken))
	return hex.EncodeToString(sum[:8])
}

func statusMatches(statusCode int, expected []int) bool {
	for _, s := range expected {
		if statusCode == s {
			return true
		}
	}
	return false
}

func countCall(status int) {
	atomic.AddInt64(&totalCalls, 1)
	if status >= 200 && status < 300 {
		atomic.AddInt64(&successCount, 1)
	} else {
		atomic.AddInt64(&failCount, 1)
	}
}

// CallStats reports how many API calls this process has made and how many
// succeeded. Useful when debugging throttling.
func CallStats() (total, succeeded, failed int64) {
	return atomic.LoadInt64(&totalCalls), atomic.LoadInt64(&successCount), atomic.LoadInt64(&failCount)
}
