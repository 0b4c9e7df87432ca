package linkedin_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/guarzo/linkedinapi/common"
	"github.com/guarzo/linkedinapi/modules/linkedin"
)

type mockHttpClient struct {
	doFunc    func(req *http.Request) (*http.Response, error)
	retryFunc func(operation func() (interface{}, error)) (interface{}, error)
}

func (m *mockHttpClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}
func (m *mockHttpClient) Get(url string) (*http.Response, error) {
	panic("Get not implemented in mock")
}
func (m *mockHttpClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	panic("Post not implemented in mock")
}
func (m *mockHttpClient) PostForm(u string, data url.Values) (*http.Response, error) {
	panic("PostForm not implemented in mock")
}
func (m *mockHttpClient) CloseIdleConnections() {}
func (m *mockHttpClient) RetryWithExponentialBackoff(op func() (interface{}, error)) (interface{}, error) {
	if m.retryFunc != nil {
		return m.retryFunc(op)
	}
	// default: call op directly
	return op()
}
func (m *mockHttpClient) SetSleepForTest(sleep func(d time.Duration)) {}

type mockCache struct {
	store map[string][]byte
}

func (c *mockCache) Get(key string) ([]byte, bool) {
	val, ok := c.store[key]
	return val, ok
}
func (c *mockCache) Set(key string, value []byte, _ time.Duration) {
	c.store[key] = value
}
func (c *mockCache) Delete(key string) {
	delete(c.store, key)
}

func TestRestClient_DoRequest_Success(t *testing.T) {
	var gotAuth string
	mockHTTP := &mockHttpClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			body := io.NopCloser(bytes.NewBufferString(`{"foo":"bar"}`))
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       body,
			}, nil
		},
	}

	client := linkedin.NewRestClient(
		linkedin.APIBaseURL,
		mockHTTP,
		&mockCache{store: make(map[string][]byte)},
	)

	ctx := context.Background()
	token := &oauth2.Token{AccessToken: "tok123"}
	data, err := client.DoRequest(ctx, http.MethodGet, "https://example.com/test", token, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"foo":"bar"}` {
		t.Errorf("expected %v, got %v", `{"foo":"bar"}`, string(data))
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestRestClient_DoRequest_UnexpectedStatus(t *testing.T) {
	mockHTTP := &mockHttpClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusUnauthorized,
				Body:       io.NopCloser(bytes.NewBufferString(`{"status":401,"message":"Invalid access token."}`)),
			}, nil
		},
	}

	client := linkedin.NewRestClient(
		linkedin.APIBaseURL,
		mockHTTP,
		&mockCache{store: make(map[string][]byte)},
	)

	_, err := client.DoRequest(context.Background(), http.MethodGet, "https://example.com/test", nil, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var httpErr *common.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.StatusCode)
	}
}

func TestRestClient_GetBytes_Caching(t *testing.T) {
	calls := 0
	mockHTTP := &mockHttpClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			calls++
			if req.URL.Query().Get("format") != "json" {
				t.Errorf("expected format=json, got URL %s", req.URL.String())
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"id":"abc"}`)),
			}, nil
		},
	}

	client := linkedin.NewRestClient(
		linkedin.APIBaseURL,
		mockHTTP,
		&mockCache{store: make(map[string][]byte)},
	)

	ctx := context.Background()
	token := &oauth2.Token{AccessToken: "tok123"}

	for i := 0; i < 2; i++ {
		data, err := client.GetBytes(ctx, "people/~", token, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"id":"abc"}` {
			t.Errorf("unexpected body: %s", string(data))
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 HTTP call thanks to caching, got %d", calls)
	}

	// a different token must not see the first token's cached data
	other := &oauth2.Token{AccessToken: "someone-else"}
	if _, err := client.GetBytes(ctx, "people/~", other, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a fresh HTTP call for a different token, got %d total", calls)
	}
}

func TestRestClient_PostForm(t *testing.T) {
	mockHTTP := &mockHttpClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
				t.Errorf("unexpected content type %q", got)
			}
			body, _ := io.ReadAll(req.Body)
			if !strings.Contains(string(body), "grant_type=authorization_code") {
				t.Errorf("unexpected form body: %s", string(body))
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"access_token":"tok","expires_in":5184000}`)),
			}, nil
		},
	}

	client := linkedin.NewRestClient(
		linkedin.TokenURL,
		mockHTTP,
		&mockCache{store: make(map[string][]byte)},
	)

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", "ABC")

	data, err := client.PostForm(context.Background(), "", form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "access_token") {
		t.Errorf("unexpected response: %s", string(data))
	}
}
