package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/library-admin/console/config"
	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/pkg/circuit_breaker"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

// Remote is what all sessions share: the base URL, the transport and one
// circuit breaker for the remote API.
type Remote struct {
	log       *zap.Logger
	baseURL   *url.URL
	transport http.RoundTripper
	timeout   time.Duration
	cb        circuit_breaker.CircuitBreaker
}

func NewRemote(log *zap.Logger, cfg config.RemoteAPI) (*Remote, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse API_BASE_URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("API_BASE_URL %q must be absolute", cfg.BaseURL)
	}
	return &Remote{
		log:       log.Named("api"),
		baseURL:   u,
		transport: http.DefaultTransport.(*http.Transport).Clone(),
		timeout:   cfg.Timeout,
		cb:        circuit_breaker.New(100, 5*time.Second, 0.5, 2),
	}, nil
}

// NewClient returns a client with its own token and cookie jar. The jar keeps
// the remote refresh credential for one browser session.
func (r *Remote) NewClient() *Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck
	return &Client{
		remote: r,
		log:    r.log,
		client: &http.Client{
			Transport: r.transport,
			Timeout:   r.timeout,
			Jar:       jar,
		},
	}
}

type Client struct {
	remote *Remote
	log    *zap.Logger
	client *http.Client

	mu    sync.RWMutex
	token string
}

// SetToken makes every later request carry the access token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Cookies returns the remote cookies stored for the API base URL.
func (c *Client) Cookies() []*http.Cookie {
	return c.client.Jar.Cookies(c.remote.baseURL)
}

func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.client.Jar.SetCookies(c.remote.baseURL, cookies)
}

func (c *Client) url(path string) string {
	u := *c.remote.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// Do sends in as JSON and decodes the answer into out. It returns the status
// code of the answer, http.StatusServiceUnavailable when the API is not
// reachable, and a *errs.StatusError for a non-2xx answer.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		b := bytes.NewBuffer(nil)
		if err := json.NewEncoder(b).Encode(in); err != nil {
			return http.StatusBadRequest, errors.Wrap(err, "encode request")
		}
		body = b
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return http.StatusBadRequest, err
	}
	req.Header.Set("Accept", echo.MIMEApplicationJSON)
	if in != nil {
		req.Header.Set("Content-Type", echo.MIMEApplicationJSONCharsetUTF8)
	}
	if token := c.Token(); token != "" {
		req.Header.Set(AuthorizationHeader, bearer+token)
	}

	var resp *http.Response
	if err = c.remote.cb.Call(func() error {
		var callErr error
		resp, callErr = c.client.Do(req)
		if callErr != nil {
			return callErr
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return errors.Errorf("remote api: %d", resp.StatusCode)
		}
		return nil
	}); err != nil && resp == nil {
		c.log.Warn("remote api unavailable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return http.StatusServiceUnavailable, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return http.StatusBadGateway, errors.Wrap(err, "read response")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Debug("remote api rejected", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return resp.StatusCode, &errs.StatusError{Code: resp.StatusCode, Message: message(data)}
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return http.StatusBadGateway, errors.Wrap(err, "decode response")
		}
	}
	return resp.StatusCode, nil
}

func message(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(data))
}
