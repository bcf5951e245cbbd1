// Package saltapi implements a session-token client for the SaltStack
// salt-api REST interface (rest_cherrypy). It logs in with PAM credentials,
// caches the session token, and forwards command envelopes to the API root,
// re-authenticating once when the token is rejected.
package saltapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/minionworks/salt-mcp/internal/config"
	"github.com/minionworks/salt-mcp/internal/logging"
)

const (
	// expirySlack renews cached tokens this long before salt-api would
	// expire them, so in-flight requests do not race the deadline.
	expirySlack = 30 * time.Second
	// errBodyLimit caps how much of an error response body ends up in
	// error messages.
	errBodyLimit = 512
)

// Config holds the settings for a salt-api client.
type Config struct {
	BaseURL       string
	Username      string
	Password      string
	Eauth         string
	Timeout       time.Duration
	LoginTimeout  time.Duration
	TLSSkipVerify bool
}

// LoadConfig snapshots the process configuration into an immutable Config.
func LoadConfig() (Config, error) {
	timeout, err := parseDuration(config.SaltAPITimeout(), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid salt_api_timeout: %w", err)
	}
	loginTimeout, err := parseDuration(config.SaltAPILoginTimeout(), 10*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid salt_api_login_timeout: %w", err)
	}
	return Config{
		BaseURL:       config.SaltAPIURL(),
		Username:      config.SaltAPIUsername(),
		Password:      config.SaltAPIPassword(),
		Eauth:         config.SaltAPIEauth(),
		Timeout:       timeout,
		LoginTimeout:  loginTimeout,
		TLSSkipVerify: config.SaltAPITLSSkipVerify(),
	}, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// Client talks to one salt-api endpoint. It is safe for concurrent use.
type Client struct {
	baseURL  string
	username string
	password string
	eauth    string

	http         *http.Client
	loginTimeout time.Duration
	log          logging.Logger

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// New validates cfg and returns a Client. Credentials may be empty here;
// operations fail with an auth error until they are provided.
func New(cfg Config, log logging.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("salt-api URL must not be empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid salt-api URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("salt-api URL %q must use http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	loginTimeout := cfg.LoginTimeout
	if loginTimeout <= 0 {
		loginTimeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	if cfg.TLSSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	eauth := cfg.Eauth
	if eauth == "" {
		eauth = "pam"
	}

	return &Client{
		baseURL:      base,
		username:     cfg.Username,
		password:     cfg.Password,
		eauth:        eauth,
		http:         httpClient,
		loginTimeout: loginTimeout,
		log:          log,
	}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Eauth    string `json:"eauth"`
}

// Authenticate performs a login against /login and replaces the cached
// session token. It is called lazily by the first operation and again
// whenever salt-api rejects the cached token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.username == "" || c.password == "" {
		return "", newError(KindAuth, nil, "salt-api credentials are not configured")
	}

	body, _ := json.Marshal(loginRequest{Username: c.username, Password: c.password, Eauth: c.eauth})

	loginCtx := ctx
	if c.loginTimeout > 0 {
		var cancel context.CancelFunc
		loginCtx, cancel = context.WithTimeout(ctx, c.loginTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(loginCtx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", newError(KindTransport, err, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", newError(KindTransport, err, "login request to %s failed", c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newError(KindAuth, nil, "authentication failed: salt-api returned %d: %s", resp.StatusCode, bodySnippet(resp.Body))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindTransport, err, "read login response")
	}
	if !gjson.ValidBytes(payload) {
		return "", newError(KindAuth, nil, "authentication failed: salt-api returned a malformed login response")
	}
	ret := gjson.GetBytes(payload, "return.0")
	token := ret.Get("token").String()
	if token == "" {
		return "", newError(KindAuth, nil, "authentication failed: login response carried no token")
	}
	var expiry time.Time
	if sec := ret.Get("expire").Float(); sec > 0 {
		expiry = time.Unix(int64(sec), 0)
	}

	c.mu.Lock()
	c.token = token
	c.expiry = expiry
	c.mu.Unlock()

	c.log.Debug("session token refreshed", "expiry", expiry.Format(time.RFC3339))
	return token, nil
}

// sessionToken returns the cached token, logging in first when the cache is
// empty or the expiry estimate has passed. An expiry of zero means salt-api
// did not report one; the token is then trusted until a 401 proves otherwise.
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiry := c.token, c.expiry
	c.mu.Unlock()

	if token != "" && (expiry.IsZero() || time.Now().Before(expiry.Add(-expirySlack))) {
		return token, nil
	}
	return c.Authenticate(ctx)
}

// runRequest is the command envelope salt-api accepts at its root path.
type runRequest struct {
	Client string   `json:"client"`
	Fun    string   `json:"fun"`
	Target string   `json:"tgt,omitempty"`
	Args   []string `json:"arg,omitempty"`
}

// run POSTs one command envelope and returns return[0] of the reply. A 401
// triggers exactly one re-authentication and one retry; a second 401 is an
// auth error. Transport failures are returned as-is, never retried.
func (c *Client) run(ctx context.Context, rr runRequest) (gjson.Result, error) {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return gjson.Result{}, err
	}

	body, _ := json.Marshal(rr)

	resp, err := c.post(ctx, token, body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.log.Debug("session token rejected, re-authenticating", "fun", rr.Fun)
		if token, err = c.Authenticate(ctx); err != nil {
			return gjson.Result{}, err
		}
		if resp, err = c.post(ctx, token, body); err != nil {
			return gjson.Result{}, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return gjson.Result{}, newError(KindAuth, nil, "salt-api rejected the session again after re-authentication")
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, newError(KindProtocol, nil, "salt-api returned %d for %s: %s", resp.StatusCode, rr.Fun, bodySnippet(resp.Body))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, newError(KindTransport, err, "read salt-api response")
	}
	if !gjson.ValidBytes(payload) {
		return gjson.Result{}, newError(KindProtocol, nil, "salt-api returned a non-JSON body for %s", rr.Fun)
	}
	ret := gjson.GetBytes(payload, "return")
	if !ret.IsArray() || len(ret.Array()) == 0 {
		return gjson.Result{}, newError(KindProtocol, nil, "salt-api response for %s carried no return payload", rr.Fun)
	}
	return ret.Array()[0], nil
}

func (c *Client) post(ctx context.Context, token string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindTransport, err, "build salt-api request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Auth-Token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(KindTransport, err, "salt-api request to %s failed", c.baseURL)
	}
	return resp, nil
}

func bodySnippet(r io.Reader) string {
	snippet, _ := io.ReadAll(io.LimitReader(r, errBodyLimit))
	return strings.TrimSpace(string(snippet))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errBodyLimit))
	resp.Body.Close()
}
