// Package api is the HTTP client every HobbyHub service talks to the backend through.
// It injects the bearer token, normalizes responses and errors, retries failures,
// refreshes expired sessions and caches GET responses for offline use.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"hobbyhub/internal/client/netstatus"
	"hobbyhub/internal/client/storage"

	"github.com/pkg/errors"
)

// Defaults applied by New when the corresponding option is zero.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = time.Second
	DefaultCacheTTL       = 5 * time.Minute
)

// Endpoints the client treats specially.
const (
	PathLogin        = "/auth/login"
	PathRegister     = "/auth/register"
	PathSocial       = "/auth/social"
	PathRefreshToken = "/auth/refresh-token"
)

// Options configures a Client. Only BaseURL and Store are required.
type Options struct {
	BaseURL string
	Store   storage.Store
	// Prober decides whether a GET without a fresh cache entry may go to the network.
	// Defaults to always online.
	Prober netstatus.Prober

	HTTPClient *http.Client
	Timeout    time.Duration
	// MaxRetries is the number of resubmissions after a non-401 failure. Negative disables retries.
	MaxRetries int
	// RetryBaseDelay is the first backoff; attempt n waits RetryBaseDelay * 2^n.
	RetryBaseDelay time.Duration
	CacheTTL       time.Duration

	Logger *slog.Logger
	// Sleep waits between retries. Defaults to a timer that honours ctx.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
	// OnSessionExpired runs after a failed refresh has cleared the credentials.
	OnSessionExpired func()
}

// Client executes API requests. It is safe for concurrent use.
type Client struct {
	baseURL    string
	store      storage.Store
	prober     netstatus.Prober
	http       *http.Client
	maxRetries int
	retryBase  time.Duration
	cacheTTL   time.Duration
	log        *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
	onExpired  func()

	refresh refresher
}

// New builds a Client from opts.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, errors.New("api: BaseURL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, errors.Wrap(err, "api: parse BaseURL")
	}
	if opts.Store == nil {
		return nil, errors.New("api: Store is required")
	}

	c := &Client{
		baseURL:    base,
		store:      opts.Store,
		prober:     opts.Prober,
		http:       opts.HTTPClient,
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryBaseDelay,
		cacheTTL:   opts.CacheTTL,
		log:        opts.Logger,
		sleep:      opts.Sleep,
		now:        opts.Now,
		onExpired:  opts.OnSessionExpired,
	}
	if c.prober == nil {
		c.prober = netstatus.Static(true)
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	switch {
	case c.maxRetries == 0:
		c.maxRetries = DefaultMaxRetries
	case c.maxRetries < 0:
		c.maxRetries = 0
	}
	if c.retryBase <= 0 {
		c.retryBase = DefaultRetryBaseDelay
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = DefaultCacheTTL
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Store returns the storage the client keeps credentials in.
func (c *Client) Store() storage.Store { return c.store }

// Request describes one API call.
type Request struct {
	Method string
	// Path is appended to the base URL, e.g. "/hobbies/42".
	Path   string
	Params map[string]string
	Body   any
	// NoCache skips the GET cache in both directions.
	NoCache bool
	// NoRetry sends the request once; 401 handling still applies.
	NoRetry bool
}

func (c *Client) Get(ctx context.Context, path string, params map[string]string) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Params: params})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do runs req through the cache, retry and refresh policies.
func (c *Client) Do(ctx context.Context, req Request) (*Envelope, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	var body []byte
	if req.Body != nil {
		var err error
		if body, err = json.Marshal(req.Body); err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
	}

	cacheable := req.Method == http.MethodGet && !req.NoCache
	var key string
	if cacheable {
		key = c.cacheKey(req.Path, req.Params)
		cached, found := c.readCache(ctx, key)
		if found && !cached.expired(c.now()) {
			c.log.Debug("cache hit", "path", req.Path)
			return normalize(cached.Data)
		}
		if !c.prober.Online(ctx) {
			if found {
				c.log.Warn("offline, serving cached response", "path", req.Path, "expired", cached.expired(c.now()))
				return normalize(cached.Data)
			}
			return nil, ErrOffline.with(nil)
		}
	}

	maxRetries := c.maxRetries
	if req.NoRetry {
		maxRetries = 0
	}
	raw, err := c.execute(ctx, req.Method, req.Path, c.requestURL(req.Path, req.Params), body, maxRetries)
	if err != nil {
		return nil, err
	}
	env, err := normalize(raw)
	if err != nil {
		return nil, &Error{Message: "unexpected response body", Code: CodeBadResponse, Err: err}
	}
	if cacheable {
		return c.writeCache(ctx, key, env), nil
	}
	return env, nil
}

// execute sends the request, retrying non-401 failures with exponential backoff and
// refreshing the session once on a 401.
func (c *Client) execute(ctx context.Context, method, path, fullURL string, body []byte, maxRetries int) ([]byte, error) {
	retries := 0
	refreshed := false
	var turn *replayTurn
	for {
		if err := turn.wait(ctx); err != nil {
			return nil, err
		}
		sendCtx := ctx
		if turn != nil {
			sendCtx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{GotFirstResponseByte: turn.finish})
		}
		token := c.accessToken(ctx)
		raw, err := c.send(sendCtx, method, fullURL, body, token)
		turn.finish()
		turn = nil
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		if StatusOf(err) == http.StatusUnauthorized {
			if refreshed || !refreshable(path) {
				return nil, err
			}
			next, rerr := c.refreshSession(ctx, token)
			if rerr != nil {
				return nil, rerr
			}
			turn = next
			refreshed = true
			continue
		}

		if retries >= maxRetries {
			return nil, err
		}
		delay := c.retryBase << retries
		c.log.Debug("retrying request", "method", method, "path", path, "attempt", retries+1, "delay", delay, "error", err)
		if serr := c.sleep(ctx, delay); serr != nil {
			return nil, err
		}
		retries++
	}
}

// send performs one HTTP round trip. Non-2xx responses and transport failures come back as *Error.
func (c *Client) send(ctx context.Context, method, fullURL string, body []byte, token string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp.StatusCode, raw)
	}
	return raw, nil
}

// accessToken reads the stored token. Storage failures are logged and the request goes out unauthenticated.
func (c *Client) accessToken(ctx context.Context) string {
	token, _, err := c.store.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		c.log.Warn("could not read access token", "error", err)
		return ""
	}
	return token
}

func (c *Client) requestURL(path string, params map[string]string) string {
	u := c.resolve(path)
	if len(params) == 0 {
		return u
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + q.Encode()
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func refreshable(path string) bool {
	switch path {
	case PathLogin, PathRegister, PathSocial, PathRefreshToken:
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
