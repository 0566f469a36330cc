// Package netstatus answers "is the backend reachable right now".
package netstatus

import (
	"context"
	"net/http"
	"time"
)

// ProbeTimeout bounds a single HTTP probe.
const ProbeTimeout = 2 * time.Second

// Prober reports connectivity.
type Prober interface {
	Online(ctx context.Context) bool
}

// HTTPProber issues a GET to URL. Any HTTP response, whatever its status, counts as online.
type HTTPProber struct {
	URL    string
	Client *http.Client
}

// NewHTTPProber returns a prober for the health URL with a ProbeTimeout client.
func NewHTTPProber(url string) *HTTPProber {
	return &HTTPProber{URL: url, Client: &http.Client{Timeout: ProbeTimeout}}
}

func (p *HTTPProber) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return false
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Static always gives the same answer.
type Static bool

func (s Static) Online(context.Context) bool { return bool(s) }

// Func adapts a function to Prober.
type Func func(ctx context.Context) bool

func (f Func) Online(ctx context.Context) bool { return f(ctx) }
