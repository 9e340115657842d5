package notion

import (
	"net"
	"net/http"
	"sync"
	"time"

	"quicknotes/internal/constants"
)

// Pool hands out one reusable HTTP client per distinct credential value.
// Clients are created lazily, are immutable once built, and live for the
// process lifetime. A rotated credential is a new map key, never a
// mutation of an existing client.
type Pool struct {
	mu      sync.Mutex
	clients map[string]*http.Client
	timeout time.Duration
	base    http.RoundTripper
}

// NewPool creates an empty pool. A nil base transport means each client
// gets its own standard transport; tests inject a fake here.
func NewPool(timeout time.Duration, base http.RoundTripper) *Pool {
	if timeout <= 0 {
		timeout = constants.NotionRequestTimeout
	}
	return &Pool{
		clients: make(map[string]*http.Client),
		timeout: timeout,
		base:    base,
	}
}

// GetOrCreate returns the pooled client for the credential, building one
// with baked-in auth and version headers on first use.
func (p *Pool) GetOrCreate(credential string) *http.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cli, ok := p.clients[credential]; ok {
		return cli
	}

	base := p.base
	if base == nil {
		base = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   constants.DefaultDialTimeout,
				KeepAlive: constants.DefaultKeepAlive,
			}).DialContext,
			TLSHandshakeTimeout: constants.DefaultTLSHandshakeTimeout,
			MaxIdleConns:        constants.MaxIdleConns,
			MaxIdleConnsPerHost: constants.MaxIdleConnsPerHost,
			IdleConnTimeout:     constants.DefaultIdleConnTimeout,
		}
	}

	cli := &http.Client{
		Transport: &headerTransport{credential: credential, next: base},
		Timeout:   p.timeout,
	}
	p.clients[credential] = cli
	return cli
}

// Size reports how many distinct credentials have pooled clients.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// headerTransport stamps every outgoing request with the credential's
// bearer token and the fixed Notion wire headers.
type headerTransport struct {
	credential string
	next       http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.credential)
	clone.Header.Set("Notion-Version", constants.NotionAPIVersion)
	clone.Header.Set("Content-Type", "application/json")
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "application/json")
	}
	return t.next.RoundTrip(clone)
}
