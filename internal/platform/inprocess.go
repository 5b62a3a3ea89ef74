package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// InProcessFactory serves a deployment's Handler from an httptest.Server in
// the test binary. This is the default factory.
type InProcessFactory struct {
	// TLS serves HTTPS with httptest's self-signed certificate. Clients
	// built from the container's ClientConfig trust it.
	TLS bool
}

// NewContainer implements Factory.
func (f InProcessFactory) NewContainer(d Deployment) (Container, error) {
	if d.Handler == nil {
		return nil, ErrHandlerRequired
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment %s: %w", d.DisplayName(), err)
	}
	return &inProcessContainer{dep: d, tls: f.TLS}, nil
}

type inProcessContainer struct {
	dep Deployment
	tls bool

	mu   sync.RWMutex
	srv  *httptest.Server
	base *url.URL
}

func (c *inProcessContainer) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.srv != nil {
		return ErrAlreadyStarted
	}

	srv := httptest.NewUnstartedServer(c.dep.Handler)
	if c.tls {
		srv.StartTLS()
	} else {
		srv.Start()
	}

	u, err := url.Parse(srv.URL)
	if err != nil {
		srv.Close()
		return fmt.Errorf("parse server url %q: %w", srv.URL, err)
	}
	if c.dep.BasePath != "" {
		u = joinPath(u, c.dep.BasePath)
	}

	c.srv = srv
	c.base = u
	return nil
}

func (c *inProcessContainer) Stop(_ context.Context) error {
	c.mu.Lock()
	srv := c.srv
	c.srv = nil
	c.base = nil
	c.mu.Unlock()

	if srv != nil {
		srv.Close()
	}
	return nil
}

func (c *inProcessContainer) BaseURL() *url.URL {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.base == nil {
		return nil
	}
	u := *c.base
	return &u
}

// ClientConfig routes requests through the server's own client transport,
// which trusts the TLS test certificate and has its idle connections closed
// together with the server.
func (c *inProcessContainer) ClientConfig() *ClientConfig {
	cfg := NewClientConfig()
	cfg.Transport = serverTransport{c: c}
	return cfg
}

// serverTransport resolves the httptest client transport per request, since
// the server only creates it on Start.
type serverTransport struct {
	c *inProcessContainer
}

func (t serverTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.c.mu.RLock()
	srv := t.c.srv
	t.c.mu.RUnlock()

	if srv == nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, ErrNotStarted
	}
	return srv.Client().Transport.RoundTrip(req)
}
