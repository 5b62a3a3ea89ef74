package platform

import (
	"net/http"
	"time"
)

// ClientConfig is the mutable configuration a fixture's client is built
// from. Containers supply a base config; the fixture's customizer may
// change it before the client is constructed.
type ClientConfig struct {
	// Timeout is the overall request timeout. Zero means none.
	Timeout time.Duration

	// Transport sends requests. Nil means http.DefaultTransport.
	Transport http.RoundTripper

	// Header is added to every request that does not already set the key.
	Header http.Header

	// Jar stores cookies across requests. Nil disables cookies.
	Jar http.CookieJar

	// DisableRedirects makes the client return 3xx responses instead of
	// following them.
	DisableRedirects bool
}

// NewClientConfig returns an empty config with a non-nil Header.
func NewClientConfig() *ClientConfig {
	return &ClientConfig{Header: make(http.Header)}
}

// Clone returns a copy that shares Transport and Jar but not Header.
func (c *ClientConfig) Clone() *ClientConfig {
	out := *c
	out.Header = c.Header.Clone()
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	return &out
}

// NewClient builds an *http.Client from c. The client is safe for
// concurrent use.
func (c *ClientConfig) NewClient() *http.Client {
	transport := c.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if len(c.Header) > 0 {
		transport = &headerTransport{base: transport, header: c.Header.Clone()}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   c.Timeout,
		Jar:       c.Jar,
	}
	if c.DisableRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// headerTransport adds default headers to outgoing requests.
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	for k, vs := range t.header {
		if _, ok := out.Header[k]; ok {
			continue
		}
		out.Header[k] = append([]string(nil), vs...)
	}
	return t.base.RoundTrip(out)
}
