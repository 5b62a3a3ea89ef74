package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Target is an immutable handle on a base address plus the client used to
// reach it. Path and Query return derived targets; the receiver is never
// modified, so one Target can be shared by concurrent test cases.
type Target struct {
	client *http.Client
	base   *url.URL
}

// NewTarget returns a Target for base using client.
func NewTarget(client *http.Client, base *url.URL) *Target {
	if client == nil {
		client = http.DefaultClient
	}
	u := *base
	return &Target{client: client, base: &u}
}

// Client returns the client requests are sent with.
func (t *Target) Client() *http.Client {
	return t.client
}

// URL returns a copy of the target address.
func (t *Target) URL() *url.URL {
	u := *t.base
	return &u
}

// String returns the target address.
func (t *Target) String() string {
	return t.base.String()
}

// Path returns a target with elem joined onto the path.
func (t *Target) Path(elem ...string) *Target {
	return &Target{client: t.client, base: joinPath(t.base, elem...)}
}

// joinPath is url.URL.JoinPath with a rooted result: joining onto a URL
// with an empty path yields "/api", not "api".
func joinPath(u *url.URL, elem ...string) *url.URL {
	j := u.JoinPath(elem...)
	if j.Path != "" && !strings.HasPrefix(j.Path, "/") {
		j.Path = "/" + j.Path
		if j.RawPath != "" {
			j.RawPath = "/" + j.RawPath
		}
	}
	return j
}

// Query returns a target with key=value added to the query string.
func (t *Target) Query(key, value string) *Target {
	u := *t.base
	q := u.Query()
	q.Add(key, value)
	u.RawQuery = q.Encode()
	return &Target{client: t.client, base: &u}
}

// NewRequest builds a request against the target address.
func (t *Target) NewRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.base.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request for %s: %w", method, t.base, err)
	}
	return req, nil
}

// Do sends a method request with body to the target address.
func (t *Target) Do(ctx context.Context, method string, body io.Reader) (*http.Response, error) {
	req, err := t.NewRequest(ctx, method, body)
	if err != nil {
		return nil, err
	}
	return t.client.Do(req)
}

// Get sends a GET request to the target address.
func (t *Target) Get(ctx context.Context) (*http.Response, error) {
	return t.Do(ctx, http.MethodGet, nil)
}
