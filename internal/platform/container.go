package platform

import (
	"context"
	"net/url"
)

// Container is one hosted server.
//
// Containers must tolerate concurrent requests from many test cases once
// started. Start and Stop are called by a single goroutine.
type Container interface {
	// Start blocks until the server accepts requests.
	Start(ctx context.Context) error

	// Stop shuts the server down. Calling Stop on a stopped or never
	// started container returns nil.
	Stop(ctx context.Context) error

	// BaseURL returns the server address including the deployment's base
	// path. Only meaningful after Start.
	BaseURL() *url.URL

	// ClientConfig returns a fresh base client configuration suitable for
	// this container. It may be called before Start.
	ClientConfig() *ClientConfig
}

// Factory creates containers for deployments.
type Factory interface {
	NewContainer(d Deployment) (Container, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(d Deployment) (Container, error)

// NewContainer calls f(d).
func (f FactoryFunc) NewContainer(d Deployment) (Container, error) {
	return f(d)
}
