package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/giantswarm/httpenv/internal/platform"
)

// Fixture is one running container plus the handles derived from it. The
// handles are built once at start, so every case sharing a Fixture gets the
// same pointers. A Fixture is owned by the store entry holding it.
type Fixture struct {
	id        string
	container platform.Container
	client    *http.Client
	target    *platform.Target
	address   *url.URL
	log       *slog.Logger

	stopOnce sync.Once
	stopErr  error
}

// ID returns the unique fixture identifier.
func (f *Fixture) ID() string { return f.id }

// Client returns the fixture's HTTP client.
func (f *Fixture) Client() *http.Client { return f.client }

// Target returns the base-address handle.
func (f *Fixture) Target() *platform.Target { return f.target }

// Address returns the raw base address. Callers must not modify it.
func (f *Fixture) Address() *url.URL { return f.address }

// Stop stops the container. Only the first call does any work; later calls
// return the first result.
func (f *Fixture) Stop(ctx context.Context) error {
	f.stopOnce.Do(func() {
		f.stopErr = f.container.Stop(ctx)
		if f.stopErr != nil {
			f.log.Warn("fixture stop failed", "error", f.stopErr)
			return
		}
		f.log.Debug("fixture stopped")
	})
	return f.stopErr
}

// startFixture builds and starts a fixture for s: factory, deployment,
// container, client config customization, start, then handles.
func startFixture(ctx context.Context, d *Descriptor, s *Scope, log *slog.Logger) (*Fixture, error) {
	factory, err := d.factory(s)
	if err != nil {
		return nil, err
	}

	dep, err := d.cfg.Deployment(s)
	if err != nil {
		return nil, fmt.Errorf("resolve deployment: %w", err)
	}

	container, err := factory.NewContainer(dep)
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	cc := container.ClientConfig()
	if cc == nil {
		cc = platform.NewClientConfig()
	}
	if d.cfg.ClientConfig != nil {
		d.cfg.ClientConfig(s, cc)
	}

	id := uuid.NewString()
	log = log.With("fixture", id, "deployment", dep.DisplayName(), "scope", s.String())
	log.Debug("starting fixture", "mode", d.cfg.Mode)

	if err := container.Start(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("start container: %w", err), stopQuietly(ctx, container))
	}

	base := container.BaseURL()
	if base == nil {
		return nil, errors.Join(errors.New("container reported no base URL after start"), stopQuietly(ctx, container))
	}

	client := cc.NewClient()
	target := platform.NewTarget(client, base)
	f := &Fixture{
		id:        id,
		container: container,
		client:    client,
		target:    target,
		address:   target.URL(),
		log:       log,
	}
	log.Debug("fixture started", "address", f.address.String())
	return f, nil
}

// stopQuietly stops a container whose start failed. Only a failing Stop is
// reported.
func stopQuietly(ctx context.Context, c platform.Container) error {
	if err := c.Stop(ctx); err != nil {
		return fmt.Errorf("stop after failed start: %w", err)
	}
	return nil
}
