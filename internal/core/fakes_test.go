package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"testing"

	"github.com/giantswarm/httpenv/internal/logging"
	"github.com/giantswarm/httpenv/internal/platform"
)

// fakeFactory records container starts and stops and tracks how many
// containers are live at once.
type fakeFactory struct {
	mu      sync.Mutex
	seq     int
	live    int
	maxLive int
	events  []string

	newErr   error
	startErr error
	stopErr  error
	noURL    bool
}

func (f *fakeFactory) NewContainer(d platform.Deployment) (platform.Container, error) {
	if f.newErr != nil {
		return nil, f.newErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return &fakeContainer{f: f, n: f.seq, dep: d}, nil
}

func (f *fakeFactory) record(ev string, delta int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	f.live += delta
	f.maxLive = max(f.maxLive, f.live)
}

func (f *fakeFactory) snapshot() (events []string, live, maxLive int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...), f.live, f.maxLive
}

type fakeContainer struct {
	f       *fakeFactory
	n       int
	dep     platform.Deployment
	started bool
}

func (c *fakeContainer) Start(context.Context) error {
	if c.f.startErr != nil {
		return c.f.startErr
	}
	c.started = true
	c.f.record(fmt.Sprintf("start %d", c.n), 1)
	return nil
}

func (c *fakeContainer) Stop(context.Context) error {
	if !c.started {
		return nil
	}
	c.started = false
	c.f.record(fmt.Sprintf("stop %d", c.n), -1)
	return c.f.stopErr
}

func (c *fakeContainer) BaseURL() *url.URL {
	if c.f.noURL {
		return nil
	}
	return &url.URL{Scheme: "http", Host: fmt.Sprintf("fixture-%d.test", c.n), Path: c.dep.BasePath}
}

func (c *fakeContainer) ClientConfig() *platform.ClientConfig {
	return platform.NewClientConfig()
}

func fakeDeployment(*Scope) (platform.Deployment, error) {
	return platform.Deployment{Name: "fake", Command: "fake"}, nil
}

func newTestOrchestrator(t *testing.T, mode SharingMode, f *fakeFactory, opts ...func(*DescriptorConfig)) *Orchestrator {
	t.Helper()
	cfg := DescriptorConfig{
		Deployment: fakeDeployment,
		Factory:    func(*Scope) platform.Factory { return f },
		Mode:       mode,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	d, err := NewDescriptor(cfg)
	if err != nil {
		t.Fatalf("NewDescriptor() error = %v", err)
	}
	o, err := NewOrchestrator(d)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}
	return o
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// captureLogs installs a debug-level package logger writing to the returned
// buffer until the test ends. Tests using it must not run in parallel.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { logging.SetLogger(nil) })
	return &buf
}
