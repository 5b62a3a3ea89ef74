package netutil

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/giantswarm/httpenv/internal/logging"
)

// maxPortRetries bounds how often AllocatePort asks the kernel again after
// receiving a port that is already registered.
const maxPortRetries = 20

// PortRegistry tracks ports currently reserved by this process.
//
// The kernel may hand the same ephemeral port to a second caller as soon as
// the first caller closes its probe listener. The registry keeps the port
// reserved until the owning fixture stops and calls Release.
type PortRegistry struct {
	mu    sync.Mutex
	ports map[int]struct{}
	log   *slog.Logger
}

// NewPortRegistry creates an empty PortRegistry.
// If logger is nil, the package logger is looked up on each use.
func NewPortRegistry(logger *slog.Logger) *PortRegistry {
	return &PortRegistry{
		ports: make(map[int]struct{}),
		log:   logger,
	}
}

func (r *PortRegistry) logger() *slog.Logger {
	if r.log != nil {
		return r.log
	}
	return logging.Logger()
}

// reserve registers port. It reports false if the port is already taken.
func (r *PortRegistry) reserve(port int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ports[port]; ok {
		return false
	}
	r.ports[port] = struct{}{}
	return true
}

// Release frees port for reuse. Releasing an unknown port is a no-op.
func (r *PortRegistry) Release(port int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ports, port)
}

// Reserved reports how many ports are currently held.
func (r *PortRegistry) Reserved() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ports)
}

// AllocatePort asks the kernel for a free loopback port that is not already
// registered, registers it and returns it. The probe listener is closed
// before returning so the caller's child process can bind the port. Callers
// must Release the port once the fixture has stopped.
func (r *PortRegistry) AllocatePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("resolve tcp address: %w", err)
	}

	for range maxPortRetries {
		l, err := net.ListenTCP("tcp", addr)
		if err != nil {
			return 0, fmt.Errorf("listen on tcp address: %w", err)
		}
		tcpAddr, ok := l.Addr().(*net.TCPAddr)
		if !ok {
			_ = l.Close()
			return 0, fmt.Errorf("unexpected address type: %T", l.Addr())
		}
		port := tcpAddr.Port
		reserved := r.reserve(port)
		if closeErr := l.Close(); closeErr != nil {
			r.logger().Warn("close probe listener", "port", port, "error", closeErr)
		}
		if reserved {
			return port, nil
		}
		r.logger().Debug("port already in registry, retrying", "port", port)
	}
	return 0, fmt.Errorf("allocate unique port: exhausted %d attempts", maxPortRetries)
}
