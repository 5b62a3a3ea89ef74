package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alessio/shellescape"
	"github.com/google/uuid"

	"github.com/giantswarm/httpenv/internal/fileutil"
	"github.com/giantswarm/httpenv/internal/logging"
	"github.com/giantswarm/httpenv/internal/netutil"
	"github.com/giantswarm/httpenv/internal/process"
)

// Defaults for ProcessConfig.
const (
	DefaultProcessStartTimeout      = 30 * time.Second
	DefaultProcessStopTimeout       = 10 * time.Second
	DefaultProcessReadinessInterval = 50 * time.Millisecond
	DefaultProcessDataDirName       = "httpenv"
)

// readinessRequestTimeout bounds a single readiness probe.
const readinessRequestTimeout = 2 * time.Second

// ProcessConfig configures a ProcessFactory.
type ProcessConfig struct {
	// BaseDataDir holds one working directory per container, containing
	// the child's stdout/stderr logs.
	BaseDataDir string

	// StartTimeout bounds the wait for the child to answer HTTP.
	StartTimeout time.Duration

	// StopTimeout bounds the SIGTERM/SIGKILL stop sequence.
	StopTimeout time.Duration

	// ReadinessInterval is the delay between readiness probes.
	ReadinessInterval time.Duration

	// KeepData leaves container directories in place after Stop.
	KeepData bool

	// Logger defaults to the package logger, resolved at each use.
	Logger *slog.Logger
}

// DefaultProcessConfig returns a config with all defaults filled in.
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		BaseDataDir:       filepath.Join(os.TempDir(), DefaultProcessDataDirName),
		StartTimeout:      DefaultProcessStartTimeout,
		StopTimeout:       DefaultProcessStopTimeout,
		ReadinessInterval: DefaultProcessReadinessInterval,
	}
}

// Validate reports every invalid field.
func (c ProcessConfig) Validate() error {
	var errs []error
	if c.BaseDataDir == "" {
		errs = append(errs, errors.New("base data directory must not be empty"))
	}
	if c.StartTimeout <= 0 {
		errs = append(errs, fmt.Errorf("start timeout must be greater than 0, got %s", c.StartTimeout))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop timeout must be greater than 0, got %s", c.StopTimeout))
	}
	if c.ReadinessInterval <= 0 {
		errs = append(errs, fmt.Errorf("readiness interval must be greater than 0, got %s", c.ReadinessInterval))
	}
	return errors.Join(errs...)
}

// ProcessFactory runs a deployment's Command as a child process.
// It is safe for concurrent use.
type ProcessFactory struct {
	cfg       ProcessConfig
	ports     *netutil.PortRegistry
	purgeOnce sync.Once
}

// NewProcessFactory returns a factory for cfg. Panics if cfg is invalid,
// since configuration is fixed at compile time in test code.
func NewProcessFactory(cfg ProcessConfig) *ProcessFactory {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("httpenv: invalid process config: %v", err))
	}
	return &ProcessFactory{
		cfg:   cfg,
		ports: netutil.NewPortRegistry(cfg.Logger),
	}
}

func (f *ProcessFactory) logger() *slog.Logger {
	if f.cfg.Logger != nil {
		return f.cfg.Logger
	}
	return logging.Logger()
}

// NewContainer implements Factory. The first call removes data directories
// left behind by earlier test binaries that did not shut down cleanly.
func (f *ProcessFactory) NewContainer(d Deployment) (Container, error) {
	if d.Command == "" {
		return nil, ErrCommandRequired
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment %s: %w", d.DisplayName(), err)
	}

	log := f.logger()
	f.purgeOnce.Do(func() {
		n, err := fileutil.PurgeStale(f.cfg.BaseDataDir, log)
		if err != nil {
			log.Warn("purge stale data directories", "dir", f.cfg.BaseDataDir, "error", err)
		}
		if n > 0 {
			log.Debug("purged stale data directories", "count", n)
		}
	})

	id := uuid.NewString()
	return &processContainer{
		f:   f,
		dep: d,
		id:  id,
		log: log.With("deployment", d.DisplayName(), "container", id),
	}, nil
}

type processContainer struct {
	f   *ProcessFactory
	dep Deployment
	id  string
	log *slog.Logger

	mu   sync.RWMutex
	proc *process.Process
	lock *fileutil.DirLock
	port int
	base *url.URL
}

func (c *processContainer) Start(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc != nil {
		return ErrAlreadyStarted
	}

	port, err := c.f.ports.AllocatePort()
	if err != nil {
		return fmt.Errorf("allocate port: %w", err)
	}
	defer func() {
		if err != nil {
			c.f.ports.Release(port)
		}
	}()

	lock, err := fileutil.LockDir(ctx, filepath.Join(c.f.cfg.BaseDataDir, c.id))
	if err != nil {
		return fmt.Errorf("prepare data dir: %w", err)
	}
	defer func() {
		if err != nil {
			// Logs of a failed start stay until the next purge.
			if relErr := lock.Release(false, c.log); relErr != nil {
				c.log.Warn("release data dir after failed start", "error", relErr)
			}
		}
	}()

	bin, err := exec.LookPath(c.dep.Command)
	if err != nil {
		return fmt.Errorf("look up %s: %w", c.dep.Command, err)
	}
	// The child runs in its data dir.
	if bin, err = filepath.Abs(bin); err != nil {
		return fmt.Errorf("resolve %s: %w", c.dep.Command, err)
	}
	args := expandPort(c.dep.Args, port)

	cmd := exec.Command(bin, args...)
	cmd.Env = append(append(os.Environ(), c.dep.Env...), PortEnv+"="+strconv.Itoa(port))

	c.log.Debug("starting process", "command", quoteCommand(bin, args), "port", port, "dir", lock.Dir())

	proc := process.New(processName(c.dep), c.log, c.f.cfg.StopTimeout)
	if err := proc.Start(cmd, lock.Dir()); err != nil {
		return err
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	probe := &http.Client{Timeout: readinessRequestTimeout}
	readyURL := "http://" + addr + c.dep.readinessPath()
	if err := process.WaitReady(ctx, process.WaitReadyConfig{
		Interval:      c.f.cfg.ReadinessInterval,
		Timeout:       c.f.cfg.StartTimeout,
		Name:          c.dep.DisplayName(),
		Target:        readyURL,
		Logger:        c.log,
		ProcessExited: proc.Exited(),
	}, process.HTTPCheck(probe, readyURL)); err != nil {
		stderr := proc.Logs().StderrPath()
		if stopErr := process.StopCloseAndNil(&proc, c.f.cfg.StopTimeout); stopErr != nil {
			c.log.Warn("stop process after failed readiness wait", "error", stopErr)
		}
		return fmt.Errorf("%w (stderr: %s)", err, stderr)
	}

	base := &url.URL{Scheme: "http", Host: addr}
	if c.dep.BasePath != "" {
		base = joinPath(base, c.dep.BasePath)
	}

	c.proc = proc
	c.lock = lock
	c.port = port
	c.base = base
	return nil
}

func (c *processContainer) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc == nil {
		return nil
	}

	timeout := c.f.cfg.StopTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	var errs []error
	if err := process.StopCloseAndNil(&c.proc, timeout); err != nil {
		errs = append(errs, fmt.Errorf("stop process: %w", err))
	}
	// Keep the logs of a process that did not stop cleanly.
	remove := !c.f.cfg.KeepData && len(errs) == 0
	if err := c.lock.Release(remove, c.log); err != nil {
		errs = append(errs, fmt.Errorf("release data dir: %w", err))
	}
	c.f.ports.Release(c.port)

	c.lock = nil
	c.port = 0
	c.base = nil
	return errors.Join(errs...)
}

func (c *processContainer) BaseURL() *url.URL {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.base == nil {
		return nil
	}
	u := *c.base
	return &u
}

func (c *processContainer) ClientConfig() *ClientConfig {
	return NewClientConfig()
}

// expandPort replaces PortPlaceholder in args.
func expandPort(args []string, port int) []string {
	p := strconv.Itoa(port)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, PortPlaceholder, p)
	}
	return out
}

// processName derives a file-name-safe process name for log files.
func processName(d Deployment) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, d.DisplayName())
	if name == "" || name == "." || name == ".." {
		return "fixture"
	}
	return name
}

// quoteCommand renders a command line for logs.
func quoteCommand(bin string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellescape.Quote(bin))
	for _, a := range args {
		parts = append(parts, shellescape.Quote(a))
	}
	return strings.Join(parts, " ")
}
