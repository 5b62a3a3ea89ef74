package process

import (
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/giantswarm/httpenv/internal/sentinel"
)

// ErrAlreadyStarted is returned by Start on a process that is running.
const ErrAlreadyStarted = sentinel.Error("process already started")

// ErrNilCmd is returned by Start when cmd is nil.
const ErrNilCmd = sentinel.Error("cmd must not be nil")

// ErrEmptyCmdPath is returned by Start when cmd.Path is empty.
const ErrEmptyCmdPath = sentinel.Error("cmd.Path must not be empty")

// ErrEmptyDataDir is returned by Start when no data directory is given.
const ErrEmptyDataDir = sentinel.Error("data directory must not be empty")

var _ Stoppable = (*Process)(nil)

// Process manages one child process.
//
// Process is not safe for concurrent use; the owning container serializes
// Start, Stop and Close.
type Process struct {
	cmd         *exec.Cmd
	waitDone    <-chan error    // receives the single cmd.Wait result
	exited      <-chan struct{} // closed when the child exits
	logFiles    LogFiles
	name        string
	log         *slog.Logger
	stopTimeout time.Duration // used by Close when Stop was skipped
}

// New returns an unstarted Process. A zero stopTimeout falls back to
// DefaultStopTimeout. Panics if name is empty.
func New(name string, logger *slog.Logger, stopTimeout time.Duration) *Process {
	if name == "" {
		panic("httpenv: process name must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Process{name: name, log: logger, stopTimeout: stopTimeout}
}

// Name returns the process name used for log files and messages.
func (p *Process) Name() string {
	return p.name
}

// IsStarted reports whether the process has been started and not yet stopped.
func (p *Process) IsStarted() bool {
	return p.cmd != nil
}

// Exited returns a channel closed when the child exits, or nil if the
// process is not running.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Logs returns the stdout/stderr log files of the current or last run.
func (p *Process) Logs() LogFiles {
	return p.logFiles
}

// Start runs cmd in dataDir with stdout and stderr redirected to log files.
// The cmd must have Path and Args set.
func (p *Process) Start(cmd *exec.Cmd, dataDir string) error {
	switch {
	case cmd == nil:
		return ErrNilCmd
	case cmd.Path == "":
		return ErrEmptyCmdPath
	case dataDir == "":
		return ErrEmptyDataDir
	case p.cmd != nil:
		return ErrAlreadyStarted
	}

	cmd.Dir = dataDir
	configureSysProcAttr(cmd)
	logFiles, err := startCmd(cmd, dataDir, p.name)
	if err != nil {
		return fmt.Errorf("start command: %w", err)
	}
	p.cmd = cmd
	p.logFiles = logFiles

	// Exactly one Wait per child. done carries the result to Stop; exited
	// is a broadcast for readiness polling.
	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		done <- cmd.Wait()
		close(exited)
	}()
	p.waitDone = done
	p.exited = exited
	return nil
}

// Stop terminates the child within timeout. Afterwards IsStarted reports
// false whether or not the stop succeeded. Stopping a process that never
// started returns nil.
func (p *Process) Stop(timeout time.Duration) error {
	if p.cmd == nil || p.cmd.Process == nil {
		p.reset()
		return nil
	}
	pid := p.cmd.Process.Pid
	err := stopWithDone(p.cmd, p.waitDone, timeout, p.name)
	if err != nil {
		p.log.Warn("process stop failed; child may be orphaned",
			"process", p.name, "pid", pid, "error", err)
	}
	p.reset()
	return err
}

func (p *Process) reset() {
	p.cmd = nil
	p.waitDone = nil
	p.exited = nil
}

// Close closes the log files. A still-running child is stopped first with
// the timeout given to New.
func (p *Process) Close() {
	if p.cmd != nil {
		p.log.Warn("process closed without Stop; stopping", "process", p.name)
		if err := p.Stop(p.stopTimeout); err != nil {
			p.log.Warn("stop during close failed", "process", p.name, "error", err)
		}
	}
	p.logFiles.Close()
}
