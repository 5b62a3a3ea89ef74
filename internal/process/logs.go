package process

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// LogFiles holds the stdout/stderr files of a child process.
type LogFiles struct {
	stdout  *os.File
	stderr  *os.File
	dataDir string
	name    string
}

// NewLogFiles creates <name>-stdout.log and <name>-stderr.log in dataDir.
func NewLogFiles(dataDir, name string) (LogFiles, error) {
	l := LogFiles{dataDir: dataDir, name: name}
	stdout, err := os.Create(l.StdoutPath())
	if err != nil {
		return LogFiles{}, fmt.Errorf("create stdout log: %w", err)
	}
	stderr, err := os.Create(l.StderrPath())
	if err != nil {
		_ = stdout.Close()
		return LogFiles{}, fmt.Errorf("create stderr log: %w", err)
	}
	l.stdout = stdout
	l.stderr = stderr
	return l, nil
}

// StdoutPath returns the path of the stdout log.
func (l LogFiles) StdoutPath() string {
	return filepath.Join(l.dataDir, l.name+"-stdout.log")
}

// StderrPath returns the path of the stderr log.
func (l LogFiles) StderrPath() string {
	return filepath.Join(l.dataDir, l.name+"-stderr.log")
}

// Close closes both files. Safe to call more than once.
func (l *LogFiles) Close() {
	if l.stdout != nil {
		_ = l.stdout.Close()
		l.stdout = nil
	}
	if l.stderr != nil {
		_ = l.stderr.Close()
		l.stderr = nil
	}
}

// startCmd wires cmd's output to fresh log files and starts it. On failure
// the log files are closed.
func startCmd(cmd *exec.Cmd, dataDir, name string) (LogFiles, error) {
	logs, err := NewLogFiles(dataDir, name)
	if err != nil {
		return LogFiles{}, fmt.Errorf("create %s logs: %w", name, err)
	}
	cmd.Stdout = logs.stdout
	cmd.Stderr = logs.stderr
	if err := cmd.Start(); err != nil {
		logs.Close()
		return LogFiles{}, fmt.Errorf("start %s process: %w", name, err)
	}
	return logs, nil
}
