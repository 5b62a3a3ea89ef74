// Package process runs fixture servers as child processes.
//
// Process wraps an *exec.Cmd with log files, a single Wait goroutine and a
// SIGTERM-then-SIGKILL stop sequence. WaitReady polls a readiness check until
// the child answers, aborting early if the child exits. StopCloseAndNil
// tears a Stoppable down and clears the caller's reference in one step.
package process
