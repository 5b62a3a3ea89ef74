// Package fileutil provides directory helpers for fixture data directories.
//
// EnsureDir creates directories recursively. LockDir takes a cross-process
// lock on a data directory for as long as a fixture owns it, and PurgeStale
// removes directories left behind by test binaries that exited without
// releasing theirs.
package fileutil
