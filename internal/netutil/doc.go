// Package netutil allocates loopback ports for fixtures that run as child
// processes. PortRegistry remembers every port it handed out until it is
// released, closing the window in which two concurrent callers could be
// given the same ephemeral port by the kernel.
package netutil
