package platform

import "github.com/giantswarm/httpenv/internal/sentinel"

// ErrHandlerRequired is returned by InProcessFactory for a deployment
// without a Handler.
const ErrHandlerRequired = sentinel.Error("in-process container requires a handler")

// ErrCommandRequired is returned by ProcessFactory for a deployment without
// a Command.
const ErrCommandRequired = sentinel.Error("process container requires a command")

// ErrAlreadyStarted is returned by Container.Start on a running container.
const ErrAlreadyStarted = sentinel.Error("container already started")

// ErrNotStarted is returned by requests sent through a container's client
// transport before the container has started.
const ErrNotStarted = sentinel.Error("container not started")
