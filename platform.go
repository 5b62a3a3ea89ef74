package httpenv

import (
	"net/http"
	"net/url"

	"github.com/giantswarm/httpenv/internal/platform"
)

// Deployment describes the application a fixture serves: an in-process
// Handler or an external Command.
type Deployment = platform.Deployment

// ClientConfig configures the client a fixture hands to its cases.
type ClientConfig = platform.ClientConfig

// Target is the immutable base-address handle of a fixture.
type Target = platform.Target

// Container is one hosted fixture server.
type Container = platform.Container

// ContainerFactory creates containers for deployments.
type ContainerFactory = platform.Factory

// ContainerFactoryFunc adapts a function to ContainerFactory.
type ContainerFactoryFunc = platform.FactoryFunc

// InProcessFactory serves a Deployment's Handler from an httptest.Server.
type InProcessFactory = platform.InProcessFactory

// ProcessFactory runs a Deployment's Command as a child process.
type ProcessFactory = platform.ProcessFactory

// ProcessConfig configures a ProcessFactory.
type ProcessConfig = platform.ProcessConfig

// PortPlaceholder is replaced by the allocated port in Deployment.Args of
// a process deployment. The port is also passed in $PORT.
const PortPlaceholder = platform.PortPlaceholder

// ContainerFactoryEnv names the environment variable read by
// DefaultContainerFactory.
const ContainerFactoryEnv = platform.FactoryEnv

// NewProcessFactory returns a ProcessFactory. Panics if cfg is invalid.
func NewProcessFactory(cfg ProcessConfig) *ProcessFactory {
	return platform.NewProcessFactory(cfg)
}

// DefaultProcessConfig returns the default ProcessFactory configuration.
func DefaultProcessConfig() ProcessConfig {
	return platform.DefaultProcessConfig()
}

// DefaultContainerFactory returns the factory selected by
// ContainerFactoryEnv. It is used when no factory option is given.
//
//nolint:ireturn // The factory kind depends on the environment.
func DefaultContainerFactory() ContainerFactory {
	return platform.DefaultFactory()
}

// LoadDeployment reads a process deployment from a YAML file.
func LoadDeployment(path string) (Deployment, error) {
	return platform.LoadDeployment(path)
}

// NewClientConfig returns an empty ClientConfig.
func NewClientConfig() *ClientConfig {
	return platform.NewClientConfig()
}

// NewTarget returns a Target for base using client.
func NewTarget(client *http.Client, base *url.URL) *Target {
	return platform.NewTarget(client, base)
}
