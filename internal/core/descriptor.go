package core

import (
	"errors"
	"fmt"

	"github.com/giantswarm/httpenv/internal/platform"
)

// SharingMode controls how many fixtures a suite gets.
type SharingMode int

const (
	// PerCase starts a fresh fixture for every case and stops it when the
	// case ends. This is the default.
	PerCase SharingMode = iota

	// Shared starts one fixture at SuiteStart, hands it to every case of
	// the suite and stops it at SuiteEnd. Cases may run concurrently
	// against it.
	Shared
)

// IsValid reports whether m is a recognized SharingMode value.
func (m SharingMode) IsValid() bool {
	switch m {
	case PerCase, Shared:
		return true
	default:
		return false
	}
}

// String returns the name of the mode.
func (m SharingMode) String() string {
	switch m {
	case PerCase:
		return "PerCase"
	case Shared:
		return "Shared"
	default:
		return fmt.Sprintf("SharingMode(%d)", int(m))
	}
}

// DeploymentProvider returns the deployment to serve for a scope.
type DeploymentProvider func(*Scope) (platform.Deployment, error)

// FactoryProvider returns the container factory to use for a scope.
type FactoryProvider func(*Scope) platform.Factory

// ClientCustomizer adjusts the client configuration of a fixture in place
// before its client is built.
type ClientCustomizer func(*Scope, *platform.ClientConfig)

// DescriptorConfig holds the inputs of a Descriptor. Only Deployment is
// required.
type DescriptorConfig struct {
	Deployment DeploymentProvider

	// Factory defaults to platform.DefaultFactory.
	Factory FactoryProvider

	ClientConfig ClientCustomizer

	// Mode defaults to PerCase.
	Mode SharingMode

	// Observer, if set, is notified of lifecycle events synchronously.
	Observer Observer
}

// Validate reports every missing or invalid field. Each error matches
// ErrConfiguration.
func (c DescriptorConfig) Validate() error {
	var errs []error

	if c.Deployment == nil {
		errs = append(errs, fmt.Errorf("%w: a deployment is required", ErrConfiguration))
	}
	if !c.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("%w: invalid sharing mode %v", ErrConfiguration, c.Mode))
	}

	return errors.Join(errs...)
}

// Descriptor is the validated, immutable description of a fixture.
// The zero value is unusable; create one with NewDescriptor.
type Descriptor struct {
	cfg   DescriptorConfig
	built bool
}

// NewDescriptor validates cfg and returns a Descriptor. It fails with
// ErrConfiguration before anything is started.
func NewDescriptor(cfg DescriptorConfig) (*Descriptor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Descriptor{cfg: cfg, built: true}, nil
}

// Mode returns the sharing mode.
func (d *Descriptor) Mode() SharingMode {
	return d.cfg.Mode
}

func (d *Descriptor) check() error {
	if d == nil || !d.built {
		return ErrNotBuilt
	}
	return nil
}

// factory resolves the container factory for s.
func (d *Descriptor) factory(s *Scope) (platform.Factory, error) {
	if d.cfg.Factory == nil {
		return platform.DefaultFactory(), nil
	}
	f := d.cfg.Factory(s)
	if f == nil {
		return nil, errors.New("container factory provider returned nil")
	}
	return f, nil
}
