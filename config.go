package httpenv

import "github.com/giantswarm/httpenv/internal/core"

// descriptorConfig holds configuration for an Extension. It wraps
// core.DescriptorConfig via embedding, keeping internal/core types out of
// the public API signature.
type descriptorConfig struct {
	core.DescriptorConfig

	// deploymentFile is loaded by New; it replaces Deployment when set.
	deploymentFile string

	observers   []Observer
	journalPath string
}

// defaultDescriptorConfig returns a descriptorConfig populated with the
// default values.
func defaultDescriptorConfig() descriptorConfig {
	return descriptorConfig{DescriptorConfig: core.DescriptorConfig{
		Mode: DefaultSharingMode,
	}}
}
