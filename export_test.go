package httpenv

// ConfigSnapshot holds a summary of descriptorConfig for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures without accessing internals.
type ConfigSnapshot struct {
	HasDeployment   bool
	DeploymentFile  string
	HasFactory      bool
	HasClientConfig bool
	Mode            SharingMode
	Observers       int
	JournalPath     string
}

// ApplyOptionsForTesting applies opts to the default config and returns a
// snapshot of the result.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultDescriptorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return ConfigSnapshot{
		HasDeployment:   cfg.Deployment != nil,
		DeploymentFile:  cfg.deploymentFile,
		HasFactory:      cfg.Factory != nil,
		HasClientConfig: cfg.ClientConfig != nil,
		Mode:            cfg.Mode,
		Observers:       len(cfg.observers),
		JournalPath:     cfg.journalPath,
	}
}

// DeploymentForTesting applies opts and resolves the configured deployment
// provider for rc.
func DeploymentForTesting(rc *RunContext, opts ...Option) (Deployment, error) {
	cfg := defaultDescriptorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.Deployment(rc)
}
