package platform

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PortPlaceholder is replaced by the allocated port in Deployment.Args.
const PortPlaceholder = "{{port}}"

// PortEnv is the environment variable carrying the allocated port to a
// child process.
const PortEnv = "PORT"

// Deployment describes the application a fixture serves. Exactly one of
// Handler and Command must be set.
type Deployment struct {
	// Name identifies the deployment in logs. Optional.
	Name string

	// Handler is served in-process.
	Handler http.Handler

	// Command, Args and Env describe a child process. The process must
	// listen on 127.0.0.1 at the port given in $PORT or substituted for
	// PortPlaceholder in Args.
	Command string
	Args    []string
	Env     []string

	// BasePath is appended to the server address to form the base URL,
	// e.g. "/api". Must start with "/" when set.
	BasePath string

	// ReadinessPath is polled until the child answers with a status below
	// 500. Defaults to BasePath, or "/". Ignored for in-process handlers.
	ReadinessPath string
}

// Validate reports every problem with d.
func (d Deployment) Validate() error {
	var errs []error

	switch {
	case d.Handler == nil && d.Command == "":
		errs = append(errs, errors.New("deployment needs a handler or a command"))
	case d.Handler != nil && d.Command != "":
		errs = append(errs, errors.New("deployment must not set both a handler and a command"))
	}
	if d.BasePath != "" && !strings.HasPrefix(d.BasePath, "/") {
		errs = append(errs, fmt.Errorf("base path must start with '/', got %q", d.BasePath))
	}
	if d.ReadinessPath != "" && !strings.HasPrefix(d.ReadinessPath, "/") {
		errs = append(errs, fmt.Errorf("readiness path must start with '/', got %q", d.ReadinessPath))
	}
	for _, kv := range d.Env {
		if !strings.Contains(kv, "=") {
			errs = append(errs, fmt.Errorf("env entry %q is not KEY=VALUE", kv))
		}
	}

	return errors.Join(errs...)
}

// DisplayName returns Name, or a name derived from Command.
func (d Deployment) DisplayName() string {
	switch {
	case d.Name != "":
		return d.Name
	case d.Command != "":
		return filepath.Base(d.Command)
	default:
		return "handler"
	}
}

func (d Deployment) readinessPath() string {
	switch {
	case d.ReadinessPath != "":
		return d.ReadinessPath
	case d.BasePath != "":
		return d.BasePath
	default:
		return "/"
	}
}

// deploymentFile is the YAML form of a process deployment.
type deploymentFile struct {
	Name          string            `yaml:"name"`
	Command       string            `yaml:"command"`
	Args          []string          `yaml:"args"`
	Env           map[string]string `yaml:"env"`
	BasePath      string            `yaml:"basePath"`
	ReadinessPath string            `yaml:"readinessPath"`
}

// LoadDeployment reads a process deployment from a YAML file:
//
//	name: echo
//	command: ./bin/echo-server
//	args: ["--listen", "127.0.0.1:{{port}}"]
//	env:
//	  LOG_LEVEL: debug
//	basePath: /api
//	readinessPath: /healthz
//
// A relative command containing a path separator is resolved against the
// file's directory. Unknown keys are rejected.
func LoadDeployment(path string) (Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deployment{}, fmt.Errorf("read deployment file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f deploymentFile
	if err := dec.Decode(&f); err != nil {
		return Deployment{}, fmt.Errorf("parse deployment file %s: %w", path, err)
	}

	cmd := f.Command
	if cmd != "" && !filepath.IsAbs(cmd) && strings.ContainsRune(cmd, filepath.Separator) {
		cmd = filepath.Join(filepath.Dir(path), cmd)
	}

	keys := make([]string, 0, len(f.Env))
	for k := range f.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+f.Env[k])
	}

	d := Deployment{
		Name:          f.Name,
		Command:       cmd,
		Args:          f.Args,
		Env:           env,
		BasePath:      f.BasePath,
		ReadinessPath: f.ReadinessPath,
	}
	if d.Command == "" {
		return Deployment{}, fmt.Errorf("deployment file %s: %w", path, ErrCommandRequired)
	}
	if err := d.Validate(); err != nil {
		return Deployment{}, fmt.Errorf("deployment file %s: %w", path, err)
	}
	return d, nil
}
