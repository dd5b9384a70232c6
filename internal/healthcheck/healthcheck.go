// Package healthcheck inspects the configuration environment: which
// config files exist, whether they parse and validate, and which
// environment overrides are active.
package healthcheck

import (
	"fmt"
	"os"

	"github.com/qzx-dev/go-qzx/internal/config"
)

// FileStatus reports the state of a single config file.
type FileStatus struct {
	Path   string
	Scope  string // "global" or "project"
	Status string // "ok", "missing", "error"
	Error  string
}

// EnvOverride reports an active environment variable override.
type EnvOverride struct {
	Name  string
	Value string
}

// Result is the full health check output.
type Result struct {
	Global    FileStatus
	Project   FileStatus
	Overrides []EnvOverride
	Effective *config.Config // merged config, nil when loading fails
	LoadError string
}

// envVars are the recognized configuration overrides.
var envVars = []string{
	"QZX_DEFAULT_DIMENSION",
	"QZX_MAX_ITERATIONS",
	"QZX_OUTPUT_FORMAT",
	"QZX_WORKERS",
	"QZX_VERBOSE",
}

// Check inspects both config files and the environment and loads the
// effective merged configuration.
func Check() *Result {
	res := &Result{
		Global:  checkFile(config.GlobalPath(), "global"),
		Project: checkFile(config.ProjectPath(), "project"),
	}

	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			res.Overrides = append(res.Overrides, EnvOverride{Name: name, Value: v})
		}
	}

	cfg, err := config.Load()
	if err != nil {
		res.LoadError = err.Error()
		return res
	}
	res.Effective = cfg
	return res
}

// Healthy reports whether every present config source is usable.
func (r *Result) Healthy() bool {
	return r.LoadError == "" &&
		r.Global.Status != "error" &&
		r.Project.Status != "error"
}

// EffectiveScope names the highest-priority source that contributes
// settings: "env", "project", "global" or "defaults".
func (r *Result) EffectiveScope() string {
	switch {
	case len(r.Overrides) > 0:
		return "env"
	case r.Project.Status == "ok":
		return "project"
	case r.Global.Status == "ok":
		return "global"
	default:
		return "defaults"
	}
}

func checkFile(path, scope string) FileStatus {
	st := FileStatus{Path: path, Scope: scope}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			st.Status = "missing"
			return st
		}
		st.Status = "error"
		st.Error = err.Error()
		return st
	}

	if _, err := config.LoadFromFile(path); err != nil {
		st.Status = "error"
		st.Error = fmt.Sprintf("%v", err)
		return st
	}
	st.Status = "ok"
	return st
}
