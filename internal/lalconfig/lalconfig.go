// Package lalconfig implements C11: the global `~/.lal/config` file -
// backend selection, cache directory, environment shorthands, and mount
// policy. Grounded on the original lal's src/core/config.rs.
package lalconfig

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/kelseyhightower/envconfig"
	"github.com/lalbuild/lal/internal/environment"
	"github.com/lalbuild/lal/internal/lalerrors"
	yaml "gopkg.in/yaml.v2"
)

// EnvConfigHome overrides the directory under which .lal/config is resolved.
const EnvConfigHome = "LAL_CONFIG_HOME"

// Mount is a docker volume mount: src:dest[:ro].
type Mount struct {
	Src      string `json:"src"`
	Dest     string `json:"dest"`
	Readonly bool   `json:"readonly"`
}

// BackendConfiguration selects and parameterizes the artifact backend.
type BackendConfiguration struct {
	// Name is "local" or "http".
	Name  string `json:"name"`
	URL   string `json:"url,omitempty" envconfig:"backend_url"`
	Token string `json:"token,omitempty" envconfig:"backend_token"`
}

// Config is the persisted shape of ~/.lal/config.
type Config struct {
	Backend      BackendConfiguration               `json:"backend"`
	Cache        string                             `json:"cache"`
	Environments map[string]environment.Environment `json:"environments"`
	LastUpgrade  string                             `json:"lastUpgrade"`
	AutoUpgrade  bool                               `json:"autoupgrade"`
	Mounts       []Mount                            `json:"mounts"`
	Interactive  bool                               `json:"interactive"`
	MinimumLal   string                             `json:"minimumLal,omitempty"`
}

// Defaults is the input to New, typically read from an org-provided
// `lal configure <defaults-file>` JSON seed.
type Defaults struct {
	Backend      BackendConfiguration               `json:"backend"`
	Environments map[string]environment.Environment `json:"environments"`
	Mounts       []Mount                            `json:"mounts"`
	MinimumLal   string                             `json:"minimumLal,omitempty"`
}

// ReadDefaults deserializes a ConfigDefaults seed file. Both JSON and YAML
// are accepted (selected by the .yml/.yaml suffix, falling back to YAML if
// JSON parsing fails) since org defaults files are often hand-maintained.
func ReadDefaults(path string) (*Defaults, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, lalerrors.IO(err, "reading config defaults "+path)
	}
	var d Defaults
	if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, lalerrors.JSON(err, "parsing config defaults")
		}
		return &d, nil
	}
	if err := json.Unmarshal(data, &d); err != nil {
		if yamlErr := yaml.Unmarshal(data, &d); yamlErr == nil {
			return &d, nil
		}
		return nil, lalerrors.JSON(err, "parsing config defaults")
	}
	return &d, nil
}

// HomeDir resolves the directory .lal/ lives under: the home argument if
// non-empty, then LAL_CONFIG_HOME, then the OS home directory via adrg/xdg.
func HomeDir(home string) string {
	if home != "" {
		return home
	}
	if h := os.Getenv(EnvConfigHome); h != "" {
		return h
	}
	return xdg.Home
}

// Dir returns <home>/.lal.
func Dir(home string) string {
	return filepath.Join(HomeDir(home), ".lal")
}

func path(home string) string {
	return filepath.Join(Dir(home), "config")
}

// New builds a fresh Config from defaults: the cache dir defaults under
// .lal/cache, lastUpgrade is backdated so an upgrade check always triggers
// once, and every mount is filtered through CheckMount.
func New(defaults Defaults, home string, logger hclog.Logger) Config {
	mounts := make([]Mount, 0, len(defaults.Mounts))
	for _, m := range defaults.Mounts {
		resolved, err := CheckMount(m.Src, home)
		if err != nil {
			logger.Debug("ignoring mount check error", "mount", m.Src, "error", err)
			continue
		}
		m.Src = resolved
		mounts = append(mounts, m)
	}
	return Config{
		Backend:      defaults.Backend,
		Cache:        filepath.Join(Dir(home), "cache"),
		Environments: defaults.Environments,
		LastUpgrade:  time.Now().UTC().AddDate(0, 0, -2).Format(time.RFC3339),
		AutoUpgrade:  false,
		Mounts:       mounts,
		Interactive:  true,
		MinimumLal:   defaults.MinimumLal,
	}
}

// CheckMount resolves a mount source: a literal filesystem path (after `~`
// expansion) that exists is kept as-is; a bare name with no path separator
// is kept if it names an existing `docker volume`; anything else is
// rejected (caller should log and drop the mount, not fail configuration).
func CheckMount(src, home string) (string, error) {
	expanded := strings.Replace(src, "~", HomeDir(home), 1)
	if _, err := os.Stat(expanded); err == nil {
		return expanded, nil
	}
	if !strings.Contains(src, "/") {
		out, err := exec.Command("docker", "volume", "ls", "-q").Output()
		if err == nil && strings.Contains(string(out), src) {
			return src, nil
		}
	}
	return "", lalerrors.BackendFailure("missing mount " + expanded)
}

// Read loads ~/.lal/config, applying any LAL_-prefixed environment
// overrides on top via envconfig (e.g. LAL_BACKEND_URL, LAL_BACKEND_TOKEN).
func Read(home string) (*Config, error) {
	cfgPath := path(home)
	if _, err := os.Stat(cfgPath); err != nil {
		return nil, lalerrors.ConfigMissing()
	}
	data, err := ioutil.ReadFile(cfgPath)
	if err != nil {
		return nil, lalerrors.IO(err, "reading config")
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, lalerrors.JSON(err, "parsing config")
	}
	if err := envconfig.Process("lal", &c.Backend); err != nil {
		return nil, lalerrors.ManifestInvalid("invalid LAL_ environment override: " + err.Error())
	}
	return &c, nil
}

// Write overwrites ~/.lal/config. silent suppresses the info log, matching
// the original Config::write(silent: bool).
func Write(c *Config, home string, silent bool, logger hclog.Logger) error {
	if err := os.MkdirAll(Dir(home), 0755); err != nil {
		return lalerrors.IO(err, "creating config directory")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return lalerrors.JSON(err, "encoding config")
	}
	if err := ioutil.WriteFile(path(home), append(data, '\n'), 0644); err != nil {
		return lalerrors.IO(err, "writing config")
	}
	if !silent {
		logger.Info("wrote config", "path", path(home))
	}
	return nil
}

// GetEnvironment resolves an environment shorthand.
func GetEnvironment(c *Config, name string) (environment.Environment, error) {
	if env, ok := c.Environments[name]; ok {
		return env, nil
	}
	return environment.Environment{}, lalerrors.EnvironmentUnknown(name)
}

// GetContainer resolves an environment shorthand that must be a container,
// rejecting the none-environment shorthand.
func GetContainer(c *Config, name string) (environment.Container, error) {
	env, err := GetEnvironment(c, name)
	if err != nil {
		return environment.Container{}, err
	}
	if !env.IsContainer() {
		return environment.Container{}, lalerrors.EnvironmentUnknown(name)
	}
	return *env.Container, nil
}
