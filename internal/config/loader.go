package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "pixgroup"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "PIXGROUP"
)

// Loader resolves a Config from defaults, a YAML file, PIXGROUP_* environment
// variables and any flags bound on its viper instance, in increasing order of
// precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader wraps v. A nil v gets a fresh private instance.
func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	return &Loader{v: v}
}

// Viper exposes the underlying instance so callers can bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load resolves and validates the configuration. An empty file searches
// SearchPaths for pixgroup.yaml; a missing file there is not an error.
func (l *Loader) Load(file string) (*Config, error) {
	cfg, err := l.LoadUnvalidated(file)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadUnvalidated is Load without Validate, for commands that inspect a
// possibly broken configuration.
func (l *Loader) LoadUnvalidated(file string) (*Config, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", file)
		}
		l.v.SetConfigFile(file)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		for _, p := range SearchPaths() {
			l.v.AddConfigPath(p)
		}
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()

	if err := registerDefaults(l.v); err != nil {
		return nil, err
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the file the last load read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Describe writes where the configuration came from.
func (l *Loader) Describe(w io.Writer) {
	used := l.ConfigFileUsed()
	if used == "" {
		used = "(none, defaults and environment only)"
	}
	_, _ = fmt.Fprintf(w, "Configuration file used: %s\n", used)
	_, _ = fmt.Fprintf(w, "Configuration search paths: %s\n", strings.Join(SearchPaths(), ", "))
	_, _ = fmt.Fprintf(w, "Environment prefix: %s_\n", EnvPrefix)
}

// registerDefaults sets one viper default per leaf of DefaultConfig. Every
// key needs a default so AutomaticEnv can see it during Unmarshal.
func registerDefaults(v *viper.Viper) error {
	tree, err := defaultTree()
	if err != nil {
		return err
	}
	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, val := range node {
			key := prefix + k
			if sub, ok := val.(map[string]any); ok {
				walk(key+".", sub)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

// defaultTree returns DefaultConfig as nested maps keyed by the yaml tags.
func defaultTree() (map[string]any, error) {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("error encoding defaults: %w", err)
	}
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("error decoding defaults: %w", err)
	}
	return tree, nil
}

// WriteDefaultConfig writes DefaultConfig as YAML to path, or to
// pixgroup.yaml when path is empty.
func WriteDefaultConfig(path string) error {
	if path == "" {
		path = ConfigFileName + ".yaml"
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("error encoding defaults: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// SearchPaths lists the directories searched for pixgroup.yaml, most
// specific first.
func SearchPaths() []string {
	paths := []string{"."}
	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		paths = append(paths, home)
	}
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(xdg, ConfigFileName))
	} else if homeErr == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}
	return append(paths, "/etc/"+ConfigFileName)
}
