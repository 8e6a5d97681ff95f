// Package config assembles the single configuration structure of a
// migration run. Values come from, in order of precedence, command flags,
// ISMIGRATE_* environment variables, a YAML config file, and finally
// interactive prompts for anything still missing.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"ismigrate/pkg/errx"
)

// Transfer modes.
const (
	// TransferModeRegistry copies registry to registry with no local
	// daemon.
	TransferModeRegistry = "registry"
	// TransferModeDocker pulls, retags, and pushes through a local docker
	// daemon, removing local copies after each push.
	TransferModeDocker = "docker"
)

const (
	envPrefix      = "ISMIGRATE"
	configName     = "ismigrate"
	configType     = "yaml"
	configHomeDir  = ".ismigrate"
	defaultTagMode = "all"
)

// ClusterConfig locates and authenticates against the source cluster.
type ClusterConfig struct {
	API      string `mapstructure:"api"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
	Insecure bool   `mapstructure:"insecure"`
}

// RegistryConfig holds one registry endpoint and its credentials. Group is
// only meaningful on the destination side.
type RegistryConfig struct {
	Host     string `mapstructure:"host"`
	Group    string `mapstructure:"group"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Insecure bool   `mapstructure:"insecure"`
}

// RepoAPIConfig locates the destination registry's repository management
// API.
type RepoAPIConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// Config is the complete configuration of a migration run.
type Config struct {
	Cluster     ClusterConfig  `mapstructure:"cluster"`
	Source      RegistryConfig `mapstructure:"source"`
	Destination RegistryConfig `mapstructure:"destination"`
	RepoAPI     RepoAPIConfig  `mapstructure:"repo_api"`

	Namespaces    []string `mapstructure:"namespaces"`
	TagMode       string   `mapstructure:"tag_mode"`
	EstimateSizes bool     `mapstructure:"estimate_sizes"`
	TransferMode  string   `mapstructure:"transfer_mode"`
	OutputDir     string   `mapstructure:"output_dir"`
	AuthFile      string   `mapstructure:"auth_file"`
	EventsDSN     string   `mapstructure:"events_dsn"`
}

// credentialKeys are bound to the environment individually so secrets can be
// injected without a config file.
var credentialKeys = []string{
	"cluster.api",
	"cluster.username",
	"cluster.password",
	"cluster.token",
	"source.username",
	"source.password",
	"destination.username",
	"destination.password",
	"repo_api.token",
	"events_dsn",
}

// Load reads the configuration. With an explicit path the file must exist;
// otherwise ismigrate.yaml is searched in the working directory and
// ~/.ismigrate, and a missing file is fine.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configHomeDir))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range credentialKeys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errx.WrapConfig("failed to read config file", err).
				WithContext("path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errx.WrapConfig("failed to decode configuration", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tag_mode", defaultTagMode)
	v.SetDefault("transfer_mode", TransferModeRegistry)
	v.SetDefault("output_dir", ".")
	v.SetDefault("cluster.api", "")
	v.SetDefault("cluster.username", "")
	v.SetDefault("cluster.password", "")
	v.SetDefault("cluster.token", "")
	v.SetDefault("cluster.insecure", false)
	v.SetDefault("source.host", "")
	v.SetDefault("source.username", "")
	v.SetDefault("source.password", "")
	v.SetDefault("source.insecure", false)
	v.SetDefault("destination.host", "")
	v.SetDefault("destination.group", "")
	v.SetDefault("destination.username", "")
	v.SetDefault("destination.password", "")
	v.SetDefault("destination.insecure", false)
	v.SetDefault("repo_api.url", "")
	v.SetDefault("repo_api.token", "")
	v.SetDefault("auth_file", "")
	v.SetDefault("events_dsn", "")
}

// Complete fills every interactive credential field that is still empty. The
// prompter is nil when stdin is not a terminal; a field needed in that state
// is a configuration error naming the field and its environment variable.
func (c *Config) Complete(p Prompter) error {
	if err := c.CompleteCluster(p); err != nil {
		return err
	}
	return c.CompleteDestination(p)
}

// CompleteCluster fills the fields needed to talk to the source cluster: the
// API URL, and username plus password unless a token is already set.
func (c *Config) CompleteCluster(p Prompter) error {
	var err error
	if c.Cluster.API == "" {
		if c.Cluster.API, err = ask(p, "cluster.api", func(p Prompter) (string, error) {
			return p.Input("Cluster API URL", "")
		}); err != nil {
			return err
		}
	}
	if c.Cluster.Token != "" {
		return nil
	}
	if c.Cluster.Username == "" {
		if c.Cluster.Username, err = ask(p, "cluster.username", func(p Prompter) (string, error) {
			return p.Input("Cluster username", "")
		}); err != nil {
			return err
		}
	}
	if c.Cluster.Password == "" {
		if c.Cluster.Password, err = ask(p, "cluster.password", func(p Prompter) (string, error) {
			return p.Password("Cluster password")
		}); err != nil {
			return err
		}
	}
	return nil
}

// CompleteDestination fills the destination registry push credentials.
func (c *Config) CompleteDestination(p Prompter) error {
	var err error
	if c.Destination.Username == "" {
		if c.Destination.Username, err = ask(p, "destination.username", func(p Prompter) (string, error) {
			return p.Input("Destination registry username", "")
		}); err != nil {
			return err
		}
	}
	if c.Destination.Password == "" {
		if c.Destination.Password, err = ask(p, "destination.password", func(p Prompter) (string, error) {
			return p.Password("Destination registry password")
		}); err != nil {
			return err
		}
	}
	return nil
}

func ask(p Prompter, key string, prompt func(Prompter) (string, error)) (string, error) {
	if p == nil {
		envVar := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		return "", errx.Config(key + " is required; set " + envVar + " or add it to the config file").
			WithContext("field", key)
	}
	value, err := prompt(p)
	if err != nil {
		return "", errx.WrapConfig("prompt failed", err).WithContext("field", key)
	}
	if value == "" {
		return "", errx.Config(key + " is required").WithContext("field", key)
	}
	return value, nil
}
