package config

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"ismigrate/pkg/errx"
)

// Prompter asks the user for a configuration value. It exists so commands
// can run unattended: interactive runs get a survey-backed prompter,
// non-interactive runs get nil and missing values become errors.
type Prompter interface {
	Input(message, def string) (string, error)
	Password(message string) (string, error)
}

// NewPrompter returns a survey-backed prompter when stdin is a terminal and
// nil otherwise.
func NewPrompter() Prompter {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return SurveyPrompter{}
}

// SurveyPrompter prompts on the terminal.
type SurveyPrompter struct{}

func (SurveyPrompter) Input(message, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out)
	return out, err
}

func (SurveyPrompter) Password(message string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Password{Message: message}, &out)
	return out, err
}

// StaticPrompter answers from fixed values, keyed by prompt message.
type StaticPrompter struct {
	Values map[string]string
}

func (p StaticPrompter) Input(message, _ string) (string, error) {
	return p.Values[message], nil
}

func (p StaticPrompter) Password(message string) (string, error) {
	return p.Values[message], nil
}

// AuthFileEntry is one registry's credentials in the auth file.
type AuthFileEntry struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoadAuthFile reads a YAML file mapping registry hosts to credentials.
func LoadAuthFile(path string) (map[string]AuthFileEntry, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is the user's own auth file flag.
	if err != nil {
		return nil, errx.WrapConfig("failed to read auth file", err).
			WithContext("path", path)
	}
	entries := make(map[string]AuthFileEntry)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errx.WrapConfig("failed to parse auth file", err).
			WithContext("path", path)
	}
	return entries, nil
}

// ApplyAuthFile fills empty registry credentials from the auth file keyed by
// host. Explicitly configured credentials win over file entries.
func (c *Config) ApplyAuthFile(path string) error {
	if path == "" {
		return nil
	}
	entries, err := LoadAuthFile(path)
	if err != nil {
		return err
	}
	if entry, ok := entries[c.Source.Host]; ok {
		if c.Source.Username == "" {
			c.Source.Username = entry.Username
		}
		if c.Source.Password == "" {
			c.Source.Password = entry.Password
		}
	}
	if entry, ok := entries[c.Destination.Host]; ok {
		if c.Destination.Username == "" {
			c.Destination.Username = entry.Username
		}
		if c.Destination.Password == "" {
			c.Destination.Password = entry.Password
		}
	}
	return nil
}
