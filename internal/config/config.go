package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Provider        string `yaml:"provider"`
	APIKey          string `yaml:"api_key,omitempty"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url,omitempty"`
	AzureDeployment string `yaml:"azure_deployment,omitempty"`

	// Language selects user-facing messages, e.g. "en" or "tr".
	Language string `yaml:"language"`

	Generation GenerationConfig `yaml:"generation"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
}

type GenerationConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		Language: "en",
		Generation: GenerationConfig{
			Timeout:     90 * time.Second,
			Retries:     1,
			MaxTokens:   4096,
			Temperature: 0.4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "policygen"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultLogFile is where the TUI writes logs when none is configured.
func DefaultLogFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "policygen.log")
}

func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the default config file. It returns nil, nil when no file exists yet.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a config from path, filling unset fields from DefaultConfig
// and applying environment overrides.
func LoadFile(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// FromEnv builds a config from defaults plus environment only; used when no
// config file exists but keys were exported.
func FromEnv() *Config {
	loadEnvFiles()
	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg
}

func loadEnvFiles() {
	// Missing .env is normal.
	_ = godotenv.Load()
	if dir, err := ConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("POLICYGEN_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("POLICYGEN_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("POLICYGEN_API_KEY"); v != "" {
		c.APIKey = v
	}
	if c.APIKey == "" && c.Provider == "gemini" {
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v := os.Getenv(name); v != "" {
				c.APIKey = v
				break
			}
		}
	}
	if v := os.Getenv("POLICYGEN_LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT"); v != "" {
		c.AzureDeployment = v
	}
}

// SetModel picks model for the current provider. Azure addresses
// deployments, so picking a model there also picks the deployment of the
// same name.
func (c *Config) SetModel(model string) {
	c.Model = model
	if c.Provider == "azure" {
		c.AzureDeployment = model
	}
}

// HasCredentials reports whether the configured provider can be built without
// asking the user for anything.
func (c *Config) HasCredentials() bool {
	p := GetProvider(c.Provider)
	if p == nil {
		return false
	}
	return !p.NeedsAPIKey || c.APIKey != ""
}

// Validate checks the settings the pipeline depends on.
func (c *Config) Validate() error {
	p := GetProvider(c.Provider)
	if p == nil {
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	if p.NeedsAPIKey && c.APIKey == "" {
		return fmt.Errorf("%s requires an API key", p.ID)
	}
	if p.NeedsBaseURL && c.BaseURL == "" {
		return fmt.Errorf("%s requires base_url", p.ID)
	}
	// Model names something else on Azure; only the deployment is routed to.
	if c.Provider == "azure" && c.AzureDeployment == "" {
		return fmt.Errorf("azure requires azure_deployment")
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("generation.timeout must be positive")
	}
	if c.Generation.Retries < 0 {
		return fmt.Errorf("generation.retries must not be negative")
	}
	return nil
}

func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
