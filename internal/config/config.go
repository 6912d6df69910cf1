package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models testops.yml.
type Config struct {
	Workspace struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"workspace"`
	Storage struct {
		// Backend selects the key-value store: sqlite or memory.
		Backend string `yaml:"backend"`
	} `yaml:"storage"`
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret        string `yaml:"jwt_secret"`
		AllowActorHeader bool   `yaml:"allow_actor_header"`
	} `yaml:"auth"`
	Seed bool `yaml:"seed"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Workspace.ID == "" {
		return fmt.Errorf("config.workspace.id is required")
	}
	switch c.Storage.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("config.storage.backend must be 'sqlite' or 'memory'")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	return nil
}

// Path returns the config file path for a workspace directory.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "testops.yml")
}

// Load reads and validates config from the workspace, falling back to
// defaults when no file exists.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the default Config.
func Default() *Config {
	var cfg Config
	cfg.Workspace.ID = "ws-1"
	cfg.Workspace.Name = "TestOps"
	cfg.Storage.Backend = "sqlite"
	cfg.Server.Addr = ":8080"
	cfg.Server.BasePath = "/v0"
	cfg.Auth.AllowActorHeader = true
	cfg.Seed = true
	return &cfg
}

// GenerateDefault returns the default config YAML for `testops config init`.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `workspace:
  id: ws-1
  name: TestOps

storage:
  # sqlite persists collections under .testops/testops.db;
  # memory keeps everything in-process.
  backend: sqlite

server:
  addr: ":8080"
  base_path: /v0

auth:
  # Secret for dev-login JWTs; leave empty to disable token auth.
  jwt_secret: ""
  # Accept X-Actor-Id for audit attribution when no token is presented.
  allow_actor_header: true

# Load the demo dataset when a collection has never been persisted.
seed: true
`
