package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vilaca/zenhub-estimates/internal/domain"
)

const (
	defaultAPIRoot        = "https://api.zenhub.com"
	defaultAgent          = "zenhub-estimates"
	defaultTimeoutSeconds = 30
	defaultCacheSeconds   = 60
)

// Environment variable names.
const (
	EnvConfigFile   = "ZENHUB_CONFIG"
	EnvAPIRoot      = "ZENHUB_API_ROOT"
	EnvWorkspaceID  = "ZENHUB_WORKSPACE_ID"
	EnvAPIToken     = "ZENHUB_API_TOKEN"
	EnvAgent        = "ZENHUB_AGENT"
	EnvPipelines    = "ZENHUB_PIPELINES"
	EnvAssignee     = "ZENHUB_ASSIGNEE"
	EnvTimeout      = "ZENHUB_TIMEOUT_SECONDS"
	EnvCacheSeconds = "ZENHUB_CACHE_SECONDS"
)

// Config holds application configuration.
// Values come from an optional YAML file, then the environment, then flags.
type Config struct {
	APIRoot     string `yaml:"api_root"`
	WorkspaceID string `yaml:"workspace_id"`
	APIToken    string `yaml:"api_token"`
	Agent       string `yaml:"agent"`

	// Pipeline names to report on, in output order.
	Pipelines []string `yaml:"pipelines"`

	// Assignee overrides the login of the token owner when filtering.
	Assignee string `yaml:"assignee"`

	TimeoutSeconds       int `yaml:"timeout_seconds"`
	CacheDurationSeconds int `yaml:"cache_seconds"`
}

// Default returns a configuration holding only default values.
func Default() *Config {
	return &Config{
		APIRoot:              defaultAPIRoot,
		Agent:                defaultAgent,
		TimeoutSeconds:       defaultTimeoutSeconds,
		CacheDurationSeconds: defaultCacheSeconds,
	}
}

// Load loads configuration from the YAML file at path (skipped when empty)
// and then from environment variables, which take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: failed to read config file: %v", domain.ErrConfig, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: failed to parse config file %s: %v", domain.ErrConfig, path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIRoot = getEnvOrDefault(EnvAPIRoot, c.APIRoot)
	c.WorkspaceID = getEnvOrDefault(EnvWorkspaceID, c.WorkspaceID)
	c.APIToken = getEnvOrDefault(EnvAPIToken, c.APIToken)
	c.Agent = getEnvOrDefault(EnvAgent, c.Agent)
	c.Assignee = getEnvOrDefault(EnvAssignee, c.Assignee)

	if pipelines := ParseList(os.Getenv(EnvPipelines)); len(pipelines) > 0 {
		c.Pipelines = pipelines
	}

	c.TimeoutSeconds = getEnvIntOrDefault(EnvTimeout, c.TimeoutSeconds)
	c.CacheDurationSeconds = getEnvIntOrDefault(EnvCacheSeconds, c.CacheDurationSeconds)
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	var missing []string
	if c.WorkspaceID == "" {
		missing = append(missing, EnvWorkspaceID)
	}
	if c.APIToken == "" {
		missing = append(missing, EnvAPIToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrConfig, strings.Join(missing, ", "))
	}
	if c.APIRoot == "" {
		return fmt.Errorf("%w: api root must not be empty", domain.ErrConfig)
	}
	return nil
}

// Timeout returns the per-fetch timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheDuration returns how long fetched results may be reused within a run.
// Zero disables caching.
func (c *Config) CacheDuration() time.Duration {
	if c.CacheDurationSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheDurationSeconds) * time.Second
}

// HasCache returns true if fetch caching is enabled.
func (c *Config) HasCache() bool {
	return c.CacheDuration() > 0
}

// String returns a loggable summary with the token masked.
func (c *Config) String() string {
	token := "(unset)"
	if c.APIToken != "" {
		token = "***"
	}
	return fmt.Sprintf("api_root=%s workspace=%s token=%s agent=%s pipelines=%q",
		c.APIRoot, c.WorkspaceID, token, c.Agent, c.Pipelines)
}

// ParseList splits a comma-separated list, trimming blanks.
func ParseList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
