package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"myregistry/service"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Env variable names.
const (
	envHTTPPort   = "SERVICE_PORT_HTTP"
	envConfigPath = "CONFIG_PATH"
	envNodeName   = "NODE_NAME"
)

// Config holds the full registry node configuration loaded by LoadConfig
// from environment variables and the optional YAML file. HTTPPort comes from
// SERVICE_PORT_HTTP; NodeName from NODE_NAME (a generated UUID when unset);
// everything else from the YAML at CONFIG_PATH, with production defaults
// when the file or a field is absent.
type Config struct {
	HTTPPort         int
	NodeName         string
	EvictionInterval time.Duration
	Registry         service.RegistryConfig
	Cache            service.ResponseCacheConfig
	Replication      service.ReplicationConfig
	Peers            []string
}

// yamlConfig is the root struct for YAML unmarshalling.
type yamlConfig struct {
	Registry    yamlRegistry    `yaml:"registry"`
	Cache       yamlCache       `yaml:"cache"`
	Replication yamlReplication `yaml:"replication"`
}

// yamlRegistry carries the lease/eviction knobs.
type yamlRegistry struct {
	DefaultLeaseDurationS   int      `yaml:"default_lease_duration_s"`
	RenewalIntervalS        int      `yaml:"renewal_interval_s"`
	RenewalThresholdFactor  *float64 `yaml:"renewal_threshold_factor"`
	SelfPreservationEnabled *bool    `yaml:"self_preservation_enabled"`
	EvictionIntervalS       int      `yaml:"eviction_interval_s"`
	EvictionLimitFraction   *float64 `yaml:"eviction_limit_fraction"`
}

// yamlCache carries the read-path knobs.
type yamlCache struct {
	CoalescingWindowMs int `yaml:"coalescing_window_ms"`
	DeltaRetention     int `yaml:"delta_retention"`
}

// yamlReplication carries the peer list and delivery knobs.
type yamlReplication struct {
	Peers                 []string `yaml:"peers"`
	BatchSize             int      `yaml:"batch_size"`
	BatchWindowMs         int      `yaml:"batch_window_ms"`
	QueueDepth            int      `yaml:"queue_depth"`
	RetryAttempts         int      `yaml:"retry_attempts"`
	RetryInitialBackoffMs int      `yaml:"retry_initial_backoff_ms"`
	RetryMaxBackoffMs     int      `yaml:"retry_max_backoff_ms"`
	AttemptTimeoutMs      int      `yaml:"attempt_timeout_ms"`
	RateLimit             float64  `yaml:"rate_limit"`
	RateBurst             int      `yaml:"rate_burst"`
}

// loadYAMLConfig reads and unmarshals the YAML file at path.
func loadYAMLConfig(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out yamlConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadConfig builds the node config. SERVICE_PORT_HTTP is required
// (1-65535). CONFIG_PATH is optional: when unset the node runs standalone
// with production defaults and no peers. Every YAML field is optional and
// falls back to its default, so a deployment only states what it changes.
func LoadConfig() (*Config, error) {
	httpPortStr := os.Getenv(envHTTPPort)
	if httpPortStr == "" {
		return nil, fmt.Errorf("%s is required", envHTTPPort)
	}
	httpPort, err := strconv.Atoi(httpPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envHTTPPort, err)
	}
	if httpPort < 1 || httpPort > 65535 {
		return nil, fmt.Errorf("%s must be between 1 and 65535", envHTTPPort)
	}

	nodeName := os.Getenv(envNodeName)
	if nodeName == "" {
		nodeName = "registry-" + uuid.NewString()
	}

	cfg := &Config{
		HTTPPort:         httpPort,
		NodeName:         nodeName,
		EvictionInterval: 60 * time.Second,
		Registry:         service.DefaultRegistryConfig(),
		Cache:            service.DefaultResponseCacheConfig(),
		Replication:      service.DefaultReplicationConfig(),
	}

	configPath := os.Getenv(envConfigPath)
	if configPath == "" {
		return cfg, nil
	}
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envConfigPath, err)
	}
	raw, err := loadYAMLConfig(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", absPath, err)
	}
	applyYAML(cfg, raw)

	if cfg.Registry.RenewalThresholdFactor < 0 || cfg.Registry.RenewalThresholdFactor > 1 {
		return nil, fmt.Errorf("renewal_threshold_factor must be within [0, 1]")
	}
	if cfg.Registry.EvictionLimitFraction <= 0 || cfg.Registry.EvictionLimitFraction > 1 {
		return nil, fmt.Errorf("eviction_limit_fraction must be within (0, 1]")
	}
	return cfg, nil
}

// applyYAML overlays the YAML values onto the defaults in cfg.
func applyYAML(cfg *Config, raw *yamlConfig) {
	if raw.Registry.DefaultLeaseDurationS > 0 {
		cfg.Registry.DefaultLeaseDuration = time.Duration(raw.Registry.DefaultLeaseDurationS) * time.Second
	}
	if raw.Registry.RenewalIntervalS > 0 {
		cfg.Registry.RenewalInterval = time.Duration(raw.Registry.RenewalIntervalS) * time.Second
	}
	if raw.Registry.RenewalThresholdFactor != nil {
		cfg.Registry.RenewalThresholdFactor = *raw.Registry.RenewalThresholdFactor
	}
	if raw.Registry.SelfPreservationEnabled != nil {
		cfg.Registry.SelfPreservationEnabled = *raw.Registry.SelfPreservationEnabled
	}
	if raw.Registry.EvictionIntervalS > 0 {
		cfg.EvictionInterval = time.Duration(raw.Registry.EvictionIntervalS) * time.Second
	}
	if raw.Registry.EvictionLimitFraction != nil {
		cfg.Registry.EvictionLimitFraction = *raw.Registry.EvictionLimitFraction
	}

	if raw.Cache.CoalescingWindowMs > 0 {
		cfg.Cache.CoalescingWindow = time.Duration(raw.Cache.CoalescingWindowMs) * time.Millisecond
	}
	if raw.Cache.DeltaRetention > 0 {
		cfg.Cache.DeltaRetention = raw.Cache.DeltaRetention
	}

	cfg.Peers = raw.Replication.Peers
	if raw.Replication.BatchSize > 0 {
		cfg.Replication.BatchSize = raw.Replication.BatchSize
	}
	if raw.Replication.BatchWindowMs > 0 {
		cfg.Replication.BatchWindow = time.Duration(raw.Replication.BatchWindowMs) * time.Millisecond
	}
	if raw.Replication.QueueDepth > 0 {
		cfg.Replication.QueueDepth = raw.Replication.QueueDepth
	}
	if raw.Replication.RetryAttempts > 0 {
		cfg.Replication.RetryAttempts = raw.Replication.RetryAttempts
	}
	if raw.Replication.RetryInitialBackoffMs > 0 {
		cfg.Replication.RetryInitialBackoff = time.Duration(raw.Replication.RetryInitialBackoffMs) * time.Millisecond
	}
	if raw.Replication.RetryMaxBackoffMs > 0 {
		cfg.Replication.RetryMaxBackoff = time.Duration(raw.Replication.RetryMaxBackoffMs) * time.Millisecond
	}
	if raw.Replication.AttemptTimeoutMs > 0 {
		cfg.Replication.AttemptTimeout = time.Duration(raw.Replication.AttemptTimeoutMs) * time.Millisecond
	}
	if raw.Replication.RateLimit > 0 {
		cfg.Replication.RateLimit = raw.Replication.RateLimit
	}
	if raw.Replication.RateBurst > 0 {
		cfg.Replication.RateBurst = raw.Replication.RateBurst
	}
}
