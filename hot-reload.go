// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig watches a configuration file and makes a live-reloaded Config
// available to the caller via GetConfig. It does not touch a Table
// directly: Table holds no internal lock (spec.md §5), so applying a
// reload is the caller's job, done under whatever mutex already serializes
// ProcessFlow/WriteUpdate/WriteThresholdedIPs/AdvanceBaseTimestamp. Call
// Table.ApplyHotFields(hc.GetConfig()) from inside that same critical
// section on whatever cadence suits the caller.
type HotConfig struct {
	mu     sync.RWMutex
	config Config

	watcher *argus.Watcher

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger for hot reload operations. If nil, NoOpLogger is used.
	Logger Logger
}

// NewHotConfig creates a new hot-reloadable configuration, seeded with
// base, and starts watching the configuration file immediately.
//
// Example configuration file (YAML):
//
//	flowtrack:
//	  flow_threshold: 32
//	  expiration_seconds: 300
//	  anonymization_enabled: true
//	  thresholding_enabled: true
//
// Only FlowThreshold, ExpirationSeconds, AnonymizationEnabled and
// ThresholdingEnabled are hot-reloadable. Capacity, MaxProbes, C1 and C2
// require rebuilding the Table and are left untouched by ApplyHotFields.
func NewHotConfig(base Config, opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	if opts.Logger == nil {
		opts.Logger = NoOpLogger{}
	}

	base.Validate()
	hc := &HotConfig{
		config:   base,
		OnReload: opts.OnReload,
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the current configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is called by Argus when configuration changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(configData, oldConfig)
	hc.config = newConfig
	hc.mu.Unlock()

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parsePositiveInt64 is parsePositiveInt for int64-typed fields.
func parsePositiveInt64(value interface{}) (int64, bool) {
	n, ok := parsePositiveInt(value)
	if !ok {
		return 0, false
	}
	return int64(n), true
}

// parseBool extracts a bool, accepting the string forms config loaders
// commonly produce.
func parseBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return false, false
}

// parseConfig extracts the hot-reloadable subset of Config from Argus
// config data, defaulting unset fields to prev's values.
func (hc *HotConfig) parseConfig(data map[string]interface{}, prev Config) Config {
	config := prev

	section, ok := data["flowtrack"].(map[string]interface{})
	if !ok {
		if _, hasThreshold := data["flow_threshold"]; hasThreshold {
			section = data
		} else {
			return config
		}
	}

	if threshold, ok := parsePositiveInt(section["flow_threshold"]); ok {
		config.FlowThreshold = threshold
	}
	if expiration, ok := parsePositiveInt64(section["expiration_seconds"]); ok {
		config.ExpirationSeconds = expiration
	}
	if anon, ok := parseBool(section["anonymization_enabled"]); ok {
		config.AnonymizationEnabled = anon
	}
	if thresholding, ok := parseBool(section["thresholding_enabled"]); ok {
		config.ThresholdingEnabled = thresholding
	}

	return config
}

// ApplyHotFields copies the hot-reloadable fields of cfg (FlowThreshold,
// ExpirationSeconds, AnonymizationEnabled, ThresholdingEnabled) onto t.
// Capacity, MaxProbes, C1 and C2 are left untouched: changing them requires
// a new Table. The caller must hold whatever external lock serializes
// ProcessFlow/WriteUpdate/WriteThresholdedIPs/AdvanceBaseTimestamp while
// calling this.
func (t *Table) ApplyHotFields(cfg Config) {
	t.cfg.FlowThreshold = cfg.FlowThreshold
	t.cfg.ExpirationSeconds = cfg.ExpirationSeconds
	t.cfg.AnonymizationEnabled = cfg.AnonymizationEnabled
	t.cfg.ThresholdingEnabled = cfg.ThresholdingEnabled
}
