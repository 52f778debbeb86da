// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/parlmembers/database/plugin"
	"github.com/blinklabs-io/parlmembers/database/sops"
	"github.com/blinklabs-io/parlmembers/membersapi"
	"github.com/blinklabs-io/parlmembers/reference"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "parlmembers.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
	DefaultDataDir        = ".parlmembers"
	DefaultKafkaTopic     = "parlmembers.review"
	DefaultMetricsJob     = "parlmembers"
	DefaultCreator        = "parlmembers"

	// RunDateLayout is the layout of run dates and snapshot directories
	RunDateLayout = "2006-01-02"

	envPrefix = "parlmembers"
)

// ErrPluginListRequested is returned when the user requests to list available plugins
// This is not an error condition but a successful operation that displays plugin information
var ErrPluginListRequested = errors.New("plugin list requested")

type tempConfig struct {
	Config   *yaml.Node                `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
	Sops     any                       `yaml:"sops,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// APIConfig configures the Members API client
type APIConfig struct {
	Headers       map[string]string `yaml:"headers"`
	BaseURL       string            `yaml:"baseUrl"       split_words:"true"`
	UserAgent     string            `yaml:"userAgent"     split_words:"true"`
	RetryMax      int               `yaml:"retryMax"      split_words:"true"`
	BackoffFactor time.Duration     `yaml:"backoffFactor" split_words:"true"`
	Timeout       time.Duration     `yaml:"timeout"`
}

// ReviewConfig configures the review workflow and its notifications
type ReviewConfig struct {
	KafkaBrokers     []string `yaml:"kafkaBrokers"     split_words:"true"`
	Creator          string   `yaml:"creator"`
	Reviewer         string   `yaml:"reviewer"`
	KafkaTopic       string   `yaml:"kafkaTopic"       split_words:"true"`
	IncludeUnchanged bool     `yaml:"includeUnchanged" split_words:"true"`
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl" split_words:"true"`
	Job            string `yaml:"job"`
}

// TracingConfig selects the trace exporter. Exporter is "otlp", "stdout" or
// empty to disable tracing.
type TracingConfig struct {
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

type Config struct {
	API       APIConfig     `yaml:"api"`
	Review    ReviewConfig  `yaml:"review"`
	Metrics   MetricsConfig `yaml:"metrics"`
	Tracing   TracingConfig `yaml:"tracing"`
	Reference ReferenceSpec `yaml:"reference" ignored:"true"`
	// RunDate names the snapshot written by an extract run. Empty means today.
	RunDate          string `yaml:"runDate"          split_words:"true"`
	DataDir          string `yaml:"dataDir"          split_words:"true"`
	BlobPlugin       string `yaml:"blobPlugin"       envconfig:"PARLMEMBERS_DATABASE_BLOB_PLUGIN"`
	MetadataPlugin   string `yaml:"metadataPlugin"   envconfig:"PARLMEMBERS_DATABASE_METADATA_PLUGIN"`
	EncryptSnapshots bool   `yaml:"encryptSnapshots" split_words:"true"`
}

// ReferenceSpec is the reference data section. Maps are merged into the
// built-in values, lists replace them.
type ReferenceSpec = reference.Spec

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       membersapi.DefaultBaseURL,
			UserAgent:     membersapi.DefaultUserAgent,
			RetryMax:      membersapi.DefaultRetryMax,
			BackoffFactor: membersapi.DefaultBackoffFactor,
			Timeout:       membersapi.DefaultTimeout,
		},
		Review: ReviewConfig{
			Creator:    DefaultCreator,
			KafkaTopic: DefaultKafkaTopic,
		},
		Metrics: MetricsConfig{
			Job: DefaultMetricsJob,
		},
		Reference:      reference.DefaultSpec(),
		DataDir:        DefaultDataDir,
		BlobPlugin:     DefaultBlobPlugin,
		MetadataPlugin: DefaultMetadataPlugin,
	}
}

var globalConfig = defaultConfig()

// Default returns a new config holding only the built-in defaults
func Default() *Config {
	return defaultConfig()
}

// ReferenceData validates the reference section
func (c *Config) ReferenceData() (*reference.Data, error) {
	ret, err := reference.New(c.Reference)
	if err != nil {
		return nil, fmt.Errorf("invalid reference data: %w", err)
	}
	return ret, nil
}

// ResolveRunDate returns the configured run date, or the date of now
func (c *Config) ResolveRunDate(now time.Time) (string, error) {
	if c.RunDate == "" {
		return now.Format(RunDateLayout), nil
	}
	if _, err := time.Parse(RunDateLayout, c.RunDate); err != nil {
		return "", fmt.Errorf("invalid run date %q: %w", c.RunDate, err)
	}
	return c.RunDate, nil
}

// ListPlugins writes the available plugins when "list" is given as the blob
// or metadata plugin and returns ErrPluginListRequested
func (c *Config) ListPlugins(w io.Writer) error {
	var pluginType plugin.PluginType
	switch {
	case c.BlobPlugin == "list":
		pluginType = plugin.PluginTypeBlob
	case c.MetadataPlugin == "list":
		pluginType = plugin.PluginTypeMetadata
	default:
		return nil
	}
	fmt.Fprintf(w, "Available %s plugins:\n", plugin.PluginTypeName(pluginType))
	for _, p := range plugin.GetPlugins(pluginType) {
		fmt.Fprintf(w, "  %s: %s\n", p.Name, p.Description)
	}
	return ErrPluginListRequested
}

func findConfigFile() string {
	// Check for config file in this path: ~/.parlmembers/parlmembers.yaml
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".parlmembers", "parlmembers.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/parlmembers/parlmembers.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

// readConfigFile reads a config file, decrypting it if it carries SOPS
// metadata
func readConfigFile(configFile string) ([]byte, *tempConfig, error) {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading config file: %w", err)
	}
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return nil, nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Sops == nil {
		return buf, &tempCfg, nil
	}
	buf, err = sops.DecryptFormat(buf, "yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("error decrypting config file: %w", err)
	}
	tempCfg = tempConfig{}
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return nil, nil, fmt.Errorf("error parsing decrypted config file: %w", err)
	}
	return buf, &tempCfg, nil
}

// pluginSection splits a database.blob or database.metadata section into the
// selected plugin name and per-plugin options
func pluginSection(kind string, section map[string]any) (string, map[string]map[string]any) {
	var name string
	if pluginVal, exists := section["plugin"]; exists {
		if pluginName, ok := pluginVal.(string); ok {
			name = pluginName
		}
	}
	ret := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			ret[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		default:
			fmt.Fprintf(os.Stderr, "warning: skipping %s config entry %q: expected map, got %T\n", kind, k, v)
		}
	}
	return name, ret
}

func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		buf, tempCfg, err := readConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		if tempCfg.Config != nil {
			// Decode only the keys present so unset fields keep defaults
			if err := tempCfg.Config.Decode(globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			// Otherwise unmarshal the whole file as main config
			if err := yaml.Unmarshal(buf, globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}

		pluginConfig := make(map[string]map[string]map[string]any)
		if tempCfg.Blob != nil {
			pluginConfig["blob"] = tempCfg.Blob
		}
		if tempCfg.Metadata != nil {
			pluginConfig["metadata"] = tempCfg.Metadata
		}
		if tempCfg.Database != nil {
			if tempCfg.Database.Blob != nil {
				name, blobConfig := pluginSection("blob", tempCfg.Database.Blob)
				if name != "" {
					globalConfig.BlobPlugin = name
				}
				if pluginConfig["blob"] == nil {
					pluginConfig["blob"] = blobConfig
				} else {
					maps.Copy(pluginConfig["blob"], blobConfig)
				}
			}
			if tempCfg.Database.Metadata != nil {
				name, metadataConfig := pluginSection("metadata", tempCfg.Database.Metadata)
				if name != "" {
					globalConfig.MetadataPlugin = name
				}
				if pluginConfig["metadata"] == nil {
					pluginConfig["metadata"] = metadataConfig
				} else {
					maps.Copy(pluginConfig["metadata"], metadataConfig)
				}
			}
		}
		if len(pluginConfig) > 0 {
			if err := plugin.ProcessConfig(pluginConfig); err != nil {
				return nil, fmt.Errorf(
					"error processing plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	if err := envconfig.Process(envPrefix, globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Process plugin environment variables
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if err := globalConfig.Validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// Validate checks values that would otherwise only fail late in a run
func (c *Config) Validate() error {
	if c.RunDate != "" {
		if _, err := time.Parse(RunDateLayout, c.RunDate); err != nil {
			return fmt.Errorf("invalid runDate %q: %w", c.RunDate, err)
		}
	}
	if c.API.RetryMax < 0 {
		return fmt.Errorf("invalid api.retryMax: %d", c.API.RetryMax)
	}
	switch c.Tracing.Exporter {
	case "", "otlp", "stdout":
	default:
		return fmt.Errorf(
			"invalid tracing.exporter: %q (must be 'otlp' or 'stdout')",
			c.Tracing.Exporter,
		)
	}
	if _, err := c.ReferenceData(); err != nil {
		return err
	}
	return nil
}

func GetConfig() *Config {
	return globalConfig
}
