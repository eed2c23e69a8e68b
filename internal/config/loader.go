package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Backends understood by the manager.
const (
	BackendExec     = "exec"
	BackendHTTP     = "http"
	BackendResample = "resample"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr                 string   `json:"addr" yaml:"addr" toml:"addr" mapstructure:"addr"`
	ModelPath            string   `json:"model_path" yaml:"model_path" toml:"model_path" mapstructure:"model_path"`
	ModelsDir            string   `json:"models_dir" yaml:"models_dir" toml:"models_dir" mapstructure:"models_dir"`
	UploadsDir           string   `json:"uploads_dir" yaml:"uploads_dir" toml:"uploads_dir" mapstructure:"uploads_dir"`
	OutputsDir           string   `json:"outputs_dir" yaml:"outputs_dir" toml:"outputs_dir" mapstructure:"outputs_dir"`
	Scale                int      `json:"scale" yaml:"scale" toml:"scale" mapstructure:"scale"`
	Backend              string   `json:"backend" yaml:"backend" toml:"backend" mapstructure:"backend"`
	UpscalerBin          string   `json:"upscaler_bin" yaml:"upscaler_bin" toml:"upscaler_bin" mapstructure:"upscaler_bin"`
	UpscalerArgs         []string `json:"upscaler_args" yaml:"upscaler_args" toml:"upscaler_args" mapstructure:"upscaler_args"`
	UpscalerURL          string   `json:"upscaler_url" yaml:"upscaler_url" toml:"upscaler_url" mapstructure:"upscaler_url"`
	MaxUploadMB          int      `json:"max_upload_mb" yaml:"max_upload_mb" toml:"max_upload_mb" mapstructure:"max_upload_mb"`
	MaxConcurrent        int      `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxQueueDepth        int      `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth" mapstructure:"max_queue_depth"`
	MaxWaitSeconds       int      `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds" mapstructure:"max_wait_seconds"`
	InferTimeoutSeconds  int      `json:"infer_timeout_seconds" yaml:"infer_timeout_seconds" toml:"infer_timeout_seconds" mapstructure:"infer_timeout_seconds"`
	SweepIntervalSeconds int      `json:"sweep_interval_seconds" yaml:"sweep_interval_seconds" toml:"sweep_interval_seconds" mapstructure:"sweep_interval_seconds"`
	SweepMaxAgeSeconds   int      `json:"sweep_max_age_seconds" yaml:"sweep_max_age_seconds" toml:"sweep_max_age_seconds" mapstructure:"sweep_max_age_seconds"`
	LogLevel             string   `json:"log_level" yaml:"log_level" toml:"log_level" mapstructure:"log_level"`
	LogFormat            string   `json:"log_format" yaml:"log_format" toml:"log_format" mapstructure:"log_format"`
	CORSEnabled          bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" mapstructure:"cors_enabled"`
	CORSOrigins          []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" mapstructure:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
