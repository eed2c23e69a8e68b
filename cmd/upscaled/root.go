package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"upscaled/internal/config"
)

// configKeys are the viper keys; each has a flag with dashes for underscores
// and an UPSCALED_ prefixed env var.
var configKeys = []string{
	"addr", "model_path", "models_dir", "uploads_dir", "outputs_dir", "scale",
	"backend", "upscaler_bin", "upscaler_args", "upscaler_url",
	"max_upload_mb", "max_concurrent", "max_queue_depth", "max_wait_seconds",
	"infer_timeout_seconds", "sweep_interval_seconds", "sweep_max_age_seconds",
	"log_level", "log_format", "cors_enabled", "cors_origins",
}

func flagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

func newRootCmd() *cobra.Command {
	var cfgFile string
	d := config.Defaults()
	cmd := &cobra.Command{
		Use:          "upscaled",
		Short:        "HTTP service that upscales images with Real-ESRGAN",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	f.String("addr", d.Addr, "HTTP listen address, e.g. :8080")
	f.String("model-path", d.ModelPath, "Default Real-ESRGAN weights file")
	f.String("models-dir", d.ModelsDir, "Directory to scan for additional weights")
	f.String("uploads-dir", d.UploadsDir, "Scratch directory for uploaded images")
	f.String("outputs-dir", d.OutputsDir, "Scratch directory for upscaled images")
	f.Int("scale", d.Scale, "Upscale factor passed to the backend")
	f.String("backend", d.Backend, "Upscaler backend: exec, http or resample")
	f.String("upscaler-bin", d.UpscalerBin, "Upscaler executable for the exec backend")
	f.StringSlice("upscaler-args", d.UpscalerArgs, "Argument template for the exec backend ({input} {output} {scale} {model} {model_dir} {model_name})")
	f.String("upscaler-url", d.UpscalerURL, "Upscaler endpoint for the http backend")
	f.Int("max-upload-mb", d.MaxUploadMB, "Maximum upload size in MiB")
	f.Int("max-concurrent", d.MaxConcurrent, "Maximum concurrent upscales")
	f.Int("max-queue-depth", d.MaxQueueDepth, "Maximum admitted requests (running + waiting)")
	f.Int("max-wait-seconds", d.MaxWaitSeconds, "Maximum time a request waits for a slot before 429")
	f.Int("infer-timeout-seconds", d.InferTimeoutSeconds, "Per-request upscale timeout (0 = none)")
	f.Int("sweep-interval-seconds", d.SweepIntervalSeconds, "Interval of the stale scratch file sweeper (0 = off)")
	f.Int("sweep-max-age-seconds", d.SweepMaxAgeSeconds, "Age after which scratch files are swept")
	f.String("log-level", d.LogLevel, "Log level: debug|info|warn|error")
	f.String("log-format", d.LogFormat, "Log format: console|json")
	f.Bool("cors-enabled", d.CORSEnabled, "Enable CORS")
	f.StringSlice("cors-origins", d.CORSOrigins, "Comma-separated allowed CORS origins")
	return cmd
}

// loadConfig layers flags over UPSCALED_* env vars over the config file over defaults.
func loadConfig(cmd *cobra.Command, path string) (config.Config, error) {
	base := config.Defaults()
	if path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
		base = base.Merge(fileCfg)
	}

	v := viper.New()
	setDefaults(v, base)
	v.SetEnvPrefix("UPSCALED")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if f := cmd.Flags().Lookup(flagName(key)); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, err
			}
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = splitCSV(strings.Join(cfg.CORSOrigins, ","))
	// a single env value holds the whole template
	if len(cfg.UpscalerArgs) == 1 {
		cfg.UpscalerArgs = strings.Fields(cfg.UpscalerArgs[0])
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, c config.Config) {
	v.SetDefault("addr", c.Addr)
	v.SetDefault("model_path", c.ModelPath)
	v.SetDefault("models_dir", c.ModelsDir)
	v.SetDefault("uploads_dir", c.UploadsDir)
	v.SetDefault("outputs_dir", c.OutputsDir)
	v.SetDefault("scale", c.Scale)
	v.SetDefault("backend", c.Backend)
	v.SetDefault("upscaler_bin", c.UpscalerBin)
	v.SetDefault("upscaler_args", c.UpscalerArgs)
	v.SetDefault("upscaler_url", c.UpscalerURL)
	v.SetDefault("max_upload_mb", c.MaxUploadMB)
	v.SetDefault("max_concurrent", c.MaxConcurrent)
	v.SetDefault("max_queue_depth", c.MaxQueueDepth)
	v.SetDefault("max_wait_seconds", c.MaxWaitSeconds)
	v.SetDefault("infer_timeout_seconds", c.InferTimeoutSeconds)
	v.SetDefault("sweep_interval_seconds", c.SweepIntervalSeconds)
	v.SetDefault("sweep_max_age_seconds", c.SweepMaxAgeSeconds)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("log_format", c.LogFormat)
	v.SetDefault("cors_enabled", c.CORSEnabled)
	v.SetDefault("cors_origins", c.CORSOrigins)
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
