package config

import (
	"fmt"
	"strings"
)

// Defaults returns the configuration used when nothing else is specified.
// Paths mirror the layout the service has always used: weights next to the
// binary, scratch directories under the working directory.
func Defaults() Config {
	return Config{
		Addr:                 ":8080",
		ModelPath:            "RealESRGAN_x4plus.pth",
		UploadsDir:           "uploads",
		OutputsDir:           "outputs",
		Scale:                4,
		Backend:              BackendExec,
		UpscalerBin:          "realesrgan-ncnn-vulkan",
		MaxUploadMB:          50,
		MaxConcurrent:        1,
		MaxQueueDepth:        32,
		MaxWaitSeconds:       30,
		SweepIntervalSeconds: 300,
		SweepMaxAgeSeconds:   3600,
		LogLevel:             "info",
		LogFormat:            "console",
	}
}

// Merge overlays the non-zero fields of o onto c and returns the result.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.ModelPath != "" {
		c.ModelPath = o.ModelPath
	}
	if o.ModelsDir != "" {
		c.ModelsDir = o.ModelsDir
	}
	if o.UploadsDir != "" {
		c.UploadsDir = o.UploadsDir
	}
	if o.OutputsDir != "" {
		c.OutputsDir = o.OutputsDir
	}
	if o.Scale != 0 {
		c.Scale = o.Scale
	}
	if o.Backend != "" {
		c.Backend = o.Backend
	}
	if o.UpscalerBin != "" {
		c.UpscalerBin = o.UpscalerBin
	}
	if len(o.UpscalerArgs) > 0 {
		c.UpscalerArgs = append([]string(nil), o.UpscalerArgs...)
	}
	if o.UpscalerURL != "" {
		c.UpscalerURL = o.UpscalerURL
	}
	if o.MaxUploadMB != 0 {
		c.MaxUploadMB = o.MaxUploadMB
	}
	if o.MaxConcurrent != 0 {
		c.MaxConcurrent = o.MaxConcurrent
	}
	if o.MaxQueueDepth != 0 {
		c.MaxQueueDepth = o.MaxQueueDepth
	}
	if o.MaxWaitSeconds != 0 {
		c.MaxWaitSeconds = o.MaxWaitSeconds
	}
	if o.InferTimeoutSeconds != 0 {
		c.InferTimeoutSeconds = o.InferTimeoutSeconds
	}
	if o.SweepIntervalSeconds != 0 {
		c.SweepIntervalSeconds = o.SweepIntervalSeconds
	}
	if o.SweepMaxAgeSeconds != 0 {
		c.SweepMaxAgeSeconds = o.SweepMaxAgeSeconds
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.CORSEnabled {
		c.CORSEnabled = true
	}
	if len(o.CORSOrigins) > 0 {
		c.CORSOrigins = append([]string(nil), o.CORSOrigins...)
	}
	return c
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	if strings.TrimSpace(c.ModelPath) == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.UploadsDir == "" || c.OutputsDir == "" {
		return fmt.Errorf("uploads_dir and outputs_dir are required")
	}
	if c.Scale < 1 || c.Scale > 16 {
		return fmt.Errorf("scale must be between 1 and 16, got %d", c.Scale)
	}
	switch c.Backend {
	case BackendExec:
		if strings.TrimSpace(c.UpscalerBin) == "" {
			return fmt.Errorf("upscaler_bin is required for the %s backend", c.Backend)
		}
	case BackendHTTP:
		if strings.TrimSpace(c.UpscalerURL) == "" {
			return fmt.Errorf("upscaler_url is required for the %s backend", c.Backend)
		}
	case BackendResample:
	default:
		return fmt.Errorf("unknown backend %q (want exec, http or resample)", c.Backend)
	}
	if c.MaxConcurrent < 0 || c.MaxQueueDepth < 0 || c.MaxWaitSeconds < 0 || c.InferTimeoutSeconds < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be at least 1, got %d", c.MaxUploadMB)
	}
	return nil
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
