package types

// WelcomeResponse is returned by GET /.
type WelcomeResponse struct {
	// example: Welcome to the Real-ESRGAN Upscaler API. Use the /docs endpoint to see the API documentation.
	Message string `json:"message" example:"Welcome to the Real-ESRGAN Upscaler API. Use the /docs endpoint to see the API documentation."`
}

// ModelsResponse wraps the list of weights returned by GET /models.
type ModelsResponse struct {
	// List of available weights files.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: File provided is not an accepted image type.
	Error string `json:"error" example:"File provided is not an accepted image type."`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// HostInfo describes the machine running the upscaler.
type HostInfo struct {
	// example: gpu-box-01
	Hostname string `json:"hostname,omitempty" example:"gpu-box-01"`
	// example: linux ubuntu
	OS string `json:"os,omitempty" example:"linux ubuntu"`
	// example: AMD Ryzen 9 7950X 16-Core Processor
	CPU string `json:"cpu,omitempty" example:"AMD Ryzen 9 7950X 16-Core Processor"`
	// example: 32
	Cores int `json:"cores,omitempty" example:"32"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall state: ready, degraded or closed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Upscaler backend in use (exec, http, resample).
	// example: exec
	Backend string `json:"backend" example:"exec"`
	// Configured default weights path.
	// example: RealESRGAN_x4plus.pth
	ModelPath string `json:"model_path" example:"RealESRGAN_x4plus.pth"`
	// Whether the default weights file currently exists.
	// example: true
	ModelPresent bool `json:"model_present" example:"true"`
	// Upscale factor passed to the backend.
	// example: 4
	Scale int `json:"scale" example:"4"`
	// Number of upscale calls currently running.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Number of requests waiting for an upscaler slot.
	// example: 3
	QueueLen int `json:"queue_len" example:"3"`
	// Maximum concurrent upscale calls.
	// example: 1
	MaxConcurrent int `json:"max_concurrent" example:"1"`
	// Maximum admitted requests (running + waiting) before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Total successful upscales since start.
	// example: 120
	UpscalesTotal uint64 `json:"upscales_total" example:"120"`
	// Total failed upscales since start.
	// example: 2
	FailuresTotal uint64 `json:"failures_total" example:"2"`
	// Temp files currently in scratch storage.
	// example: 0
	ScratchFiles int `json:"scratch_files" example:"0"`
	// Last error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Host description.
	Host HostInfo `json:"host"`
}
