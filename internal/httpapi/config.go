package httpapi

import "time"

const defaultMaxUploadBytes int64 = 50 << 20

// multipartSlack covers boundaries, part headers and small form fields on
// top of the file itself. The manager enforces the exact file limit.
const multipartSlack int64 = 1 << 20

// maxUploadBytes bounds the size of an uploaded image.
var maxUploadBytes = defaultMaxUploadBytes

// SetMaxUploadBytes configures the maximum upload size (<= 0 restores the default).
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
		return
	}
	maxUploadBytes = n
}

// inferTimeout bounds one upscale call. Zero means no additional timeout
// beyond server/connection timeouts.
var inferTimeout = int64(0) // seconds

// SetInferTimeoutSeconds sets the upscale timeout in seconds (0 disables).
func SetInferTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	inferTimeout = sec
}

func inferTimeoutDuration() time.Duration { return time.Duration(inferTimeout) * time.Second }

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
// Empty methods or headers fall back to what the upload form needs.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
