package manager

import (
	"context"
	"time"

	"upscaled/internal/common/fsutil"
)

const checkTimeout = 2 * time.Second

// SanityReport describes runtime checks for the weights and the backend.
type SanityReport struct {
	Backend          string `json:"backend"`
	ModelPath        string `json:"model_path"`
	ModelFound       bool   `json:"model_found"`
	BackendAvailable bool   `json:"backend_available"`
	Error            string `json:"error,omitempty"`
}

// OK reports whether requests can be served.
func (r SanityReport) OK() bool { return r.ModelFound && r.BackendAvailable && r.Error == "" }

// SanityCheck validates the weights file and probes the upscaler when it
// supports it. It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	m.mu.RLock()
	r := SanityReport{Backend: m.backendLabel(), ModelPath: m.modelPath}
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		r.Error = errManagerClosed.Error()
		return r
	}
	r.ModelFound = fsutil.IsRegularFile(r.ModelPath)
	r.BackendAvailable = true
	if c, ok := m.upscaler.(Checker); ok {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		if err := c.Check(ctx); err != nil {
			r.BackendAvailable = false
			r.Error = err.Error()
		}
	}
	if !r.ModelFound && r.Error == "" {
		r.Error = modelFileMissingError{path: r.ModelPath}.Error()
	}
	return r
}
