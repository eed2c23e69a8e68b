package manager

import (
	"path/filepath"
	"strings"

	"upscaled/pkg/types"
)

// defaultModel describes the configured weights. Callers hold m.mu.
func (m *Manager) defaultModel() types.Model {
	base := filepath.Base(m.modelPath)
	return types.Model{
		ID:      base,
		Name:    strings.TrimSuffix(base, filepath.Ext(base)),
		Path:    m.modelPath,
		Scale:   m.scale,
		Default: true,
	}
}

// resolveModel maps a request's model id to weights. Empty selects the default.
func (m *Manager) resolveModel(id string) (types.Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def := m.defaultModel()
	if id == "" || id == def.ID {
		return def, nil
	}
	if mdl, ok := m.getModelByID(id); ok {
		if mdl.Scale == 0 {
			mdl.Scale = m.scale
		}
		return mdl, nil
	}
	return types.Model{}, modelNotFoundError{id: id}
}

// getModelByID finds a registry entry. Callers hold m.mu.
func (m *Manager) getModelByID(id string) (types.Model, bool) {
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// acceptedContentTypes are the declared upload types the service takes.
var acceptedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// acceptedContentType reports whether ct (parameters and case ignored) is allowed.
func acceptedContentType(ct string) bool {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return acceptedContentTypes[strings.ToLower(strings.TrimSpace(ct))]
}
