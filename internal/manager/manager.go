package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"upscaled/internal/scratch"
	"upscaled/pkg/types"
)

// Manager owns the upscaler, the scratch store and admission control.
// One Manager serves the whole process.
type Manager struct {
	mu       sync.RWMutex
	log      zerolog.Logger
	upscaler Upscaler
	store    *scratch.Store

	modelPath      string
	registry       []types.Model
	backend        string
	scale          int
	maxUploadBytes int64

	// Admission: queueCh bounds waiting+running requests, genCh bounds running ones.
	queueCh chan struct{}
	genCh   chan struct{}
	maxWait time.Duration

	publisher EventPublisher
	startTime time.Time
	closed    bool
	lastErr   string

	upscalesTotal atomic.Uint64
	failuresTotal atomic.Uint64

	hostOnce sync.Once
	host     types.HostInfo
}

// Ready reports whether a request would currently be accepted: the manager is
// open, the default weights exist and the backend passes its availability check.
func (m *Manager) Ready() bool {
	return m.SanityCheck().OK()
}

// ListModels returns the default model followed by the registry entries.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Model, 0, len(m.registry)+1)
	out = append(out, m.defaultModel())
	for _, mdl := range m.registry {
		if mdl.Path == m.modelPath {
			continue
		}
		out = append(out, mdl)
	}
	return out
}

// SetEventPublisher swaps the event sink. Nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.publisher = p
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	p.Publish(e)
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
}

// Close releases the upscaler. Requests arriving afterwards fail with 503.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	if c, ok := m.upscaler.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
