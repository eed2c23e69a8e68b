package manager

import (
	"time"

	"upscaled/pkg/types"
)

// State summarizes whether the manager can serve requests.
type State string

const (
	StateReady    State = "ready"
	StateDegraded State = "degraded"
	StateClosed   State = "closed"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	report := m.SanityCheck()
	state := StateReady
	switch {
	case m.isClosed():
		state = StateClosed
	case !report.OK():
		state = StateDegraded
	}
	files, _ := m.store.Count()
	m.mu.RLock()
	defer m.mu.RUnlock()
	inflight := len(m.genCh)
	queued := len(m.queueCh) - inflight
	if queued < 0 {
		queued = 0
	}
	return types.StatusResponse{
		State:          string(state),
		Backend:        report.Backend,
		ModelPath:      m.modelPath,
		ModelPresent:   report.ModelFound,
		Scale:          m.scale,
		Inflight:       inflight,
		QueueLen:       queued,
		MaxConcurrent:  cap(m.genCh),
		MaxQueueDepth:  cap(m.queueCh),
		UpscalesTotal:  m.upscalesTotal.Load(),
		FailuresTotal:  m.failuresTotal.Load(),
		ScratchFiles:   files,
		LastError:      m.lastErr,
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		Host:           m.hostInfo(),
	}
}
