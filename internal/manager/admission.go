package manager

import (
	"context"
	"time"
)

// beginUpscale reserves a queue slot and then an in-flight slot.
// Returns a release func to be deferred.
func (m *Manager) beginUpscale(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	if m.isClosed() {
		return func() {}, errManagerClosed
	}

	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case m.queueCh <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{waited: m.maxWait.String()}
	}
	m.observeQueue()

	acquired := false
	defer func() {
		if !acquired {
			<-m.queueCh
			m.observeQueue()
		}
	}()
	// the wait budget covers both stages
	select {
	case m.genCh <- struct{}{}:
		acquired = true
		inflightUpscales.Inc()
		m.observeQueue()
		return func() {
			<-m.genCh
			<-m.queueCh
			inflightUpscales.Dec()
			m.observeQueue()
		}, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{waited: m.maxWait.String()}
	}
}

// observeQueue publishes the number of requests waiting for an in-flight slot.
func (m *Manager) observeQueue() {
	n := len(m.queueCh) - len(m.genCh)
	if n < 0 {
		n = 0
	}
	queueLength.Set(float64(n))
}
