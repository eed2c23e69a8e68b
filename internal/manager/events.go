package manager

// Event names published by the manager.
const (
	EventUpscaleStart    = "upscale_start"
	EventUpscaleDone     = "upscale_done"
	EventUpscaleFailed   = "upscale_failed"
	EventUpscaleRejected = "upscale_rejected"
	EventCleanup         = "cleanup"
)

// Event represents a manager lifecycle event.
// ID is the scratch pair id of the request, empty when none was allocated.
type Event struct {
	Name    string
	ID      string
	ModelID string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
