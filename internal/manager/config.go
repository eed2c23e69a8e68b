package manager

import (
	"time"

	"github.com/rs/zerolog"

	"upscaled/internal/scratch"
	"upscaled/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxConcurrent = 1
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultScale         = 4
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Logger receives structured logs. Nil disables logging.
	Logger *zerolog.Logger
	// Upscaler performs the actual work. Required.
	Upscaler Upscaler
	// Scratch holds the per-request files. Required.
	Scratch *scratch.Store
	// ModelPath is the default weights file, checked on every request.
	ModelPath string
	// Registry lists additional selectable weights.
	Registry []types.Model
	// Backend names the upscaler kind for status output.
	Backend string
	Scale   int
	// MaxUploadBytes bounds the saved upload (0 = unlimited).
	MaxUploadBytes int64
	MaxConcurrent  int
	MaxQueueDepth  int
	MaxWait        time.Duration
	Publisher      EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) (*Manager, error) {
	if cfg.Upscaler == nil {
		return nil, errMissing("Upscaler")
	}
	if cfg.Scratch == nil {
		return nil, errMissing("Scratch")
	}
	if cfg.ModelPath == "" {
		return nil, errMissing("ModelPath")
	}
	m := &Manager{
		upscaler:       cfg.Upscaler,
		store:          cfg.Scratch,
		modelPath:      cfg.ModelPath,
		registry:       append([]types.Model(nil), cfg.Registry...),
		backend:        cfg.Backend,
		scale:          cfg.Scale,
		maxUploadBytes: cfg.MaxUploadBytes,
		maxWait:        cfg.MaxWait,
		publisher:      cfg.Publisher,
		log:            zerolog.Nop(),
		startTime:      time.Now(),
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if m.scale <= 0 {
		m.scale = defaultScale
	}
	if m.maxWait <= 0 {
		m.maxWait = defaultMaxWait
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	conc := cfg.MaxConcurrent
	if conc <= 0 {
		conc = defaultMaxConcurrent
	}
	depth := cfg.MaxQueueDepth
	if depth <= 0 {
		depth = defaultMaxQueueDepth
	}
	// queue slots include the in-flight ones
	if depth < conc {
		depth = conc
	}
	m.genCh = make(chan struct{}, conc)
	m.queueCh = make(chan struct{}, depth)
	return m, nil
}

type configError string

func (e configError) Error() string { return "manager config: " + string(e) + " is required" }

func errMissing(field string) error { return configError(field) }
