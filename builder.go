package goSession

import (
	"errors"
	"time"

	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/storage"
	"github.com/rs/zerolog"
)

// Builder assembles a [Store]. A Builder is single use.
type Builder struct {
	config    Config
	storage   storage.Storage
	client    authclient.Client
	navigator navigation.Navigator
	auditSink AuditSink
	logger    *zerolog.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage sets the durable storage. Required.
func (b *Builder) WithStorage(st storage.Storage) *Builder {
	b.storage = st
	return b
}

// WithAuthClient sets the authentication backend. Required.
func (b *Builder) WithAuthClient(c authclient.Client) *Builder {
	b.client = c
	return b
}

// WithNavigator sets the navigator used when an unauthorized response
// invalidates the session. Without one, HandleUnauthorized only clears state.
func (b *Builder) WithNavigator(n navigation.Navigator) *Builder {
	b.navigator = n
	return b
}

// WithAuditSink sets the audit sink and enables audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = &l
	return b
}

// WithClock overrides time.Now, used for token expiry checks and audit
// timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a Store. The Store is not
// initialized: call [Store.Initialize] before trusting its state.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.storage == nil {
		return nil, errors.New("storage required")
	}
	if b.client == nil {
		return nil, errors.New("auth client required")
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = b.logger.With().Str("component", "session").Logger()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		cfg:       cfg,
		storage:   b.storage,
		client:    b.client,
		navigator: b.navigator,
		logger:    logger,
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:   NewMetrics(cfg.Metrics),
		now:       now,
		subs:      make(map[uint64]func(State)),
	}

	b.built = true
	return s, nil
}
