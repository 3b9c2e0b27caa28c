package cache

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultTtl          = 5 * time.Minute
	DefaultMaxTtl       = 24 * time.Hour
	DefaultWriteTimeout = 10 * time.Second
)

type Builder struct {
	store        *Store
	transport    Transport
	keyer        Keyer
	ttl          time.Duration
	maxTtl       time.Duration
	writeTimeout time.Duration
	logger       zerolog.Logger
}

func NewArbitratorBuilder(store *Store, transport Transport) *Builder {
	return &Builder{
		store:        store,
		transport:    transport,
		keyer:        NewDefaultKeyer(""),
		ttl:          DefaultTtl,
		maxTtl:       DefaultMaxTtl,
		writeTimeout: DefaultWriteTimeout,
		logger:       zerolog.Nop(),
	}
}

func (b *Builder) Build() *Arbitrator {
	return &Arbitrator{
		store:        b.store,
		transport:    b.transport,
		keyer:        b.keyer,
		ttl:          b.ttl,
		maxTtl:       b.maxTtl,
		writeTimeout: b.writeTimeout,
		logger:       b.logger.With().Str("component", "arbitrator").Logger(),
	}
}

// WithTtl sets the expiration used for write-through when a request has no TTL.
func (b *Builder) WithTtl(ttl time.Duration) *Builder {
	b.ttl = ttl

	return b
}

// WithMaxTtl clamps every write-through expiration. Zero disables the clamp.
func (b *Builder) WithMaxTtl(ttl time.Duration) *Builder {
	b.maxTtl = ttl

	return b
}

func (b *Builder) WithKeyer(keyer Keyer) *Builder {
	b.keyer = keyer

	return b
}

func (b *Builder) WithWriteTimeout(timeout time.Duration) *Builder {
	b.writeTimeout = timeout

	return b
}

// WithLogger sets the logger used when the request context carries none.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger

	return b
}
