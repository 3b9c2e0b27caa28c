package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ChainStatus int

const (
	ChainIdle ChainStatus = iota
	ChainRunning
	ChainFailed
	ChainCompleted
)

func (s ChainStatus) String() string {
	switch s {
	case ChainRunning:
		return "running"
	case ChainFailed:
		return "failed"
	case ChainCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// ChainState is the position of a chain. Index is the link running or failed.
type ChainState struct {
	Status ChainStatus
	Index  int
}

// ChainLink is one step of a chain. Transform, if set, builds the request actually sent
// from the previous link's response; it is ignored on the first link.
type ChainLink struct {
	Request   *Request
	Transform func(prev *Response, next *Request) (*Request, error)
}

// ChainProgress is called after every successful link, in link order.
type ChainProgress func(index int, env Envelope[*Response])

// ChainOutcome is the single terminal value of a chain. On failure Err is a
// *ChainLinkError and Results is nil.
type ChainOutcome struct {
	ID      string
	Results []Envelope[*Response]
	Err     error
}

// Chain runs dependent requests strictly in order. An instance runs one chain once.
type Chain struct {
	resolver Resolver
	logger   zerolog.Logger
	id       string

	mu      sync.Mutex
	links   []ChainLink
	state   ChainState
	started bool
}

type ChainOption func(*Chain)

func WithChainLogger(logger zerolog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

func NewChain(resolver Resolver, opts ...ChainOption) *Chain {
	c := &Chain{
		resolver: resolver,
		logger:   zerolog.Nop(),
		id:       uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Chain) ID() string {
	return c.id
}

// Add appends a link. It fails with ErrChainStarted once Run was called.
func (c *Chain) Add(link ChainLink) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return errors.WithStack(ErrChainStarted)
	}
	if link.Request == nil {
		return errors.New("chain link request is nil")
	}

	c.links = append(c.links, link)

	return nil
}

// Then is shorthand for Add(ChainLink{Request: req, Transform: transform}).
func (c *Chain) Then(req *Request, transform func(prev *Response, next *Request) (*Request, error)) error {
	return c.Add(ChainLink{Request: req, Transform: transform})
}

func (c *Chain) State() ChainState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Chain) setState(status ChainStatus, index int) {
	c.mu.Lock()
	c.state = ChainState{Status: status, Index: index}
	c.mu.Unlock()
}

// Run dispatches the links one at a time. Link i+1 starts only after link i succeeded;
// the first failure stops the chain and no later link is dispatched.
func (c *Chain) Run(ctx context.Context, progress ChainProgress) ChainOutcome {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ChainOutcome{ID: c.id, Err: errors.WithStack(ErrChainStarted)}
	}
	c.started = true
	links := c.links
	c.mu.Unlock()

	if len(links) == 0 {
		c.setState(ChainFailed, 0)
		return ChainOutcome{ID: c.id, Err: errors.WithStack(ErrEmptyChain)}
	}

	logger := c.loggerFor(ctx).With().Str("component", "chain").Str("chain_id", c.id).Logger()
	ctx = logger.WithContext(ctx)

	ctx, span := tracer().Start(ctx, "cache.chain", trace.WithAttributes(
		attribute.String("cache.chain_id", c.id),
		attribute.Int("cache.chain.links", len(links)),
	))

	results := make([]Envelope[*Response], 0, len(links))
	var prev *Response

	for i, link := range links {
		c.setState(ChainRunning, i)

		env := c.dispatch(ctx, i, link, prev)
		if env.Err != nil {
			c.setState(ChainFailed, i)

			err := &ChainLinkError{Index: i, Err: env.Err}
			logger.Warn().Err(env.Err).Int("link", i).Msg("chain link failed")
			span.SetAttributes(attribute.Int("cache.chain.failed_link", i))
			endSpan(span, err)

			return ChainOutcome{ID: c.id, Err: err}
		}

		results = append(results, env)
		prev = env.Value

		if progress != nil {
			progress(i, env)
		}
	}

	c.setState(ChainCompleted, len(links)-1)
	logger.Debug().Int("links", len(links)).Msg("chain completed")
	endSpan(span, nil)

	return ChainOutcome{ID: c.id, Results: results}
}

func (c *Chain) dispatch(ctx context.Context, i int, link ChainLink, prev *Response) Envelope[*Response] {
	if ctx.Err() != nil {
		return Failure[*Response](errors.Wrap(ErrCancelled, ctx.Err().Error()))
	}

	req := link.Request
	if i > 0 && link.Transform != nil {
		next, err := link.Transform(prev, req)
		if err != nil {
			return Failure[*Response](errors.Wrap(err, "chain transform failed"))
		}
		if next == nil {
			return Failure[*Response](errors.New("chain transform returned nil request"))
		}
		req = next
	}

	if c.resolver == nil {
		return Failure[*Response](errors.New("resolver is not defined"))
	}

	return c.resolver.Resolve(ctx, req)
}

func (c *Chain) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}

	return &c.logger
}
