package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Arbitrator decides per request whether to answer from the cache tiers or the
// transport. It holds no per-call state and is safe for concurrent use.
type Arbitrator struct {
	store        *Store
	transport    Transport
	keyer        Keyer
	ttl          time.Duration
	maxTtl       time.Duration
	writeTimeout time.Duration
	logger       zerolog.Logger
}

// Arbitrate resolves req according to its policy. The returned channel yields at most
// two envelopes and is closed after the last one. CacheThenServer, and Custom policies
// without Replace, may yield a cache hit followed by the network result; every other
// policy yields exactly one envelope.
func (a *Arbitrator) Arbitrate(ctx context.Context, req *Request) <-chan Envelope[*Response] {
	d := &delivery{out: make(chan Envelope[*Response], 2)}

	if req == nil {
		d.out <- Failure[*Response](errors.New("request is nil"))
		close(d.out)
		return d.out
	}

	ctx = a.withLogger(ctx)
	ctx, d.span = tracer().Start(ctx, "cache.arbitrate", trace.WithAttributes(
		attribute.String("cache.policy", req.Policy.String()),
		attribute.String("cache.tier", req.Tier.String()),
		attribute.String("http.method", req.Method),
		attribute.String("cache.endpoint", req.Endpoint),
	))

	var key string
	if req.Policy.readsCache() || req.Policy.writesCache() {
		var err error
		if key, err = a.keyer.Key(req); err != nil {
			d.send(Failure[*Response](errors.Wrap(err, "can not derive cache key")))
			d.finish()
			return d.out
		}
		d.span.SetAttributes(attribute.String("cache.key", key))
	}

	if !req.Policy.readsCache() {
		go func() {
			d.send(a.fetch(ctx, req, key))
			d.finish()
		}()
		return d.out
	}

	if ctx.Err() != nil {
		d.send(cancelled(ctx))
		d.finish()
		return d.out
	}

	hit, found := a.lookup(ctx, req.Tier, key)

	// a disk read interrupted by cancellation is not a miss
	if ctx.Err() != nil {
		d.send(cancelled(ctx))
		d.finish()
		return d.out
	}

	if found {
		if !req.Policy.fetchOnHit(hit) {
			d.send(hit)
			d.finish()
			return d.out
		}

		replace := !req.Policy.deliversHitBeforeFetch()
		if !replace {
			d.send(hit)
		}

		go func() {
			env := a.fetch(ctx, req, key)
			switch {
			case replace || env.Err == nil:
				d.send(env)
			case errors.Is(env.Err, ErrCancelled):
				// nothing more for a cancelled caller
			default:
				// the hit already delivered stays the terminal value
				zerolog.Ctx(ctx).Warn().Err(env.Err).Str("key", key).Msg("revalidation after cache hit failed")
			}
			d.finish()
		}()
		return d.out
	}

	missErr := errors.WithStack(ErrNotFound)
	if !req.Policy.fetchOnMiss(missErr) {
		d.send(Failure[*Response](missErr))
		d.finish()
		return d.out
	}

	go func() {
		d.send(a.fetch(ctx, req, key))
		d.finish()
	}()

	return d.out
}

// Resolve waits for every envelope of req and returns the last, freshest one.
func (a *Arbitrator) Resolve(ctx context.Context, req *Request) Envelope[*Response] {
	var last Envelope[*Response]
	for env := range a.Arbitrate(ctx, req) {
		last = env
	}

	return last
}

// ReadCache reads req's entry from the given tier only, never touching the network.
func (a *Arbitrator) ReadCache(ctx context.Context, req *Request, tier Tier) Envelope[*Response] {
	if req == nil {
		return Failure[*Response](errors.New("request is nil"))
	}

	ctx = a.withLogger(ctx)

	key, err := a.keyer.Key(req)
	if err != nil {
		return Failure[*Response](errors.Wrap(err, "can not derive cache key"))
	}

	if ctx.Err() != nil {
		return cancelled(ctx)
	}

	hit, found := a.lookup(ctx, tier, key)
	if ctx.Err() != nil {
		return cancelled(ctx)
	}
	if found {
		return hit
	}

	return Failure[*Response](errors.WithStack(ErrNotFound))
}

func (a *Arbitrator) lookup(ctx context.Context, tier Tier, key string) (Envelope[*Response], bool) {
	if a.store == nil {
		return Envelope[*Response]{}, false
	}

	entry, hitTier, err := a.store.Lookup(ctx, tier, key)
	if entry == nil {
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("cache lookup failed, treating as miss")
		}
		return Envelope[*Response]{}, false
	}

	return CacheHit(entry.Response.Clone(), hitTier), true
}

func (a *Arbitrator) fetch(ctx context.Context, req *Request, key string) Envelope[*Response] {
	if a.transport == nil {
		return Failure[*Response](errors.WithStack(ErrNoTransport))
	}

	if ctx.Err() != nil {
		return cancelled(ctx)
	}

	res, err := a.transport.Execute(ctx, req)

	// a result that raced with cancellation is never delivered
	if ctx.Err() != nil {
		return cancelled(ctx)
	}

	if err != nil {
		return Failure[*Response](transportFailure(err))
	}

	if req.Policy.writesCache() && key != "" {
		a.writeThrough(ctx, req, key, res)
	}

	return Success(res)
}

func cancelled(ctx context.Context) Envelope[*Response] {
	return Failure[*Response](errors.Wrap(ErrCancelled, ctx.Err().Error()))
}

func (a *Arbitrator) writeThrough(ctx context.Context, req *Request, key string, res *Response) {
	if a.store == nil || res == nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.writeTimeout)
	defer cancel()

	if err := a.store.Save(writeCtx, key, res, a.effectiveTtl(req.TTL)); err != nil {
		zerolog.Ctx(ctx).Err(err).Str("key", key).Msg("can not write response to cache")
	}
}

func (a *Arbitrator) effectiveTtl(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = a.ttl
	}

	if a.maxTtl > 0 && ttl > a.maxTtl {
		ttl = a.maxTtl
	}

	return ttl
}

func (a *Arbitrator) withLogger(ctx context.Context) context.Context {
	if zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
		return a.logger.WithContext(ctx)
	}

	return ctx
}

// delivery is owned by exactly one goroutine at a time.
type delivery struct {
	out  chan Envelope[*Response]
	span trace.Span
	sent int
	last error
}

func (d *delivery) send(env Envelope[*Response]) {
	d.out <- env
	d.sent++
	d.last = env.Err
}

func (d *delivery) finish() {
	if d.sent > 0 {
		d.span.SetAttributes(attribute.Int("cache.deliveries", d.sent))
	}
	endSpan(d.span, d.last)
	close(d.out)
}

var _ Resolver = (*Arbitrator)(nil)
