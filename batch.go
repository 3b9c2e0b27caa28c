package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// BatchItem is one unit of a batch. Tag tells the caller which result shape to expect.
// Exec, when set, is used instead of resolving Request.
type BatchItem struct {
	Tag     string
	Request *Request
	Exec    func(ctx context.Context) Envelope[*Response]
}

// BatchOutcome is a successful item result.
type BatchOutcome struct {
	Index    int
	Tag      string
	Envelope Envelope[*Response]
}

// BatchResult is the single terminal value of a batch: either every outcome, in
// completion order, or the first failure. Never both.
type BatchResult struct {
	id       string
	outcomes []BatchOutcome
	err      error
}

func (r BatchResult) ID() string { return r.id }

func (r BatchResult) Err() error { return r.err }

// Outcomes returns the successes in completion order, or nil when the batch failed.
func (r BatchResult) Outcomes() []BatchOutcome {
	if r.err != nil {
		return nil
	}

	return r.outcomes
}

// BatchCoordinator runs independent requests concurrently and joins their results.
type BatchCoordinator struct {
	resolver    Resolver
	concurrency int
	logger      zerolog.Logger

	mu   sync.Mutex
	runs []*sync.WaitGroup
}

type BatchOption func(*BatchCoordinator)

// WithConcurrency bounds the number of items in flight. Zero or negative means one slot
// per item.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchCoordinator) {
		b.concurrency = n
	}
}

func WithBatchLogger(logger zerolog.Logger) BatchOption {
	return func(b *BatchCoordinator) {
		b.logger = logger
	}
}

func NewBatchCoordinator(resolver Resolver, opts ...BatchOption) *BatchCoordinator {
	b := &BatchCoordinator{
		resolver: resolver,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Run executes items and returns as soon as the result is terminal. The first failure
// finalizes the batch, cancels the items still running and discards whatever they
// report afterwards. Run does not wait for those stragglers; see Wait.
func (b *BatchCoordinator) Run(ctx context.Context, items []BatchItem) BatchResult {
	id := uuid.NewString()

	if len(items) == 0 {
		return BatchResult{id: id, err: errors.WithStack(ErrEmptyBatch)}
	}

	limit := b.concurrency
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	logger := b.loggerFor(ctx).With().Str("component", "batch").Str("batch_id", id).Logger()
	ctx = logger.WithContext(ctx)

	ctx, span := tracer().Start(ctx, "cache.batch", trace.WithAttributes(
		attribute.String("cache.batch_id", id),
		attribute.Int("cache.batch.items", len(items)),
		attribute.Int("cache.batch.concurrency", limit),
	))

	batchCtx, cancel := context.WithCancel(ctx)
	agg := newBatchAggregate(len(items))
	sem := semaphore.NewWeighted(int64(limit))

	wg := b.track()
	go func() {
		defer wg.Done()

		for i, item := range items {
			if err := sem.Acquire(batchCtx, 1); err != nil {
				return
			}
			if agg.isDone() {
				sem.Release(1)
				return
			}

			wg.Add(1)
			go func(i int, item BatchItem) {
				defer wg.Done()
				defer sem.Release(1)

				env := b.execute(batchCtx, item)
				if agg.complete(BatchOutcome{Index: i, Tag: item.Tag, Envelope: env}) && env.Err != nil {
					cancel()
				}
			}(i, item)
		}
	}()

	select {
	case <-agg.finished:
	case <-ctx.Done():
		agg.fail(errors.Wrap(ErrCancelled, ctx.Err().Error()))
	}
	cancel()

	result := agg.result(id)
	if result.err != nil {
		logger.Warn().Err(result.err).Msg("batch failed")
	} else {
		logger.Debug().Int("items", len(result.outcomes)).Msg("batch completed")
	}
	endSpan(span, result.err)

	return result
}

// Wait blocks until every goroutine started by Run calls that returned before Wait was
// called has exited. Runs started concurrently with Wait may or may not be waited for.
func (b *BatchCoordinator) Wait() {
	b.mu.Lock()
	runs := append([]*sync.WaitGroup(nil), b.runs...)
	b.mu.Unlock()

	for _, wg := range runs {
		wg.Wait()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := b.runs[:0]
	for _, wg := range b.runs {
		if !containsRun(runs, wg) {
			remaining = append(remaining, wg)
		}
	}
	b.runs = remaining
}

// track registers the goroutines of one run. The returned group already counts the
// dispatcher, so it never drops to zero while item goroutines are still being added.
func (b *BatchCoordinator) track() *sync.WaitGroup {
	wg := &sync.WaitGroup{}
	wg.Add(1)

	b.mu.Lock()
	b.runs = append(b.runs, wg)
	b.mu.Unlock()

	return wg
}

func containsRun(runs []*sync.WaitGroup, wg *sync.WaitGroup) bool {
	for _, r := range runs {
		if r == wg {
			return true
		}
	}

	return false
}

func (b *BatchCoordinator) execute(ctx context.Context, item BatchItem) Envelope[*Response] {
	if ctx.Err() != nil {
		return Failure[*Response](errors.Wrap(ErrCancelled, ctx.Err().Error()))
	}

	switch {
	case item.Exec != nil:
		return item.Exec(ctx)
	case item.Request == nil:
		return Failure[*Response](errors.Errorf("batch item %q has neither request nor exec", item.Tag))
	case b.resolver == nil:
		return Failure[*Response](errors.New("resolver is not defined"))
	default:
		return b.resolver.Resolve(ctx, item.Request)
	}
}

func (b *BatchCoordinator) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}

	return &b.logger
}

// batchAggregate is the only shared state of a batch. Appending a result and checking
// whether the batch is already terminal happen under one lock.
type batchAggregate struct {
	mu       sync.Mutex
	done     bool
	pending  int
	outcomes []BatchOutcome
	err      error
	finished chan struct{}
}

func newBatchAggregate(n int) *batchAggregate {
	return &batchAggregate{
		pending:  n,
		outcomes: make([]BatchOutcome, 0, n),
		finished: make(chan struct{}),
	}
}

// complete records one item result. It returns false when the batch was already
// terminal and the result was discarded.
func (a *batchAggregate) complete(o BatchOutcome) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done {
		return false
	}

	if o.Envelope.Err != nil {
		a.finalize(&BatchItemError{Index: o.Index, Tag: o.Tag, Err: o.Envelope.Err})
		return true
	}

	a.outcomes = append(a.outcomes, o)
	a.pending--
	if a.pending == 0 {
		a.finalize(nil)
	}

	return true
}

func (a *batchAggregate) fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.done {
		a.finalize(err)
	}
}

// finalize must be called with mu held.
func (a *batchAggregate) finalize(err error) {
	a.done = true
	a.err = err
	if err != nil {
		a.outcomes = nil
	}
	close(a.finished)
}

func (a *batchAggregate) isDone() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.done
}

func (a *batchAggregate) result(id string) BatchResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	return BatchResult{id: id, outcomes: a.outcomes, err: a.err}
}
