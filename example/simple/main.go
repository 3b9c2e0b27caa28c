package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	cache "github.com/skynet2/response-cache"
)

const ModelVersion = uint16(1)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	var calls atomic.Int32
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch {
		case r.URL.Path == "/login":
			_, _ = w.Write([]byte("token-42"))
		case r.URL.Path == "/profile":
			_, _ = fmt.Fprintf(w, "profile for %s", r.Header.Get("Authorization"))
		case strings.HasPrefix(r.URL.Path, "/broken"):
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = fmt.Fprintf(w, "%s?%s (origin call %d)", r.URL.Path, r.URL.RawQuery, n)
		}
	}))
	defer origin.Close()

	disk, err := cache.NewSQLiteCache(filepath.Join(os.TempDir(), "response-cache-example.db"))
	if err != nil {
		logger.Fatal().Err(err).Msg("can not open disk cache")
	}
	defer disk.Close()

	store := cache.NewStore(cache.NewLRUCache(1000, time.Hour), disk, ModelVersion)
	transport := cache.NewHTTPTransport(
		cache.WithBaseURL(origin.URL),
		cache.WithRateLimit(rate.Limit(50), 10),
	)

	arb := cache.NewArbitratorBuilder(store, transport).
		WithTtl(5 * time.Minute).
		WithKeyer(cache.NewDefaultKeyer("example")).
		WithLogger(logger).
		Build()

	users := cache.NewRequest(http.MethodGet, "/users", cache.WithParams(map[string]any{"page": 1}))

	show := func(label string, env cache.Envelope[*cache.Response]) {
		if env.Err != nil {
			logger.Info().Str("call", label).Err(env.Err).Msg("failed")
			return
		}
		logger.Info().Str("call", label).Bool("from_cache", env.FromCache).
			Str("tier", env.Tier.String()).Str("body", string(env.Value.Body)).Msg("delivered")
	}

	show("cache_only before warmup", arb.Resolve(ctx, users.With(cache.WithPolicy(cache.CacheOnlyPolicy()))))
	show("no_cache", arb.Resolve(ctx, users.With(cache.WithPolicy(cache.NoCachePolicy()))))
	show("cache_preferred miss", arb.Resolve(ctx, users))
	show("cache_preferred hit", arb.Resolve(ctx, users))
	show("server_only", arb.Resolve(ctx, users.With(cache.WithPolicy(cache.ServerOnlyPolicy()))))

	for env := range arb.Arbitrate(ctx, users.With(cache.WithPolicy(cache.CacheThenServerPolicy()))) {
		show("cache_then_server", env)
	}

	refreshOldEntries := cache.CustomPolicy(cache.CustomRules{
		ShouldFetchFromNetwork: func(hit cache.Envelope[*cache.Response]) bool {
			return time.Since(hit.Value.ReceivedAt) > time.Second
		},
		ShouldFetchOnCacheMiss: func(error) bool { return true },
		Replace:                true,
	})
	show("custom", arb.Resolve(ctx, users.With(cache.WithPolicy(refreshOldEntries))))

	show("disk only", arb.ReadCache(ctx, users, cache.TierDisk))

	batch := cache.NewBatchCoordinator(arb, cache.WithConcurrency(2), cache.WithBatchLogger(logger))
	res := batch.Run(ctx, []cache.BatchItem{
		{Tag: "users", Request: users},
		{Tag: "accounts", Request: cache.NewRequest(http.MethodGet, "/accounts")},
		{Tag: "orders", Request: cache.NewRequest(http.MethodGet, "/orders", cache.WithParams(map[string]any{"status": "open"}))},
	})
	if res.Err() != nil {
		logger.Error().Err(res.Err()).Msg("batch failed")
	}
	for _, o := range res.Outcomes() {
		show("batch "+o.Tag, o.Envelope)
	}

	failing := batch.Run(ctx, []cache.BatchItem{
		{Tag: "users", Request: users},
		{Tag: "broken", Request: cache.NewRequest(http.MethodGet, "/broken")},
	})
	logger.Info().Err(failing.Err()).Int("outcomes", len(failing.Outcomes())).Msg("batch with a failing item")
	batch.Wait()

	chain := cache.NewChain(arb, cache.WithChainLogger(logger))
	_ = chain.Then(cache.NewRequest(http.MethodPost, "/login", cache.WithPolicy(cache.NoCachePolicy())), nil)
	_ = chain.Then(cache.NewRequest(http.MethodGet, "/profile", cache.WithPolicy(cache.ServerOnlyPolicy())),
		func(prev *cache.Response, next *cache.Request) (*cache.Request, error) {
			return next.With(cache.WithHeader("Authorization", string(prev.Body))), nil
		})

	out := chain.Run(ctx, func(index int, env cache.Envelope[*cache.Response]) {
		show(fmt.Sprintf("chain link %d", index), env)
	})
	if out.Err != nil {
		logger.Error().Err(out.Err).Msg("chain failed")
	}

	removed, err := disk.PurgeExpired(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("can not purge disk cache")
	}

	logger.Info().Int32("origin_calls", calls.Load()).Int64("purged", removed).Msg("done")
}
