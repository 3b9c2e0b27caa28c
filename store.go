package cache

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is the two-tier cache consulted by the Arbitrator. Either tier may be nil.
type Store struct {
	memory       Provider
	disk         Provider
	modelVersion uint16
}

func NewStore(memory Provider, disk Provider, modelVersion uint16) *Store {
	return &Store{
		memory:       memory,
		disk:         disk,
		modelVersion: modelVersion,
	}
}

func (s *Store) ModelVersion() uint16 {
	return s.modelVersion
}

type tierProvider struct {
	tier     Tier
	provider Provider
}

func (s *Store) providersFor(tier Tier) []tierProvider {
	var res []tierProvider

	if s.memory != nil && (tier == TierMemory || tier == TierMemoryOrDisk) {
		res = append(res, tierProvider{tier: TierMemory, provider: s.memory})
	}
	if s.disk != nil && (tier == TierDisk || tier == TierMemoryOrDisk) {
		res = append(res, tierProvider{tier: TierDisk, provider: s.disk})
	}

	return res
}

// Lookup walks the selected tiers in order (memory first). A hit in a later tier is
// copied into the earlier tiers that missed. Provider errors are logged and treated as
// misses; the last one is returned together with a nil entry if nothing hit. The walk
// stops with ctx.Err() once ctx is done.
func (s *Store) Lookup(ctx context.Context, tier Tier, key string) (*Entry, Tier, error) {
	var missingIn []Provider
	var lastErr error

	for _, tp := range s.providersFor(tier) {
		v, err := tp.provider.Get(ctx, key, s.modelVersion)

		if err != nil {
			if ctx.Err() != nil {
				return nil, tp.tier, ctx.Err()
			}
			zerolog.Ctx(ctx).Err(err).Str("key", key).Str("tier", tp.tier.String()).Msg("cache tier lookup failed")
			lastErr = err
			continue
		}

		if v == nil {
			missingIn = append(missingIn, tp.provider)
			continue
		}

		if len(missingIn) > 0 {
			s.promote(ctx, key, v, missingIn)
		}

		return v, tp.tier, nil
	}

	return nil, tier, lastErr
}

func (s *Store) promote(ctx context.Context, key string, v *Entry, into []Provider) {
	ttl := time.Duration(0)
	if !v.ExpiresAt.IsZero() {
		ttl = time.Until(v.ExpiresAt)
		if ttl <= 0 {
			return
		}
	}

	setMap := map[string]*Entry{key: v}
	for _, m := range into {
		if err := m.MSet(ctx, setMap, ttl); err != nil {
			zerolog.Ctx(ctx).Err(err).Str("key", key).Msg("can not promote cache entry")
		}
	}
}

// Save writes the response into every tier with the given ttl. Zero ttl never expires.
func (s *Store) Save(ctx context.Context, key string, res *Response, ttl time.Duration) error {
	if res == nil {
		return errors.New("response is nil")
	}

	now := time.Now()
	entry := &Entry{
		Response:     *res.Clone(),
		StoredAt:     now,
		ModelVersion: s.modelVersion,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	return s.MSet(ctx, map[string]*Entry{key: entry}, ttl)
}

// MSet writes entries into both tiers, collecting every tier failure.
func (s *Store) MSet(ctx context.Context, records map[string]*Entry, ttl time.Duration) error {
	var finalErr error
	for _, tp := range s.providersFor(TierMemoryOrDisk) {
		if err := tp.provider.MSet(ctx, records, ttl); err != nil {
			finalErr = multierror.Append(finalErr, errors.Wrapf(err, "%s tier", tp.tier))
		}
	}

	return finalErr
}
