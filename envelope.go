package cache

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Envelope is one terminal outcome of a request together with its provenance.
// FromCache is true only when the value came from a cache tier and no transport call
// completed for this envelope.
type Envelope[T any] struct {
	Value     T
	Err       error
	FromCache bool
	Tier      Tier
}

// Success wraps a network result.
func Success[T any](v T) Envelope[T] {
	return Envelope[T]{Value: v}
}

// CacheHit wraps a value served by the given tier.
func CacheHit[T any](v T, tier Tier) Envelope[T] {
	return Envelope[T]{Value: v, FromCache: true, Tier: tier}
}

// Failure wraps an error.
func Failure[T any](err error) Envelope[T] {
	return Envelope[T]{Err: err}
}

func (e Envelope[T]) OK() bool {
	return e.Err == nil
}

// Result returns the value and error pair.
func (e Envelope[T]) Result() (T, error) {
	return e.Value, e.Err
}

// Decode maps the response of an envelope through fn. A prior error passes through
// untouched; an error from fn becomes a DecodeError. Provenance is preserved.
func Decode[T any](env Envelope[*Response], fn func(body []byte) (T, error)) Envelope[T] {
	if env.Err != nil {
		return Envelope[T]{Err: env.Err, FromCache: env.FromCache, Tier: env.Tier}
	}

	var body []byte
	if env.Value != nil {
		body = env.Value.Body
	}

	v, err := fn(body)
	if err != nil {
		return Envelope[T]{Err: &DecodeError{Cause: errors.WithStack(err)}, FromCache: env.FromCache, Tier: env.Tier}
	}

	return Envelope[T]{Value: v, FromCache: env.FromCache, Tier: env.Tier}
}

// DecodeMsgpack decodes a msgpack body into T.
func DecodeMsgpack[T any](env Envelope[*Response]) Envelope[T] {
	return Decode(env, func(body []byte) (T, error) {
		var item T
		err := msgpack.Unmarshal(body, &item)
		return item, err
	})
}
