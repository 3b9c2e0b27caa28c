package cache

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

// Provider is a single cache tier. Get returns (nil, nil) on miss.
type Provider interface {
	Get(ctx context.Context, key string, requiredModelVersion uint16) (*Entry, error)
	MSet(ctx context.Context, values map[string]*Entry, ttl time.Duration) error
}

// Transport performs one request against the network. Cancellation is carried by ctx.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Resolver turns a request into its final envelope.
type Resolver interface {
	Resolve(ctx context.Context, req *Request) Envelope[*Response]
}

// Tier selects which cache tiers a read may consult.
type Tier int

const (
	TierMemoryOrDisk Tier = iota
	TierMemory
	TierDisk
)

func (t Tier) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierDisk:
		return "disk"
	default:
		return "memory_or_disk"
	}
}

// Response is the raw result of a transport call.
type Response struct {
	StatusCode int         `msgpack:"status_code"`
	Header     http.Header `msgpack:"header"`
	Body       []byte      `msgpack:"body"`
	ReceivedAt time.Time   `msgpack:"received_at"`
}

// Clone returns a copy that shares no memory with r.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}

	c := *r
	c.Header = r.Header.Clone()
	c.Body = bytes.Clone(r.Body)

	return &c
}

// Entry is what the tiers persist for a key.
type Entry struct {
	Response     Response  `msgpack:"response"`
	StoredAt     time.Time `msgpack:"stored_at"`
	ExpiresAt    time.Time `msgpack:"expires_at"`
	ModelVersion uint16    `msgpack:"model_version"`
}

// Expired reports whether the entry is past its expiration. A zero ExpiresAt never expires.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// usable is the miss rule shared by every provider.
func (e *Entry) usable(requiredModelVersion uint16) bool {
	return e != nil && e.ModelVersion == requiredModelVersion && !e.Expired(time.Now())
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) Execute(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, req *Request) Envelope[*Response]

func (f ResolverFunc) Resolve(ctx context.Context, req *Request) Envelope[*Response] {
	return f(ctx, req)
}
