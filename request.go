package cache

import (
	"net/http"
	"time"
)

// Request describes one logical request. It is never mutated after construction;
// the With methods return modified copies.
type Request struct {
	Method   string
	Endpoint string
	Params   map[string]any
	Header   http.Header
	Policy   Policy
	Tier     Tier
	TTL      time.Duration
}

type RequestOption func(*Request)

// NewRequest creates a request with the CachePreferred policy over both tiers.
func NewRequest(method string, endpoint string, opts ...RequestOption) *Request {
	if method == "" {
		method = http.MethodGet
	}

	r := &Request{
		Method:   method,
		Endpoint: endpoint,
		Params:   map[string]any{},
		Header:   http.Header{},
		Policy:   CachePreferredPolicy(),
		Tier:     TierMemoryOrDisk,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func WithParams(params map[string]any) RequestOption {
	return func(r *Request) {
		for k, v := range params {
			r.Params[k] = v
		}
	}
}

func WithHeader(key string, value string) RequestOption {
	return func(r *Request) {
		r.Header.Add(key, value)
	}
}

func WithPolicy(p Policy) RequestOption {
	return func(r *Request) {
		r.Policy = p
	}
}

func WithTier(t Tier) RequestOption {
	return func(r *Request) {
		r.Tier = t
	}
}

func WithRequestTtl(ttl time.Duration) RequestOption {
	return func(r *Request) {
		r.TTL = ttl
	}
}

func (r *Request) clone() *Request {
	c := *r
	c.Params = make(map[string]any, len(r.Params))
	for k, v := range r.Params {
		c.Params[k] = v
	}
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}

	return &c
}

// With returns a copy of the request with opts applied.
func (r *Request) With(opts ...RequestOption) *Request {
	c := r.clone()
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithParam returns a copy with one parameter set.
func (r *Request) WithParam(key string, value any) *Request {
	return r.With(WithParams(map[string]any{key: value}))
}
