package cache

// PolicyKind selects how a request is arbitrated between cache and network.
type PolicyKind int

const (
	// NoCache always uses the transport and never writes the cache.
	NoCache PolicyKind = iota
	// ServerOnly always uses the transport and writes successful responses through.
	ServerOnly
	// CacheOnly reads the cache only. A miss is ErrNotFound.
	CacheOnly
	// CacheThenServer delivers a cache hit immediately and then revalidates over the
	// network, delivering a second envelope on success. Callers must accept two values.
	CacheThenServer
	// CachePreferred returns a cache hit and only goes to the network on a miss.
	CachePreferred
	// Custom delegates the fallback decisions to CustomRules.
	Custom
)

func (k PolicyKind) String() string {
	switch k {
	case NoCache:
		return "no_cache"
	case ServerOnly:
		return "server_only"
	case CacheOnly:
		return "cache_only"
	case CacheThenServer:
		return "cache_then_server"
	case CachePreferred:
		return "cache_preferred"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// CustomRules are the caller supplied predicates of a Custom policy.
//
// When Replace is true and ShouldFetchFromNetwork returns true, the cache hit is not
// delivered and the network result is the only envelope. Otherwise the hit is delivered
// first and the network result follows.
type CustomRules struct {
	ShouldFetchFromNetwork func(hit Envelope[*Response]) bool
	ShouldFetchOnCacheMiss func(err error) bool
	Replace                bool
}

// Policy is the declared caching strategy of a request.
type Policy struct {
	Kind  PolicyKind
	Rules CustomRules
}

func NoCachePolicy() Policy         { return Policy{Kind: NoCache} }
func ServerOnlyPolicy() Policy      { return Policy{Kind: ServerOnly} }
func CacheOnlyPolicy() Policy       { return Policy{Kind: CacheOnly} }
func CacheThenServerPolicy() Policy { return Policy{Kind: CacheThenServer} }
func CachePreferredPolicy() Policy  { return Policy{Kind: CachePreferred} }

// CustomPolicy builds a Custom policy. Nil predicates answer false.
func CustomPolicy(rules CustomRules) Policy {
	return Policy{Kind: Custom, Rules: rules}
}

func (p Policy) String() string {
	return p.Kind.String()
}

func (p Policy) readsCache() bool {
	return p.Kind != NoCache && p.Kind != ServerOnly
}

func (p Policy) writesCache() bool {
	return p.Kind != NoCache
}

func (p Policy) fetchOnHit(hit Envelope[*Response]) bool {
	switch p.Kind {
	case CacheThenServer:
		return true
	case Custom:
		return p.Rules.ShouldFetchFromNetwork != nil && p.Rules.ShouldFetchFromNetwork(hit)
	default:
		return false
	}
}

func (p Policy) fetchOnMiss(err error) bool {
	switch p.Kind {
	case CacheOnly:
		return false
	case Custom:
		return p.Rules.ShouldFetchOnCacheMiss != nil && p.Rules.ShouldFetchOnCacheMiss(err)
	default:
		return true
	}
}

// deliversHitBeforeFetch reports whether a hit is sent before the network result.
func (p Policy) deliversHitBeforeFetch() bool {
	return !(p.Kind == Custom && p.Rules.Replace)
}
