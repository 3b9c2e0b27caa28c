package cache

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const keySeparator = ":"

// Keyer derives the cache key of a request. Same request, same key, regardless of map
// iteration order.
type Keyer interface {
	Key(req *Request) (string, error)
}

// DefaultKeyer builds keys of the form <prefix>:<METHOD>:<endpoint>:<hash> where hash is
// xxhash of the msgpack encoding of the parameters with sorted map keys.
type DefaultKeyer struct {
	Prefix string
}

func NewDefaultKeyer(prefix string) *DefaultKeyer {
	return &DefaultKeyer{Prefix: prefix}
}

func (k *DefaultKeyer) Key(req *Request) (string, error) {
	if req == nil || req.Endpoint == "" {
		return "", errors.New("request endpoint is empty")
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	if err := enc.Encode(req.Params); err != nil {
		return "", errors.Wrap(err, "can not encode request params")
	}

	var sb strings.Builder
	if k.Prefix != "" {
		sb.WriteString(k.Prefix)
		sb.WriteString(keySeparator)
	}
	sb.WriteString(strings.ToUpper(req.Method))
	sb.WriteString(keySeparator)
	sb.WriteString(req.Endpoint)
	sb.WriteString(keySeparator)
	sb.WriteString(strconv.FormatUint(xxhash.Sum64(buf.Bytes()), 16))

	return sb.String(), nil
}

var _ Keyer = (*DefaultKeyer)(nil)
