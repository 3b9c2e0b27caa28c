package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// DefaultTransportTimeout bounds a single HTTP round trip.
const DefaultTransportTimeout = 30 * time.Second

// HTTPTransport executes requests with net/http. Parameters are URL encoded: into the
// query for GET, HEAD and DELETE, into a form body otherwise. Responses outside 2xx are
// reported as a StatusError.
type HTTPTransport struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

type HTTPTransportOption func(*HTTPTransport)

// WithBaseURL resolves relative endpoints against base.
func WithBaseURL(base string) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.baseURL = strings.TrimRight(base, "/")
	}
}

func WithHTTPClient(client *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// WithRateLimit caps outgoing requests to limit per second with the given burst.
func WithRateLimit(limit rate.Limit, burst int) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.limiter = rate.NewLimiter(limit, burst)
	}
}

func NewHTTPTransport(opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{Timeout: DefaultTransportTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	httpReq, err := t.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpRes, err := t.client.Do(httpReq)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, errors.Wrap(err, "can not read response body")
	}

	res := &Response{
		StatusCode: httpRes.StatusCode,
		Header:     httpRes.Header.Clone(),
		Body:       body,
		ReceivedAt: time.Now(),
	}

	if httpRes.StatusCode < 200 || httpRes.StatusCode > 299 {
		return nil, &StatusError{StatusCode: httpRes.StatusCode, Response: res}
	}

	return res, nil
}

func (t *HTTPTransport) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target := req.Endpoint
	if t.baseURL != "" && !strings.Contains(target, "://") {
		target = t.baseURL + "/" + strings.TrimLeft(target, "/")
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid endpoint %q", req.Endpoint)
	}

	values := encodeParams(req.Params)

	var body io.Reader
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		q := u.Query()
		for k, vs := range values {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	default:
		if len(values) > 0 {
			body = strings.NewReader(values.Encode())
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return httpReq, nil
}

func encodeParams(params map[string]any) url.Values {
	values := url.Values{}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := params[k].(type) {
		case []string:
			for _, s := range v {
				values.Add(k, s)
			}
		case []any:
			for _, s := range v {
				values.Add(k, fmt.Sprint(s))
			}
		case nil:
			values.Add(k, "")
		default:
			values.Add(k, fmt.Sprint(v))
		}
	}

	return values
}

var _ Transport = (*HTTPTransport)(nil)
