package walrus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"xdao.co/datadao/storage"
)

// DefaultTimeout bounds a single request to one endpoint.
const DefaultTimeout = 30 * time.Second

// Options configure publisher and aggregator clients.
type Options struct {
	// Timeout applies per request; DefaultTimeout when zero.
	Timeout time.Duration
	// Epochs is the storage duration requested from publishers; DefaultEpochs when zero.
	Epochs int
	// RequireJSON makes aggregators reject bodies that are not valid JSON.
	RequireJSON bool
	// HTTP is an optional shared resty client.
	HTTP *resty.Client
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

func (o Options) epochs() int {
	if o.Epochs > 0 {
		return o.Epochs
	}
	return DefaultEpochs
}

func (o Options) httpClient() *resty.Client {
	if o.HTTP != nil {
		return o.HTTP
	}
	return resty.New()
}

// Publisher writes blobs to one publisher endpoint.
type Publisher struct {
	Endpoint string
	opts     Options
	http     *resty.Client
}

// NewPublisher returns a client for the publisher at endpoint (scheme://host[:port][/prefix]).
func NewPublisher(endpoint string, opts Options) *Publisher {
	return &Publisher{Endpoint: normalize(endpoint), opts: opts, http: opts.httpClient()}
}

// Store uploads payload. Both "newly created" and "already certified"
// answers are successes; the returned id is the publisher-assigned blob id.
func (p *Publisher) Store(ctx context.Context, payload []byte) (StoreResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout())
	defer cancel()

	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetQueryParam("epochs", strconv.Itoa(p.opts.epochs())).
		SetBody(payload).
		Put(p.Endpoint + blobsPath)
	if err != nil {
		return StoreResponse{}, p.fail(0, err)
	}
	if !resp.IsSuccess() {
		return StoreResponse{}, p.fail(resp.StatusCode(), errors.New(bodySnippet(resp.Body())))
	}

	var out StoreResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return StoreResponse{}, p.fail(resp.StatusCode(), fmt.Errorf("%w: %v", ErrBadResponse, err))
	}
	id, _ := out.BlobID()
	if id == "" {
		return StoreResponse{}, p.fail(resp.StatusCode(), ErrMissingBlobID)
	}
	if storage.IsLocalID(id) {
		return StoreResponse{}, p.fail(resp.StatusCode(), fmt.Errorf("%w: %q uses the local id prefix", storage.ErrInvalidID, id))
	}
	return out, nil
}

func (p *Publisher) fail(code int, err error) error {
	return &EndpointError{Endpoint: p.Endpoint, Op: "store", StatusCode: code, Err: err}
}

// Aggregator reads blobs from one aggregator endpoint.
type Aggregator struct {
	Endpoint string
	opts     Options
	http     *resty.Client
}

// NewAggregator returns a client for the aggregator at endpoint.
func NewAggregator(endpoint string, opts Options) *Aggregator {
	return &Aggregator{Endpoint: normalize(endpoint), opts: opts, http: opts.httpClient()}
}

// Read fetches the bytes of blob id. A 404 is reported as an EndpointError
// wrapping storage.ErrNotFound.
func (a *Aggregator) Read(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, a.fail(0, storage.ErrInvalidID)
	}
	ctx, cancel := context.WithTimeout(ctx, a.opts.timeout())
	defer cancel()

	resp, err := a.http.R().
		SetContext(ctx).
		Get(a.Endpoint + blobsPath + "/" + url.PathEscape(id))
	if err != nil {
		return nil, a.fail(0, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, a.fail(resp.StatusCode(), storage.ErrNotFound)
	case !resp.IsSuccess():
		return nil, a.fail(resp.StatusCode(), errors.New(bodySnippet(resp.Body())))
	}
	body := resp.Body()
	if body == nil {
		body = []byte{}
	}
	if a.opts.RequireJSON && !json.Valid(body) {
		return nil, a.fail(resp.StatusCode(), ErrInvalidBody)
	}
	return body, nil
}

func (a *Aggregator) fail(code int, err error) error {
	return &EndpointError{Endpoint: a.Endpoint, Op: "read", StatusCode: code, Err: err}
}

func normalize(endpoint string) string {
	return strings.TrimRight(strings.TrimSpace(endpoint), "/")
}

func bodySnippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "empty response body"
	}
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
