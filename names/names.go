// Package names resolves human-readable names (alice.sui) to account
// addresses through the fullnode JSON-RPC API, caching positive answers.
package names

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long a resolved name is trusted.
const DefaultTTL = 5 * time.Minute

const (
	methodResolve = "suix_resolveNameServiceAddress"
	methodReverse = "suix_resolveNameServiceNames"
)

var (
	ErrNameNotFound = errors.New("names: name not found")
	ErrInvalidName  = errors.New("names: invalid name")
)

// Cache stores resolved names.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
}

// MemoryCache is a Cache on go-cache.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: gocache.New(DefaultTTL, 2*DefaultTTL)}
}

func (m *MemoryCache) Get(key string) (string, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m *MemoryCache) Set(key, value string, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

// RPCError is a JSON-RPC error object returned by the fullnode.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("names: rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

type reverseResult struct {
	Data []string `json:"data"`
}

// Resolver resolves names against one fullnode.
type Resolver struct {
	RPC   string
	Cache Cache
	TTL   time.Duration

	Logger zerolog.Logger
	HTTP   *resty.Client

	seq atomic.Uint64
}

// New returns a Resolver using an in-memory cache and DefaultTTL.
func New(rpcURL string) *Resolver {
	return &Resolver{RPC: rpcURL, Cache: NewMemoryCache(), TTL: DefaultTTL, Logger: zerolog.Nop()}
}

// Resolve returns the address bound to name. Only found names are cached.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, " \t/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	key := "name:" + name
	if r.Cache != nil {
		if addr, ok := r.Cache.Get(key); ok {
			return addr, nil
		}
	}

	var addr *string
	if err := r.call(ctx, methodResolve, []any{name}, &addr); err != nil {
		return "", err
	}
	if addr == nil || *addr == "" {
		return "", fmt.Errorf("%w: %s", ErrNameNotFound, name)
	}
	if r.Cache != nil {
		r.Cache.Set(key, *addr, r.ttl())
	}
	r.Logger.Debug().Str("name", name).Str("address", *addr).Msg("name resolved")
	return *addr, nil
}

// Reverse returns the primary name registered for address.
func (r *Resolver) Reverse(ctx context.Context, address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	key := "addr:" + address
	if r.Cache != nil {
		if name, ok := r.Cache.Get(key); ok {
			return name, nil
		}
	}

	var res reverseResult
	if err := r.call(ctx, methodReverse, []any{address}, &res); err != nil {
		return "", err
	}
	if len(res.Data) == 0 {
		return "", fmt.Errorf("%w: no name for %s", ErrNameNotFound, address)
	}
	if r.Cache != nil {
		r.Cache.Set(key, res.Data[0], r.ttl())
	}
	return res.Data[0], nil
}

func (r *Resolver) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultTTL
}

func (r *Resolver) call(ctx context.Context, method string, params []any, out any) error {
	client := r.HTTP
	if client == nil {
		client = resty.New()
	}
	req := rpcRequest{JSONRPC: "2.0", ID: r.seq.Add(1), Method: method, Params: params}

	var resp rpcResponse
	httpResp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&resp).
		Post(r.RPC)
	if err != nil {
		return fmt.Errorf("names: %s: %w", method, err)
	}
	if !httpResp.IsSuccess() {
		return fmt.Errorf("names: %s: HTTP %d", method, httpResp.StatusCode())
	}
	if resp.Error != nil {
		return resp.Error
	}
	if len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("names: %s: decode result: %w", method, err)
	}
	return nil
}
