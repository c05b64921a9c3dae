// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about consensus computation, cache operations, and API
// requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps the solver
// packages free of metrics imports. [Prometheus] is the bundled backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	    observability.SetConsensusHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Consensus().OnComputeStart(ctx, elements, rankings)
//	// ... solve ...
//	observability.Consensus().OnComputeComplete(ctx, optimal, components, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Consensus Hooks
// =============================================================================

// ConsensusHooks receives events from the ParCons solver.
type ConsensusHooks interface {
	// OnComputeStart fires once the dataset has been indexed.
	OnComputeStart(ctx context.Context, elements, rankings int)

	// OnComputeComplete fires when a computation ends, successfully or not.
	OnComputeComplete(ctx context.Context, optimal bool, components int, duration time.Duration, err error)

	// OnComponentSolved fires after each sub-problem solve. route is one of
	// "exact", "exact-fallback" or "heuristic"; method is empty on failure.
	OnComponentSolved(ctx context.Context, route, method string, size int, duration time.Duration, err error)

	// OnFallback fires when the primary exact solver failed and the
	// fallback is about to run.
	OnFallback(ctx context.Context, from, to string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopConsensusHooks is a no-op implementation of ConsensusHooks.
type NoopConsensusHooks struct{}

func (NoopConsensusHooks) OnComputeStart(context.Context, int, int) {}
func (NoopConsensusHooks) OnComputeComplete(context.Context, bool, int, time.Duration, error) {
}
func (NoopConsensusHooks) OnComponentSolved(context.Context, string, string, int, time.Duration, error) {
}
func (NoopConsensusHooks) OnFallback(context.Context, string, string, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	consensusHooks ConsensusHooks = NoopConsensusHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetConsensusHooks registers custom consensus hooks.
// This should be called once at application startup before any computation.
func SetConsensusHooks(h ConsensusHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		consensusHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Consensus returns the registered consensus hooks.
func Consensus() ConsensusHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return consensusHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	consensusHooks = NoopConsensusHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
