// Package observability provides hooks for progress reporting and metrics.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific backends. Consumers register hooks at startup to
// receive events about pipeline stages and individual icon extraction.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetExtractHooks(&myProgress{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, "extract")
//	// ... extract icons ...
//	observability.Pipeline().OnStageComplete(ctx, "extract", entries, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the sprite pipeline.
// Stages are "extract", "finalize", "pack", "style" and "write".
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage string)
	OnStageComplete(ctx context.Context, stage string, items int, duration time.Duration, err error)
}

// =============================================================================
// Extract Hooks
// =============================================================================

// Outcome classifies one (extension, size class) extraction attempt.
type Outcome string

const (
	OutcomeAdded       Outcome = "added"
	OutcomeRepeated    Outcome = "repeated"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeSourceError Outcome = "source_error"
	OutcomeOversized   Outcome = "oversized"
	OutcomeEncoding    Outcome = "encoding_failure"
)

// ExtractHooks receives one event per extraction attempt.
type ExtractHooks interface {
	// OnExtensionStart is called before the size classes of ext are queried.
	// index counts from 0; total includes the DEFAULT sentinel.
	OnExtensionStart(ctx context.Context, ext string, index, total int)

	// OnIcon records the outcome of one attempt.
	OnIcon(ctx context.Context, ext, size string, outcome Outcome)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, int, time.Duration, error) {}

// NoopExtractHooks is a no-op implementation of ExtractHooks.
type NoopExtractHooks struct{}

func (NoopExtractHooks) OnExtensionStart(context.Context, string, int, int) {}
func (NoopExtractHooks) OnIcon(context.Context, string, string, Outcome)    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	extractHooks  ExtractHooks  = NoopExtractHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetExtractHooks registers custom extraction hooks.
func SetExtractHooks(h ExtractHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		extractHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Extract returns the registered extraction hooks.
func Extract() ExtractHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return extractHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	extractHooks = NoopExtractHooks{}
}
