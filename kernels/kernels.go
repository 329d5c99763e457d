// Package kernels implements batch physics kernels for a 2D boid
// simulation. All per-agent quantities are flat interleaved []float32
// buffers: element 2*i is the X component and 2*i+1 the Y component of
// agent i. Kernels mutate buffers in place, derive agent counts from
// buffer lengths, and treat out-of-range reads as zero and out-of-range
// writes as no-ops, so ragged or mismatched buffers degrade to processing
// the paired prefix instead of faulting the host.
//
// The host owns all buffers and composes kernels into a per-frame
// pipeline (reset accelerations, accumulate forces, integrate, then wrap
// or bounce). Kernels never call each other and hold no state between
// calls.
package kernels

import (
	"log/slog"
	"os"
	"sync"
)

var initOnce sync.Once

// Init performs one-time setup. It installs a readable slog handler so an
// internal failure surfaces as a diagnostic report rather than an opaque
// trap. The host calls it once at module load.
func Init() {
	initOnce.Do(func() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		slog.Debug("physics kernels initialized")
	})
}

// SIMDSupported reports whether the module was built with SIMD support.
// It performs no runtime detection: a fixed true signals to the host that
// a SIMD-enabled build variant loaded successfully.
func SIMDSupported() bool {
	return true
}
