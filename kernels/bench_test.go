package kernels

import (
	"testing"

	"gonum.org/v1/gonum/blas/blas32"
)

// Benchmark drag with a plain scalar loop
func BenchmarkDragScalar(b *testing.B) {
	velocities := make([]float32, 2*4096)
	for i := range velocities {
		velocities[i] = float32(i) * 0.001
	}
	factor := float32(0.98)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := range velocities {
			velocities[i] *= factor
		}
	}
}

// Benchmark drag with blas32.Scal (the ApplyDragAll path)
func BenchmarkDragBLAS(b *testing.B) {
	velocities := make([]float32, 2*4096)
	for i := range velocities {
		velocities[i] = float32(i) * 0.001
	}
	v := blas32.Vector{N: len(velocities), Inc: 1, Data: velocities}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		blas32.Scal(0.98, v)
	}
}

// Benchmark drag 4x unrolled (auto-vectorization experiment)
func BenchmarkDrag4xUnrolled(b *testing.B) {
	velocities := make([]float32, 2*4096)
	for i := range velocities {
		velocities[i] = float32(i) * 0.001
	}
	factor := float32(0.98)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		i := 0
		for ; i <= len(velocities)-4; i += 4 {
			velocities[i] *= factor
			velocities[i+1] *= factor
			velocities[i+2] *= factor
			velocities[i+3] *= factor
		}
		for ; i < len(velocities); i++ {
			velocities[i] *= factor
		}
	}
}

func benchmarkIntegrate(b *testing.B, count int, parallel bool) {
	b.Helper()
	positions := make([]float32, 2*count)
	velocities := make([]float32, 2*count)
	accelerations := make([]float32, 2*count)
	for i := range positions {
		positions[i] = float32(i%1000) * 0.5
		velocities[i] = float32(i%17) * 0.1
		accelerations[i] = float32(i%5) * 0.01
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if parallel {
			IntegrateAllParallel(positions, velocities, accelerations, 1.0/60.0, 0.5, 80, 0.02)
		} else {
			IntegrateAll(positions, velocities, accelerations, 1.0/60.0, 0.5, 80, 0.02)
		}
	}
}

func BenchmarkIntegrate1k(b *testing.B)          { benchmarkIntegrate(b, 1000, false) }
func BenchmarkIntegrate1kParallel(b *testing.B)  { benchmarkIntegrate(b, 1000, true) }
func BenchmarkIntegrate16k(b *testing.B)         { benchmarkIntegrate(b, 16000, false) }
func BenchmarkIntegrate16kParallel(b *testing.B) { benchmarkIntegrate(b, 16000, true) }

func BenchmarkComputeDistances(b *testing.B) {
	positions := make([]float32, 2*1000)
	targets := make([]float32, 2*16)
	out := make([]float32, 1000)
	for i := range positions {
		positions[i] = float32(i%500) * 0.7
	}
	for i := range targets {
		targets[i] = float32(i) * 30
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		ComputeDistancesBatch(positions, targets, out)
	}
}
