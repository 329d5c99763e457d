package kernels

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// speedSqEpsilon guards the minimum-speed rescale: velocities with squared
// magnitude at or below this stay unscaled so a near-zero magnitude never
// ends up in a divisor.
const speedSqEpsilon = 1e-4

// boundaryInset keeps a bounced coordinate strictly inside the world so
// float equality at the exact edge cannot re-trigger the same branch on
// the next frame.
const boundaryInset = 0.001

// loadAt returns buf[i], or 0 if i is out of range.
func loadAt(buf []float32, i int) float32 {
	if i < len(buf) {
		return buf[i]
	}
	return 0
}

// storeAt writes v to buf[i] if i is in range and drops it otherwise.
func storeAt(buf []float32, i int, v float32) {
	if i < len(buf) {
		buf[i] = v
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clampSpeed rescales (vx, vy) into the [minSpeed, maxSpeed] magnitude
// band, preserving direction. Thresholds are compared on squared
// magnitudes; the epsilon guard exempts near-zero velocities from the
// minimum.
func clampSpeed(vx, vy, minSpeed, maxSpeed float32) (float32, float32) {
	speedSq := vx*vx + vy*vy
	if speedSq > maxSpeed*maxSpeed {
		scale := maxSpeed / float32(math.Sqrt(float64(speedSq)))
		return vx * scale, vy * scale
	}
	if speedSq < minSpeed*minSpeed && speedSq > speedSqEpsilon {
		scale := minSpeed / float32(math.Sqrt(float64(speedSq)))
		return vx * scale, vy * scale
	}
	return vx, vy
}

// integrateRange advances agents [i0, i1): velocity from acceleration with
// drag and speed clamping, then position from the updated velocity. Each
// agent reads only its own pre-step state and writes only its own index
// pair, so ranges may run in any order or concurrently.
func integrateRange(positions, velocities, accelerations []float32, i0, i1 int, dt, minSpeed, maxSpeed, drag float32) {
	dragFactor := 1 - drag
	for i := i0; i < i1; i++ {
		idx := 2 * i

		ax := loadAt(accelerations, idx)
		ay := loadAt(accelerations, idx+1)
		vx := loadAt(velocities, idx)
		vy := loadAt(velocities, idx+1)

		newVX := (vx + ax*dt) * dragFactor
		newVY := (vy + ay*dt) * dragFactor
		newVX, newVY = clampSpeed(newVX, newVY, minSpeed, maxSpeed)

		storeAt(velocities, idx, newVX)
		storeAt(velocities, idx+1, newVY)

		positions[idx] += newVX * dt
		positions[idx+1] += newVY * dt
	}
}

// IntegrateAll advances the whole population one step of dt. Per agent:
// v' = (v + a*dt) * (1 - drag), clamped to the [minSpeed, maxSpeed]
// magnitude band, then p' = p + v'*dt. The agent count comes from
// len(positions)/2; accelerations is read-only.
func IntegrateAll(positions, velocities, accelerations []float32, dt, minSpeed, maxSpeed, drag float32) {
	integrateRange(positions, velocities, accelerations, 0, len(positions)/2, dt, minSpeed, maxSpeed, drag)
}

// ApplyDragAll multiplies every scalar component of velocities by
// (1 - drag). It runs over the raw flat sequence, odd tail included, with
// no clamping or position coupling.
func ApplyDragAll(velocities []float32, drag float32) {
	if len(velocities) == 0 {
		return
	}
	blas32.Scal(1-drag, blas32.Vector{N: len(velocities), Inc: 1, Data: velocities})
}

// ClampSpeedsAll rescales each agent's velocity into the
// [minSpeed, maxSpeed] magnitude band, leaving near-zero velocities
// untouched. The agent count comes from len(velocities)/2.
func ClampSpeedsAll(velocities []float32, minSpeed, maxSpeed float32) {
	count := len(velocities) / 2
	for i := 0; i < count; i++ {
		idx := 2 * i
		velocities[idx], velocities[idx+1] = clampSpeed(velocities[idx], velocities[idx+1], minSpeed, maxSpeed)
	}
}

// ComputeDistancesBatch writes, for each agent, the squared distance to
// its nearest target into out. The scan is exhaustive brute force over
// every target; with no targets the minimum stays at MaxFloat32. out
// needs one slot per agent; writes past its end are dropped.
func ComputeDistancesBatch(positions, targets, out []float32) {
	count := len(positions) / 2
	targetCount := len(targets) / 2

	for i := 0; i < count; i++ {
		idx := 2 * i
		px := positions[idx]
		py := positions[idx+1]

		minDistSq := float32(math.MaxFloat32)
		for j := 0; j < targetCount; j++ {
			tidx := 2 * j
			dx := px - targets[tidx]
			dy := py - targets[tidx+1]
			if distSq := dx*dx + dy*dy; distSq < minDistSq {
				minDistSq = distSq
			}
		}

		storeAt(out, i, minDistSq)
	}
}

// WrapPositionsAll applies toroidal wrapping: a coordinate below 0 gains
// the world dimension, one at or past it loses it. Single-step
// correction, which assumes per-frame displacement never exceeds one
// world dimension.
func WrapPositionsAll(positions []float32, width, height float32) {
	count := len(positions) / 2
	for i := 0; i < count; i++ {
		idx := 2 * i

		if positions[idx] < 0 {
			positions[idx] += width
		} else if positions[idx] >= width {
			positions[idx] -= width
		}

		if positions[idx+1] < 0 {
			positions[idx+1] += height
		} else if positions[idx+1] >= height {
			positions[idx+1] -= height
		}
	}
}

// BouncePositionsAll clamps out-of-world positions to the edge and forces
// the matching velocity component back inward (absolute value at the low
// edge, negated absolute value at the high edge, with a small inset). The
// axes are handled independently; an axis is only bounced when its
// velocity slot exists, a missing slot suppresses the paired position
// clamp too.
func BouncePositionsAll(positions, velocities []float32, width, height float32) {
	count := len(positions) / 2
	for i := 0; i < count; i++ {
		idx := 2 * i

		if idx < len(velocities) {
			if positions[idx] < 0 {
				positions[idx] = 0
				velocities[idx] = absf(velocities[idx])
			} else if positions[idx] >= width {
				positions[idx] = width - boundaryInset
				velocities[idx] = -absf(velocities[idx])
			}
		}

		if idx+1 < len(velocities) {
			if positions[idx+1] < 0 {
				positions[idx+1] = 0
				velocities[idx+1] = absf(velocities[idx+1])
			} else if positions[idx+1] >= height {
				positions[idx+1] = height - boundaryInset
				velocities[idx+1] = -absf(velocities[idx+1])
			}
		}
	}
}

// ResetAccelerationsAll zeroes every scalar component, odd tail included.
// Called once per frame before force accumulation.
func ResetAccelerationsAll(accelerations []float32) {
	for i := range accelerations {
		accelerations[i] = 0
	}
}

// AddForceAll adds a uniform force vector to every agent's acceleration.
// Accumulative: hosts call it once per force layer per frame.
func AddForceAll(accelerations []float32, forceX, forceY float32) {
	count := len(accelerations) / 2
	for i := 0; i < count; i++ {
		idx := 2 * i
		accelerations[idx] += forceX
		accelerations[idx+1] += forceY
	}
}
