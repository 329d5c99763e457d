// Package components defines the ECS components the reference host
// attaches to each agent. The kernels never see these types; the host
// gathers them into flat interleaved buffers and scatters results back.
package components

// Position represents an agent's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an agent's velocity.
type Velocity struct {
	X, Y float32
}

// Acceleration holds the per-frame force accumulator for an agent. It is
// zeroed at the start of every tick.
type Acceleration struct {
	X, Y float32
}
