// Package model adapts trained host-framework models to a uniform capability
// interface used by the pack/unpack engine and by attribution callers.
package model

import (
	"context"

	"rld/internal/pack"
	"rld/internal/space"
	"rld/internal/tensor"
)

// Model is what callers need from a trained policy model.
type Model interface {
	// InputDevice is where Forward inputs must be materialized.
	InputDevice() tensor.Device
	// OutputDevice is where Forward results live.
	OutputDevice() tensor.Device
	// ObsSpace is the structured observation space, never a host-flattened one.
	ObsSpace() space.Space
	// ActionSpace is derived once; models whose action space has no rld
	// equivalent return an UnsupportedSpaceKindError.
	ActionSpace() (space.Space, error)
	// Forward runs the model on a flat observation ([size] or [N, size]) and
	// returns action values.
	Forward(ctx context.Context, x *tensor.Tensor) (*tensor.Tensor, error)
}

// FlattenObs packs a structured observation for m. For a Box space this is
// only a dtype/shape normalization.
func FlattenObs(m Model, o pack.ArrayObs) ([]float32, error) {
	return pack.PackArray(o, m.ObsSpace())
}

// UnflattenObs is the inverse of FlattenObs.
func UnflattenObs(m Model, flat []float32) (pack.ArrayObs, error) {
	return pack.UnpackArray(flat, m.ObsSpace())
}
