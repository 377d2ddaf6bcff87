package host

import (
	"context"

	"rld/internal/pack"
	"rld/internal/tensor"
)

// InputDict is the bundle a host model's forward call expects: the
// observation both in structured form and as a flat block.
type InputDict struct {
	Obs     pack.TensorObs
	ObsFlat *tensor.Tensor
}

// Model is the capability surface of a trained host model.
type Model interface {
	// Forward runs the model. state and seqLens are only meaningful for
	// recurrent models and are nil otherwise.
	Forward(ctx context.Context, in InputDict, state []*tensor.Tensor, seqLens []int) (*tensor.Tensor, []*tensor.Tensor, error)
	// Parameters lists the model weights; their device is where inputs must live.
	Parameters() []*tensor.Tensor
	ObsSpace() Space
	ActionSpace() Space
}
