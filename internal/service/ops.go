package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rld/internal/pack"
	"rld/internal/space"
	"rld/internal/tensor"
	"rld/pkg/types"
)

// Describe returns the observation and action spaces of a model.
func (s *Service) Describe(id string) (types.SpaceResponse, error) {
	e, err := s.lookup(id)
	if err != nil {
		return types.SpaceResponse{}, err
	}
	obs := e.Model.ObsSpace()
	desc, err := space.Encode(obs)
	if err != nil {
		return types.SpaceResponse{}, err
	}
	n, err := pack.Size(obs)
	if err != nil {
		return types.SpaceResponse{}, err
	}
	resp := types.SpaceResponse{ID: e.ID, ObsSpace: desc, Size: n}
	act, err := e.Model.ActionSpace()
	if err == nil {
		if ad, encErr := space.Encode(act); encErr == nil {
			resp.ActionSpace = &ad
		} else {
			err = encErr
		}
	}
	if err != nil {
		resp.ActionSpaceError = err.Error()
	}
	return resp, nil
}

// Size returns the flat element count of a model's observation space.
func (s *Service) Size(id string) (int, error) {
	e, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	return pack.Size(e.Model.ObsSpace())
}

// Pack flattens one structured observation, or each element of a batch.
func (s *Service) Pack(id string, req types.PackRequest) (resp types.PackResponse, err error) {
	defer observe("pack", id, time.Now(), &err)
	e, err := s.lookup(id)
	if err != nil {
		return resp, err
	}
	arr, err := packRequest(e.Model.ObsSpace(), req.Obs, req.Batch)
	if err != nil {
		return resp, classify(err)
	}
	return types.PackResponse{Flat: pack.ToValue(pack.Leaf[tensor.Array]{Value: arr}), Shape: arr.Shape}, nil
}

// packRequest turns obs or batch into a flat [size] or [N, size] array.
func packRequest(sp space.Space, obs any, batch []any) (tensor.Array, error) {
	switch {
	case obs != nil && len(batch) > 0:
		return tensor.Array{}, BadInput(errors.New("obs and batch are mutually exclusive"))
	case obs != nil:
		o, err := pack.FromValue(obs, sp)
		if err != nil {
			return tensor.Array{}, err
		}
		flat, err := pack.PackArray(o, sp)
		if err != nil {
			return tensor.Array{}, err
		}
		return tensor.Vector(flat...), nil
	case len(batch) > 0:
		var data []float32
		n := 0
		for i, v := range batch {
			o, err := pack.FromValue(v, sp)
			if err != nil {
				return tensor.Array{}, fmt.Errorf("batch[%d]: %w", i, err)
			}
			flat, err := pack.PackArray(o, sp)
			if err != nil {
				return tensor.Array{}, fmt.Errorf("batch[%d]: %w", i, err)
			}
			n = len(flat)
			data = append(data, flat...)
		}
		return tensor.NewArray(data, len(batch), n)
	default:
		return tensor.Array{}, BadInput(errors.New("obs or batch is required"))
	}
}

// Unpack restores the structured form of a flat observation. A [N, size]
// input yields leaves with a leading batch dimension of N.
func (s *Service) Unpack(id string, req types.UnpackRequest) (resp types.UnpackResponse, err error) {
	defer observe("unpack", id, time.Now(), &err)
	e, err := s.lookup(id)
	if err != nil {
		return resp, err
	}
	if req.Flat == nil {
		return resp, BadInput(errors.New("flat is required"))
	}
	arr, err := tensor.AsArray(req.Flat)
	if err != nil {
		return resp, BadInput(err)
	}
	o, err := pack.UnpackTensor(tensor.FromArray(arr, tensor.CPU), e.Model.ObsSpace())
	if err != nil {
		return resp, classify(err)
	}
	resp.Obs = pack.TensorValue(o)
	if len(arr.Shape) > 1 {
		resp.Batch = arr.Shape[0]
	}
	return resp, nil
}

// Forward runs a model on exactly one of obs, batch or flat. The input is
// materialized on the model's input device.
func (s *Service) Forward(ctx context.Context, id string, req types.ForwardRequest) (resp types.ForwardResponse, err error) {
	defer observe("forward", id, time.Now(), &err)
	e, err := s.lookup(id)
	if err != nil {
		return resp, err
	}
	var arr tensor.Array
	switch {
	case req.Flat != nil && (req.Obs != nil || len(req.Batch) > 0):
		return resp, BadInput(errors.New("flat is mutually exclusive with obs and batch"))
	case req.Flat != nil:
		arr, err = tensor.AsArray(req.Flat)
		if err != nil {
			return resp, BadInput(err)
		}
	default:
		arr, err = packRequest(e.Model.ObsSpace(), req.Obs, req.Batch)
		if err != nil {
			return resp, classify(err)
		}
	}

	if err := checkFlat(arr.Shape, e.Model.ObsSpace()); err != nil {
		return resp, err
	}

	callID := s.newCallID()
	start := time.Now()
	out, err := e.Model.Forward(ctx, tensor.FromArray(arr, deviceOf(e.Model)))
	if err != nil {
		s.log.Warn().Err(err).Str("model", e.ID).Str("call_id", callID).Msg("forward failed")
		return resp, classify(err)
	}
	s.forwardCalls.Add(1)
	s.log.Debug().
		Str("model", e.ID).
		Str("call_id", callID).
		Ints("input_shape", arr.Shape).
		Ints("output_shape", out.Shape()).
		Dur("took", time.Since(start)).
		Msg("forward")
	return types.ForwardResponse{
		CallID: callID,
		Output: pack.TensorValue(pack.T(out)),
		Shape:  out.Shape(),
		Device: out.Device().String(),
	}, nil
}

// checkFlat requires a [size] or [N, size] block for sp.
func checkFlat(shape []int, sp space.Space) error {
	n, err := pack.Size(sp)
	if err != nil {
		return err
	}
	if (len(shape) != 1 && len(shape) != 2) || shape[len(shape)-1] != n {
		return BadInput(fmt.Errorf("%w: flat shape %v, want [%d] or [N %d]", pack.ErrShape, shape, n, n))
	}
	return nil
}
