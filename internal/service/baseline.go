package service

import (
	"fmt"
	"math"
	"time"

	"rld/internal/pack"
	"rld/internal/space"
	"rld/pkg/types"
)

// Baseline kinds.
const (
	BaselineZeros    = "zeros"
	BaselineMidpoint = "midpoint"
)

// Baseline builds an attribution baseline for a model's observation space.
// "zeros" (the default) is all zeros; "midpoint" uses (low+high)/2 for boxes
// that carry finite bounds and zero elsewhere.
func (s *Service) Baseline(id, kind string) (resp types.BaselineResponse, err error) {
	defer observe("baseline", id, time.Now(), &err)
	e, err := s.lookup(id)
	if err != nil {
		return resp, err
	}
	if kind == "" {
		kind = BaselineZeros
	}
	sp := e.Model.ObsSpace()
	var flat []float32
	switch kind {
	case BaselineZeros:
		n, err := pack.Size(sp)
		if err != nil {
			return resp, err
		}
		flat = make([]float32, n)
	case BaselineMidpoint:
		if flat, err = midpoint(sp, nil); err != nil {
			return resp, err
		}
	default:
		return resp, BadInput(fmt.Errorf("unknown baseline kind %q", kind))
	}
	o, err := pack.UnpackArray(flat, sp)
	if err != nil {
		return resp, err
	}
	return types.BaselineResponse{Kind: kind, Flat: flat, Obs: pack.ToValue(o)}, nil
}

// midpoint appends the per-element midpoints of sp to dst in layout order.
func midpoint(sp space.Space, dst []float32) ([]float32, error) {
	switch b := sp.(type) {
	case space.Box:
		low, high := b.Bounds()
		if low == nil {
			return append(dst, make([]float32, b.Size())...), nil
		}
		for i := range low {
			if isInf(low[i]) || isInf(high[i]) {
				dst = append(dst, 0)
				continue
			}
			dst = append(dst, (low[i]+high[i])/2)
		}
		return dst, nil
	case space.Dict:
		var err error
		for _, e := range b.Entries() {
			if dst, err = midpoint(e.Space, dst); err != nil {
				return nil, err
			}
		}
		return dst, nil
	default:
		return nil, space.Unsupported(sp)
	}
}

func isInf(f float32) bool { return math.IsInf(float64(f), 0) }
