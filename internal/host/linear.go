package host

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"rld/internal/tensor"
)

// Linear is a linear action-value policy: q = W·obs_flat + b. It only reads
// the flat view of its input, like most RLlib fully connected models.
type Linear struct {
	obs, act Space
	w        *mat.Dense // actions x inputs
	b        *mat.VecDense
	device   tensor.Device
}

// LinearConfig describes a Linear model.
type LinearConfig struct {
	Obs     Space
	Actions int
	// Action defaults to Discrete{Actions}.
	Action Space
	Device tensor.Device
	Seed   int64
	// Weights and Bias override the seeded initialization when set.
	Weights [][]float64
	Bias    []float64
}

// NewLinear builds a Linear model, initializing weights uniformly in
// [-1/sqrt(in), 1/sqrt(in)) from Seed unless Weights are given.
func NewLinear(cfg LinearConfig) (*Linear, error) {
	in, err := FlatSize(cfg.Obs)
	if err != nil {
		return nil, err
	}
	if cfg.Actions <= 0 {
		return nil, fmt.Errorf("linear: actions must be positive, got %d", cfg.Actions)
	}
	if in <= 0 {
		return nil, fmt.Errorf("linear: observation space is empty")
	}
	l := &Linear{
		obs:    cfg.Obs,
		act:    cfg.Action,
		w:      mat.NewDense(cfg.Actions, in, nil),
		b:      mat.NewVecDense(cfg.Actions, nil),
		device: cfg.Device,
	}
	if l.act == nil {
		l.act = Discrete{N: cfg.Actions}
	}
	if l.device == "" {
		l.device = tensor.CPU
	}
	if cfg.Weights != nil {
		if len(cfg.Weights) != cfg.Actions {
			return nil, fmt.Errorf("linear: %d weight rows, want %d", len(cfg.Weights), cfg.Actions)
		}
		for r, row := range cfg.Weights {
			if len(row) != in {
				return nil, fmt.Errorf("linear: weight row %d has %d columns, want %d", r, len(row), in)
			}
			l.w.SetRow(r, row)
		}
	} else {
		rng := rand.New(rand.NewSource(cfg.Seed))
		scale := 1 / math.Sqrt(float64(in))
		for r := 0; r < cfg.Actions; r++ {
			for c := 0; c < in; c++ {
				l.w.Set(r, c, (2*rng.Float64()-1)*scale)
			}
		}
	}
	if cfg.Bias != nil {
		if len(cfg.Bias) != cfg.Actions {
			return nil, fmt.Errorf("linear: %d bias values, want %d", len(cfg.Bias), cfg.Actions)
		}
		for i, v := range cfg.Bias {
			l.b.SetVec(i, v)
		}
	}
	return l, nil
}

// Forward computes action values for one observation ([in] -> [actions]) or
// a batch ([N, in] -> [N, actions]).
func (l *Linear) Forward(ctx context.Context, in InputDict, state []*tensor.Tensor, seqLens []int) (*tensor.Tensor, []*tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	x := in.ObsFlat
	if x == nil {
		return nil, nil, fmt.Errorf("linear: obs_flat is required")
	}
	if x.Device() != l.device {
		return nil, nil, fmt.Errorf("linear: input on %s, model on %s", x.Device(), l.device)
	}
	actions, cols := l.w.Dims()
	rows := 1
	batched := x.Rank() == 2
	switch {
	case batched:
		rows = x.Dim(0)
	case x.Rank() != 1:
		return nil, nil, fmt.Errorf("linear: obs_flat rank %d", x.Rank())
	}
	if x.Len() != rows*cols {
		return nil, nil, fmt.Errorf("linear: obs_flat %v, want %d features", x.Shape(), cols)
	}
	raw := x.Data()
	xs := make([]float64, len(raw))
	for i, v := range raw {
		xs[i] = float64(v)
	}
	var q mat.Dense
	q.Mul(mat.NewDense(rows, cols, xs), l.w.T())
	out := make([]float32, 0, rows*actions)
	for r := 0; r < rows; r++ {
		for a := 0; a < actions; a++ {
			out = append(out, float32(q.At(r, a)+l.b.AtVec(a)))
		}
	}
	shape := []int{actions}
	if batched {
		shape = []int{rows, actions}
	}
	y, err := tensor.New(out, shape...)
	if err != nil {
		return nil, nil, err
	}
	return y.To(l.device), nil, nil
}

// Parameters returns copies of W and b on the model device.
func (l *Linear) Parameters() []*tensor.Tensor {
	r, c := l.w.Dims()
	w := make([]float32, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			w = append(w, float32(l.w.At(i, j)))
		}
	}
	b := make([]float32, r)
	for i := range b {
		b[i] = float32(l.b.AtVec(i))
	}
	return []*tensor.Tensor{
		tensor.MustNew(w, r, c).To(l.device),
		tensor.MustNew(b, r).To(l.device),
	}
}

func (l *Linear) ObsSpace() Space    { return l.obs }
func (l *Linear) ActionSpace() Space { return l.act }

