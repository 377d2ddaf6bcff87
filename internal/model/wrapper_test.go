package model

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"rld/internal/host"
	"rld/internal/pack"
	"rld/internal/space"
	"rld/internal/tensor"
)

// recordingModel is a host model that remembers its last input bundle and
// returns the flat view unchanged.
type recordingModel struct {
	obs, act host.Space
	params   []*tensor.Tensor
	last     host.InputDict
	state    []*tensor.Tensor
	seqLens  []int
	err      error
}

func (r *recordingModel) Forward(ctx context.Context, in host.InputDict, state []*tensor.Tensor, seqLens []int) (*tensor.Tensor, []*tensor.Tensor, error) {
	r.last, r.state, r.seqLens = in, state, seqLens
	if r.err != nil {
		return nil, nil, r.err
	}
	return in.ObsFlat, nil, nil
}
func (r *recordingModel) Parameters() []*tensor.Tensor { return r.params }
func (r *recordingModel) ObsSpace() host.Space         { return r.obs }
func (r *recordingModel) ActionSpace() host.Space      { return r.act }

func posVelHost(t *testing.T) host.Dict {
	t.Helper()
	d, err := host.NewDict("pos", host.Box{Shape: []int{2}}, "vel", host.Box{Shape: []int{1}})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFromHostSpace(t *testing.T) {
	inner, _ := host.NewDict("x", host.Box{Shape: []int{1}})
	outer, _ := host.NewDict("a", inner, "b", host.Box{Shape: []int{2}})
	got, err := FromHostSpace(outer)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	want := space.MustDict(
		space.E("a", space.MustDict(space.E("x", space.MustBox(1)))),
		space.E("b", space.MustBox(2)),
	)
	if !space.Equal(got, want) {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestFromHostSpacePrefersOriginal(t *testing.T) {
	flat, err := host.Flatten(posVelHost(t))
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromHostSpace(flat)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if space.KindOf(got) != space.KindDict {
		t.Fatalf("expected original dict space, got %s", got)
	}
	// Without an original, a preprocessed space is just its flat box.
	got, err = FromHostSpace(host.Preprocessed{Box: host.Box{Shape: []int{3}}})
	if err != nil || !space.Equal(got, space.MustBox(3)) {
		t.Fatalf("got %v err %v", got, err)
	}
}

func TestFromHostSpaceUnsupported(t *testing.T) {
	cases := []host.Space{
		host.Discrete{N: 2},
		host.Tuple{Spaces: []host.Space{host.Box{Shape: []int{1}}}},
		host.MultiBinary{N: 3},
		host.Dict{Keys: []string{"d"}, Spaces: map[string]host.Space{"d": host.Discrete{N: 2}}},
	}
	for _, c := range cases {
		if _, err := FromHostSpace(c); !space.IsUnsupportedSpaceKind(err) {
			t.Fatalf("%T: expected unsupported kind, got %v", c, err)
		}
	}
}

func TestWrapRejectsUnsupportedObsSpace(t *testing.T) {
	_, err := Wrap(&recordingModel{obs: host.Tuple{}, act: host.Discrete{N: 2}})
	if !space.IsUnsupportedSpaceKind(err) {
		t.Fatalf("expected unsupported kind, got %v", err)
	}
	if _, err := Wrap(nil); err == nil {
		t.Fatal("expected nil model error")
	}
}

func TestWrapActionSpace(t *testing.T) {
	w, err := Wrap(&recordingModel{obs: host.Box{Shape: []int{4}}, act: host.Discrete{N: 2}})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if _, err := w.ActionSpace(); !space.IsUnsupportedSpaceKind(err) {
		t.Fatalf("discrete action space should be unsupported, got %v", err)
	}
	w, err = Wrap(&recordingModel{obs: host.Box{Shape: []int{4}}, act: host.Box{Shape: []int{2}}})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	act, err := w.ActionSpace()
	if err != nil || !space.Equal(act, space.MustBox(2)) {
		t.Fatalf("act=%v err=%v", act, err)
	}
}

func TestForwardBoxPassesFlatThrough(t *testing.T) {
	rm := &recordingModel{obs: host.Box{Shape: []int{3}}, act: host.Box{Shape: []int{1}}}
	w, err := Wrap(rm)
	if err != nil {
		t.Fatal(err)
	}
	x := tensor.MustNew([]float32{1, 2, 3}, 3)
	if _, err := w.Forward(context.Background(), x); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if rm.last.ObsFlat != x {
		t.Fatal("obs_flat must be the caller's tensor")
	}
	leaf, ok := rm.last.Obs.(pack.Leaf[*tensor.Tensor])
	if !ok || leaf.Value != x {
		t.Fatalf("obs=%#v", rm.last.Obs)
	}
	if rm.state != nil || rm.seqLens != nil {
		t.Fatal("state and seq lens must be nil")
	}
}

func TestForwardDictSendsBothViews(t *testing.T) {
	flat, _ := host.Flatten(posVelHost(t))
	rm := &recordingModel{obs: flat, act: host.Box{Shape: []int{1}}}
	w, err := Wrap(rm)
	if err != nil {
		t.Fatal(err)
	}
	x := tensor.MustNew([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	out, err := w.Forward(context.Background(), x)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if out != x {
		t.Fatal("expected recording model to echo obs_flat")
	}
	m, ok := rm.last.Obs.(*pack.Map[*tensor.Tensor])
	if !ok {
		t.Fatalf("obs=%T", rm.last.Obs)
	}
	if !reflect.DeepEqual(m.Keys(), []string{"pos", "vel"}) {
		t.Fatalf("keys=%v", m.Keys())
	}
	vel, _ := m.Get("vel")
	v := vel.(pack.Leaf[*tensor.Tensor]).Value
	if !reflect.DeepEqual(v.Shape(), []int{2, 1}) || v.At(0) != 3 || v.At(1) != 6 {
		t.Fatalf("vel=%v %v", v.Shape(), v.Data())
	}
}

func TestForwardErrors(t *testing.T) {
	rm := &recordingModel{obs: posVelHost(t), act: host.Box{Shape: []int{1}}}
	w, _ := Wrap(rm)
	if _, err := w.Forward(context.Background(), nil); err == nil {
		t.Fatal("expected nil input error")
	}
	if _, err := w.Forward(context.Background(), tensor.MustNew([]float32{1}, 1)); !errors.Is(err, pack.ErrShape) {
		t.Fatalf("expected shape error, got %v", err)
	}
	boom := errors.New("boom")
	rm.err = boom
	if _, err := w.Forward(context.Background(), tensor.MustNew([]float32{1, 2, 3}, 3)); !errors.Is(err, boom) {
		t.Fatalf("expected host error, got %v", err)
	}
}

func TestDevices(t *testing.T) {
	rm := &recordingModel{obs: host.Box{Shape: []int{1}}, act: host.Box{Shape: []int{1}}}
	w, _ := Wrap(rm)
	if w.InputDevice() != tensor.CPU || w.OutputDevice() != tensor.CPU {
		t.Fatal("parameterless model defaults to cpu")
	}
	rm.params = []*tensor.Tensor{tensor.Zeros("cuda:0", 1)}
	if w.InputDevice() != "cuda:0" || w.OutputDevice() != "cuda:0" {
		t.Fatalf("in=%s out=%s", w.InputDevice(), w.OutputDevice())
	}
	w2, _ := Wrap(rm, WithOutputDevice(tensor.CPU))
	if w2.InputDevice() != "cuda:0" || w2.OutputDevice() != tensor.CPU {
		t.Fatalf("override: in=%s out=%s", w2.InputDevice(), w2.OutputDevice())
	}
	if w.Unwrapped() != rm {
		t.Fatal("Unwrapped must return host model")
	}
}

func TestFlattenUnflattenObs(t *testing.T) {
	w, _ := Wrap(&recordingModel{obs: posVelHost(t), act: host.Box{Shape: []int{1}}})
	flat, err := FlattenObs(w, pack.M(pack.F("pos", pack.A(1, 2)), pack.F("vel", pack.A(3))))
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if !reflect.DeepEqual(flat, []float32{1, 2, 3}) {
		t.Fatalf("flat=%v", flat)
	}
	o, err := UnflattenObs(w, flat)
	if err != nil {
		t.Fatalf("unflatten: %v", err)
	}
	if keys := o.(*pack.Map[tensor.Array]).Keys(); !reflect.DeepEqual(keys, []string{"pos", "vel"}) {
		t.Fatalf("keys=%v", keys)
	}
}

func TestWrapLinear(t *testing.T) {
	l, err := host.NewLinear(host.LinearConfig{
		Obs:     posVelHost(t),
		Actions: 2,
		Weights: [][]float64{{1, 1, 1}, {0, 0, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	w, err := Wrap(l)
	if err != nil {
		t.Fatal(err)
	}
	q, err := w.Forward(context.Background(), tensor.MustNew([]float32{1, 2, 3}, 3))
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if q.At(0) != 6 || q.At(1) != 3 {
		t.Fatalf("q=%v", q.Data())
	}
}
