package model

import (
	"context"
	"fmt"

	"rld/internal/host"
	"rld/internal/pack"
	"rld/internal/space"
	"rld/internal/tensor"
)

// HostWrapper adapts a host.Model to Model. Spaces are translated once at
// construction and are read-only afterwards, so a HostWrapper may be shared
// by concurrent callers as long as the host model's Forward is.
type HostWrapper struct {
	m         host.Model
	obs       space.Space
	act       space.Space
	actErr    error
	outDevice tensor.Device
}

// Option customizes a HostWrapper.
type Option func(*HostWrapper)

// WithOutputDevice overrides the default output device (the input device).
func WithOutputDevice(d tensor.Device) Option {
	return func(w *HostWrapper) { w.outDevice = d }
}

// Wrap derives the observation and action spaces of m. The observation
// space must translate; an untranslatable action space is remembered and
// reported by ActionSpace.
func Wrap(m host.Model, opts ...Option) (*HostWrapper, error) {
	if m == nil {
		return nil, fmt.Errorf("wrap: nil host model")
	}
	obs, err := FromHostSpace(m.ObsSpace())
	if err != nil {
		return nil, fmt.Errorf("observation space: %w", err)
	}
	w := &HostWrapper{m: m, obs: obs}
	w.act, w.actErr = FromHostSpace(m.ActionSpace())
	if w.actErr != nil {
		w.actErr = fmt.Errorf("action space: %w", w.actErr)
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Unwrapped returns the host model.
func (w *HostWrapper) Unwrapped() host.Model { return w.m }

// InputDevice is the device of the first model parameter, or CPU for a
// model without parameters.
func (w *HostWrapper) InputDevice() tensor.Device {
	if ps := w.m.Parameters(); len(ps) > 0 && ps[0] != nil {
		return ps[0].Device()
	}
	return tensor.CPU
}

// OutputDevice defaults to InputDevice.
func (w *HostWrapper) OutputDevice() tensor.Device {
	if w.outDevice != "" {
		return w.outDevice
	}
	return w.InputDevice()
}

func (w *HostWrapper) ObsSpace() space.Space { return w.obs }

func (w *HostWrapper) ActionSpace() (space.Space, error) { return w.act, w.actErr }

// Forward builds the host input bundle and runs the host model. For a Box
// observation space the flat block is passed as both views; for a Dict the
// flat block is unpacked so the model also receives the structured view.
// x must already be on InputDevice.
func (w *HostWrapper) Forward(ctx context.Context, x *tensor.Tensor) (*tensor.Tensor, error) {
	in, err := w.inputDict(x)
	if err != nil {
		return nil, err
	}
	out, _, err := w.m.Forward(ctx, in, nil, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *HostWrapper) inputDict(x *tensor.Tensor) (host.InputDict, error) {
	if x == nil {
		return host.InputDict{}, fmt.Errorf("forward: nil observation")
	}
	if _, ok := w.obs.(space.Box); ok {
		return host.InputDict{Obs: pack.T(x), ObsFlat: x}, nil
	}
	obs, err := pack.UnpackTensor(x, w.obs)
	if err != nil {
		return host.InputDict{}, err
	}
	return host.InputDict{Obs: obs, ObsFlat: x}, nil
}
