package registry

import (
	"fmt"

	"rld/internal/config"
	"rld/internal/host"
	"rld/internal/model"
	"rld/internal/space"
	"rld/internal/tensor"
)

// Entry is one servable model.
type Entry struct {
	ID     string
	Device tensor.Device
	Model  model.Model
}

// Build constructs a wrapped linear host model for every configured model,
// preserving config order.
func Build(models []config.ModelConfig) ([]Entry, error) {
	out := make([]Entry, 0, len(models))
	for _, mc := range models {
		e, err := buildOne(mc)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", mc.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func buildOne(mc config.ModelConfig) (Entry, error) {
	obs, err := space.Decode(mc.ObsSpace)
	if err != nil {
		return Entry{}, fmt.Errorf("obs_space: %w", err)
	}
	hostObs, err := ToHostSpace(obs)
	if err != nil {
		return Entry{}, err
	}
	if mc.Flatten {
		if hostObs, err = host.Flatten(hostObs); err != nil {
			return Entry{}, err
		}
	}
	var hostAct host.Space
	if mc.ActionSpace != nil {
		act, err := space.Decode(*mc.ActionSpace)
		if err != nil {
			return Entry{}, fmt.Errorf("action_space: %w", err)
		}
		if hostAct, err = ToHostSpace(act); err != nil {
			return Entry{}, err
		}
	}
	dev, err := tensor.ParseDevice(mc.Device)
	if err != nil {
		return Entry{}, err
	}
	lin, err := host.NewLinear(host.LinearConfig{
		Obs:     hostObs,
		Actions: mc.Actions,
		Action:  hostAct,
		Device:  dev,
		Seed:    mc.Seed,
		Weights: mc.Weights,
		Bias:    mc.Bias,
	})
	if err != nil {
		return Entry{}, err
	}
	w, err := model.Wrap(lin)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: mc.ID, Device: dev, Model: w}, nil
}

// ToHostSpace expresses an rld space in host framework terms.
func ToHostSpace(s space.Space) (host.Space, error) {
	switch v := s.(type) {
	case space.Box:
		low, high := v.Bounds()
		return host.Box{Shape: v.Shape(), Low: low, High: high}, nil
	case space.Dict:
		d := host.Dict{Spaces: make(map[string]host.Space, v.Len())}
		for _, e := range v.Entries() {
			hs, err := ToHostSpace(e.Space)
			if err != nil {
				return nil, err
			}
			d.Keys = append(d.Keys, e.Name)
			d.Spaces[e.Name] = hs
		}
		return d, nil
	default:
		return nil, space.Unsupported(s)
	}
}
