package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rld/internal/model"
	"rld/internal/pack"
	"rld/internal/registry"
	"rld/internal/space"
	"rld/internal/tensor"
	"rld/pkg/types"
)

// Service serves registered models by id.
type Service struct {
	mu           sync.RWMutex
	models       map[string]registry.Entry
	order        []string
	defaultModel string

	log          zerolog.Logger
	newCallID    func() string
	startTime    time.Time
	forwardCalls atomic.Uint64
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger installs a structured logger. The default discards output.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(id string) Option { return func(s *Service) { s.defaultModel = id } }

// New builds a Service over entries, keeping their order for listings.
func New(entries []registry.Entry, opts ...Option) *Service {
	s := &Service{
		models:    make(map[string]registry.Entry, len(entries)),
		log:       zerolog.Nop(),
		newCallID: func() string { return uuid.NewString() },
		startTime: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	for _, e := range entries {
		s.Register(e)
	}
	return s
}

// Register adds or replaces a model.
func (s *Service) Register(e registry.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.models[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.models[e.ID] = e
	s.log.Debug().Str("model", e.ID).Str("obs_space", e.Model.ObsSpace().String()).Msg("model registered")
}

// Ready reports whether at least one model is registered.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.models) > 0
}

func (s *Service) lookup(id string) (registry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == "" {
		id = s.defaultModel
	}
	e, ok := s.models[id]
	if !ok {
		return registry.Entry{}, ErrModelNotFound(id)
	}
	return e, nil
}

// Model returns the wrapped model registered under id.
func (s *Service) Model(id string) (model.Model, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.Model, nil
}

// ListModels returns registered models in registration order. Models whose
// space cannot be described are skipped.
func (s *Service) ListModels() []types.Model {
	s.mu.RLock()
	ids := append([]string(nil), s.order...)
	s.mu.RUnlock()
	out := make([]types.Model, 0, len(ids))
	for _, id := range ids {
		e, err := s.lookup(id)
		if err != nil {
			continue
		}
		obs := e.Model.ObsSpace()
		desc, err := space.Encode(obs)
		if err != nil {
			continue
		}
		n, _ := pack.Size(obs)
		out = append(out, types.Model{
			ID:           id,
			ObsSpace:     desc,
			Size:         n,
			InputDevice:  e.Model.InputDevice().String(),
			OutputDevice: e.Model.OutputDevice().String(),
		})
	}
	return out
}

// Status summarizes the service.
func (s *Service) Status() types.StatusResponse {
	s.mu.RLock()
	n := len(s.models)
	def := s.defaultModel
	s.mu.RUnlock()
	now := time.Now()
	return types.StatusResponse{
		Models:         n,
		DefaultModel:   def,
		ForwardCalls:   s.forwardCalls.Load(),
		UptimeSeconds:  int64(now.Sub(s.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

// deviceOf is the device a flat block for m must live on.
func deviceOf(m model.Model) tensor.Device {
	if d := m.InputDevice(); d != "" {
		return d
	}
	return tensor.CPU
}
