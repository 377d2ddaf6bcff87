package types

import "rld/internal/space"

// Model describes a servable policy model.
type Model struct {
	// Stable identifier for the model.
	// example: cartpole
	ID string `json:"id" example:"cartpole"`
	// Structured observation space.
	ObsSpace space.Descriptor `json:"obs_space"`
	// Flat element count of the observation space.
	// example: 4
	Size int `json:"size" example:"4"`
	// Device on which forward inputs must be materialized.
	// example: cpu
	InputDevice string `json:"input_device" example:"cpu"`
	// Device on which forward outputs are returned.
	// example: cpu
	OutputDevice string `json:"output_device" example:"cpu"`
}
