package types

import "rld/internal/space"

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// SpaceResponse is returned by GET /models/{id}/space.
type SpaceResponse struct {
	// example: cartpole
	ID       string           `json:"id" example:"cartpole"`
	ObsSpace space.Descriptor `json:"obs_space"`
	// Action space, when it can be expressed as box/dict.
	ActionSpace *space.Descriptor `json:"action_space,omitempty"`
	// Why the action space could not be expressed, if it could not.
	// example: unsupported space kind: host.Discrete {2}
	ActionSpaceError string `json:"action_space_error,omitempty" example:"unsupported space kind: host.Discrete {2}"`
	// Flat element count of the observation space.
	// example: 4
	Size int `json:"size" example:"4"`
}

// PackRequest carries one structured observation (or a list of them).
type PackRequest struct {
	// Structured observation keyed like the observation space.
	Obs any `json:"obs,omitempty" swaggertype:"object"`
	// Batch of structured observations; packed row by row.
	Batch []any `json:"batch,omitempty" swaggertype:"array,object"`
}

// PackResponse holds the flat form of a PackRequest.
type PackResponse struct {
	// Flat observation ([size] or [N][size] for batches).
	Flat any `json:"flat" swaggertype:"array,number"`
	// Shape of Flat.
	// example: [3]
	Shape []int `json:"shape" example:"3"`
}

// UnpackRequest carries a flat observation, optionally batched.
type UnpackRequest struct {
	// [size] or [N][size].
	Flat any `json:"flat" swaggertype:"array,number"`
}

// UnpackResponse holds the structured form of an UnpackRequest.
type UnpackResponse struct {
	// Structured observation with keys in declared order. Leaves gain a
	// leading batch dimension when the input was batched.
	Obs any `json:"obs" swaggertype:"object"`
	// Batch size, or 0 for an unbatched input.
	// example: 0
	Batch int `json:"batch" example:"0"`
}

// ForwardRequest runs a model on either a structured or a flat observation.
type ForwardRequest struct {
	// Structured observation (single).
	Obs any `json:"obs,omitempty" swaggertype:"object"`
	// Structured observations (batch).
	Batch []any `json:"batch,omitempty" swaggertype:"array,object"`
	// Flat observation, [size] or [N][size].
	Flat any `json:"flat,omitempty" swaggertype:"array,number"`
}

// ForwardResponse carries model outputs.
type ForwardResponse struct {
	// Identifier of this forward call, for log correlation.
	// example: 3f0c1a52-1f7e-4c55-9a51-0d4d7e1c2b7a
	CallID string `json:"call_id" example:"3f0c1a52-1f7e-4c55-9a51-0d4d7e1c2b7a"`
	// Action values ([actions] or [N][actions]).
	Output any `json:"output" swaggertype:"array,number"`
	// Shape of Output.
	// example: [2]
	Shape []int `json:"shape" example:"2"`
	// Device the output lives on.
	// example: cpu
	Device string `json:"device" example:"cpu"`
}

// BaselineResponse is an attribution baseline in flat and structured form.
type BaselineResponse struct {
	// example: zeros
	Kind string    `json:"kind" example:"zeros"`
	Flat []float32 `json:"flat"`
	Obs  any       `json:"obs" swaggertype:"object"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Number of registered models.
	// example: 2
	Models int `json:"models" example:"2"`
	// Default model used when a request names none.
	// example: cartpole
	DefaultModel string `json:"default_model,omitempty" example:"cartpole"`
	// Total forward calls served.
	// example: 12
	ForwardCalls uint64 `json:"forward_calls" example:"12"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
