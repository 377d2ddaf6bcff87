// Package service exposes the pack/unpack engine and wrapped models to
// transports (HTTP, CLI). It is structured into small files by concern:
//
//   - service.go: Service type, constructor, registry lookups, status.
//   - errors.go: error types and helpers (IsModelNotFound, StatusCode mapping).
//   - ops.go: Describe, Size, Pack, Unpack and Forward.
//   - baseline.go: attribution baselines laid out like packed observations.
//   - metrics.go: Prometheus counters for engine operations.
//
// All operations are synchronous. The registry is guarded by a RWMutex so
// models can be registered while requests are served; spaces themselves are
// immutable and need no locking.
package service
