package httpapi

import "time"

// maxBodyBytes caps request bodies on JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes sets the request body limit; n <= 0 restores 1 MiB.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// forwardTimeout bounds a single forward call. Zero disables it.
var forwardTimeout time.Duration

// SetForwardTimeout sets the per-request forward timeout (<= 0 disables).
func SetForwardTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	forwardTimeout = d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
