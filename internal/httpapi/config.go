package httpapi

import "time"

// maxBodyBytes limits JSON request bodies.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes sets the body limit; n <= 0 restores the 1 MiB default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// inferTimeout bounds one /infer request. Zero leaves it to the client's
// own deadline.
var inferTimeout time.Duration

// SetInferTimeout sets the per-request deadline (0 disables).
func SetInferTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	inferTimeout = d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	corsAllowedHeaders = []string{"Content-Type", "X-Request-Id", "X-Log-Level"}
)

// SetCORSOrigins enables CORS for origins. An empty list disables it.
func SetCORSOrigins(origins []string) {
	corsEnabled = len(origins) > 0
	corsAllowedOrigins = append([]string(nil), origins...)
}
