package defaults

import "time"

// Server timeouts.
const (
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 90 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Server rate limiting, in requests per second and burst size.
const (
	ServerRateLimit      = 100
	ServerRateLimitBurst = 200
)

// ValidationTimeout bounds one validation request, lookups included.
// It stays below ServerWriteTimeout so the failure is still reported.
const ValidationTimeout = 60 * time.Second

// KubeAPITimeout bounds a single Kubernetes API call.
const KubeAPITimeout = 30 * time.Second

// HTTPClientTimeout bounds fetching a policy over HTTP(S).
const HTTPClientTimeout = 30 * time.Second

// MaxDocumentSize caps request bodies and fetched policy documents.
const MaxDocumentSize = 1 << 20
