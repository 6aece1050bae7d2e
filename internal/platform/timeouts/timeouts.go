// Package timeouts defines shared timeout constants used by the client and
// the REST server.
package timeouts

import "time"

// Request caps a single attempt against the game server.
const Request = 10 * time.Second

// RetryBackoff is the base delay between transport retries. Attempt n waits
// n times this value.
const RetryBackoff = 250 * time.Millisecond

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long a server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second
