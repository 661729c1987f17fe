package redisx

import "time"

const (
	// Idempotent order placement: idem:order:place:{idempotency key} -> "pending" | order id
	KeyIdemOrderPlace = "idem:order:place:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	// TTLPending bounds how long a crashed request can hold its key.
	TTLPending = 2 * time.Minute
)
