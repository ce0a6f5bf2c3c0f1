package redisx

import "time"

const (
	// Cache of order status: order_status:{order_id} ->
	// {"status":"...","principal_id":"..."} — the owner's principal rides
	// along so the visibility predicate applies to cache hits too.
	KeyOrderStatus = "order_status:%s"

	// Dedup of consumed events: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
