package orders

import "context"

// PlacedOrder is what a successful placement hands back to the transport
// layer, which needs the ingredients of the order.created event.
type PlacedOrder struct {
	OrderID    string
	CustomerID string
	TotalCents int
	Items      []ItemInput
}

// StatusChange reports a committed transition. Enqueued is true when the
// transition produced a notification job (entered paid).
type StatusChange struct {
	OrderID    string
	From       Status
	To         Status
	TotalCents int
	Enqueued   bool
	JobID      string
}

// Store is the transactional order engine. The Postgres implementation is
// Repo; handlers and workers depend on this interface so tests can substitute
// an in-memory stub.
type Store interface {
	// PlaceOrder validates, reserves stock and creates the order atomically.
	// Any failure leaves no order, no items and no stock change behind.
	PlaceOrder(ctx context.Context, p Principal, items []ItemInput) (*PlacedOrder, error)

	// SetStatus moves an order along the lifecycle graph, enforcing the
	// caller's role, and enqueues the payment notification in the same
	// transaction when the order enters paid.
	SetStatus(ctx context.Context, p Principal, orderID string, next Status) (*StatusChange, error)

	// GetOrder returns the order and its owner's principal id so the read
	// path can apply the visibility predicate.
	GetOrder(ctx context.Context, orderID string) (*Order, string, error)

	// ComputeTotal re-derives the total from current line items. Owner-gated;
	// always equals the stored total.
	ComputeTotal(ctx context.Context, p Principal, orderID string) (int, error)

	// OrderLines is the export projection, owner-gated. Nonexistent and
	// not-owned are both ErrOrderNotFound.
	OrderLines(ctx context.Context, p Principal, orderID string) ([]OrderLine, error)

	ListProducts(ctx context.Context) ([]Product, error)
}

// Queue is the notifier worker's view of the durable job table.
type Queue interface {
	ClaimPending(ctx context.Context, limit int) ([]NotificationJob, error)
	MarkJob(ctx context.Context, jobID string, status JobStatus) error
}
