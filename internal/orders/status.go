package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCanceled  Status = "canceled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusPaid: true, StatusCanceled: true},
	StatusPaid:      {StatusShipped: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
	StatusCanceled:  {},
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition reports whether from→to is an edge of the lifecycle graph.
// There are no self-edges: repeating a transition is rejected.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// CustomerMayRequest reports whether a non-privileged owner may ask for this
// transition. Owners can only cancel an order that has not been paid yet;
// everything else is the system's job.
func CustomerMayRequest(from, to Status) bool {
	return from == StatusPending && to == StatusCanceled
}

// ShouldNotify reports whether a committed transition must enqueue a payment
// notification: entering paid from any non-paid status, exactly once.
func ShouldNotify(from, to Status) bool {
	return to == StatusPaid && from != StatusPaid
}
