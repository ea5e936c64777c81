package order

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

// transitions lists the legal edges out of each state. States with no entry
// are terminal.
type transitions[S ~string] struct {
	states map[S]bool
	edges  map[S][]S
}

func (t transitions[S]) known(s S) bool {
	return t.states[s]
}

// allows reports whether from -> to is legal. Re-writing the current state
// is always allowed and has no effect.
func (t transitions[S]) allows(from, to S) bool {
	if from == to {
		return true
	}
	for _, next := range t.edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

var orderStatuses = transitions[Status]{
	states: map[Status]bool{
		StatusProcessing: true,
		StatusShipped:    true,
		StatusDelivered:  true,
		StatusCancelled:  true,
	},
	edges: map[Status][]Status{
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered, StatusCancelled},
	},
}

var paymentStatuses = transitions[PaymentStatus]{
	states: map[PaymentStatus]bool{
		PaymentPending: true,
		PaymentPaid:    true,
		PaymentFailed:  true,
	},
	edges: map[PaymentStatus][]PaymentStatus{
		PaymentPending: {PaymentPaid, PaymentFailed},
	},
}

func (s Status) Valid() bool        { return orderStatuses.known(s) }
func (s PaymentStatus) Valid() bool { return paymentStatuses.known(s) }

// IsTerminal reports whether no other status can follow s.
func (s Status) IsTerminal() bool {
	return s.Valid() && len(orderStatuses.edges[s]) == 0
}

func (s PaymentStatus) IsTerminal() bool {
	return s.Valid() && len(paymentStatuses.edges[s]) == 0
}

func CanTransition(from, to Status) bool {
	return from.Valid() && to.Valid() && orderStatuses.allows(from, to)
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	return from.Valid() && to.Valid() && paymentStatuses.allows(from, to)
}
