package orders

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOrderNotFound   = errors.New("order not found")
)

// RejectReason explains why a reservation was refused. The zero value means
// the reservation committed.
type RejectReason string

const (
	RejectNotFound          RejectReason = "not_found"
	RejectInsufficientStock RejectReason = "insufficient_stock"
	RejectInvalidQuantity   RejectReason = "invalid_quantity"
)

// Outcome is the business result of a reservation. Infrastructure faults are
// returned separately as errors.
type Outcome struct {
	OrderID int64
	Reason  RejectReason
}

func Committed(orderID int64) Outcome { return Outcome{OrderID: orderID} }

func Rejected(reason RejectReason) Outcome { return Outcome{Reason: reason} }

func (o Outcome) Committed() bool { return o.Reason == "" }
