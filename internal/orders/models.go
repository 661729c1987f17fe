package orders

import "time"

// Order is one purchase record. Orders are created only by a successful
// reservation and are not modified by this package afterwards.
type Order struct {
	ID              int64
	StockUnitID     int64
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Quantity        int
	Status          Status
	CreatedAt       time.Time
}

// PlaceRequest is a purchase intent for one stock unit.
type PlaceRequest struct {
	StockUnitID     int64
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Quantity        int
}
