package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	// EstimatedDeliveryWindow is added to the placement time to get the estimated arrival.
	EstimatedDeliveryWindow = 7 * 24 * time.Hour
	// InitialJourneyProgress is the progress of a freshly placed order.
	InitialJourneyProgress = 15
)

// StatusEntry is one immutable line of a delivery's history.
type StatusEntry struct {
	Status  DeliveryStatus `json:"status"`
	Date    time.Time      `json:"date"`
	Message string         `json:"message"`
}

// DeliveryTracking is the mutable shipment record embedded in every order.
type DeliveryTracking struct {
	// OrderID points back to the owning order and never changes.
	OrderID string `json:"orderId"`
	// Product is a copy of the order's first product.
	Product Product `json:"product"`
	// Status is the current journey stage.
	Status DeliveryStatus `json:"status"`
	// StatusHistory is append-only, oldest first, never empty.
	StatusHistory []StatusEntry `json:"statusHistory"`
	// EstimatedArrival is fixed at creation.
	EstimatedArrival time.Time `json:"estimatedArrival"`
	// CurrentLocation is free text describing where the item is.
	CurrentLocation string `json:"currentLocation"`
	// JourneyProgress is a caller supplied percentage, 0..100.
	JourneyProgress int `json:"journeyProgress"`
}

// Order is a single purchase with its delivery tracking.
type Order struct {
	ID          string           `json:"id"`
	Products    []Product        `json:"products"`
	TotalAmount float64          `json:"totalAmount"`
	PlacedAt    time.Time        `json:"placedAt"`
	Tracking    DeliveryTracking `json:"tracking"`
}

// StatusUpdate carries one status change.
// Location is optional: nil keeps the current location.
type StatusUpdate struct {
	Status   DeliveryStatus
	Progress int
	Message  string
	Location *string
}

// Validate checks the stage and the progress range.
func (u StatusUpdate) Validate() error {
	if !u.Status.Valid() {
		return fmt.Errorf("%w: unknown delivery status %q", ErrInvalidArgument, u.Status)
	}
	if u.Progress < 0 || u.Progress > 100 {
		return fmt.Errorf("%w: progress must be within 0..100, got %d", ErrInvalidArgument, u.Progress)
	}
	return nil
}

// FarewellMessage is the first history message of every order.
func FarewellMessage(p Product) string {
	return fmt.Sprintf("%s is being carefully prepared for its journey to you", p.Name)
}

// NewOrder creates an order and its tracking record in one step.
// The tracking starts at farewell, 15% progress, at the first product's location.
func NewOrder(id string, products []Product, totalAmount float64, now time.Time) (Order, error) {
	if id == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrInvalidArgument)
	}
	if len(products) == 0 {
		return Order{}, fmt.Errorf("%w: an order needs at least one product", ErrInvalidArgument)
	}
	if totalAmount < 0 || math.IsNaN(totalAmount) || math.IsInf(totalAmount, 0) {
		return Order{}, fmt.Errorf("%w: total amount must be a non-negative number, got %v", ErrInvalidArgument, totalAmount)
	}

	items := make([]Product, len(products))
	for i, p := range products {
		items[i] = p.Clone()
	}
	first := items[0]

	return Order{
		ID:          id,
		Products:    items,
		TotalAmount: totalAmount,
		PlacedAt:    now,
		Tracking: DeliveryTracking{
			OrderID: id,
			Product: first.Clone(),
			Status:  StatusFarewell,
			StatusHistory: []StatusEntry{
				{Status: StatusFarewell, Date: now, Message: FarewellMessage(first)},
			},
			EstimatedArrival: now.Add(EstimatedDeliveryWindow),
			CurrentLocation:  first.CurrentLocation,
			JourneyProgress:  InitialJourneyProgress,
		},
	}, nil
}

// Apply records u on the tracking: status and progress are replaced, the location only
// when u.Location is set, and one history entry is appended.
func (t *DeliveryTracking) Apply(u StatusUpdate, now time.Time) {
	t.Status = u.Status
	t.JourneyProgress = u.Progress
	if u.Location != nil {
		t.CurrentLocation = *u.Location
	}
	t.StatusHistory = append(t.StatusHistory, StatusEntry{
		Status:  u.Status,
		Date:    now,
		Message: u.Message,
	})
}

// LastEntry returns the most recent history entry.
func (t DeliveryTracking) LastEntry() (StatusEntry, bool) {
	if len(t.StatusHistory) == 0 {
		return StatusEntry{}, false
	}
	return t.StatusHistory[len(t.StatusHistory)-1], true
}

// Clone returns a deep copy of o.
func (o Order) Clone() Order {
	c := o
	if o.Products != nil {
		c.Products = make([]Product, len(o.Products))
		for i, p := range o.Products {
			c.Products[i] = p.Clone()
		}
	}
	c.Tracking.Product = o.Tracking.Product.Clone()
	if o.Tracking.StatusHistory != nil {
		c.Tracking.StatusHistory = append([]StatusEntry(nil), o.Tracking.StatusHistory...)
	}
	return c
}

// CheckInvariants reports the first broken structural rule of o, if any.
// Used when loading persisted orders.
func (o Order) CheckInvariants() error {
	switch {
	case o.ID == "":
		return fmt.Errorf("%w: order without id", ErrMalformedState)
	case len(o.Products) == 0:
		return fmt.Errorf("%w: order %s has no products", ErrMalformedState, o.ID)
	case o.Tracking.OrderID != o.ID:
		return fmt.Errorf("%w: order %s tracking points to %q", ErrMalformedState, o.ID, o.Tracking.OrderID)
	case len(o.Tracking.StatusHistory) == 0:
		return fmt.Errorf("%w: order %s has an empty status history", ErrMalformedState, o.ID)
	case !o.Tracking.Status.Valid():
		return fmt.Errorf("%w: order %s has unknown status %q", ErrMalformedState, o.ID, o.Tracking.Status)
	}
	return nil
}
