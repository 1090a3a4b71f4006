package domain

import "fmt"

// DeliveryStatus is the stage of a delivery journey.
//
//	farewell ──> transit ──> near-arrival ──> new-beginning
//
// The order store accepts any stage by default. Strict mode applies ValidateTransition,
// which allows staying on the same stage or moving forward, and nothing once terminal.
type DeliveryStatus string

const (
	// StatusFarewell: the item is leaving its previous owner or warehouse.
	StatusFarewell DeliveryStatus = "farewell"
	// StatusTransit: the item is in active transport.
	StatusTransit DeliveryStatus = "transit"
	// StatusNearArrival: the item is close to its destination.
	StatusNearArrival DeliveryStatus = "near-arrival"
	// StatusNewBeginning: the item has been delivered. Terminal.
	StatusNewBeginning DeliveryStatus = "new-beginning"
)

type stageInfo struct {
	rank        int
	label       string
	description string
}

var stages = map[DeliveryStatus]stageInfo{
	StatusFarewell:     {0, "Farewell", "Saying goodbye to its previous home"},
	StatusTransit:      {1, "In Transit", "Traveling to find you"},
	StatusNearArrival:  {2, "Near Arrival", "Almost at its new home"},
	StatusNewBeginning: {3, "New Beginning", "Ready to start a new chapter"},
}

// Statuses lists every stage in journey order.
func Statuses() []DeliveryStatus {
	return []DeliveryStatus{StatusFarewell, StatusTransit, StatusNearArrival, StatusNewBeginning}
}

// Valid reports whether s is one of the four stages.
func (s DeliveryStatus) Valid() bool {
	_, ok := stages[s]
	return ok
}

// Rank returns the position of s in the journey, or -1 for an unknown value.
func (s DeliveryStatus) Rank() int {
	if info, ok := stages[s]; ok {
		return info.rank
	}
	return -1
}

// IsTerminal reports whether no further stage follows s.
func (s DeliveryStatus) IsTerminal() bool {
	return s == StatusNewBeginning
}

// Next returns the stage after s. ok is false for the terminal stage and unknown values.
func (s DeliveryStatus) Next() (next DeliveryStatus, ok bool) {
	r := s.Rank()
	all := Statuses()
	if r < 0 || r+1 >= len(all) {
		return "", false
	}
	return all[r+1], true
}

// Label is the human-readable stage name.
func (s DeliveryStatus) Label() string {
	if info, ok := stages[s]; ok {
		return info.label
	}
	return "Unknown"
}

// Description is the one-line stage explanation shown on the journey view.
func (s DeliveryStatus) Description() string {
	return stages[s].description
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(raw string) (DeliveryStatus, error) {
	s := DeliveryStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown delivery status %q", ErrInvalidArgument, raw)
	}
	return s, nil
}

// ValidateTransition checks the forward-only rule used in strict mode.
func ValidateTransition(from, to DeliveryStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown delivery status %q", ErrInvalidArgument, to)
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if to.Rank() < from.Rank() {
		return fmt.Errorf("%w: %s cannot follow %s", ErrInvalidTransition, to, from)
	}
	return nil
}
