package domain

import (
	"time"

	orderdomain "afterlife/internal/features/orders/domain"
)

// Stage is one milestone of the journey view.
type Stage struct {
	Status      orderdomain.DeliveryStatus `json:"status"`
	Label       string                     `json:"label"`
	Description string                     `json:"description"`
	// Completed is true for stages before the current one.
	Completed bool `json:"completed"`
	// Current is true for the stage the delivery is in.
	Current bool `json:"current"`
}

// Journey is the read model behind the "journey home" view of an order.
type Journey struct {
	OrderID          string                     `json:"orderId"`
	ProductName      string                     `json:"productName"`
	Status           orderdomain.DeliveryStatus `json:"status"`
	StatusLabel      string                     `json:"statusLabel"`
	JourneyProgress  int                        `json:"journeyProgress"`
	CurrentLocation  string                     `json:"currentLocation"`
	EstimatedArrival time.Time                  `json:"estimatedArrival"`
	Delivered        bool                       `json:"delivered"`
	Stages           []Stage                    `json:"stages"`
	History          []orderdomain.StatusEntry  `json:"history"`
}

// BuildJourney derives the journey view from a delivery tracking record.
func BuildJourney(t orderdomain.DeliveryTracking) Journey {
	current := t.Status.Rank()

	stages := make([]Stage, 0, len(orderdomain.Statuses()))
	for _, s := range orderdomain.Statuses() {
		stages = append(stages, Stage{
			Status:      s,
			Label:       s.Label(),
			Description: s.Description(),
			Completed:   s.Rank() < current,
			Current:     s.Rank() == current,
		})
	}

	return Journey{
		OrderID:          t.OrderID,
		ProductName:      t.Product.Name,
		Status:           t.Status,
		StatusLabel:      t.Status.Label(),
		JourneyProgress:  t.JourneyProgress,
		CurrentLocation:  t.CurrentLocation,
		EstimatedArrival: t.EstimatedArrival,
		Delivered:        t.Status.IsTerminal(),
		Stages:           stages,
		History:          append([]orderdomain.StatusEntry(nil), t.StatusHistory...),
	}
}
