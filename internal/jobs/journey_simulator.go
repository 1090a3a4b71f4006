package jobs

import (
	"context"
	"fmt"

	"afterlife/internal/core/logger"
	"afterlife/internal/core/metrics"
	"afterlife/internal/features/orders/domain"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JourneyStore is the part of the order store the simulator drives.
type JourneyStore interface {
	Orders() []domain.Order
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.DeliveryStatus, progress int, message string) error
}

// stageProgress is the journey progress written when an order enters a stage.
var stageProgress = map[domain.DeliveryStatus]int{
	domain.StatusTransit:      50,
	domain.StatusNearArrival:  85,
	domain.StatusNewBeginning: 100,
}

// JourneySimulator moves every undelivered order one stage forward on a cron schedule.
// It exists for demos; nothing else advances deliveries on its own.
type JourneySimulator struct {
	store    JourneyStore
	schedule string
	metrics  *metrics.Registry
	cron     *cron.Cron
	log      *zap.Logger
}

// NewJourneySimulator creates a simulator firing on schedule, a six-field cron
// expression with seconds (e.g. "*/30 * * * * *").
func NewJourneySimulator(store JourneyStore, schedule string, m *metrics.Registry) *JourneySimulator {
	return &JourneySimulator{
		store:    store,
		schedule: schedule,
		metrics:  m,
		cron:     cron.New(cron.WithSeconds()),
		log:      logger.Named("journey_simulator"),
	}
}

// Start registers the tick and starts the scheduler.
func (j *JourneySimulator) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.Tick(context.Background()); err != nil {
			j.log.Error("Journey simulator tick failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid journey schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.log.Info("Journey simulator started", zap.String("schedule", j.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (j *JourneySimulator) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("Journey simulator stopped")
}

// Tick advances each non-terminal order by one stage and returns how many moved.
// A failing order does not stop the others; the first error is returned.
func (j *JourneySimulator) Tick(ctx context.Context) (int, error) {
	var (
		advanced int
		firstErr error
	)

	for _, o := range j.store.Orders() {
		next, ok := o.Tracking.Status.Next()
		if !ok {
			continue
		}

		msg := StageMessage(o.Tracking.Product.Name, next)
		if err := j.store.UpdateOrderStatus(ctx, o.ID, next, stageProgress[next], msg); err != nil {
			j.log.Warn("Could not advance order", zap.String("order_id", o.ID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		advanced++
		if j.metrics != nil {
			j.metrics.SimulatorAdvance.Inc()
		}
	}

	if advanced > 0 {
		j.log.Debug("Journeys advanced", zap.Int("orders", advanced))
	}
	return advanced, firstErr
}

// StageMessage is the history message written when an item enters status.
func StageMessage(name string, status domain.DeliveryStatus) string {
	switch status {
	case domain.StatusTransit:
		return fmt.Sprintf("%s has said goodbye and is traveling to find you", name)
	case domain.StatusNearArrival:
		return fmt.Sprintf("%s is almost at its new home", name)
	case domain.StatusNewBeginning:
		return fmt.Sprintf("%s has arrived and is ready to start a new chapter", name)
	}
	return domain.FarewellMessage(domain.Product{Name: name})
}
