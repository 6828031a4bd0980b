package jobs

import (
	"context"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/events"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
)

// ReportOverdueReservations announces checked-out reservations whose end
// has passed. Statuses are left alone; the vehicle is still out.
func (jr *JobRunner) ReportOverdueReservations() {
	jr.runWithRecovery("ReportOverdueReservations", func(ctx context.Context) {
		now := jr.now()
		overdue, err := jr.services.Reservations.ListOverdue(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue reservations", "error", err)
			return
		}

		published := 0
		for _, r := range overdue {
			logger.Warn("Reservation overdue",
				"reservation_id", r.ID,
				"vehicle_id", r.VehicleID,
				"renter_id", r.RenterID,
				"end_at", r.EndAt,
				"overdue_by", now.Sub(r.EndAt).Round(time.Minute).String())

			if err := jr.publisher.Publish(ctx, events.NewEvent(events.ReservationOverdue, r)); err != nil {
				logger.Error("Failed to publish overdue event", "reservation_id", r.ID, "error", err)
				continue
			}
			published++
		}

		logger.Info("Reported overdue reservations", "count", len(overdue), "published", published)
	})
}
