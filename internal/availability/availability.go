// Package availability holds the pure conflict logic for vehicle
// reservations. Nothing here touches a store; callers pass the reservation
// set they loaded and the buffer in effect for the vehicle.
package availability

import (
	"math"
	"sort"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

// DefaultBufferHours is the turnaround padding used when nothing else is configured.
const DefaultBufferHours = 2.0

// BufferFromHours converts a non-negative number of hours to a duration.
// Negative and NaN inputs yield zero; anything above domain.MaxBufferHours,
// infinity included, saturates at that cap.
func BufferFromHours(hours float64) time.Duration {
	if hours <= 0 || math.IsNaN(hours) {
		return 0
	}
	if hours > domain.MaxBufferHours {
		hours = domain.MaxBufferHours
	}
	return time.Duration(hours * float64(time.Hour))
}

// Overlaps reports whether [aStart, aEnd) widened by buffer on both sides
// intersects [bStart, bEnd). Intervals that only touch do not overlap when
// the buffer is zero.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time, buffer time.Duration) bool {
	effectiveStart := aStart.Add(-buffer)
	effectiveEnd := aEnd.Add(buffer)
	return effectiveStart.Before(bEnd) && bStart.Before(effectiveEnd)
}

// blocking keeps the reservations of vehicleID that still hold their slot,
// dropping excludeID. An empty excludeID excludes nothing.
func blocking(reservations []domain.Reservation, vehicleID, excludeID string) []domain.Reservation {
	out := make([]domain.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.VehicleID != vehicleID || !r.Status.BlocksVehicle() {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// IsRangeAvailable reports whether [start, end) can be booked on vehicleID.
func IsRangeAvailable(reservations []domain.Reservation, start, end time.Time, vehicleID string, buffer time.Duration, excludeID string) bool {
	for _, r := range blocking(reservations, vehicleID, excludeID) {
		if Overlaps(start, end, r.StartAt, r.EndAt, buffer) {
			return false
		}
	}
	return true
}

// GetConflicts returns every reservation that blocks [start, end) on
// vehicleID. Order follows the input.
func GetConflicts(reservations []domain.Reservation, start, end time.Time, vehicleID string, buffer time.Duration, excludeID string) []domain.Reservation {
	conflicts := []domain.Reservation{}
	for _, r := range blocking(reservations, vehicleID, excludeID) {
		if Overlaps(start, end, r.StartAt, r.EndAt, buffer) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}

// NextAvailableStart returns the earliest instant at or after from at which
// a reservation on vehicleID may begin.
func NextAvailableStart(reservations []domain.Reservation, vehicleID string, from time.Time, buffer time.Duration) time.Time {
	upcoming := blocking(reservations, vehicleID, "")
	if len(upcoming) == 0 {
		return from
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartAt.Before(upcoming[j].StartAt)
	})

	candidate := from
	for _, r := range upcoming {
		if candidate.Before(r.StartAt.Add(-buffer)) {
			return candidate
		}
		// a reservation that ended before candidate must not pull it back
		if end := r.EndAt.Add(buffer); end.After(candidate) {
			candidate = end
		}
	}
	return candidate
}

// BlockedRanges lists the buffered intervals occupied on vehicleID, sorted
// by start.
func BlockedRanges(reservations []domain.Reservation, vehicleID string, buffer time.Duration) []domain.TimeRange {
	active := blocking(reservations, vehicleID, "")
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].StartAt.Before(active[j].StartAt)
	})
	ranges := make([]domain.TimeRange, 0, len(active))
	for _, r := range active {
		ranges = append(ranges, domain.TimeRange{
			Start:         r.StartAt.Add(-buffer).UTC(),
			End:           r.EndAt.Add(buffer).UTC(),
			ReservationID: r.ID,
		})
	}
	return ranges
}
