package utils

import (
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

const day = 24 * time.Hour

// QuoteBreakdown provides a detailed cost breakdown of a reservation
type QuoteBreakdown struct {
	Days          int   `json:"days"`
	SubtotalCents int64 `json:"subtotal_cents"`
	FeesCents     int64 `json:"fees_cents"`
	DepositCents  int64 `json:"deposit_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// BillableDays counts started 24 hour periods between start and end, with a
// minimum of one day. A rental of 24h01m is billed as two days.
func BillableDays(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 1
	}
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// CalculateQuote prices a reservation from its daily rate, fees and deposit.
func CalculateQuote(r domain.Reservation) QuoteBreakdown {
	q := QuoteBreakdown{Days: BillableDays(r.StartAt, r.EndAt)}
	q.SubtotalCents = int64(q.Days) * r.DailyRateCents
	for _, f := range r.Fees {
		q.FeesCents += f.AmountCents
	}
	if r.DepositCents != nil {
		q.DepositCents = *r.DepositCents
	}
	q.TotalCents = q.SubtotalCents + q.FeesCents + q.DepositCents
	return q
}
