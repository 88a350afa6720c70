// Package billingclock implements calendar-aware billing period arithmetic.
package billingclock

import (
	"time"

	"subscription-billing-be/internal/entity"
)

// AddPeriod advances t by one billing period. Month and year additions clamp
// to the last day of the target month so an anchor of Jan 31 yields Feb 28
// (or Feb 29 in a leap year) instead of overflowing into March.
func AddPeriod(t time.Time, period entity.BillingPeriod) time.Time {
	switch period {
	case entity.BillingPeriodDaily:
		return t.AddDate(0, 0, 1)
	case entity.BillingPeriodWeekly:
		return t.AddDate(0, 0, 7)
	case entity.BillingPeriodYearly:
		return addMonthsClamped(t, 12)
	default: // monthly
		return addMonthsClamped(t, 1)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	anchor := time.Date(y, m, 1, h, min, sec, t.Nanosecond(), t.Location())
	target := anchor.AddDate(0, months, 0)

	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, h, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
