// Package pricing computes booking prices from court rates.
package pricing

import "time"

// LongBookingThreshold is the duration above which the court's long-booking
// discount applies.
const LongBookingThreshold = 90 * time.Minute

// TotalPriceCents returns the price of one occurrence: the hourly rate
// prorated by minutes, discounted when the booking is longer than 90 minutes.
// Fractions of a cent round half up.
func TotalPriceCents(pricePerHourCents, durationMinutes, discountOver90MinPercent int64) int64 {
	if pricePerHourCents <= 0 || durationMinutes <= 0 {
		return 0
	}
	discount := int64(0)
	if durationMinutes > int64(LongBookingThreshold/time.Minute) {
		discount = clampPercent(discountOver90MinPercent)
	}
	// base = rate*minutes/60, then *(100-discount)/100, rounded once.
	numerator := pricePerHourCents * durationMinutes * (100 - discount)
	const denominator = 60 * 100
	return (numerator + denominator/2) / denominator
}

// For is TotalPriceCents for a concrete duration.
func For(pricePerHourCents int64, d time.Duration, discountOver90MinPercent int64) int64 {
	return TotalPriceCents(pricePerHourCents, int64(d/time.Minute), discountOver90MinPercent)
}

func clampPercent(p int64) int64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
