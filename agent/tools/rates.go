package tools

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	ProductFifteenYearFixed = "15-year-fixed"
	ProductThirtyYearFixed  = "30-year-fixed"

	DefaultRateHistoryDays = 30

	// Synthetic rate bands, in basis points over the base rate. The
	// 30-year band sits a fixed spread above the 15-year band.
	baseRatePercent  = 6.00
	rateMin15        = 38
	rateMax15        = 48
	thirtyYearSpread = 80
)

// RatePoint is one business day of synthetic rate history.
type RatePoint struct {
	Date string `json:"date"`
	Rate string `json:"rate"`
}

// rateHistory walks backward from now, skipping weekends, until dayCount
// business days are collected or the 1.4x search window is exhausted.
// Rates are uniformly sampled within the product's band.
func rateHistory(now time.Time, rng *rand.Rand, dayCount int, product string) []RatePoint {
	if dayCount <= 0 {
		dayCount = DefaultRateHistoryDays
	}

	rateMin, rateMax := rateMin15, rateMax15
	if product == ProductThirtyYearFixed {
		rateMin += thirtyYearSpread
		rateMax += thirtyYearSpread
	}

	window := int(float64(dayCount) * 1.4)
	history := make([]RatePoint, 0, dayCount)
	for i := 0; i < window && len(history) < dayCount; i++ {
		day := now.AddDate(0, 0, -(i + 1))
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		offset := rateMin + rng.Intn(rateMax-rateMin)
		history = append(history, RatePoint{
			Date: day.Format(dateLayout),
			Rate: fmt.Sprintf("%.2f", baseRatePercent+float64(offset)/100),
		})
	}
	return history
}
