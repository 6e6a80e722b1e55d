package tools

import (
	"math/rand"
	"strconv"
	"testing"
	"time"
)

func TestRateHistoryReturnsRequestedBusinessDays(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(42))

	history := rateHistory(now, rng, 30, ProductFifteenYearFixed)
	if len(history) != 30 {
		t.Fatalf("expected 30 entries, got %d", len(history))
	}

	for i, point := range history {
		day, err := time.Parse("2006-01-02", point.Date)
		if err != nil {
			t.Fatalf("entry %d has invalid date %q: %v", i, point.Date, err)
		}
		if point.Date >= now.Format("2006-01-02") {
			t.Fatalf("entry %d date %s is not strictly before today", i, point.Date)
		}
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("entry %d date %s falls on a weekend", i, point.Date)
		}
	}
}

func TestRateHistoryDatesStrictlyBeforeToday(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC) // a Monday
	rng := rand.New(rand.NewSource(7))

	history := rateHistory(now, rng, 5, ProductFifteenYearFixed)
	for _, point := range history {
		if point.Date >= now.Format("2006-01-02") {
			t.Fatalf("date %s is not strictly before today %s", point.Date, now.Format("2006-01-02"))
		}
	}
}

func TestRateHistoryBands(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		product  string
		min, max float64
	}{
		{ProductFifteenYearFixed, 6.38, 6.48},
		{ProductThirtyYearFixed, 7.18, 7.28},
	} {
		rng := rand.New(rand.NewSource(99))
		history := rateHistory(now, rng, 20, tc.product)
		for _, point := range history {
			rate, err := strconv.ParseFloat(point.Rate, 64)
			if err != nil {
				t.Fatalf("invalid rate %q: %v", point.Rate, err)
			}
			if rate < tc.min || rate >= tc.max {
				t.Fatalf("product %s rate %.2f outside band [%.2f, %.2f)", tc.product, rate, tc.min, tc.max)
			}
		}
	}
}

func TestRateHistoryDefaultsDayCount(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(1))

	history := rateHistory(now, rng, 0, ProductFifteenYearFixed)
	if len(history) != DefaultRateHistoryDays {
		t.Fatalf("expected %d entries for zero day_count, got %d", DefaultRateHistoryDays, len(history))
	}
}

func TestRateHistoryWindowExhaustion(t *testing.T) {
	t.Parallel()

	// A 1.4x window over 5 days is 7 calendar days; starting from a
	// Monday that window contains exactly 5 business days.
	now := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(3))

	history := rateHistory(now, rng, 5, ProductFifteenYearFixed)
	if len(history) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(history))
	}
}
