package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEntitlementForYear_SeniorityBonus(t *testing.T) {
	hire := date(2020, time.January, 1)

	// Five completed years at the end of 2025, first bonus tier.
	ent := EntitlementForYear(&hire, decimal.Zero, 2025)
	assert.Equal(t, 1, ent.BonusDays)
	assert.Equal(t, 5, ent.SeniorityYears)
	assert.True(t, ent.Days.Equal(decimal.NewFromInt(26)), "got %s", ent.Days)

	// Year before the anniversary completes, no bonus yet.
	ent = EntitlementForYear(&hire, decimal.Zero, 2024)
	assert.Equal(t, 0, ent.BonusDays)
	assert.True(t, ent.Days.Equal(decimal.NewFromInt(25)))
}

func TestEntitlementForYear_BonusTiers(t *testing.T) {
	cases := []struct {
		hireYear int
		year     int
		bonus    int
	}{
		{2021, 2025, 0},
		{2020, 2025, 1},
		{2015, 2025, 2},
		{2010, 2025, 3},
		{2005, 2025, 5},
		{2000, 2025, 7},
		{1995, 2025, 8},
		{1990, 2025, 8},
	}

	for _, tc := range cases {
		hire := date(tc.hireYear, time.January, 1)
		ent := EntitlementForYear(&hire, decimal.Zero, tc.year)
		assert.Equal(t, tc.bonus, ent.BonusDays, "hired %d", tc.hireYear)
	}
}

func TestEntitlementForYear_AnniversaryWithinYear(t *testing.T) {
	// Hired mid-year: the bonus applies for the whole year in which the
	// anniversary falls, because seniority is read at December 31st.
	hire := date(2020, time.July, 15)
	ent := EntitlementForYear(&hire, decimal.Zero, 2025)
	assert.Equal(t, 5, ent.SeniorityYears)
	assert.Equal(t, 1, ent.BonusDays)
}

func TestEntitlementForYear_HiredAfterYear(t *testing.T) {
	hire := date(2026, time.March, 1)
	ent := EntitlementForYear(&hire, decimal.Zero, 2025)
	assert.True(t, ent.Days.IsZero())
	assert.Equal(t, 0, ent.MonthsWorked)
}

func TestEntitlementForYear_NilHireDate(t *testing.T) {
	ent := EntitlementForYear(nil, decimal.Zero, 2025)
	assert.True(t, ent.Days.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 12, ent.MonthsWorked)
	assert.Equal(t, 0, ent.BonusDays)
}

func TestEntitlementForYear_Adjustment(t *testing.T) {
	hire := date(2020, time.January, 1)

	ent := EntitlementForYear(&hire, decimal.NewFromFloat(2.5), 2025)
	assert.True(t, ent.Days.Equal(decimal.NewFromFloat(28.5)), "got %s", ent.Days)

	// A large negative adjustment floors at zero instead of going negative.
	ent = EntitlementForYear(&hire, decimal.NewFromInt(-40), 2025)
	assert.True(t, ent.Days.IsZero())
}

func TestEntitlementForYear_MonthsWorked(t *testing.T) {
	hire := date(2025, time.October, 10)
	ent := EntitlementForYear(&hire, decimal.Zero, 2025)
	assert.Equal(t, 3, ent.MonthsWorked)

	ent = EntitlementForYear(&hire, decimal.Zero, 2026)
	assert.Equal(t, 12, ent.MonthsWorked)
}

func TestOverlapDays_YearBoundary(t *testing.T) {
	// Dec 28 to Jan 3 splits across the boundary: 4 days in the old year,
	// 3 in the new one.
	start := date(2025, time.December, 28)
	end := date(2026, time.January, 3)

	assert.Equal(t, 4, OverlapDays(start, end, 2025))
	assert.Equal(t, 3, OverlapDays(start, end, 2026))
	assert.Equal(t, 0, OverlapDays(start, end, 2027))
}

func TestOverlapDays_FullyInsideYear(t *testing.T) {
	assert.Equal(t, 1, OverlapDays(date(2025, time.June, 10), date(2025, time.June, 10), 2025))
	assert.Equal(t, 5, OverlapDays(date(2025, time.June, 10), date(2025, time.June, 14), 2025))
}

func TestOverlapDays_MalformedRange(t *testing.T) {
	assert.Equal(t, 0, OverlapDays(date(2025, time.June, 10), date(2025, time.June, 9), 2025))
	assert.Equal(t, 0, OverlapDays(time.Time{}, date(2025, time.June, 9), 2025))
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, InclusiveDays(date(2025, time.June, 10), date(2025, time.June, 10)))
	assert.Equal(t, 7, InclusiveDays(date(2025, time.December, 28), date(2026, time.January, 3)))
	assert.Equal(t, 0, InclusiveDays(date(2025, time.June, 10), date(2025, time.June, 9)))
}
