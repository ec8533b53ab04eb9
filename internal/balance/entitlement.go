// Package balance computes yearly paid-leave entitlements and reconciles the
// cached balance stored on the employee row. The cache is never the source of
// truth: everything here is recomputable from hire dates, the manual
// adjustment and the historical leave requests.
package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseAnnualDays is the paid-leave accrual every employee receives per
// calendar year before seniority bonus and manual adjustment.
const BaseAnnualDays = 25

// Entitlement is the yearly entitlement breakdown for one employee.
type Entitlement struct {
	Days           decimal.Decimal
	MonthlyAccrued decimal.Decimal
	BonusDays      int
	SeniorityYears int
	MonthsWorked   int
}

// seniorityBonus is a step function over completed years of employment.
func seniorityBonus(years int) int {
	switch {
	case years >= 30:
		return 8
	case years >= 25:
		return 7
	case years >= 20:
		return 5
	case years >= 15:
		return 3
	case years >= 10:
		return 2
	case years >= 5:
		return 1
	default:
		return 0
	}
}

// EntitlementForYear computes the paid-leave entitlement for a calendar year.
// hireDate is the effective hire date (company entry date when present, else
// hire date); nil means "always employed". Seniority is evaluated at the end
// of the requested year. The result is rounded to one decimal and floored at
// zero.
func EntitlementForYear(hireDate *time.Time, adjustment decimal.Decimal, year int) Entitlement {
	base := decimal.NewFromInt(BaseAnnualDays)

	if hireDate == nil {
		days := base.Add(adjustment).Round(1)
		if days.IsNegative() {
			days = decimal.Zero
		}
		return Entitlement{
			Days:           days,
			MonthlyAccrued: days.Div(decimal.NewFromInt(12)).Round(1),
			MonthsWorked:   12,
		}
	}

	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	hire := time.Date(hireDate.Year(), hireDate.Month(), hireDate.Day(), 0, 0, 0, 0, time.UTC)

	if hire.After(yearEnd) {
		return Entitlement{Days: decimal.Zero, MonthlyAccrued: decimal.Zero}
	}

	seniority := completedYears(hire, yearEnd)
	bonus := seniorityBonus(seniority)

	days := base.
		Add(decimal.NewFromInt(int64(bonus))).
		Add(adjustment).
		Round(1)
	if days.IsNegative() {
		days = decimal.Zero
	}

	return Entitlement{
		Days:           days,
		MonthlyAccrued: days.Div(decimal.NewFromInt(12)).Round(1),
		BonusDays:      bonus,
		SeniorityYears: seniority,
		MonthsWorked:   monthsWorkedInYear(hire, year),
	}
}

// completedYears counts full 12-month periods between hire and the reference
// date.
func completedYears(hire, at time.Time) int {
	if hire.After(at) {
		return 0
	}
	years := at.Year() - hire.Year()
	anniversary := time.Date(at.Year(), hire.Month(), hire.Day(), 0, 0, 0, 0, time.UTC)
	if anniversary.After(at) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// monthsWorkedInYear reports how many calendar months of the year the
// employee was employed for, counting the hire month as worked.
func monthsWorkedInYear(hire time.Time, year int) int {
	if hire.Year() < year {
		return 12
	}
	if hire.Year() > year {
		return 0
	}
	return 12 - int(hire.Month()) + 1
}

// OverlapDays returns the number of inclusive UTC calendar days the range
// [start, end] shares with the given year. Malformed ranges yield zero
// rather than propagating downstream.
func OverlapDays(start, end time.Time, year int) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	s := truncateToDay(start)
	e := truncateToDay(end)

	if s.Before(yearStart) {
		s = yearStart
	}
	if e.After(yearEnd) {
		e = yearEnd
	}
	if e.Before(s) {
		return 0
	}

	return int(e.Sub(s).Hours()/24) + 1
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// InclusiveDays is the total length of a request in days, both ends counted.
func InclusiveDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return int(truncateToDay(end).Sub(truncateToDay(start)).Hours()/24) + 1
}
