package dateutil

import (
	"math"
	"time"
)

// FarFuture is the sentinel date used when a projection never reaches its
// target (years-to-FI of +Inf).
var FarFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Age calculates the age at a given date
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// YearsUntilDate calculates the number of years between two dates
func YearsUntilDate(fromDate, toDate time.Time) float64 {
	duration := toDate.Sub(fromDate)
	return duration.Hours() / 24 / 365.25
}

// AddYears adds a specified number of whole years to a date
func AddYears(date time.Time, years int) time.Time {
	return date.AddDate(years, 0, 0)
}

// DateAfterYears returns the date a fractional number of years from a
// starting date. Infinite or absurdly large year counts map to FarFuture.
func DateAfterYears(from time.Time, years float64) time.Time {
	if math.IsInf(years, 1) || math.IsNaN(years) || years > 1000 {
		return FarFuture
	}
	days := years * 365.25
	return from.Add(time.Duration(days * 24 * float64(time.Hour)))
}

// IsLeapYear checks if a year is a leap year
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns the number of days in a given year
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// BeginningOfYear returns the first day of the year for a given date
func BeginningOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 1, 1, 0, 0, 0, 0, date.Location())
}
