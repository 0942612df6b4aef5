// Package calendar holds the proleptic Gregorian calendar arithmetic shared
// by the leap-second table and the epoch formats. All conversions are pure
// integer math with no time-zone or scale semantics.
package calendar

// MJDFromDate returns the Modified Julian Day number of 0h on the given
// civil date (proleptic Gregorian). Fliegel-Van Flandern algorithm.
func MJDFromDate(year, month, day int) int {
	a := (month - 14) / 12
	jdn := day - 32075 +
		1461*(year+4800+a)/4 +
		367*(month-2-a*12)/12 -
		3*((year+4900+a)/100)/4
	return jdn - 2400001
}

// DateFromMJD returns the civil date containing 0h of the given Modified
// Julian Day number.
func DateFromMJD(mjd int) (year, month, day int) {
	l := mjd + 2400001 + 68569
	n := 4 * l / 146097
	l = l - (146097*n+3)/4
	i := 4000 * (l + 1) / 1461001
	l = l - 1461*i/4 + 31
	j := 80 * l / 2447
	day = l - 2447*j/80
	l = j / 11
	month = j + 2 - 12*l
	year = 100*(n-49) + i + l
	return
}

// IsLeapYear reports whether the given Gregorian year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DayOfYear returns the ordinal day (1..366) of the given date.
func DayOfYear(year, month, day int) int {
	return MJDFromDate(year, month, day) - MJDFromDate(year, 1, 1) + 1
}
