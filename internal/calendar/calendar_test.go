package calendar

import "testing"

func TestMJDFromDateKnownEpochs(t *testing.T) {
	cases := []struct {
		year, month, day int
		mjd              int
	}{
		{1858, 11, 17, 0},     // MJD origin
		{1980, 1, 6, 44244},   // GPS epoch
		{2000, 1, 1, 51544},   // J2000 date
		{2009, 11, 2, 55137},  // scenario epoch
		{1972, 1, 1, 41317},   // first leap-second table entry
		{2017, 1, 1, 57754},   // last builtin leap-second entry
	}
	for _, c := range cases {
		if got := MJDFromDate(c.year, c.month, c.day); got != c.mjd {
			t.Errorf("MJDFromDate(%d-%02d-%02d) = %d, want %d", c.year, c.month, c.day, got, c.mjd)
		}
		y, m, d := DateFromMJD(c.mjd)
		if y != c.year || m != c.month || d != c.day {
			t.Errorf("DateFromMJD(%d) = %d-%02d-%02d, want %d-%02d-%02d",
				c.mjd, y, m, d, c.year, c.month, c.day)
		}
	}
}

func TestRoundTripAcrossCenturies(t *testing.T) {
	for mjd := -100000; mjd <= 100000; mjd += 37 {
		y, m, d := DateFromMJD(mjd)
		if got := MJDFromDate(y, m, d); got != mjd {
			t.Fatalf("round trip MJD %d -> %d-%02d-%02d -> %d", mjd, y, m, d, got)
		}
	}
}

func TestDayOfYear(t *testing.T) {
	if got := DayOfYear(2009, 11, 2); got != 306 {
		t.Errorf("DayOfYear(2009-11-02) = %d, want 306", got)
	}
	if got := DayOfYear(2000, 12, 31); got != 366 {
		t.Errorf("DayOfYear(2000-12-31) = %d, want 366", got)
	}
	if got := DayOfYear(1900, 12, 31); got != 365 {
		t.Errorf("DayOfYear(1900-12-31) = %d, want 365", got)
	}
}

func TestIsLeapYear(t *testing.T) {
	cases := map[int]bool{2000: true, 1900: false, 2004: true, 2009: false, 2100: false}
	for year, want := range cases {
		if got := IsLeapYear(year); got != want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", year, got, want)
		}
	}
}
