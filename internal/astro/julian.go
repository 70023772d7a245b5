// Package astro is the small ephemeris behind the calendar: apparent solar
// longitude, the 24 solar terms, new moons and the equation of time.
//
// The series are the low-precision forms from Meeus, Astronomical Algorithms
// (2nd ed.), ch. 25, 28 and 49. Solar terms come out within a few minutes of
// the published tables across 1900-2100, new moons within a minute.
package astro

import (
	"math"
	"time"
)

const (
	// J2000 is the Julian day of 2000-01-01 12:00 TT.
	J2000 = 2451545.0

	unixEpochJD    = 2440587.5
	secondsPerDay  = 86400.0
	daysPerCentury = 36525.0

	// TropicalYear in days, used to turn longitude gaps into time gaps.
	TropicalYear = 365.242189
	// SynodicMonth in days.
	SynodicMonth = 29.530588861
)

// JulianDay converts an instant to a Julian day in UT.
func JulianDay(t time.Time) float64 {
	return float64(t.UnixNano())/1e9/secondsPerDay + unixEpochJD
}

// TimeOf converts a Julian day in UT back to an instant, rounded to the second.
func TimeOf(jd float64) time.Time {
	sec := (jd - unixEpochJD) * secondsPerDay
	return time.Unix(int64(math.Round(sec)), 0).UTC()
}

// DayNumber is the Julian day number (integer, noon-based) of a civil date.
// It is the continuous day count the day pillar is taken from.
func DayNumber(year int, month time.Month, day int) int {
	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// DayNumberOf reads the civil date of t in its own location.
func DayNumberOf(t time.Time) int {
	y, m, d := t.Date()
	return DayNumber(y, m, d)
}

// DateOf is the inverse of DayNumber.
func DateOf(jdn int) (int, time.Month, int) {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	day := e - (153*m+2)/5 + 1
	month := m + 3 - 12*(m/10)
	year := 100*b + d - 4800 + m/10
	return year, time.Month(month), day
}

// DeltaT estimates TT − UT in seconds (Espenak & Meeus polynomials).
func DeltaT(year float64) float64 {
	y := year
	switch {
	case y < 1860:
		t := y - 1800
		return 13.72 - 0.332447*t + 0.0068612*t*t + 0.0041116*t*t*t - 0.00037436*t*t*t*t
	case y < 1900:
		t := y - 1860
		return 7.62 + 0.5737*t - 0.251754*t*t + 0.01680668*t*t*t - 0.0004473624*t*t*t*t + math.Pow(t, 5)/233174
	case y < 1920:
		t := y - 1900
		return -2.79 + 1.494119*t - 0.0598939*t*t + 0.0061966*t*t*t - 0.000197*t*t*t*t
	case y < 1941:
		t := y - 1920
		return 21.20 + 0.84493*t - 0.076100*t*t + 0.0020936*t*t*t
	case y < 1961:
		t := y - 1950
		return 29.07 + 0.407*t - t*t/233 + t*t*t/2547
	case y < 1986:
		t := y - 1975
		return 45.45 + 1.067*t - t*t/260 - t*t*t/718
	case y < 2005:
		t := y - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t + 0.000651814*t*t*t*t + 0.00002373599*math.Pow(t, 5)
	case y < 2050:
		t := y - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case y < 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

// ttToUT converts a Julian ephemeris day to UT.
func ttToUT(jde float64) float64 {
	return jde - DeltaT(yearOf(jde))/secondsPerDay
}

func utToTT(jd float64) float64 {
	return jd + DeltaT(yearOf(jd))/secondsPerDay
}

func yearOf(jd float64) float64 {
	return 2000 + (jd-J2000)/365.25
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// normDeg maps an angle onto [0, 360).
func normDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// wrap180 maps an angle onto [-180, 180).
func wrap180(a float64) float64 {
	return normDeg(a+180) - 180
}
