package astro

import (
	"encoding/json"
	"math"
	"time"
)

// apparentLongitude returns the sun's apparent ecliptic longitude in degrees
// for a Julian ephemeris day (Meeus ch. 25, low accuracy).
func apparentLongitude(jde float64) float64 {
	t := (jde - J2000) / daysPerCentury
	l0 := 280.46646 + 36000.76983*t + 0.0003032*t*t
	m := rad(357.52911 + 35999.05029*t - 0.0001537*t*t)
	c := (1.914602-0.004817*t-0.000014*t*t)*math.Sin(m) +
		(0.019993-0.000101*t)*math.Sin(2*m) +
		0.000289*math.Sin(3*m)
	omega := rad(125.04 - 1934.136*t)
	return normDeg(l0 + c - 0.00569 - 0.00478*math.Sin(omega))
}

// SunLongitude is the apparent solar longitude at instant t.
func SunLongitude(t time.Time) float64 {
	return apparentLongitude(utToTT(JulianDay(t)))
}

// Term is one of the 24 solar terms, numbered so that its ecliptic
// longitude is 15° × Term. Odd terms are sectional (节), even ones principal (中气).
type Term int

const (
	VernalEquinox Term = iota // 春分
	ClearBright               // 清明
	GrainRain                 // 谷雨
	StartOfSummer             // 立夏
	GrainBuds                 // 小满
	GrainInEar                // 芒种
	SummerSolstice            // 夏至
	MinorHeat                 // 小暑
	MajorHeat                 // 大暑
	StartOfAutumn             // 立秋
	EndOfHeat                 // 处暑
	WhiteDew                  // 白露
	AutumnalEquinox           // 秋分
	ColdDew                   // 寒露
	FrostDescent              // 霜降
	StartOfWinter             // 立冬
	MinorSnow                 // 小雪
	MajorSnow                 // 大雪
	WinterSolstice            // 冬至
	MinorCold                 // 小寒
	MajorCold                 // 大寒
	StartOfSpring             // 立春
	RainWater                 // 雨水
	AwakeningOfInsects        // 惊蛰
)

var termNames = [24]string{
	"春分", "清明", "谷雨", "立夏", "小满", "芒种", "夏至", "小暑", "大暑", "立秋", "处暑", "白露",
	"秋分", "寒露", "霜降", "立冬", "小雪", "大雪", "冬至", "小寒", "大寒", "立春", "雨水", "惊蛰",
}

var termKeys = [24]string{
	"vernal_equinox", "clear_bright", "grain_rain", "start_of_summer", "grain_buds", "grain_in_ear",
	"summer_solstice", "minor_heat", "major_heat", "start_of_autumn", "end_of_heat", "white_dew",
	"autumnal_equinox", "cold_dew", "frost_descent", "start_of_winter", "minor_snow", "major_snow",
	"winter_solstice", "minor_cold", "major_cold", "start_of_spring", "rain_water", "awakening_of_insects",
}

// TermOf wraps an integer onto the 24-term cycle.
func TermOf(i int) Term { return Term(((i % 24) + 24) % 24) }

func (t Term) String() string { return termNames[t] }

// Key is the snake_case identifier locales translate, e.g. "winter_solstice".
func (t Term) Key() string { return termKeys[t] }

// Longitude is the solar longitude, in degrees, that starts the term.
func (t Term) Longitude() float64 { return float64(t) * 15 }

// Sectional reports whether the term is a 节, the boundary of a sexagenary month.
func (t Term) Sectional() bool { return t%2 == 1 }

// Next is the term that follows t, wrapping 惊蛰 onto 春分.
func (t Term) Next() Term { return TermOf(int(t) + 1) }

// Prev is the term before t.
func (t Term) Prev() Term { return TermOf(int(t) - 1) }

func (t Term) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// TermAt returns the term in effect at instant t.
func TermAt(t time.Time) Term {
	return Term(int(SunLongitude(t) / 15))
}

// TermTime returns the instant of term k that falls in Gregorian year `year` (UT).
func TermTime(year int, k Term) time.Time {
	// Days from 1 Jan to the vernal equinox is about 79.5; the sun moves
	// slightly under one degree per day.
	offset := math.Mod(79.5+k.Longitude()*TropicalYear/360, TropicalYear)
	guess := float64(DayNumber(year, time.January, 1)) - 0.5 + offset
	return TimeOf(ttToUT(solveLongitude(utToTT(guess), k.Longitude())))
}

// TermNear returns the instant of term k closest to t.
func TermNear(t time.Time, k Term) time.Time {
	jde := utToTT(JulianDay(t))
	gap := wrap180(k.Longitude() - apparentLongitude(jde))
	return TimeOf(ttToUT(solveLongitude(jde+gap*TropicalYear/360, k.Longitude())))
}

// PrevTerm returns the latest term boundary at or before t, restricted to
// sectional terms when sectional is set.
func PrevTerm(t time.Time, sectional bool) (Term, time.Time) {
	k := TermAt(t)
	if sectional && !k.Sectional() {
		k = k.Prev()
	}
	at := TermNear(t, k)
	if at.After(t) {
		// Rounding put the boundary a hair past t; step back one slot.
		k = k.Prev()
		if sectional {
			k = k.Prev()
		}
		at = TermNear(t.Add(-15*24*time.Hour), k)
	}
	return k, at
}

// NextTerm returns the earliest term boundary strictly after t.
func NextTerm(t time.Time, sectional bool) (Term, time.Time) {
	k := TermAt(t).Next()
	if sectional && !k.Sectional() {
		k = k.Next()
	}
	at := TermNear(t, k)
	if !at.After(t) {
		k = k.Next()
		if sectional {
			k = k.Next()
		}
		at = TermNear(t.Add(15*24*time.Hour), k)
	}
	return k, at
}

// solveLongitude refines jde until the apparent longitude equals target.
func solveLongitude(jde, target float64) float64 {
	for i := 0; i < 30; i++ {
		d := wrap180(target - apparentLongitude(jde))
		step := d * TropicalYear / 360
		jde += step
		if math.Abs(step) < 1e-7 {
			break
		}
	}
	return jde
}

// EquationOfTime returns apparent minus mean solar time for the day of year
// of t. The value stays within about ±16.5 minutes.
func EquationOfTime(t time.Time) time.Duration {
	n := float64(t.YearDay())
	b := 2 * math.Pi * (n - 81) / 364
	minutes := 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
	return time.Duration(math.Round(minutes*60)) * time.Second
}
