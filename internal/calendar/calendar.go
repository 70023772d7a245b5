// Package calendar maps a solar-time moment onto the sexagenary calendar:
// year, month, day and hour pillars, the lunar date and the day almanac.
package calendar

import (
	"time"

	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/solartime"
)

// EpochDayNumber is the Julian day number of 1949-10-01, a 甲子 day.
const EpochDayNumber = 2433191

// Date is the sexagenary calendar date of a moment.
type Date struct {
	Year  ganzhi.Pillar `json:"year"`
	Month ganzhi.Pillar `json:"month"`
	Day   ganzhi.Pillar `json:"day"`
	Hour  ganzhi.Pillar `json:"hour"`

	// SexagenaryYear is the Gregorian number of the Start-of-Spring year.
	SexagenaryYear int `json:"sexagenary_year"`
	// MonthSlot counts sexagenary months from 寅 (0) to 丑 (11).
	MonthSlot int `json:"month_slot"`
	// MonthTerm is the sectional term that opened the month.
	MonthTerm astro.Term `json:"month_term"`
	// DayNumber is the Julian day number the day pillar was read from.
	DayNumber int `json:"day_number"`

	Lunar LunarDate `json:"lunar"`
	// DayLunar is the lunar date of the day pillar's day. It differs from
	// Lunar only when the ZiHour boundary rolled the day at 23:00.
	DayLunar LunarDate `json:"day_lunar"`
}

// Pillars returns year, month, day and hour in that order.
func (d Date) Pillars() [4]ganzhi.Pillar {
	return [4]ganzhi.Pillar{d.Year, d.Month, d.Day, d.Hour}
}

// Convert derives the calendar date of a corrected birth moment.
func Convert(m solartime.Moment, boundary domain.DayBoundary) (Date, error) {
	wall := m.Solar
	y, mon, d := wall.Date()
	if y < domain.MinYear-1 || y > domain.MaxYear+1 {
		return Date{}, &domain.UnsupportedRangeError{Year: y, Min: domain.MinYear, Max: domain.MaxYear}
	}

	// Month and year pillars follow the sun, not the civil calendar.
	slot := MonthSlot(astro.SunLongitude(wall))
	sy := y
	if mon <= time.February && slot >= 10 {
		sy--
	}
	year := YearPillar(sy)
	month := MonthPillar(year.Stem, slot)

	jdn := astro.DayNumber(y, mon, d)
	next := jdn
	if wall.Hour() >= 23 {
		next++
	}
	dayNumber := jdn
	if boundary == domain.ZiHour {
		dayNumber = next
	}
	day := DayPillar(dayNumber)
	hour := HourPillar(DayPillar(next).Stem, wall.Hour())

	lunar, err := Lunar(y, mon, d)
	if err != nil {
		return Date{}, err
	}
	dayLunar := lunar
	if dayNumber != jdn {
		if dayLunar, err = Lunar(astro.DateOf(dayNumber)); err != nil {
			return Date{}, err
		}
	}

	return Date{
		Year:           year,
		Month:          month,
		Day:            day,
		Hour:           hour,
		SexagenaryYear: sy,
		MonthSlot:      slot,
		MonthTerm:      SlotTerm(slot),
		DayNumber:      dayNumber,
		Lunar:          lunar,
		DayLunar:       dayLunar,
	}, nil
}

// YearPillar of a Start-of-Spring year; 1984 is 甲子.
func YearPillar(year int) ganzhi.Pillar {
	return ganzhi.PillarAt(year - 1984)
}

// MonthSlot maps a solar longitude onto the twelve sexagenary months,
// 0 = 寅 month starting at Start of Spring (315°).
func MonthSlot(longitude float64) int {
	a := longitude - astro.StartOfSpring.Longitude()
	for a < 0 {
		a += 360
	}
	return int(a/30) % 12
}

// SlotTerm is the sectional term opening month slot s.
func SlotTerm(slot int) astro.Term {
	return astro.TermOf(int(astro.StartOfSpring) + 2*slot)
}

// fiveTigers gives the stem of the 寅 month for each year stem mod 5.
var fiveTigers = [5]ganzhi.Stem{ganzhi.Bing, ganzhi.Mou, ganzhi.Geng, ganzhi.Ren, ganzhi.Jia}

// fiveRats gives the stem of the 子 hour for each day stem mod 5.
var fiveRats = [5]ganzhi.Stem{ganzhi.Jia, ganzhi.Bing, ganzhi.Mou, ganzhi.Geng, ganzhi.Ren}

// TigerStem is the stem paired with 寅 in a year with stem s (also used for
// Zi Wei palace stems).
func TigerStem(s ganzhi.Stem) ganzhi.Stem { return fiveTigers[int(s)%5] }

// MonthPillar combines the year stem with a month slot.
func MonthPillar(yearStem ganzhi.Stem, slot int) ganzhi.Pillar {
	return ganzhi.Pillar{
		Stem:   TigerStem(yearStem).Add(slot),
		Branch: ganzhi.Yin.Add(slot),
	}
}

// DayPillar of a Julian day number.
func DayPillar(jdn int) ganzhi.Pillar {
	return ganzhi.PillarAt(jdn - EpochDayNumber)
}

// DayNumberFor returns the day number carrying pillar p that is closest to
// near (within ±30 days). It inverts DayPillar.
func DayNumberFor(p ganzhi.Pillar, near int) int {
	delta := (p.Index() - DayPillar(near).Index() + 60) % 60
	if delta >= 30 {
		delta -= 60
	}
	return near + delta
}

// HourBranch is the two-hour bracket of a wall-clock hour; 23:00-00:59 is 子.
func HourBranch(hour int) ganzhi.Branch {
	return ganzhi.BranchOf((hour + 1) / 2)
}

// HourPillar combines the day stem with the hour bracket.
func HourPillar(dayStem ganzhi.Stem, hour int) ganzhi.Pillar {
	b := HourBranch(hour)
	return ganzhi.Pillar{Stem: fiveRats[int(dayStem)%5].Add(int(b)), Branch: b}
}
