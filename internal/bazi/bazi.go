// Package bazi assembles the Four Pillars chart and its luck cycle.
package bazi

import (
	"time"

	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/calendar"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/solartime"
)

// LuckPillarCount is how many ten-year luck pillars are listed.
const LuckPillarCount = 8

// Scaling of the luck-cycle start: three days of distance are one year of
// life, so one minute is 2 hours, 12 minutes are 1 day, 360 minutes 1 month.
const (
	minutesPerYear  = 3 * 24 * 60
	minutesPerMonth = minutesPerYear / 12
	minutesPerDay   = minutesPerMonth / 30
	hoursPerMinute  = 2
)

// PillarInfo is one pillar with its derived attributes.
type PillarInfo struct {
	Pillar ganzhi.Pillar  `json:"pillar"`
	NaYin  ganzhi.NaYin   `json:"na_yin"`
	TenGod *ganzhi.TenGod `json:"ten_god,omitempty"`
	Hidden []HiddenStem   `json:"hidden"`
}

// HiddenStem is a stem stored in a branch, with its ten-god relation.
type HiddenStem struct {
	Stem   ganzhi.Stem   `json:"stem"`
	TenGod ganzhi.TenGod `json:"ten_god"`
}

// Chart is the Four Pillars chart.
type Chart struct {
	Gender     domain.Gender    `json:"gender"`
	Year       PillarInfo       `json:"year"`
	Month      PillarInfo       `json:"month"`
	Day        PillarInfo       `json:"day"`
	Hour       PillarInfo       `json:"hour"`
	DayMaster  ganzhi.Stem      `json:"day_master"`
	Element    ganzhi.Element   `json:"day_master_element"`
	MonthOrder ganzhi.Branch    `json:"month_order"`
	Void       [2]ganzhi.Branch `json:"void"`
	Luck       LuckCycle        `json:"luck"`
}

// Pillars returns year, month, day and hour.
func (c Chart) Pillars() [4]ganzhi.Pillar {
	return [4]ganzhi.Pillar{c.Year.Pillar, c.Month.Pillar, c.Day.Pillar, c.Hour.Pillar}
}

// Age is a span of life expressed the traditional way.
type Age struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
	Hours  int `json:"hours"`
}

// LuckCycle describes when the ten-year luck pillars start.
type LuckCycle struct {
	Forward      bool         `json:"forward"`
	Boundary     time.Time    `json:"boundary"`
	BoundaryTerm astro.Term   `json:"boundary_term"`
	StartAge     Age          `json:"start_age"`
	StartDate    time.Time    `json:"start_date"`
	StartYear    int          `json:"start_year"`
	Pillars      []LuckPillar `json:"pillars"`
}

// LuckPillar is one ten-year period.
type LuckPillar struct {
	Pillar    ganzhi.Pillar `json:"pillar"`
	NaYin     ganzhi.NaYin  `json:"na_yin"`
	StartYear int           `json:"start_year"`
	EndYear   int           `json:"end_year"`
	StartAge  int           `json:"start_age"`
}

// Forward reports the luck-cycle direction: forward for a yang year with a
// male or a yin year with a female, backward otherwise.
func Forward(yearStem ganzhi.Stem, g domain.Gender) bool {
	return yearStem.Yang() == (g == domain.Male)
}

// Build assembles the chart from the calendar date of a corrected moment.
func Build(m solartime.Moment, d calendar.Date, g domain.Gender) Chart {
	dm := d.Day.Stem
	// Every stem, shown or hidden, is read against the day master.
	info := func(p ganzhi.Pillar, withGod bool) PillarInfo {
		pi := PillarInfo{Pillar: p, NaYin: p.NaYin()}
		if withGod {
			god := ganzhi.TenGodOf(dm, p.Stem)
			pi.TenGod = &god
		}
		for _, s := range ganzhi.HiddenStems[p.Branch] {
			pi.Hidden = append(pi.Hidden, HiddenStem{Stem: s, TenGod: ganzhi.TenGodOf(dm, s)})
		}
		return pi
	}

	return Chart{
		Gender:     g,
		Year:       info(d.Year, true),
		Month:      info(d.Month, true),
		Day:        info(d.Day, false),
		Hour:       info(d.Hour, true),
		DayMaster:  dm,
		Element:    dm.Element(),
		MonthOrder: d.Month.Branch,
		Void:       d.Day.Void(),
		Luck:       luckCycle(m, d, g),
	}
}

// luckCycle measures from birth to the sectional term in the cycle's
// direction and lists the pillars that follow or precede the month pillar.
func luckCycle(m solartime.Moment, d calendar.Date, g domain.Gender) LuckCycle {
	fwd := Forward(d.Year.Stem, g)
	birth := m.Solar

	// 1. Distance to the Boundary Term
	var (
		term  astro.Term
		bound time.Time
		gap   time.Duration
	)
	if fwd {
		term, bound = astro.NextTerm(birth, true)
		gap = bound.Sub(birth)
	} else {
		term, bound = astro.PrevTerm(birth, true)
		gap = birth.Sub(bound)
	}

	// 2. Start Age and Date
	age := ScaleAge(gap)
	start := birth.AddDate(age.Years, age.Months, age.Days).Add(time.Duration(age.Hours) * time.Hour)

	lc := LuckCycle{
		Forward:      fwd,
		Boundary:     bound.In(birth.Location()),
		BoundaryTerm: term,
		StartAge:     age,
		StartDate:    start,
		StartYear:    start.Year(),
	}

	// 3. Ten-Year Pillars, stepping from the month pillar
	step := 1
	if !fwd {
		step = -1
	}
	for i := 1; i <= LuckPillarCount; i++ {
		p := d.Month.Next(step * i)
		from := lc.StartYear + 10*(i-1)
		lc.Pillars = append(lc.Pillars, LuckPillar{
			Pillar:    p,
			NaYin:     p.NaYin(),
			StartYear: from,
			EndYear:   from + 9,
			StartAge:  from - birth.Year(),
		})
	}
	return lc
}

// ScaleAge converts the distance to the nearest sectional term into the age
// at which the luck cycle starts.
func ScaleAge(gap time.Duration) Age {
	minutes := int(gap / time.Minute)
	var a Age
	a.Years, minutes = minutes/minutesPerYear, minutes%minutesPerYear
	a.Months, minutes = minutes/minutesPerMonth, minutes%minutesPerMonth
	a.Days, minutes = minutes/minutesPerDay, minutes%minutesPerDay
	a.Hours = minutes * hoursPerMinute
	return a
}
