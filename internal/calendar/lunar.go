package calendar

import (
	"fmt"
	"time"

	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
)

// chinaZone is the meridian the Chinese calendar is reckoned on.
var chinaZone = time.FixedZone("UTC+08:00", 8*3600)

// LunarDate is the Chinese lunisolar date.
type LunarDate struct {
	Year      int  `json:"year"`
	Month     int  `json:"month"`
	Day       int  `json:"day"`
	Leap      bool `json:"leap"`
	MonthDays int  `json:"month_days"`
}

var lunarMonthNames = [13]string{"", "正", "二", "三", "四", "五", "六", "七", "八", "九", "十", "冬", "腊"}
var lunarDayTens = [4]string{"初", "十", "廿", "三"}
var digits = [11]string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}

// String renders e.g. "1995年腊月初五" or "2023年闰二月十六".
func (l LunarDate) String() string {
	leap := ""
	if l.Leap {
		leap = "闰"
	}
	return fmt.Sprintf("%d年%s%s月%s", l.Year, leap, lunarMonthNames[l.Month], lunarDayName(l.Day))
}

func lunarDayName(d int) string {
	switch d {
	case 10:
		return "初十"
	case 20:
		return "二十"
	case 30:
		return "三十"
	}
	return lunarDayTens[d/10] + digits[d%10]
}

// ChinaDay is the Julian day number of t's civil date in UTC+8.
func ChinaDay(t time.Time) int {
	return astro.DayNumberOf(t.In(chinaZone))
}

// lunationOnOrBefore returns the lunation whose new moon falls on or
// before the given Chinese day number.
func lunationOnOrBefore(day int) int {
	y, m, d := astro.DateOf(day + 1)
	endOfDay := time.Date(y, m, d, 0, 0, 0, 0, chinaZone).Add(-time.Second)
	return astro.LunationBefore(endOfDay)
}

// month11 finds the lunation holding the winter solstice of a Gregorian year.
func month11(year int) int {
	return lunationOnOrBefore(ChinaDay(astro.TermTime(year, astro.WinterSolstice)))
}

// Lunar converts a civil date to the Chinese calendar: months begin on the
// day of the new moon, month 11 holds the winter solstice, and in a year of
// thirteen months the first month without a principal term is the leap one.
func Lunar(year int, month time.Month, day int) (LunarDate, error) {
	target := astro.DayNumber(year, month, day)

	ya := year
	k11 := month11(year)
	if target < ChinaDay(astro.NewMoon(k11)) {
		ya = year - 1
		k11 = month11(ya)
	}
	kNext := month11(ya + 1)
	n := kNext - k11
	if n != 12 && n != 13 {
		return LunarDate{}, domain.Missing("lunar.month_count", n)
	}

	starts := make([]int, n+1)
	for i := range starts {
		starts[i] = ChinaDay(astro.NewMoon(k11 + i))
	}

	leapAt := -1
	if n == 13 {
		principal := principalDays(ya)
		for i := 1; i < n; i++ {
			if !containsAny(principal, starts[i], starts[i+1]) {
				leapAt = i
				break
			}
		}
	}

	num, ly := 11, ya
	for i := 0; i < n; i++ {
		leap := i == leapAt
		if i > 0 && !leap {
			num = num%12 + 1
			if num == 1 {
				ly = ya + 1
			}
		}
		if target >= starts[i] && target < starts[i+1] {
			return LunarDate{
				Year:      ly,
				Month:     num,
				Day:       target - starts[i] + 1,
				Leap:      leap,
				MonthDays: starts[i+1] - starts[i],
			}, nil
		}
	}
	return LunarDate{}, domain.Missing("lunar.month_span", target)
}

// principalDays lists the Chinese days of the principal terms from the
// winter solstice of ya to that of ya+1.
func principalDays(ya int) []int {
	days := []int{ChinaDay(astro.TermTime(ya, astro.WinterSolstice))}
	for _, k := range []astro.Term{astro.MajorCold, astro.RainWater} {
		days = append(days, ChinaDay(astro.TermTime(ya+1, k)))
	}
	for k := astro.VernalEquinox; k <= astro.WinterSolstice; k += 2 {
		days = append(days, ChinaDay(astro.TermTime(ya+1, k)))
	}
	return days
}

func containsAny(days []int, from, to int) bool {
	for _, d := range days {
		if d >= from && d < to {
			return true
		}
	}
	return false
}
