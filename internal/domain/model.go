// Package domain holds the request contract shared by every chart builder
// and the typed errors they return.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Coverage window of the solar-term ephemeris, in civil years.
const (
	MinYear = 1900
	MaxYear = 2100

	// MaxUTCOffset bounds the accepted timezone offsets (UTC-14 .. UTC+14).
	MaxUTCOffset = 14 * time.Hour
)

// Gender only steers the Bazi luck-cycle direction.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts the usual English and Chinese spellings.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "man", "男", "乾":
		return Male, nil
	case "f", "female", "woman", "女", "坤":
		return Female, nil
	}
	return "", Invalid("gender", s, "expected male or female")
}

// DayBoundary selects where the 23:00 bracket puts the day pillar.
type DayBoundary string

const (
	// Midnight keeps the current day pillar until 00:00; the 23:00 hour
	// still takes its stem from the following day.
	Midnight DayBoundary = "midnight"
	// ZiHour rolls the day pillar at 23:00.
	ZiHour DayBoundary = "zi-hour"
)

// QimenMethod selects the Ju assignment rule.
type QimenMethod string

const (
	// SuperSticking attaches 15-day blocks to terms and inserts leap blocks (超神接气).
	SuperSticking QimenMethod = "super-sticking"
	// SplitPatch uses the term in effect at the instant (拆补).
	SplitPatch QimenMethod = "split-patch"
)

// Options are the optional computation switches of a request.
type Options struct {
	EquationOfTime bool        `json:"equation_of_time"`
	DayBoundary    DayBoundary `json:"day_boundary"`
	QimenMethod    QimenMethod `json:"qimen_method"`
}

// CivilDateTime is the wall-clock birth time as entered by the user.
// It stays a plain field set so that impossible dates can be rejected
// instead of silently normalised by time.Date.
type CivilDateTime struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

func (c CivilDateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}

// BirthRequest is the input contract of the engine.
type BirthRequest struct {
	Civil     CivilDateTime `json:"civil"`
	UTCOffset time.Duration `json:"utc_offset"`
	Longitude float64       `json:"longitude"`
	Gender    Gender        `json:"gender"`
	WantQimen bool          `json:"want_qimen"`
	Options   Options       `json:"options"`
}

// BirthMoment is a validated BirthRequest anchored to an instant.
type BirthMoment struct {
	Civil     time.Time
	Longitude float64
	Gender    Gender
	Options   Options
}

// Validate checks the request and resolves defaults.
func (r BirthRequest) Validate() (BirthMoment, error) {
	c := r.Civil
	if c.Month < 1 || c.Month > 12 {
		return BirthMoment{}, Invalid("month", c.Month, "must be 1-12")
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 {
		return BirthMoment{}, Invalid("time", c.String(), "impossible time of day")
	}
	if c.Day < 1 || c.Day > daysIn(c.Year, time.Month(c.Month)) {
		return BirthMoment{}, Invalid("day", c.String(), "impossible date")
	}
	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		return BirthMoment{}, Invalid("longitude", r.Longitude, "must be within [-180, 180]")
	}
	if r.UTCOffset < -MaxUTCOffset || r.UTCOffset > MaxUTCOffset || r.UTCOffset%time.Minute != 0 {
		return BirthMoment{}, Invalid("utc_offset", r.UTCOffset, "must be whole minutes within ±14h")
	}
	switch r.Gender {
	case Male, Female:
	default:
		return BirthMoment{}, Invalid("gender", r.Gender, "expected male or female")
	}
	if c.Year < MinYear || c.Year > MaxYear {
		return BirthMoment{}, &UnsupportedRangeError{Year: c.Year, Min: MinYear, Max: MaxYear}
	}

	opts := r.Options
	switch opts.DayBoundary {
	case "":
		opts.DayBoundary = Midnight
	case Midnight, ZiHour:
	default:
		return BirthMoment{}, Invalid("day_boundary", opts.DayBoundary, "unknown day boundary")
	}
	switch opts.QimenMethod {
	case "":
		opts.QimenMethod = SuperSticking
	case SuperSticking, SplitPatch:
	default:
		return BirthMoment{}, Invalid("qimen_method", opts.QimenMethod, "unknown method")
	}

	zone := time.FixedZone(ZoneName(r.UTCOffset), int(r.UTCOffset/time.Second))
	return BirthMoment{
		Civil:     time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, 0, zone),
		Longitude: r.Longitude,
		Gender:    r.Gender,
		Options:   opts,
	}, nil
}

// ZoneName renders an offset as "UTC+08:00".
func ZoneName(offset time.Duration) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, int(offset/time.Hour), int(offset%time.Hour/time.Minute))
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
