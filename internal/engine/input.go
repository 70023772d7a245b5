package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
)

// Input is a birth request as typed by a user, on the command line or in
// a query string. Empty fields take the config defaults.
type Input struct {
	Date   string
	Time   string
	TZ     string
	Lon    string
	City   string
	Gender string
	Method string
	Qimen  bool
	EoT    bool
	ZiHour bool
}

// Request parses the input into a BirthRequest. A city, when given, sets
// both the longitude and the UTC offset. Every failure is an
// InvalidInputError.
func (in Input) Request(cities *config.CityTable) (domain.BirthRequest, error) {
	var req domain.BirthRequest

	// 1. Civil Date and Time
	date, err := time.Parse(config.LayoutDate, strings.TrimSpace(in.Date))
	if err != nil {
		return req, domain.Invalid(config.FlagDate, in.Date, config.ErrDateParse)
	}
	clock, err := parseClock(in.Time)
	if err != nil {
		return req, domain.Invalid(config.FlagTime, in.Time, config.ErrTimeParse)
	}
	req.Civil = domain.CivilDateTime{
		Year: date.Year(), Month: int(date.Month()), Day: date.Day(),
		Hour: clock.Hour(), Minute: clock.Minute(), Second: clock.Second(),
	}

	// 2. Place
	if req.Longitude, req.UTCOffset, err = in.Place(cities); err != nil {
		return req, err
	}

	// 3. Gender and Options
	gender := in.Gender
	if gender == "" {
		gender = config.DefaultGender
	}
	if req.Gender, err = domain.ParseGender(gender); err != nil {
		return req, err
	}

	req.WantQimen = in.Qimen
	req.Options = in.Options()
	return req, nil
}

// Options maps the switches onto engine options.
func (in Input) Options() domain.Options {
	opts := domain.Options{
		EquationOfTime: in.EoT,
		DayBoundary:    domain.Midnight,
		QimenMethod:    domain.QimenMethod(in.Method),
	}
	if in.ZiHour {
		opts.DayBoundary = domain.ZiHour
	}
	if in.Method == "" {
		opts.QimenMethod = config.DefaultMethod
	}
	return opts
}

// Place resolves the longitude and UTC offset, from the city table when a
// city is named.
func (in Input) Place(cities *config.CityTable) (float64, time.Duration, error) {
	if name := strings.TrimSpace(in.City); name != "" {
		if cities == nil {
			return 0, 0, domain.Invalid(config.FlagCity, name, config.ErrCityUnknown)
		}
		c, ok := cities.Lookup(name)
		if !ok {
			return 0, 0, domain.Invalid(config.FlagCity, name, config.ErrCityUnknown)
		}
		off, err := c.Offset()
		if err != nil {
			return 0, 0, domain.Invalid(config.FlagCity, name, err.Error())
		}
		return c.Longitude, off, nil
	}

	// Without a city, an explicit longitude is required; the zone defaults.
	lon := strings.TrimSpace(in.Lon)
	if lon == "" {
		return 0, 0, domain.Invalid(config.FlagLon, "", config.ErrPlaceMissing)
	}
	v, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return 0, 0, domain.Invalid(config.FlagLon, in.Lon, config.ErrLonParse)
	}

	tz := in.TZ
	if tz == "" {
		tz = config.DefaultTZ
	}
	off, err := config.ParseUTCOffset(tz)
	if err != nil {
		return 0, 0, domain.Invalid(config.FlagTZ, tz, config.ErrTZParse)
	}
	return v, off, nil
}

// parseClock accepts HH:MM:SS or HH:MM; empty means the default birth time.
func parseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = config.DefaultTime
	}
	if t, err := time.Parse(config.LayoutTimeSeconds, s); err == nil {
		return t, nil
	}
	return time.Parse(config.LayoutTime, s)
}
