// Package solartime shifts a civil birth time to local solar time using the
// observer's longitude.
package solartime

import (
	"math"
	"time"

	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
)

// MinutesPerDegree is how far the mean sun moves in time per degree of longitude.
const MinutesPerDegree = 4.0

// Moment is a birth moment after longitude correction.
type Moment struct {
	// Civil is the instant as entered, in the zone of its UTC offset.
	Civil time.Time `json:"civil"`
	// Solar is the same instant in a fixed zone whose wall clock reads local
	// solar time. Date and hour pillars are read from this wall clock.
	Solar time.Time `json:"solar"`
	// Longitude of the birth place.
	Longitude float64 `json:"longitude"`
	// LongitudeShift is the mean-solar correction, (longitude − meridian) × 4 min.
	LongitudeShift time.Duration `json:"longitude_shift"`
	// EquationOfTime is non-zero only when true solar time was requested.
	EquationOfTime time.Duration `json:"equation_of_time"`
}

// Offset is the total distance between civil and solar wall clocks.
func (m Moment) Offset() time.Duration { return m.LongitudeShift + m.EquationOfTime }

// ReferenceMeridian is the standard meridian of a UTC offset, e.g. 120° for UTC+8.
func ReferenceMeridian(utcOffset time.Duration) float64 {
	return utcOffset.Hours() * 15
}

// Shift returns the mean solar correction for a longitude under a UTC offset.
func Shift(longitude float64, utcOffset time.Duration) (time.Duration, error) {
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return 0, domain.Invalid("longitude", longitude, "must be within [-180, 180]")
	}
	minutes := (longitude - ReferenceMeridian(utcOffset)) * MinutesPerDegree
	return time.Duration(math.Round(minutes*60)) * time.Second, nil
}

// Correct converts a validated birth moment to solar time.
func Correct(b domain.BirthMoment) (Moment, error) {
	_, offsetSec := b.Civil.Zone()
	utcOffset := time.Duration(offsetSec) * time.Second

	shift, err := Shift(b.Longitude, utcOffset)
	if err != nil {
		return Moment{}, err
	}
	var eot time.Duration
	if b.Options.EquationOfTime {
		eot = astro.EquationOfTime(b.Civil)
	}
	total := utcOffset + shift + eot
	zone := time.FixedZone("LST", int(total/time.Second))

	return Moment{
		Civil:          b.Civil,
		Solar:          b.Civil.In(zone),
		Longitude:      b.Longitude,
		LongitudeShift: shift,
		EquationOfTime: eot,
	}, nil
}
