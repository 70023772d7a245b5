package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
)

func TestParseGender(t *testing.T) {
	for _, s := range []string{"m", "Male", " man ", "男", "乾"} {
		g, err := domain.ParseGender(s)
		require.NoError(t, err, s)
		assert.Equal(t, domain.Male, g)
	}
	for _, s := range []string{"f", "FEMALE", "女", "坤"} {
		g, err := domain.ParseGender(s)
		require.NoError(t, err, s)
		assert.Equal(t, domain.Female, g)
	}
	_, err := domain.ParseGender("other")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate(t *testing.T) {
	req := domain.BirthRequest{
		Civil:     domain.CivilDateTime{Year: 2000, Month: 2, Day: 29, Hour: 23, Minute: 59, Second: 59},
		UTCOffset: 5*time.Hour + 30*time.Minute,
		Longitude: 77.2,
		Gender:    domain.Female,
	}
	m, err := req.Validate()
	require.NoError(t, err)

	assert.Equal(t, domain.Midnight, m.Options.DayBoundary)
	assert.Equal(t, domain.SuperSticking, m.Options.QimenMethod)
	_, off := m.Civil.Zone()
	assert.Equal(t, 19800, off)
	assert.Equal(t, time.Date(2000, 2, 29, 18, 29, 59, 0, time.UTC), m.Civil.UTC())
}

func TestValidate_Rejects(t *testing.T) {
	base := domain.BirthRequest{
		Civil:     domain.CivilDateTime{Year: 2001, Month: 1, Day: 1},
		UTCOffset: 8 * time.Hour,
		Longitude: 120,
		Gender:    domain.Male,
	}
	tests := []struct {
		name   string
		mutate func(*domain.BirthRequest)
		field  string
	}{
		{"Month13", func(r *domain.BirthRequest) { r.Civil.Month = 13 }, "month"},
		{"Feb29", func(r *domain.BirthRequest) { r.Civil.Month, r.Civil.Day = 2, 29 }, "day"},
		{"Second60", func(r *domain.BirthRequest) { r.Civil.Second = 60 }, "time"},
		{"Longitude", func(r *domain.BirthRequest) { r.Longitude = -180.01 }, "longitude"},
		{"OddOffset", func(r *domain.BirthRequest) { r.UTCOffset = 8*time.Hour + 30*time.Second }, "utc_offset"},
		{"Gender", func(r *domain.BirthRequest) { r.Gender = "x" }, "gender"},
		{"Boundary", func(r *domain.BirthRequest) { r.Options.DayBoundary = "noon" }, "day_boundary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := req.Validate()
			var inv *domain.InvalidInputError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.field, inv.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.NotErrorIs(t, err, domain.ErrUnsupportedRange)
		})
	}
}

func TestValidate_Range(t *testing.T) {
	for _, y := range []int{1899, 2101} {
		_, err := domain.BirthRequest{
			Civil:     domain.CivilDateTime{Year: y, Month: 6, Day: 1},
			UTCOffset: 8 * time.Hour,
			Longitude: 120,
			Gender:    domain.Male,
		}.Validate()

		var rng *domain.UnsupportedRangeError
		require.ErrorAs(t, err, &rng)
		assert.Equal(t, y, rng.Year)
		assert.Equal(t, domain.MinYear, rng.Min)
		assert.Equal(t, domain.MaxYear, rng.Max)
	}
}

func TestErrors(t *testing.T) {
	err := domain.Missing("ziwei.bureau", 7)
	assert.ErrorIs(t, err, domain.ErrComputation)
	assert.EqualError(t, err, "computation error: table ziwei.bureau has no entry for 7")

	wrapped := errors.Join(errors.New("context"), domain.Invalid("lon", "abc", "bad"))
	assert.ErrorIs(t, wrapped, domain.ErrInvalidInput)
	assert.Contains(t, wrapped.Error(), "invalid input: lon=abc: bad")
}

func TestZoneName(t *testing.T) {
	assert.Equal(t, "UTC+08:00", domain.ZoneName(8*time.Hour))
	assert.Equal(t, "UTC-03:30", domain.ZoneName(-3*time.Hour-30*time.Minute))
	assert.Equal(t, "UTC+00:00", domain.ZoneName(0))
	assert.Equal(t, "2024-02-04T16:27:00", domain.CivilDateTime{Year: 2024, Month: 2, Day: 4, Hour: 16, Minute: 27}.String())
}
