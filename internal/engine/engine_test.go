package engine_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/engine"
)

func scenario() domain.BirthRequest {
	return domain.BirthRequest{
		Civil:     domain.CivilDateTime{Year: 1996, Month: 1, Day: 25, Hour: 10, Minute: 30},
		UTCOffset: 8 * time.Hour,
		Longitude: 116.40,
		Gender:    domain.Male,
	}
}

func pillars(b engine.ChartBundle) []string {
	var out []string
	for _, p := range b.Bazi.Pillars() {
		out = append(out, p.String())
	}
	return out
}

func TestComputeChart_Scenario(t *testing.T) {
	b, err := engine.ComputeChart(scenario())
	require.NoError(t, err)

	assert.Equal(t, []string{"乙亥", "己丑", "辛酉", "癸巳"}, pillars(b))
	assert.Equal(t, "10:15:36", b.Moment.Solar.Format(time.TimeOnly))
	assert.Equal(t, 2, b.Ziwei.Bureau)
	assert.Nil(t, b.Qimen)
	assert.Equal(t, domain.Midnight, b.Request.Options.DayBoundary, "defaults are resolved")
	assert.Equal(t, domain.SuperSticking, b.Request.Options.QimenMethod)
	assert.Equal(t, "冲兔(卯)", b.Almanac.Clash)

	data, err := json.Marshal(b)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"request", "moment", "date", "bazi", "ziwei", "almanac"} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "qimen")
}

func TestComputeChart_QimenLeavesOtherChartsAlone(t *testing.T) {
	plain, err := engine.ComputeChart(scenario())
	require.NoError(t, err)

	req := scenario()
	req.WantQimen = true
	full, err := engine.ComputeChart(req)
	require.NoError(t, err)
	require.NotNil(t, full.Qimen)

	if diff := cmp.Diff(plain.Bazi, full.Bazi); diff != "" {
		t.Errorf("bazi changed with qimen (-plain +full):\n%s", diff)
	}
	if diff := cmp.Diff(plain.Ziwei, full.Ziwei); diff != "" {
		t.Errorf("ziwei changed with qimen (-plain +full):\n%s", diff)
	}
	if diff := cmp.Diff(plain.Date, full.Date); diff != "" {
		t.Errorf("date changed with qimen (-plain +full):\n%s", diff)
	}
}

func TestComputeChart_Deterministic(t *testing.T) {
	req := scenario()
	req.WantQimen = true
	a, err := engine.ComputeChart(req)
	require.NoError(t, err)
	b, err := engine.ComputeChart(req)
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
}

func TestComputeChart_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.BirthRequest)
		want   error
	}{
		{"Longitude", func(r *domain.BirthRequest) { r.Longitude = 181 }, domain.ErrInvalidInput},
		{"Feb30", func(r *domain.BirthRequest) { r.Civil.Month, r.Civil.Day = 2, 30 }, domain.ErrInvalidInput},
		{"Hour24", func(r *domain.BirthRequest) { r.Civil.Hour = 24 }, domain.ErrInvalidInput},
		{"Offset", func(r *domain.BirthRequest) { r.UTCOffset = 15 * time.Hour }, domain.ErrInvalidInput},
		{"Gender", func(r *domain.BirthRequest) { r.Gender = "" }, domain.ErrInvalidInput},
		{"Method", func(r *domain.BirthRequest) { r.Options.QimenMethod = "rotating" }, domain.ErrInvalidInput},
		{"Before1900", func(r *domain.BirthRequest) { r.Civil.Year = 1850 }, domain.ErrUnsupportedRange},
		{"After2100", func(r *domain.BirthRequest) { r.Civil.Year = 2101 }, domain.ErrUnsupportedRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := scenario()
			tt.mutate(&req)
			_, err := engine.ComputeChart(req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComputeBatch(t *testing.T) {
	bad := scenario()
	bad.Longitude = 181
	other := scenario()
	other.Civil.Year = 2024
	reqs := []domain.BirthRequest{scenario(), bad, other}

	results, err := engine.ComputeBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "乙亥", pillars(results[0].Bundle)[0])
	assert.ErrorIs(t, results[1].Err, domain.ErrInvalidInput)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 2024, results[2].Bundle.Request.Civil.Year, "results keep input order")
}

func TestComputeBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := engine.ComputeBatch(ctx, []domain.BirthRequest{scenario(), scenario()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestInput_Request(t *testing.T) {
	cities, err := config.LoadCities("")
	require.NoError(t, err)

	t.Run("Longitude", func(t *testing.T) {
		req, err := engine.Input{Date: "1996-01-25", Time: "10:30", Lon: "116.40", Gender: "m"}.Request(cities)
		require.NoError(t, err)
		want := scenario()
		want.Options = domain.Options{DayBoundary: domain.Midnight, QimenMethod: domain.SuperSticking}
		if diff := cmp.Diff(want, req); diff != "" {
			t.Errorf("request mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("City", func(t *testing.T) {
		req, err := engine.Input{Date: "1996-01-25", Time: "10:30:15", City: "Beijing", Qimen: true}.Request(cities)
		require.NoError(t, err)
		assert.InDelta(t, 116.40, req.Longitude, 1e-9)
		assert.Equal(t, 8*time.Hour, req.UTCOffset)
		assert.Equal(t, 15, req.Civil.Second)
		assert.Equal(t, domain.Male, req.Gender)
		assert.True(t, req.WantQimen)
	})

	t.Run("Defaults", func(t *testing.T) {
		req, err := engine.Input{Date: "2000-06-01", Lon: "-74", TZ: "-05:00", Gender: "女"}.Request(cities)
		require.NoError(t, err)
		assert.Equal(t, 12, req.Civil.Hour)
		assert.Equal(t, -5*time.Hour, req.UTCOffset)
		assert.Equal(t, domain.Female, req.Gender)
	})

	errs := []struct {
		name string
		in   engine.Input
	}{
		{"BadDate", engine.Input{Date: "1996/01/25", Lon: "116"}},
		{"BadTime", engine.Input{Date: "1996-01-25", Time: "25:61", Lon: "116"}},
		{"NoPlace", engine.Input{Date: "1996-01-25"}},
		{"BadLon", engine.Input{Date: "1996-01-25", Lon: "east"}},
		{"BadTZ", engine.Input{Date: "1996-01-25", Lon: "116", TZ: "CST"}},
		{"UnknownCity", engine.Input{Date: "1996-01-25", City: "Atlantis"}},
		{"BadGender", engine.Input{Date: "1996-01-25", Lon: "116", Gender: "x"}},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Request(cities)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err = engine.Input{Date: "1996-01-25", City: "北京"}.Request(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no table, no cities")
}

func TestInput_Options(t *testing.T) {
	assert.Equal(t, domain.Options{
		DayBoundary: domain.Midnight,
		QimenMethod: domain.SuperSticking,
	}, engine.Input{}.Options())

	assert.Equal(t, domain.Options{
		EquationOfTime: true,
		DayBoundary:    domain.ZiHour,
		QimenMethod:    domain.SplitPatch,
	}, engine.Input{EoT: true, ZiHour: true, Method: "split-patch"}.Options())
}
