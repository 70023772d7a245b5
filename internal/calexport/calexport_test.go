package calexport_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigfamingjia/ai-fortune-teller/internal/bazi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/calexport"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/engine"
	"github.com/bigfamingjia/ai-fortune-teller/internal/locale"
)

var fixedNow = calexport.FixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

func translator(t *testing.T, lang string) *locale.Translator {
	t.Helper()
	tr, err := locale.New(lang)
	require.NoError(t, err)
	return tr
}

func TestTerms_TwentyFourEvents(t *testing.T) {
	ex := &calexport.Exporter{Clock: fixedNow, T: translator(t, "zh")}

	data, err := ex.Terms(2024)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "X-WR-CALNAME:2024年二十四节气")
	assert.Equal(t, 24, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Equal(t, 24, strings.Count(ics, "DTSTAMP:20250101T000000Z"))
	assert.Contains(t, ics, "SUMMARY:立春")
	assert.Contains(t, ics, "SUMMARY:冬至")

	// 立春 2024 falls at 16:27 Beijing time, 08:27 UTC.
	assert.Contains(t, ics, "DTSTART:20240204T082")
}

func TestTerms_ChronologicalOrder(t *testing.T) {
	ex := &calexport.Exporter{Clock: fixedNow, T: translator(t, "en")}

	data, err := ex.Terms(2024)
	require.NoError(t, err)

	ics := string(data)
	minorCold := strings.Index(ics, "SUMMARY:Minor Cold")
	springEq := strings.Index(ics, "SUMMARY:Vernal Equinox")
	winterSol := strings.Index(ics, "SUMMARY:Winter Solstice")
	require.True(t, minorCold >= 0 && springEq >= 0 && winterSol >= 0)
	assert.Less(t, minorCold, springEq, "January's term comes first")
	assert.Less(t, springEq, winterSol, "December's term comes last")
}

func TestTerms_OutOfRange(t *testing.T) {
	ex := &calexport.Exporter{Clock: fixedNow}

	_, err := ex.Terms(1850)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedRange))
}

func TestTerms_NilTranslatorKeepsChineseNames(t *testing.T) {
	ex := &calexport.Exporter{Clock: fixedNow}

	data, err := ex.Terms(2000)
	require.NoError(t, err)
	assert.Contains(t, string(data), "立春")
}

func TestLuck_OneEventPerPillar(t *testing.T) {
	bundle, err := engine.ComputeChart(domain.BirthRequest{
		Civil:     domain.CivilDateTime{Year: 1996, Month: 1, Day: 25, Hour: 10, Minute: 30},
		UTCOffset: 8 * time.Hour,
		Longitude: 116.40,
		Gender:    domain.Male,
	})
	require.NoError(t, err)

	ex := &calexport.Exporter{Clock: fixedNow, T: translator(t, "en")}
	data, err := ex.Luck("abc123", "Zhang San", bundle.Bazi)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "X-WR-CALNAME:Luck pillars of Zhang San")
	assert.Equal(t, bazi.LuckPillarCount, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Contains(t, ics, "CATEGORIES:LUCK-PILLAR")

	first := bundle.Bazi.Luck.Pillars[0]
	assert.Contains(t, ics, "UID:abc123-"+strconv.Itoa(first.StartYear)+"@ai-fortune-teller")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:"+bundle.Bazi.Luck.StartDate.Format("20060102"))
	assert.Contains(t, ics, "SUMMARY:Luck pillar "+first.Pillar.String())
}

func TestLuck_EmptyChartIsStub(t *testing.T) {
	ex := &calexport.Exporter{Clock: fixedNow}
	data, err := ex.Luck("x", "Nobody", bazi.Chart{})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "BEGIN:VEVENT")
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")
}
