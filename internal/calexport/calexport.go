// Package calexport publishes chart data as iCalendar feeds: the 24 solar
// terms of a year and the ten-year luck pillars of a Four Pillars chart.
package calexport

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/bazi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/locale"
)

// chinaZone is the zone term descriptions are written in.
var chinaZone = time.FixedZone(domain.ZoneName(8*time.Hour), 8*3600)

// Exporter renders feeds. T may be nil, in which case message keys are
// used verbatim and names stay in Chinese.
type Exporter struct {
	Clock Clock
	T     *locale.Translator
}

// Terms returns a feed with one timed event per solar term of year.
func (e *Exporter) Terms(year int) ([]byte, error) {
	if year < domain.MinYear || year > domain.MaxYear {
		return nil, &domain.UnsupportedRangeError{Year: year, Min: domain.MinYear, Max: domain.MaxYear}
	}

	// 1. Term Instants in Calendar Order (小寒 opens the Gregorian year)
	type instant struct {
		term astro.Term
		at   time.Time
	}
	terms := make([]instant, 0, 24)
	for i := 0; i < 24; i++ {
		k := astro.TermOf(i)
		terms = append(terms, instant{k, astro.TermTime(year, k)})
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].at.Before(terms[j].at) })

	// 2. One Timed Event per Term
	cal := e.newCalendar(e.T.Fmt(config.TKeyCalTerms, map[string]any{"Year": year}))
	stamp := e.stamp()

	for _, it := range terms {
		name := e.T.Name(config.NameTerm, it.term)

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, it.term.Key(), strconv.Itoa(year), config.ICalDomain))
		event.Props.SetText(config.PropSummary, e.T.Fmt(config.TKeyEvtTerm, map[string]any{"Term": name}))
		event.Props.SetText(config.PropDescr, it.at.In(chinaZone).Format(config.LayoutDisplay)+" "+chinaZone.String())
		event.Props.SetText(config.PropCategories, config.ICalCategoryTerm)

		start := ical.NewProp(config.PropDTStart)
		start.SetDateTime(it.at.UTC())
		event.Props.Set(start)
		event.Props.Set(stamp)

		cal.Children = append(cal.Children, event.Component)
	}
	return encode(cal, config.ICalCategoryTerm)
}

// Luck returns a feed with one all-day event per luck pillar, dated at the
// pillar's start. uid identifies the person and keeps event UIDs stable
// across exports.
func (e *Exporter) Luck(uid, name string, c bazi.Chart) ([]byte, error) {
	cal := e.newCalendar(e.T.Fmt(config.TKeyCalLuck, map[string]any{"Name": name}))
	stamp := e.stamp()

	start := c.Luck.StartDate
	for i, p := range c.Luck.Pillars {
		day := start.AddDate(10*i, 0, 0)

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uid, strconv.Itoa(p.StartYear), config.ICalDomain))
		event.Props.SetText(config.PropSummary, e.T.Fmt(config.TKeyEvtLuck, map[string]any{
			"Pillar": p.Pillar.String(),
			"Age":    p.StartAge,
		}))
		event.Props.SetText(config.PropDescr, p.NaYin.String())
		event.Props.SetText(config.PropCategories, config.ICalCategoryLuck)

		dtStart := ical.NewProp(config.PropDTStart)
		dtStart.SetDate(day)
		event.Props.Set(dtStart)
		event.Props.Set(stamp)

		cal.Children = append(cal.Children, event.Component)
	}
	return encode(cal, config.ICalCategoryLuck)
}

// newCalendar sets the feed-level properties shared by both feeds.
func (e *Exporter) newCalendar(title string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, title)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986
	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)
	return cal
}

// stamp is the DTSTAMP shared by every event of one export.
func (e *Exporter) stamp() *ical.Prop {
	var clock Clock = RealClock{}
	if e.Clock != nil {
		clock = e.Clock
	}
	p := ical.NewProp(config.PropDTStamp)
	p.SetDateTime(clock.Now().UTC())
	return p
}

// encode serializes cal; category only labels the log line.
func encode(cal *ical.Calendar, category string) ([]byte, error) {
	var buf bytes.Buffer
	if len(cal.Children) == 0 {
		// A feed with no events is still a valid calendar.
		buf.WriteString(config.StubVCalendar)
		return buf.Bytes(), nil
	}
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	slog.Debug(config.MsgExportDone,
		config.LogKeyComponent, config.CompExport,
		config.LogKeyValue, category,
		config.LogKeyCount, len(cal.Children),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}
