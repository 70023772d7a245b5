// Package render draws a chart bundle as terminal tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bigfamingjia/ai-fortune-teller/internal/bazi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/calendar"
	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/engine"
	"github.com/bigfamingjia/ai-fortune-teller/internal/locale"
	"github.com/bigfamingjia/ai-fortune-teller/internal/qimen"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ziwei"
)

var (
	accent = lipgloss.Color("#C0392B")
	muted  = lipgloss.Color("#7F8C8D")
	gold   = lipgloss.Color("#D4AC0D")
)

// luoShu lays the nine palaces out as they are drawn, south on top.
var luoShu = [3][3]int{{4, 9, 2}, {3, 5, 7}, {8, 1, 6}}

// Renderer holds the styles bound to one output.
type Renderer struct {
	t *locale.Translator

	title  lipgloss.Style
	label  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
	strong lipgloss.Style
}

// New creates a Renderer whose color profile follows w. t may be nil.
func New(w io.Writer, t *locale.Translator) *Renderer {
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		t:      t,
		title:  lr.NewStyle().Bold(true).Foreground(accent),
		label:  lr.NewStyle().Foreground(muted),
		header: lr.NewStyle().Bold(true).Padding(0, 1),
		cell:   lr.NewStyle().Padding(0, 1),
		border: lr.NewStyle().Foreground(muted),
		strong: lr.NewStyle().Bold(true).Foreground(gold),
	}
}

// Bundle renders every chart of the bundle, one section after the other.
func (r *Renderer) Bundle(b engine.ChartBundle) string {
	sections := []string{
		r.Moment(b),
		r.Bazi(b.Bazi),
		r.Luck(b.Bazi.Luck),
		r.Ziwei(b.Ziwei),
	}
	if b.Qimen != nil {
		sections = append(sections, r.Qimen(*b.Qimen))
	}
	sections = append(sections, r.Almanac(b.Almanac))
	return strings.Join(sections, "\n\n") + "\n"
}

// Moment shows the civil and solar clocks and the lunar date.
func (r *Renderer) Moment(b engine.ChartBundle) string {
	m := b.Moment
	rows := [][]string{
		{r.msg(config.TKeyLblCivil), m.Civil.Format(config.LayoutDisplay) + " " + m.Civil.Location().String()},
		{r.msg(config.TKeyLblSolar), m.Solar.Format(config.LayoutDisplay)},
		{r.msg(config.TKeyLblShift), signed(m.Offset())},
		{r.msg(config.TKeyLblLunar), b.Date.Lunar.String()},
	}
	return r.section(config.TKeyTitleMoment, r.keyValues(rows))
}

// Bazi shows the four pillars side by side.
func (r *Renderer) Bazi(c bazi.Chart) string {
	// Columns are the four pillars; each row below is one reading of them.
	cols := []bazi.PillarInfo{c.Year, c.Month, c.Day, c.Hour}
	pillar := []string{r.msg(config.TKeyColPillar)}
	god := []string{r.msg(config.TKeyColTenGod)}
	naYin := []string{r.msg(config.TKeyColNaYin)}
	hidden := []string{r.msg(config.TKeyColHidden)}
	for _, p := range cols {
		pillar = append(pillar, r.strong.Render(p.Pillar.String()))
		// The day stem is the reference, so it carries no ten god of its own.
		if p.TenGod != nil {
			god = append(god, p.TenGod.String())
		} else {
			god = append(god, r.msg(config.TKeyLblDM))
		}
		naYin = append(naYin, p.NaYin.String())
		var hs []string
		for _, h := range p.Hidden {
			hs = append(hs, h.Stem.String()+" "+h.TenGod.String())
		}
		hidden = append(hidden, strings.Join(hs, "\n"))
	}

	grid := r.table([]string{
		"",
		r.msg(config.TKeyColYear),
		r.msg(config.TKeyColMonth),
		r.msg(config.TKeyColDay),
		r.msg(config.TKeyColHour),
	}, [][]string{pillar, god, naYin, hidden})

	facts := r.line(config.TKeyLblDM, c.DayMaster.String()+" "+r.name(config.NameElement, c.Element)) + "\n" +
		r.line(config.TKeyLblVoid, c.Void[0].String()+c.Void[1].String())
	return r.section(config.TKeyTitleBazi, grid+"\n"+facts)
}

// Luck shows the start of the luck cycle and its pillars.
func (r *Renderer) Luck(l bazi.LuckCycle) string {
	dir := r.msg(config.TKeyDirBwd)
	if l.Forward {
		dir = r.msg(config.TKeyDirFwd)
	}
	start := r.format(config.TKeyLuckStartAt, map[string]any{
		"Years":  l.StartAge.Years,
		"Months": l.StartAge.Months,
		"Days":   l.StartAge.Days,
	})
	head := r.line(config.TKeyLblLuck, dir+", "+start+" ("+l.StartDate.Format(config.LayoutDate)+")")

	rows := make([][]string, 0, len(l.Pillars))
	for _, p := range l.Pillars {
		rows = append(rows, []string{
			r.strong.Render(p.Pillar.String()),
			strconv.Itoa(p.StartAge),
			fmt.Sprintf("%d-%d", p.StartYear, p.EndYear),
			p.NaYin.String(),
		})
	}
	grid := r.table([]string{
		r.msg(config.TKeyColPillar),
		r.msg(config.TKeyColAge),
		r.msg(config.TKeyColYears),
		r.msg(config.TKeyColNaYin),
	}, rows)
	return r.section(config.TKeyTitleLuck, head+"\n"+grid)
}

// Ziwei lists the twelve palaces from the destiny palace on.
func (r *Renderer) Ziwei(c ziwei.Chart) string {
	head := r.line(config.TKeyLblBureau, c.BureauName) + "\n" +
		r.line(config.TKeyLblBody, r.name(config.NamePalace, c.Body().Role))

	rows := make([][]string, 0, 12)
	for role := ziwei.Destiny; role <= ziwei.Parents; role++ {
		p := c.Palace(role)
		name := r.name(config.NamePalace, role)
		// Mark the body palace.
		if p.Body {
			name += " *"
		}
		rows = append(rows, []string{
			name,
			p.Stem.String() + p.Branch.String(),
			r.stars(p.Major),
			r.stars(p.Minor),
		})
	}
	grid := r.table([]string{
		r.msg(config.TKeyColPalace),
		r.msg(config.TKeyColBranch),
		r.msg(config.TKeyColMajor),
		r.msg(config.TKeyColMinor),
	}, rows)
	return r.section(config.TKeyTitleZiwei, head+"\n"+grid)
}

// stars lists placements one per line: name, brightness and any transformation.
func (r *Renderer) stars(ps []ziwei.Placement) string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		s := r.name(config.NameStar, p.Star) + p.Brightness.String()
		if p.Transformation != nil {
			s += " " + r.strong.Render(r.name(config.NameHua, *p.Transformation))
		}
		out = append(out, s)
	}
	return strings.Join(out, "\n")
}

// Qimen draws the nine palaces in Luo Shu order.
func (r *Renderer) Qimen(c qimen.Chart) string {
	yuan := c.Yuan
	// A repeated 芒种 or 大雪 block is starred.
	if c.LeapTerm {
		yuan += "*"
	}
	head := r.line(config.TKeyLblDun, fmt.Sprintf("%s%d局 %s %s", c.Dun, c.Ju, r.name(config.NameTerm, c.Term), yuan)) + "\n" +
		r.line(config.TKeyLblDuty, fmt.Sprintf("%s %s (%s %s)", c.DutyStar, c.DutyDoor, c.XunHead, c.XunStem))

	rows := make([][]string, 0, 3)
	for _, line := range luoShu {
		row := make([]string, 0, 3)
		for _, n := range line {
			row = append(row, r.palace(c.Palace(n)))
		}
		rows = append(rows, row)
	}
	grid := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		BorderRow(true).
		StyleFunc(func(int, int) lipgloss.Style { return r.cell }).
		Rows(rows...).
		String()
	return r.section(config.TKeyTitleQimen, head+"\n"+grid)
}

// palace stacks trigram and number, deity, star and door, then heaven over
// earth stems.
func (r *Renderer) palace(p qimen.Palace) string {
	lines := []string{fmt.Sprintf("%s%d", p.Trigram, p.Number)}
	if p.Deity != qimen.NoDeity {
		lines = append(lines, p.Deity.String())
	}
	top := p.Star.String()
	if p.Door != qimen.NoDoor {
		top += " " + p.Door.String()
	}
	lines = append(lines, top)
	stems := p.HeavenStem.String()
	if p.LodgedStem != nil {
		stems += p.LodgedStem.String()
	}
	lines = append(lines, r.strong.Render(stems)+"/"+p.EarthStem.String())
	return strings.Join(lines, "\n")
}

// Almanac shows the day-selection panel.
func (r *Renderer) Almanac(a calendar.Almanac) string {
	lucky := "凶"
	if a.Mansion.Lucky {
		lucky = "吉"
	}
	dir := func(d calendar.Direction) string { return d.Compass + " (" + d.Trigram + ")" }
	rows := [][]string{
		{r.msg(config.TKeyLblOfficer), a.Officer},
		{r.msg(config.TKeyLblMansion), a.Mansion.Name + " " + lucky},
		{r.msg(config.TKeyLblJoy), dir(a.Joy)},
		{r.msg(config.TKeyLblWealth), dir(a.Wealth)},
		{r.msg(config.TKeyLblFortune), dir(a.Fortune)},
		{r.msg(config.TKeyLblPengZu), a.PengZu[0] + "\n" + a.PengZu[1]},
		{r.msg(config.TKeyLblClash), a.Clash},
		{r.msg(config.TKeyLblYi), strings.Join(a.Yi, " ")},
		{r.msg(config.TKeyLblJi), strings.Join(a.Ji, " ")},
	}
	return r.section(config.TKeyTitleAlmanac, r.keyValues(rows))
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// keyValues is a two-column item/value table.
func (r *Renderer) keyValues(rows [][]string) string {
	return r.table([]string{r.msg(config.TKeyColItem), r.msg(config.TKeyColValue)}, rows)
}

// table draws a rounded lipgloss table with bold headers.
func (r *Renderer) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			return r.cell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func (r *Renderer) section(titleKey, body string) string {
	return r.title.Render(r.msg(titleKey)) + "\n" + body
}

func (r *Renderer) line(labelKey, value string) string {
	return r.label.Render(r.msg(labelKey)+":") + " " + value
}

// Translation shorthands; a nil translator echoes keys.
func (r *Renderer) msg(key string) string { return r.t.Msg(key) }

func (r *Renderer) format(key string, data map[string]any) string { return r.t.Fmt(key, data) }

func (r *Renderer) name(kind string, n locale.Named) string { return r.t.Name(kind, n) }

// signed renders a correction such as "-14m24s" or "+3m0s".
func signed(d time.Duration) string {
	if d < 0 {
		return d.Round(time.Second).String()
	}
	return "+" + d.Round(time.Second).String()
}
