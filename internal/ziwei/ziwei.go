// Package ziwei lays out the Zi Wei Dou Shu palace chart.
package ziwei

import (
	"encoding/json"

	"github.com/bigfamingjia/ai-fortune-teller/internal/calendar"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
)

// Role names a palace relative to the destiny palace.
type Role int

const (
	Destiny Role = iota
	Siblings
	Spouse
	Children
	Wealth
	Health
	Travel
	Friends
	Career
	Property
	Fortune
	Parents
)

var roleNames = [12]string{"命宫", "兄弟", "夫妻", "子女", "财帛", "疾厄", "迁移", "交友", "官禄", "田宅", "福德", "父母"}
var roleKeys = [12]string{"destiny", "siblings", "spouse", "children", "wealth", "health", "travel", "friends", "career", "property", "fortune", "parents"}

func (r Role) String() string { return roleNames[r] }
func (r Role) Key() string    { return roleKeys[r] }

func (r Role) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

// bureauByElement maps the na yin element of the destiny palace to its bureau.
var bureauByElement = map[ganzhi.Element]int{
	ganzhi.Water: 2,
	ganzhi.Wood:  3,
	ganzhi.Metal: 4,
	ganzhi.Earth: 5,
	ganzhi.Fire:  6,
}

var bureauNames = map[int]string{2: "水二局", 3: "木三局", 4: "金四局", 5: "土五局", 6: "火六局"}

// BureauName renders a bureau number, e.g. "水二局".
func BureauName(n int) string { return bureauNames[n] }

// Placement is a star sitting in a palace.
type Placement struct {
	Star           Star            `json:"star"`
	Brightness     Brightness      `json:"brightness,omitempty"`
	Transformation *Transformation `json:"transformation,omitempty"`
}

// Palace is one of the twelve ring positions.
type Palace struct {
	// Index is the ring position, 1 (子) to 12 (亥).
	Index  int           `json:"index"`
	Role   Role          `json:"role"`
	Stem   ganzhi.Stem   `json:"stem"`
	Branch ganzhi.Branch `json:"branch"`
	Body   bool          `json:"body"`
	Major  []Placement   `json:"major"`
	Minor  []Placement   `json:"minor"`
}

// TransformedStar binds a transformation to a star and its palace.
type TransformedStar struct {
	Kind   Transformation `json:"kind"`
	Star   Star           `json:"star"`
	Palace int            `json:"palace"`
}

// Chart is the Zi Wei palace chart.
type Chart struct {
	// Year is the pillar of the lunar year the chart is read in.
	Year            ganzhi.Pillar      `json:"year"`
	Bureau          int                `json:"bureau"`
	BureauName      string             `json:"bureau_name"`
	DestinyIndex    int                `json:"destiny_index"`
	BodyIndex       int                `json:"body_index"`
	LunarMonth      int                `json:"lunar_month"`
	LunarDay        int                `json:"lunar_day"`
	Palaces         [12]Palace         `json:"palaces"`
	Transformations [4]TransformedStar `json:"transformations"`
}

// Palace returns the palace playing role r.
func (c Chart) Palace(r Role) Palace {
	for _, p := range c.Palaces {
		if p.Role == r {
			return p
		}
	}
	return Palace{}
}

// At returns the palace at a ring position (1-12).
func (c Chart) At(index int) Palace { return c.Palaces[(index-1+12)%12] }

// Destiny is the destiny palace.
func (c Chart) Destiny() Palace { return c.At(c.DestinyIndex) }

// Body is the palace hosting the body.
func (c Chart) Body() Palace { return c.At(c.BodyIndex) }

// MajorCount counts the majors placed across the ring.
func (c Chart) MajorCount() int {
	n := 0
	for _, p := range c.Palaces {
		n += len(p.Major)
	}
	return n
}

// DestinyBranch counts from 寅 forward by lunar month, then back by hour.
func DestinyBranch(month int, hour ganzhi.Branch) ganzhi.Branch {
	return ganzhi.Yin.Add(month - 1 - int(hour))
}

// BodyBranch counts from 寅 forward by lunar month, then forward by hour.
func BodyBranch(month int, hour ganzhi.Branch) ganzhi.Branch {
	return ganzhi.Yin.Add(month - 1 + int(hour))
}

// PalaceStem follows the five-tigers rule from the year stem.
func PalaceStem(yearStem ganzhi.Stem, b ganzhi.Branch) ganzhi.Stem {
	return calendar.TigerStem(yearStem).Add(b.Sub(ganzhi.Yin))
}

// Bureau reads the na yin element of the destiny palace pillar.
func Bureau(yearStem ganzhi.Stem, destiny ganzhi.Branch) (int, error) {
	p, err := ganzhi.NewPillar(PalaceStem(yearStem, destiny), destiny)
	if err != nil {
		return 0, domain.Missing("ziwei.palace_pillar", destiny)
	}
	n, ok := bureauByElement[p.NaYin().Element]
	if !ok {
		return 0, domain.Missing("ziwei.bureau", p.NaYin().Element)
	}
	return n, nil
}

// ZiWeiBranch places the purple star: find the smallest x making day+x a
// multiple of the bureau, walk the quotient from 寅, then step x back when x
// is odd or forward when even.
func ZiWeiBranch(bureau, day int) ganzhi.Branch {
	x := 0
	for (day+x)%bureau != 0 {
		x++
	}
	pos := ganzhi.Yin.Add((day+x)/bureau - 1)
	if x%2 == 1 {
		return pos.Add(-x)
	}
	return pos.Add(x)
}

// TianFuBranch mirrors the purple star across the 寅-申 axis.
func TianFuBranch(ziwei ganzhi.Branch) ganzhi.Branch {
	return ganzhi.BranchOf(4 - int(ziwei))
}

// EffectiveMonth folds a leap month into its own month up to day 15 and
// into the next month afterwards.
func EffectiveMonth(l calendar.LunarDate) int {
	if l.Leap && l.Day > 15 {
		return l.Month%12 + 1
	}
	return l.Month
}

// Build lays out the chart for a calendar date. Year, month and day all
// come from the lunar date of the day pillar's day, so the chart turns over
// at Chinese New Year rather than at Start of Spring.
func Build(d calendar.Date) (Chart, error) {
	lunar := d.DayLunar
	year := calendar.YearPillar(lunar.Year)
	yearStem, yearBranch := year.Stem, year.Branch
	hour := d.Hour.Branch
	month := EffectiveMonth(lunar)
	day := lunar.Day

	// 1. Destiny, Body and Bureau
	destiny := DestinyBranch(month, hour)
	body := BodyBranch(month, hour)
	bureau, err := Bureau(yearStem, destiny)
	if err != nil {
		return Chart{}, err
	}

	c := Chart{
		Year:         year,
		Bureau:       bureau,
		BureauName:   BureauName(bureau),
		DestinyIndex: destiny.Position(),
		BodyIndex:    body.Position(),
		LunarMonth:   month,
		LunarDay:     day,
	}
	// 2. Twelve Palaces with their Stems
	for i := range c.Palaces {
		b := ganzhi.Branch(i)
		c.Palaces[i] = Palace{
			Index:  b.Position(),
			Role:   Role(destiny.Sub(b)),
			Stem:   PalaceStem(yearStem, b),
			Branch: b,
			Body:   b == body,
		}
	}

	// 3. Fourteen Major Stars (紫微 and 天府 families)
	zw := ZiWeiBranch(bureau, day)
	for _, f := range ziWeiFamily {
		c.place(f.star, zw.Add(f.offset))
	}
	tf := TianFuBranch(zw)
	for _, f := range tianFuFamily {
		c.place(f.star, tf.Add(f.offset))
	}

	// 4. Minor Stars by Hour, Month and Year
	h := int(hour)
	lu := luCun[yearStem]
	group := int(yearBranch) % 4
	for _, m := range []struct {
		star Star
		at   ganzhi.Branch
	}{
		{WenChang, ganzhi.Xu.Add(-h)},
		{WenQu, ganzhi.Chen.Add(h)},
		{ZuoFu, ganzhi.Chen.Add(month - 1)},
		{YouBi, ganzhi.Xu.Add(-(month - 1))},
		{TianKui, kuiYue[yearStem][0]},
		{TianYue, kuiYue[yearStem][1]},
		{LuCun, lu},
		{QingYang, lu.Add(1)},
		{TuoLuo, lu.Add(-1)},
		{HuoXing, huoStart[group].Add(h)},
		{LingXing, lingStart[group].Add(h)},
		{DiKong, ganzhi.Hai.Add(-h)},
		{DiJie, ganzhi.Hai.Add(h)},
		{TianMa, tianMa[group]},
	} {
		c.place(m.star, m.at)
	}

	// 5. Four Transformations
	if err := c.transform(yearStem); err != nil {
		return Chart{}, err
	}
	return c, nil
}

func (c *Chart) place(s Star, b ganzhi.Branch) {
	p := &c.Palaces[b]
	pl := Placement{Star: s, Brightness: BrightnessOf(s, b)}
	if s.Major() {
		p.Major = append(p.Major, pl)
	} else {
		p.Minor = append(p.Minor, pl)
	}
}

// transform marks the four transformed stars of the year stem. The table
// must name four distinct stars; anything else is a broken table.
func (c *Chart) transform(yearStem ganzhi.Stem) error {
	row := transformations[yearStem]
	seen := make(map[Star]bool, len(row))
	for kind, s := range row {
		if seen[s] {
			return domain.Missing("ziwei.transformations", yearStem.String()+"/"+s.String())
		}
		seen[s] = true

		idx, ok := c.mark(s, Transformation(kind))
		if !ok {
			return domain.Missing("ziwei.star_position", s.String())
		}
		c.Transformations[kind] = TransformedStar{Kind: Transformation(kind), Star: s, Palace: idx}
	}
	return nil
}

func (c *Chart) mark(s Star, kind Transformation) (int, bool) {
	for i := range c.Palaces {
		p := &c.Palaces[i]
		for _, list := range [][]Placement{p.Major, p.Minor} {
			for j := range list {
				if list[j].Star == s {
					k := kind
					list[j].Transformation = &k
					return p.Index, true
				}
			}
		}
	}
	return 0, false
}
