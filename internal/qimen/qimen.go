// Package qimen casts the hour chart of Qi Men Dun Jia on a rotating plate.
package qimen

import (
	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/calendar"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/solartime"
)

// Palace is one of the nine Luo Shu palaces with its overlays.
type Palace struct {
	Number     int         `json:"number"`
	Trigram    string      `json:"trigram"`
	EarthStem  ganzhi.Stem `json:"earth_stem"`
	HeavenStem ganzhi.Stem `json:"heaven_stem"`
	// LodgedStem is the center stem riding along with 天禽 behind 天芮.
	LodgedStem *ganzhi.Stem `json:"lodged_stem,omitempty"`
	Star       Star         `json:"star"`
	Door       Door         `json:"door,omitempty"`
	Deity      Deity        `json:"deity,omitempty"`
}

// Chart is a cast Qi Men chart.
type Chart struct {
	Method   domain.QimenMethod `json:"method"`
	Dun      Dun                `json:"dun"`
	Ju       int                `json:"ju"`
	Term     astro.Term         `json:"term"`
	Yuan     string             `json:"yuan"`
	LeapTerm bool               `json:"leap_term"`

	Hour     ganzhi.Pillar `json:"hour"`
	XunHead  ganzhi.Pillar `json:"xun_head"`
	XunStem  ganzhi.Stem   `json:"xun_stem"`
	DutyStar Star          `json:"duty_star"`
	DutyDoor Door          `json:"duty_door"`
	// DutyStarPalace and DutyDoorPalace are where the duty star and door landed.
	DutyStarPalace int `json:"duty_star_palace"`
	DutyDoorPalace int `json:"duty_door_palace"`

	Palaces [9]Palace `json:"palaces"`
}

// Palace returns palace n (1-9).
func (c Chart) Palace(n int) Palace { return c.Palaces[n-1] }

// Build casts the chart for a corrected moment and its calendar date.
//
// The Dun always follows the sun at the instant. The method only decides
// which term's Ju row is read and which yuan of it applies.
func Build(m solartime.Moment, d calendar.Date, method domain.QimenMethod) (Chart, error) {
	c := Chart{Method: method, Hour: d.Hour, Dun: DunAt(m.Solar)}

	// 1. Pick the term and the yuan within it.
	var yuan int
	switch method {
	case domain.SplitPatch:
		c.Term = astro.TermAt(m.Solar)
		yuan = d.Day.Index() % blockDays / 5
	default:
		c.Method = domain.SuperSticking
		b, err := BlockFor(d.DayNumber)
		if err != nil {
			return Chart{}, err
		}
		c.Term, c.LeapTerm = b.Term, b.Leap
		yuan = (d.DayNumber - b.Start) / 5
	}

	// 2. Read the Ju for that term and yuan.
	ju, ok := juTable[c.Term]
	if !ok {
		return Chart{}, domain.Missing("qimen.ju", c.Term)
	}
	c.Ju = ju[yuan]
	c.Yuan = yuanNames[yuan]

	// 3. Lay out the plates.
	if err := c.cast(); err != nil {
		return Chart{}, err
	}
	return c, nil
}

// step moves n palaces along the 1-9 flight path, backwards in yin periods.
func step(from, n int, dun Dun) int {
	if dun == YinDun {
		n = -n
	}
	return mod(from-1+n, 9) + 1
}

func lodge(p int) int {
	if p == Center {
		return 2
	}
	return p
}

func ringPos(p int) (int, error) {
	if p < 1 || p > 9 || ringIndex[p] < 0 {
		return 0, domain.Missing("qimen.ring", p)
	}
	return ringIndex[p], nil
}

// rotate returns where something homed at palace home ends up when the
// home of the duty item, from, is turned to to.
func rotate(home, from, to int) (int, error) {
	h, err := ringPos(home)
	if err != nil {
		return 0, err
	}
	f, err := ringPos(from)
	if err != nil {
		return 0, err
	}
	t, err := ringPos(to)
	if err != nil {
		return 0, err
	}
	return ring[mod(h+t-f, 8)], nil
}

// cast fills the plates once Dun and Ju are known.
func (c *Chart) cast() error {
	// 1. Earth plate: the six yi and three qi fly from palace Ju.
	var earthAt [10]ganzhi.Stem
	palaceOf := make(map[ganzhi.Stem]int, len(yiOrder))
	for i, s := range yiOrder {
		p := step(c.Ju, i, c.Dun)
		earthAt[p] = s
		palaceOf[s] = p
	}

	// 2. The hour's decade head hides under one of the yi; its palace
	// names the duty star and door.
	c.XunHead = ganzhi.PillarAt(c.Hour.Decade() * 10)
	c.XunStem = yiOrder[c.Hour.Decade()]
	dutyHome, ok := palaceOf[c.XunStem]
	if !ok {
		return domain.Missing("qimen.earth_plate", c.XunStem)
	}
	c.DutyStar = Star(dutyHome)
	c.DutyDoor = Door(lodge(dutyHome))

	// 3. The duty star moves onto the hour stem. A 甲 hour hides under its xun stem.
	hourStem := c.Hour.Stem
	if hourStem == ganzhi.Jia {
		hourStem = c.XunStem
	}
	starTo, ok := palaceOf[hourStem]
	if !ok {
		return domain.Missing("qimen.earth_plate", hourStem)
	}
	starTo = lodge(starTo)
	c.DutyStarPalace = starTo

	// 4. The duty door walks one palace per hour since the decade head.
	doorTo := step(dutyHome, c.Hour.Index()-c.XunHead.Index(), c.Dun)
	doorTo = lodge(doorTo)
	c.DutyDoorPalace = doorTo

	for n := 1; n <= 9; n++ {
		c.Palaces[n-1] = Palace{Number: n, Trigram: trigrams[n], EarthStem: earthAt[n]}
	}
	center := &c.Palaces[Center-1]
	center.HeavenStem = earthAt[Center]
	center.Star = Qin

	// 5. Turn the ring of stars, carrying their heaven stems, and the ring of doors.
	from := lodge(dutyHome)
	for _, home := range ring {
		at, err := rotate(home, from, starTo)
		if err != nil {
			return err
		}
		p := &c.Palaces[at-1]
		p.Star = Star(home)
		p.HeavenStem = earthAt[home]
		if home == 2 {
			s := earthAt[Center]
			p.LodgedStem = &s
		}

		at, err = rotate(home, from, doorTo)
		if err != nil {
			return err
		}
		c.Palaces[at-1].Door = Door(home)
	}

	// 6. Deities start with 值符 on the duty star and run with the Dun.
	start, err := ringPos(starTo)
	if err != nil {
		return err
	}
	dir := 1
	if c.Dun == YinDun {
		dir = -1
	}
	for i := 0; i < 8; i++ {
		c.Palaces[ring[mod(start+dir*i, 8)]-1].Deity = Deity(i + 1)
	}
	return nil
}
