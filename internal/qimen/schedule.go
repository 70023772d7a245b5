package qimen

import (
	"sort"
	"sync"

	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/calendar"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
)

const (
	// blockDays is one term's worth of Ju: three yuan of five days.
	blockDays = 15
	// leapLead is how far a block may run ahead of its term before a
	// 芒种 or 大雪 block is repeated.
	leapLead = 9
	// scheduleLeadYears pads the walk so that it settles before MinYear.
	scheduleLeadYears = 4
)

// Block is a fifteen-day run of days sharing one term's Ju.
type Block struct {
	// Start is the day number of the 符头 (甲子, 己卯, 甲午 or 己酉 day).
	Start int
	Term  astro.Term
	// TermDay is the UTC+8 day number of the term itself.
	TermDay int
	Leap    bool
}

// Lead is how many days the block starts before (negative) or after its term.
func (b Block) Lead() int { return b.Start - b.TermDay }

// termOrder lists the terms in the order they fall within a Gregorian year.
var termOrder = func() [24]astro.Term {
	var out [24]astro.Term
	for i := range out {
		out[i] = astro.TermOf(int(astro.MinorCold) + i)
	}
	return out
}()

// Schedule returns the block walk covering the supported years. It is
// built on first use and shared read-only afterwards.
var Schedule = sync.OnceValue(buildSchedule)

func buildSchedule() []Block {
	type termDay struct {
		term astro.Term
		day  int
	}
	var terms []termDay
	for y := domain.MinYear - scheduleLeadYears; y <= domain.MaxYear+1; y++ {
		for _, k := range termOrder {
			terms = append(terms, termDay{k, calendar.ChinaDay(astro.TermTime(y, k))})
		}
	}

	i := 0
	for terms[i].term != astro.WinterSolstice {
		i++
	}
	from := terms[i].day - leapLead + 1
	start := from + mod(calendar.EpochDayNumber-from, blockDays)

	blocks := make([]Block, 0, len(terms)+len(terms)/60)
	for ; i < len(terms); i++ {
		t := terms[i]
		b := Block{Start: start, Term: t.term, TermDay: t.day}
		blocks = append(blocks, b)
		start += blockDays
		if (t.term == astro.GrainInEar || t.term == astro.MajorSnow) && b.Lead() < -leapLead {
			b.Start, b.Leap = start, true
			blocks = append(blocks, b)
			start += blockDays
		}
	}
	return blocks
}

// BlockFor finds the block holding a day number.
func BlockFor(day int) (Block, error) {
	blocks := Schedule()
	i := sort.Search(len(blocks), func(i int) bool { return blocks[i].Start > day }) - 1
	if i < 0 || day >= blocks[i].Start+blockDays {
		return Block{}, domain.Missing("qimen.schedule", day)
	}
	return blocks[i], nil
}

func mod(a, n int) int { return (a%n + n) % n }
