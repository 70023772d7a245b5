// Package ganzhi defines the ten heavenly stems, the twelve earthly branches
// and the sixty-term cycle they form, together with the fixed lookup tables
// keyed by them (five elements, na yin, void branches, ten gods).
package ganzhi

import (
	"encoding/json"
	"fmt"
)

// Element is one of the five phases.
type Element int

const (
	Wood Element = iota
	Fire
	Earth
	Metal
	Water
)

var elementNames = [5]string{"木", "火", "土", "金", "水"}
var elementKeys = [5]string{"wood", "fire", "earth", "metal", "water"}

func (e Element) String() string { return elementNames[e] }

// Key is the stable ASCII identifier used by locales and JSON.
func (e Element) Key() string { return elementKeys[e] }

// Generates reports whether e feeds o in the productive cycle.
func (e Element) Generates(o Element) bool { return (e+1)%5 == o }

// Controls reports whether e restrains o in the controlling cycle.
func (e Element) Controls(o Element) bool { return (e+2)%5 == o }

func (e Element) MarshalJSON() ([]byte, error) { return json.Marshal(e.Key()) }

// Stem is a heavenly stem, 0 = 甲 … 9 = 癸.
type Stem int

const (
	Jia Stem = iota // 甲
	Yi              // 乙
	Bing            // 丙
	Ding            // 丁
	Mou             // 戊
	Ji              // 己
	Geng            // 庚
	Xin             // 辛
	Ren             // 壬
	Gui             // 癸
)

var stemNames = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}
var stemKeys = [10]string{"jia", "yi", "bing", "ding", "wu", "ji", "geng", "xin", "ren", "gui"}

// StemOf wraps any integer onto the ten-stem cycle.
func StemOf(i int) Stem { return Stem(mod(i, 10)) }

func (s Stem) String() string { return stemNames[s] }
func (s Stem) Key() string    { return stemKeys[s] }

// Yang is true for 甲丙戊庚壬.
func (s Stem) Yang() bool { return s%2 == 0 }

// Element: 甲乙木 丙丁火 戊己土 庚辛金 壬癸水.
func (s Stem) Element() Element { return Element(s / 2) }

// Add steps the stem n places along the cycle.
func (s Stem) Add(n int) Stem { return StemOf(int(s) + n) }

func (s Stem) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Branch is an earthly branch, 0 = 子 … 11 = 亥.
type Branch int

const (
	Zi   Branch = iota // 子
	Chou               // 丑
	Yin                // 寅
	Mao                // 卯
	Chen               // 辰
	Si                 // 巳
	Wu                 // 午
	Wei                // 未
	Shen               // 申
	You                // 酉
	Xu                 // 戌
	Hai                // 亥
)

var branchNames = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
var branchKeys = [12]string{"zi", "chou", "yin", "mao", "chen", "si", "wu", "wei", "shen", "you", "xu", "hai"}

// 子水 丑土 寅卯木 辰土 巳午火 未土 申酉金 戌土 亥水
var branchElements = [12]Element{Water, Earth, Wood, Wood, Earth, Fire, Fire, Earth, Metal, Metal, Earth, Water}

// BranchOf wraps any integer onto the twelve-branch ring.
func BranchOf(i int) Branch { return Branch(mod(i, 12)) }

func (b Branch) String() string { return branchNames[b] }
func (b Branch) Key() string    { return branchKeys[b] }

// Yang is true for 子寅辰午申戌.
func (b Branch) Yang() bool { return b%2 == 0 }

// Element reads the branch's own phase, not its hidden stems.
func (b Branch) Element() Element { return branchElements[b] }

// Add steps the branch n places around the ring; negative n steps back.
func (b Branch) Add(n int) Branch { return BranchOf(int(b) + n) }

// Sub is the forward distance (0-11) from o to b.
func (b Branch) Sub(o Branch) int { return mod(int(b)-int(o), 12) }

// Position is the 1-based ring position used for palace numbering, 子 = 1.
func (b Branch) Position() int { return int(b) + 1 }

func (b Branch) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }

// -----------------------------------------------------------------------------
// Pillars
// -----------------------------------------------------------------------------

// Pillar is a legal stem-branch pair. Only 60 of the 120 combinations are
// legal: stem and branch must share parity.
type Pillar struct {
	Stem   Stem
	Branch Branch
}

// NewPillar validates the parity invariant.
func NewPillar(s Stem, b Branch) (Pillar, error) {
	if s < 0 || s > 9 || b < 0 || b > 11 || int(s)%2 != int(b)%2 {
		return Pillar{}, fmt.Errorf("ganzhi: illegal pair stem=%d branch=%d", s, b)
	}
	return Pillar{Stem: s, Branch: b}, nil
}

// PillarAt returns the i-th term of the sexagenary cycle, 0 = 甲子.
func PillarAt(i int) Pillar {
	i = mod(i, 60)
	return Pillar{Stem: Stem(i % 10), Branch: Branch(i % 12)}
}

// Index is the position on the sixty-term cycle. By the Chinese remainder
// theorem i ≡ stem (mod 10) and i ≡ branch (mod 12) give i = 6·stem − 5·branch (mod 60).
func (p Pillar) Index() int { return mod(6*int(p.Stem)-5*int(p.Branch), 60) }

// Next steps n places along the cycle.
func (p Pillar) Next(n int) Pillar { return PillarAt(p.Index() + n) }

// String renders the pair as two characters, e.g. 甲子.
func (p Pillar) String() string { return p.Stem.String() + p.Branch.String() }

// NaYin returns the elemental class of the pillar.
func (p Pillar) NaYin() NaYin { return naYinTable[p.Index()/2] }

// Decade is the index (0-5) of the ten-day 旬 that holds the pillar.
func (p Pillar) Decade() int { return p.Index() / 10 }

// Void returns the two branches left out of the pillar's decade (旬空).
func (p Pillar) Void() [2]Branch {
	head := p.Branch.Add(-int(p.Stem))
	return [2]Branch{head.Add(10), head.Add(11)}
}

func (p Pillar) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
