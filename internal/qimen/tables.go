package qimen

import (
	"encoding/json"
	"time"

	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
)

// Center is the Luo Shu palace without a door or deity.
const Center = 5

// Dun is the half-year period of the chart.
type Dun string

const (
	YangDun Dun = "yang"
	YinDun  Dun = "yin"
)

func (d Dun) String() string {
	if d == YangDun {
		return "阳遁"
	}
	return "阴遁"
}

// DunOf reports the period of a term: yang from 冬至 to 芒种.
func DunOf(t astro.Term) Dun {
	if t >= astro.WinterSolstice || t <= astro.GrainInEar {
		return YangDun
	}
	return YinDun
}

// DunAt reports the period of an instant: yang while the sun is between
// 270° and 90°.
func DunAt(t time.Time) Dun { return DunOf(astro.TermAt(t)) }

// Star is one of the nine stars, valued by its home palace.
type Star int

const (
	Peng  Star = iota + 1 // 天蓬
	Rui                   // 天芮
	Chong                 // 天冲
	Fu                    // 天辅
	Qin                   // 天禽
	Xin                   // 天心
	Zhu                   // 天柱
	Ren                   // 天任
	Ying                  // 天英
)

var starNames = [10]string{"", "天蓬", "天芮", "天冲", "天辅", "天禽", "天心", "天柱", "天任", "天英"}

func (s Star) String() string               { return starNames[s] }
func (s Star) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Door is one of the eight doors, valued by its home palace. The center has none.
type Door int

const (
	NoDoor     Door = 0 // center
	Rest       Door = 1 // 休
	Death      Door = 2 // 死
	Harm       Door = 3 // 伤
	Delusion   Door = 4 // 杜
	Open       Door = 6 // 开
	Fright     Door = 7 // 惊
	Life       Door = 8 // 生
	Brightness Door = 9 // 景
)

var doorNames = [10]string{"", "休门", "死门", "伤门", "杜门", "", "开门", "惊门", "生门", "景门"}

func (d Door) String() string               { return doorNames[d] }
func (d Door) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// Deity is one of the eight spirits, numbered from the chief.
type Deity int

const (
	NoDeity Deity = iota // center
	Chief               // 值符
	Serpent             // 螣蛇
	Moon                // 太阴
	Harmony             // 六合
	Tiger               // 白虎
	Warrior             // 玄武
	Earth               // 九地
	Heaven              // 九天
)

var deityNames = [9]string{"", "值符", "螣蛇", "太阴", "六合", "白虎", "玄武", "九地", "九天"}

func (d Deity) String() string               { return deityNames[d] }
func (d Deity) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

var trigrams = [10]string{"", "坎", "坤", "震", "巽", "中", "乾", "兑", "艮", "离"}

// ring is the clockwise order of the eight outer palaces.
var ring = [8]int{1, 8, 3, 4, 9, 2, 7, 6}

// ringIndex is the inverse of ring; -1 marks palaces off the ring.
var ringIndex = [10]int{-1, 0, 5, 2, 3, -1, 7, 6, 1, 4}

// yiOrder is the order the six 仪 and three 奇 are laid on the earth plate.
// The first six double as the stems hiding 甲 in each decade.
var yiOrder = [9]ganzhi.Stem{
	ganzhi.Mou, ganzhi.Ji, ganzhi.Geng, ganzhi.Xin, ganzhi.Ren, ganzhi.Gui,
	ganzhi.Ding, ganzhi.Bing, ganzhi.Yi,
}

// juTable holds the upper, middle and lower yuan Ju of every term.
var juTable = map[astro.Term][3]int{
	astro.WinterSolstice:     {1, 7, 4},
	astro.MinorCold:          {2, 8, 5},
	astro.MajorCold:          {3, 9, 6},
	astro.StartOfSpring:      {8, 5, 2},
	astro.RainWater:          {9, 6, 3},
	astro.AwakeningOfInsects: {1, 7, 4},
	astro.VernalEquinox:      {3, 9, 6},
	astro.ClearBright:        {4, 1, 7},
	astro.GrainRain:          {5, 2, 8},
	astro.StartOfSummer:      {4, 1, 7},
	astro.GrainBuds:          {5, 2, 8},
	astro.GrainInEar:         {6, 3, 9},

	astro.SummerSolstice:  {9, 3, 6},
	astro.MinorHeat:       {8, 2, 5},
	astro.MajorHeat:       {7, 1, 4},
	astro.StartOfAutumn:   {2, 5, 8},
	astro.EndOfHeat:       {1, 4, 7},
	astro.WhiteDew:        {9, 3, 6},
	astro.AutumnalEquinox: {7, 1, 4},
	astro.ColdDew:         {6, 9, 3},
	astro.FrostDescent:    {5, 8, 2},
	astro.StartOfWinter:   {6, 9, 3},
	astro.MinorSnow:       {5, 8, 2},
	astro.MajorSnow:       {4, 7, 1},
}

var yuanNames = [3]string{"上元", "中元", "下元"}
