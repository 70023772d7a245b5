package ganzhi

import "encoding/json"

// NaYin is the elemental class shared by two consecutive pillars of the cycle.
type NaYin struct {
	Name    string
	Element Element
}

func (n NaYin) String() string { return n.Name }

func (n NaYin) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string  `json:"name"`
		Element Element `json:"element"`
	}{n.Name, n.Element})
}

// naYinTable holds one entry per pair of the sixty-term cycle (甲子乙丑, 丙寅丁卯, …).
var naYinTable = [30]NaYin{
	{"海中金", Metal}, {"炉中火", Fire}, {"大林木", Wood}, {"路旁土", Earth}, {"剑锋金", Metal},
	{"山头火", Fire}, {"涧下水", Water}, {"城头土", Earth}, {"白蜡金", Metal}, {"杨柳木", Wood},
	{"泉中水", Water}, {"屋上土", Earth}, {"霹雳火", Fire}, {"松柏木", Wood}, {"长流水", Water},
	{"砂中金", Metal}, {"山下火", Fire}, {"平地木", Wood}, {"壁上土", Earth}, {"金箔金", Metal},
	{"覆灯火", Fire}, {"天河水", Water}, {"大驿土", Earth}, {"钗钏金", Metal}, {"桑柘木", Wood},
	{"大溪水", Water}, {"沙中土", Earth}, {"天上火", Fire}, {"石榴木", Wood}, {"大海水", Water},
}

// TenGod is the relation of a stem to the day master.
type TenGod int

const (
	Companion    TenGod = iota // 比肩
	RobWealth                  // 劫财
	EatingGod                  // 食神
	HurtingOfficer             // 伤官
	IndirectWealth             // 偏财
	DirectWealth               // 正财
	SevenKillings              // 七杀
	DirectOfficer              // 正官
	IndirectSeal               // 偏印
	DirectSeal                 // 正印
)

var tenGodNames = [10]string{"比肩", "劫财", "食神", "伤官", "偏财", "正财", "七杀", "正官", "偏印", "正印"}

func (g TenGod) String() string { return tenGodNames[g] }

func (g TenGod) MarshalJSON() ([]byte, error) { return json.Marshal(g.String()) }

// TenGodOf classifies other against the day master dm. The five relations
// (same, output, wealth, power, resource) each split on polarity.
func TenGodOf(dm, other Stem) TenGod {
	rel := mod(int(other.Element())-int(dm.Element()), 5)
	var base TenGod
	switch rel {
	case 0:
		base = Companion
	case 1:
		base = EatingGod
	case 2:
		base = IndirectWealth
	case 3:
		base = SevenKillings
	default:
		base = IndirectSeal
	}
	if dm.Yang() != other.Yang() {
		base++
	}
	return base
}

// HiddenStems lists the stems stored in each branch, main qi first.
var HiddenStems = [12][]Stem{
	{Gui},
	{Ji, Gui, Xin},
	{Jia, Bing, Mou},
	{Yi},
	{Mou, Yi, Gui},
	{Bing, Mou, Geng},
	{Ding, Ji},
	{Ji, Ding, Yi},
	{Geng, Ren, Mou},
	{Xin},
	{Mou, Xin, Ding},
	{Ren, Jia},
}
