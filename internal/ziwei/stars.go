package ziwei

import (
	"encoding/json"

	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
)

// Star is a Zi Wei star. The first fourteen are the majors.
type Star int

const (
	ZiWei Star = iota
	TianJi
	TaiYang
	WuQu
	TianTong
	LianZhen
	TianFu
	TaiYin
	TanLang
	JuMen
	TianXiang
	TianLiang
	QiSha
	PoJun

	WenChang
	WenQu
	ZuoFu
	YouBi
	TianKui
	TianYue
	LuCun
	QingYang
	TuoLuo
	HuoXing
	LingXing
	DiKong
	DiJie
	TianMa

	starCount
)

// MajorCount is the number of major stars in every chart.
const MajorCount = int(WenChang)

var starNames = [starCount]string{
	"紫微", "天机", "太阳", "武曲", "天同", "廉贞", "天府", "太阴", "贪狼", "巨门", "天相", "天梁", "七杀", "破军",
	"文昌", "文曲", "左辅", "右弼", "天魁", "天钺", "禄存", "擎羊", "陀罗", "火星", "铃星", "地空", "地劫", "天马",
}

var starKeys = [starCount]string{
	"zi_wei", "tian_ji", "tai_yang", "wu_qu", "tian_tong", "lian_zhen", "tian_fu", "tai_yin",
	"tan_lang", "ju_men", "tian_xiang", "tian_liang", "qi_sha", "po_jun",
	"wen_chang", "wen_qu", "zuo_fu", "you_bi", "tian_kui", "tian_yue", "lu_cun", "qing_yang",
	"tuo_luo", "huo_xing", "ling_xing", "di_kong", "di_jie", "tian_ma",
}

func (s Star) String() string { return starNames[s] }
func (s Star) Key() string    { return starKeys[s] }

// Major reports whether s is one of the fourteen major stars.
func (s Star) Major() bool { return s >= ZiWei && s < WenChang }

func (s Star) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Offsets of the majors from their family lead, in ring steps. The Zi Wei
// family runs counter-clockwise, the Tian Fu family clockwise.
var (
	ziWeiFamily = []struct {
		star   Star
		offset int
	}{{ZiWei, 0}, {TianJi, -1}, {TaiYang, -3}, {WuQu, -4}, {TianTong, -5}, {LianZhen, -8}}

	tianFuFamily = []struct {
		star   Star
		offset int
	}{{TianFu, 0}, {TaiYin, 1}, {TanLang, 2}, {JuMen, 3}, {TianXiang, 4}, {TianLiang, 5}, {QiSha, 6}, {PoJun, 10}}
)

// Brightness grades a star in a branch.
type Brightness int

const (
	Unrated Brightness = iota // minors
	Miao                      // 庙
	Wang                      // 旺
	De                        // 得
	Li                        // 利
	Ping                      // 平
	Bu                        // 不
	Xian                      // 陷
)

var brightnessNames = [8]string{"", "庙", "旺", "得", "利", "平", "不", "陷"}

func (b Brightness) String() string { return brightnessNames[b] }

func (b Brightness) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }

// Grade is the coarse reading of a brightness.
type Grade string

const (
	Exalted Grade = "exalted"
	Neutral Grade = "neutral"
	Falling Grade = "falling"
)

// Grade folds the seven degrees into exalted, neutral or falling.
func (b Brightness) Grade() Grade {
	switch b {
	case Miao, Wang:
		return Exalted
	case Bu, Xian:
		return Falling
	}
	return Neutral
}

// brightness of each major, branches listed from 寅 to 丑.
var brightness = [MajorCount][12]Brightness{
	ZiWei:     {Wang, Wang, De, Wang, Miao, Miao, Wang, Wang, De, Wang, Ping, Miao},
	TianJi:    {De, Wang, Li, Ping, Miao, Xian, De, Wang, Li, Ping, Miao, Xian},
	TaiYang:   {Wang, Miao, Wang, Wang, Wang, De, De, Xian, Bu, Xian, Xian, Bu},
	WuQu:      {De, Li, Miao, Ping, Wang, Miao, De, Li, Miao, Ping, Wang, Miao},
	TianTong:  {Li, Ping, Ping, Miao, Xian, Bu, Wang, Ping, Ping, Miao, Wang, Bu},
	LianZhen:  {Miao, Ping, Li, Xian, Ping, Li, Miao, Ping, Li, Xian, Ping, Li},
	TianFu:    {Miao, De, Miao, De, Wang, Miao, De, Wang, Miao, De, Miao, Miao},
	TaiYin:    {Wang, Xian, Xian, Xian, Bu, Bu, Li, Bu, Wang, Miao, Miao, Miao},
	TanLang:   {Ping, Li, Miao, Xian, Wang, Miao, Ping, Li, Miao, Xian, Wang, Miao},
	JuMen:     {Miao, Miao, Xian, Wang, Wang, Bu, Miao, Miao, Xian, Wang, Wang, Bu},
	TianXiang: {Miao, Xian, De, De, Miao, De, Miao, Xian, De, De, Miao, Miao},
	TianLiang: {Miao, Miao, Miao, Xian, Miao, Wang, Xian, De, Miao, Xian, Miao, Wang},
	QiSha:     {Miao, Wang, Miao, Ping, Wang, Miao, Miao, Miao, Miao, Ping, Wang, Miao},
	PoJun:     {De, Xian, Wang, Ping, Miao, Wang, De, Xian, Wang, Ping, Miao, Wang},
}

// BrightnessOf returns the grade of a major in a branch; minors are unrated.
func BrightnessOf(s Star, b ganzhi.Branch) Brightness {
	if !s.Major() {
		return Unrated
	}
	return brightness[s][b.Sub(ganzhi.Yin)]
}

// Transformation is one of the four 化 categories.
type Transformation int

const (
	HuaLu Transformation = iota
	HuaQuan
	HuaKe
	HuaJi
)

var transformationNames = [4]string{"化禄", "化权", "化科", "化忌"}
var transformationKeys = [4]string{"lu", "quan", "ke", "ji"}

func (t Transformation) String() string { return transformationNames[t] }
func (t Transformation) Key() string    { return transformationKeys[t] }

func (t Transformation) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// transformations by year stem, in 禄 权 科 忌 order.
var transformations = [10][4]Star{
	{LianZhen, PoJun, WuQu, TaiYang},   // 甲
	{TianJi, TianLiang, ZiWei, TaiYin}, // 乙
	{TianTong, TianJi, WenChang, LianZhen},
	{TaiYin, TianTong, TianJi, JuMen},
	{TanLang, TaiYin, YouBi, TianJi},
	{WuQu, TanLang, TianLiang, WenQu},
	{TaiYang, WuQu, TaiYin, TianTong},
	{JuMen, TaiYang, WenQu, WenChang},
	{TianLiang, ZiWei, ZuoFu, WuQu},
	{PoJun, JuMen, TaiYin, TanLang}, // 癸
}

// 禄存 by year stem.
var luCun = [10]ganzhi.Branch{
	ganzhi.Yin, ganzhi.Mao, ganzhi.Si, ganzhi.Wu, ganzhi.Si,
	ganzhi.Wu, ganzhi.Shen, ganzhi.You, ganzhi.Hai, ganzhi.Zi,
}

// 天魁 and 天钺 by year stem.
var kuiYue = [10][2]ganzhi.Branch{
	{ganzhi.Chou, ganzhi.Wei}, {ganzhi.Zi, ganzhi.Shen}, {ganzhi.Hai, ganzhi.You}, {ganzhi.Hai, ganzhi.You},
	{ganzhi.Chou, ganzhi.Wei}, {ganzhi.Zi, ganzhi.Shen}, {ganzhi.Chou, ganzhi.Wei}, {ganzhi.Wu, ganzhi.Yin},
	{ganzhi.Mao, ganzhi.Si}, {ganzhi.Mao, ganzhi.Si},
}

// Year-branch triads index the tables below by branch % 4:
// 0 申子辰, 1 巳酉丑, 2 寅午戌, 3 亥卯未.
var (
	tianMa    = [4]ganzhi.Branch{ganzhi.Yin, ganzhi.Hai, ganzhi.Shen, ganzhi.Si}
	huoStart  = [4]ganzhi.Branch{ganzhi.Yin, ganzhi.Mao, ganzhi.Chou, ganzhi.You}
	lingStart = [4]ganzhi.Branch{ganzhi.Xu, ganzhi.Xu, ganzhi.Mao, ganzhi.Xu}
)
