package calendar

import "github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"

// Almanac is the day-selection panel of a date: the twelve day officers,
// the lunar mansion, the auspicious directions and the Peng Zu taboos.
type Almanac struct {
	Officer string    `json:"officer"`
	Yi      []string  `json:"yi"`
	Ji      []string  `json:"ji"`
	Mansion Mansion   `json:"mansion"`
	Joy     Direction `json:"joy_god"`
	Wealth  Direction `json:"wealth_god"`
	Fortune Direction `json:"fortune_god"`
	PengZu  [2]string `json:"peng_zu"`
	Clash   string    `json:"clash"`
}

// Mansion is one of the 28 lunar lodges.
type Mansion struct {
	Name  string `json:"name"`
	Lucky bool   `json:"lucky"`
}

// Direction is a trigram with its compass reading.
type Direction struct {
	Trigram string `json:"trigram"`
	Compass string `json:"compass"`
}

var officers = [12]string{"建", "除", "满", "平", "定", "执", "破", "危", "成", "收", "开", "闭"}

// officerAdvice holds the 宜 and 忌 lists of each day officer.
var officerAdvice = [12][2][]string{
	{{"出行", "上任", "会友", "上书", "见工"}, {"动土", "开仓", "嫁娶", "纳采"}},
	{{"除服", "疗病", "出行", "拆卸", "入宅"}, {"求官", "上任", "开张", "搬家", "探病"}},
	{{"祈福", "祭祀", "结亲", "开市", "交易"}, {"服药", "求医", "栽种", "动土", "迁移"}},
	{{"祭祀", "修坟", "涂泥"}, {"移徙", "入宅", "嫁娶", "开市", "安葬"}},
	{{"交易", "立券", "会友", "签约", "纳畜"}, {"种植", "置业", "卖田", "掘井", "造船"}},
	{{"祈福", "祭祀", "求子", "结婚", "立约"}, {"开市", "交易", "搬家", "远行"}},
	{{"破屋", "坏垣", "求医", "治病"}, {"嫁娶", "开市", "动土", "安床", "出行"}},
	{{"经营", "交易", "求官", "纳畜", "动土"}, {"登高", "行船", "安床", "入宅", "博彩"}},
	{{"祈福", "入学", "开市", "求医", "成服"}, {"词讼", "安门", "移徙"}},
	{{"祭祀", "求财", "签约", "嫁娶", "订盟"}, {"开市", "安床", "安葬", "入宅", "破土"}},
	{{"祭祀", "祈福", "入学", "上任", "修造", "动土", "开市", "安床", "交易", "出行"}, {"放水", "下葬", "筑堤"}},
	{{"祭祀", "祈福", "筑堤", "埋池", "补垣"}, {"开市", "出行", "求医", "手术", "嫁娶"}},
}

// mansions start at 角; auspicious lodges are marked.
var mansions = [28]Mansion{
	{"角", true}, {"亢", false}, {"氐", false}, {"房", true}, {"心", false}, {"尾", true}, {"箕", true},
	{"斗", true}, {"牛", false}, {"女", false}, {"虚", false}, {"危", false}, {"室", true}, {"壁", true},
	{"奎", false}, {"娄", true}, {"胃", true}, {"昴", false}, {"毕", true}, {"觜", false}, {"参", true},
	{"井", true}, {"鬼", false}, {"柳", false}, {"星", false}, {"张", true}, {"翼", false}, {"轸", true},
}

// mansionAnchor aligns the 28-day cycle with Julian day numbers so that
// each lodge keeps its planetary weekday (角 on Thursday).
const mansionAnchor = 11

var trigramCompass = map[string]string{
	"坎": "正北", "艮": "东北", "震": "正东", "巽": "东南",
	"离": "正南", "坤": "西南", "兑": "正西", "乾": "西北",
}

// Indexed by day stem.
var (
	joyGod     = [10]string{"艮", "乾", "坤", "离", "巽", "艮", "乾", "坤", "离", "巽"}
	wealthGod  = [10]string{"艮", "艮", "坤", "坤", "坎", "坎", "震", "震", "离", "离"}
	fortuneGod = [10]string{"坎", "坤", "乾", "巽", "艮", "坎", "坤", "乾", "巽", "艮"}
)

var pengZuStem = [10]string{
	"甲不开仓财物耗散", "乙不栽植千株不长", "丙不修灶必见灾殃", "丁不剃头头必生疮", "戊不受田田主不祥",
	"己不破券二比并亡", "庚不经络织机虚张", "辛不合酱主人不尝", "壬不泱水更难提防", "癸不词讼理弱敌强",
}

var pengZuBranch = [12]string{
	"子不问卜自惹祸殃", "丑不冠带主不还乡", "寅不祭祀神鬼不尝", "卯不穿井水泉不香",
	"辰不哭泣必主重丧", "巳不远行财物伏藏", "午不苫盖屋主更张", "未不服药毒气入肠",
	"申不安床鬼祟入房", "酉不会客醉坐颠狂", "戌不吃犬作怪上床", "亥不嫁娶不利新郎",
}

var zodiac = [12]string{"鼠", "牛", "虎", "兔", "龙", "蛇", "马", "羊", "猴", "鸡", "狗", "猪"}

// Zodiac is the animal of a branch.
func Zodiac(b ganzhi.Branch) string { return zodiac[b] }

// AlmanacFor builds the panel of a calendar date.
func AlmanacFor(d Date) Almanac {
	dayStem, dayBranch := d.Day.Stem, d.Day.Branch
	clash := dayBranch.Add(6)
	// The officer counts from 建 on the day whose branch matches the month's.
	officer := dayBranch.Sub(d.Month.Branch)
	return Almanac{
		Officer: officers[officer],
		Yi:      officerAdvice[officer][0],
		Ji:      officerAdvice[officer][1],
		Mansion: mansions[((d.DayNumber+mansionAnchor)%28+28)%28],
		Joy:     direction(joyGod[dayStem]),
		Wealth:  direction(wealthGod[dayStem]),
		Fortune: direction(fortuneGod[dayStem]),
		PengZu:  [2]string{pengZuStem[dayStem], pengZuBranch[dayBranch]},
		Clash:   "冲" + Zodiac(clash) + "(" + clash.String() + ")",
	}
}

func direction(trigram string) Direction {
	return Direction{Trigram: trigram, Compass: trigramCompass[trigram]}
}
