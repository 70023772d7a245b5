package ziwei_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigfamingjia/ai-fortune-teller/internal/calendar"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/solartime"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ziwei"
)

func dateOf(t *testing.T, c domain.CivilDateTime) calendar.Date {
	t.Helper()
	return dateWith(t, c, domain.Midnight)
}

func dateWith(t *testing.T, c domain.CivilDateTime, boundary domain.DayBoundary) calendar.Date {
	t.Helper()
	b, err := domain.BirthRequest{
		Civil:     c,
		UTCOffset: 8 * time.Hour,
		Longitude: 116.40,
		Gender:    domain.Male,
		Options:   domain.Options{DayBoundary: boundary},
	}.Validate()
	require.NoError(t, err)
	m, err := solartime.Correct(b)
	require.NoError(t, err)
	d, err := calendar.Convert(m, b.Options.DayBoundary)
	require.NoError(t, err)
	return d
}

func TestBuild_Scenario(t *testing.T) {
	d := dateOf(t, domain.CivilDateTime{Year: 1996, Month: 1, Day: 25, Hour: 10, Minute: 30})
	c, err := ziwei.Build(d)
	require.NoError(t, err)

	assert.Equal(t, "乙亥", c.Year.String())
	assert.Equal(t, 12, c.LunarMonth)
	assert.Equal(t, 6, c.LunarDay)

	// 腊月 in the 巳 hour puts destiny in 申 (甲申, 泉中水) and body in 午.
	assert.Equal(t, ganzhi.Shen, c.Destiny().Branch)
	assert.Equal(t, ganzhi.Jia, c.Destiny().Stem)
	assert.Equal(t, ziwei.Destiny, c.Destiny().Role)
	assert.Equal(t, ganzhi.Wu, c.Body().Branch)
	assert.True(t, c.Body().Body)
	assert.Equal(t, 2, c.Bureau)
	assert.Equal(t, "水二局", c.BureauName)

	assert.Equal(t, ganzhi.Wei, c.Palace(ziwei.Siblings).Branch)
	assert.Equal(t, ganzhi.You, c.Palace(ziwei.Parents).Branch)

	require.Len(t, c.Destiny().Major, 1)
	assert.Equal(t, ziwei.LianZhen, c.Destiny().Major[0].Star)
	assert.Equal(t, ziwei.Miao, c.Destiny().Major[0].Brightness)

	stars := func(b ganzhi.Branch) []ziwei.Star {
		var out []ziwei.Star
		for _, p := range c.At(b.Position()).Major {
			out = append(out, p.Star)
		}
		return out
	}
	assert.Equal(t, []ziwei.Star{ziwei.ZiWei, ziwei.TianXiang}, stars(ganzhi.Chen))
	assert.Equal(t, []ziwei.Star{ziwei.WuQu, ziwei.TianFu}, stars(ganzhi.Zi))

	// 乙: 天机禄 天梁权 紫微科 太阴忌.
	want := []struct {
		star   ziwei.Star
		branch ganzhi.Branch
	}{
		{ziwei.TianJi, ganzhi.Mao},
		{ziwei.TianLiang, ganzhi.Si},
		{ziwei.ZiWei, ganzhi.Chen},
		{ziwei.TaiYin, ganzhi.Chou},
	}
	for i, w := range want {
		tr := c.Transformations[i]
		assert.Equal(t, ziwei.Transformation(i), tr.Kind)
		assert.Equal(t, w.star, tr.Star)
		assert.Equal(t, w.branch.Position(), tr.Palace, tr.Star.String())
	}
}

func TestBuild_LunarYear(t *testing.T) {
	tests := []struct {
		name      string
		civil     domain.CivilDateTime
		solarYear string
		want      string
	}{
		// 立春 has not come yet but the lunar year has turned.
		{"AfterNewYear", domain.CivilDateTime{Year: 2023, Month: 1, Day: 25, Hour: 12}, "壬寅", "癸卯"},
		// 立春 has passed but the lunar year has not.
		{"BeforeNewYear", domain.CivilDateTime{Year: 2024, Month: 2, Day: 6, Hour: 12}, "甲辰", "癸卯"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dateOf(t, tt.civil)
			require.Equal(t, tt.solarYear, d.Year.String())

			c, err := ziwei.Build(d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Year.String())
			// 癸: 破军禄 巨门权 太阴科 贪狼忌.
			assert.Equal(t, ziwei.PoJun, c.Transformations[ziwei.HuaLu].Star)
			assert.Equal(t, ziwei.TanLang, c.Transformations[ziwei.HuaJi].Star)
			assert.Equal(t, calendar.TigerStem(ganzhi.Gui), c.At(ganzhi.Yin.Position()).Stem)
		})
	}
}

func TestBuild_ZiHourRollsLunarDay(t *testing.T) {
	// 23:30 on 除夕 of 壬寅; the ZiHour boundary already counts 正月初一 of 癸卯.
	civil := domain.CivilDateTime{Year: 2023, Month: 1, Day: 21, Hour: 23, Minute: 30}

	midnight, err := ziwei.Build(dateWith(t, civil, domain.Midnight))
	require.NoError(t, err)
	assert.Equal(t, "壬寅", midnight.Year.String())
	assert.Equal(t, 12, midnight.LunarMonth)
	assert.Equal(t, 30, midnight.LunarDay)

	d := dateWith(t, civil, domain.ZiHour)
	assert.Equal(t, 30, d.Lunar.Day, "the displayed lunar date stays civil")
	zi, err := ziwei.Build(d)
	require.NoError(t, err)
	assert.Equal(t, "癸卯", zi.Year.String())
	assert.Equal(t, 1, zi.LunarMonth)
	assert.Equal(t, 1, zi.LunarDay)
}

func TestBuild_Invariants(t *testing.T) {
	start := time.Date(1984, 1, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		at := start.AddDate(0, 0, 11*i).Add(time.Duration(i%24) * time.Hour)
		d := dateOf(t, domain.CivilDateTime{
			Year: at.Year(), Month: int(at.Month()), Day: at.Day(), Hour: at.Hour(), Minute: 30,
		})
		c, err := ziwei.Build(d)
		require.NoError(t, err, at)

		assert.GreaterOrEqual(t, c.Bureau, 2)
		assert.LessOrEqual(t, c.Bureau, 6)
		assert.Equal(t, ziwei.MajorCount, c.MajorCount(), at)

		roles := map[ziwei.Role]bool{}
		bodies := 0
		for _, p := range c.Palaces {
			roles[p.Role] = true
			if p.Body {
				bodies++
			}
		}
		assert.Len(t, roles, 12)
		assert.Equal(t, 1, bodies)

		seen := map[ziwei.Star]bool{}
		for _, tr := range c.Transformations {
			assert.False(t, seen[tr.Star], "star transformed twice on %s", at)
			seen[tr.Star] = true
			marked := false
			p := c.At(tr.Palace)
			for _, list := range [][]ziwei.Placement{p.Major, p.Minor} {
				for _, pl := range list {
					if pl.Star == tr.Star && pl.Transformation != nil && *pl.Transformation == tr.Kind {
						marked = true
					}
				}
			}
			assert.True(t, marked, "%s not marked in palace %d", tr.Star, tr.Palace)
		}
	}
}

func TestZiWeiBranch(t *testing.T) {
	tests := []struct {
		bureau, day int
		want        ganzhi.Branch
	}{
		{2, 1, ganzhi.Chou},
		{2, 6, ganzhi.Chen},
		{3, 1, ganzhi.Chen},
		{4, 1, ganzhi.Hai},
		{5, 1, ganzhi.Wu},
		{6, 1, ganzhi.You},
		{2, 30, ganzhi.Chen},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ziwei.ZiWeiBranch(tt.bureau, tt.day), "bureau %d day %d", tt.bureau, tt.day)
	}
}

func TestTianFuBranch(t *testing.T) {
	assert.Equal(t, ganzhi.Yin, ziwei.TianFuBranch(ganzhi.Yin))
	assert.Equal(t, ganzhi.Shen, ziwei.TianFuBranch(ganzhi.Shen))
	assert.Equal(t, ganzhi.Zi, ziwei.TianFuBranch(ganzhi.Chen))
	assert.Equal(t, ganzhi.Chen, ziwei.TianFuBranch(ganzhi.Zi))
}

func TestDestinyAndBody(t *testing.T) {
	// First month in the 子 hour: both sit in 寅.
	assert.Equal(t, ganzhi.Yin, ziwei.DestinyBranch(1, ganzhi.Zi))
	assert.Equal(t, ganzhi.Yin, ziwei.BodyBranch(1, ganzhi.Zi))
	assert.Equal(t, ganzhi.Shen, ziwei.DestinyBranch(12, ganzhi.Si))
	assert.Equal(t, ganzhi.Wu, ziwei.BodyBranch(12, ganzhi.Si))
}

func TestEffectiveMonth(t *testing.T) {
	assert.Equal(t, 4, ziwei.EffectiveMonth(calendar.LunarDate{Month: 4, Day: 20}))
	assert.Equal(t, 4, ziwei.EffectiveMonth(calendar.LunarDate{Month: 4, Day: 15, Leap: true}))
	assert.Equal(t, 5, ziwei.EffectiveMonth(calendar.LunarDate{Month: 4, Day: 16, Leap: true}))
	assert.Equal(t, 1, ziwei.EffectiveMonth(calendar.LunarDate{Month: 12, Day: 20, Leap: true}))
}

func TestBrightness(t *testing.T) {
	assert.Equal(t, ziwei.Miao, ziwei.BrightnessOf(ziwei.LianZhen, ganzhi.Shen))
	assert.Equal(t, ziwei.Unrated, ziwei.BrightnessOf(ziwei.WenChang, ganzhi.Shen))
	assert.Equal(t, ziwei.Exalted, ziwei.Wang.Grade())
	assert.Equal(t, ziwei.Falling, ziwei.Xian.Grade())
	assert.Equal(t, ziwei.Neutral, ziwei.Ping.Grade())
}
