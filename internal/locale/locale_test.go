package locale_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigfamingjia/ai-fortune-teller/internal/astro"
	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
	"github.com/bigfamingjia/ai-fortune-teller/internal/locale"
	"github.com/bigfamingjia/ai-fortune-teller/internal/ziwei"
)

var uiKeys = []string{
	config.TKeyTitleBazi, config.TKeyTitleZiwei, config.TKeyTitleQimen,
	config.TKeyTitleAlmanac, config.TKeyTitleMoment, config.TKeyTitleLuck,
	config.TKeyColPillar, config.TKeyColYear, config.TKeyColMonth, config.TKeyColDay,
	config.TKeyColHour, config.TKeyColNaYin, config.TKeyColTenGod, config.TKeyColHidden,
	config.TKeyColPalace, config.TKeyColBranch, config.TKeyColMajor, config.TKeyColMinor,
	config.TKeyColNumber, config.TKeyColStems, config.TKeyColStar, config.TKeyColDoor,
	config.TKeyColDeity, config.TKeyColAge, config.TKeyColYears, config.TKeyColItem,
	config.TKeyColValue,
	config.TKeyLblCivil, config.TKeyLblSolar, config.TKeyLblShift, config.TKeyLblLunar,
	config.TKeyLblDM, config.TKeyLblVoid, config.TKeyLblLuck, config.TKeyLblBureau,
	config.TKeyLblBody, config.TKeyLblDun, config.TKeyLblDuty, config.TKeyLblOfficer,
	config.TKeyLblMansion, config.TKeyLblJoy, config.TKeyLblWealth, config.TKeyLblFortune,
	config.TKeyLblPengZu, config.TKeyLblClash, config.TKeyDirFwd, config.TKeyDirBwd,
	config.TKeyEvtTerm, config.TKeyEvtLuck, config.TKeyCalTerms, config.TKeyCalLuck,
	config.TKeyLuckStartAt, config.TKeyLblYi, config.TKeyLblJi,
}

func readLocale(t *testing.T, lang string) map[string]any {
	t.Helper()
	content, err := os.ReadFile("locales/active." + lang + ".json")
	require.NoError(t, err, "Must load active.%s.json", lang)
	var m map[string]any
	require.NoError(t, json.Unmarshal(content, &m), "JSON must be valid")
	return m
}

// TestI18nIntegrity ensures every translation key defined in config.go
// exists in each locale file.
func TestI18nIntegrity(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			m := readLocale(t, lang)
			for _, k := range uiKeys {
				_, ok := m[k]
				assert.Truef(t, ok, "Key '%s' defined in config.go is missing in active.%s.json", k, lang)
			}
		})
	}
}

// TestEnglishNames checks that every enumerated name has an English entry.
func TestEnglishNames(t *testing.T) {
	m := readLocale(t, "en")
	check := func(kind string, n locale.Named) {
		key := kind + "_" + n.Key()
		_, ok := m[key]
		assert.Truef(t, ok, "Missing English name %s", key)
	}
	for i := 0; i < 24; i++ {
		check(config.NameTerm, astro.TermOf(i))
	}
	for s := ziwei.ZiWei; s <= ziwei.TianMa; s++ {
		check(config.NameStar, s)
	}
	for r := ziwei.Destiny; r <= ziwei.Parents; r++ {
		check(config.NamePalace, r)
	}
	for h := ziwei.HuaLu; h <= ziwei.HuaJi; h++ {
		check(config.NameHua, h)
	}
	for e := ganzhi.Wood; e <= ganzhi.Water; e++ {
		check(config.NameElement, e)
	}
}

func TestLanguages(t *testing.T) {
	assert.ElementsMatch(t, config.SupportedLanguages, locale.Languages())
}

func TestNew_Unsupported(t *testing.T) {
	_, err := locale.New("fr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrLangUnsupported)

	_, err = locale.New("not a tag")
	assert.Error(t, err)
}

func TestTranslator_Msg(t *testing.T) {
	zh, err := locale.New("zh")
	require.NoError(t, err)
	en, err := locale.New("en")
	require.NoError(t, err)

	assert.Equal(t, "四柱八字", zh.Msg(config.TKeyTitleBazi))
	assert.Equal(t, "Four Pillars", en.Msg(config.TKeyTitleBazi))
	assert.Equal(t, "no_such_key", en.Msg("no_such_key"), "Missing keys come back verbatim")
}

func TestTranslator_Fmt(t *testing.T) {
	en, err := locale.New("en")
	require.NoError(t, err)

	got := en.Fmt(config.TKeyCalTerms, map[string]any{"Year": 2024})
	assert.Equal(t, "Solar terms 2024", got)
}

func TestTranslator_Name(t *testing.T) {
	zh, err := locale.New("zh")
	require.NoError(t, err)
	en, err := locale.New("en")
	require.NoError(t, err)

	assert.Equal(t, "立春", zh.Name(config.NameTerm, astro.StartOfSpring), "Chinese falls back to the native name")
	assert.Equal(t, "Start of Spring", en.Name(config.NameTerm, astro.StartOfSpring))
	assert.Equal(t, "Destiny", en.Name(config.NamePalace, ziwei.Destiny))

	// Stems have no English entry and keep their glyph.
	assert.Equal(t, "甲", en.Name("stem", ganzhi.Jia))
}
