package ganzhi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigfamingjia/ai-fortune-teller/internal/ganzhi"
)

func TestPillarCycle(t *testing.T) {
	seen := make(map[string]bool, 60)
	for i := range 60 {
		p := ganzhi.PillarAt(i)
		assert.Equal(t, i, p.Index(), p.String())
		assert.Equal(t, int(p.Stem)%2, int(p.Branch)%2, "stem and branch share parity")
		seen[p.String()] = true
	}
	assert.Len(t, seen, 60)

	assert.Equal(t, "甲子", ganzhi.PillarAt(0).String())
	assert.Equal(t, "癸亥", ganzhi.PillarAt(59).String())
	assert.Equal(t, "甲子", ganzhi.PillarAt(60).String())
	assert.Equal(t, "癸亥", ganzhi.PillarAt(-1).String())
	assert.Equal(t, "乙丑", ganzhi.PillarAt(59).Next(2).String())
}

func TestNewPillar(t *testing.T) {
	p, err := ganzhi.NewPillar(ganzhi.Jia, ganzhi.Zi)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Index())

	_, err = ganzhi.NewPillar(ganzhi.Jia, ganzhi.Chou)
	assert.Error(t, err)
	_, err = ganzhi.NewPillar(ganzhi.Stem(10), ganzhi.Zi)
	assert.Error(t, err)
}

func TestNaYin(t *testing.T) {
	tests := []struct {
		pillar  int
		name    string
		element ganzhi.Element
	}{
		{0, "海中金", ganzhi.Metal},
		{1, "海中金", ganzhi.Metal},
		{2, "炉中火", ganzhi.Fire},
		{11, "山头火", ganzhi.Fire}, // 乙亥
		{59, "大海水", ganzhi.Water},
	}
	for _, tt := range tests {
		n := ganzhi.PillarAt(tt.pillar).NaYin()
		assert.Equal(t, tt.name, n.String(), ganzhi.PillarAt(tt.pillar).String())
		assert.Equal(t, tt.element, n.Element)
	}
}

func TestVoid(t *testing.T) {
	tests := []struct {
		pillar string
		want   string
	}{
		{"甲子", "戌亥"},
		{"甲戌", "申酉"},
		{"辛酉", "子丑"},
		{"癸亥", "子丑"},
	}
	for _, tt := range tests {
		var p ganzhi.Pillar
		for i := range 60 {
			if ganzhi.PillarAt(i).String() == tt.pillar {
				p = ganzhi.PillarAt(i)
			}
		}
		v := p.Void()
		assert.Equal(t, tt.want, v[0].String()+v[1].String(), tt.pillar)
	}
}

func TestTenGodOf(t *testing.T) {
	tests := []struct {
		dm, other ganzhi.Stem
		want      ganzhi.TenGod
	}{
		{ganzhi.Jia, ganzhi.Jia, ganzhi.Companion},
		{ganzhi.Jia, ganzhi.Yi, ganzhi.RobWealth},
		{ganzhi.Jia, ganzhi.Bing, ganzhi.EatingGod},
		{ganzhi.Jia, ganzhi.Ding, ganzhi.HurtingOfficer},
		{ganzhi.Jia, ganzhi.Mou, ganzhi.IndirectWealth},
		{ganzhi.Jia, ganzhi.Ji, ganzhi.DirectWealth},
		{ganzhi.Jia, ganzhi.Geng, ganzhi.SevenKillings},
		{ganzhi.Jia, ganzhi.Xin, ganzhi.DirectOfficer},
		{ganzhi.Jia, ganzhi.Ren, ganzhi.IndirectSeal},
		{ganzhi.Jia, ganzhi.Gui, ganzhi.DirectSeal},
		{ganzhi.Xin, ganzhi.Gui, ganzhi.EatingGod},
		{ganzhi.Xin, ganzhi.Bing, ganzhi.DirectOfficer},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ganzhi.TenGodOf(tt.dm, tt.other), "%s→%s", tt.dm, tt.other)
	}
}

func TestElements(t *testing.T) {
	assert.True(t, ganzhi.Wood.Generates(ganzhi.Fire))
	assert.True(t, ganzhi.Water.Generates(ganzhi.Wood))
	assert.True(t, ganzhi.Wood.Controls(ganzhi.Earth))
	assert.True(t, ganzhi.Metal.Controls(ganzhi.Wood))
	assert.False(t, ganzhi.Fire.Controls(ganzhi.Water))

	assert.Equal(t, ganzhi.Water, ganzhi.Zi.Element())
	assert.Equal(t, ganzhi.Earth, ganzhi.Xu.Element())
	assert.Equal(t, ganzhi.Metal, ganzhi.Xin.Element())
}

func TestBranchArithmetic(t *testing.T) {
	assert.Equal(t, ganzhi.Hai, ganzhi.Zi.Add(-1))
	assert.Equal(t, ganzhi.Yin, ganzhi.Zi.Add(14))
	assert.Equal(t, 10, ganzhi.Zi.Sub(ganzhi.Yin))
	assert.Equal(t, 1, ganzhi.Zi.Position())
	assert.Equal(t, ganzhi.Gui, ganzhi.Jia.Add(-1))
}

func TestHiddenStems_MainQi(t *testing.T) {
	for b := ganzhi.Zi; b <= ganzhi.Hai; b++ {
		hs := ganzhi.HiddenStems[b]
		require.NotEmpty(t, hs, b.String())
		assert.Equal(t, b.Element(), hs[0].Element(), "main qi of %s", b)
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		P ganzhi.Pillar
		E ganzhi.Element
		N ganzhi.NaYin
	}{ganzhi.PillarAt(0), ganzhi.Fire, ganzhi.PillarAt(0).NaYin()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"P":"甲子","E":"fire","N":{"name":"海中金","element":"metal"}}`, string(data))
}
