package clock

import (
	"fmt"
	"strings"
)

// Preset names a built-in time control.
type Preset string

const (
	PresetNone                    Preset = "CLK_NONE"
	PresetWorldChampionshipMatch  Preset = "CLK_40_100_20_50_15_30_1"
	PresetWorldCup                Preset = "CLK_40_90_30_30_1"
	PresetClassic                 Preset = "CLK_G90_30_1"
	PresetClassicXLIncremented    Preset = "CLK_40_120_20_60_15_30"
	PresetClassicXL               Preset = "CLK_40_120_20_60_30"
	PresetClassicLPlus            Preset = "CLK_40_120_60"
	PresetClassicL                Preset = "CLK_40_120_30"
	PresetRapid                   Preset = "CLK_G60"
	PresetRapidFastIncremented    Preset = "CLK_G25_10"
	PresetRapidFast               Preset = "CLK_G25"
	PresetWorldRapidChampionships Preset = "CLK_G15_10"
	PresetWorldRapidPlus5         Preset = "CLK_G15_5"
	PresetBlitz                   Preset = "CLK_G5"
	PresetBlitzPlus3              Preset = "CLK_G5_3"
	PresetBlitzPlus2              Preset = "CLK_G5_2"
	PresetWorldBlitzChampionships Preset = "CLK_G3_2"
	PresetBullet                  Preset = "CLK_G2_1"
	PresetSpeedingBullet          Preset = "CLK_G1"
)

// stageSpec holds times in seconds.
type stageSpec struct {
	start, end       int
	limit            int
	delay, increment int
	moveOne          bool
}

type presetDef struct {
	name        string
	description string
	stages      []stageSpec
}

// presetOrder is the order presets are offered in.
var presetOrder = []Preset{
	PresetNone,
	PresetWorldChampionshipMatch,
	PresetWorldCup,
	PresetClassic,
	PresetClassicXLIncremented,
	PresetClassicXL,
	PresetClassicLPlus,
	PresetClassicL,
	PresetRapid,
	PresetRapidFastIncremented,
	PresetRapidFast,
	PresetWorldRapidChampionships,
	PresetWorldRapidPlus5,
	PresetBlitz,
	PresetBlitzPlus3,
	PresetBlitzPlus2,
	PresetWorldBlitzChampionships,
	PresetBullet,
	PresetSpeedingBullet,
}

var presets = map[Preset]presetDef{
	PresetNone: {"Leisure", "No clock", nil},
	PresetWorldChampionshipMatch: {"World Championship Match",
		"40 moves in 100 minutes, 20 moves in 50 minutes, 15 minutes, 30 seconds per move from move 1",
		[]stageSpec{
			{0, 40, 6000, 0, 30, true},
			{41, 60, 3000, 0, 30, true},
			{61, EndOfGame, 900, 0, 30, true},
		}},
	PresetWorldCup: {"World Cup",
		"40 moves in 90 minutes, 30 minutes, 30 seconds per move from move 1",
		[]stageSpec{
			{0, 40, 5400, 0, 30, true},
			{41, EndOfGame, 1800, 0, 30, true},
		}},
	PresetClassic: {"Classic",
		"Game in 90 minutes, 30 seconds per move from move 1",
		[]stageSpec{{0, EndOfGame, 5400, 0, 30, true}}},
	PresetClassicXLIncremented: {"Classic XL Incremented",
		"40 moves in 120 minutes, 20 moves in 60 minutes, 15 minutes, 30 seconds per move from move 61",
		[]stageSpec{
			{0, 40, 7200, 0, 0, false},
			{41, 60, 3600, 0, 0, false},
			{61, EndOfGame, 900, 0, 30, false},
		}},
	PresetClassicXL: {"Classic XL",
		"40 moves in 120 minutes, 20 moves in 60 minutes, 30 minutes",
		[]stageSpec{
			{0, 40, 7200, 0, 0, false},
			{41, 60, 3600, 0, 0, false},
			{61, EndOfGame, 1800, 0, 0, false},
		}},
	PresetClassicLPlus: {"Classic L+",
		"40 moves in 120 minutes, 60 minutes",
		[]stageSpec{
			{0, 40, 7200, 0, 0, false},
			{41, EndOfGame, 3600, 0, 0, false},
		}},
	PresetClassicL: {"Classic L",
		"40 moves in 120 minutes, 30 minutes",
		[]stageSpec{
			{0, 40, 7200, 0, 0, false},
			{41, EndOfGame, 1800, 0, 0, false},
		}},
	PresetRapid: {"Rapid", "Game in 60 minutes",
		[]stageSpec{{0, EndOfGame, 3600, 0, 0, false}}},
	PresetRapidFastIncremented: {"Rapid Fast Incremented", "Game in 25 minutes, 10 seconds per move from move 1",
		[]stageSpec{{0, EndOfGame, 1500, 0, 10, true}}},
	PresetRapidFast: {"Rapid Fast", "Game in 25 minutes",
		[]stageSpec{{0, EndOfGame, 1500, 0, 0, false}}},
	PresetWorldRapidChampionships: {"World Rapid Championships", "Game in 15 minutes, 10 seconds per move from move 1",
		[]stageSpec{{0, EndOfGame, 900, 0, 10, true}}},
	PresetWorldRapidPlus5: {"World Rapid +5", "Game in 15 minutes, 5 seconds per move from move 1",
		[]stageSpec{{0, EndOfGame, 900, 0, 5, true}}},
	PresetBlitz: {"Blitz", "Game in 5 minutes",
		[]stageSpec{{0, EndOfGame, 300, 0, 0, false}}},
	PresetBlitzPlus3: {"Blitz +3", "Game in 5 minutes, 3 seconds per move from move 1",
		[]stageSpec{{0, EndOfGame, 300, 0, 3, true}}},
	PresetBlitzPlus2: {"Blitz +2", "Game in 5 minutes, 2 seconds per move from move 1",
		[]stageSpec{{0, EndOfGame, 300, 0, 2, true}}},
	PresetWorldBlitzChampionships: {"World Blitz Championships", "Game in 3 minutes, 2 seconds per move from move 1",
		[]stageSpec{{0, EndOfGame, 180, 0, 2, true}}},
	PresetBullet: {"Bullet", "Game in 2 minutes, 1 second per move from move 1",
		[]stageSpec{{0, EndOfGame, 120, 0, 1, true}}},
	PresetSpeedingBullet: {"Speeding Bullet", "Game in 1 minute",
		[]stageSpec{{0, EndOfGame, 60, 0, 0, false}}},
}

// PresetInfo describes a preset for menus and the HTTP API.
type PresetInfo struct {
	ID          Preset `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Stages      int    `json:"stages"`
}

// Presets lists every preset in menu order.
func Presets() []PresetInfo {
	out := make([]PresetInfo, 0, len(presetOrder))
	for _, p := range presetOrder {
		def := presets[p]
		out = append(out, PresetInfo{ID: p, Name: def.name, Description: def.description, Stages: len(def.stages)})
	}
	return out
}

// ParsePreset accepts a preset ID such as "CLK_G5" or its display name such
// as "Blitz", case-insensitively. The empty string means no clock.
func ParsePreset(s string) (Preset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PresetNone, nil
	}
	for _, p := range presetOrder {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, presets[p].name) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

func (p Preset) String() string {
	if def, ok := presets[p]; ok {
		return def.name
	}
	return string(p)
}
