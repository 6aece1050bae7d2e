package gd

import (
	"strings"

	"github.com/louisbranch/geometrydash/internal/wire"
)

// Level leaderboard field indexes beyond the user fields.
const (
	recordPercent = 3
	recordRank    = 6
	recordCoins   = 13
	recordAge     = 42
)

// LevelRecord is one row of a level's score table.
type LevelRecord struct {
	User    User   `json:"user"`
	Percent int    `json:"percent"`
	Coins   int    `json:"coins"`
	Rank    int    `json:"rank"`
	Age     string `json:"age"`
}

// ParseLevelRecords parses a getGJLevelScores body.
func ParseLevelRecords(body string) []LevelRecord {
	records := wire.ParseList(body, wire.DelimObject)
	out := make([]LevelRecord, 0, len(records))
	for _, m := range records {
		user := UserFromMap(m)
		// Score tables reuse the user star and coin fields for the attempt.
		user.Stats = Statistics{}
		out = append(out, LevelRecord{
			User:    user,
			Percent: m.Int(recordPercent),
			Coins:   m.Int(recordCoins),
			Rank:    m.Int(recordRank),
			Age:     m.String(recordAge),
		})
	}
	return out
}

// Map pack field indexes.
const (
	packID         = 1
	packName       = 2
	packLevels     = 3
	packStars      = 4
	packCoins      = 5
	packDifficulty = 6
	packTextColor  = 7
	packBarColor   = 8
)

// MapPack is a curated set of rated levels.
type MapPack struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	LevelIDs   []int  `json:"level_ids"`
	Stars      int    `json:"stars"`
	Coins      int    `json:"coins"`
	Difficulty int    `json:"difficulty"`
	TextColor  string `json:"text_color"`
	BarColor   string `json:"bar_color"`
}

// MapPackPage is one page of map packs.
type MapPackPage struct {
	Packs []MapPack     `json:"packs"`
	Page  wire.PageInfo `json:"page"`
}

// ParseMapPacks parses a getGJMapPacks body: packs#page#hash.
func ParseMapPacks(body string) MapPackPage {
	sections := wire.Sections(body)
	records := wire.ParseList(wire.Section(sections, 0), wire.DelimObject)
	out := MapPackPage{Packs: make([]MapPack, 0, len(records)), Page: wire.Page(wire.Section(sections, 1))}
	for _, m := range records {
		out.Packs = append(out.Packs, MapPack{
			ID:         m.Int(packID),
			Name:       m.String(packName),
			LevelIDs:   parseIDList(m.String(packLevels)),
			Stars:      m.Int(packStars),
			Coins:      m.Int(packCoins),
			Difficulty: m.Int(packDifficulty),
			TextColor:  m.String(packTextColor),
			BarColor:   m.String(packBarColor),
		})
	}
	return out
}

// Gauntlet is a themed five-level challenge.
type Gauntlet struct {
	ID       int   `json:"id"`
	LevelIDs []int `json:"level_ids"`
}

// ParseGauntlets parses a getGJGauntlets body: gauntlets#hash.
func ParseGauntlets(body string) []Gauntlet {
	records := wire.ParseList(wire.Section(wire.Sections(body), 0), wire.DelimObject)
	out := make([]Gauntlet, 0, len(records))
	for _, m := range records {
		out = append(out, Gauntlet{ID: m.Int(1), LevelIDs: parseIDList(m.String(3))})
	}
	return out
}

// TimelyInfo is the state of the daily or weekly level slot.
type TimelyInfo struct {
	Number      int  `json:"number"`
	SecondsLeft int  `json:"seconds_left"`
	Weekly      bool `json:"weekly"`
}

// ParseTimely parses a getGJDailyLevel body, "number|secondsLeft". Weekly
// numbers are offset by 100000.
func ParseTimely(body string) TimelyInfo {
	number, left, _ := strings.Cut(strings.TrimSpace(body), "|")
	m := wire.Map{1: number, 2: left}
	info := TimelyInfo{Number: m.Int(1), SecondsLeft: m.Int(2)}
	if info.Number >= 100000 {
		info.Number -= 100000
		info.Weekly = true
	}
	return info
}
