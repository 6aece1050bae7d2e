package gd

import (
	"fmt"

	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/wire"
)

// Level field indexes.
const (
	levelID             = 1
	levelName           = 2
	levelDescription    = 3
	levelData           = 4
	levelVersion        = 5
	levelPlayerID       = 6
	levelDenominator    = 8
	levelNumerator      = 9
	levelDownloads      = 10
	levelOfficialSong   = 12
	levelGameVersion    = 13
	levelLikes          = 14
	levelLength         = 15
	levelDemon          = 17
	levelStars          = 18
	levelFeatureScore   = 19
	levelAuto           = 25
	levelPassword       = 27
	levelUploaded       = 28
	levelUpdated        = 29
	levelCopiedID       = 30
	levelTwoPlayer      = 31
	levelCustomSong     = 35
	levelCoins          = 37
	levelVerifiedCoins  = 38
	levelRequestedStars = 39
	levelLowDetail      = 40
	levelTimelyNumber   = 41
	levelEpic           = 42
	levelDemonTier      = 43
	levelObjects        = 45
)

// Epic is the rating tier above featured.
type Epic int

const (
	EpicNone Epic = iota
	EpicEpic
	EpicLegendary
	EpicMythic
)

// Creator is the user that uploaded a level.
type Creator struct {
	Name      string `json:"name"`
	PlayerID  int    `json:"player_id"`
	AccountID int    `json:"account_id"`
}

// Level is an online level. Data holds the encoded level string and is only
// populated by downloads.
type Level struct {
	ID             int                  `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Version        int                  `json:"version"`
	Creator        Creator              `json:"creator"`
	Difficulty     Difficulty           `json:"difficulty"`
	Downloads      int                  `json:"downloads"`
	Likes          int                  `json:"likes"`
	Length         Length               `json:"length"`
	Stars          int                  `json:"stars"`
	RequestedStars int                  `json:"requested_stars"`
	Coins          int                  `json:"coins"`
	VerifiedCoins  bool                 `json:"verified_coins"`
	FeatureScore   int                  `json:"feature_score"`
	Epic           Epic                 `json:"epic"`
	GameVersion    int                  `json:"game_version"`
	OfficialSong   int                  `json:"official_song"`
	CustomSongID   int                  `json:"custom_song_id,omitempty"`
	Song           *Song                `json:"song,omitempty"`
	Objects        int                  `json:"objects"`
	TwoPlayer      bool                 `json:"two_player"`
	LowDetailMode  bool                 `json:"low_detail_mode"`
	CopiedID       int                  `json:"copied_id,omitempty"`
	Password       robtop.LevelPassword `json:"password"`
	Uploaded       string               `json:"uploaded,omitempty"`
	Updated        string               `json:"updated,omitempty"`
	TimelyNumber   int                  `json:"timely_number,omitempty"`
	Data           string               `json:"-"`
}

// LevelFromMap builds a Level from a ":"-delimited record.
func LevelFromMap(m wire.Map) Level {
	return Level{
		ID:             m.Int(levelID),
		Name:           m.String(levelName),
		Description:    m.Base64(levelDescription),
		Version:        m.Int(levelVersion),
		Creator:        Creator{PlayerID: m.Int(levelPlayerID)},
		Difficulty:     DeriveDifficulty(m.Int(levelNumerator), m.Bool(levelAuto), m.Bool(levelDemon), m.Int(levelDemonTier)),
		Downloads:      m.Int(levelDownloads),
		Likes:          m.Int(levelLikes),
		Length:         Length(m.Int(levelLength)),
		Stars:          m.Int(levelStars),
		RequestedStars: m.Int(levelRequestedStars),
		Coins:          m.Int(levelCoins),
		VerifiedCoins:  m.Bool(levelVerifiedCoins),
		FeatureScore:   m.Int(levelFeatureScore),
		Epic:           Epic(m.Int(levelEpic)),
		GameVersion:    m.Int(levelGameVersion),
		OfficialSong:   m.Int(levelOfficialSong),
		CustomSongID:   m.Int(levelCustomSong),
		Objects:        m.Int(levelObjects),
		TwoPlayer:      m.Bool(levelTwoPlayer),
		LowDetailMode:  m.Bool(levelLowDetail),
		CopiedID:       m.Int(levelCopiedID),
		Password:       robtop.DecodeLevelPassword(m.String(levelPassword)),
		Uploaded:       m.String(levelUploaded),
		Updated:        m.String(levelUpdated),
		TimelyNumber:   m.Int(levelTimelyNumber),
		Data:           m.String(levelData),
	}
}

// IsFeatured reports whether the level has a feature score.
func (l Level) IsFeatured() bool {
	return l.FeatureScore > 0
}

// IsRated reports whether the level awards stars.
func (l Level) IsRated() bool {
	return l.Stars > 0
}

// DecodedData returns the plain object text of the level.
func (l Level) DecodedData() (string, error) {
	if l.Data == "" {
		return "", fmt.Errorf("level %d has no data; download it first", l.ID)
	}
	return robtop.DecodeLevelData(l.Data)
}

// ResolveSong picks the level's soundtrack from the custom songs found in
// the same response, falling back to the official track table.
func (l *Level) ResolveSong(songs map[int]Song) {
	if l.CustomSongID > 0 {
		if song, ok := songs[l.CustomSongID]; ok {
			l.Song = &song
			return
		}
		l.Song = &Song{ID: l.CustomSongID, Custom: true}
		return
	}
	if song, ok := OfficialSong(l.OfficialSong); ok {
		l.Song = &song
	}
}

// SearchPage is one page of level search results.
type SearchPage struct {
	Levels []Level       `json:"levels"`
	Page   wire.PageInfo `json:"page"`
}

// ParseLevelSearch parses a getGJLevels response:
// levels#creators#songs#page#hash.
func ParseLevelSearch(body string) SearchPage {
	sections := wire.Sections(body)
	creators := wire.ParseCreators(wire.Section(sections, 1))
	songs := SongsFromSection(wire.Section(sections, 2))

	records := wire.ParseList(wire.Section(sections, 0), wire.DelimObject)
	levels := make([]Level, 0, len(records))
	for _, m := range records {
		level := LevelFromMap(m)
		if c, ok := creators[level.Creator.PlayerID]; ok {
			level.Creator.Name = c.Name
			level.Creator.AccountID = c.AccountID
		}
		level.ResolveSong(songs)
		levels = append(levels, level)
	}
	return SearchPage{Levels: levels, Page: wire.Page(wire.Section(sections, 3))}
}

// ParseLevelDownload parses a downloadGJLevel response. Its sections are
// level#hash#hash#creator; the creator section is "playerID:name:accountID".
func ParseLevelDownload(body string) Level {
	sections := wire.Sections(body)
	level := LevelFromMap(wire.ParseMap(wire.Section(sections, 0), wire.DelimObject))
	if creator, ok := wire.ParseCreators(wire.Section(sections, 3))[level.Creator.PlayerID]; ok {
		level.Creator.Name = creator.Name
		level.Creator.AccountID = creator.AccountID
	}
	level.ResolveSong(nil)
	return level
}
