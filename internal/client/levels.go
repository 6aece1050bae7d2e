package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/geometrydash/internal/gd"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/wire"
)

// Special level IDs accepted by the download endpoint.
const (
	dailyLevelID  = -1
	weeklyLevelID = -2
)

// GetLevel downloads a level including its data.
func (c *Client) GetLevel(ctx context.Context, id int) (gd.Level, error) {
	form := c.newForm()
	form.Set("levelID", strconv.Itoa(id))
	if id < 0 {
		if session, ok := c.Session(); ok {
			form.Set("accountID", strconv.Itoa(session.AccountID))
			form.Set("gjp", session.GJP())
		}
	}
	body, err := c.do(ctx, request{endpoint: "downloadGJLevel22.php", form: form, sentinels: notFoundSentinels})
	if err != nil {
		return gd.Level{}, err
	}
	return gd.ParseLevelDownload(body), nil
}

// GetTimelyInfo reports the current daily or weekly slot.
func (c *Client) GetTimelyInfo(ctx context.Context, weekly bool) (gd.TimelyInfo, error) {
	form := c.newForm()
	form.Set("weekly", boolParam(weekly))
	body, err := c.do(ctx, request{endpoint: "getGJDailyLevel.php", form: form, sentinels: notFoundSentinels})
	if err != nil {
		return gd.TimelyInfo{}, err
	}
	info := gd.ParseTimely(body)
	info.Weekly = weekly
	return info, nil
}

// GetDaily downloads the current daily level.
func (c *Client) GetDaily(ctx context.Context) (gd.Level, error) {
	return c.getTimely(ctx, false)
}

// GetWeekly downloads the current weekly demon.
func (c *Client) GetWeekly(ctx context.Context) (gd.Level, error) {
	return c.getTimely(ctx, true)
}

func (c *Client) getTimely(ctx context.Context, weekly bool) (gd.Level, error) {
	info, err := c.GetTimelyInfo(ctx, weekly)
	if err != nil {
		return gd.Level{}, err
	}
	id := dailyLevelID
	if weekly {
		id = weeklyLevelID
	}
	level, err := c.GetLevel(ctx, id)
	if err != nil {
		return gd.Level{}, err
	}
	if level.TimelyNumber == 0 {
		level.TimelyNumber = info.Number
	}
	return level, nil
}

// SearchFilters narrows a level search.
type SearchFilters struct {
	Strategy gd.SearchStrategy
	Query    string
	Page     int

	Difficulties []gd.Difficulty
	Lengths      []gd.Length

	Uncompleted bool
	Featured    bool
	Original    bool
	TwoPlayer   bool
	Coins       bool
	Epic        bool
	Rated       bool
	NotRated    bool

	// SongID selects an official track, CustomSongID a Newgrounds song.
	SongID       int
	CustomSongID int

	// Followed lists account IDs for the followed strategy.
	Followed []int
}

var demonFilters = map[gd.Difficulty]int{
	gd.DifficultyEasyDemon:    1,
	gd.DifficultyMediumDemon:  2,
	gd.DifficultyHardDemon:    3,
	gd.DifficultyInsaneDemon:  4,
	gd.DifficultyExtremeDemon: 5,
}

// searchParams encodes filters as form parameters.
func searchParams(f SearchFilters) map[string]string {
	values := map[string]string{
		"type":  strconv.Itoa(int(f.Strategy)),
		"str":   f.Query,
		"page":  strconv.Itoa(f.Page),
		"total": "0",
		"len":   "-",
		"diff":  "-",
	}
	if len(f.Lengths) > 0 {
		parts := make([]string, 0, len(f.Lengths))
		for _, l := range f.Lengths {
			parts = append(parts, strconv.Itoa(int(l)))
		}
		values["len"] = strings.Join(parts, ",")
	}
	if len(f.Difficulties) > 0 {
		var parts []string
		for _, d := range f.Difficulties {
			switch {
			case d.IsDemon():
				values["diff"] = "-2"
				values["demonFilter"] = strconv.Itoa(demonFilters[d])
			case d == gd.DifficultyNA:
				parts = append(parts, "-1")
			case d == gd.DifficultyAuto:
				parts = append(parts, "-3")
			default:
				parts = append(parts, strconv.Itoa(int(d)-int(gd.DifficultyAuto)))
			}
		}
		if values["diff"] != "-2" && len(parts) > 0 {
			values["diff"] = strings.Join(parts, ",")
		}
	}
	flags := map[string]bool{
		"uncompleted": f.Uncompleted,
		"featured":    f.Featured,
		"original":    f.Original,
		"twoPlayer":   f.TwoPlayer,
		"coins":       f.Coins,
		"epic":        f.Epic,
		"star":        f.Rated,
		"noStar":      f.NotRated,
	}
	for key, set := range flags {
		if set {
			values[key] = "1"
		}
	}
	switch {
	case f.CustomSongID > 0:
		values["song"] = strconv.Itoa(f.CustomSongID)
		values["customSong"] = "1"
	case f.SongID > 0:
		values["song"] = strconv.Itoa(f.SongID)
	}
	if len(f.Followed) > 0 {
		ids := make([]string, 0, len(f.Followed))
		for _, id := range f.Followed {
			ids = append(ids, strconv.Itoa(id))
		}
		values["followed"] = strings.Join(ids, ",")
	}
	return values
}

// SearchLevels runs a level search.
func (c *Client) SearchLevels(ctx context.Context, filters SearchFilters) (gd.SearchPage, error) {
	form := c.newForm()
	if filters.Strategy == gd.SearchFriends {
		var err error
		form, _, err = c.authForm()
		if err != nil {
			return gd.SearchPage{}, err
		}
	}
	for key, value := range searchParams(filters) {
		form.Set(key, value)
	}
	body, err := c.do(ctx, request{endpoint: "getGJLevels21.php", form: form, sentinels: notFoundSentinels})
	if err != nil {
		return gd.SearchPage{}, err
	}
	return gd.ParseLevelSearch(body), nil
}

// GetUserLevels lists levels uploaded by a player.
func (c *Client) GetUserLevels(ctx context.Context, playerID, page int) (gd.SearchPage, error) {
	return c.SearchLevels(ctx, SearchFilters{Strategy: gd.SearchUser, Query: strconv.Itoa(playerID), Page: page})
}

// GetSong looks up a custom song in the game's song database.
func (c *Client) GetSong(ctx context.Context, id int) (gd.Song, error) {
	form := c.newForm()
	form.Set("songID", strconv.Itoa(id))
	body, err := c.do(ctx, request{
		endpoint: "getGJSongInfo.php",
		form:     form,
		sentinels: wire.SentinelTable{
			-1: apperrors.CodeNothingFound,
			-2: apperrors.CodeMissingAccess,
		},
	})
	if err != nil {
		return gd.Song{}, err
	}
	return gd.SongFromMap(wire.ParseMap(body, wire.DelimSong)), nil
}

// GetMapPacks lists one page of map packs.
func (c *Client) GetMapPacks(ctx context.Context, page int) (gd.MapPackPage, error) {
	form := c.newForm()
	form.Set("page", strconv.Itoa(page))
	body, err := c.do(ctx, request{endpoint: "getGJMapPacks21.php", form: form, sentinels: notFoundSentinels})
	if err != nil {
		return gd.MapPackPage{}, err
	}
	return gd.ParseMapPacks(body), nil
}

// GetGauntlets lists every gauntlet.
func (c *Client) GetGauntlets(ctx context.Context) ([]gd.Gauntlet, error) {
	body, err := c.do(ctx, request{endpoint: "getGJGauntlets21.php", sentinels: notFoundSentinels})
	if err != nil {
		return nil, err
	}
	return gd.ParseGauntlets(body), nil
}

// GetLevelLeaderboard loads a level's score table for the logged-in
// account.
func (c *Client) GetLevelLeaderboard(ctx context.Context, levelID int, strategy gd.LevelLeaderboardStrategy) ([]gd.LevelRecord, error) {
	form, session, err := c.authForm()
	if err != nil {
		return nil, err
	}
	form.Set("levelID", strconv.Itoa(levelID))
	form.Set("type", strconv.Itoa(int(strategy)))
	form.Set("percent", "0")
	form.Set("s1", "0")
	form.Set("s2", "0")
	form.Set("s3", "0")
	form.Set("s9", "0")
	form.Set("udid", c.udid)
	form.Set("uuid", strconv.Itoa(session.PlayerID))
	form.Set("chk", robtop.CHK([]any{session.AccountID, levelID, 0, 0, 0, 0}, robtop.KeyLevelLeaderboard, robtop.SaltLevelLeaderboard))
	body, err := c.do(ctx, request{endpoint: "getGJLevelScores211.php", form: form, sentinels: notFoundSentinels})
	if err != nil {
		return nil, err
	}
	return gd.ParseLevelRecords(body), nil
}

// UploadRequest describes a level upload.
type UploadRequest struct {
	// ID is zero for new levels and the existing ID for updates.
	ID             int
	Name           string
	Description    string
	Version        int
	Length         gd.Length
	OfficialSong   int
	CustomSongID   int
	Password       robtop.LevelPassword
	Original       int
	TwoPlayer      bool
	Objects        int
	Coins          int
	RequestedStars int
	Unlisted       bool
	LowDetailMode  bool
	// Data is plain or encoded level text.
	Data string
}

// UploadLevel uploads or updates a level and returns its ID.
func (c *Client) UploadLevel(ctx context.Context, up UploadRequest) (int, error) {
	form, session, err := c.authForm()
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(up.Name) == "" {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, "level name is required")
	}
	data := up.Data
	if robtop.IsPlainLevelData(data) {
		if data, err = robtop.EncodeLevelData(data); err != nil {
			return 0, err
		}
	}
	if up.Version <= 0 {
		up.Version = 1
	}
	form.Set("userName", session.Name)
	form.Set("levelID", strconv.Itoa(up.ID))
	form.Set("levelName", up.Name)
	form.Set("levelDesc", robtop.EncodeBase64String(up.Description))
	form.Set("levelVersion", strconv.Itoa(up.Version))
	form.Set("levelLength", strconv.Itoa(int(up.Length)))
	form.Set("audioTrack", strconv.Itoa(up.OfficialSong))
	form.Set("songID", strconv.Itoa(up.CustomSongID))
	form.Set("auto", "0")
	form.Set("password", robtop.EncodeLevelPassword(up.Password))
	form.Set("original", strconv.Itoa(up.Original))
	form.Set("twoPlayer", boolParam(up.TwoPlayer))
	form.Set("objects", strconv.Itoa(up.Objects))
	form.Set("coins", strconv.Itoa(up.Coins))
	form.Set("requestedStars", strconv.Itoa(up.RequestedStars))
	form.Set("unlisted", boolParam(up.Unlisted))
	form.Set("ldm", boolParam(up.LowDetailMode))
	form.Set("levelString", data)
	form.Set("seed", robtop.RandomString(10))
	form.Set("seed2", robtop.LevelSeed(data))
	form.Set("udid", c.udid)
	body, err := c.do(ctx, request{endpoint: "uploadGJLevel21.php", form: form, sentinels: wire.SentinelTable{-1: apperrors.CodeMissingAccess}})
	if err != nil {
		return 0, err
	}
	return expectID("uploadGJLevel21.php", body)
}

// DeleteLevel removes one of the logged-in account's levels.
func (c *Client) DeleteLevel(ctx context.Context, levelID int) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("levelID", strconv.Itoa(levelID))
	body, err := c.do(ctx, request{endpoint: "deleteGJLevelUser20.php", secret: secretLevel, form: form, sentinels: wire.SentinelTable{-1: apperrors.CodeMissingAccess}})
	if err != nil {
		return err
	}
	return expectOK("deleteGJLevelUser20.php", body)
}

// UpdateLevelDescription replaces a level's description.
func (c *Client) UpdateLevelDescription(ctx context.Context, levelID int, description string) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("levelID", strconv.Itoa(levelID))
	form.Set("levelDesc", robtop.EncodeBase64String(description))
	body, err := c.do(ctx, request{endpoint: "updateGJDesc20.php", form: form, sentinels: wire.SentinelTable{-1: apperrors.CodeMissingAccess}})
	if err != nil {
		return err
	}
	return expectOK("updateGJDesc20.php", body)
}

// Like likes (or dislikes) a level or comment. levelID is only used for
// level comments.
func (c *Client) Like(ctx context.Context, item gd.ItemType, itemID, levelID int, like bool) error {
	form, session, err := c.authForm()
	if err != nil {
		return err
	}
	special := 0
	if item == gd.ItemLevelComment {
		special = levelID
	}
	rs := robtop.RandomString(10)
	form.Set("itemID", strconv.Itoa(itemID))
	form.Set("type", strconv.Itoa(int(item)))
	form.Set("like", boolParam(like))
	form.Set("special", strconv.Itoa(special))
	form.Set("rs", rs)
	form.Set("udid", c.udid)
	form.Set("uuid", strconv.Itoa(session.PlayerID))
	form.Set("chk", robtop.CHK([]any{special, itemID, like, int(item), rs, session.AccountID, c.udid, session.PlayerID}, robtop.KeyLikeRate, robtop.SaltLikeRate))
	body, err := c.do(ctx, request{endpoint: "likeGJItem211.php", form: form, sentinels: wire.SentinelTable{-1: apperrors.CodeMissingAccess}})
	if err != nil {
		return err
	}
	return expectOK("likeGJItem211.php", body)
}

// RateLevel sends a star suggestion.
func (c *Client) RateLevel(ctx context.Context, levelID, stars int) error {
	form, session, err := c.authForm()
	if err != nil {
		return err
	}
	if stars < 1 || stars > 10 {
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("stars must be between 1 and 10, got %d", stars))
	}
	rs := robtop.RandomString(10)
	form.Set("levelID", strconv.Itoa(levelID))
	form.Set("stars", strconv.Itoa(stars))
	form.Set("rs", rs)
	form.Set("udid", c.udid)
	form.Set("uuid", strconv.Itoa(session.PlayerID))
	form.Set("chk", robtop.CHK([]any{levelID, stars, rs, session.AccountID, c.udid, session.PlayerID}, robtop.KeyLikeRate, robtop.SaltLikeRate))
	body, err := c.do(ctx, request{endpoint: "rateGJStars211.php", form: form, sentinels: wire.SentinelTable{-1: apperrors.CodeMissingAccess}})
	if err != nil {
		return err
	}
	return expectOK("rateGJStars211.php", body)
}

func boolParam(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
