package gd

import (
	"fmt"
	"strings"
)

// Difficulty is the displayed difficulty of a level.
type Difficulty int

const (
	DifficultyNA Difficulty = iota
	DifficultyAuto
	DifficultyEasy
	DifficultyNormal
	DifficultyHard
	DifficultyHarder
	DifficultyInsane
	DifficultyEasyDemon
	DifficultyMediumDemon
	DifficultyHardDemon
	DifficultyInsaneDemon
	DifficultyExtremeDemon
)

var difficultyNames = map[Difficulty]string{
	DifficultyNA:           "na",
	DifficultyAuto:         "auto",
	DifficultyEasy:         "easy",
	DifficultyNormal:       "normal",
	DifficultyHard:         "hard",
	DifficultyHarder:       "harder",
	DifficultyInsane:       "insane",
	DifficultyEasyDemon:    "easy_demon",
	DifficultyMediumDemon:  "medium_demon",
	DifficultyHardDemon:    "hard_demon",
	DifficultyInsaneDemon:  "insane_demon",
	DifficultyExtremeDemon: "extreme_demon",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// MarshalText renders the difficulty name in JSON.
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := parseName(text, "difficulty", DifficultyNA, DifficultyExtremeDemon)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// parseName finds the value in [lo, hi] whose String is text.
func parseName[T interface {
	~int
	fmt.Stringer
}](text []byte, kind string, lo, hi T) (T, error) {
	name := string(text)
	for v := lo; v <= hi; v++ {
		if v.String() == name {
			return v, nil
		}
	}
	return lo, fmt.Errorf("unknown %s %q", kind, name)
}

// IsDemon reports whether d is one of the demon tiers.
func (d Difficulty) IsDemon() bool {
	return d >= DifficultyEasyDemon
}

// demonByField maps field 43 of a level to a demon tier.
var demonByField = map[int]Difficulty{
	3: DifficultyEasyDemon,
	4: DifficultyMediumDemon,
	0: DifficultyHardDemon,
	5: DifficultyInsaneDemon,
	6: DifficultyExtremeDemon,
}

// DeriveDifficulty computes the difficulty from level fields: the auto and
// demon flags, the numerator (field 9, a multiple of ten) and the demon tier
// (field 43).
func DeriveDifficulty(numerator int, auto, demon bool, demonTier int) Difficulty {
	switch {
	case auto:
		return DifficultyAuto
	case demon:
		if d, ok := demonByField[demonTier]; ok {
			return d
		}
		return DifficultyHardDemon
	}
	switch numerator / 10 {
	case 1:
		return DifficultyEasy
	case 2:
		return DifficultyNormal
	case 3:
		return DifficultyHard
	case 4:
		return DifficultyHarder
	case 5:
		return DifficultyInsane
	}
	return DifficultyNA
}

// Length is the level length bucket.
type Length int

const (
	LengthTiny Length = iota
	LengthShort
	LengthMedium
	LengthLong
	LengthXL
	LengthPlatformer
)

func (l Length) String() string {
	switch l {
	case LengthTiny:
		return "tiny"
	case LengthShort:
		return "short"
	case LengthMedium:
		return "medium"
	case LengthLong:
		return "long"
	case LengthXL:
		return "xl"
	case LengthPlatformer:
		return "platformer"
	}
	return fmt.Sprintf("Length(%d)", int(l))
}

// MarshalText renders the length name in JSON.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (l *Length) UnmarshalText(text []byte) error {
	v, err := parseName(text, "length", LengthTiny, LengthPlatformer)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Role is a user's moderation badge.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleElderModerator
)

func (r Role) String() string {
	switch r {
	case RoleModerator:
		return "moderator"
	case RoleElderModerator:
		return "elder_moderator"
	}
	return "user"
}

// MarshalText renders the role name in JSON.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (r *Role) UnmarshalText(text []byte) error {
	v, err := parseName(text, "role", RoleUser, RoleElderModerator)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Policy is a per-user privacy setting (messages, friend requests, comment
// history). Values follow the server encoding.
type Policy int

const (
	PolicyOpen Policy = iota
	PolicyFriendsOnly
	PolicyClosed
)

func (p Policy) String() string {
	switch p {
	case PolicyFriendsOnly:
		return "friends_only"
	case PolicyClosed:
		return "closed"
	}
	return "open"
}

// MarshalText renders the policy name in JSON.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := parseName(text, "policy", PolicyOpen, PolicyClosed)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// IconType is the form shown next to a user's name.
type IconType int

const (
	IconCube IconType = iota
	IconShip
	IconBall
	IconUFO
	IconWave
	IconRobot
	IconSpider
	IconSwing
)

// LeaderboardStrategy selects a global leaderboard.
type LeaderboardStrategy string

const (
	LeaderboardTop      LeaderboardStrategy = "top"
	LeaderboardFriends  LeaderboardStrategy = "friends"
	LeaderboardRelative LeaderboardStrategy = "relative"
	LeaderboardCreators LeaderboardStrategy = "creators"
)

// ParseLeaderboardStrategy validates s, defaulting to top.
func ParseLeaderboardStrategy(s string) (LeaderboardStrategy, error) {
	switch LeaderboardStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LeaderboardTop:
		return LeaderboardTop, nil
	case LeaderboardFriends:
		return LeaderboardFriends, nil
	case LeaderboardRelative:
		return LeaderboardRelative, nil
	case LeaderboardCreators:
		return LeaderboardCreators, nil
	}
	return "", fmt.Errorf("unknown leaderboard strategy %q", s)
}

// LevelLeaderboardStrategy selects a level's score table. Values are the
// server's "type" parameter.
type LevelLeaderboardStrategy int

const (
	LevelLeaderboardFriends LevelLeaderboardStrategy = iota
	LevelLeaderboardTop
	LevelLeaderboardWeekly
)

// CommentStrategy orders level comments. Values are the "mode" parameter.
type CommentStrategy int

const (
	CommentsRecent CommentStrategy = iota
	CommentsMostLiked
)

// ParseCommentStrategy accepts "recent" or "liked", defaulting to recent.
func ParseCommentStrategy(s string) (CommentStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recent":
		return CommentsRecent, nil
	case "liked", "most_liked":
		return CommentsMostLiked, nil
	}
	return 0, fmt.Errorf("unknown comment strategy %q", s)
}

// SearchStrategy is the "type" parameter of level searches.
type SearchStrategy int

const (
	SearchRegular        SearchStrategy = 0
	SearchMostDownloaded SearchStrategy = 1
	SearchMostLiked      SearchStrategy = 2
	SearchTrending       SearchStrategy = 3
	SearchRecent         SearchStrategy = 4
	SearchUser           SearchStrategy = 5
	SearchFeatured       SearchStrategy = 6
	SearchMagic          SearchStrategy = 7
	SearchSent           SearchStrategy = 8
	SearchAwarded        SearchStrategy = 11
	SearchFollowed       SearchStrategy = 12
	SearchFriends        SearchStrategy = 13
	SearchHallOfFame     SearchStrategy = 16
)

var searchStrategies = map[string]SearchStrategy{
	"regular":         SearchRegular,
	"most_downloaded": SearchMostDownloaded,
	"most_liked":      SearchMostLiked,
	"trending":        SearchTrending,
	"recent":          SearchRecent,
	"user":            SearchUser,
	"featured":        SearchFeatured,
	"magic":           SearchMagic,
	"sent":            SearchSent,
	"awarded":         SearchAwarded,
	"followed":        SearchFollowed,
	"friends":         SearchFriends,
	"hall_of_fame":    SearchHallOfFame,
}

// ParseSearchStrategy maps a strategy name to its value, defaulting to
// regular.
func ParseSearchStrategy(s string) (SearchStrategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SearchRegular, nil
	}
	if v, ok := searchStrategies[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown search strategy %q", s)
}

// ItemType is the "type" parameter of like requests.
type ItemType int

const (
	ItemLevel          ItemType = 1
	ItemLevelComment   ItemType = 2
	ItemProfileComment ItemType = 3
)
