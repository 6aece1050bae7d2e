package gd

import "github.com/louisbranch/geometrydash/internal/wire"

// User field indexes.
const (
	userName               = 1
	userPlayerID           = 2
	userStars              = 3
	userDemons             = 4
	userRank               = 6
	userCreatorPoints      = 8
	userIconID             = 9
	userColor1             = 10
	userColor2             = 11
	userSecretCoins        = 13
	userIconType           = 14
	userGlowFlag           = 15
	userAccountID          = 16
	userUserCoins          = 17
	userMessagePolicy      = 18
	userFriendPolicy       = 19
	userYouTube            = 20
	userCube               = 21
	userShip               = 22
	userBall               = 23
	userUFO                = 24
	userWave               = 25
	userRobot              = 26
	userGlow               = 28
	userRegistered         = 29
	userGlobalRank         = 30
	userSpider             = 43
	userTwitter            = 44
	userTwitch             = 45
	userDiamonds           = 46
	userExplosion          = 48
	userModLevel           = 49
	userCommentPolicy      = 50
	userGlowColor          = 51
	userMoons              = 52
	userSwing              = 53
	userFriendRequestCount = 39
	userMessageCount       = 38
)

// IconSet is a user's selected icons and colors.
type IconSet struct {
	Main      int      `json:"main"`
	MainType  IconType `json:"main_type"`
	Cube      int      `json:"cube"`
	Ship      int      `json:"ship"`
	Ball      int      `json:"ball"`
	UFO       int      `json:"ufo"`
	Wave      int      `json:"wave"`
	Robot     int      `json:"robot"`
	Spider    int      `json:"spider"`
	Swing     int      `json:"swing"`
	Explosion int      `json:"explosion"`
	Color1    int      `json:"color_1"`
	Color2    int      `json:"color_2"`
	GlowColor int      `json:"glow_color"`
	Glow      bool     `json:"glow"`
}

// Statistics are a user's profile counters.
type Statistics struct {
	Stars         int `json:"stars"`
	Moons         int `json:"moons"`
	Demons        int `json:"demons"`
	Diamonds      int `json:"diamonds"`
	SecretCoins   int `json:"secret_coins"`
	UserCoins     int `json:"user_coins"`
	CreatorPoints int `json:"creator_points"`
	Rank          int `json:"rank"`
}

// User is a player profile or a user reference embedded in another record.
type User struct {
	Name       string     `json:"name"`
	PlayerID   int        `json:"player_id"`
	AccountID  int        `json:"account_id"`
	Stats      Statistics `json:"stats"`
	Icons      IconSet    `json:"icons"`
	Role       Role       `json:"role"`
	Registered bool       `json:"registered"`

	MessagePolicy        Policy `json:"message_policy"`
	FriendRequestPolicy  Policy `json:"friend_request_policy"`
	CommentHistoryPolicy Policy `json:"comment_history_policy"`

	YouTube string `json:"youtube,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	Twitch  string `json:"twitch,omitempty"`

	// Pending counters only sent for the logged-in account's own profile.
	NewMessages       int `json:"new_messages,omitempty"`
	NewFriendRequests int `json:"new_friend_requests,omitempty"`
}

// UserFromMap builds a User from a ":"-delimited record.
func UserFromMap(m wire.Map) User {
	u := User{
		Name:      m.String(userName),
		PlayerID:  m.Int(userPlayerID),
		AccountID: m.Int(userAccountID),
		Stats: Statistics{
			Stars:         m.Int(userStars),
			Moons:         m.Int(userMoons),
			Demons:        m.Int(userDemons),
			Diamonds:      m.Int(userDiamonds),
			SecretCoins:   m.Int(userSecretCoins),
			UserCoins:     m.Int(userUserCoins),
			CreatorPoints: m.Int(userCreatorPoints),
			Rank:          m.Int(userGlobalRank),
		},
		Icons: IconSet{
			Main:      m.Int(userIconID),
			MainType:  IconType(m.Int(userIconType)),
			Cube:      m.Int(userCube),
			Ship:      m.Int(userShip),
			Ball:      m.Int(userBall),
			UFO:       m.Int(userUFO),
			Wave:      m.Int(userWave),
			Robot:     m.Int(userRobot),
			Spider:    m.Int(userSpider),
			Swing:     m.Int(userSwing),
			Explosion: m.Int(userExplosion),
			Color1:    m.Int(userColor1),
			Color2:    m.Int(userColor2),
			GlowColor: m.Int(userGlowColor),
			Glow:      m.Bool(userGlow) || m.Int(userGlowFlag) > 1,
		},
		Role:                 Role(m.Int(userModLevel)),
		Registered:           m.Bool(userRegistered) || m.Int(userAccountID) > 0,
		MessagePolicy:        Policy(m.Int(userMessagePolicy)),
		CommentHistoryPolicy: Policy(m.Int(userCommentPolicy)),
		YouTube:              m.String(userYouTube),
		Twitter:              m.String(userTwitter),
		Twitch:               m.String(userTwitch),
		NewMessages:          m.Int(userMessageCount),
		NewFriendRequests:    m.Int(userFriendRequestCount),
	}
	if m.Bool(userFriendPolicy) {
		u.FriendRequestPolicy = PolicyClosed
	}
	// Leaderboards put the table position in field 6.
	if u.Stats.Rank == 0 {
		u.Stats.Rank = m.Int(userRank)
	}
	return u
}

// UsersFromList parses "|"-joined user records.
func UsersFromList(s string) []User {
	records := wire.ParseList(s, wire.DelimObject)
	users := make([]User, 0, len(records))
	for _, m := range records {
		users = append(users, UserFromMap(m))
	}
	return users
}

// ProfileURL returns the YouTube channel link when set.
func (u User) ProfileURL() string {
	if u.YouTube == "" {
		return ""
	}
	return "https://www.youtube.com/channel/" + u.YouTube
}
