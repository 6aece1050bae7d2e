package client

import (
	"context"
	"strconv"

	"github.com/louisbranch/geometrydash/internal/gd"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/wire"
)

var notFoundSentinels = wire.SentinelTable{-1: apperrors.CodeNothingFound}

// GetUser loads a full profile by account ID.
func (c *Client) GetUser(ctx context.Context, accountID int) (gd.User, error) {
	form := c.newForm()
	if session, ok := c.Session(); ok {
		form.Set("accountID", strconv.Itoa(session.AccountID))
		form.Set("gjp", session.GJP())
	}
	form.Set("targetAccountID", strconv.Itoa(accountID))
	body, err := c.do(ctx, request{endpoint: "getGJUserInfo20.php", form: form, sentinels: notFoundSentinels})
	if err != nil {
		return gd.User{}, err
	}
	return gd.UserFromMap(wire.ParseMap(body, wire.DelimObject)), nil
}

// UserPage is one page of user search results.
type UserPage struct {
	Users []gd.User     `json:"users"`
	Page  wire.PageInfo `json:"page"`
}

// SearchUsers finds users by name or player ID.
func (c *Client) SearchUsers(ctx context.Context, query string, page int) (UserPage, error) {
	form := c.newForm()
	form.Set("str", query)
	form.Set("page", strconv.Itoa(page))
	form.Set("total", "0")
	body, err := c.do(ctx, request{endpoint: "getGJUsers20.php", form: form, sentinels: notFoundSentinels})
	if err != nil {
		return UserPage{}, err
	}
	sections := wire.Sections(body)
	return UserPage{
		Users: gd.UsersFromList(wire.Section(sections, 0)),
		Page:  wire.Page(wire.Section(sections, 1)),
	}, nil
}

// FindUser returns the first search match for name.
func (c *Client) FindUser(ctx context.Context, name string) (gd.User, error) {
	page, err := c.SearchUsers(ctx, name, 0)
	if err != nil {
		return gd.User{}, err
	}
	if len(page.Users) == 0 {
		return gd.User{}, apperrors.New(apperrors.CodeNothingFound, "no user named "+strconv.Quote(name))
	}
	return page.Users[0], nil
}

// GetLeaderboard loads a global leaderboard. Friends and relative boards
// require a session.
func (c *Client) GetLeaderboard(ctx context.Context, strategy gd.LeaderboardStrategy, count int) ([]gd.User, error) {
	if count <= 0 {
		count = 100
	}
	form := c.newForm()
	if strategy == gd.LeaderboardFriends || strategy == gd.LeaderboardRelative {
		var err error
		form, _, err = c.authForm()
		if err != nil {
			return nil, err
		}
	}
	form.Set("type", string(strategy))
	form.Set("count", strconv.Itoa(count))
	body, err := c.do(ctx, request{endpoint: "getGJScores20.php", form: form, sentinels: notFoundSentinels})
	if err != nil {
		return nil, err
	}
	return gd.UsersFromList(body), nil
}
