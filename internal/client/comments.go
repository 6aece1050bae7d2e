package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/louisbranch/geometrydash/internal/gd"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/wire"
)

const (
	maxCommentLength = 100
	defaultPageSize  = 20
)

var commentSentinels = wire.SentinelTable{
	-1: apperrors.CodeNothingFound,
	-2: apperrors.CodeNothingFound,
}

// GetLevelComments lists one page of a level's comments.
func (c *Client) GetLevelComments(ctx context.Context, levelID int, strategy gd.CommentStrategy, page, count int) (gd.CommentPage, error) {
	if count <= 0 {
		count = defaultPageSize
	}
	form := c.newForm()
	form.Set("levelID", strconv.Itoa(levelID))
	form.Set("page", strconv.Itoa(page))
	form.Set("total", "0")
	form.Set("mode", strconv.Itoa(int(strategy)))
	form.Set("count", strconv.Itoa(count))
	body, err := c.do(ctx, request{endpoint: "getGJComments21.php", form: form, sentinels: commentSentinels})
	if err != nil {
		return gd.CommentPage{}, err
	}
	return gd.ParseLevelComments(body), nil
}

// GetCommentHistory lists the level comments a player has posted.
func (c *Client) GetCommentHistory(ctx context.Context, playerID int, strategy gd.CommentStrategy, page, count int) (gd.CommentPage, error) {
	if count <= 0 {
		count = defaultPageSize
	}
	form := c.newForm()
	form.Set("userID", strconv.Itoa(playerID))
	form.Set("page", strconv.Itoa(page))
	form.Set("total", "0")
	form.Set("mode", strconv.Itoa(int(strategy)))
	form.Set("count", strconv.Itoa(count))
	body, err := c.do(ctx, request{endpoint: "getGJCommentHistory.php", form: form, sentinels: commentSentinels})
	if err != nil {
		return gd.CommentPage{}, err
	}
	return gd.ParseLevelComments(body), nil
}

// GetProfileComments lists one page of a user's profile posts. author fills
// the comment authors since the server omits them.
func (c *Client) GetProfileComments(ctx context.Context, author gd.User, page int) (gd.CommentPage, error) {
	form := c.newForm()
	form.Set("accountID", strconv.Itoa(author.AccountID))
	form.Set("page", strconv.Itoa(page))
	form.Set("total", "0")
	body, err := c.do(ctx, request{endpoint: "getGJAccountComments20.php", form: form, sentinels: commentSentinels})
	if err != nil {
		return gd.CommentPage{}, err
	}
	return gd.ParseProfileComments(body, author), nil
}

func validateComment(body string) error {
	if strings.TrimSpace(body) == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "comment is empty")
	}
	if n := utf8.RuneCountInString(body); n > maxCommentLength {
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("comment is %d characters, limit is %d", n, maxCommentLength))
	}
	return nil
}

// checkCommentBan maps "temp_<seconds>_<reason>" responses to CommentBanned.
func checkCommentBan(endpoint, body string) error {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "temp_") {
		return nil
	}
	parts := strings.SplitN(strings.TrimPrefix(body, "temp_"), "_", 2)
	metadata := map[string]string{}
	if seconds, err := strconv.Atoi(parts[0]); err == nil {
		metadata["seconds"] = strconv.Itoa(seconds)
	}
	if len(parts) == 2 && parts[1] != "" {
		metadata["reason"] = parts[1]
	}
	return apperrors.WithMetadata(apperrors.CodeCommentBanned, endpoint+": comment banned", metadata)
}

var postSentinels = wire.SentinelTable{
	-1:  apperrors.CodeMissingAccess,
	-10: apperrors.CodeCommentBanned,
}

// PostLevelComment posts a comment on a level and returns its ID.
func (c *Client) PostLevelComment(ctx context.Context, levelID int, body string, percent int) (int, error) {
	form, session, err := c.authForm()
	if err != nil {
		return 0, err
	}
	if err := validateComment(body); err != nil {
		return 0, err
	}
	if percent < 0 || percent > 100 {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("percent must be between 0 and 100, got %d", percent))
	}
	encoded := robtop.EncodeBase64String(body)
	form.Set("userName", session.Name)
	form.Set("comment", encoded)
	form.Set("levelID", strconv.Itoa(levelID))
	form.Set("percent", strconv.Itoa(percent))
	form.Set("chk", robtop.CHK([]any{session.Name, encoded, levelID, percent, 0}, robtop.KeyComment, robtop.SaltComment))
	return c.postComment(ctx, "uploadGJComment21.php", form)
}

// PostProfileComment posts on the logged-in account's profile.
func (c *Client) PostProfileComment(ctx context.Context, body string) (int, error) {
	form, session, err := c.authForm()
	if err != nil {
		return 0, err
	}
	if err := validateComment(body); err != nil {
		return 0, err
	}
	encoded := robtop.EncodeBase64String(body)
	form.Set("userName", session.Name)
	form.Set("comment", encoded)
	form.Set("levelID", "0")
	form.Set("cType", "1")
	form.Set("chk", robtop.CHK([]any{session.Name, encoded, 0, 0, 1}, robtop.KeyComment, robtop.SaltComment))
	return c.postComment(ctx, "uploadGJAccComment20.php", form)
}

func (c *Client) postComment(ctx context.Context, endpoint string, form url.Values) (int, error) {
	body, err := c.do(ctx, request{endpoint: endpoint, form: form, sentinels: postSentinels})
	if err != nil {
		return 0, err
	}
	if err := checkCommentBan(endpoint, body); err != nil {
		return 0, err
	}
	return expectID(endpoint, body)
}

// DeleteLevelComment removes a comment from a level.
func (c *Client) DeleteLevelComment(ctx context.Context, levelID, commentID int) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("commentID", strconv.Itoa(commentID))
	form.Set("levelID", strconv.Itoa(levelID))
	body, err := c.do(ctx, request{endpoint: "deleteGJComment20.php", form: form, sentinels: wire.SentinelTable{-1: apperrors.CodeMissingAccess}})
	if err != nil {
		return err
	}
	return expectOK("deleteGJComment20.php", body)
}

// DeleteProfileComment removes a post from the logged-in account's profile.
func (c *Client) DeleteProfileComment(ctx context.Context, commentID int) error {
	form, session, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("commentID", strconv.Itoa(commentID))
	form.Set("cType", "1")
	form.Set("targetAccountID", strconv.Itoa(session.AccountID))
	body, err := c.do(ctx, request{endpoint: "deleteGJAccComment20.php", form: form, sentinels: wire.SentinelTable{-1: apperrors.CodeMissingAccess}})
	if err != nil {
		return err
	}
	return expectOK("deleteGJAccComment20.php", body)
}
