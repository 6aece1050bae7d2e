package client

import (
	"context"
	"strconv"
	"strings"

	"github.com/louisbranch/geometrydash/internal/gd"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/wire"
)

var accessSentinels = wire.SentinelTable{-1: apperrors.CodeMissingAccess}

// pageSentinels treats an empty page (-2) as nothing found.
var pageSentinels = wire.SentinelTable{
	-1: apperrors.CodeMissingAccess,
	-2: apperrors.CodeNothingFound,
}

// GetMessages lists the inbox, or sent messages when sent is true.
func (c *Client) GetMessages(ctx context.Context, sent bool, page int) (gd.MessagePage, error) {
	form, _, err := c.authForm()
	if err != nil {
		return gd.MessagePage{}, err
	}
	form.Set("page", strconv.Itoa(page))
	form.Set("total", "0")
	if sent {
		form.Set("getSent", "1")
	}
	body, err := c.do(ctx, request{endpoint: "getGJMessages20.php", form: form, sentinels: pageSentinels})
	if err != nil {
		return gd.MessagePage{}, err
	}
	out := gd.ParseMessages(body)
	for i := range out.Messages {
		out.Messages[i].Sent = sent
	}
	return out, nil
}

// ReadMessage downloads a message including its body.
func (c *Client) ReadMessage(ctx context.Context, messageID int, sent bool) (gd.Message, error) {
	form, _, err := c.authForm()
	if err != nil {
		return gd.Message{}, err
	}
	form.Set("messageID", strconv.Itoa(messageID))
	if sent {
		form.Set("isSender", "1")
	}
	body, err := c.do(ctx, request{endpoint: "downloadGJMessage20.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return gd.Message{}, err
	}
	msg := gd.MessageFromMap(wire.ParseMap(body, wire.DelimObject))
	msg.Sent = sent
	return msg, nil
}

// SendMessage sends a private message to an account.
func (c *Client) SendMessage(ctx context.Context, toAccountID int, subject, body string) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	if strings.TrimSpace(subject) == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "message subject is required")
	}
	form.Set("toAccountID", strconv.Itoa(toAccountID))
	form.Set("subject", robtop.EncodeBase64String(subject))
	form.Set("body", gd.EncodeMessageBody(body))
	resp, err := c.do(ctx, request{endpoint: "uploadGJMessage20.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return err
	}
	return expectOK("uploadGJMessage20.php", resp)
}

// DeleteMessages deletes inbox (or sent) messages by ID.
func (c *Client) DeleteMessages(ctx context.Context, sent bool, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("messages", joinIDs(ids))
	if sent {
		form.Set("isSender", "1")
	}
	body, err := c.do(ctx, request{endpoint: "deleteGJMessages20.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return err
	}
	return expectOK("deleteGJMessages20.php", body)
}

// GetFriendRequests lists incoming (or sent) friend requests.
func (c *Client) GetFriendRequests(ctx context.Context, sent bool, page int) (gd.FriendRequestPage, error) {
	form, _, err := c.authForm()
	if err != nil {
		return gd.FriendRequestPage{}, err
	}
	form.Set("page", strconv.Itoa(page))
	form.Set("total", "0")
	if sent {
		form.Set("getSent", "1")
	}
	body, err := c.do(ctx, request{endpoint: "getGJFriendRequests20.php", form: form, sentinels: pageSentinels})
	if err != nil {
		return gd.FriendRequestPage{}, err
	}
	return gd.ParseFriendRequests(body, sent), nil
}

// SendFriendRequest asks an account to become friends.
func (c *Client) SendFriendRequest(ctx context.Context, toAccountID int, message string) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("toAccountID", strconv.Itoa(toAccountID))
	form.Set("comment", robtop.EncodeBase64String(message))
	body, err := c.do(ctx, request{endpoint: "uploadFriendRequest20.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return err
	}
	return expectOK("uploadFriendRequest20.php", body)
}

// AcceptFriendRequest accepts an incoming request from targetAccountID.
func (c *Client) AcceptFriendRequest(ctx context.Context, requestID, targetAccountID int) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("requestID", strconv.Itoa(requestID))
	form.Set("targetAccountID", strconv.Itoa(targetAccountID))
	body, err := c.do(ctx, request{endpoint: "acceptGJFriendRequest20.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return err
	}
	return expectOK("acceptGJFriendRequest20.php", body)
}

// ReadFriendRequest marks an incoming request as read.
func (c *Client) ReadFriendRequest(ctx context.Context, requestID int) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("requestID", strconv.Itoa(requestID))
	body, err := c.do(ctx, request{endpoint: "readGJFriendRequest20.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return err
	}
	return expectOK("readGJFriendRequest20.php", body)
}

// DeleteFriendRequests rejects incoming (or cancels sent) requests by the
// other party's account ID.
func (c *Client) DeleteFriendRequests(ctx context.Context, sent bool, accountIDs ...int) error {
	if len(accountIDs) == 0 {
		return nil
	}
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("accounts", joinIDs(accountIDs))
	form.Set("targetAccountID", strconv.Itoa(accountIDs[0]))
	form.Set("isSender", boolParam(sent))
	body, err := c.do(ctx, request{endpoint: "deleteGJFriendRequests20.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return err
	}
	return expectOK("deleteGJFriendRequests20.php", body)
}

// GetFriends lists the logged-in account's friends.
func (c *Client) GetFriends(ctx context.Context) ([]gd.User, error) {
	return c.getUserList(ctx, 0)
}

// GetBlocked lists the accounts the logged-in account blocked.
func (c *Client) GetBlocked(ctx context.Context) ([]gd.User, error) {
	return c.getUserList(ctx, 1)
}

func (c *Client) getUserList(ctx context.Context, listType int) ([]gd.User, error) {
	form, _, err := c.authForm()
	if err != nil {
		return nil, err
	}
	form.Set("type", strconv.Itoa(listType))
	body, err := c.do(ctx, request{endpoint: "getGJUserList20.php", form: form, sentinels: pageSentinels})
	if err != nil {
		return nil, err
	}
	return gd.UsersFromList(body), nil
}

// Block blocks an account.
func (c *Client) Block(ctx context.Context, targetAccountID int) error {
	return c.relationship(ctx, "blockGJUser20.php", targetAccountID)
}

// Unblock removes a block.
func (c *Client) Unblock(ctx context.Context, targetAccountID int) error {
	return c.relationship(ctx, "unblockGJUser20.php", targetAccountID)
}

// Unfriend removes a friend.
func (c *Client) Unfriend(ctx context.Context, targetAccountID int) error {
	return c.relationship(ctx, "removeGJFriend20.php", targetAccountID)
}

func (c *Client) relationship(ctx context.Context, endpoint string, targetAccountID int) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("targetAccountID", strconv.Itoa(targetAccountID))
	body, err := c.do(ctx, request{endpoint: endpoint, form: form, sentinels: accessSentinels})
	if err != nil {
		return err
	}
	return expectOK(endpoint, body)
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
