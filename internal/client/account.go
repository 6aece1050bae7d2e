package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/louisbranch/geometrydash/internal/gd"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/wire"
)

var loginSentinels = wire.SentinelTable{
	-1:  apperrors.CodeLoginFailure,
	-8:  apperrors.CodeInvalidPassword,
	-9:  apperrors.CodeInvalidName,
	-11: apperrors.CodeLoginFailure,
	-12: apperrors.CodeAccountDisabled,
}

var registerSentinels = wire.SentinelTable{
	-1: apperrors.CodeMissingAccess,
	-2: apperrors.CodeNameTaken,
	-3: apperrors.CodeEmailTaken,
	-4: apperrors.CodeInvalidName,
	-5: apperrors.CodeInvalidPassword,
	-6: apperrors.CodeInvalidEmail,
	-7: apperrors.CodeInvalidPassword,
	-9: apperrors.CodeInvalidName,
}

// Login verifies credentials and installs the session.
func (c *Client) Login(ctx context.Context, name, password string) (Session, error) {
	if name == "" || password == "" {
		return Session{}, apperrors.New(apperrors.CodeInvalidArgument, "name and password are required")
	}
	form := c.newForm()
	form.Set("udid", c.udid)
	form.Set("userName", name)
	form.Set("password", password)
	form.Set("gjp2", robtop.EncodeGJP2(password))
	body, err := c.do(ctx, request{endpoint: "accounts/loginGJAccount.php", secret: secretAccount, form: form, sentinels: loginSentinels})
	if err != nil {
		return Session{}, err
	}
	accountText, playerText, ok := strings.Cut(strings.TrimSpace(body), ",")
	accountID, errA := strconv.Atoi(accountText)
	playerID, errP := strconv.Atoi(playerText)
	if !ok || errA != nil || errP != nil {
		return Session{}, apperrors.New(apperrors.CodeUpstream, fmt.Sprintf("login: unexpected response %q", truncate(body, maxErrorBody)))
	}
	c.SetSession(accountID, playerID, name, password)
	session, _ := c.Session()
	return session, nil
}

// Register creates an account. The account must be activated by email
// before it can log in.
func (c *Client) Register(ctx context.Context, name, password, email string) error {
	form := c.newForm()
	form.Set("userName", name)
	form.Set("password", password)
	form.Set("email", email)
	body, err := c.do(ctx, request{endpoint: "accounts/registerGJAccount.php", secret: secretAccount, form: form, sentinels: registerSentinels})
	if err != nil {
		return err
	}
	return expectOK("registerGJAccount.php", body)
}

// Settings are the logged-in account's privacy and social links.
type Settings struct {
	MessagePolicy        gd.Policy `json:"message_policy"`
	FriendRequestPolicy  gd.Policy `json:"friend_request_policy"`
	CommentHistoryPolicy gd.Policy `json:"comment_history_policy"`
	YouTube              string    `json:"youtube,omitempty"`
	Twitter              string    `json:"twitter,omitempty"`
	Twitch               string    `json:"twitch,omitempty"`
}

// UpdateSettings replaces every account setting.
func (c *Client) UpdateSettings(ctx context.Context, s Settings) error {
	form, _, err := c.authForm()
	if err != nil {
		return err
	}
	form.Set("mS", strconv.Itoa(int(s.MessagePolicy)))
	form.Set("frS", strconv.Itoa(int(s.FriendRequestPolicy)))
	form.Set("cS", strconv.Itoa(int(s.CommentHistoryPolicy)))
	form.Set("yt", s.YouTube)
	form.Set("twitter", s.Twitter)
	form.Set("twitch", s.Twitch)
	body, err := c.do(ctx, request{endpoint: "updateGJAccSettings20.php", secret: secretAccount, form: form, sentinels: accessSentinels})
	if err != nil {
		return err
	}
	return expectOK("updateGJAccSettings20.php", body)
}

func (c *Client) rewardsForm() (url.Values, error) {
	form, session, err := c.authForm()
	if err != nil {
		return nil, err
	}
	form.Set("udid", c.udid)
	form.Set("uuid", strconv.Itoa(session.PlayerID))
	return form, nil
}

// GetQuests loads the account's current daily quests.
func (c *Client) GetQuests(ctx context.Context) ([]gd.Quest, error) {
	form, err := c.rewardsForm()
	if err != nil {
		return nil, err
	}
	form.Set("chk", robtop.RewardsCHK(robtop.KeyQuests))
	body, err := c.do(ctx, request{endpoint: "getGJChallenges.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return nil, err
	}
	payload, err := robtop.DecodeRewards(body, robtop.KeyQuests)
	if err != nil {
		return nil, err
	}
	quests, err := gd.ParseQuests(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDecode, "quests", err)
	}
	return quests, nil
}

// Chests is the state of both reward chests.
type Chests struct {
	Small gd.Chest `json:"small"`
	Large gd.Chest `json:"large"`
}

// GetChests loads the reward chests without opening them.
func (c *Client) GetChests(ctx context.Context) (Chests, error) {
	form, err := c.rewardsForm()
	if err != nil {
		return Chests{}, err
	}
	form.Set("chk", robtop.RewardsCHK(robtop.KeyChests))
	form.Set("rewardType", "0")
	body, err := c.do(ctx, request{endpoint: "getGJRewards.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return Chests{}, err
	}
	payload, err := robtop.DecodeRewards(body, robtop.KeyChests)
	if err != nil {
		return Chests{}, err
	}
	small, large, err := gd.ParseChests(payload)
	if err != nil {
		return Chests{}, apperrors.Wrap(apperrors.CodeDecode, "chests", err)
	}
	return Chests{Small: small, Large: large}, nil
}

// CloudSave holds the decoded plist XML of a cloud backup.
type CloudSave struct {
	Main   []byte
	Levels []byte
}

// saveURL asks the server which host stores the account's backup.
func (c *Client) saveURL(ctx context.Context, accountID int) (string, error) {
	form := c.newForm()
	form.Set("accountID", strconv.Itoa(accountID))
	form.Set("type", "2")
	body, err := c.do(ctx, request{endpoint: "getAccountURL.php", form: form, sentinels: accessSentinels})
	if err != nil {
		return "", err
	}
	host := strings.TrimRight(strings.TrimSpace(body), "/")
	if _, err := url.ParseRequestURI(host); err != nil {
		return "", apperrors.Wrap(apperrors.CodeUpstream, "getAccountURL.php: invalid storage URL", err)
	}
	return host + "/database/", nil
}

func (c *Client) saveForm(session Session) url.Values {
	form := c.newForm()
	form.Set("accountID", strconv.Itoa(session.AccountID))
	form.Set("userName", session.Name)
	form.Set("password", session.password)
	form.Set("gjp2", robtop.EncodeGJP2(session.password))
	return form
}

var saveSentinels = wire.SentinelTable{
	-1: apperrors.CodeMissingAccess,
	-2: apperrors.CodeLoginFailure,
	-4: apperrors.CodeInvalidArgument,
}

// LoadSave downloads and decodes the account's cloud backup.
func (c *Client) LoadSave(ctx context.Context) (CloudSave, error) {
	session, err := c.requireSession()
	if err != nil {
		return CloudSave{}, err
	}
	base, err := c.saveURL(ctx, session.AccountID)
	if err != nil {
		return CloudSave{}, err
	}
	body, err := c.do(ctx, request{
		endpoint:  "accounts/syncGJAccountNew.php",
		base:      base,
		secret:    secretAccount,
		form:      c.saveForm(session),
		sentinels: saveSentinels,
	})
	if err != nil {
		return CloudSave{}, err
	}
	parts := strings.Split(strings.TrimSpace(body), ";")
	if len(parts) < 2 {
		return CloudSave{}, apperrors.New(apperrors.CodeDecode, "cloud save: missing levels section")
	}
	main, err := robtop.DecodeSave([]byte(parts[0]), false)
	if err != nil {
		return CloudSave{}, fmt.Errorf("cloud save main: %w", err)
	}
	levels, err := robtop.DecodeSave([]byte(parts[1]), false)
	if err != nil {
		return CloudSave{}, fmt.Errorf("cloud save levels: %w", err)
	}
	return CloudSave{Main: main, Levels: levels}, nil
}

// BackupSave encodes and uploads a cloud backup.
func (c *Client) BackupSave(ctx context.Context, save CloudSave) error {
	session, err := c.requireSession()
	if err != nil {
		return err
	}
	main, err := robtop.EncodeSave(save.Main, false)
	if err != nil {
		return err
	}
	levels, err := robtop.EncodeSave(save.Levels, false)
	if err != nil {
		return err
	}
	base, err := c.saveURL(ctx, session.AccountID)
	if err != nil {
		return err
	}
	form := c.saveForm(session)
	form.Set("saveData", strings.Join([]string{string(main), string(levels), GameVersion, BinaryVersion, "a", "a"}, ";"))
	body, err := c.do(ctx, request{
		endpoint:  "accounts/backupGJAccountNew.php",
		base:      base,
		secret:    secretAccount,
		form:      form,
		sentinels: saveSentinels,
	})
	if err != nil {
		return err
	}
	return expectOK("backupGJAccountNew.php", body)
}
