package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/louisbranch/geometrydash/internal/gd"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/robtop"
)

// fakeServer answers endpoint paths with canned bodies and records forms.
type fakeServer struct {
	t      *testing.T
	mu     sync.Mutex
	bodies map[string]string
	forms  map[string]url.Values
	agents map[string]string
	srv    *httptest.Server
}

func newFakeServer(t *testing.T, bodies map[string]string) *fakeServer {
	t.Helper()
	f := &fakeServer{t: t, bodies: bodies, forms: map[string]url.Values{}, agents: map[string]string{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/database/")
		f.mu.Lock()
		f.forms[path] = r.PostForm
		f.agents[path] = r.Header.Get("User-Agent")
		body, ok := f.bodies[path]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{url}}", f.srv.URL)))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) client() *Client {
	return New(Config{BaseURL: f.srv.URL + "/database", Timeout: time.Second})
}

func (f *fakeServer) form(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	form, ok := f.forms[path]
	if !ok {
		f.t.Fatalf("no request recorded for %s", path)
	}
	return form
}

func (f *fakeServer) agent(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.agents[path]
}

func loggedIn(c *Client) *Client {
	c.SetSession(71, 16, "RobTop", "hunter2")
	return c
}

func TestNewNormalizesConfig(t *testing.T) {
	t.Parallel()

	c := New(Config{BaseURL: " http://example.com/database ", Retries: -3})
	if c.BaseURL() != "http://example.com/database/" {
		t.Fatalf("base url = %q", c.BaseURL())
	}
	if c.cfg.Retries != 0 {
		t.Fatalf("retries = %d, want 0", c.cfg.Retries)
	}
	if New(Config{}).BaseURL() != DefaultBaseURL {
		t.Fatal("expected default base url")
	}
}

func TestRequestsCarryCommonParameters(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{
		"getGJUserInfo20.php": "1:RobTop:2:16:16:71:3:1834",
	})
	user, err := f.client().GetUser(context.Background(), 71)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Name != "RobTop" || user.AccountID != 71 {
		t.Fatalf("user = %+v", user)
	}
	form := f.form("getGJUserInfo20.php")
	for key, want := range map[string]string{
		"gameVersion":     GameVersion,
		"binaryVersion":   BinaryVersion,
		"secret":          secretMain,
		"targetAccountID": "71",
	} {
		if got := form.Get(key); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
	if form.Has("gjp") {
		t.Fatal("anonymous request sent gjp")
	}
	if agent := f.agent("getGJUserInfo20.php"); agent != "" {
		t.Fatalf("user agent = %q, want empty", agent)
	}
}

func TestSentinelsMapToErrorCodes(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{
		"getGJUserInfo20.php":            "-1",
		"getGJSongInfo.php":              "-2",
		"accounts/loginGJAccount.php":    "-12",
		"accounts/registerGJAccount.php": "-3",
	})
	c := f.client()
	ctx := context.Background()

	if _, err := c.GetUser(ctx, 1); !errors.Is(err, apperrors.ErrNothingFound) {
		t.Fatalf("get user err = %v, want nothing found", err)
	}
	if _, err := c.GetSong(ctx, 1); apperrors.CodeOf(err) != apperrors.CodeMissingAccess {
		t.Fatalf("get song code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeMissingAccess)
	}
	if _, err := c.Login(ctx, "a", "b"); apperrors.CodeOf(err) != apperrors.CodeAccountDisabled {
		t.Fatalf("login code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeAccountDisabled)
	}
	if err := c.Register(ctx, "a", "b", "c@d.e"); apperrors.CodeOf(err) != apperrors.CodeEmailTaken {
		t.Fatalf("register code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeEmailTaken)
	}
}

func TestEmptyBodyIsNothingFound(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"getGJLevels21.php": ""})
	_, err := f.client().SearchLevels(context.Background(), SearchFilters{Query: "nope"})
	if !errors.Is(err, apperrors.ErrNothingFound) {
		t.Fatalf("err = %v, want nothing found", err)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("1:Name:2:5:16:6"))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Retries: 1, Timeout: time.Second})
	if _, err := c.GetUser(context.Background(), 6); err != nil {
		t.Fatalf("get user: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Retries: 3, Timeout: time.Second})
	_, err := c.GetUser(context.Background(), 6)
	if apperrors.CodeOf(err) != apperrors.CodeUpstream {
		t.Fatalf("code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeUpstream)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestAuthenticatedCallsRequireSession(t *testing.T) {
	t.Parallel()

	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := c.GetMessages(context.Background(), false, 0); !errors.Is(err, apperrors.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want not logged in", err)
	}
	if err := c.Block(context.Background(), 1); !errors.Is(err, apperrors.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want not logged in", err)
	}
}

func TestSessionIsCheckedBeforeArguments(t *testing.T) {
	t.Parallel()

	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	ctx := context.Background()
	checks := map[string]error{}
	_, checks["upload"] = c.UploadLevel(ctx, UploadRequest{})
	checks["rate"] = c.RateLevel(ctx, 1, 0)
	_, checks["level comment"] = c.PostLevelComment(ctx, 1, "", 101)
	_, checks["profile comment"] = c.PostProfileComment(ctx, "")
	checks["message"] = c.SendMessage(ctx, 2, "", "hi")
	for name, err := range checks {
		if !errors.Is(err, apperrors.ErrNotLoggedIn) {
			t.Fatalf("%s: err = %v, want not logged in", name, err)
		}
	}
}

func TestLoginInstallsSession(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"accounts/loginGJAccount.php": "71,16"})
	c := f.client()
	session, err := c.Login(context.Background(), "RobTop", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.AccountID != 71 || session.PlayerID != 16 || session.Name != "RobTop" {
		t.Fatalf("session = %+v", session)
	}
	if session.GJP() != robtop.EncodeGJP("hunter2") {
		t.Fatalf("gjp = %q", session.GJP())
	}
	form := f.form("accounts/loginGJAccount.php")
	if form.Get("secret") != secretAccount || form.Get("udid") == "" {
		t.Fatalf("login form = %v", form)
	}
	c.Logout()
	if _, ok := c.Session(); ok {
		t.Fatal("session survived logout")
	}
}

func TestSearchLevelsEncodesFilters(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{
		"getGJLevels21.php": "1:128:2:1st level:6:16:9:10:15:1:35:0:12:0#16:RobTop:71##1:0:10#hash",
	})
	page, err := f.client().SearchLevels(context.Background(), SearchFilters{
		Strategy:     gd.SearchMostLiked,
		Query:        "first",
		Page:         2,
		Difficulties: []gd.Difficulty{gd.DifficultyEasy, gd.DifficultyHard},
		Lengths:      []gd.Length{gd.LengthShort},
		Featured:     true,
		CustomSongID: 500,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Levels) != 1 || page.Levels[0].Creator.Name != "RobTop" {
		t.Fatalf("page = %+v", page)
	}
	form := f.form("getGJLevels21.php")
	for key, want := range map[string]string{
		"type":       "2",
		"str":        "first",
		"page":       "2",
		"diff":       "1,3",
		"len":        "1",
		"featured":   "1",
		"song":       "500",
		"customSong": "1",
	} {
		if got := form.Get(key); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
	if form.Has("epic") {
		t.Fatal("unset flag was sent")
	}
}

func TestSearchParamsDemonFilter(t *testing.T) {
	t.Parallel()

	params := searchParams(SearchFilters{Difficulties: []gd.Difficulty{gd.DifficultyInsaneDemon}})
	if params["diff"] != "-2" || params["demonFilter"] != "4" {
		t.Fatalf("params = %v", params)
	}
}

func TestGetDailyFillsTimelyNumber(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{
		"getGJDailyLevel.php":   "1234|3600",
		"downloadGJLevel22.php": "1:99:2:Daily:4:kS38,1_40:6:16#hash#hash#16:RobTop:71",
	})
	level, err := f.client().GetDaily(context.Background())
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if level.ID != 99 || level.TimelyNumber != 1234 {
		t.Fatalf("level = %+v", level)
	}
	if got := f.form("downloadGJLevel22.php").Get("levelID"); got != "-1" {
		t.Fatalf("levelID = %q, want -1", got)
	}
}

func TestPostLevelCommentSignsRequest(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"uploadGJComment21.php": "12345"})
	c := loggedIn(f.client())
	id, err := c.PostLevelComment(context.Background(), 128, "gg", 50)
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if id != 12345 {
		t.Fatalf("id = %d, want 12345", id)
	}
	form := f.form("uploadGJComment21.php")
	encoded := robtop.EncodeBase64String("gg")
	if form.Get("comment") != encoded {
		t.Fatalf("comment = %q, want %q", form.Get("comment"), encoded)
	}
	if !robtop.VerifyCHK(form.Get("chk"), []any{"RobTop", encoded, 128, 50, 0}, robtop.KeyComment, robtop.SaltComment) {
		t.Fatalf("chk %q does not verify", form.Get("chk"))
	}
}

func TestCommentBan(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"uploadGJAccComment20.php": "temp_3600_spam"})
	_, err := loggedIn(f.client()).PostProfileComment(context.Background(), "hello")
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeCommentBanned {
		t.Fatalf("err = %v, want comment banned", err)
	}
	if appErr.Metadata["seconds"] != "3600" || appErr.Metadata["reason"] != "spam" {
		t.Fatalf("metadata = %v", appErr.Metadata)
	}
}

func TestCommentValidation(t *testing.T) {
	t.Parallel()

	c := loggedIn(New(Config{BaseURL: "http://127.0.0.1:1"}))
	if _, err := c.PostLevelComment(context.Background(), 1, strings.Repeat("a", 101), 0); apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("long comment code = %v", apperrors.CodeOf(err))
	}
	if _, err := c.PostLevelComment(context.Background(), 1, "ok", 101); apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("bad percent code = %v", apperrors.CodeOf(err))
	}
}

func TestSendMessageEncodesBody(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"uploadGJMessage20.php": "1"})
	if err := loggedIn(f.client()).SendMessage(context.Background(), 5, "hi", "secret body"); err != nil {
		t.Fatalf("send: %v", err)
	}
	form := f.form("uploadGJMessage20.php")
	if gd.DecodeMessageBody(form.Get("body")) != "secret body" {
		t.Fatalf("body = %q", form.Get("body"))
	}
	if form.Get("gjp") != robtop.EncodeGJP("hunter2") || form.Get("accountID") != "71" {
		t.Fatalf("auth = %v", form)
	}
}

func TestDeleteMessagesJoinsIDs(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"deleteGJMessages20.php": "1"})
	if err := loggedIn(f.client()).DeleteMessages(context.Background(), true, 1, 2, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	form := f.form("deleteGJMessages20.php")
	if form.Get("messages") != "1,2,3" || form.Get("isSender") != "1" {
		t.Fatalf("form = %v", form)
	}
}

func TestLikeSignsRequest(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"likeGJItem211.php": "1"})
	c := loggedIn(f.client())
	if err := c.Like(context.Background(), gd.ItemLevelComment, 777, 128, true); err != nil {
		t.Fatalf("like: %v", err)
	}
	form := f.form("likeGJItem211.php")
	values := []any{128, 777, true, 2, form.Get("rs"), 71, c.udid, 16}
	if !robtop.VerifyCHK(form.Get("chk"), values, robtop.KeyLikeRate, robtop.SaltLikeRate) {
		t.Fatalf("chk %q does not verify", form.Get("chk"))
	}
}

func TestUploadLevelEncodesData(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"uploadGJLevel21.php": "4242"})
	id, err := loggedIn(f.client()).UploadLevel(context.Background(), UploadRequest{
		Name: "Test",
		Data: "kS38,1_40;1,1,2,15,3,15;",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if id != 4242 {
		t.Fatalf("id = %d, want 4242", id)
	}
	form := f.form("uploadGJLevel21.php")
	plain, err := robtop.DecodeLevelData(form.Get("levelString"))
	if err != nil || plain != "kS38,1_40;1,1,2,15,3,15;" {
		t.Fatalf("levelString = %q, %v", plain, err)
	}
	if form.Get("seed2") != robtop.LevelSeed(form.Get("levelString")) {
		t.Fatal("seed2 mismatch")
	}
}

func TestGetQuests(t *testing.T) {
	t.Parallel()

	payload := "abcde:16:chk:udid:71:3600:1,1,200,10,Orb finder:2,2,5,15,Coin finder:3,3,10,20,Star finder"
	f := newFakeServer(t, map[string]string{
		"getGJChallenges.php": robtop.EncodeRewards(payload, robtop.KeyQuests, "hash"),
	})
	quests, err := loggedIn(f.client()).GetQuests(context.Background())
	if err != nil {
		t.Fatalf("quests: %v", err)
	}
	if len(quests) != 3 || quests[1].Name != "Coin finder" || quests[2].Reward != 20 {
		t.Fatalf("quests = %+v", quests)
	}
}

func TestCloudSaveRoundTrip(t *testing.T) {
	t.Parallel()

	main, err := robtop.EncodeSave([]byte("<plist>main</plist>"), false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	levels, err := robtop.EncodeSave([]byte("<plist>levels</plist>"), false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f := newFakeServer(t, map[string]string{
		"getAccountURL.php":               "{{url}}",
		"accounts/syncGJAccountNew.php":   string(main) + ";" + string(levels) + ";21;35;a;a",
		"accounts/backupGJAccountNew.php": "1",
	})
	c := loggedIn(f.client())

	save, err := c.LoadSave(context.Background())
	if err != nil {
		t.Fatalf("load save: %v", err)
	}
	if string(save.Main) != "<plist>main</plist>" || string(save.Levels) != "<plist>levels</plist>" {
		t.Fatalf("save = %q / %q", save.Main, save.Levels)
	}
	if err := c.BackupSave(context.Background(), save); err != nil {
		t.Fatalf("backup: %v", err)
	}
	parts := strings.Split(f.form("accounts/backupGJAccountNew.php").Get("saveData"), ";")
	if len(parts) != 6 {
		t.Fatalf("saveData parts = %d, want 6", len(parts))
	}
	decoded, err := robtop.DecodeSave([]byte(parts[1]), false)
	if err != nil || string(decoded) != "<plist>levels</plist>" {
		t.Fatalf("levels = %q, %v", decoded, err)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]string{"": "ok"})
	if _, err := f.client().Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestRequestsAreSerialized(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		if strings.HasSuffix(r.URL.Path, "getGJUserInfo20.php") {
			_, _ = w.Write([]byte("1:RobTop:2:16:16:71"))
			return
		}
		_, _ = w.Write([]byte("1"))
	}))
	defer srv.Close()

	c := loggedIn(New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}))
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 9)
	for i := 0; i < 3; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := c.Ping(ctx)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := c.GetUser(ctx, 71)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			errs <- c.Block(ctx, 2)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("request: %v", err)
		}
	}
	if got := peak.Load(); got != 1 {
		t.Fatalf("peak in-flight requests = %d, want 1", got)
	}
}

func TestCanceledRetryIsUpstreamError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		http.Error(w, "busy", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Retries: 3, Timeout: time.Second})
	_, err := c.GetUser(ctx, 6)
	if apperrors.CodeOf(err) != apperrors.CodeUpstream {
		t.Fatalf("code = %v, want %v (err %v)", apperrors.CodeOf(err), apperrors.CodeUpstream, err)
	}
}
