package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/geometrydash/internal/client"
	"github.com/louisbranch/geometrydash/internal/gd"
	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/platform/httpx"
	"github.com/louisbranch/geometrydash/internal/platform/id"
	"github.com/louisbranch/geometrydash/internal/platform/requestctx"
	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/storage"
)

const (
	defaultCommentCount     = 20
	defaultLeaderboardCount = 100
	maxLeaderboardCount     = 10000
	maxAuthBody             = 4 << 10
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", s.handlePing)

	mux.HandleFunc("GET /api/users", s.handleSearchUsers)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("GET /api/users/{id}/comments", s.handleProfileComments)

	mux.HandleFunc("GET /api/levels", s.handleSearchLevels)
	mux.HandleFunc("GET /api/levels/daily", s.handleTimely(false))
	mux.HandleFunc("GET /api/levels/weekly", s.handleTimely(true))
	mux.HandleFunc("GET /api/levels/{id}", s.handleGetLevel)
	mux.HandleFunc("GET /api/levels/{id}/comments", s.handleLevelComments)

	mux.HandleFunc("GET /api/songs/{id}", s.handleGetSong)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)

	mux.HandleFunc("POST /api/auth", s.handleLogin)
	mux.HandleFunc("DELETE /api/auth", s.handleLogout)
	mux.HandleFunc("GET /api/messages", s.withAccount(s.handleMessages))
	mux.HandleFunc("GET /api/friend-requests", s.withAccount(s.handleFriendRequests))

	mux.HandleFunc("POST /api/codec/{op}", s.handleCodec)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, apperrors.New(apperrors.CodeNotFound, "no route for "+r.Method+" "+r.URL.Path))
	})
	return mux
}

func respond(w http.ResponseWriter, payload any, err error) {
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, payload)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "id must be an integer", map[string]string{"id": raw})
	}
	return v, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidArgument, key+" must be a non-negative integer", map[string]string{key: raw})
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.WithMetadata(apperrors.CodeInvalidArgument, key+" must be a boolean", map[string]string{key: raw})
	}
	return v, nil
}

func invalid(err error) error {
	if apperrors.CodeOf(err) != apperrors.CodeUnknown {
		return err
	}
	return apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err)
}

type pingResponse struct {
	Status    string `json:"status"`
	Upstream  string `json:"upstream"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	resp := pingResponse{Status: "ok", Upstream: "ok"}
	latency, err := s.game.Ping(r.Context())
	if err != nil {
		resp.Upstream = "unreachable"
		resp.Error = err.Error()
	} else {
		resp.LatencyMS = latency.Milliseconds()
	}
	respond(w, resp, nil)
}

func (s *Server) getUser(ctx context.Context, accountID int) (gd.User, error) {
	return cached(ctx, s, "user:"+strconv.Itoa(accountID), func(ctx context.Context) (gd.User, error) {
		return s.game.GetUser(ctx, accountID)
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	user, err := s.getUser(r.Context(), accountID)
	respond(w, user, err)
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		httpx.WriteError(w, apperrors.New(apperrors.CodeInvalidArgument, "query is required"))
		return
	}
	page, err := queryInt(r, "page", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	result, err := s.game.SearchUsers(r.Context(), query, page)
	respond(w, result, err)
}

func (s *Server) handleProfileComments(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	page, err := queryInt(r, "page", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	author, err := s.getUser(r.Context(), accountID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	comments, err := s.game.GetProfileComments(r.Context(), author, page)
	respond(w, comments, err)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	levelID, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if levelID <= 0 {
		httpx.WriteError(w, apperrors.New(apperrors.CodeInvalidArgument, "id must be positive"))
		return
	}
	level, err := cached(r.Context(), s, "level:"+strconv.Itoa(levelID), func(ctx context.Context) (gd.Level, error) {
		return s.game.GetLevel(ctx, levelID)
	})
	respond(w, level, err)
}

func (s *Server) handleTimely(weekly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			level gd.Level
			err   error
		)
		if weekly {
			level, err = s.game.GetWeekly(r.Context())
		} else {
			level, err = s.game.GetDaily(r.Context())
		}
		respond(w, level, err)
	}
}

func (s *Server) handleSearchLevels(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	strategy, err := gd.ParseSearchStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		httpx.WriteError(w, invalid(err))
		return
	}
	songID, err := queryInt(r, "song", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	result, err := s.game.SearchLevels(r.Context(), client.SearchFilters{
		Strategy:     strategy,
		Query:        strings.TrimSpace(r.URL.Query().Get("query")),
		Page:         page,
		CustomSongID: songID,
	})
	respond(w, result, err)
}

func (s *Server) handleLevelComments(w http.ResponseWriter, r *http.Request) {
	levelID, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	page, err := queryInt(r, "page", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	strategy, err := gd.ParseCommentStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		httpx.WriteError(w, invalid(err))
		return
	}
	comments, err := s.game.GetLevelComments(r.Context(), levelID, strategy, page, defaultCommentCount)
	respond(w, comments, err)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	songID, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	song, err := cached(r.Context(), s, "song:"+strconv.Itoa(songID), func(ctx context.Context) (gd.Song, error) {
		return s.getSong(ctx, songID)
	})
	respond(w, song, err)
}

// getSong asks the game server first. Songs it rejects or has never seen
// are looked up on Newgrounds.
func (s *Server) getSong(ctx context.Context, songID int) (gd.Song, error) {
	song, err := s.game.GetSong(ctx, songID)
	if err == nil || s.songs == nil {
		return song, err
	}
	if !errors.Is(err, apperrors.ErrNothingFound) && !errors.Is(err, apperrors.ErrMissingAccess) {
		return song, err
	}
	s.logf("song fallback id=%d reason=%s", songID, apperrors.CodeOf(err))
	return s.songs.GetSong(ctx, songID)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	strategy, err := gd.ParseLeaderboardStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		httpx.WriteError(w, invalid(err))
		return
	}
	count, err := queryInt(r, "count", defaultLeaderboardCount)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if count == 0 || count > maxLeaderboardCount {
		httpx.WriteError(w, apperrors.New(apperrors.CodeInvalidArgument, "count must be between 1 and "+strconv.Itoa(maxLeaderboardCount)))
		return
	}
	users, err := s.game.GetLeaderboard(r.Context(), strategy, count)
	respond(w, users, err)
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	AccountID int       `json:"account_id"`
	PlayerID  int       `json:"player_id"`
	Name      string    `json:"name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBody)).Decode(&req); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeInvalidArgument, "request body must be a JSON object", err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" {
		httpx.WriteError(w, apperrors.New(apperrors.CodeInvalidArgument, "name and password are required"))
		return
	}

	account := s.newAccount()
	gameSession, err := account.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	sessionID, err := id.NewID()
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	now := s.now().UTC()
	session := storage.Session{
		ID:        sessionID,
		AccountID: gameSession.AccountID,
		PlayerID:  gameSession.PlayerID,
		Name:      gameSession.Name,
		GJP:       gameSession.GJP(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	}
	if err := s.sessions.PutSession(r.Context(), session); err != nil {
		httpx.WriteError(w, err)
		return
	}
	token, err := s.tokens.Issue(session)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	s.logf("session created account_id=%d session_id=%s", session.AccountID, session.ID)
	respond(w, loginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		AccountID: session.AccountID,
		PlayerID:  session.PlayerID,
		Name:      session.Name,
	}, nil)
}

// authenticate resolves the bearer token to a live stored session.
func (s *Server) authenticate(r *http.Request) (storage.Session, error) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		return storage.Session{}, apperrors.New(apperrors.CodeUnauthorized, "bearer token is required")
	}
	sessionID, err := s.tokens.Verify(token)
	if err != nil {
		return storage.Session{}, err
	}
	session, err := s.sessions.GetSession(r.Context(), sessionID, s.now())
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Session{}, apperrors.New(apperrors.CodeUnauthorized, "session is expired or revoked")
	}
	return session, err
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, err := s.authenticate(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := s.sessions.DeleteSession(r.Context(), session.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// accountHandler serves a request on behalf of a logged-in account.
type accountHandler func(w http.ResponseWriter, r *http.Request, account AccountAPI)

func (s *Server) withAccount(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.authenticate(r)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		password, err := robtop.DecodeGJP(session.GJP)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		account := s.newAccount()
		account.SetSession(session.AccountID, session.PlayerID, session.Name, password)
		next(w, r.WithContext(requestctx.WithSessionID(r.Context(), session.ID)), account)
	}
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request, account AccountAPI) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	sent, err := queryBool(r, "sent")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	messages, err := account.GetMessages(r.Context(), sent, page)
	respond(w, messages, err)
}

func (s *Server) handleFriendRequests(w http.ResponseWriter, r *http.Request, account AccountAPI) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	sent, err := queryBool(r, "sent")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	requests, err := account.GetFriendRequests(r.Context(), sent, page)
	respond(w, requests, err)
}
