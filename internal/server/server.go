// Package server exposes the game client as a small JSON API.
//
// Upstream lookups for users, levels and songs are cached in a
// storage.CacheStore. Account endpoints use bearer tokens minted by
// POST /api/auth; each token points at a stored session holding the
// account's encoded password, so a restart does not log users out.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/louisbranch/geometrydash/internal/client"
	"github.com/louisbranch/geometrydash/internal/gd"
	platformgrpc "github.com/louisbranch/geometrydash/internal/platform/grpc"
	"github.com/louisbranch/geometrydash/internal/platform/httpx"
	"github.com/louisbranch/geometrydash/internal/platform/timeouts"
	"github.com/louisbranch/geometrydash/internal/storage"
)

// healthService is the named service reported by the gRPC health endpoint.
const healthService = "geometrydash.api"

// defaultPurgeInterval applies when no cache TTL is configured.
const defaultPurgeInterval = 10 * time.Minute

// GameAPI is the subset of the game client used for anonymous lookups.
type GameAPI interface {
	Ping(ctx context.Context) (time.Duration, error)
	GetUser(ctx context.Context, accountID int) (gd.User, error)
	SearchUsers(ctx context.Context, query string, page int) (client.UserPage, error)
	GetLevel(ctx context.Context, id int) (gd.Level, error)
	SearchLevels(ctx context.Context, filters client.SearchFilters) (gd.SearchPage, error)
	GetDaily(ctx context.Context) (gd.Level, error)
	GetWeekly(ctx context.Context) (gd.Level, error)
	GetLevelComments(ctx context.Context, levelID int, strategy gd.CommentStrategy, page, count int) (gd.CommentPage, error)
	GetProfileComments(ctx context.Context, author gd.User, page int) (gd.CommentPage, error)
	GetSong(ctx context.Context, id int) (gd.Song, error)
	GetLeaderboard(ctx context.Context, strategy gd.LeaderboardStrategy, count int) ([]gd.User, error)
}

// AccountAPI is a game client bound to at most one account. The server
// builds a fresh one per authenticated request.
type AccountAPI interface {
	Login(ctx context.Context, name, password string) (client.Session, error)
	SetSession(accountID, playerID int, name, password string)
	GetMessages(ctx context.Context, sent bool, page int) (gd.MessagePage, error)
	GetFriendRequests(ctx context.Context, sent bool, page int) (gd.FriendRequestPage, error)
}

// SongLookup resolves songs the game server does not know about.
type SongLookup interface {
	GetSong(ctx context.Context, id int) (gd.Song, error)
}

// Config defines listener addresses and lifetimes.
type Config struct {
	HTTPAddr   string
	HealthAddr string
	CacheTTL   time.Duration
	TokenTTL   time.Duration
}

// Deps are the collaborators of a Server.
type Deps struct {
	Game       GameAPI
	NewAccount func() AccountAPI
	// Songs is optional; without it song lookups never fall back.
	Songs SongLookup
	// Cache is optional; without it every lookup goes upstream.
	Cache    storage.CacheStore
	Sessions storage.SessionStore
	Tokens   *TokenIssuer
	Now      func() time.Time
	Logf     func(format string, args ...any)
}

// Server hosts the REST API and its health endpoint.
type Server struct {
	cfg        Config
	game       GameAPI
	newAccount func() AccountAPI
	songs      SongLookup
	cache      storage.CacheStore
	sessions   storage.SessionStore
	tokens     *TokenIssuer
	now        func() time.Time
	logf       func(format string, args ...any)
	handler    http.Handler
}

// New validates deps and builds the routes.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Game == nil {
		return nil, errors.New("game client is required")
	}
	if deps.NewAccount == nil {
		return nil, errors.New("account factory is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logf == nil {
		deps.Logf = log.Printf
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	s := &Server{
		cfg:        cfg,
		game:       deps.Game,
		newAccount: deps.NewAccount,
		songs:      deps.Songs,
		cache:      deps.Cache,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		now:        deps.Now,
		logf:       deps.Logf,
	}
	s.handler = httpx.Chain(s.routes(),
		httpx.RequestID(),
		httpx.RecoverPanic(),
		httpx.LogRequests(s.logf),
	)
	return s, nil
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves HTTP and, when configured, gRPC health until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	listener, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.HTTPAddr, err)
	}
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var health *platformgrpc.HealthServer
	healthErr := make(chan error, 1)
	if s.cfg.HealthAddr != "" {
		health, err = platformgrpc.NewHealthServer(s.cfg.HealthAddr, healthService)
		if err != nil {
			_ = listener.Close()
			return fmt.Errorf("start health server: %w", err)
		}
		go func() {
			healthErr <- health.Serve(ctx)
		}()
	}

	serveErr := make(chan error, 1)
	s.logf("http listening on %s", listener.Addr())
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()
	if health != nil {
		health.SetServing(true)
	}
	go s.purgeLoop(ctx)

	var result error
	select {
	case <-ctx.Done():
		if health != nil {
			health.SetServing(false)
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := httpServer.Shutdown(shutdownCtx)
		shutdownCancel()
		if err != nil {
			result = fmt.Errorf("shutdown http server: %w", err)
		}
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			result = fmt.Errorf("serve http: %w", err)
		}
	case err := <-healthErr:
		_ = httpServer.Close()
		if err != nil {
			return err
		}
		return errors.New("health server stopped")
	}

	cancel()
	if health != nil {
		if err := <-healthErr; err != nil && result == nil {
			result = err
		}
	}
	return result
}

// purgeLoop drops expired cache entries and sessions until ctx ends.
func (s *Server) purgeLoop(ctx context.Context) {
	if s.cache == nil {
		return
	}
	interval := s.cfg.CacheTTL
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.cache.PurgeExpired(ctx, s.now())
			if err != nil {
				s.logf("purge expired: %v", err)
				continue
			}
			if purged > 0 {
				s.logf("purged expired rows=%d", purged)
			}
		}
	}
}
