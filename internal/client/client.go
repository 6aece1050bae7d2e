// Package client talks to the game server's PHP endpoints.
//
// A Client serializes every request behind one mutex, as the official game
// client does; the server rate-limits aggressively and rejects concurrent
// bursts from one device.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/platform/timeouts"
	"github.com/louisbranch/geometrydash/internal/robtop"
	"github.com/louisbranch/geometrydash/internal/wire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Request constants expected by the server.
const (
	DefaultBaseURL = "http://www.boomlings.com/database/"
	GameVersion    = "21"
	BinaryVersion  = "35"

	secretMain    = "Wmfd2893gb7"
	secretAccount = "Wmfv3899gc9"
	secretLevel   = "Wmfv2898gc9"

	maxErrorBody = 256
)

// Config configures a Client.
type Config struct {
	// BaseURL is the database root, ending in "/".
	BaseURL string
	// HTTPClient defaults to a new http.Client.
	HTTPClient *http.Client
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Retries is the number of extra attempts after transport failures.
	Retries int
	// Logf receives retry diagnostics; nil disables them.
	Logf func(format string, args ...any)
}

// Session is the logged-in account.
type Session struct {
	AccountID int
	PlayerID  int
	Name      string
	password  string
}

// GJP returns the encoded password parameter.
func (s Session) GJP() string {
	return robtop.EncodeGJP(s.password)
}

// Client issues requests against one game server.
type Client struct {
	cfg    Config
	udid   string
	tracer trace.Tracer

	// mu serializes outgoing requests.
	mu sync.Mutex

	sessionMu sync.RWMutex
	session   *Session
}

// New builds a Client, filling defaults for zero config fields.
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.Request
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Client{
		cfg:    cfg,
		udid:   robtop.NewUDID(),
		tracer: otel.Tracer("github.com/louisbranch/geometrydash/internal/client"),
	}
}

// BaseURL returns the configured database root.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Session returns the current session, if logged in.
func (c *Client) Session() (Session, bool) {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// SetSession installs credentials obtained elsewhere (for example restored
// from storage). The password is required by cloud save endpoints.
func (c *Client) SetSession(accountID, playerID int, name, password string) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.session = &Session{AccountID: accountID, PlayerID: playerID, Name: name, password: password}
}

// Logout forgets the current session.
func (c *Client) Logout() {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.session = nil
}

func (c *Client) requireSession() (Session, error) {
	session, ok := c.Session()
	if !ok {
		return Session{}, apperrors.ErrNotLoggedIn
	}
	return session, nil
}

// request describes one endpoint call.
type request struct {
	endpoint  string
	base      string
	secret    string
	form      url.Values
	sentinels wire.SentinelTable
}

func (c *Client) newForm() url.Values {
	form := url.Values{}
	form.Set("gameVersion", GameVersion)
	form.Set("binaryVersion", BinaryVersion)
	form.Set("gdw", "0")
	return form
}

func (c *Client) authForm() (url.Values, Session, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, Session{}, err
	}
	form := c.newForm()
	form.Set("accountID", strconv.Itoa(session.AccountID))
	form.Set("gjp", session.GJP())
	return form, session, nil
}

// do sends req and returns the response body after sentinel checks.
func (c *Client) do(ctx context.Context, req request) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.form == nil {
		req.form = c.newForm()
	}
	secret := req.secret
	if secret == "" {
		secret = secretMain
	}
	req.form.Set("secret", secret)
	base := req.base
	if base == "" {
		base = c.cfg.BaseURL
	}
	target := base + req.endpoint

	ctx, span := c.tracer.Start(ctx, "gd.request", trace.WithAttributes(
		attribute.String("gd.endpoint", req.endpoint),
	))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			if c.cfg.Logf != nil {
				c.cfg.Logf("retry endpoint=%s attempt=%d err=%v", req.endpoint, attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				span.SetStatus(otelcodes.Error, ctx.Err().Error())
				return "", apperrors.Wrap(apperrors.CodeUpstream, fmt.Sprintf("%s: %v", req.endpoint, ctx.Err()), ctx.Err())
			case <-time.After(time.Duration(attempt) * timeouts.RetryBackoff):
			}
		}
		body, retry, err := c.attempt(ctx, target, req.form)
		if err == nil {
			if err := req.sentinels.Check(req.endpoint, body); err != nil {
				span.SetAttributes(attribute.String("gd.sentinel", strings.TrimSpace(body)))
				return "", err
			}
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	span.RecordError(lastErr)
	span.SetStatus(otelcodes.Error, lastErr.Error())
	return "", apperrors.Wrap(apperrors.CodeUpstream, fmt.Sprintf("%s: %v", req.endpoint, lastErr), lastErr)
}

// attempt performs one POST. retry reports whether the failure is transient.
func (c *Client) attempt(ctx context.Context, target string, form url.Values) (body string, retry bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// The server rejects unknown agents; an empty value omits the header.
	httpReq.Header.Set("User-Agent", "")
	httpReq.Header.Set("Accept", "*/*")

	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}
	switch {
	case resp.StatusCode >= 500:
		return "", true, fmt.Errorf("server returned %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return "", false, fmt.Errorf("server returned %s: %s", resp.Status, truncate(string(data), maxErrorBody))
	}
	text := string(data)
	if strings.HasPrefix(text, "error code:") {
		// Cloudflare rate limiting; not worth retrying immediately.
		return "", false, errors.New(strings.TrimSpace(text))
	}
	return text, false, nil
}

// Ping measures the round trip to the server root.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := c.tracer.Start(ctx, "gd.request", trace.WithAttributes(
		attribute.String("gd.endpoint", "ping"),
	))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build ping request: %w", err)
	}
	req.Header.Set("User-Agent", "")
	start := time.Now()
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return 0, apperrors.Wrap(apperrors.CodeUpstream, "ping", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return time.Since(start), nil
}

// expectOK validates endpoints that answer "1" on success.
func expectOK(endpoint, body string) error {
	if strings.TrimSpace(body) != "1" {
		return apperrors.New(apperrors.CodeUpstream, fmt.Sprintf("%s: unexpected response %q", endpoint, truncate(body, maxErrorBody)))
	}
	return nil
}

// expectID parses endpoints that answer with a created object's ID.
func expectID(endpoint, body string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.CodeUpstream, fmt.Sprintf("%s: unexpected response %q", endpoint, truncate(body, maxErrorBody)))
	}
	return id, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StdLogf adapts the standard logger for Config.Logf.
func StdLogf(format string, args ...any) {
	log.Printf(format, args...)
}
