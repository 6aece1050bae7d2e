package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/geometrydash/internal/platform/errors"
	"github.com/louisbranch/geometrydash/internal/storage"
)

// tokenIssuer is the iss claim of every token this server signs.
const tokenIssuer = "geometrydash"

// minSecretLength is the shortest accepted HMAC secret.
const minSecretLength = 16

// TokenIssuer signs and verifies HS256 session tokens. A token's jti is the
// ID of the stored session it grants access to.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// sessionClaims is the JWT payload.
type sessionClaims struct {
	jwt.RegisteredClaims
	AccountID int    `json:"account_id"`
	Name      string `json:"name"`
}

// NewTokenIssuer builds an issuer for secret.
func NewTokenIssuer(secret []byte, now func() time.Time) (*TokenIssuer, error) {
	if len(secret) < minSecretLength {
		return nil, errors.New("token secret must be at least " + strconv.Itoa(minSecretLength) + " bytes")
	}
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: secret, now: now}, nil
}

// Issue signs a token for session, expiring with it.
func (t *TokenIssuer) Issue(session storage.Session) (string, error) {
	if strings.TrimSpace(session.ID) == "" {
		return "", errors.New("session id is required")
	}
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.Itoa(session.AccountID),
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		AccountID: session.AccountID,
		Name:      session.Name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks token and returns the session ID it carries.
func (t *TokenIssuer) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperrors.New(apperrors.CodeUnauthorized, "token is required")
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", mapJWTError(err)
	}
	if claims.ID == "" {
		return "", apperrors.New(apperrors.CodeUnauthorized, "token jti is required")
	}
	return claims.ID, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeUnauthorized, "token is expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.CodeUnauthorized, "token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.Wrap(apperrors.CodeUnauthorized, "token alg is invalid", err)
	default:
		return apperrors.Wrap(apperrors.CodeUnauthorized, "token is invalid", err)
	}
}
