package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"  // errors reports invalid signing configuration
	"strconv" // strconv renders the subject claim
	"time"    // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Claims is the payload of an access token.  ID and Username identify the
// caller; the registered claims carry subject, issue and expiry times.
type Claims struct {
	UserID   uint64 `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is what a verified token proves about the caller.
type Identity struct {
	UserID    uint64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenManager issues and verifies HS256 access tokens.  The secret is set
// once at construction and never changes, so a TokenManager is safe for
// concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager.  An empty secret or non-positive
// TTL is a configuration error.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of m that reads the current time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

// Issue builds and signs a token for the user that expires ttl after now.
func (m *TokenManager) Issue(userID uint64, username string) (AccessToken, error) {
	iat := m.now().UTC().Truncate(time.Second)
	exp := iat.Add(m.ttl)
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks the signature, algorithm and expiry of raw and returns the
// embedded identity.  Any failure (malformed, bad signature, expired,
// missing claims) yields ok=false; Verify never returns an error.
func (m *TokenManager) Verify(raw string) (id Identity, ok bool) {
	if raw == "" {
		return Identity{}, false
	}
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid {
		return Identity{}, false
	}
	if claims.UserID == 0 || claims.Subject != strconv.FormatUint(claims.UserID, 10) {
		return Identity{}, false
	}
	id = Identity{UserID: claims.UserID, Username: claims.Username, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, true
}
