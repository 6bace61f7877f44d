package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/the-momentum/open-wearables-sync/models"
)

var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenIssuer mints and validates the HS256 token pairs the dev endpoint
// hands out. Refresh tokens are JWTs too, marked by a "typ" claim, so the
// issuer stays stateless.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue creates a fresh access/refresh pair for userKey.
func (t *TokenIssuer) Issue(userKey string) (models.TokenPair, error) {
	access, err := t.sign(userKey, "access", t.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := t.sign(userKey, "refresh", t.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateAccess checks an access token and returns its user key.
func (t *TokenIssuer) ValidateAccess(tokenString string) (string, error) {
	return t.validate(tokenString, "access")
}

// Rotate validates a refresh token and issues a new pair for its user.
func (t *TokenIssuer) Rotate(refreshToken string) (models.TokenPair, error) {
	userKey, err := t.validate(refreshToken, "refresh")
	if err != nil {
		return models.TokenPair{}, err
	}
	return t.Issue(userKey)
}

func (t *TokenIssuer) sign(userKey, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userKey,
		"typ": typ,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (t *TokenIssuer) validate(tokenString, wantTyp string) (string, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != wantTyp {
		return "", ErrTokenInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}
