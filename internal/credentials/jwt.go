package credentials

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// UserKeyFromToken extracts the user key from the access token's "sub"
// claim without verifying the signature. Verification is the server's job;
// the engine only needs a stable identity to key local state by.
func UserKeyFromToken(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token subject is empty")
	}

	return sub, nil
}
