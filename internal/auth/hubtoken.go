package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// A client negotiates, opens the socket, and renegotiates after a
// disconnect, so hub tokens only need to outlive one connection attempt.
const hubTokenTTL = time.Hour

// GenerateHubToken issues the access token returned by the negotiate
// endpoint.
func GenerateHubToken(secret, userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(hubTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseHubToken validates a negotiate token and returns the user id it was
// issued for.
func ParseHubToken(secret, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", errors.New("invalid claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("invalid claims")
	}
	return userID, nil
}
