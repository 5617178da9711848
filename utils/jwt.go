package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// GenerateAdminToken signs an HS256 token carrying the is_admin claim.
func GenerateAdminToken(secret, subject string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      subject,
		"is_admin": true,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(secret, tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
}

// ExtractAdminSubject validates the token and returns its subject when the
// is_admin claim is set.
func ExtractAdminSubject(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", errors.New("admin auth is not configured")
	}
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	isAdmin, _ := claims["is_admin"].(bool)
	if !isAdmin {
		return "", errors.New("token is not an admin token")
	}

	sub, _ := claims["sub"].(string)
	return sub, nil
}
