package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bryanlu3000/sign-in-demo/internal/config"
)

// GenerateAccessToken creates a short-lived signed JWT carrying the user's email
func GenerateAccessToken(cfg *config.Config, email string) (string, error) {
	return sign(email, cfg.JWT.AccessSecret, cfg.JWT.AccessTokenTTL)
}

// GenerateRefreshToken creates the long-lived refresh JWT. It is signed with a
// secret distinct from the access secret.
func GenerateRefreshToken(cfg *config.Config, email string) (string, error) {
	return sign(email, cfg.JWT.RefreshSecret, cfg.JWT.RefreshTokenTTL)
}

func sign(email, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// VerifyToken checks signature and expiry and returns the email claim.
// Only HMAC-signed tokens are accepted.
func VerifyToken(raw, secret string) (string, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("email claim not present")
	}
	return email, nil
}
