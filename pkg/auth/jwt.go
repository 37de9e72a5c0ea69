package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authentication credentials were not provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Schemes accepted in the Authorization header.
var Schemes = []string{"JWT", "Bearer"}

type JWT struct {
	Secret string
	TTL    time.Duration
}

func New(secret string, ttl time.Duration) *JWT {
	return &JWT{Secret: secret, TTL: ttl}
}

func (j *JWT) CreateToken(userID int, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(j.TTL).Unix(),
	})

	return token.SignedString([]byte(j.Secret))
}

// VerifyToken checks signature and expiry and returns the user id claim.
func (j *JWT) VerifyToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(j.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}

	return int(userID), nil
}

// ExtractToken returns the token from an Authorization header value using
// one of Schemes.
func ExtractToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return "", fmt.Errorf("%w: no credentials provided", ErrInvalidToken)
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", fmt.Errorf("%w: credentials string should not contain spaces", ErrInvalidToken)
	}

	for _, accepted := range Schemes {
		if strings.EqualFold(scheme, accepted) {
			return token, nil
		}
	}

	return "", ErrMissingToken
}
