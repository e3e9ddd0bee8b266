package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims of a voice caller
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService validates the bearer tokens callers present to the voice
// surfaces. With no secret configured, auth is disabled.
type TokenService struct {
	jwtSecret string
	tokenTTL  time.Duration
}

func NewTokenService(jwtSecret string, tokenTTL time.Duration) *TokenService {
	if tokenTTL == 0 {
		tokenTTL = time.Hour
	}
	return &TokenService{jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *TokenService) Enabled() bool {
	return s != nil && s.jwtSecret != ""
}

// ValidateToken parses an HS256 token and returns its claims.
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueToken signs an access token for userID.
func (s *TokenService) IssueToken(userID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
