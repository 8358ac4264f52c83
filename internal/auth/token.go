package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/nxsys/task-tracker/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. A non-positive ttl defaults to 24 hours.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes the JWT payload.
type Claims struct {
	UserID         int64  `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	SeniorityLevel int    `json:"seniority_level"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the user.
func (tm *TokenManager) GenerateToken(user *domain.User) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		UserID:         user.ID,
		Email:          user.Email,
		Name:           user.Name,
		SeniorityLevel: user.SeniorityLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature and expiry and returns the claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
