package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/justArale/recipe-book-server/core"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AppClaims represents the custom claims for the JWT. Subject carries the
// user id and is the acting identity every ownership check runs against.
type AppClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type contextKey string

const claimsContextKey = contextKey("claims")

// WithClaims attaches parsed claims to a request context.
func WithClaims(ctx context.Context, claims *AppClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the claims the auth middleware stored, if any.
func ClaimsFromContext(ctx context.Context) (*AppClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*AppClaims)
	return claims, ok
}

// TokenManager signs and parses the bearer tokens issued at login.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret []byte) *TokenManager {
	if len(secret) == 0 {
		logrus.Warn("JWT secret is not set. Authentication will not work.")
	}
	return &TokenManager{secret: secret, ttl: 6 * time.Hour}
}

func (tm *TokenManager) Issue(user *core.User) (string, error) {
	now := time.Now()
	claims := AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
		Name:  user.Name,
		Email: user.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) Parse(tokenString string) (*AppClaims, error) {
	claims := &AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// BcryptVerifier implements core.CredentialVerifier with bcrypt.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) cost() int {
	if v.Cost == 0 {
		return 10
	}
	return v.Cost
}

func (v BcryptVerifier) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost())
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (v BcryptVerifier) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
