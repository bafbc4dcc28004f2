package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/traitview/traitview/config"
)

var (
	ErrMissingToken = errors.New("authorization token required")
	ErrInvalidToken = errors.New("invalid authorization token")
)

// Session identifies the caller of an admin request. Handlers receive it
// through FromContext; nothing else holds it.
type Session struct {
	UserID   uint
	TenantID uint
	Role     Role
}

type Claims struct {
	UserID   uint `json:"user_id"`
	TenantID uint `json:"tenant_id"`
	Role     Role `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(cfg *config.Config) *Issuer {
	ttl := time.Duration(cfg.Auth.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(cfg.Auth.JWTSecret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(s Session) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	if !s.Role.Valid() {
		return "", fmt.Errorf("unknown role %q", s.Role)
	}
	now := i.now()
	claims := Claims{
		UserID:   s.UserID,
		TenantID: s.TenantID,
		Role:     s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(s.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) Parse(tokenString string) (Session, error) {
	if len(i.secret) == 0 {
		return Session{}, ErrInvalidToken
	}
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.Role.Valid() || claims.TenantID == 0 {
		return Session{}, fmt.Errorf("%w: missing tenant or role", ErrInvalidToken)
	}
	return Session{UserID: claims.UserID, TenantID: claims.TenantID, Role: claims.Role}, nil
}

const contextKey = "auth_session"

// Initialize attaches s to the request.
func Initialize(ctx *gin.Context, s Session) {
	ctx.Set(contextKey, s)
}

// Teardown detaches the session once the request is done.
func Teardown(ctx *gin.Context) {
	ctx.Set(contextKey, nil)
}

func FromContext(ctx *gin.Context) (Session, bool) {
	v, ok := ctx.Get(contextKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}
