// Package middleware provides authentication, logging, rate limiting and
// telemetry middleware for the HTTP API.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"clubboard/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenIssuer is the iss claim of access tokens.
	TokenIssuer = "clubboard-api"
	// TokenAudience is the aud claim of access tokens.
	TokenAudience = "clubboard-client"
	// LocalIdentityHeader carries a device-generated member id.
	LocalIdentityHeader = "X-Member-ID"

	memberIDLocal = "memberID"
	tokenIDLocal  = "tokenID"
	tokenExpLocal = "tokenExp"
)

var localIdentityPattern = regexp.MustCompile(`^user-[0-9a-z]{9}$`)

// IsLocalIdentity reports whether id has the shape of a device-generated member id.
func IsLocalIdentity(id string) bool {
	return localIdentityPattern.MatchString(id)
}

// AccessClaims are the validated parts of an access token.
type AccessClaims struct {
	MemberID  string
	TokenID   string
	ExpiresAt time.Time
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// ParseAccessToken validates signature, expiry, issuer and audience.
func ParseAccessToken(secret, tokenString string) (*AccessClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("invalid subject claim")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("invalid expiration claim")
	}
	jti, _ := claims["jti"].(string)

	return &AccessClaims{MemberID: sub, TokenID: jti, ExpiresAt: exp.Time}, nil
}

// SignAccessToken issues an HS256 access token for memberID.
func SignAccessToken(secret, memberID, tokenID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": memberID,
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": tokenID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// SetIdentity stores the resolved caller on the Fiber and request contexts.
func SetIdentity(c *fiber.Ctx, memberID string, claims *AccessClaims) {
	c.Locals(memberIDLocal, memberID)
	if claims != nil {
		c.Locals(tokenIDLocal, claims.TokenID)
		c.Locals(tokenExpLocal, claims.ExpiresAt)
	}
	c.SetUserContext(context.WithValue(c.UserContext(), observability.MemberIDKey, memberID))
}

// MemberID returns the authenticated member id, if any.
func MemberID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(memberIDLocal).(string)
	return id, ok && id != ""
}

// TokenID returns the jti and expiry of the token used for this request.
func TokenID(c *fiber.Ctx) (string, time.Time, bool) {
	jti, ok := c.Locals(tokenIDLocal).(string)
	if !ok || jti == "" {
		return "", time.Time{}, false
	}
	exp, _ := c.Locals(tokenExpLocal).(time.Time)
	return jti, exp, true
}
