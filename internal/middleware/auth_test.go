package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestParseAccessToken(t *testing.T) {
	valid, err := SignAccessToken(testSecret, "member-1", "jti-1", time.Hour)
	require.NoError(t, err)
	expired, err := SignAccessToken(testSecret, "member-1", "jti-2", -time.Hour)
	require.NoError(t, err)
	otherSecret, err := SignAccessToken("another-secret-another-secret-xx", "member-1", "jti-3", time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "member-1",
		"iss": "someone-else",
		"aud": TokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"Happy Path", valid, false},
		{"Expired Token", expired, true},
		{"Wrong Secret", otherSecret, true},
		{"Wrong Issuer", wrongIssuer, true},
		{"Missing Subject", noSubject, true},
		{"Malformed Token", "malformed.token.here", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseAccessToken(testSecret, tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "member-1", claims.MemberID)
			assert.Equal(t, "jti-1", claims.TokenID)
			assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
		})
	}
}

func TestBearerTokenAndIdentity(t *testing.T) {
	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		claims, err := ParseAccessToken(testSecret, token)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		SetIdentity(c, claims.MemberID, claims)
		id, _ := MemberID(c)
		jti, _, _ := TokenID(c)
		return c.JSON(fiber.Map{"memberID": id, "jti": jti})
	})

	token, err := SignAccessToken(testSecret, "abc", "t-1", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"Bearer token", "Bearer " + token, http.StatusOK},
		{"Missing header", "", http.StatusUnauthorized},
		{"Basic auth", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestIsLocalIdentity(t *testing.T) {
	assert.True(t, IsLocalIdentity("user-abc123xyz"))
	assert.False(t, IsLocalIdentity("user-ABC123XYZ"))
	assert.False(t, IsLocalIdentity("user-short"))
	assert.False(t, IsLocalIdentity("member-abc123xyz"))
	assert.False(t, IsLocalIdentity(""))
}
