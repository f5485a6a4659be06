package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"starboard/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type tokenOverrides map[string]interface{}

func signTestToken(t *testing.T, overrides tokenOverrides) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": uuid.NewString(),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"jti": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	for k, v := range overrides {
		claims[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret}, nil)

	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	userID := uuid.NewString()

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID string
	}{
		{
			name:           "Happy Path",
			authHeader:     "Bearer " + signTestToken(t, tokenOverrides{"sub": userID}),
			expectedStatus: http.StatusOK,
			expectedUserID: userID,
		},
		{
			name:           "Missing Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + signTestToken(t, tokenOverrides{"exp": time.Now().Add(-time.Hour).Unix()}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Issuer",
			authHeader:     "Bearer " + signTestToken(t, tokenOverrides{"iss": "someone-else"}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Audience",
			authHeader:     "Bearer " + signTestToken(t, tokenOverrides{"aud": "other-client"}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Non-UUID Subject",
			authHeader:     "Bearer " + signTestToken(t, tokenOverrides{"sub": "12345"}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body["userID"])
			}
		})
	}
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret}, client)
	defer InitMiddleware(&config.Config{JWTSecret: testSecret}, nil)

	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	jti := uuid.NewString()
	token := signTestToken(t, tokenOverrides{"jti": jti})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Revoke and retry
	require.NoError(t, client.Set(context.Background(), BlacklistKey(jti), "revoked", time.Hour).Err())

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalAuth(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret}, nil)

	app.Get("/test", OptionalAuth, func(c *fiber.Ctx) error {
		if uid := c.Locals("userID"); uid != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": uid})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": nil})
	})

	userID := uuid.NewString()

	tests := []struct {
		name           string
		authHeader     string
		expectedUserID interface{}
	}{
		{
			name:           "Valid Token Sets Identity",
			authHeader:     "Bearer " + signTestToken(t, tokenOverrides{"sub": userID}),
			expectedUserID: userID,
		},
		{
			name:           "No Header Stays Anonymous",
			authHeader:     "",
			expectedUserID: nil,
		},
		{
			name:           "Invalid Token Stays Anonymous",
			authHeader:     "Bearer not.a.token",
			expectedUserID: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.expectedUserID, body["userID"])
		})
	}
}
