// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"strings"

	"starboard/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenIssuer and TokenAudience are the expected iss/aud claims on every
// access token this service accepts.
const (
	TokenIssuer   = "starboard-api"
	TokenAudience = "starboard-client"
)

var (
	cfg *config.Config
	rdb *redis.Client
)

// InitMiddleware initializes authentication middleware with the given config
// and Redis client. The Redis client backs the token revocation list and may
// be nil, in which case revocation checks are skipped.
func InitMiddleware(c *config.Config, r *redis.Client) {
	cfg = c
	rdb = r
}

// BlacklistKey returns the Redis key under which a revoked token id is stored.
func BlacklistKey(jti string) string {
	return "jwt:blacklist:" + jti
}

// parseToken validates the token signature and registered claims and returns
// the caller's user id, or an error message suitable for the client.
func parseToken(c *fiber.Ctx, tokenString string) (string, string) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return "", "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "Invalid token claims"
	}

	// Reject tokens revoked by logout
	if jti, ok := claims["jti"].(string); ok && rdb != nil {
		if exists, err := rdb.Exists(c.UserContext(), BlacklistKey(jti)).Result(); err == nil && exists > 0 {
			return "", "Token has been revoked"
		}
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return "", "Invalid token structure - missing subject"
	}

	if _, err := uuid.Parse(subStr); err != nil {
		return "", "Invalid user ID in token"
	}

	return subStr, ""
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// On success the caller's user id is stored in c.Locals("userID") as a string.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	userID, errMsg := parseToken(c, tokenString)
	if errMsg != "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": errMsg,
		})
	}

	storeUserID(c, userID)
	return c.Next()
}

// storeUserID records the caller's id in Locals for handlers and in the
// request context for the context-aware logger.
func storeUserID(c *fiber.Ctx, userID string) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// OptionalAuth resolves the caller's identity when a valid bearer token is
// present but never rejects the request. Anonymous and invalid-token requests
// proceed with no userID set; read endpoints use this to personalize
// user_rating without requiring login.
func OptionalAuth(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Next()
	}

	if userID, errMsg := parseToken(c, tokenString); errMsg == "" {
		storeUserID(c, userID)
	}

	return c.Next()
}
