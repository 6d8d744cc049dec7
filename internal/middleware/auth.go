// Package middleware provides logging, authentication, tracing and rate
// limiting for the HTTP layer.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TokenIssuer   = "friendmarket-api"
	TokenAudience = "friendmarket-client"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// TokenClaims is the decoded subset of a Friendmarket JWT.
type TokenClaims struct {
	UserID    uint
	ID        string
	Type      string
	ExpiresAt time.Time
}

type jwtClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token of the given type for userID.
func IssueToken(secret string, userID uint, tokenType string, ttl time.Duration) (string, *TokenClaims, error) {
	if secret == "" {
		return "", nil, errors.New("JWT secret not configured")
	}
	now := time.Now()
	claims := jwtClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, &TokenClaims{
		UserID:    userID,
		ID:        claims.ID,
		Type:      tokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ParseToken validates signature, issuer, audience and expiry.
func ParseToken(secret, raw string) (*TokenClaims, error) {
	var claims jwtClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	out := &TokenClaims{UserID: uint(userID), ID: claims.ID, Type: claims.Type}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// BlacklistKey is the Redis key marking a revoked jti.
func BlacklistKey(jti string) string {
	return "jwt:blacklist:" + jti
}

// RevokeToken blacklists the token until it would have expired anyway.
func RevokeToken(ctx context.Context, rdb *redis.Client, claims *TokenClaims) error {
	if rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, BlacklistKey(claims.ID), "1", ttl).Err()
}

// IsRevoked reports whether a jti was blacklisted. A nil client never revokes.
func IsRevoked(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the access token on the request. It stores userID and
// the claims in locals and the user ID in the request context.
func Authenticate(c *fiber.Ctx, secret string, rdb *redis.Client) error {
	raw := BearerToken(c)
	if raw == "" {
		return ErrInvalidToken
	}
	claims, err := ParseToken(secret, raw)
	if err != nil {
		return err
	}
	if claims.Type != TokenTypeAccess {
		return ErrInvalidToken
	}
	revoked, err := IsRevoked(c.UserContext(), rdb, claims.ID)
	if err != nil {
		Logger.WarnContext(c.UserContext(), "token blacklist lookup failed", "error", err)
	}
	if revoked {
		return ErrRevokedToken
	}

	c.Locals("userID", claims.UserID)
	c.Locals("tokenClaims", claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
	return nil
}
