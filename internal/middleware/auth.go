package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/access"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	principalLocal = "principal"
	userIDLocal    = "userID"
	usernameLocal  = "username"
	claimsLocal    = "tokenClaims"
)

// IdentityResolver loads the current principal for a user. Returning an error
// (for instance because the credential was removed) leaves the request anonymous.
type IdentityResolver interface {
	ResolveByID(ctx context.Context, userID uint) (*access.Principal, error)
	ResolveByPassword(ctx context.Context, username, password string) (uint, *access.Principal, error)
}

// RevocationChecker reports whether a token id was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenConfig controls how access tokens are signed and verified.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims are the access token claims. Username is informational; the subject is authoritative.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for userID.
func (t TokenConfig) IssueToken(userID uint, username string) (string, error) {
	if t.Secret == "" {
		return "", errors.New("JWT secret not configured")
	}

	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    t.Issuer,
			Audience:  jwt.ClaimStrings{t.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()[:8]),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.Secret))
}

// ParseToken validates signature, issuer, audience and expiry.
func (t TokenConfig) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if t.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.Issuer))
	}
	if t.Audience != "" {
		opts = append(opts, jwt.WithAudience(t.Audience))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(t.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("invalid token: missing sub or jti")
	}
	return claims, nil
}

// AuthConfig wires ResolvePrincipal.
type AuthConfig struct {
	Tokens     TokenConfig
	Resolver   IdentityResolver
	Revoked    RevocationChecker
	AllowBasic bool
}

// ResolvePrincipal attaches a principal to every request. Requests without valid
// credentials continue as anonymous; services reject them where it matters.
func ResolvePrincipal(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		principal := access.Anonymous()

		scheme, value, _ := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		switch {
		case strings.EqualFold(scheme, "Bearer") && value != "":
			if userID, p, claims, ok := resolveBearer(ctx, cfg, value); ok {
				principal = p
				setIdentity(c, userID, p)
				c.Locals(claimsLocal, claims)
			}
		case strings.EqualFold(scheme, "Basic") && value != "" && cfg.AllowBasic:
			username, password, ok := decodeBasic(value)
			if ok {
				userID, p, err := cfg.Resolver.ResolveByPassword(ctx, username, password)
				if err == nil {
					principal = p
					setIdentity(c, userID, p)
				}
			}
		}

		c.Locals(principalLocal, principal)
		return c.Next()
	}
}

func resolveBearer(ctx context.Context, cfg AuthConfig, raw string) (uint, *access.Principal, *Claims, bool) {
	claims, err := cfg.Tokens.ParseToken(raw)
	if err != nil {
		return 0, nil, nil, false
	}
	if cfg.Revoked != nil {
		revoked, err := cfg.Revoked.IsRevoked(ctx, claims.ID)
		if err != nil || revoked {
			return 0, nil, nil, false
		}
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, nil, nil, false
	}
	p, err := cfg.Resolver.ResolveByID(ctx, uint(userID))
	if err != nil {
		return 0, nil, nil, false
	}
	return uint(userID), p, claims, true
}

func decodeBasic(value string) (string, string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

func setIdentity(c *fiber.Ctx, userID uint, p *access.Principal) {
	c.Locals(userIDLocal, userID)
	c.Locals(usernameLocal, p.Username)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// PrincipalFrom returns the principal attached by ResolvePrincipal, or an anonymous one.
func PrincipalFrom(c *fiber.Ctx) *access.Principal {
	if p, ok := c.Locals(principalLocal).(*access.Principal); ok && p != nil {
		return p
	}
	return access.Anonymous()
}

// TokenClaimsFrom returns the verified bearer token claims, if the request carried one.
func TokenClaimsFrom(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsLocal).(*Claims)
	return claims, ok && claims != nil
}

// AuthRequired rejects anonymous requests before the handler runs.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := access.CheckAuthenticated(PrincipalFrom(c)); err != nil {
			return models.RespondWithError(c, err)
		}
		return c.Next()
	}
}
