package middleware

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/argon2"

	"github.com/pynezz/nauthiz/internal/config"

	"github.com/pynezz/pynezzentials/ansi"
)

// Claims defines the structure of the JWT claims.
type Claims struct {
	Subject string `json:"subject"`
	jwt.RegisteredClaims
}

// Argon2 parameters for the API-key comparison. The salt is fixed: the
// point is a constant-time compare of derived keys, not storage of
// per-user hashes.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSalt    = "nauthizsalt"
)

func hashKey(key string) []byte {
	return argon2.IDKey([]byte(key), []byte(argonSalt), argonTime, argonMemory, argonThreads, argonKeyLen)
}

// KeysMatch compares a presented API key against the configured one
// via their argon2 derivations.
func KeysMatch(presented, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare(hashKey(presented), hashKey(configured)) == 1
}

// Bouncer gates the API routes. A request passes with a valid X-API-Key
// header, or with a Bearer token previously minted by the token
// endpoint. Everything else is turned away with 401 before any core
// code runs.
func Bouncer(cfg *config.Cfg) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-Key")
		if apiKey != "" {
			if KeysMatch(apiKey, cfg.APIKey()) {
				return c.Next()
			}
			prefix := apiKey
			if len(prefix) > 4 {
				prefix = prefix[:4]
			}
			ansi.PrintWarning("Invalid API key attempt: " + prefix + "...")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid API key"})
		}

		authHeader := c.Get("Authorization")
		splits := strings.Split(authHeader, " ")
		if len(splits) != 2 || splits[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Missing credentials"})
		}

		if err := VerifyToken(splits[1], cfg.JWTSecret()); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token"})
		}

		return c.Next()
	}
}

// GenerateToken mints a short-lived JWT for a caller that has already
// proven key possession.
func GenerateToken(subject, secretKey string, ttl time.Duration) (string, error) {
	claims := Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Issuer:    "nauthiz",
			Subject:   "APIAuthentication",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// VerifyToken validates a token minted by GenerateToken.
func VerifyToken(tokenString, secretKey string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure token's signing method matches
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		return fiber.ErrUnauthorized
	}
	return nil
}
