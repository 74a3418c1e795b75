package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

var (
	defaultTokenLookup       = "cookie:" + AccessTokenCookie + ",header:" + fiber.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// TokenValidator validates raw tokens into structured claims.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

type MiddlewareConfig struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	ContextKey     string
	TokenLookup    string
	AuthScheme     string
	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// RequireSeller rejects sessions whose account is not a seller.
	RequireSeller bool
	// RequireAdmin rejects sessions whose account is not an admin.
	RequireAdmin bool
}

// Protected returns a middleware that resolves the session token from
// the cookie first, then the Authorization header, validates it, and
// stores the claims under ContextKey.
func Protected(config ...MiddlewareConfig) fiber.Handler {
	cfg := getDefaultMiddlewareConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, GetExtractors(cfg.TokenLookup, cfg.AuthScheme))
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := enforceRoles(claims, cfg); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		return cfg.SuccessHandler(c)
	}
}

func enforceRoles(claims AuthClaims, cfg MiddlewareConfig) error {
	if cfg.RequireSeller && !claims.IsSeller() {
		return goerrors.New("seller account required", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden)
	}

	if cfg.RequireAdmin && !claims.IsAdmin() {
		return goerrors.New("admin account required", goerrors.CategoryAuthz).
			WithCode(goerrors.CodeForbidden)
	}

	return nil
}

func getDefaultMiddlewareConfig(config ...MiddlewareConfig) (cfg MiddlewareConfig) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			if err.Error() == ErrJWTMissingOrMalformed.Error() {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"error":   ErrJWTMissingOrMalformed.Error(),
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// SessionFromContext returns the session stored by Protected.
func SessionFromContext(c *fiber.Ctx, key string) (*SessionObject, error) {
	stored := c.Locals(key)
	if stored == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := stored.(AuthClaims)
	if claims == nil || !ok {
		return nil, ErrUnableToDecodeSession
	}

	return sessionFromAuthClaims(claims)
}

func ExtractRawToken(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// GetExtractors parses a lookup string like
// "cookie:accessToken,header:Authorization" into extractor funcs.
func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

type JWTExtractor func(c *fiber.Ctx) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			fmt.Println("[WARNING] Missing auth scheme in config definition")
			return "", ErrJWTMissingOrMalformed
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
