package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ustaad-pk/ustaad_be/internal/utils"
)

const (
	LocalExternalID = "externalId"
	LocalProfile    = "profile"

	SessionCookie = "__session"
)

// TokenFromRequest reads the bearer token, falling back to the session cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	return c.Cookies(SessionCookie)
}

// Identity verifies the identity-provider token and stores its subject.
func Identity(secret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := utils.ParseIdentityToken(tokenStr, secret, issuer)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(LocalExternalID, claims.Subject)
		return c.Next()
	}
}

func ExternalID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalExternalID).(string)
	return s
}
