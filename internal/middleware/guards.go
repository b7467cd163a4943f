package middleware

import "github.com/gofiber/fiber/v2"

// Guards bundles the handlers routes stack in front of protected endpoints.
type Guards struct {
	Identity  fiber.Handler
	Profile   fiber.Handler
	RateLimit fiber.Handler
}
