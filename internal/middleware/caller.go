package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/auth"
)

const callerKey = "caller"

// CallerAuth validates bearer tokens and stores the caller address for
// handlers.
func CallerAuth(tokens *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		caller, err := tokens.Verify(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(callerKey, caller)
		return c.Next()
	}
}

// CallerFrom returns the caller stored by CallerAuth.
func CallerFrom(c *fiber.Ctx) (address.Address, bool) {
	caller, ok := c.Locals(callerKey).(address.Address)
	return caller, ok && !caller.IsZero()
}
