package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/ledger"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/middleware"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/registry"
)

// RegisterMeRoute exposes the caller's own account: its tracked wallets and
// its native ledger balance.
func RegisterMeRoute(r fiber.Router, reg *registry.Registry, led ledger.Ledger) {
	r.Get("/me", func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFrom(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized")
		}
		bal, err := led.Balance(c.UserContext(), caller, asset.Native())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"address": caller,
			"wallets": reg.Wallets(caller),
			"balance": bal,
		})
	})
}
