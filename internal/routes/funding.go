package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/funding"
)

// RegisterFundingRoutes wires the development faucet.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler) {
	r.Post("/dev/faucet", h.Faucet)
}
