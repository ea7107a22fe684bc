package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/events"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/factory"
)

// RegisterFactoryRoutes wires factory endpoints.
func RegisterFactoryRoutes(r fiber.Router, h *factory.Handler) {
	r.Get("/factories/:factory", h.Info)
	r.Post("/factories/:factory/wallets", h.CreateWallet)
}

// RegisterEventRoutes exposes the audit journal.
func RegisterEventRoutes(r fiber.Router, h *events.Handler) {
	r.Get("/events", h.List)
}
