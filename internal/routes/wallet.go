package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/registry"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/wallet"
)

// RegisterRegistryRoutes wires per-owner wallet bookkeeping.
func RegisterRegistryRoutes(r fiber.Router, h *registry.Handler) {
	r.Get("/registry", h.Info)
	r.Post("/wallets", h.CreateWallet)
	r.Post("/wallets/adopt", h.AddWallet)
	r.Delete("/wallets/:wallet", h.RemoveWallet)
	r.Get("/owners/:owner/wallets", h.Wallets)
	r.Get("/owners/:owner/wallets/index/:index", h.Index)
	r.Get("/owners/:owner/wallets/:wallet", h.Lookup)
}

// RegisterWalletRoutes wires endpoints acting on a single wallet.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets/deploy", h.Deploy)
	r.Get("/wallets/:wallet", h.Get)
	r.Post("/wallets/:wallet/initialize", h.Initialize)
	r.Post("/wallets/:wallet/delegates", h.AddDelegate)
	r.Delete("/wallets/:wallet/delegates/:delegate", h.RemoveDelegate)
	r.Post("/wallets/:wallet/transfers", h.Transfer)
	r.Post("/wallets/:wallet/deposits", h.Deposit)
	r.Get("/wallets/:wallet/balance", h.Balance)
}
