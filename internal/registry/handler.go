package registry

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/middleware"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/wallet"
)

// FactoryResolver finds the factory to create wallets with. The zero address
// selects the default factory.
type FactoryResolver func(addr address.Address) (Factory, error)

// Handler exposes registry endpoints.
type Handler struct {
	registry *Registry
	resolve  FactoryResolver
}

func NewHandler(registry *Registry, resolve FactoryResolver) *Handler {
	return &Handler{registry: registry, resolve: resolve}
}

type createRequest struct {
	Factory   string   `json:"factory"`
	Delegates []string `json:"delegates"`
}

type adoptRequest struct {
	Wallet string `json:"wallet"`
}

// CreateWallet creates a wallet owned by the caller and records it.
func (h *Handler) CreateWallet(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	factoryAddr := address.Zero
	if req.Factory != "" {
		var err error
		if factoryAddr, err = address.Parse(req.Factory); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	delegates, err := address.ParseList(req.Delegates)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	f, err := h.resolve(factoryAddr)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}

	caller, _ := middleware.CallerFrom(c)
	addr, err := h.registry.CreateWallet(c.UserContext(), caller, f, delegates)
	if err != nil {
		return wallet.HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"wallet": addr,
		"owner":  caller,
		"total":  h.registry.TotalWallets(caller),
	})
}

// AddWallet records an existing wallet under the caller.
func (h *Handler) AddWallet(c *fiber.Ctx) error {
	var req adoptRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := address.Parse(req.Wallet)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	caller, _ := middleware.CallerFrom(c)
	if err := h.registry.AddWallet(c.UserContext(), caller, w); err != nil {
		return wallet.HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"wallet": w,
		"owner":  caller,
		"total":  h.registry.TotalWallets(caller),
	})
}

// RemoveWallet forgets a wallet for the caller.
func (h *Handler) RemoveWallet(c *fiber.Ctx) error {
	w, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	caller, _ := middleware.CallerFrom(c)
	if err := h.registry.RemoveWallet(c.UserContext(), caller, w); err != nil {
		return wallet.HTTPError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Wallets lists an owner's wallets.
func (h *Handler) Wallets(c *fiber.Ctx) error {
	owner, err := address.Parse(c.Params("owner"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	wallets := h.registry.Wallets(owner)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"owner":   owner,
		"wallets": wallets,
		"total":   len(wallets),
	})
}

// Lookup reports whether an owner tracks a wallet and at which position.
func (h *Handler) Lookup(c *fiber.Ctx) error {
	owner, err := address.Parse(c.Params("owner"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	idx, err := h.registry.IndexOf(owner, w)
	if err != nil {
		return wallet.HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"owner": owner, "wallet": w, "index": idx})
}

// Index returns the owner's wallet at a position.
func (h *Handler) Index(c *fiber.Ctx) error {
	owner, err := address.Parse(c.Params("owner"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	i, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "index must be an integer")
	}
	w, err := h.registry.Index(owner, i)
	if err != nil {
		return wallet.HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"owner": owner, "wallet": w, "index": i})
}

// Info returns the registry's creation block.
func (h *Handler) Info(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"block_created": h.registry.BlockCreated()})
}
