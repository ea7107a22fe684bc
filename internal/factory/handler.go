package factory

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/middleware"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/wallet"
)

// Handler exposes factory endpoints.
type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

type createRequest struct {
	Delegates []string `json:"delegates"`
}

// Info returns the factory's blueprint, creation block and the salt and
// address of its next wallet.
func (h *Handler) Info(c *fiber.Ctx) error {
	f, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"address":       f.Address(),
		"blueprint":     f.Blueprint(),
		"block_created": f.BlockCreated(),
		"produced":      f.Produced(),
		"salt":          hex.EncodeToString(f.Salt()),
		"next":          f.Predict(),
	})
}

// CreateWallet creates a wallet owned by the caller without recording it in
// the registry.
func (h *Handler) CreateWallet(c *fiber.Ctx) error {
	f, err := h.lookup(c)
	if err != nil {
		return err
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	delegates, err := address.ParseList(req.Delegates)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	caller, _ := middleware.CallerFrom(c)
	addr, err := f.CreateWallet(c.UserContext(), caller, delegates)
	if err != nil {
		return wallet.HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"wallet": addr, "owner": caller, "factory": f.Address()})
}

func (h *Handler) lookup(c *fiber.Ctx) (*Factory, error) {
	addr, err := address.Parse(c.Params("factory"))
	if err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	f, err := h.catalog.Resolve(addr)
	if errors.Is(err, ErrFactoryNotFound) {
		return nil, fiber.NewError(http.StatusNotFound, err.Error())
	}
	return f, err
}
