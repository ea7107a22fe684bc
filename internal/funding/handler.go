package funding

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/ledger"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/middleware"
)

// Handler exposes the faucet endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Faucet credits the requested account, or the caller when none is given.
func (h *Handler) Faucet(c *fiber.Ctx) error {
	var req FaucetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	account, _ := middleware.CallerFrom(c)
	if req.Account != "" {
		var err error
		if account, err = address.Parse(req.Account); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	a, err := asset.Parse(req.Asset)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Drip(c.UserContext(), DripInput{Account: account, Asset: a, Amount: req.Amount})
	if err != nil {
		switch {
		case errors.Is(err, ErrDripTooLarge), errors.Is(err, ErrInvalidAccount), errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(FaucetResponse{
		TransactionID: res.TransactionID,
		Account:       res.Account.String(),
		Asset:         res.Asset.Code(),
		Amount:        res.Amount,
		Balance:       res.Balance,
	})
}
