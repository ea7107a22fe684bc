package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/addrset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/ledger"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/middleware"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type initializeRequest struct {
	Owner     string   `json:"owner"`
	Delegates []string `json:"delegates"`
}

type delegateRequest struct {
	Delegate string `json:"delegate"`
}

type transferRequest struct {
	Recipient string          `json:"recipient"`
	Asset     string          `json:"asset"`
	Amount    decimal.Decimal `json:"amount"`
}

type depositRequest struct {
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

type walletResponse struct {
	Address          address.Address   `json:"address"`
	Owner            address.Address   `json:"owner"`
	Delegates        []address.Address `json:"delegates"`
	Initialized      bool              `json:"initialized"`
	BlockInitialized uint64            `json:"block_initialized"`
}

func toResponse(info Info) walletResponse {
	delegates := info.Delegates
	if delegates == nil {
		delegates = []address.Address{}
	}
	return walletResponse{
		Address:          info.Address,
		Owner:            info.Owner,
		Delegates:        delegates,
		Initialized:      info.Initialized,
		BlockInitialized: info.BlockInitialized,
	}
}

// Deploy stores a new uninitialized wallet.
func (h *Handler) Deploy(c *fiber.Ctx) error {
	w, err := h.service.Deploy(c.UserContext())
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(w.Info()))
}

// Get returns the wallet's owner, delegates and initialization state.
func (h *Handler) Get(c *fiber.Ctx) error {
	addr, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	info, err := h.service.Get(c.UserContext(), addr)
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(info))
}

// Initialize claims an uninitialized wallet. The owner defaults to the caller.
func (h *Handler) Initialize(c *fiber.Ctx) error {
	addr, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	var req initializeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	owner, _ := middleware.CallerFrom(c)
	if req.Owner != "" {
		if owner, err = address.Parse(req.Owner); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	delegates, err := address.ParseList(req.Delegates)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	info, err := h.service.Initialize(c.UserContext(), addr, owner, delegates)
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(info))
}

// AddDelegate grants a delegate the right to transfer.
func (h *Handler) AddDelegate(c *fiber.Ctx) error {
	addr, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	var req delegateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	d, err := address.Parse(req.Delegate)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	caller, _ := middleware.CallerFrom(c)
	delegates, err := h.service.AddDelegate(c.UserContext(), addr, caller, d)
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"wallet": addr, "delegates": delegates})
}

// RemoveDelegate revokes a delegate.
func (h *Handler) RemoveDelegate(c *fiber.Ctx) error {
	addr, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	d, err := address.Parse(c.Params("delegate"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	caller, _ := middleware.CallerFrom(c)
	delegates, err := h.service.RemoveDelegate(c.UserContext(), addr, caller, d)
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"wallet": addr, "delegates": delegates})
}

// Transfer sends funds out of the wallet on behalf of the caller.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	addr, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	recipient, err := address.Parse(req.Recipient)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := asset.Parse(req.Asset)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	caller, _ := middleware.CallerFrom(c)
	res, err := h.service.Transfer(c.UserContext(), TransferInput{
		Wallet:    addr,
		Caller:    caller,
		Recipient: recipient,
		Asset:     a,
		Amount:    req.Amount,
	})
	if err != nil {
		return HTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"wallet":         res.Wallet,
		"recipient":      res.Recipient,
		"asset":          res.Asset,
		"amount":         res.Amount,
		"wallet_balance": res.WalletBalance,
		"completed_at":   res.CompletedAt,
	})
}

// Deposit moves funds from the caller's ledger account into the wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	addr, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := asset.Parse(req.Asset)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	caller, _ := middleware.CallerFrom(c)
	balance, err := h.service.Deposit(c.UserContext(), addr, caller, a, req.Amount)
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(balanceResponse(balance))
}

// Balance returns the wallet balance in the asset named by the asset query
// parameter, native currency when absent.
func (h *Handler) Balance(c *fiber.Ctx) error {
	addr, err := address.Parse(c.Params("wallet"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := asset.Parse(c.Query("asset"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	balance, err := h.service.Balance(c.UserContext(), addr, a)
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(balanceResponse(balance))
}

func balanceResponse(b Balance) fiber.Map {
	return fiber.Map{
		"wallet":    b.Wallet,
		"asset":     b.Asset,
		"balance":   b.Amount,
		"timestamp": b.AsOf,
	}
}

// HTTPError maps wallet, delegate-set and ledger errors to HTTP errors.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAlreadyInitialized), errors.Is(err, addrset.ErrAlreadyMember), errors.Is(err, ErrWalletExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrWalletNotFound), errors.Is(err, addrset.ErrNotMember):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTransferFailed):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidOwner), errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, addrset.ErrIndexOutOfRange):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, "insufficient funds")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
