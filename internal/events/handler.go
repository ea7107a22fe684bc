package events

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

// Handler serves the journal over HTTP.
type Handler struct {
	journal *Journal
}

func NewHandler(journal *Journal) *Handler {
	return &Handler{journal: journal}
}

type eventResponse struct {
	ID        string           `json:"id"`
	Seq       uint64           `json:"seq"`
	Block     uint64           `json:"block"`
	Kind      Kind             `json:"kind"`
	Wallet    *address.Address `json:"wallet,omitempty"`
	Owner     *address.Address `json:"owner,omitempty"`
	Delegate  *address.Address `json:"delegate,omitempty"`
	Recipient *address.Address `json:"recipient,omitempty"`
	Asset     *asset.Asset     `json:"asset,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	At        time.Time        `json:"at"`
}

func optional(a address.Address) *address.Address {
	if a.IsZero() {
		return nil
	}
	return &a
}

func toResponse(e Event) eventResponse {
	out := eventResponse{
		ID:       e.ID,
		Seq:      e.Seq,
		Block:    e.Block,
		Kind:     e.Kind,
		Wallet:   optional(e.Wallet),
		Owner:    optional(e.Owner),
		Delegate: optional(e.Delegate),
		At:       e.At,
	}
	if e.Kind == KindTransferExecuted {
		recipient, a, amount := e.Recipient, e.Asset, e.Amount
		out.Recipient, out.Asset, out.Amount = &recipient, &a, &amount
	}
	return out
}

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// List returns the events recorded after the sequence number in the after
// query parameter, at most limit of them. next is the cursor for the
// following page.
func (h *Handler) List(c *fiber.Ctx) error {
	var after uint64
	if v := c.Query("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "after must be a non-negative integer")
		}
		after = n
	}
	limit := defaultPageSize
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxPageSize {
			return fiber.NewError(http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxPageSize))
		}
		limit = n
	}

	records := h.journal.AfterLimit(after, limit)
	out := make([]eventResponse, 0, len(records))
	next := after
	for _, e := range records {
		out = append(out, toResponse(e))
		next = e.Seq
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"events": out, "count": len(out), "next": next})
}
