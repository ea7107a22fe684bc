package funding

import "github.com/shopspring/decimal"

// FaucetRequest asks the faucet to credit an account.
type FaucetRequest struct {
	Account string          `json:"account"`
	Asset   string          `json:"asset"`
	Amount  decimal.Decimal `json:"amount"`
}

// FaucetResponse reports a completed drip.
type FaucetResponse struct {
	TransactionID string          `json:"transaction_id"`
	Account       string          `json:"account"`
	Asset         string          `json:"asset"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
}
