package sideshift

import "time"

// ShiftStatus is the provider-side lifecycle state of an order.
type ShiftStatus string

const (
	StatusWaiting    ShiftStatus = "waiting"
	StatusPending    ShiftStatus = "pending"
	StatusProcessing ShiftStatus = "processing"
	StatusSettled    ShiftStatus = "settled"
	StatusRefunding  ShiftStatus = "refunding"
	StatusRefunded   ShiftStatus = "refunded"
)

// Permissions reports what the provider allows for the calling jurisdiction.
type Permissions struct {
	CreateShift bool `json:"createShift"`
}

// Pair is a variable-rate quote for depositCoin/depositNetwork ->
// settleCoin/settleNetwork. Rate may be empty when the provider cannot
// price the pair without an amount.
type Pair struct {
	Min            string `json:"min" validate:"required"`
	Max            string `json:"max" validate:"required"`
	Rate           string `json:"rate"`
	DepositCoin    string `json:"depositCoin" validate:"required"`
	SettleCoin     string `json:"settleCoin" validate:"required"`
	DepositNetwork string `json:"depositNetwork" validate:"required"`
	SettleNetwork  string `json:"settleNetwork" validate:"required"`
}

// Shift is an order tracked by the provider.
type Shift struct {
	ID             string      `json:"id" validate:"required"`
	CreatedAt      time.Time   `json:"createdAt"`
	DepositCoin    string      `json:"depositCoin" validate:"required"`
	SettleCoin     string      `json:"settleCoin" validate:"required"`
	DepositNetwork string      `json:"depositNetwork" validate:"required"`
	SettleNetwork  string      `json:"settleNetwork" validate:"required"`
	DepositAddress string      `json:"depositAddress" validate:"required"`
	SettleAddress  string      `json:"settleAddress"`
	DepositMin     string      `json:"depositMin"`
	DepositMax     string      `json:"depositMax"`
	DepositAmount  string      `json:"depositAmount"`
	SettleAmount   string      `json:"settleAmount"`
	RefundAddress  string      `json:"refundAddress"`
	Type           string      `json:"type"`
	Status         ShiftStatus `json:"status" validate:"required"`
	ExpiresAt      time.Time   `json:"expiresAt"`
}

// VariableShiftRequest creates a variable-rate order. The deposit and settle
// coin/network fields must carry the exact pair returned by the quote the
// order is based on.
type VariableShiftRequest struct {
	SettleAddress  string `json:"settleAddress" validate:"required"`
	DepositCoin    string `json:"depositCoin" validate:"required"`
	SettleCoin     string `json:"settleCoin" validate:"required"`
	DepositNetwork string `json:"depositNetwork" validate:"required"`
	SettleNetwork  string `json:"settleNetwork" validate:"required"`
	RefundAddress  string `json:"refundAddress,omitempty"`
	SettleMemo     string `json:"settleMemo,omitempty"`
	AffiliateID    string `json:"affiliateId,omitempty"`
	CommissionRate string `json:"commissionRate,omitempty"`
}

// FixedQuoteRequest asks for a time-boxed locked rate. Exactly one of
// DepositAmount or SettleAmount should be set.
type FixedQuoteRequest struct {
	DepositCoin    string `json:"depositCoin" validate:"required"`
	DepositNetwork string `json:"depositNetwork" validate:"required"`
	SettleCoin     string `json:"settleCoin" validate:"required"`
	SettleNetwork  string `json:"settleNetwork" validate:"required"`
	DepositAmount  string `json:"depositAmount,omitempty"`
	SettleAmount   string `json:"settleAmount,omitempty"`
	AffiliateID    string `json:"affiliateId,omitempty"`
	CommissionRate string `json:"commissionRate,omitempty"`
}

// FixedQuote is a locked rate that must be redeemed before ExpiresAt.
type FixedQuote struct {
	ID             string    `json:"id" validate:"required"`
	CreatedAt      time.Time `json:"createdAt"`
	DepositCoin    string    `json:"depositCoin" validate:"required"`
	SettleCoin     string    `json:"settleCoin" validate:"required"`
	DepositNetwork string    `json:"depositNetwork" validate:"required"`
	SettleNetwork  string    `json:"settleNetwork" validate:"required"`
	Rate           string    `json:"rate" validate:"required"`
	DepositAmount  string    `json:"depositAmount"`
	SettleAmount   string    `json:"settleAmount"`
	ExpiresAt      time.Time `json:"expiresAt" validate:"required"`
}

// FixedShiftRequest redeems a fixed quote into an order.
type FixedShiftRequest struct {
	QuoteID       string `json:"quoteId" validate:"required"`
	SettleAddress string `json:"settleAddress" validate:"required"`
	RefundAddress string `json:"refundAddress,omitempty"`
	SettleMemo    string `json:"settleMemo,omitempty"`
	AffiliateID   string `json:"affiliateId,omitempty"`
}

// CancelResult marks a successful cancellation request.
type CancelResult struct {
	Success bool `json:"success"`
}
