package dto

import "github.com/shopspring/decimal"

// The credit-limit and initial-balance endpoints take an ?amount= query
// parameter with no body, so this file only carries responses.

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PedidoPendienteResponse is one order with money still owed, inside a
// client balance rollup.
type PedidoPendienteResponse struct {
	OrderID        string          `json:"orderId"`
	EffectiveTotal decimal.Decimal `json:"effectiveTotal"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	PendingBalance decimal.Decimal `json:"pendingBalance"`
	Estado         string          `json:"estado"`
	CreatedAt      string          `json:"createdAt"`
}

type SaldoClienteResponse struct {
	ClienteID         string                    `json:"clientId"`
	Cliente           string                    `json:"cliente"`
	TotalOrdered      decimal.Decimal           `json:"totalOrdered"`
	TotalPaid         decimal.Decimal           `json:"totalPaid"`
	PendingBalance    decimal.Decimal           `json:"pendingBalance"`
	InitialBalance    decimal.Decimal           `json:"initialBalance"`
	InitialBalanceSet bool                      `json:"initialBalanceSet"`
	CreditLimit       *decimal.Decimal          `json:"creditLimit"`
	PendingOrders     []PedidoPendienteResponse `json:"pendingOrders"`
}

type SaldoListResponse struct {
	Data []SaldoClienteResponse `json:"data"`
}
