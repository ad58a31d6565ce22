package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarAbonoRequest struct {
	OrderID string          `json:"orderId" validate:"required,uuid"`
	Amount  decimal.Decimal `json:"amount"  validate:"required"`
	// DiscountApplied is an optional early-payment discount percentage (0–100)
	DiscountApplied *decimal.Decimal `json:"discountApplied"`
	PaymentDate     *string          `json:"paymentDate"     validate:"omitempty,datetime=2006-01-02"`
	WithinDeadline  bool             `json:"withinDeadline"`
	Notes           *string          `json:"notes"           validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AbonoResponse struct {
	ID      string          `json:"id"`
	OrderID string          `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
	// DiscountApplied echoes the percentage; DiscountAmount is the amount
	// forgiven against the pending balance at payment time
	DiscountApplied decimal.Decimal `json:"discountApplied"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	PaymentDate     string          `json:"paymentDate"`
	WithinDeadline  bool            `json:"withinDeadline"`
	Notes           *string         `json:"notes"`
	RegisteredBy    string          `json:"registeredBy"`
	CreatedAt       string          `json:"createdAt"`
}

// AbonosPedidoResponse is the payment ledger of one order with the derived
// settlement totals.
type AbonosPedidoResponse struct {
	OrderID        string          `json:"orderId"`
	EffectiveTotal decimal.Decimal `json:"effectiveTotal"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	PendingBalance decimal.Decimal `json:"pendingBalance"`
	Abonos         []AbonoResponse `json:"abonos"`
}
