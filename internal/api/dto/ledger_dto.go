package dto

import "github.com/shopspring/decimal"

type DepositRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

type ReportQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
	Limit string `form:"limit"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// BalanceResponse answers payments and deposits with the client's balance
// after the operation.
type BalanceResponse struct {
	Message string          `json:"message"`
	Balance decimal.Decimal `json:"balance"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
