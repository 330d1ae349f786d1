package domain

// Ledger event types, also used as routing keys by the API service
const (
	EventTypePaymentCompleted = "ledger.payment.completed"
	EventTypeDepositCompleted = "ledger.deposit.completed"
)
