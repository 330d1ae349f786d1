package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/dto"
)

type BalanceHandler struct {
	logger *slog.Logger
	ledger Ledger
}

func NewBalanceHandler(deps *Dependencies) *BalanceHandler {
	return &BalanceHandler{
		logger: deps.Logger,
		ledger: deps.Ledger,
	}
}

// Deposit handles POST /balances/deposit/:userId
func (h *BalanceHandler) Deposit(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "userId must be a number")
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid deposit body",
			slog.Int64("profile_id", clientID),
			slog.String("error", err.Error()),
		)
		respondMessage(c, http.StatusBadRequest, "amount must be a number")
		return
	}

	result, err := h.ledger.Deposit(c.Request.Context(), clientID, *req.Amount)
	if err != nil {
		var limitErr *domain.DepositLimitError
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.As(err, &limitErr):
			respondMessage(c, http.StatusBadRequest, limitErr.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			respondMessage(c, http.StatusBadRequest, "amount must be positive")
		default:
			h.logger.Error("Error while processing deposit for client",
				slog.Int64("profile_id", clientID),
				slog.String("amount", req.Amount.String()),
				slog.Any("error", err),
			)
			respondMessage(c, http.StatusBadRequest, "Error while processing deposit")
		}
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Message: "Deposit successfully processed",
		Balance: result.Balance,
	})
}
