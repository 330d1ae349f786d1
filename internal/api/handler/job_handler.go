package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/dto"
	"github.com/cuongbtq/contractor-ledger/internal/api/service"
)

// JobHandler handles job payments
type JobHandler struct {
	logger *slog.Logger
	ledger Ledger
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger: deps.Logger,
		ledger: deps.Ledger,
	}
}

// PayJob handles POST /jobs/:job_id/pay
// Moves the job price from the acting client to the job's contractor.
func (h *JobHandler) PayJob(c *gin.Context) {
	profile, ok := ProfileFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	jobID, err := strconv.ParseInt(c.Param("job_id"), 10, 64)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	contractor, err := h.ledger.ResolveContractor(c.Request.Context(), profile, jobID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			c.Status(http.StatusForbidden)
		case errors.Is(err, domain.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			h.logger.Error("Failed to resolve contractor",
				slog.Int64("profile_id", profile.ID),
				slog.Int64("job_id", jobID),
				slog.Any("error", err),
			)
			respondInternal(c)
		}
		return
	}

	result, err := h.ledger.PayJob(c.Request.Context(), service.PaymentInput{
		ClientID:     profile.ID,
		ContractorID: contractor.ID,
		JobID:        jobID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			respondMessage(c, http.StatusBadRequest, "Insufficient balance to pay for this job")
			return
		}
		h.logger.Error("Error while updating balance for user",
			slog.Int64("profile_id", profile.ID),
			slog.Int64("job_id", jobID),
			slog.Any("error", err),
		)
		respondMessage(c, http.StatusBadRequest, "Error while processing payment")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Message: fmt.Sprintf("Job %d has been paid successfully. Remaining balance: %s", jobID, result.ClientBalance.String()),
		Balance: result.ClientBalance,
	})
}
