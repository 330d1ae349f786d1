package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
)

// ContractHandler serves the acting profile's contracts and unpaid jobs.
type ContractHandler struct {
	logger    *slog.Logger
	contracts ContractStore
}

func NewContractHandler(deps *Dependencies) *ContractHandler {
	return &ContractHandler{
		logger:    deps.Logger,
		contracts: deps.Contracts,
	}
}

// GetContract handles GET /contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	profile, ok := ProfileFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	contractID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	contract, err := h.contracts.GetContractForProfile(c.Request.Context(), contractID, profile.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get contract",
			slog.Int64("profile_id", profile.ID),
			slog.Int64("contract_id", contractID),
			slog.Any("error", err),
		)
		respondInternal(c)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// ListContracts handles GET /contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	profile, ok := ProfileFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	contracts, err := h.contracts.ListActiveContracts(c.Request.Context(), profile.ID)
	if err != nil {
		h.logger.Error("Failed to list contracts",
			slog.Int64("profile_id", profile.ID),
			slog.Any("error", err),
		)
		respondInternal(c)
		return
	}

	c.JSON(http.StatusOK, contracts)
}

// ListUnpaidJobs handles GET /jobs/unpaid
func (h *ContractHandler) ListUnpaidJobs(c *gin.Context) {
	profile, ok := ProfileFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	jobs, err := h.contracts.ListUnpaidJobs(c.Request.Context(), profile.ID)
	if err != nil {
		h.logger.Error("Failed to list unpaid jobs",
			slog.Int64("profile_id", profile.ID),
			slog.Any("error", err),
		)
		respondInternal(c)
		return
	}

	c.JSON(http.StatusOK, jobs)
}
