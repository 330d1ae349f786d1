package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/dto"
	"github.com/cuongbtq/contractor-ledger/internal/api/service"
)

// AdminHandler serves the earnings reports.
type AdminHandler struct {
	logger  *slog.Logger
	reports Reports
}

func NewAdminHandler(deps *Dependencies) *AdminHandler {
	return &AdminHandler{
		logger:  deps.Logger,
		reports: deps.Reports,
	}
}

// BestProfession handles GET /admin/best-profession
func (h *AdminHandler) BestProfession(c *gin.Context) {
	_, period, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	row, err := h.reports.BestProfession(c.Request.Context(), period)
	if err != nil {
		h.logger.Error("Failed to compute best profession", slog.Any("error", err))
		respondInternal(c)
		return
	}

	// null when nothing was paid in the period
	c.JSON(http.StatusOK, row)
}

// BestClients handles GET /admin/best-clients
func (h *AdminHandler) BestClients(c *gin.Context) {
	query, period, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	limit := service.DefaultClientLimit
	if raw := strings.TrimSpace(query.Limit); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = parsed
	}

	rows, err := h.reports.BestClients(c.Request.Context(), period, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReportLimitExceeded):
			respondMessage(c, http.StatusUnauthorized, fmt.Sprintf("Can only request up to %d clients", service.MaxClientLimit))
		case errors.Is(err, domain.ErrInvalidInput):
			respondMessage(c, http.StatusBadRequest, "limit must be positive")
		default:
			h.logger.Error("Failed to compute best clients", slog.Any("error", err))
			respondInternal(c)
		}
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *AdminHandler) bindPeriod(c *gin.Context) (dto.ReportQuery, service.Period, bool) {
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid query parameters")
		return query, service.Period{}, false
	}

	start, err := parseDate(query.Start)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "start must be a date")
		return query, service.Period{}, false
	}
	end, err := parseDate(query.End)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "end must be a date")
		return query, service.Period{}, false
	}

	period, err := h.reports.ResolvePeriod(start, end)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "End date can not be older than start date")
		return query, service.Period{}, false
	}
	return query, period, true
}

// parseDate returns nil for an empty value so the report default applies.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, domain.ErrInvalidInput
}
