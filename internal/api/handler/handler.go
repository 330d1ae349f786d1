package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/cuongbtq/contractor-ledger/internal/api/dto"
	"github.com/cuongbtq/contractor-ledger/internal/api/model"
	"github.com/cuongbtq/contractor-ledger/internal/api/service"
)

// ProfileStore loads the acting profile for profile-scoped routes.
type ProfileStore interface {
	GetProfile(ctx context.Context, id int64) (*model.Profile, error)
}

type ContractStore interface {
	GetContractForProfile(ctx context.Context, contractID, profileID int64) (*model.Contract, error)
	ListActiveContracts(ctx context.Context, profileID int64) ([]model.Contract, error)
	ListUnpaidJobs(ctx context.Context, profileID int64) ([]model.Job, error)
}

type Ledger interface {
	ResolveContractor(ctx context.Context, payer *model.Profile, jobID int64) (*model.Profile, error)
	PayJob(ctx context.Context, input service.PaymentInput) (*service.PaymentResult, error)
	Deposit(ctx context.Context, clientID int64, amount decimal.Decimal) (*service.DepositResult, error)
}

type Reports interface {
	ResolvePeriod(start, end *time.Time) (service.Period, error)
	BestProfession(ctx context.Context, period service.Period) (*model.ProfessionEarnings, error)
	BestClients(ctx context.Context, period service.Period, limit int) ([]model.ClientSpending, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	ServiceName string
	Logger      *slog.Logger
	Profiles    ProfileStore
	Contracts   ContractStore
	Ledger      Ledger
	Reports     Reports
	Health      HealthChecker
}

const profileContextKey = "profile"

// SetProfile attaches the acting profile to the request.
func SetProfile(c *gin.Context, profile *model.Profile) {
	c.Set(profileContextKey, profile)
}

// ProfileFromContext returns the profile attached by SetProfile.
func ProfileFromContext(c *gin.Context) (*model.Profile, bool) {
	value, ok := c.Get(profileContextKey)
	if !ok {
		return nil, false
	}
	profile, ok := value.(*model.Profile)
	return profile, ok && profile != nil
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, dto.MessageResponse{Message: message})
}

func respondInternal(c *gin.Context) {
	respondMessage(c, http.StatusInternalServerError, "Internal server error")
}

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	service string
	health  HealthChecker
	logger  *slog.Logger
}

func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{
		service: deps.ServiceName,
		health:  deps.Health,
		logger:  deps.Logger,
	}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	if h.health != nil {
		if err := h.health.HealthCheck(c.Request.Context()); err != nil {
			h.logger.Warn("Health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unhealthy", Service: h.service})
			return
		}
	}

	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", Service: h.service})
}
