package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/contractor-ledger/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(allowedOrigins))

	r.GET("/health", handler.NewHealthHandler(deps).Check)

	contractHandler := handler.NewContractHandler(deps)
	jobHandler := handler.NewJobHandler(deps)
	balanceHandler := handler.NewBalanceHandler(deps)
	adminHandler := handler.NewAdminHandler(deps)

	requireProfile := RequireProfile(deps.Profiles, deps.Logger)

	contracts := r.Group("/contracts", requireProfile)
	{
		contracts.GET("/:id", contractHandler.GetContract)
		contracts.GET("", contractHandler.ListContracts)
	}

	jobs := r.Group("/jobs", requireProfile)
	{
		jobs.GET("/unpaid", contractHandler.ListUnpaidJobs)
		jobs.POST("/:job_id/pay", jobHandler.PayJob)
	}

	// Deposits and reports are not scoped to the caller's profile.
	r.POST("/balances/deposit/:userId", balanceHandler.Deposit)

	admin := r.Group("/admin")
	{
		admin.GET("/best-profession", adminHandler.BestProfession)
		admin.GET("/best-clients", adminHandler.BestClients)
	}

	return r
}
