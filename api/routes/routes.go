package routes

import (
	"github.com/ArowuTest/lasto-station-backend/internal/config"
	"github.com/ArowuTest/lasto-station-backend/internal/handlers"
	"github.com/ArowuTest/lasto-station-backend/internal/middleware"
	"github.com/ArowuTest/lasto-station-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerDependencies holds all the handlers needed by the router
type HandlerDependencies struct {
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	BetHandler         *handlers.BetHandler
	ReportHandler      *handlers.ReportHandler
	ResultHandler      *handlers.ResultHandler
	LoadControlHandler *handlers.LoadControlHandler
	LiveHandler        *handlers.LiveHandler
	HealthHandler      *handlers.HealthHandler
}

// SetupRouter sets up the router
// accounts re-checks every token against the stored profile.
func SetupRouter(cfg *config.Config, deps HandlerDependencies, tokens *jwt.Manager, accounts middleware.AccountLookup, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", deps.HealthHandler.Check)

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
			auth.POST("/logout", deps.AuthHandler.Logout)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(tokens, logger), middleware.ActiveUserMiddleware(accounts, logger))
	{
		protected.GET("/auth/me", deps.AuthHandler.Me)

		results := protected.Group("/results")
		{
			results.GET("/latest", deps.ResultHandler.GetLatestResults)
			results.GET("/:date", deps.ResultHandler.GetResult)
		}

		station := protected.Group("/station")
		station.Use(middleware.RequireStation())
		{
			station.GET("/draw-times", deps.BetHandler.GetDrawTimes)
			station.GET("/reference-number", deps.BetHandler.GetReferenceNumber)
			station.GET("/load-control", deps.BetHandler.GetLoadControl)
			station.POST("/bets", deps.BetHandler.SubmitBet)
			station.GET("/bets", deps.BetHandler.GetMyBets)
			station.GET("/bets/:id/qrcode", deps.BetHandler.GetSlipQRCode)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", deps.UserHandler.GetAllUsers)
			admin.POST("/users", deps.UserHandler.CreateUser)
			admin.DELETE("/users/:id", deps.UserHandler.DeleteUser)

			admin.GET("/dashboard", deps.ReportHandler.GetDashboard)
			admin.GET("/stations", deps.ReportHandler.GetStations)
			admin.GET("/stations/:station/bets", deps.ReportHandler.GetStationBets)
			admin.GET("/numbers", deps.ReportHandler.GetNumberTotals)
			admin.GET("/export", deps.ReportHandler.Export)
			admin.GET("/live", deps.LiveHandler.Live)

			admin.GET("/results/:date", deps.ResultHandler.GetResult)
			admin.PUT("/results/:date", deps.ResultHandler.UpsertResult)

			admin.GET("/load-control", deps.LoadControlHandler.GetLoadControl)
			admin.PUT("/load-control", deps.LoadControlHandler.UpsertLoadControl)
		}
	}

	return router
}
