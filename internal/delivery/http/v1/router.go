package v1

import (
	"net/http"
	"time"

	"go-candidate-tracker/config"
	"go-candidate-tracker/internal/delivery/http/middleware"
	"go-candidate-tracker/internal/delivery/http/response"
	"go-candidate-tracker/internal/domain"
	"go-candidate-tracker/internal/notify"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	CandidateUC domain.CandidateUsecase
	Notifier    *notify.Notifier
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first!
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(
		middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Config))
	{
		// Upload-bearing endpoints get a stricter per-IP budget.
		uploadLimit := middleware.RateLimitMiddleware(
			middleware.UploadRateLimitConfig(deps.Config.RateLimitUploadThreshold, window))

		NewCandidateHandler(protected, uploadLimit, deps.CandidateUC)
		NewEventsHandler(protected, deps.Notifier)
	}

	return r
}
