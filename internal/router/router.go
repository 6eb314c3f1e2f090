package router

import (
	"net/http"

	"livsoul/internal/auth"
	"livsoul/internal/config"
	"livsoul/internal/handlers"
	"livsoul/internal/metrics"
	"livsoul/internal/services"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps bundles everything Setup wires into the route tree.
type Deps struct {
	Config      *config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Tokens      *auth.Manager
	Users       services.UserStore
	Auth        *services.AuthService
	Predictions *services.PredictionService
	Metrics     *metrics.Collector
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"message": "Too many requests. Try again later.",
	})
}

func Setup(d Deps) *gin.Engine {
	router := gin.New()
	// Recovery sits inside the instrumentation so a panicked request is
	// logged and counted with the 500 it produced.
	router.Use(d.Metrics.Middleware())
	router.Use(RequestLogger(d.Log))
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.Server.ClientOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Credential endpoints get a per-IP throttle; everything else is
	// left to upstream infrastructure.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  d.Config.RateLimit.Window,
		Limit: d.Config.RateLimit.Limit,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})

	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	predictionHandler := handlers.NewPredictionHandler(d.Predictions, d.Log)
	healthHandler := handlers.NewHealthHandler(d.DB)

	requireAuth := Authenticate(d.Tokens, d.Users, d.Log)
	optionalAuth := OptionalAuth(d.Tokens, d.Users)

	router.GET("/api/health", healthHandler.Check)
	router.GET("/metrics", d.Metrics.Handler())

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", limiter, authHandler.Register)
		authRoutes.POST("/login", limiter, authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.GET("/profile", requireAuth, authHandler.Profile)
		authRoutes.PUT("/profile", requireAuth, authHandler.UpdateProfile)
		authRoutes.PUT("/change-password", requireAuth, authHandler.ChangePassword)
		authRoutes.POST("/logout", requireAuth, authHandler.Logout)
	}

	predictionRoutes := router.Group("/api/predictions")
	{
		predictionRoutes.POST("", optionalAuth, predictionHandler.Create)
		predictionRoutes.GET("/stats/overview", predictionHandler.Stats)
		predictionRoutes.GET("/history", requireAuth, predictionHandler.History)
		predictionRoutes.GET("/:id", requireAuth, predictionHandler.Get)
		predictionRoutes.DELETE("/:id", requireAuth, predictionHandler.Delete)
		predictionRoutes.PUT("/:id/review", requireAuth, RequireDoctor(), predictionHandler.Review)
	}

	// Legacy scoring endpoint kept for older clients; same validation,
	// never persists.
	router.POST("/api/predict", predictionHandler.Predict)

	router.GET("/api/records/timeline", requireAuth, predictionHandler.Timeline)
	router.GET("/api/records/:id", requireAuth, predictionHandler.Record)

	return router
}
