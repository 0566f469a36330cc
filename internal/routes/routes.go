package routes

import (
	"net/http"

	"hobbyhub/internal/handlers"
	"hobbyhub/internal/metrics"
	"hobbyhub/internal/middleware"
	"hobbyhub/internal/realtime"

	"github.com/gin-gonic/gin"
)

// Options carries the collaborators the router wires in. Zero values get defaults.
type Options struct {
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.HTTPMetrics
	Hub         *realtime.Hub
}

func SetupRoutes(opts Options) *gin.Engine {
	if opts.RateLimiter == nil {
		opts.RateLimiter = middleware.NewRateLimiter(10, 20)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Hub == nil {
		opts.Hub = realtime.GetHub()
	}

	ginRouter := gin.Default()
	ginRouter.Use(opts.Metrics.Middleware())

	// CORS middleware (for web builds of the app)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint, also the client's connectivity probe
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "HobbyHub API is running",
		})
	})
	ginRouter.GET("/metrics", opts.Metrics.Handler())

	api := ginRouter.Group("/api")

	// Public auth routes, rate limited per client IP
	public := api.Group("/auth")
	public.Use(opts.RateLimiter.Middleware())
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
		public.POST("/social", handlers.SocialAuth)
		public.POST("/refresh-token", handlers.RefreshToken)
	}

	// Protected routes (authentication required)
	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/auth/me", handlers.Me)
		protected.POST("/auth/logout", handlers.Logout)

		protected.GET("/hobbies", handlers.GetHobbies)
		protected.GET("/hobbies/:id", handlers.GetHobbyByID)
		protected.POST("/hobbies", handlers.CreateHobby)
		protected.PUT("/hobbies/:id", handlers.UpdateHobby)
		protected.DELETE("/hobbies/:id", handlers.DeleteHobby)
		protected.POST("/hobbies/:id/join", handlers.JoinHobby)
		protected.DELETE("/hobbies/:id/join", handlers.LeaveHobby)

		protected.GET("/events", handlers.GetEvents)
		protected.GET("/events/nearby", handlers.GetNearbyEvents)
		protected.GET("/events/:id", handlers.GetEventByID)
		protected.POST("/events", handlers.CreateEvent)
		protected.PUT("/events/:id", handlers.UpdateEvent)
		protected.DELETE("/events/:id", handlers.DeleteEvent)
		protected.POST("/events/:id/attend", handlers.AttendEvent)
		protected.DELETE("/events/:id/attend", handlers.UnattendEvent)

		protected.GET("/ws", handlers.WebSocketHandler(opts.Hub, opts.Metrics))
	}

	return ginRouter
}
