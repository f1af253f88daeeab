package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/mrJTY/bookit/internal/auth"
	"github.com/mrJTY/bookit/internal/availability"
	"github.com/mrJTY/bookit/internal/booking"
	"github.com/mrJTY/bookit/internal/config"
	"github.com/mrJTY/bookit/internal/follower"
	"github.com/mrJTY/bookit/internal/listing"
	"github.com/mrJTY/bookit/internal/notify"
	"github.com/mrJTY/bookit/internal/rating"
	"github.com/mrJTY/bookit/internal/user"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	notify *notify.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, notifyService *notify.Service) *Server {
	RegisterValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(corsMiddleware())

	userHandler := user.NewHandler(db, cfg.JWTSecret, cfg.ResultLimit)
	listingHandler := listing.NewHandler(db, cfg.ResultLimit)
	availabilityHandler := availability.NewHandler(db)
	bookingHandler := booking.NewHandler(db, notifyService, cfg.MonthlyCapHours, cfg.RescheduleNoticeDays)
	ratingHandler := rating.NewHandler(db)
	followerHandler := follower.NewHandler(db)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/users", userHandler.SearchUsers)
		protected.GET("/users/:userID", userHandler.GetUser)

		protected.POST("/listings", listingHandler.CreateListing)
		protected.GET("/listings", listingHandler.SearchListings)
		protected.GET("/listings/mylistings", listingHandler.MyListings)
		protected.GET("/listings/:listingID", listingHandler.GetListing)
		protected.PUT("/listings/:listingID", listingHandler.UpdateListing)
		protected.DELETE("/listings/:listingID", listingHandler.DeleteListing)

		protected.POST("/availabilities", availabilityHandler.CreateAvailability)
		protected.GET("/availabilities", availabilityHandler.ListAvailabilities)
		protected.PUT("/availabilities/:availabilityID", availabilityHandler.UpdateAvailability)
		protected.DELETE("/availabilities/:availabilityID", availabilityHandler.DeleteAvailability)

		protected.POST("/bookings", bookingHandler.CreateBooking)
		protected.GET("/bookings/mybookings", bookingHandler.MyBookings)
		protected.GET("/bookings/:bookingID", bookingHandler.GetBooking)
		protected.PUT("/bookings/:bookingID", bookingHandler.RescheduleBooking)
		protected.DELETE("/bookings/:bookingID", bookingHandler.CancelBooking)

		protected.POST("/ratings", ratingHandler.CreateRating)
		protected.GET("/ratings", ratingHandler.ListRatings)

		protected.POST("/followers/follow", followerHandler.Follow)
		protected.DELETE("/followers/unfollow/:username", followerHandler.Unfollow)
		protected.GET("/followers/myfollowers", followerHandler.MyFollowers)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		notify: notifyService,
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
