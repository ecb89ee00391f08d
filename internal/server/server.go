package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/dealdrop/backend/internal/auth"
	"github.com/emilythestrangee/dealdrop/backend/internal/config"
	"github.com/emilythestrangee/dealdrop/backend/internal/content"
	"github.com/emilythestrangee/dealdrop/backend/internal/database"
	"github.com/emilythestrangee/dealdrop/backend/internal/handlers"
	"github.com/emilythestrangee/dealdrop/backend/internal/middleware"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	tokens  *auth.Tokens
	handler *handlers.Handler
}

// NewServer wires the handlers onto db and returns a configured http.Server.
func NewServer(cfg *config.Config, db database.Service) *http.Server {
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	svc := content.NewService(db.GetDB(), cfg.NewWindow)

	s := &Server{
		cfg:     cfg,
		db:      db,
		tokens:  tokens,
		handler: handlers.NewHandler(db.GetDB(), svc, tokens),
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	slog.Info("Server configured", "addr", server.Addr)
	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// CORS configuration
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if allowsAll(s.cfg.CORSOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		stats := s.db.Health()
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	h := s.handler
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)

		// Public reads; a token, when present, adds the viewer's votes
		reads := api.Group("")
		reads.Use(middleware.OptionalAuth(s.tokens))
		for _, kind := range []votes.TargetType{votes.TargetDeal, votes.TargetCoupon, votes.TargetDiscussion} {
			base := "/" + string(kind) + "s"
			reads.GET(base, h.Content.List(kind))
			reads.GET(base+"/:id", h.Content.Get(kind))
			reads.GET(base+"/:id/comments", h.Comment.GetComments(kind))
		}
		reads.GET("/merchants", h.Merchant.GetMerchants)
		reads.GET("/merchants/:slug", h.Merchant.GetStorefront)
		reads.GET("/users/:id", h.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.tokens))
		{
			protected.GET("/me", h.Auth.GetMe)

			protected.POST("/deals", h.Content.CreateDeal)
			protected.POST("/coupons", h.Content.CreateCoupon)
			protected.POST("/discussions", h.Content.CreateDiscussion)
			for _, kind := range []votes.TargetType{votes.TargetDeal, votes.TargetCoupon, votes.TargetDiscussion} {
				base := "/" + string(kind) + "s"
				protected.PUT(base+"/:id", h.Content.Update(kind))
				protected.POST(base+"/:id/comments", h.Comment.CreateComment(kind))
			}
			protected.POST("/deals/:id/expire", h.Content.Expire(votes.TargetDeal))
			protected.POST("/coupons/:id/expire", h.Content.Expire(votes.TargetCoupon))

			protected.PUT("/comments/:id", h.Comment.UpdateComment)
			protected.POST("/votes", h.Vote.Vote)

			protected.POST("/merchants", h.Merchant.CreateMerchant)
			protected.PUT("/users/:id", h.User.UpdateUserProfile)
		}
	}

	return r
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
