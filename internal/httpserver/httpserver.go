package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/milosmac94/finance/config"
	"github.com/milosmac94/finance/internal/transport/httpapi"
	"github.com/milosmac94/finance/internal/transport/httpapi/middleware"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
}

func New(cfg *config.Config, ctrl *httpapi.Controller, sessionStore middleware.SessionStore) *Server {
	gin.SetMode(cfg.HTTP.GinMode)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	api := router.Group("/api")
	api.POST("/register", ctrl.Register)
	api.POST("/login", ctrl.Login)
	api.GET("/check", ctrl.CheckUsername)

	auth := api.Group("/")
	auth.Use(middleware.Auth(sessionStore))
	auth.POST("/logout", ctrl.Logout)
	auth.GET("/portfolio", ctrl.Portfolio)
	auth.GET("/history", ctrl.History)
	auth.GET("/history/export", ctrl.ExportHistory)
	auth.GET("/quote", ctrl.Quote)
	auth.POST("/buy", ctrl.Buy)
	auth.POST("/sell", ctrl.Sell)
	auth.POST("/deposit", ctrl.Deposit)
	auth.POST("/password", ctrl.ChangePassword)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Server{httpServer: httpServer, cfg: cfg}
}

func (s *Server) Start() {
	go func() {
		slog.Info("http server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.String("err", err.Error()))
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}
}
