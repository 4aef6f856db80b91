package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/autohive/automarket-backend/internal/handler"
	appmw "github.com/autohive/automarket-backend/internal/middleware"
	"github.com/autohive/automarket-backend/internal/realtime"
	"github.com/autohive/automarket-backend/internal/repository"
	"github.com/autohive/automarket-backend/internal/service"
	"github.com/autohive/automarket-backend/internal/trigger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e        *echo.Echo
	repo     repository.NotificationRepository
	svc      service.NotificationService
	triggers *trigger.Triggers
	sha      string
	build    string
}

func New(db *gorm.DB, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	registry := realtime.NewRegistry()
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, registry)
	triggers := trigger.New(svc)

	notifHandler := handler.NewNotificationHandler(svc)
	wsHandler := realtime.NewWSHandler(registry)

	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/notifications", notifHandler.List, authMw.RequireAuth)
	api.GET("/notifications/unread-count", notifHandler.UnreadCount, authMw.RequireAuth)
	api.POST("/notifications/read", notifHandler.MarkRead, authMw.RequireAuth)
	api.POST("/notifications/read-all", notifHandler.MarkAllRead, authMw.RequireAuth)
	api.DELETE("/notifications/:id", notifHandler.Delete, authMw.RequireAuth)
	api.GET("/ws", wsHandler.Serve, authMw.RequireAuth)

	return &Server{e: e, repo: repo, svc: svc, triggers: triggers, sha: sha, build: buildTime}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Service exposes the notification service for the cleanup runner.
func (s *Server) Service() service.NotificationService {
	return s.svc
}

// Triggers is the seam the domain modules (projects, messaging, matching,
// billing) call to emit notifications.
func (s *Server) Triggers() *trigger.Triggers {
	return s.triggers
}

func (s *Server) SetDB(db *gorm.DB) {
	if s.repo != nil {
		s.repo.SetDB(db)
	}
}
