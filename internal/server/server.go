package server

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/snaplist/snaplist-backend/internal/ai"
	"github.com/snaplist/snaplist-backend/internal/handler"
	appmw "github.com/snaplist/snaplist-backend/internal/middleware"
	"github.com/snaplist/snaplist-backend/internal/repository"
	"github.com/snaplist/snaplist-backend/internal/service"
	"github.com/snaplist/snaplist-backend/internal/storage"
	"gorm.io/gorm"
)

type Server struct {
	e                *echo.Echo
	listingRepo      repository.ListingRepository
	purchaseRepo     repository.PurchaseRepository
	notificationRepo repository.NotificationRepository
	sha              string
	build            string
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
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") || strings.HasSuffix(host, "expo.dev") {
				return true, nil
			}
			return false, nil
		},
	}))

	listingRepo := repository.NewListingRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationSvc := service.NewNotificationService(notificationRepo)
	listingSvc := service.NewListingService(listingRepo, purchaseRepo)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, listingRepo, notificationSvc)

	inferrer := ai.NewDraftClient(os.Getenv("GEMINI_MODEL"))
	var draftSvc service.DraftService
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		uploader, err := storage.NewUploader(context.Background(), bucket, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if err != nil {
			e.Logger.Warnf("storage client init failed, drafts disabled: %v", err)
		} else {
			draftSvc = service.NewDraftService(uploader, inferrer)
		}
	} else {
		e.Logger.Warn("STORAGE_BUCKET is not set, drafts disabled")
	}

	listingHandler := handler.NewListingHandler(listingSvc)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	draftHandler := handler.NewDraftHandler(draftSvc, inferrer, os.Getenv("GEMINI_API_KEY"))

	requireAuth := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		e.Logger.Warnf("firebase auth disabled: %v", err)
	} else {
		requireAuth = authMw.RequireAuth
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/listings", listingHandler.List)
	api.GET("/listings/:id", listingHandler.Get)
	api.POST("/listings", listingHandler.Create, requireAuth)
	api.DELETE("/listings/:id", listingHandler.Delete, requireAuth)
	api.GET("/me/listings", listingHandler.ListMine, requireAuth)

	api.POST("/listings/:id/purchase", purchaseHandler.Buy, requireAuth)
	api.GET("/me/purchases", purchaseHandler.ListMine, requireAuth)

	api.GET("/me/notifications", notificationHandler.List, requireAuth)
	api.POST("/notifications/:id/read", notificationHandler.MarkRead, requireAuth)
	api.POST("/me/notifications/read-all", notificationHandler.MarkAllRead, requireAuth)

	api.POST("/generateListing", draftHandler.GenerateListing)
	api.POST("/drafts", draftHandler.CreateDraft, requireAuth)

	return &Server{
		e:                e,
		listingRepo:      listingRepo,
		purchaseRepo:     purchaseRepo,
		notificationRepo: notificationRepo,
		sha:              sha,
		build:            buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects the database once the deferred connection succeeds; the
// HTTP listener is already serving by then.
func (s *Server) SetDB(db *gorm.DB) {
	s.listingRepo.SetDB(db)
	s.purchaseRepo.SetDB(db)
	s.notificationRepo.SetDB(db)
}
