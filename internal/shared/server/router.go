package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"reporthub-backend/internal/downloadtoken"
	"reporthub-backend/internal/filecheck"
	"reporthub-backend/internal/reports"
	"reporthub-backend/internal/shared/config"
	"reporthub-backend/internal/shared/server/middleware"
	"reporthub-backend/internal/shared/server/respond"
	"reporthub-backend/internal/shared/storage/blob"
	localstore "reporthub-backend/internal/shared/storage/blob/local"
	s3store "reporthub-backend/internal/shared/storage/blob/s3"
	"reporthub-backend/internal/users"
)

// NewRouter constructs the gin engine with middleware, dependencies and
// routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	return NewRouterWithFs(cfg, afero.NewOsFs())
}

// NewRouterWithFs is NewRouter with an injectable filesystem, used by tests.
func NewRouterWithFs(cfg config.Config, fs afero.Fs) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	blobs := buildBlobStore(cfg, fs)
	tokens := downloadtoken.NewService(cfg.TokenSecret)
	validator := filecheck.New(filecheck.Config{MaxSizeBytes: cfg.MaxUploadBytes})

	reportRepo := reports.NewJSONRepo(fs, cfg.DataDir)
	reportSvc := &reports.Service{
		Repo:      reportRepo,
		Blobs:     blobs,
		Validator: validator,
		Tokens:    tokens,
	}
	reportHandler := reports.NewHandler(reportSvc, cfg.MaxUploadBytes)

	userRepo := users.NewJSONRepo(fs, cfg.DataDir)
	userSvc := users.NewService(userRepo)
	userHandler := users.NewHandler(userSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	reportHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)

	return r
}

// buildBlobStore selects the storage variant from configuration, defaulting
// to local disk.
func buildBlobStore(cfg config.Config, fs afero.Fs) blob.Store {
	switch cfg.StorageType {
	case "s3":
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			log.Printf("failed to build s3 store, falling back to local: %v", err)
			return localstore.New(fs, cfg.StoragePath)
		}
		return store
	default:
		return localstore.New(fs, cfg.StoragePath)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
