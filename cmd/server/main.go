package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tilegate/internal/archive"
	"tilegate/internal/cache"
	"tilegate/internal/config"
	"tilegate/internal/fonts"
	httphandlers "tilegate/internal/http"
	"tilegate/internal/listing"
	"tilegate/internal/logger"
	"tilegate/internal/objstore"
	"tilegate/internal/source"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting tilegate server",
		zap.Int("port", cfg.Port),
		zap.String("bucket", cfg.Bucket),
		zap.String("bucket_prefix", cfg.BucketPrefix),
	)

	var store objstore.Store
	if cfg.Bucket != "" {
		s3store, err := objstore.NewS3Store(objstore.S3Options{
			Bucket:         cfg.Bucket,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			log.Fatal("Failed to initialize object store", zap.Error(err))
		}
		store = s3store
	} else {
		log.Warn("No bucket configured, using empty in-memory object store")
		store = objstore.NewMemoryStore()
	}

	listings, err := listing.Open(cfg.MetadataDB)
	if err != nil {
		log.Fatal("Failed to open metadata store", zap.Error(err))
	}
	defer listings.Close()

	edgeCache, err := cache.New(cfg.CacheType, cfg.CacheMaxBytes,
		time.Duration(cfg.CacheTTLSeconds)*time.Second, log)
	if err != nil {
		log.Fatal("Failed to initialize edge cache", zap.Error(err))
	}

	archives := archive.NewResolver(source.New(store, cfg.BucketPrefix))

	handlers := httphandlers.New(cfg, log, edgeCache, archives, fonts.New(store), listings, store)
	handler := handlers.RequestLoggingMiddleware(handlers)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.Int("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight edge cache writes land before the process exits.
	handlers.Wait()

	log.Info("Server stopped")
}
