package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/api"
	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/config"
	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/service"
	"github.com/thsvo/Ilyes-Myriam-Wedding-Album/storage"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var catalog storage.Catalog
	switch cfg.CatalogBackend {
	case "mongo":
		mongoCatalog := &storage.MongoCatalog{Log: logger}
		if err := mongoCatalog.Connect(context.Background(), cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection); err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoCatalog.Close(context.Background())
		catalog = mongoCatalog
	case "file":
		catalog = storage.NewFileCatalog(cfg.CatalogFile, logger)
	default:
		logger.Fatal("unknown catalog backend", zap.String("backend", cfg.CatalogBackend))
	}

	blobs, err := storage.NewLocalBlobStore(cfg.UploadDir, logger)
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	photoService := &service.PhotoService{
		Blobs:   blobs,
		Catalog: catalog,
		Log:     logger,
	}

	handlers := &api.PhotoHandlers{
		Service: photoService,
		Log:     logger,
	}

	router := mux.NewRouter()
	router.Use(
		api.RecoveryMiddleware(logger),
		api.RequestLoggerMiddleware(logger),
		api.MetricsMiddleware(),
	)
	handlers.Register(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))),
	).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
