package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pinot/internal/archive"
	"pinot/internal/audit"
	"pinot/internal/cache"
	"pinot/internal/config"
	"pinot/internal/repository"
	"pinot/internal/service"
	"pinot/internal/transport/rest"
	"pinot/internal/transport/ws"
)

// @title Pinot API
// @version 1.0
// @description Blind tasting events: labels, card assignment, participant selections and plurality results.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey AdminSession
// @in header
// @name X-Admin-Session
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()
	if cfg.AdminPasswordHash == "" {
		log.Println("Warning: ADMIN_PASSWORD_HASH not set, admin panel disabled")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	defer wsHub.Stop()
	log.Println("WebSocket hub started")

	// Initialize repositories
	eventRepo := repository.NewEventRepo(db)
	participantRepo := repository.NewParticipantRepo(db)
	labelRepo := repository.NewLabelRepo(db)
	selectionRepo := repository.NewSelectionRepo(db)
	hostRepo := repository.NewHostRepo(db)
	logRepo := repository.NewLogRepo(db)

	// Initialize caches
	eventCache := cache.NewEventCache(rdb)
	sessionCache := cache.NewSessionCache(rdb)
	editorCache := cache.NewEditorCache(rdb)

	// Changelog recorder
	recorder := audit.NewRecorder(logRepo, 256)
	defer recorder.Close()

	// Initialize services
	authSvc := service.NewAuthService(hostRepo, sessionCache, cfg)
	eventSvc := service.NewEventService(eventRepo, eventCache, recorder)
	registrySvc := service.NewRegistryService(eventRepo, participantRepo, labelRepo, selectionRepo, recorder)
	editorSvc := service.NewEditorService(eventRepo, labelRepo, editorCache, registrySvc, recorder)
	resolverSvc := service.NewResolverService(eventRepo, participantRepo, labelRepo, selectionRepo, eventCache, editorCache, recorder)
	selectionSvc := service.NewSelectionService(eventSvc, registrySvc, authSvc, labelRepo, selectionRepo)
	adminSvc := service.NewAdminService(eventSvc, registrySvc, eventRepo, participantRepo, labelRepo, selectionRepo, logRepo, eventCache, editorCache, recorder)

	// Results archive
	if cfg.Archive.Enabled() {
		archiver, err := archive.NewS3Archive(ctx, cfg.Archive)
		if err != nil {
			log.Fatal("Failed to configure results archive:", err)
		}
		resolverSvc.SetArchiver(archiver)
		log.Printf("Results archive: bucket=%s", cfg.Archive.Bucket)
	}

	// Inject broadcaster (wsHub implements service.Broadcaster)
	registrySvc.SetBroadcaster(wsHub)
	editorSvc.SetBroadcaster(wsHub)
	resolverSvc.SetBroadcaster(wsHub)
	selectionSvc.SetBroadcaster(wsHub)
	adminSvc.SetBroadcaster(wsHub)

	// PIN index maintenance
	scheduler, err := eventSvc.StartPINReindexer(cfg.PINReindexInterval)
	if err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		EventService:     eventSvc,
		RegistryService:  registrySvc,
		EditorService:    editorSvc,
		ResolverService:  resolverSvc,
		SelectionService: selectionSvc,
		AdminService:     adminSvc,
		WSHub:            wsHub,
		CORS:             cfg.CORS,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/register, /v1/auth/login")
		log.Println("  POST/GET /v1/events")
		log.Println("  POST /v1/join")
		log.Println("  POST /v1/events/{eventId}/finalize")
		log.Println("  /v1/admin/...")
		log.Println("  WS  /v1/ws/events/{eventId}/host")
		log.Println("  WS  /v1/ws/events/{eventId}/participant")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if err := scheduler.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
