package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pinot/internal/cache"
	"pinot/internal/config"
	"pinot/internal/model"
	"pinot/internal/repository"
	"pinot/internal/service"
)

// Seeds a demo host with one tasting event: four labels, suggested cards
// and a few participants.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	eventRepo := repository.NewEventRepo(db)
	participantRepo := repository.NewParticipantRepo(db)
	labelRepo := repository.NewLabelRepo(db)
	selectionRepo := repository.NewSelectionRepo(db)

	authSvc := service.NewAuthService(repository.NewHostRepo(db), cache.NewSessionCache(rdb), cfg)
	eventSvc := service.NewEventService(eventRepo, cache.NewEventCache(rdb), nil)
	registrySvc := service.NewRegistryService(eventRepo, participantRepo, labelRepo, selectionRepo, nil)
	editorSvc := service.NewEditorService(eventRepo, labelRepo, cache.NewEditorCache(rdb), registrySvc, nil)

	email := getEnv("SEED_HOST_EMAIL", "sommelier@pinot.local")
	password := getEnv("SEED_HOST_PASSWORD", "pinot-demo")

	login, err := authSvc.Register(ctx, &model.RegisterRequest{
		Email:    email,
		Name:     "Demo Sommelier",
		Password: password,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		login, err = authSvc.Login(ctx, email, password)
	}
	if err != nil {
		log.Fatalf("Failed to prepare host: %v", err)
	}

	event, err := eventSvc.Create(ctx, login.HostID, "Cata de Añada 2024")
	if err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}

	for _, name := range []string{"Tinto Reserva", "Blanco Joven", "Rosado", "Crianza"} {
		if _, err := editorSvc.AddLabel(ctx, event.ID, name); err != nil {
			log.Fatalf("Failed to add label %q: %v", name, err)
		}
	}
	if _, err := editorSvc.SuggestCards(ctx, event.ID); err != nil {
		log.Fatalf("Failed to assign cards: %v", err)
	}
	labels, err := editorSvc.Save(ctx, event.ID)
	if err != nil {
		log.Fatalf("Failed to save labels: %v", err)
	}

	for _, name := range []string{"Lucía", "Marcos", "Irene"} {
		if _, err := registrySvc.AddParticipant(ctx, event.ID, name); err != nil {
			log.Fatalf("Failed to add participant %q: %v", name, err)
		}
	}

	log.Printf("Seeded event %s (%s) with %d labels", event.ID, event.Name, len(labels))
	log.Printf("  Host login: %s / %s", email, password)
	log.Printf("  Join PIN:   %s", event.PIN)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
