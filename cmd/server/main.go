package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/contacts/internal/config"
	"github.com/Skotchmaster/contacts/internal/db"
	"github.com/Skotchmaster/contacts/internal/events"
	"github.com/Skotchmaster/contacts/internal/httpserver"
	"github.com/Skotchmaster/contacts/internal/logging"
	"github.com/Skotchmaster/contacts/internal/middleware/auth"
	"github.com/Skotchmaster/contacts/internal/repo"
	"github.com/Skotchmaster/contacts/internal/search"
	"github.com/Skotchmaster/contacts/internal/service"
	"github.com/Skotchmaster/contacts/internal/tokens"
)

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(initCtx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	publisher := newPublisher(cfg)
	gormRepo := repo.New(gdb)
	index := newIndex(cfg, gormRepo)

	authSvc := &service.AuthService{
		Repo:   gormRepo,
		Tokens: tokens.NewManager(cfg.JWTSecret, cfg.JWTTTL),
		Events: publisher,
		Index:  index,
	}
	contactSvc := &service.ContactService{
		Repo:   gormRepo,
		Events: publisher,
		Index:  index,
	}

	e := httpserver.New(logger, cfg.CORSOrigins)

	httpserver.Register(e, &httpserver.Deps{
		DB:              gdb,
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		ContactsHandler: &httpserver.ContactsHTTP{Svc: contactSvc},
		AuthMiddleware:  auth.NewBearerAuth(authSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Printf("db close error: %v", err)
	}

	log.Println("shutdown complete")
}

func newPublisher(cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("KAFKA_BROKERS is empty, events are not published")
		return events.NopPublisher{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := events.EnsureTopics(ctx, cfg.KafkaBrokers[0], events.Topics()...); err != nil {
		log.Printf("kafka topics: %v", err)
	}
	return events.NewKafkaPublisher(cfg.KafkaBrokers)
}

func newIndex(cfg config.Config, r *repo.GormRepo) search.Index {
	if cfg.ESURL == "" {
		log.Println("ES_URL is empty, search runs against the database")
		return search.NewDBIndex(r)
	}

	client, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		log.Printf("elasticsearch unavailable, search runs against the database: %v", err)
		return search.NewDBIndex(r)
	}

	idx := search.NewElasticIndex(client, cfg.ESIndex)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := idx.EnsureIndex(ctx); err != nil {
		log.Printf("elasticsearch index %s: %v", cfg.ESIndex, err)
	}
	return idx
}
