package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/lasto-station-backend/api/routes"
	"github.com/ArowuTest/lasto-station-backend/internal/config"
	"github.com/ArowuTest/lasto-station-backend/internal/handlers"
	"github.com/ArowuTest/lasto-station-backend/internal/logger"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/lasto-station-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/lasto-station-backend/internal/services"
	"github.com/ArowuTest/lasto-station-backend/internal/websocket"
	"github.com/ArowuTest/lasto-station-backend/pkg/jwt"
	"github.com/ArowuTest/lasto-station-backend/pkg/mongodb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// storage is the set of repositories the services are built on.
type storage struct {
	users      repositories.UserRepository
	identities repositories.IdentityRepository
	bets       repositories.BetRepository
	results    repositories.ResultRepository
	loads      repositories.LoadControlRepository

	watcher *mongorepo.ChangeStreamWatcher
	ping    func(context.Context) error
	close   func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
	zl.Info("server exiting")
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := notify.NewHub(zl.Named("notify"))
	store, err := openStorage(ctx, cfg, hub, zl)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			zl.Error("error closing storage", zap.Error(err))
		}
	}()

	loc, err := cfg.Draw.Location()
	if err != nil {
		return err
	}
	schedule := services.NewDrawSchedule(loc, time.Now)
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TokenTTL())

	userService := services.NewUserService(store.users, store.identities, store.bets, cfg.Stations.Count, zl.Named("users"))
	authService := services.NewAuthService(userService, tokens, cfg.Auth.AllowSelfSignup, zl.Named("auth"))
	betService := services.NewBetService(store.bets, store.loads, schedule, cfg.Load.Cumulative, zl.Named("bets"))
	loadService := services.NewLoadControlService(store.loads, schedule, zl.Named("load"))
	resultService := services.NewResultService(store.results, zl.Named("results"))
	reportService := services.NewReportService(store.bets, store.users, hub, zl.Named("reports"))

	live := websocket.NewServer(cfg.Server.AllowedOrigins, zl.Named("live"))
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService),
		UserHandler:        handlers.NewUserHandler(userService),
		BetHandler:         handlers.NewBetHandler(betService, loadService),
		ReportHandler:      handlers.NewReportHandler(reportService, schedule),
		ResultHandler:      handlers.NewResultHandler(resultService),
		LoadControlHandler: handlers.NewLoadControlHandler(loadService),
		LiveHandler:        handlers.NewLiveHandler(reportService, schedule, live, zl.Named("live")),
		HealthHandler:      handlers.NewHealthHandler(store.ping, zl.Named("health")),
	}
	router := routes.SetupRouter(cfg, handlerDeps, tokens, authService, zl.Named("http"))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down server")
		live.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if store.watcher != nil {
		g.Go(func() error {
			return store.watcher.Run(gctx)
		})
	}
	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, hub *notify.Hub, zl *zap.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		zl.Warn("using in-memory storage; data is lost on restart")
		return &storage{
			users:      memory.NewUserRepository(hub),
			identities: memory.NewIdentityRepository(),
			bets:       memory.NewBetRepository(hub),
			results:    memory.NewResultRepository(hub),
			loads:      memory.NewLoadControlRepository(hub),
			close:      func(context.Context) error { return nil },
		}, nil
	}

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	db := client.Database(cfg.MongoDB.Database)
	identityDB := client.Database(cfg.MongoDB.IdentityDatabase)
	if err := mongorepo.EnsureIndexes(ctx, db, identityDB); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	// With change streams on, every instance learns about writes from the
	// database, so local publishing would deliver each event twice.
	var notifier notify.Notifier = hub
	var watcher *mongorepo.ChangeStreamWatcher
	if cfg.MongoDB.ChangeStreams {
		notifier = notify.SubscribeOnly(hub)
		watcher = mongorepo.NewChangeStreamWatcher(db, hub, zl.Named("changestream"))
	}

	return &storage{
		users:      mongorepo.NewUserRepository(db, notifier),
		identities: mongorepo.NewIdentityRepository(identityDB),
		bets:       mongorepo.NewBetRepository(db, notifier),
		results:    mongorepo.NewResultRepository(db, notifier),
		loads:      mongorepo.NewLoadControlRepository(db, notifier),
		watcher:    watcher,
		ping:       client.Ping,
		close:      client.Disconnect,
	}, nil
}
