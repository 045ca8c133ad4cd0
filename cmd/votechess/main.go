package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/goevery/votechess/internal/game"
	"github.com/goevery/votechess/internal/handler"
	"github.com/goevery/votechess/internal/ingest"
	"github.com/goevery/votechess/internal/persistence"
	"github.com/goevery/votechess/internal/persistence/mongodb"
	"github.com/goevery/votechess/internal/server"
	"github.com/goevery/votechess/internal/supervise"
	"github.com/goevery/votechess/internal/vote"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	logger   *zap.Logger
	settings Settings

	hub             *broadcaster.Hub
	websocketServer *server.WebSocketServer
	restServer      *server.RESTServer

	mongoClient *mongo.Client
	tasks       map[string]supervise.Task
}

func NewApp(ctx context.Context, logger *zap.Logger, settings Settings) (*App, error) {
	hub := broadcaster.NewHub(logger.Named("hub"), settings.HubCapacity)

	originChecker := server.NewOriginChecker(settings.Origins())
	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker.Check,
		EnableCompression: true,
	}

	publishHandler := handler.NewPublishHandler(hub)

	websocketServer := server.NewWebSocketServer(
		logger.Named("websocket"),
		websocketUpgrader,
		hub,
		publishHandler,
		server.SessionOptions{
			HeartbeatInterval: settings.HeartbeatInterval(),
			WriteTimeout:      settings.WriteTimeout(),
		},
		settings.ReadLimitBytes,
	)

	statsHandler := handler.NewStatsHandler(websocketServer, hub)

	machine := game.NewMachine(logger.Named("game"), hub, game.NewChessBoard())

	app := &App{
		logger:          logger,
		settings:        settings,
		hub:             hub,
		websocketServer: websocketServer,
		tasks: map[string]supervise.Task{
			"game": machine.Run,
		},
	}

	channels, err := ingest.ParseChannels(settings.TwitchChannels)
	if err != nil {
		return nil, fmt.Errorf("parse twitch channels: %w", err)
	}

	if len(channels) > 0 {
		source := ingest.NewTwitchSource(logger.Named("twitch"), channels)
		adapter := ingest.NewAdapter(logger.Named("ingest"), hub, source)

		app.tasks["ingest"] = adapter.Run
	} else {
		logger.Info("chat ingestion disabled, no twitch channels configured")
	}

	if window := settings.VoteWindow(); window > 0 {
		tally := vote.NewTally(logger.Named("vote"), hub, window)

		app.tasks["tally"] = tally.Run
	}

	var journal persistence.Engine
	if settings.MongoDBURI != "" {
		client, err := mongodb.Connect(ctx, settings.MongoDBURI)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}

		engine := mongodb.NewPersistenceEngine(client)
		if err := engine.Setup(ctx); err != nil {
			return nil, fmt.Errorf("setup message journal: %w", err)
		}

		recorder := persistence.NewRecorder(logger.Named("journal"), hub, engine)

		app.mongoClient = client
		app.tasks["journal"] = recorder.Run
		journal = engine
	} else {
		logger.Info("message journal disabled, no mongodb uri configured")
	}

	app.restServer = server.NewRESTServer(
		logger.Named("rest"),
		publishHandler,
		statsHandler,
		journal,
	)

	return app, nil
}

// Run starts every background task and the http server, and blocks until a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	group, groupCtx := errgroup.WithContext(notifyCtx)

	for name, task := range a.tasks {
		group.Go(func() error {
			supervise.Run(groupCtx, a.logger, name, supervise.DefaultOptions(), task)

			return nil
		})
	}

	group.Go(func() error {
		return a.serveHttp(groupCtx)
	})

	err := group.Wait()

	if a.mongoClient != nil {
		disconnectCtx, disconnectCtxCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer disconnectCtxCancel()

		if err := a.mongoClient.Disconnect(disconnectCtx); err != nil {
			a.logger.Warn("failed to disconnect from mongodb", zap.Error(err))
		}
	}

	return err
}

func (a *App) serveHttp(ctx context.Context) error {
	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	router := server.NewRouter(a.settings.BasePath)

	a.websocketServer.Register(ctx, router)
	a.restServer.Register(router)

	httpServer := &http.Server{
		Addr:    address,
		Handler: server.NewHandler(router, a.settings.Origins()),
	}

	a.logger.Info("starting http server",
		zap.String("address", address),
		zap.String("basePath", a.settings.BasePath))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCtxCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	a.logger.Info("http server stopped")

	return nil
}

func main() {
	ctx := context.Background()

	bootstrapLogger, _ := zap.NewDevelopment()

	var settings Settings
	_, err := env.UnmarshalFromEnviron(&settings)
	if err != nil {
		bootstrapLogger.Fatal("failed to parse settings from environment", zap.Error(err))
	}

	logger, err := buildZapLogger(settings.LogEncoding)
	if err != nil {
		bootstrapLogger.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	app, err := NewApp(ctx, logger, settings)
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}

	if err := app.Run(ctx); err != nil {
		logger.Fatal("votechess stopped with error", zap.Error(err))
	}
}
