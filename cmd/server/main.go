package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/httpapi"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/relay"
	"chat-relay/repositories"
	"chat-relay/services"
	"chat-relay/transport"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. This pattern ensures all defer statements
// (like database cleanup) execute before the process exits, and keeps the
// initialization logic testable.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := internal.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Durable stores (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are
		// flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	messageRepository := repositories.NewMessageRepository(db, logger, lo.ToPtr(config.HistoryLimit))
	profileRepository := repositories.NewProfileRepository(db)
	roomRepository := repositories.NewRoomRepository(db)
	searchIndex := repositories.NewSearchIndex(blugeWriter, logger)

	// 3. Relay core
	registry := relay.NewRegistry(logger)
	broadcaster := relay.NewBroadcaster(logger, registry)
	gateway := relay.NewGatewayWorker(logger, messageRepository, profileRepository,
		searchIndex, config.PersistBufferSize)
	router := relay.NewRouter(logger, registry, broadcaster, gateway)
	monitor := relay.NewLivenessMonitor(logger, registry, config.SweepInterval,
		func(c contract.Conn) { router.HandleClose(c) })

	supervisor := relay.NewSupervisor(logger)
	supervisor.Add(gateway, monitor)
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	// 4. HTTP surface
	tokens := auth.NewTokenManager([]byte(config.TokenKey), config.TokenTTL)
	roomAccess := services.NewRoomAccessService(roomRepository, logger)
	wsServer := transport.NewServer(logger, router, registry, tokens, config.MaxFrameSize)
	statsCollector, err := observability.NewCollector()
	if err != nil {
		return exitRuntime, fmt.Errorf("stats collector init failed: %w", err)
	}
	handler := httpapi.NewHandler(logger, roomAccess, messageRepository,
		profileRepository, searchIndex, tokens, registry, statsCollector,
		wsServer.HandleWS, config.SearchLimit)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: handler.Routes(),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Relay listening", "addr", httpServer.Addr)
		serverErr <- httpServer.ListenAndServe()
	}()

	// 5. Lifecycle
	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitRuntime, fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "err", err)
	}

	supervisor.Stop()
	<-supervisorDone

	logger.Info("Relay stopped")
	return exitOK, nil
}
