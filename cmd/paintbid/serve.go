package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/paintbid/paintbid/cmd/paintbid/shared"
	"github.com/paintbid/paintbid/internal/server"
	"github.com/paintbid/paintbid/internal/store"
)

// ServeCmd runs the WebSocket game server
type ServeCmd struct {
	Addr   string `kong:"help='Server address (overrides config)'"`
	Config string `kong:"default='paintbid.hcl',help='Path to HCL config file'"`
	DBPath string `kong:"name='db',help='Path to SQLite database (overrides config)'"`
	Seed   int64  `kong:"help='Seed for reproducible shuffles (0 = random)'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel, c.Debug)

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	dbPath := cfg.Store.Path
	if c.DBPath != "" {
		dbPath = c.DBPath
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	svc := server.NewGameService(cfg, st, logger, quartz.NewReal())
	if c.Seed != 0 {
		svc.UseSeed(c.Seed)
	}
	if err := svc.LoadPersistedGames(ctx); err != nil {
		return err
	}

	srv := server.NewServer(addr, logger)
	srv.SetGameService(svc)

	logger.Info("Starting auction table server",
		"address", addr,
		"db", dbPath,
		"lobby_ttl", cfg.LobbyTTL(),
		"restored_games", svc.GameCount())

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		return svc.Run(ctx)
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		return srv.Stop()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
