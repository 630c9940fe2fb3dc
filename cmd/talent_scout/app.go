package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/talent-scout/internal/bountylab"
	"github.com/jonathan/talent-scout/internal/config"
	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/events"
	"github.com/jonathan/talent-scout/internal/logging"
	"github.com/jonathan/talent-scout/internal/pipeline"
	"github.com/jonathan/talent-scout/internal/search"
)

var errDatabaseRequired = errors.New("DATABASE_URL is required (set it in the environment or the config file)")

// app holds the dependencies shared by every command.
type app struct {
	cfg     config.Config
	log     *logging.Logger
	cleanup []func()
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logging.New(cfg.LogLevel)}, nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	_ = a.log.Sync()
}

// searchService returns a facade over the BountyLab client. Without an API
// key the returned service is unconfigured.
func (a *app) searchService() (*search.Service, error) {
	if a.cfg.BountyLabAPIKey == "" {
		return search.NewService(nil, a.log), nil
	}
	timeout, err := a.cfg.Timeout()
	if err != nil {
		return nil, err
	}
	client, err := bountylab.NewClient(bountylab.Config{
		APIKey:  a.cfg.BountyLabAPIKey,
		BaseURL: a.cfg.BountyLabBaseURL,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	return search.NewService(client, a.log), nil
}

// requireSearch is searchService for commands that cannot run without it.
func (a *app) requireSearch() (*search.Service, error) {
	svc, err := a.searchService()
	if err != nil {
		return nil, err
	}
	if !svc.Configured() {
		return nil, bountylab.ErrMissingAPIKey
	}
	return svc, nil
}

// database connects to Postgres, or returns nil when DATABASE_URL is unset.
func (a *app) database(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanup = append(a.cleanup, database.Close)
	return database, nil
}

// publisher returns a Redis publisher when REDIS_URL is set. A Redis outage
// degrades to no events rather than failing the command.
func (a *app) publisher(ctx context.Context) events.Publisher {
	if a.cfg.RedisURL == "" {
		return events.Nop{}
	}
	rdb, err := events.Connect(ctx, a.cfg.RedisURL)
	if err != nil {
		a.log.Warn("pipeline events disabled", "err", err)
		return events.Nop{}
	}
	a.cleanup = append(a.cleanup, func() { _ = rdb.Close() })
	return events.NewRedisPublisher(rdb)
}

// pipelineService wires the store and publisher. With required set, a missing
// database is an error; otherwise the service is left unconfigured.
func (a *app) pipelineService(ctx context.Context, required bool) (*pipeline.Service, error) {
	database, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	if database == nil {
		if required {
			return nil, errDatabaseRequired
		}
		return pipeline.NewService(nil, nil, a.log), nil
	}
	return pipeline.NewService(database, a.publisher(ctx), a.log), nil
}
