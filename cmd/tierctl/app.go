package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rogers-f/tierforge/internal/catalog"
	"github.com/rogers-f/tierforge/internal/config"
	"github.com/rogers-f/tierforge/internal/contribution"
	"github.com/rogers-f/tierforge/internal/domain"
	"github.com/rogers-f/tierforge/internal/leaderboard"
	"github.com/rogers-f/tierforge/internal/notify"
	"github.com/rogers-f/tierforge/internal/provision"
	"github.com/rogers-f/tierforge/internal/store"
	"github.com/rogers-f/tierforge/internal/tier"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg         *config.Config
	db          *sql.DB
	catalog     *catalog.Catalog
	store       *store.ContributionStore
	tiers       *tier.TransitionService
	recorder    *contribution.Recorder
	provisioner *provision.Provisioner
	leaderboard *leaderboard.Service
	publisher   *notify.RedisPublisher
	rdb         *redis.Client
	log         *zap.Logger
}

// resolveConfigPath picks the config file: --config flag, then
// TIERFORGE_CONFIG, then auto-discovery. An empty result means environment
// and flags only.
func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv("TIERFORGE_CONFIG"); p != "" {
		return p
	}
	return config.Discover()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

// loadConfig resolves configuration from file, environment and flags and
// applies its log level.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	path := resolveConfigPath(opts.configPath)
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !opts.verbose {
		if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
			opts.level.SetLevel(lvl)
		}
	}
	opts.logger.Debug("config loaded", zap.String("path", path), zap.String("db", cfg.DBPath))
	return cfg, nil
}

// loadConfiguredCatalog returns the catalog named by the resolved config.
func loadConfiguredCatalog(cmd *cobra.Command, opts *rootOptions) (*catalog.Catalog, *config.Config, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, nil, err
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, cfg, nil
}

// openApp loads configuration and wires every component.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cat, cfg, err := loadConfiguredCatalog(cmd, opts)
	if err != nil {
		return nil, err
	}
	log := opts.logger

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := store.NewContributionStore(db)
	s.StrictRegistration = cfg.StrictRegistration
	tiers := tier.NewTransitionService(s, cat)

	prov, err := provision.NewProvisioner(s, cat, cfg.ProvisionTemplate)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		db:          db,
		catalog:     cat,
		store:       s,
		tiers:       tiers,
		recorder:    contribution.NewRecorder(s, tiers),
		provisioner: prov,
		leaderboard: leaderboard.NewService(s, cat),
		log:         log,
	}

	if cfg.RedisURL != "" {
		pub, rdb, err := notify.NewRedisPublisher(cfg.RedisURL, cfg.RedisStream)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.publisher, a.rdb = pub, rdb
	}
	return a, nil
}

// Close releases the database and Redis connections.
func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("close database", zap.Error(err))
	}
}

// announce publishes a changed transition. Publish failures never fail the
// command; the event is already durable.
func (a *app) announce(ctx context.Context, res *domain.TierTransitionResult) {
	if res == nil || !res.Changed {
		return
	}
	a.log.Info("tier changed",
		zap.String("agent_id", res.AgentID),
		zap.String("from", string(res.PreviousTier)),
		zap.String("to", string(res.NewTier)),
	)
	if a.publisher == nil {
		return
	}
	id, err := a.publisher.PublishTransition(ctx, res)
	if err != nil {
		a.log.Warn("publish transition", zap.String("agent_id", res.AgentID), zap.Error(err))
		return
	}
	a.log.Debug("transition published", zap.String("stream", a.publisher.Stream), zap.String("id", id))
}
