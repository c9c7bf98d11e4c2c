package cmd

import (
	"context"
	"fmt"

	"equipment-inventory/core/broker"
	"equipment-inventory/core/config"
	"equipment-inventory/core/database"
	"equipment-inventory/core/logger"
	"equipment-inventory/core/storage"
	"equipment-inventory/feature/equipment"
	"equipment-inventory/feature/export"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadRuntime reads and validates the configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// stores holds the open equipment stores. Remote is nil when no remote
// database is configured or it could not be reached.
type stores struct {
	Local  *equipment.Store
	Remote *equipment.Store
	dbs    []*gorm.DB
}

func (s *stores) Close() {
	for _, db := range s.dbs {
		_ = database.Close(db)
	}
}

// openStores connects and migrates both stores. The local store is required;
// a remote failure is logged and leaves synchronization disabled unless
// requireRemote is set.
func openStores(ctx context.Context, cfg *config.Config, l *zap.Logger, requireRemote bool) (*stores, error) {
	s := &stores{}

	local, err := openStore(ctx, "local", cfg.Local, l)
	if err != nil {
		return nil, err
	}
	s.Local = local.store
	s.dbs = append(s.dbs, local.db)

	if !cfg.Remote.Enabled() {
		if requireRemote {
			s.Close()
			return nil, fmt.Errorf("remote database is not configured")
		}
		l.Info("Remote database not configured, synchronization disabled")
		return s, nil
	}

	remote, err := openStore(ctx, "remote", cfg.Remote, l)
	if err != nil {
		if requireRemote {
			s.Close()
			return nil, err
		}
		l.Warn("Remote database unavailable, synchronization disabled", zap.Error(err))
		return s, nil
	}
	s.Remote = remote.store
	s.dbs = append(s.dbs, remote.db)
	return s, nil
}

type openedStore struct {
	store *equipment.Store
	db    *gorm.DB
}

func (o *openedStore) Close() {
	_ = database.Close(o.db)
}

func openStore(ctx context.Context, name string, cfg database.Config, l *zap.Logger) (*openedStore, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s store: %w", name, err)
	}

	store := equipment.NewStore(db, name)
	added, err := store.Migrate(ctx)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("%s store: %w", name, err)
	}

	fields := []zap.Field{zap.String("store", name), zap.String("database", database.Describe(cfg))}
	if len(added) > 0 {
		fields = append(fields, zap.Strings("added_columns", added))
	}
	l.Info("Connected to database", fields...)
	return &openedStore{store: store, db: db}, nil
}

// newPublisher connects to RabbitMQ when configured and falls back to a
// no-op publisher otherwise.
func newPublisher(cfg *config.Config, l *zap.Logger) broker.Publisher {
	if !cfg.Broker.Enabled() {
		return broker.Nop{}
	}
	pub, err := broker.NewRabbitMQ(cfg.Broker, l)
	if err != nil {
		l.Warn("Broker unavailable, sync reports will not be published", zap.Error(err))
		return broker.Nop{}
	}
	return pub
}

// newExportService returns nil when object storage is not configured.
func newExportService(ctx context.Context, cfg *config.Config, source export.Source, l *zap.Logger) (*export.Service, error) {
	if !cfg.Storage.Enabled() {
		return nil, nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}
	created, err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
	if err != nil {
		return nil, err
	}
	if created {
		l.Info("Created storage bucket", zap.String("bucket", cfg.Storage.Bucket))
	}
	return export.NewService(source, client, cfg.Storage.Bucket, cfg.Export, l), nil
}
