package backend

import (
	"context"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/keyvalue"
	"ledger/internal/keyvalue/file"
	"ledger/internal/keyvalue/memory"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	kv, err := f.openStore(config)
	if err != nil {
		return nil, err
	}

	store, err := ledger.Load(ctx, kv, ledger.Options{
		Logger:         f.logger,
		RecoverCorrupt: config.RecoverCorrupt,
	})
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	// AMQP is optional; a broker that is down never blocks local use
	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
	}

	service := services.NewLedgerService(store, kv, publisher)

	f.logger.DebugContext(ctx, "Initialized backend",
		applog.FieldBackend, config.Type,
		"amqp_enabled", publisher != nil,
		applog.FieldCount, store.Len())

	return &BackendResult{
		Service: service,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) openStore(config Config) (keyvalue.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		return repo, nil
	case FileBackend:
		store, err := file.New(config.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		return store, nil
	case MemoryBackend:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
