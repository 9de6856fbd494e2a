package backend

import (
	"context"
	"errors"
	"fmt"

	"fortis/internal/amqp"
	flog "fortis/internal/log"
	"fortis/internal/store"
	"fortis/internal/store/memory"
	"fortis/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *flog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *flog.Logger) Factory {
	if logger == nil {
		logger = flog.New(flog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(flog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	var (
		st  store.Store
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = sqlite.NewRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		st = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	events, err := f.connectBroker(config)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &BackendResult{
		Store:  st,
		Events: events,
		Cleanup: func() error {
			var errs []error
			if events != nil {
				errs = append(errs, events.Close())
			}
			errs = append(errs, st.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) connectBroker(config Config) (*amqp.Client, error) {
	if config.AMQPURL == "" {
		if config.RequireAMQP {
			return nil, errors.New("AMQP URL is required")
		}
		return nil, nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, config.AMQPBindings...)
	if err != nil {
		if config.RequireAMQP {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil, nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client, nil
}
