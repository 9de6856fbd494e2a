package backend

import (
	"context"

	"fortis/internal/amqp"
	"fortis/internal/services"
	"fortis/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the opened store, the optional event publisher and
// the cleanup that releases both.
type BackendResult struct {
	Store store.Store
	// Events is nil when no broker is configured or reachable.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns Events as a services.EventPublisher, or a nil interface
// when there is no broker.
func (r *BackendResult) Publisher() services.EventPublisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Broker; an empty URL disables event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// AMQPBindings are routing keys bound to AMQPQueue. Only consumers need them.
	AMQPBindings []string
	// RequireAMQP turns a broker connection failure into an error instead of
	// a warning.
	RequireAMQP bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
