package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/config"
	"fortis/internal/core"
)

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		config  func(t *testing.T) Config
		wantErr string
	}{
		{
			name:   "memory",
			config: func(t *testing.T) Config { return Config{Type: MemoryBackend} },
		},
		{
			name: "sqlite",
			config: func(t *testing.T) Config {
				return Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "fortis.db")}
			},
		},
		{
			name:    "invalid type",
			config:  func(t *testing.T) Config { return Config{Type: "sheets"} },
			wantErr: "invalid backend type",
		},
		{
			name:    "broker required but unset",
			config:  func(t *testing.T) Config { return Config{Type: MemoryBackend, RequireAMQP: true} },
			wantErr: "AMQP URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config(t))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, res.Cleanup()) })

			assert.Nil(t, res.Events)
			assert.Nil(t, res.Publisher())

			ids, err := res.Store.ListUserIDs(ctx)
			require.NoError(t, err)
			assert.Empty(t, ids)

			require.NoError(t, res.Store.SaveAlertSettings(ctx, "u1", core.DefaultAlertSettings()))
			ids, err = res.Store.ListUserIDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"u1"}, ids)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		AMQPURL:      "amqp://localhost",
		AMQPExchange: "fortis.ledger",
		AMQPQueue:    "weekly_reports",
	}
	got, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, got.Type)
	assert.Equal(t, "/tmp/x.db", got.SQLiteDBPath)
	assert.Equal(t, "amqp://localhost", got.AMQPURL)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}
