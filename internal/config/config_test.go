package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/bipagem/internal/config"
	"github.com/tuanvumaihuynh/bipagem/internal/model"
)

func TestNewDefaults(t *testing.T) {
	type Config struct {
		Log       config.Log
		HTTP      config.HTTP
		Storage   config.Storage
		SQLite    config.SQLite
		Kafka     config.Kafka
		Export    config.Export
		SheetFeed config.SheetFeed
	}

	cfg, err := config.New[Config]()
	require.NoError(t, err)

	assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, uint32(8000), cfg.HTTP.Port)
	assert.Equal(t, config.StorageBackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "bipagem.db", cfg.SQLite.Path)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, ',', cfg.Export.Delimiter())
	assert.Equal(t, model.LoadModeReplace, cfg.SheetFeed.Mode)
	assert.False(t, cfg.SheetFeed.Enabled())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("KAFKA_ADDRESSES", "k1:9092,k2:9092")
	t.Setenv("EXPORT_CSV_DELIMITER", ";")
	t.Setenv("SHEET_FEED_URL", "https://example.com/sheet.csv")
	t.Setenv("SHEET_FEED_MODE", "adicionar")
	t.Setenv("SHEET_FEED_INTERVAL", "5m")

	type Config struct {
		Log       config.Log
		Storage   config.Storage
		Kafka     config.Kafka
		Export    config.Export
		SheetFeed config.SheetFeed
	}

	cfg, err := config.New[Config]()
	require.NoError(t, err)

	assert.Equal(t, config.LogFormatText, cfg.Log.Format)
	assert.Equal(t, config.StorageBackendMemory, cfg.Storage.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addresses)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, ';', cfg.Export.Delimiter())
	assert.True(t, cfg.SheetFeed.Enabled())
	assert.Equal(t, model.LoadModeAppend, cfg.SheetFeed.Mode)
	assert.Equal(t, 5*time.Minute, cfg.SheetFeed.Interval)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "oracle")

	_, err := config.New[struct{ Storage config.Storage }]()
	assert.Error(t, err)
}

func TestExportValidate(t *testing.T) {
	tests := []struct {
		delimiter string
		wantErr   bool
	}{
		{delimiter: ""},
		{delimiter: ","},
		{delimiter: ";"},
		{delimiter: "\t"},
		{delimiter: "|"},
		{delimiter: `"`, wantErr: true},
		{delimiter: "\n", wantErr: true},
		{delimiter: "\r", wantErr: true},
		{delimiter: ";;", wantErr: true},
		{delimiter: "\xff", wantErr: true},
	}

	for _, tt := range tests {
		err := config.Export{CSVDelimiter: tt.delimiter}.Validate()
		if tt.wantErr {
			assert.Error(t, err, "%q", tt.delimiter)
		} else {
			assert.NoError(t, err, "%q", tt.delimiter)
		}
	}
}
