package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/loganlanou/storefront/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONTagsService(t *testing.T) {
	config := &service.Config{Environment: "staging"}
	config.Log.Format = "json"

	var buf bytes.Buffer
	newLogger(&buf, config).Info("order placed", "order_code", "ORD-1")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "order placed", record["msg"])
	assert.Equal(t, "storefront", record["service"])
	assert.Equal(t, "staging", record["environment"])
	assert.Equal(t, "ORD-1", record["order_code"])
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	config := &service.Config{}
	config.Log.Format = "json"
	config.Log.Level = slog.LevelWarn

	var buf bytes.Buffer
	logger := newLogger(&buf, config)
	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}

func TestNewLoggerText(t *testing.T) {
	config := &service.Config{Environment: "development"}
	config.Log.Format = "text"
	config.Log.Level = slog.LevelDebug

	var buf bytes.Buffer
	newLogger(&buf, config).Debug("cart loaded", "error", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "cart loaded")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "storefront")
}

func TestTrimSource(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"/home/ci/src/storefront/internal/cart/store.go", "internal/cart/store.go"},
		{"/go/pkg/mod/github.com/labstack/echo/v4/echo.go", "v4/echo.go"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trimSource(tt.file, "/storefront/"))
	}
}
