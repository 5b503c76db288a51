package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/pkg/log"
)

func TestMigrate_Bolt(t *testing.T) {
	logger, err := log.NewLogrusLoggerTo(io.Discard, "info")
	require.NoError(t, err)

	config := cfg.Defaults()
	config.Bolt.Path = filepath.Join(t.TempDir(), "kudos.bolt")

	require.NoError(t, migrate(context.Background(), config, logger))
	_, err = os.Stat(config.Bolt.Path)
	require.NoError(t, err)

	// running twice is harmless
	require.NoError(t, migrate(context.Background(), config, logger))
}

func TestMigrate_UnknownDriver(t *testing.T) {
	logger, err := log.NewLogrusLoggerTo(io.Discard, "info")
	require.NoError(t, err)

	config := cfg.Defaults()
	config.Storage.Driver = "sqlite"
	require.Error(t, migrate(context.Background(), config, logger))
}

func TestMigrate_MysqlUnreachable(t *testing.T) {
	logger, err := log.NewLogrusLoggerTo(io.Discard, "info")
	require.NoError(t, err)

	config := cfg.Defaults()
	config.Storage.Driver = "mysql"
	config.Mysql.Host = "127.0.0.1"
	config.Mysql.Port = "1"

	require.Error(t, migrate(context.Background(), config, logger))
}
