package main

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"minitweet/internal/config"
)

func TestBuildRepositoriesSQLiteReturnsCloser(t *testing.T) {
	var cfg config.Config
	cfg.Storage.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")

	userRepo, tweetRepo, closer, err := buildRepositories(cfg, logrus.New())
	require.NoError(t, err)
	require.NotNil(t, userRepo)
	require.NotNil(t, tweetRepo)
	require.NotNil(t, closer)
	require.NoError(t, closer.Close())
}

func TestBuildRepositoriesJSONNeedsNoCloser(t *testing.T) {
	var cfg config.Config
	cfg.Storage.Driver = "json"
	cfg.Storage.DataDir = t.TempDir()

	userRepo, tweetRepo, closer, err := buildRepositories(cfg, logrus.New())
	require.NoError(t, err)
	require.NotNil(t, userRepo)
	require.NotNil(t, tweetRepo)
	require.Nil(t, closer)
}
