package db

import (
	"context"
	"testing"

	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

type testModel struct {
	ID   int
	Name string
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	client, err := Open(sqlite.Open("file::memory:?cache=shared"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.AutoMigrate(ctx, &testModel{}))
	require.NoError(t, client.DB().Create(&testModel{Name: "row"}).Error)

	var count int64
	require.NoError(t, client.DB().Model(&testModel{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestNewValidatesConfig(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, config.DBConfig{}, nil)
	require.Error(t, err)

	_, err = New(ctx, config.DBConfig{DSN: "x", Driver: "mysql"}, nil)
	require.ErrorContains(t, err, "unsupported database driver")

	client, err := New(ctx, config.DBConfig{DSN: "file::memory:", Driver: config.DBDriverSQLite, MaxOpenConns: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
