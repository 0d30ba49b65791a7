// Package database 数据库模块单元测试
package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logMode  bool
		expected gormlogger.LogLevel
	}{
		{"log mode enabled", true, gormlogger.Info},
		{"log mode disabled", false, gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getLogLevel(tt.logMode))
		})
	}
}

func TestGetDB_ReturnsGlobalDB(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	oldDB := db
	db = testDB
	t.Cleanup(func() {
		db = oldDB
	})

	assert.Equal(t, testDB, GetDB())
}

func TestClose(t *testing.T) {
	t.Run("nil 连接", func(t *testing.T) {
		oldDB := db
		db = nil
		t.Cleanup(func() { db = oldDB })

		assert.NoError(t, Close())
	})

	t.Run("活动连接", func(t *testing.T) {
		testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)

		oldDB := db
		db = testDB
		t.Cleanup(func() { db = oldDB })

		assert.NoError(t, Close())
		assert.Error(t, Ping(context.Background(), testDB))
	})
}

func TestPing(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	assert.NoError(t, Ping(context.Background(), testDB))
	assert.Error(t, Ping(context.Background(), nil))
}

func TestZapWriter(t *testing.T) {
	assert.NotPanics(t, func() {
		zapWriter{}.Printf("slow sql %s", "SELECT 1")
	})
}
