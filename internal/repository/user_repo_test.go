// Package repository 账号仓储单元测试
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
)

// setupUserRepoTestDB 创建测试数据库
func setupUserRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestUserRepository_Activate(t *testing.T) {
	db := setupUserRepoTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	lockedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	locked := &models.User{Email: "locked@example.com", Status: models.UserStatusLocked, LockedAt: &lockedAt}
	dormant := &models.User{Email: "dormant@example.com", Status: models.UserStatusDormant, DormantAt: &lockedAt}
	active := &models.User{Email: "active@example.com", Status: models.UserStatusActive}
	for _, u := range []*models.User{locked, dormant, active} {
		require.NoError(t, repo.Create(ctx, u))
	}

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("锁定账号被激活", func(t *testing.T) {
		affected, err := repo.Activate(ctx, locked.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		found, err := repo.GetByID(ctx, locked.ID)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusActive, found.Status)
		assert.Nil(t, found.LockedAt)
		require.NotNil(t, found.LastActiveAt)
		assert.True(t, found.LastActiveAt.Equal(now))
	})

	t.Run("重复激活无副作用", func(t *testing.T) {
		affected, err := repo.Activate(ctx, locked.ID, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)

		found, err := repo.GetByID(ctx, locked.ID)
		require.NoError(t, err)
		assert.True(t, found.LastActiveAt.Equal(now))
	})

	t.Run("休眠账号被激活", func(t *testing.T) {
		affected, err := repo.Activate(ctx, dormant.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		found, err := repo.GetByID(ctx, dormant.ID)
		require.NoError(t, err)
		assert.Nil(t, found.DormantAt)
	})

	t.Run("正常账号不变", func(t *testing.T) {
		affected, err := repo.Activate(ctx, active.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})

	t.Run("不存在的账号", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
