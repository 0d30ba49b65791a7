package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
)

// UserRepository 账号仓储
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建账号仓储
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建账号
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据 ID 获取账号
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Activate 将锁定或休眠的账号恢复为正常，并清除锁定/休眠时间
// 只更新仍处于锁定或休眠状态的行，重复执行无副作用，返回受影响行数
func (r *UserRepository) Activate(ctx context.Context, id int64, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Where("status IN ?", []string{models.UserStatusLocked, models.UserStatusDormant}).
		Updates(map[string]interface{}{
			"status":         models.UserStatusActive,
			"locked_at":      nil,
			"dormant_at":     nil,
			"last_active_at": now,
			"updated_at":     now,
		})
	return result.RowsAffected, result.Error
}
