// Package models 定义数据模型
package models

import "time"

// User 登录账号，分销档案通过 user_id 关联
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string     `gorm:"type:varchar(100);not null;default:''" json:"name"`
	Status       string     `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	DormantAt    *time.Time `json:"dormant_at,omitempty"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// UserStatus 账号状态
const (
	UserStatusActive  = "ACTIVE"
	UserStatusLocked  = "LOCKED"
	UserStatusDormant = "DORMANT"
)

// NeedsActivation 账号是否处于锁定或休眠状态
func (u *User) NeedsActivation() bool {
	return u.Status == UserStatusLocked || u.Status == UserStatusDormant
}
