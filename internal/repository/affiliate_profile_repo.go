package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
)

// AffiliateProfileRepository 分销档案仓储
type AffiliateProfileRepository struct {
	db *gorm.DB
}

// NewAffiliateProfileRepository 创建分销档案仓储
func NewAffiliateProfileRepository(db *gorm.DB) *AffiliateProfileRepository {
	return &AffiliateProfileRepository{db: db}
}

// ProfileFilter 档案检索条件
type ProfileFilter struct {
	Role   string
	Search string
	IDs    []int64 // 非 nil 时限定在该集合内，空切片表示无结果
	Limit  int
}

// likePattern 生成大小写不敏感的子串匹配模式，转义通配符
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + replacer.Replace(strings.ToLower(search)) + "%"
}

// Search 按角色和关键字检索档案，按创建时间倒序、ID 倒序
func (r *AffiliateProfileRepository) Search(ctx context.Context, filter ProfileFilter) ([]*models.AffiliateProfile, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []*models.AffiliateProfile{}, nil
	}

	query := r.db.WithContext(ctx).Model(&models.AffiliateProfile{}).Preload("User")

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(code) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(phone, '')) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(branch_label, '')) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var profiles []*models.AffiliateProfile
	err := query.Order("created_at DESC").Order("id DESC").Find(&profiles).Error
	return profiles, err
}

// GetByID 根据 ID 获取档案
func (r *AffiliateProfileRepository) GetByID(ctx context.Context, id int64) (*models.AffiliateProfile, error) {
	var profile models.AffiliateProfile
	err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByIDs 批量获取档案
func (r *AffiliateProfileRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.AffiliateProfile, error) {
	if len(ids) == 0 {
		return []*models.AffiliateProfile{}, nil
	}
	var profiles []*models.AffiliateProfile
	err := r.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).
		Order("created_at DESC").Order("id DESC").
		Find(&profiles).Error
	return profiles, err
}

// ListRelations 获取触及给定档案的关系（任一端命中即可）
func (r *AffiliateProfileRepository) ListRelations(ctx context.Context, profileIDs []int64, statuses []string) ([]*models.AffiliateRelation, error) {
	if len(profileIDs) == 0 {
		return []*models.AffiliateRelation{}, nil
	}
	var relations []*models.AffiliateRelation
	err := r.db.WithContext(ctx).
		Where("(manager_id IN ? OR agent_id IN ?)", profileIDs, profileIDs).
		Where("status IN ?", statuses).
		Order("connected_at DESC").Order("id DESC").
		Find(&relations).Error
	return relations, err
}

// ListAgentIDsByManager 获取经理名下指定状态关系的代理 ID
func (r *AffiliateProfileRepository) ListAgentIDsByManager(ctx context.Context, managerID int64, statuses []string) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.db.WithContext(ctx).Model(&models.AffiliateRelation{}).
		Where("manager_id = ?", managerID).
		Where("status IN ?", statuses).
		Distinct().
		Pluck("agent_id", &ids).Error
	return ids, err
}
