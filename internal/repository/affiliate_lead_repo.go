package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
)

// LeadCountRow 按实体和状态分组的线索数量
type LeadCountRow struct {
	EntityID  int64
	Status    string
	LeadCount int64
}

// AffiliateLeadRepository 分销线索仓储
type AffiliateLeadRepository struct {
	db *gorm.DB
}

// NewAffiliateLeadRepository 创建分销线索仓储
func NewAffiliateLeadRepository(db *gorm.DB) *AffiliateLeadRepository {
	return &AffiliateLeadRepository{db: db}
}

// Create 创建线索
func (r *AffiliateLeadRepository) Create(ctx context.Context, lead *models.AffiliateLead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// CountByStatus 按归属维度和状态统计线索数，窗口作用于 created_at
func (r *AffiliateLeadRepository) CountByStatus(ctx context.Context, axis AttributionAxis, ids []int64, window TimeWindow) ([]LeadCountRow, error) {
	if len(ids) == 0 {
		return []LeadCountRow{}, nil
	}
	if !axis.Valid() {
		return nil, ErrInvalidAxis
	}
	column := string(axis)

	query := r.db.WithContext(ctx).Model(&models.AffiliateLead{}).
		Select(column+" AS entity_id, status, COUNT(*) AS lead_count").
		Where(column+" IN ?", ids)
	query = window.apply(query, "created_at")

	var rows []LeadCountRow
	err := query.Group(column + ", status").Scan(&rows).Error
	return rows, err
}
