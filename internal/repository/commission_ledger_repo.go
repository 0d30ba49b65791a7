package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
)

// LedgerAggregateRow 按 (档案, 类型, 结算状态) 分组的台账汇总
type LedgerAggregateRow struct {
	ProfileID         int64
	EntryType         string
	IsSettled         bool
	Amount            int64
	WithholdingAmount int64
	EntryCount        int64
}

// CommissionLedgerRepository 佣金台账仓储
type CommissionLedgerRepository struct {
	db *gorm.DB
}

// NewCommissionLedgerRepository 创建佣金台账仓储
func NewCommissionLedgerRepository(db *gorm.DB) *CommissionLedgerRepository {
	return &CommissionLedgerRepository{db: db}
}

// Create 追加台账条目
func (r *CommissionLedgerRepository) Create(ctx context.Context, entry *models.CommissionLedger) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AggregateByProfile 汇总指定档案、指定类型的台账，窗口作用于 created_at
func (r *CommissionLedgerRepository) AggregateByProfile(ctx context.Context, profileIDs []int64, entryTypes []string, window TimeWindow) ([]LedgerAggregateRow, error) {
	if len(profileIDs) == 0 || len(entryTypes) == 0 {
		return []LedgerAggregateRow{}, nil
	}

	query := r.db.WithContext(ctx).Model(&models.CommissionLedger{}).
		Select("profile_id, entry_type, is_settled, " +
			"COALESCE(SUM(amount), 0) AS amount, " +
			"COALESCE(SUM(withholding_amount), 0) AS withholding_amount, " +
			"COUNT(*) AS entry_count").
		Where("profile_id IN ?", profileIDs).
		Where("entry_type IN ?", entryTypes)
	query = window.apply(query, "created_at")

	var rows []LedgerAggregateRow
	err := query.Group("profile_id, entry_type, is_settled").Scan(&rows).Error
	return rows, err
}
