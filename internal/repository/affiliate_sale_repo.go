package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
)

// AttributionAxis 销售归属维度，同一笔销售可同时归属经理和代理
type AttributionAxis string

// 归属维度即列名，只允许以下取值拼入 SQL
const (
	AxisManager AttributionAxis = "manager_id"
	AxisAgent   AttributionAxis = "agent_id"
)

// ErrInvalidAxis 非法的归属维度
var ErrInvalidAxis = errors.New("repository: invalid attribution axis")

// Valid 是否为合法的归属维度
func (a AttributionAxis) Valid() bool {
	return a == AxisManager || a == AxisAgent
}

// TimeWindow 时间窗口，From/To 为 nil 时该侧不限，两端均为闭区间
type TimeWindow struct {
	From *time.Time
	To   *time.Time
}

// apply 在指定列上应用闭区间窗口
func (w TimeWindow) apply(query *gorm.DB, column string) *gorm.DB {
	if w.From != nil {
		query = query.Where(column+" >= ?", *w.From)
	}
	if w.To != nil {
		query = query.Where(column+" <= ?", *w.To)
	}
	return query
}

// SaleAggregateRow 按实体分组的销售汇总
type SaleAggregateRow struct {
	EntityID           int64
	SaleCount          int64
	SaleAmount         int64
	NetRevenue         int64
	SalesCommission    int64
	OverrideCommission int64
	BranchCommission   int64
}

// SaleTrendRow 趋势统计用的原始销售行
type SaleTrendRow struct {
	EntityID           int64
	SaleDate           time.Time
	SaleAmount         int64
	NetRevenue         int64
	SalesCommission    int64
	OverrideCommission int64
	BranchCommission   int64
}

// AffiliateSaleRepository 分销销售仓储
type AffiliateSaleRepository struct {
	db *gorm.DB
}

// NewAffiliateSaleRepository 创建分销销售仓储
func NewAffiliateSaleRepository(db *gorm.DB) *AffiliateSaleRepository {
	return &AffiliateSaleRepository{db: db}
}

// Create 创建销售记录
func (r *AffiliateSaleRepository) Create(ctx context.Context, sale *models.AffiliateSale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// AggregateByEntity 按归属维度汇总可计佣销售，窗口作用于 confirmed_at
// 没有销售的实体不会出现在结果中
func (r *AffiliateSaleRepository) AggregateByEntity(ctx context.Context, axis AttributionAxis, ids []int64, window TimeWindow) ([]SaleAggregateRow, error) {
	if len(ids) == 0 {
		return []SaleAggregateRow{}, nil
	}
	if !axis.Valid() {
		return nil, ErrInvalidAxis
	}
	column := string(axis)

	query := r.db.WithContext(ctx).Model(&models.AffiliateSale{}).
		Select(column+" AS entity_id, "+
			"COUNT(*) AS sale_count, "+
			"COALESCE(SUM(sale_amount), 0) AS sale_amount, "+
			"COALESCE(SUM(net_revenue), 0) AS net_revenue, "+
			"COALESCE(SUM(sales_commission), 0) AS sales_commission, "+
			"COALESCE(SUM(override_commission), 0) AS override_commission, "+
			"COALESCE(SUM(branch_commission), 0) AS branch_commission").
		Where(column+" IN ?", ids).
		Where("status IN ?", models.CommissionEligibleSaleStatuses)
	// 有窗口时 confirmed_at 为空的行被比较条件排除，无窗口时照常计入
	query = window.apply(query, "confirmed_at")

	var rows []SaleAggregateRow
	err := query.Group(column).Scan(&rows).Error
	return rows, err
}

// ListForTrend 列出窗口内可计佣的销售原始行，窗口作用于 sale_date，右端开区间
func (r *AffiliateSaleRepository) ListForTrend(ctx context.Context, axis AttributionAxis, ids []int64, start, end time.Time) ([]SaleTrendRow, error) {
	if len(ids) == 0 {
		return []SaleTrendRow{}, nil
	}
	if !axis.Valid() {
		return nil, ErrInvalidAxis
	}
	column := string(axis)

	var rows []SaleTrendRow
	err := r.db.WithContext(ctx).Model(&models.AffiliateSale{}).
		Select(column+" AS entity_id, sale_date, sale_amount, net_revenue, "+
			"sales_commission, override_commission, branch_commission").
		Where(column+" IN ?", ids).
		Where("status IN ?", models.CommissionEligibleSaleStatuses).
		Where("sale_date >= ? AND sale_date < ?", start, end).
		Order("sale_date ASC").Order("id ASC").
		Scan(&rows).Error
	return rows, err
}
