package settlement

import (
	"context"

	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
	"github.com/dumeirei/affiliate-settlement-backend/internal/repository"
)

// Aggregator 销售、台账和线索的分组汇总
type Aggregator struct {
	saleRepo   *repository.AffiliateSaleRepository
	ledgerRepo *repository.CommissionLedgerRepository
	leadRepo   *repository.AffiliateLeadRepository
}

// NewAggregator 创建汇总器
func NewAggregator(
	saleRepo *repository.AffiliateSaleRepository,
	ledgerRepo *repository.CommissionLedgerRepository,
	leadRepo *repository.AffiliateLeadRepository,
) *Aggregator {
	return &Aggregator{
		saleRepo:   saleRepo,
		ledgerRepo: ledgerRepo,
		leadRepo:   leadRepo,
	}
}

// Sales 按归属维度汇总可计佣销售，没有销售的实体不在结果中
func (a *Aggregator) Sales(ctx context.Context, axis repository.AttributionAxis, ids []int64, window repository.TimeWindow) (map[int64]SaleTotals, error) {
	rows, err := a.saleRepo.AggregateByEntity(ctx, axis, ids, window)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]SaleTotals, len(rows))
	for _, row := range rows {
		totals := result[row.EntityID]
		totals.add(SaleTotals{
			Count:              row.SaleCount,
			SaleAmount:         row.SaleAmount,
			NetRevenue:         row.NetRevenue,
			SalesCommission:    row.SalesCommission,
			OverrideCommission: row.OverrideCommission,
			BranchCommission:   row.BranchCommission,
		})
		result[row.EntityID] = totals
	}
	return result, nil
}

// ledgerEntryTypes 角色关心的台账条目类型
func ledgerEntryTypes(role string) []string {
	if role == models.AffiliateRoleSalesAgent {
		return []string{
			models.LedgerEntrySalesCommission,
			models.LedgerEntryOverrideCommission,
			models.LedgerEntryWithholding,
		}
	}
	return []string{
		models.LedgerEntryBranchCommission,
		models.LedgerEntryOverrideCommission,
		models.LedgerEntryWithholding,
	}
}

// Ledger 汇总台账并折叠为已结算/待结算和预扣税
func (a *Aggregator) Ledger(ctx context.Context, role string, ids []int64, window repository.TimeWindow) (map[int64]LedgerSummary, error) {
	rows, err := a.ledgerRepo.AggregateByProfile(ctx, ids, ledgerEntryTypes(role), window)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]LedgerSummary)
	for _, row := range rows {
		summary := result[row.ProfileID]
		foldLedgerRow(&summary, row)
		result[row.ProfileID] = summary
	}
	return result, nil
}

// foldLedgerRow 将一行 (类型, 结算状态) 汇总并入台账汇总
func foldLedgerRow(summary *LedgerSummary, row repository.LedgerAggregateRow) {
	summary.EntryCount += row.EntryCount

	if !models.IsCommissionEntry(row.EntryType) {
		if row.EntryType == models.LedgerEntryWithholding {
			summary.WithholdingAdjustment += row.Amount
		}
		return
	}

	split := EntrySplit{Withholding: row.WithholdingAmount, Count: row.EntryCount}
	if row.IsSettled {
		split.Settled = row.Amount
		summary.Settled += row.Amount
	} else {
		split.Pending = row.Amount
		summary.Pending += row.Amount
	}

	switch row.EntryType {
	case models.LedgerEntrySalesCommission:
		summary.SalesCommission.add(split)
		summary.SalesWithholding += row.WithholdingAmount
	case models.LedgerEntryOverrideCommission:
		summary.OverrideCommission.add(split)
		summary.OverrideWithholding += row.WithholdingAmount
	case models.LedgerEntryBranchCommission:
		summary.BranchCommission.add(split)
		summary.BranchWithholding += row.WithholdingAmount
	}
	summary.TotalWithholding += row.WithholdingAmount
}

// Leads 按归属维度统计各状态线索数
func (a *Aggregator) Leads(ctx context.Context, axis repository.AttributionAxis, ids []int64, window repository.TimeWindow) (map[int64]LeadCounts, error) {
	rows, err := a.leadRepo.CountByStatus(ctx, axis, ids, window)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]LeadCounts)
	for _, row := range rows {
		counts := result[row.EntityID]
		counts.addStatus(row.Status, row.LeadCount)
		result[row.EntityID] = counts
	}
	return result, nil
}

// SaleTrendRows 获取趋势窗口内的原始销售行
func (a *Aggregator) SaleTrendRows(ctx context.Context, axis repository.AttributionAxis, ids []int64, w TrendWindow) ([]repository.SaleTrendRow, error) {
	return a.saleRepo.ListForTrend(ctx, axis, ids, w.Start, w.End)
}
