package settlement

import (
	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
)

// ActivationScheduler 调度账号状态修正，实现方不得阻塞调用方
type ActivationScheduler interface {
	Schedule(profile *models.AffiliateProfile)
}

// partials 一组实体的各项汇总结果，按实体 ID 索引
type partials struct {
	role   string
	sales  map[int64]SaleTotals
	ledger map[int64]LedgerSummary
	trends map[int64][]TrendBucket
	leads  map[int64]LeadCounts // nil 表示不统计线索
}

// RollupCompositor 按实体 ID 合并各项汇总并计算合计
type RollupCompositor struct {
	activator ActivationScheduler
}

// NewRollupCompositor 创建合并器，activator 可为 nil
func NewRollupCompositor(activator ActivationScheduler) *RollupCompositor {
	return &RollupCompositor{activator: activator}
}

// grossCommission 按角色从销售汇总计算税前佣金
func grossCommission(role string, sales SaleTotals) int64 {
	if role == models.AffiliateRoleSalesAgent {
		return sales.SalesCommission + sales.OverrideCommission
	}
	return sales.BranchCommission + sales.OverrideCommission
}

// Compose 合并顶层候选和嵌套代理，返回实体记录和合计
func (c *RollupCompositor) Compose(view View, cands *Candidates, window TrendWindow, top, nested partials) ([]*EntityRecord, *Totals) {
	records := make([]*EntityRecord, 0, len(cands.Profiles))
	for _, profile := range cands.Profiles {
		record := c.composeRecord(profile, window, top)

		if view == ViewAgents {
			if manager := cands.activeManager(profile.ID); manager != nil {
				record.ManagerID = &manager.ID
				record.ManagerName = manager.Name
			}
		} else {
			counts := cands.relationCounts(profile.ID)
			record.Relations = &counts
		}

		if agents, ok := cands.Nested[profile.ID]; ok {
			record.Agents = make([]*EntityRecord, 0, len(agents))
			for _, agent := range agents {
				child := c.composeRecord(agent, window, nested)
				child.ManagerID = &profile.ID
				child.ManagerName = profile.Name
				record.Agents = append(record.Agents, child)
			}
		}

		records = append(records, record)
	}

	totals := &Totals{
		MonthlyTrend: window.emptyTrend(),
	}
	if view == ViewAgents {
		totals.AgentCount = len(records)
		totals.ManagerCount = cands.linkedManagerCount()
		totals.Leads = &LeadCounts{}
	} else {
		totals.ManagerCount = len(records)
		totals.AgentCount = cands.linkedAgentCount()
	}
	for _, record := range records {
		totals.Sales.add(record.Sales)
		totals.Ledger.add(record.Ledger)
		totals.GrossCommission += record.GrossCommission
		totals.NetCommission += record.NetCommission
		for i := range totals.MonthlyTrend {
			totals.MonthlyTrend[i].add(record.MonthlyTrend[i])
		}
		if totals.Leads != nil && record.Leads != nil {
			totals.Leads.add(*record.Leads)
		}
	}

	return records, totals
}

// composeRecord 合并单个实体，缺失的汇总视为零
func (c *RollupCompositor) composeRecord(profile *models.AffiliateProfile, window TrendWindow, p partials) *EntityRecord {
	sales := p.sales[profile.ID]
	ledger := p.ledger[profile.ID]
	gross := grossCommission(p.role, sales)

	record := &EntityRecord{
		ID:              profile.ID,
		Role:            profile.Role,
		Name:            profile.Name,
		Code:            profile.Code,
		Phone:           profile.Phone,
		Status:          profile.Status,
		BranchLabel:     profile.BranchLabel,
		Sales:           sales,
		Ledger:          ledger,
		GrossCommission: gross,
		NetCommission:   gross - ledger.TotalWithholding,
		MonthlyTrend:    trendFor(window, p.trends, profile.ID),
	}
	if p.leads != nil {
		leads := p.leads[profile.ID]
		record.Leads = &leads
	}

	if c.activator != nil && needsActivation(profile, sales) {
		c.activator.Schedule(profile)
	}
	return record
}

// needsActivation 有活动记录但关联账号仍为锁定或休眠
func needsActivation(profile *models.AffiliateProfile, sales SaleTotals) bool {
	if profile.User == nil || !profile.User.NeedsActivation() {
		return false
	}
	return sales.Count > 0 || profile.OnboardedAt != nil
}
