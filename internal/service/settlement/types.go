// Package settlement 提供分销佣金汇总与结算报表服务
package settlement

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/errors"
	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
	"github.com/dumeirei/affiliate-settlement-backend/internal/repository"
)

// View 报表视图
type View string

// 报表视图
const (
	ViewManagers View = "managers"
	ViewAgents   View = "agents"
)

// Valid 是否为合法视图
func (v View) Valid() bool {
	return v == ViewManagers || v == ViewAgents
}

// role 视图对应的档案角色
func (v View) role() string {
	if v == ViewAgents {
		return models.AffiliateRoleSalesAgent
	}
	return models.AffiliateRoleBranchManager
}

// axis 视图对应的销售归属维度
func (v View) axis() repository.AttributionAxis {
	return axisForRole(v.role())
}

func axisForRole(role string) repository.AttributionAxis {
	if role == models.AffiliateRoleSalesAgent {
		return repository.AxisAgent
	}
	return repository.AxisManager
}

// Format 输出格式
type Format string

// 输出格式
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat 解析输出格式，空值为 json
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", errors.ErrInvalidFormat
}

// Query 报表查询条件
type Query struct {
	View      View
	Search    string
	ManagerID *int64
	From      *time.Time // 含当天 00:00:00
	To        *time.Time // 含当天 23:59:59
	Months    int        // 趋势月数，0 使用配置
	Now       time.Time  // 零值使用当前时间
}

func (q Query) window() repository.TimeWindow {
	return repository.TimeWindow{From: q.From, To: q.To}
}

// SaleTotals 销售汇总
type SaleTotals struct {
	Count              int64 `json:"count"`
	SaleAmount         int64 `json:"saleAmount"`
	NetRevenue         int64 `json:"netRevenue"`
	SalesCommission    int64 `json:"salesCommission"`
	OverrideCommission int64 `json:"overrideCommission"`
	BranchCommission   int64 `json:"branchCommission"`
}

func (s *SaleTotals) add(o SaleTotals) {
	s.Count += o.Count
	s.SaleAmount += o.SaleAmount
	s.NetRevenue += o.NetRevenue
	s.SalesCommission += o.SalesCommission
	s.OverrideCommission += o.OverrideCommission
	s.BranchCommission += o.BranchCommission
}

// EntrySplit 单一条目类型的已结算/待结算拆分
type EntrySplit struct {
	Settled     int64 `json:"settled"`
	Pending     int64 `json:"pending"`
	Withholding int64 `json:"withholding"`
	Count       int64 `json:"count"`
}

func (e *EntrySplit) add(o EntrySplit) {
	e.Settled += o.Settled
	e.Pending += o.Pending
	e.Withholding += o.Withholding
	e.Count += o.Count
}

// LedgerSummary 台账汇总
//
// Settled/Pending 只统计佣金类条目，TotalWithholding 为三类佣金条目预扣税之和，
// WITHHOLDING 类型条目的金额单独计入 WithholdingAdjustment
type LedgerSummary struct {
	Settled               int64      `json:"settled"`
	Pending               int64      `json:"pending"`
	SalesCommission       EntrySplit `json:"salesCommission"`
	OverrideCommission    EntrySplit `json:"overrideCommission"`
	BranchCommission      EntrySplit `json:"branchCommission"`
	SalesWithholding      int64      `json:"salesWithholding"`
	OverrideWithholding   int64      `json:"overrideWithholding"`
	BranchWithholding     int64      `json:"branchWithholding"`
	TotalWithholding      int64      `json:"totalWithholding"`
	WithholdingAdjustment int64      `json:"withholdingAdjustment"`
	EntryCount            int64      `json:"entryCount"`
}

func (l *LedgerSummary) add(o LedgerSummary) {
	l.Settled += o.Settled
	l.Pending += o.Pending
	l.SalesCommission.add(o.SalesCommission)
	l.OverrideCommission.add(o.OverrideCommission)
	l.BranchCommission.add(o.BranchCommission)
	l.SalesWithholding += o.SalesWithholding
	l.OverrideWithholding += o.OverrideWithholding
	l.BranchWithholding += o.BranchWithholding
	l.TotalWithholding += o.TotalWithholding
	l.WithholdingAdjustment += o.WithholdingAdjustment
	l.EntryCount += o.EntryCount
}

// TrendBucket 月度趋势
type TrendBucket struct {
	Month              string `json:"month"`
	SaleCount          int64  `json:"saleCount"`
	SaleAmount         int64  `json:"saleAmount"`
	NetRevenue         int64  `json:"netRevenue"`
	SalesCommission    int64  `json:"salesCommission"`
	OverrideCommission int64  `json:"overrideCommission"`
	BranchCommission   int64  `json:"branchCommission"`
}

func (b *TrendBucket) add(o TrendBucket) {
	b.SaleCount += o.SaleCount
	b.SaleAmount += o.SaleAmount
	b.NetRevenue += o.NetRevenue
	b.SalesCommission += o.SalesCommission
	b.OverrideCommission += o.OverrideCommission
	b.BranchCommission += o.BranchCommission
}

// LeadCounts 线索数量
type LeadCounts struct {
	New        int64 `json:"new"`
	Contacted  int64 `json:"contacted"`
	Consulting int64 `json:"consulting"`
	Converted  int64 `json:"converted"`
	Lost       int64 `json:"lost"`
	Total      int64 `json:"total"`
}

func (l *LeadCounts) addStatus(status string, n int64) {
	switch status {
	case models.LeadStatusNew:
		l.New += n
	case models.LeadStatusContacted:
		l.Contacted += n
	case models.LeadStatusConsulting:
		l.Consulting += n
	case models.LeadStatusConverted:
		l.Converted += n
	case models.LeadStatusLost:
		l.Lost += n
	}
	l.Total += n
}

func (l *LeadCounts) add(o LeadCounts) {
	l.New += o.New
	l.Contacted += o.Contacted
	l.Consulting += o.Consulting
	l.Converted += o.Converted
	l.Lost += o.Lost
	l.Total += o.Total
}

// RelationCounts 经理名下的代理数量
type RelationCounts struct {
	ActiveAgents int `json:"activeAgents"`
	PausedAgents int `json:"pausedAgents"`
}

// EntityRecord 单个经理或代理的结算记录
type EntityRecord struct {
	ID          int64           `json:"id"`
	Role        string          `json:"role"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Phone       *string         `json:"phone"`
	Status      string          `json:"status"`
	BranchLabel *string         `json:"branchLabel"`
	ManagerID   *int64          `json:"managerId,omitempty"`
	ManagerName string          `json:"managerName,omitempty"`
	Relations   *RelationCounts `json:"relations,omitempty"`

	Sales           SaleTotals    `json:"sales"`
	Ledger          LedgerSummary `json:"ledger"`
	GrossCommission int64         `json:"grossCommission"`
	NetCommission   int64         `json:"netCommission"`
	MonthlyTrend    []TrendBucket `json:"monthlyTrend"`
	Leads           *LeadCounts   `json:"leads,omitempty"`

	Agents []*EntityRecord `json:"agents,omitempty"`
}

// HQRevenue 总部净收入预估
type HQRevenue struct {
	GrossRevenue int64 `json:"grossRevenue"`
	CardFees     int64 `json:"cardFees"`
	CorporateTax int64 `json:"corporateTax"`
	NetAfterFees int64 `json:"netAfterFees"`
}

// Totals 顶层实体的合计
type Totals struct {
	ManagerCount    int           `json:"managerCount"`
	AgentCount      int           `json:"agentCount"`
	Sales           SaleTotals    `json:"sales"`
	Ledger          LedgerSummary `json:"ledger"`
	GrossCommission int64         `json:"grossCommission"`
	NetCommission   int64         `json:"netCommission"`
	MonthlyTrend    []TrendBucket `json:"monthlyTrend"`
	Leads           *LeadCounts   `json:"leads,omitempty"`
	HQ              HQRevenue     `json:"hq"`
}

// Filters 回显的查询条件
type Filters struct {
	From      *string `json:"from"`
	To        *string `json:"to"`
	Search    string  `json:"search"`
	ManagerID *int64  `json:"managerId"`
}

// Report 结算报表
type Report struct {
	View     View
	Entities []*EntityRecord
	Totals   *Totals
	Filters  Filters
	Months   []string
}

// MarshalJSON 按视图输出 managers 或 agents 数组
func (r *Report) MarshalJSON() ([]byte, error) {
	entities := r.Entities
	if entities == nil {
		entities = []*EntityRecord{}
	}
	months := r.Months
	if months == nil {
		months = []string{}
	}

	payload := struct {
		OK       bool             `json:"ok"`
		Managers *[]*EntityRecord `json:"managers,omitempty"`
		Agents   *[]*EntityRecord `json:"agents,omitempty"`
		Totals   *Totals          `json:"totals"`
		Filters  Filters          `json:"filters"`
		Months   []string         `json:"months"`
	}{
		OK:      true,
		Totals:  r.Totals,
		Filters: r.Filters,
		Months:  months,
	}
	if r.View == ViewAgents {
		payload.Agents = &entities
	} else {
		payload.Managers = &entities
	}
	return json.Marshal(payload)
}
