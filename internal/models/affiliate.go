package models

import (
	"fmt"
	"time"
)

// AffiliateProfile 分销档案（分公司经理 / 销售代理 / 总部）
type AffiliateProfile struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      *int64     `gorm:"index" json:"user_id,omitempty"`
	Role        string     `gorm:"type:varchar(20);index;not null" json:"role"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Code        string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	Phone       *string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	BranchLabel *string    `gorm:"type:varchar(100)" json:"branch_label,omitempty"`
	OnboardedAt *time.Time `json:"onboarded_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 表名
func (AffiliateProfile) TableName() string {
	return "affiliate_profiles"
}

// AffiliateRole 分销角色
const (
	AffiliateRoleBranchManager = "BRANCH_MANAGER"
	AffiliateRoleSalesAgent    = "SALES_AGENT"
	AffiliateRoleHQ            = "HQ"
)

// AffiliateStatus 档案状态
const (
	AffiliateStatusActive     = "ACTIVE"
	AffiliateStatusPaused     = "PAUSED"
	AffiliateStatusPending    = "PENDING"
	AffiliateStatusTerminated = "TERMINATED"
)

// AffiliateRelation 经理与代理的隶属关系
type AffiliateRelation struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID   int64     `gorm:"index;not null" json:"manager_id"`
	AgentID     int64     `gorm:"index;not null" json:"agent_id"`
	Status      string    `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	ConnectedAt time.Time `gorm:"not null" json:"connected_at"`

	// 关联
	Manager *AffiliateProfile `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Agent   *AffiliateProfile `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

// TableName 表名
func (AffiliateRelation) TableName() string {
	return "affiliate_relations"
}

// RelationStatus 关系状态
const (
	RelationStatusActive = "ACTIVE"
	RelationStatusPaused = "PAUSED"
	RelationStatusEnded  = "ENDED"
)

// Validate 校验关系两端的角色，manager 必须是经理，agent 必须是代理
func (r *AffiliateRelation) Validate(manager, agent *AffiliateProfile) error {
	if manager == nil || agent == nil {
		return fmt.Errorf("relation %d: missing profile", r.ID)
	}
	if manager.ID != r.ManagerID || agent.ID != r.AgentID {
		return fmt.Errorf("relation %d: profile id mismatch", r.ID)
	}
	if manager.Role != AffiliateRoleBranchManager {
		return fmt.Errorf("relation %d: profile %d is %s, not %s", r.ID, manager.ID, manager.Role, AffiliateRoleBranchManager)
	}
	if agent.Role != AffiliateRoleSalesAgent {
		return fmt.Errorf("relation %d: profile %d is %s, not %s", r.ID, agent.ID, agent.Role, AffiliateRoleSalesAgent)
	}
	return nil
}

// AffiliateSale 分销销售记录，金额单位为最小货币单位（韩元无辅币）
type AffiliateSale struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID          *int64     `gorm:"index" json:"manager_id,omitempty"`
	AgentID            *int64     `gorm:"index" json:"agent_id,omitempty"`
	SaleAmount         int64      `gorm:"not null;default:0" json:"sale_amount"`
	NetRevenue         int64      `gorm:"not null;default:0" json:"net_revenue"`
	SalesCommission    int64      `gorm:"not null;default:0" json:"sales_commission"`
	OverrideCommission int64      `gorm:"not null;default:0" json:"override_commission"`
	BranchCommission   int64      `gorm:"not null;default:0" json:"branch_commission"`
	Status             string     `gorm:"type:varchar(20);index;not null;default:'PENDING'" json:"status"`
	SaleDate           time.Time  `gorm:"index;not null" json:"sale_date"`
	ConfirmedAt        *time.Time `gorm:"index" json:"confirmed_at,omitempty"`
	RefundedAt         *time.Time `json:"refunded_at,omitempty"`
	CancellationReason *string    `gorm:"type:varchar(255)" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (AffiliateSale) TableName() string {
	return "affiliate_sales"
}

// SaleStatus 销售状态
const (
	SaleStatusPending         = "PENDING"
	SaleStatusConfirmed       = "CONFIRMED"
	SaleStatusPaid            = "PAID"
	SaleStatusPayoutScheduled = "PAYOUT_SCHEDULED"
	SaleStatusRefunded        = "REFUNDED"
	SaleStatusCancelled       = "CANCELLED"
)

// CommissionEligibleSaleStatuses 计入佣金统计的销售状态
var CommissionEligibleSaleStatuses = []string{
	SaleStatusConfirmed,
	SaleStatusPaid,
	SaleStatusPayoutScheduled,
}

// CommissionLedger 佣金台账，只追加不修改金额
type CommissionLedger struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID         int64      `gorm:"index;not null" json:"profile_id"`
	SaleID            *int64     `gorm:"index" json:"sale_id,omitempty"`
	EntryType         string     `gorm:"type:varchar(30);not null" json:"entry_type"`
	Amount            int64      `gorm:"not null;default:0" json:"amount"`
	WithholdingAmount int64      `gorm:"not null;default:0" json:"withholding_amount"`
	IsSettled         bool       `gorm:"not null;default:false" json:"is_settled"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// 关联
	Profile *AffiliateProfile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	Sale    *AffiliateSale    `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
}

// TableName 表名
func (CommissionLedger) TableName() string {
	return "commission_ledgers"
}

// LedgerEntryType 台账条目类型
const (
	LedgerEntrySalesCommission    = "SALES_COMMISSION"
	LedgerEntryOverrideCommission = "OVERRIDE_COMMISSION"
	LedgerEntryBranchCommission   = "BRANCH_COMMISSION"
	LedgerEntryWithholding        = "WITHHOLDING"
)

// IsCommissionEntry 是否为佣金类条目（预扣税单独成行的 WITHHOLDING 除外）
func IsCommissionEntry(entryType string) bool {
	switch entryType {
	case LedgerEntrySalesCommission, LedgerEntryOverrideCommission, LedgerEntryBranchCommission:
		return true
	}
	return false
}

// AffiliateLead 分销线索，只用于数量统计
type AffiliateLead struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID    *int64    `gorm:"index" json:"manager_id,omitempty"`
	AgentID      *int64    `gorm:"index" json:"agent_id,omitempty"`
	CustomerName string    `gorm:"type:varchar(100);not null" json:"customer_name"`
	Status       string    `gorm:"type:varchar(20);not null;default:'NEW'" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (AffiliateLead) TableName() string {
	return "affiliate_leads"
}

// LeadStatus 线索状态
const (
	LeadStatusNew        = "NEW"
	LeadStatusContacted  = "CONTACTED"
	LeadStatusConsulting = "CONSULTING"
	LeadStatusConverted  = "CONVERTED"
	LeadStatusLost       = "LOST"
)
