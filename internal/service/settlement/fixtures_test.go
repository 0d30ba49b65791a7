package settlement

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/config"
	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
)

// testNow 测试统一的当前时间
var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

// setupSettlementTestDB 每个测试独立的共享内存库，聚合阶段并发执行时共用同一份数据
func setupSettlementTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AffiliateProfile{},
		&models.AffiliateRelation{},
		&models.AffiliateSale{},
		&models.CommissionLedger{},
		&models.AffiliateLead{},
	))
	return db
}

func testAffiliateConfig() *config.AffiliateConfig {
	return &config.AffiliateConfig{
		Timezone:          "UTC",
		MaxCandidates:     200,
		TrendMonths:       6,
		CardFeeRate:       0.035,
		CorporateTaxRate:  0.10,
		ActivationLockTTL: 300,
		ActivationTimeout: 5,
	}
}

func newTestReportService(db *gorm.DB, activator ActivationScheduler) *ReportService {
	svc := NewReportService(db, activator, testAffiliateConfig(), nil, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

// fixture 测试数据构造器
type fixture struct {
	t   *testing.T
	db  *gorm.DB
	seq int
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	return &fixture{t: t, db: db}
}

func (f *fixture) profile(role, name string, createdAt time.Time) *models.AffiliateProfile {
	f.t.Helper()
	f.seq++
	p := &models.AffiliateProfile{
		Role:      role,
		Name:      name,
		Code:      fmt.Sprintf("C%03d", f.seq),
		Status:    models.AffiliateStatusActive,
		CreatedAt: createdAt,
	}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

func (f *fixture) manager(name string) *models.AffiliateProfile {
	return f.profile(models.AffiliateRoleBranchManager, name, testNow.Add(-time.Duration(1000-f.seq)*time.Hour))
}

func (f *fixture) agent(name string) *models.AffiliateProfile {
	return f.profile(models.AffiliateRoleSalesAgent, name, testNow.Add(-time.Duration(1000-f.seq)*time.Hour))
}

func (f *fixture) relate(manager, agent *models.AffiliateProfile, status string) {
	f.t.Helper()
	rel := &models.AffiliateRelation{
		ManagerID:   manager.ID,
		AgentID:     agent.ID,
		Status:      status,
		ConnectedAt: testNow.Add(-time.Duration(f.seq) * time.Hour),
	}
	f.seq++
	require.NoError(f.t, f.db.Create(rel).Error)
}

// saleInput 销售数据
type saleInput struct {
	manager     *models.AffiliateProfile
	agent       *models.AffiliateProfile
	amount      int64
	net         int64
	sales       int64
	override    int64
	branch      int64
	status      string
	saleDate    time.Time
	confirmedAt *time.Time
}

func (f *fixture) sale(s saleInput) *models.AffiliateSale {
	f.t.Helper()
	if s.status == "" {
		s.status = models.SaleStatusConfirmed
	}
	if s.saleDate.IsZero() {
		s.saleDate = time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	}
	if s.confirmedAt == nil {
		c := s.saleDate.Add(24 * time.Hour)
		s.confirmedAt = &c
	}
	sale := &models.AffiliateSale{
		SaleAmount:         s.amount,
		NetRevenue:         s.net,
		SalesCommission:    s.sales,
		OverrideCommission: s.override,
		BranchCommission:   s.branch,
		Status:             s.status,
		SaleDate:           s.saleDate,
		ConfirmedAt:        s.confirmedAt,
	}
	if s.manager != nil {
		sale.ManagerID = &s.manager.ID
	}
	if s.agent != nil {
		sale.AgentID = &s.agent.ID
	}
	require.NoError(f.t, f.db.Create(sale).Error)
	return sale
}

func (f *fixture) ledger(profile *models.AffiliateProfile, entryType string, amount, withholding int64, settled bool) {
	f.t.Helper()
	entry := &models.CommissionLedger{
		ProfileID:         profile.ID,
		EntryType:         entryType,
		Amount:            amount,
		WithholdingAmount: withholding,
		IsSettled:         settled,
		CreatedAt:         time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(f.t, f.db.Create(entry).Error)
}

func (f *fixture) lead(manager, agent *models.AffiliateProfile, status string) {
	f.t.Helper()
	lead := &models.AffiliateLead{CustomerName: "customer", Status: status, CreatedAt: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)}
	if manager != nil {
		lead.ManagerID = &manager.ID
	}
	if agent != nil {
		lead.AgentID = &agent.ID
	}
	require.NoError(f.t, f.db.Create(lead).Error)
}

func (f *fixture) lockedUser(email string) *models.User {
	f.t.Helper()
	locked := testNow.Add(-30 * 24 * time.Hour)
	u := &models.User{Email: email, Status: models.UserStatusLocked, LockedAt: &locked}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) link(profile *models.AffiliateProfile, user *models.User) {
	f.t.Helper()
	require.NoError(f.t, f.db.Model(profile).Update("user_id", user.ID).Error)
	profile.UserID = &user.ID
}

// marchWindow 2026-03-01 00:00:00 ~ 2026-03-31 23:59:59
func marchWindow() (*time.Time, *time.Time) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	return &from, &to
}

// recordingScheduler 记录被调度的档案
type recordingScheduler struct {
	mu       sync.Mutex
	profiles []int64
}

func (r *recordingScheduler) Schedule(profile *models.AffiliateProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = append(r.profiles, profile.ID)
}

func (r *recordingScheduler) scheduled() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64{}, r.profiles...)
}
