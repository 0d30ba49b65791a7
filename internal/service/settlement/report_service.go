package settlement

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/config"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/errors"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/logger"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/metrics"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/tracing"
	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
	"github.com/dumeirei/affiliate-settlement-backend/internal/repository"
)

const dateFormat = "2006-01-02"

// 聚合阶段名称
const (
	passDirectory    = "directory"
	passSales        = "sales"
	passLedger       = "ledger"
	passTrend        = "trend"
	passLeads        = "leads"
	passNestedSales  = "nested_sales"
	passNestedLedger = "nested_ledger"
	passNestedTrend  = "nested_trend"
	passNestedLeads  = "nested_leads"
)

// ReportService 分销结算报表服务
type ReportService struct {
	directory  *ProfileDirectory
	aggregator *Aggregator
	compositor *RollupCompositor
	hq         *HQRevenueCalculator
	exporter   *ReportExporter

	tracer      *tracing.Tracer
	metrics     *metrics.Metrics
	location    *time.Location
	trendMonths int
	now         func() time.Time
}

// NewReportService 创建分销结算报表服务
func NewReportService(
	db *gorm.DB,
	activator ActivationScheduler,
	cfg *config.AffiliateConfig,
	tracer *tracing.Tracer,
	m *metrics.Metrics,
) *ReportService {
	if cfg == nil {
		cfg = &config.AffiliateConfig{
			CardFeeRate:      defaultCardFeeRate,
			CorporateTaxRate: defaultCorporateTaxRate,
		}
	}
	return &ReportService{
		directory: NewProfileDirectory(repository.NewAffiliateProfileRepository(db), cfg.MaxCandidates),
		aggregator: NewAggregator(
			repository.NewAffiliateSaleRepository(db),
			repository.NewCommissionLedgerRepository(db),
			repository.NewAffiliateLeadRepository(db),
		),
		compositor:  NewRollupCompositor(activator),
		hq:          NewHQRevenueCalculator(cfg.CardFeeRate, cfg.CorporateTaxRate),
		exporter:    NewReportExporter(),
		tracer:      tracer,
		metrics:     m,
		location:    cfg.Location(),
		trendMonths: ClampMonths(cfg.TrendMonths, defaultTrendMonths),
		now:         time.Now,
	}
}

// Location 报表日期使用的时区
func (s *ReportService) Location() *time.Location {
	return s.location
}

// BuildReport 生成结算报表
func (s *ReportService) BuildReport(ctx context.Context, q Query) (*Report, error) {
	return s.build(ctx, q, FormatJSON)
}

// Export 生成报表并导出为文件
func (s *ReportService) Export(ctx context.Context, q Query, format Format) (*ExportFile, error) {
	report, err := s.build(ctx, q, format)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(report, format, s.resolveNow(q).In(s.location))
}

func (s *ReportService) resolveNow(q Query) time.Time {
	if !q.Now.IsZero() {
		return q.Now
	}
	return s.now()
}

func (s *ReportService) build(ctx context.Context, q Query, format Format) (*Report, error) {
	if !q.View.Valid() {
		return nil, errors.ErrInvalidParams.WithMessage("未知的报表视图")
	}
	if q.ManagerID != nil && *q.ManagerID <= 0 {
		return nil, errors.ErrInvalidManagerID
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, errors.ErrInvalidDateRange
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "settlement.BuildReport",
		tracing.WithView(string(q.View)),
		tracing.AttrFormat.String(string(format)),
	)
	defer span.End()
	if q.ManagerID != nil {
		span.SetAttributes(tracing.WithManagerID(*q.ManagerID))
	}

	report, err := s.compose(ctx, q)
	if err != nil {
		tracing.SetError(span, err)
		logger.Error("build settlement report failed",
			logger.View(string(q.View)),
			zap.String("search", q.Search),
			zap.Any("manager_id", q.ManagerID),
			zap.Any("from", q.From),
			zap.Any("to", q.To),
			zap.Error(err),
		)
		return nil, errors.ErrAggregationFailed.WithError(err)
	}

	span.SetAttributes(tracing.WithEntityCount(len(report.Entities)))
	s.metrics.ObserveReport(string(q.View), string(format), len(report.Entities), time.Since(start))
	return report, nil
}

// compose 解析候选、并行汇总并合并
func (s *ReportService) compose(ctx context.Context, q Query) (*Report, error) {
	report := &Report{
		View:     q.View,
		Entities: []*EntityRecord{},
		Filters:  s.filters(q),
		Months:   []string{},
	}

	var cands *Candidates
	err := s.pass(ctx, passDirectory, func(ctx context.Context) error {
		var err error
		cands, err = s.directory.Resolve(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(cands.Profiles) == 0 {
		return report, nil
	}

	window := NewTrendWindow(q.To, s.resolveNow(q), ClampMonths(q.Months, s.trendMonths), s.location)
	top := partials{role: q.View.role()}
	nested := partials{role: models.AffiliateRoleSalesAgent}

	topIDs := cands.IDs()
	nestedIDs := cands.NestedIDs()
	axis := q.View.axis()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.pass(gctx, passSales, func(ctx context.Context) error {
			var err error
			top.sales, err = s.aggregator.Sales(ctx, axis, topIDs, q.window())
			return err
		})
	})
	g.Go(func() error {
		return s.pass(gctx, passLedger, func(ctx context.Context) error {
			var err error
			top.ledger, err = s.aggregator.Ledger(ctx, top.role, topIDs, q.window())
			return err
		})
	})
	g.Go(func() error {
		return s.pass(gctx, passTrend, func(ctx context.Context) error {
			rows, err := s.aggregator.SaleTrendRows(ctx, axis, topIDs, window)
			if err != nil {
				return err
			}
			top.trends = BucketTrends(window, rows, s.location)
			return nil
		})
	})
	if q.View == ViewAgents {
		g.Go(func() error {
			return s.pass(gctx, passLeads, func(ctx context.Context) error {
				var err error
				top.leads, err = s.aggregator.Leads(ctx, repository.AxisAgent, topIDs, q.window())
				return err
			})
		})
	}
	if len(nestedIDs) > 0 {
		g.Go(func() error {
			return s.pass(gctx, passNestedSales, func(ctx context.Context) error {
				var err error
				nested.sales, err = s.aggregator.Sales(ctx, repository.AxisAgent, nestedIDs, q.window())
				return err
			})
		})
		g.Go(func() error {
			return s.pass(gctx, passNestedLedger, func(ctx context.Context) error {
				var err error
				nested.ledger, err = s.aggregator.Ledger(ctx, nested.role, nestedIDs, q.window())
				return err
			})
		})
		g.Go(func() error {
			return s.pass(gctx, passNestedTrend, func(ctx context.Context) error {
				rows, err := s.aggregator.SaleTrendRows(ctx, repository.AxisAgent, nestedIDs, window)
				if err != nil {
					return err
				}
				nested.trends = BucketTrends(window, rows, s.location)
				return nil
			})
		})
		g.Go(func() error {
			return s.pass(gctx, passNestedLeads, func(ctx context.Context) error {
				var err error
				nested.leads, err = s.aggregator.Leads(ctx, repository.AxisAgent, nestedIDs, q.window())
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records, totals := s.compositor.Compose(q.View, cands, window, top, nested)
	totals.HQ = s.hq.Calculate(totals.Sales)

	report.Entities = records
	report.Totals = totals
	report.Months = window.Keys
	return report, nil
}

// pass 以独立 span 执行一个聚合阶段并记录耗时
func (s *ReportService) pass(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "settlement.pass."+name, tracing.WithPass(name))
	defer span.End()

	err := fn(ctx)
	tracing.SetError(span, err)
	s.metrics.ObservePass(name, time.Since(start))
	return err
}

// filters 回显查询条件，日期按报表时区输出
func (s *ReportService) filters(q Query) Filters {
	f := Filters{
		Search:    q.Search,
		ManagerID: q.ManagerID,
	}
	if q.From != nil {
		from := q.From.In(s.location).Format(dateFormat)
		f.From = &from
	}
	if q.To != nil {
		to := q.To.In(s.location).Format(dateFormat)
		f.To = &to
	}
	return f
}
