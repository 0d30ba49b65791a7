package settlement

import (
	"time"

	"github.com/dumeirei/affiliate-settlement-backend/internal/repository"
)

// 趋势月数范围
const (
	defaultTrendMonths = 6
	maxTrendMonths     = 24
)

const monthKeyFormat = "2006-01"

// TrendWindow 趋势窗口，[Start, End) 按 sale_date 过滤
type TrendWindow struct {
	Start time.Time
	End   time.Time
	Keys  []string
}

// ClampMonths 将趋势月数限制在 1..24，非正数使用默认值
func ClampMonths(n, fallback int) int {
	if n <= 0 {
		n = fallback
	}
	if n <= 0 {
		n = defaultTrendMonths
	}
	if n > maxTrendMonths {
		n = maxTrendMonths
	}
	return n
}

// NewTrendWindow 构建截止于 max(to, now) 所在月份的 n 个连续自然月
// 月份键在填充数据之前生成，长度恒为 n
func NewTrendWindow(to *time.Time, now time.Time, n int, loc *time.Location) TrendWindow {
	anchor := now.In(loc)
	if to != nil && to.After(now) {
		anchor = to.In(loc)
	}
	lastMonth := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	start := lastMonth.AddDate(0, -(n - 1), 0)

	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, start.AddDate(0, i, 0).Format(monthKeyFormat))
	}

	return TrendWindow{
		Start: start,
		End:   lastMonth.AddDate(0, 1, 0),
		Keys:  keys,
	}
}

// emptyTrend 全零趋势
func (w TrendWindow) emptyTrend() []TrendBucket {
	buckets := make([]TrendBucket, len(w.Keys))
	for i, key := range w.Keys {
		buckets[i].Month = key
	}
	return buckets
}

// BucketTrends 将原始销售行按实体和月份折叠，窗口外的销售被丢弃
func BucketTrends(w TrendWindow, rows []repository.SaleTrendRow, loc *time.Location) map[int64][]TrendBucket {
	index := make(map[string]int, len(w.Keys))
	for i, key := range w.Keys {
		index[key] = i
	}

	result := make(map[int64][]TrendBucket)
	for _, row := range rows {
		if row.SaleDate.Before(w.Start) || !row.SaleDate.Before(w.End) {
			continue
		}
		i, ok := index[row.SaleDate.In(loc).Format(monthKeyFormat)]
		if !ok {
			continue
		}
		buckets, ok := result[row.EntityID]
		if !ok {
			buckets = w.emptyTrend()
			result[row.EntityID] = buckets
		}
		buckets[i].add(TrendBucket{
			SaleCount:          1,
			SaleAmount:         row.SaleAmount,
			NetRevenue:         row.NetRevenue,
			SalesCommission:    row.SalesCommission,
			OverrideCommission: row.OverrideCommission,
			BranchCommission:   row.BranchCommission,
		})
	}
	return result
}

// trendFor 取实体趋势，无数据时返回全零序列
func trendFor(w TrendWindow, trends map[int64][]TrendBucket, id int64) []TrendBucket {
	if buckets, ok := trends[id]; ok {
		return buckets
	}
	return w.emptyTrend()
}
