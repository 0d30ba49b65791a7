package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/affiliate-settlement-backend/internal/repository"
)

func TestClampMonths(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		fallback int
		expected int
	}{
		{"使用请求值", 3, 6, 3},
		{"零值回退配置", 0, 12, 12},
		{"负数回退配置", -5, 12, 12},
		{"配置也无效", 0, 0, 6},
		{"超过上限", 25, 6, 24},
		{"下限", 1, 6, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampMonths(tt.n, tt.fallback))
		})
	}
}

func TestNewTrendWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("截止到当前月", func(t *testing.T) {
		w := NewTrendWindow(nil, now, 6, time.UTC)
		assert.Equal(t, []string{"2025-10", "2025-11", "2025-12", "2026-01", "2026-02", "2026-03"}, w.Keys)
		assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), w.Start)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), w.End)
	})

	t.Run("过去的结束日期不回退", func(t *testing.T) {
		to := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
		w := NewTrendWindow(&to, now, 2, time.UTC)
		assert.Equal(t, []string{"2026-02", "2026-03"}, w.Keys)
	})

	t.Run("未来的结束日期", func(t *testing.T) {
		to := time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)
		w := NewTrendWindow(&to, now, 1, time.UTC)
		assert.Equal(t, []string{"2026-07"}, w.Keys)
	})

	t.Run("跨年", func(t *testing.T) {
		jan := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
		w := NewTrendWindow(nil, jan, 13, time.UTC)
		require.Len(t, w.Keys, 13)
		assert.Equal(t, "2025-01", w.Keys[0])
		assert.Equal(t, "2026-01", w.Keys[12])
	})

	t.Run("按时区确定月份", func(t *testing.T) {
		seoul, err := time.LoadLocation("Asia/Seoul")
		require.NoError(t, err)
		// UTC 3 月 31 日 16:00 已是首尔 4 月 1 日
		late := time.Date(2026, 3, 31, 16, 0, 0, 0, time.UTC)
		w := NewTrendWindow(nil, late, 1, seoul)
		assert.Equal(t, []string{"2026-04"}, w.Keys)
	})
}

func TestBucketTrends(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	w := NewTrendWindow(nil, now, 3, time.UTC)

	rows := []repository.SaleTrendRow{
		{EntityID: 1, SaleDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), SaleAmount: 100, SalesCommission: 10},
		{EntityID: 1, SaleDate: time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC), SaleAmount: 200, SalesCommission: 20},
		{EntityID: 1, SaleDate: time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), SaleAmount: 300, BranchCommission: 3},
		{EntityID: 1, SaleDate: time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), SaleAmount: 999},
		{EntityID: 1, SaleDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), SaleAmount: 999},
		{EntityID: 2, SaleDate: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), SaleAmount: 50, NetRevenue: 40, OverrideCommission: 5},
	}

	trends := BucketTrends(w, rows, time.UTC)
	require.Len(t, trends, 2)

	assert.Equal(t, []TrendBucket{
		{Month: "2026-01", SaleCount: 2, SaleAmount: 300, SalesCommission: 30},
		{Month: "2026-02"},
		{Month: "2026-03", SaleCount: 1, SaleAmount: 300, BranchCommission: 3},
	}, trends[1])
	assert.Equal(t, []TrendBucket{
		{Month: "2026-01"},
		{Month: "2026-02", SaleCount: 1, SaleAmount: 50, NetRevenue: 40, OverrideCommission: 5},
		{Month: "2026-03"},
	}, trends[2])

	t.Run("无数据实体返回全零序列", func(t *testing.T) {
		empty := trendFor(w, trends, 3)
		require.Len(t, empty, 3)
		for i, bucket := range empty {
			assert.Equal(t, TrendBucket{Month: w.Keys[i]}, bucket)
		}
	})
}
