package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dumeirei/affiliate-settlement-backend/internal/models"
	"github.com/dumeirei/affiliate-settlement-backend/internal/repository"
)

func TestFoldLedgerRow(t *testing.T) {
	rows := []repository.LedgerAggregateRow{
		{EntryType: models.LedgerEntrySalesCommission, IsSettled: true, Amount: 100000, WithholdingAmount: 3300, EntryCount: 2},
		{EntryType: models.LedgerEntrySalesCommission, IsSettled: false, Amount: 40000, WithholdingAmount: 1320, EntryCount: 1},
		{EntryType: models.LedgerEntryOverrideCommission, IsSettled: false, Amount: 20000, WithholdingAmount: 660, EntryCount: 1},
		{EntryType: models.LedgerEntryBranchCommission, IsSettled: true, Amount: 10000, WithholdingAmount: 330, EntryCount: 1},
		{EntryType: models.LedgerEntryWithholding, IsSettled: true, Amount: -2500, WithholdingAmount: 999, EntryCount: 1},
	}

	var summary LedgerSummary
	for _, row := range rows {
		foldLedgerRow(&summary, row)
	}

	assert.Equal(t, int64(110000), summary.Settled)
	assert.Equal(t, int64(60000), summary.Pending)
	assert.Equal(t, EntrySplit{Settled: 100000, Pending: 40000, Withholding: 4620, Count: 3}, summary.SalesCommission)
	assert.Equal(t, EntrySplit{Pending: 20000, Withholding: 660, Count: 1}, summary.OverrideCommission)
	assert.Equal(t, EntrySplit{Settled: 10000, Withholding: 330, Count: 1}, summary.BranchCommission)
	assert.Equal(t, int64(4620), summary.SalesWithholding)
	assert.Equal(t, int64(660), summary.OverrideWithholding)
	assert.Equal(t, int64(330), summary.BranchWithholding)
	// WITHHOLDING 条目不计入 totalWithholding
	assert.Equal(t, int64(5610), summary.TotalWithholding)
	assert.Equal(t, summary.SalesWithholding+summary.OverrideWithholding+summary.BranchWithholding, summary.TotalWithholding)
	assert.Equal(t, int64(-2500), summary.WithholdingAdjustment)
	assert.Equal(t, int64(6), summary.EntryCount)
}

func TestLedgerEntryTypes(t *testing.T) {
	assert.Equal(t, []string{
		models.LedgerEntrySalesCommission,
		models.LedgerEntryOverrideCommission,
		models.LedgerEntryWithholding,
	}, ledgerEntryTypes(models.AffiliateRoleSalesAgent))
	assert.Equal(t, []string{
		models.LedgerEntryBranchCommission,
		models.LedgerEntryOverrideCommission,
		models.LedgerEntryWithholding,
	}, ledgerEntryTypes(models.AffiliateRoleBranchManager))
}

func TestGrossCommission(t *testing.T) {
	sales := SaleTotals{SalesCommission: 100, OverrideCommission: 20, BranchCommission: 5}
	assert.Equal(t, int64(120), grossCommission(models.AffiliateRoleSalesAgent, sales))
	assert.Equal(t, int64(25), grossCommission(models.AffiliateRoleBranchManager, sales))
}

func TestLeadCounts_AddStatus(t *testing.T) {
	var counts LeadCounts
	counts.addStatus(models.LeadStatusNew, 3)
	counts.addStatus(models.LeadStatusConverted, 1)
	counts.addStatus("ARCHIVED", 2)
	assert.Equal(t, LeadCounts{New: 3, Converted: 1, Total: 6}, counts)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
