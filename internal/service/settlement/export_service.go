package settlement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/errors"
)

// 导出文件类型
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportFile 导出结果
type ExportFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

// column 导出列，单元格为 int64 或 string
type column struct {
	header string
	value  func(r *EntityRecord) interface{}
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var identityColumns = []column{
	{"id", func(r *EntityRecord) interface{} { return r.ID }},
	{"name", func(r *EntityRecord) interface{} { return r.Name }},
	{"code", func(r *EntityRecord) interface{} { return r.Code }},
	{"status", func(r *EntityRecord) interface{} { return r.Status }},
	{"phone", func(r *EntityRecord) interface{} { return optString(r.Phone) }},
	{"branchLabel", func(r *EntityRecord) interface{} { return optString(r.BranchLabel) }},
}

var managerColumns = []column{
	{"activeAgents", func(r *EntityRecord) interface{} {
		if r.Relations == nil {
			return int64(0)
		}
		return int64(r.Relations.ActiveAgents)
	}},
	{"pausedAgents", func(r *EntityRecord) interface{} {
		if r.Relations == nil {
			return int64(0)
		}
		return int64(r.Relations.PausedAgents)
	}},
}

var agentColumns = []column{
	{"managerId", func(r *EntityRecord) interface{} {
		if r.ManagerID == nil {
			return ""
		}
		return *r.ManagerID
	}},
	{"managerName", func(r *EntityRecord) interface{} { return r.ManagerName }},
}

var metricColumns = []column{
	{"saleCount", func(r *EntityRecord) interface{} { return r.Sales.Count }},
	{"saleAmount", func(r *EntityRecord) interface{} { return r.Sales.SaleAmount }},
	{"netRevenue", func(r *EntityRecord) interface{} { return r.Sales.NetRevenue }},
	{"salesCommission", func(r *EntityRecord) interface{} { return r.Sales.SalesCommission }},
	{"overrideCommission", func(r *EntityRecord) interface{} { return r.Sales.OverrideCommission }},
	{"branchCommission", func(r *EntityRecord) interface{} { return r.Sales.BranchCommission }},
	{"settled", func(r *EntityRecord) interface{} { return r.Ledger.Settled }},
	{"pending", func(r *EntityRecord) interface{} { return r.Ledger.Pending }},
	{"salesWithholding", func(r *EntityRecord) interface{} { return r.Ledger.SalesWithholding }},
	{"overrideWithholding", func(r *EntityRecord) interface{} { return r.Ledger.OverrideWithholding }},
	{"branchWithholding", func(r *EntityRecord) interface{} { return r.Ledger.BranchWithholding }},
	{"totalWithholding", func(r *EntityRecord) interface{} { return r.Ledger.TotalWithholding }},
	{"withholdingAdjustment", func(r *EntityRecord) interface{} { return r.Ledger.WithholdingAdjustment }},
	{"grossCommission", func(r *EntityRecord) interface{} { return r.GrossCommission }},
	{"netCommission", func(r *EntityRecord) interface{} { return r.NetCommission }},
}

var leadColumn = column{"leadCount", func(r *EntityRecord) interface{} {
	if r.Leads == nil {
		return int64(0)
	}
	return r.Leads.Total
}}

// columnsFor 视图的固定列
func columnsFor(view View) []column {
	cols := append([]column{}, identityColumns...)
	if view == ViewAgents {
		cols = append(cols, agentColumns...)
		cols = append(cols, metricColumns...)
		return append(cols, leadColumn)
	}
	cols = append(cols, managerColumns...)
	return append(cols, metricColumns...)
}

// Header 视图的表头
func Header(view View) []string {
	cols := columnsFor(view)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.header
	}
	return header
}

// ExportFilename 导出文件名，日期取 now 所在时区
func ExportFilename(view View, format Format, now time.Time) string {
	return fmt.Sprintf("affiliate-%s-settlement-%s.%s", view, now.Format("20060102"), format)
}

func formatCell(v interface{}) string {
	switch val := v.(type) {
	case int64:
		return strconv.FormatInt(val, 10)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// ReportExporter 将报表投影为 CSV 或 Excel，与 JSON 使用同一份实体记录
type ReportExporter struct{}

// NewReportExporter 创建导出器
func NewReportExporter() *ReportExporter {
	return &ReportExporter{}
}

// Export 按格式导出，每个顶层实体一行
func (e *ReportExporter) Export(report *Report, format Format, now time.Time) (*ExportFile, error) {
	switch format {
	case FormatCSV:
		data, err := e.CSV(report)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: data, Filename: ExportFilename(report.View, format, now), ContentType: ContentTypeCSV}, nil
	case FormatXLSX:
		data, err := e.XLSX(report)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: data, Filename: ExportFilename(report.View, format, now), ContentType: ContentTypeXLSX}, nil
	}
	return nil, errors.ErrInvalidFormat
}

// CSV 导出 CSV
func (e *ReportExporter) CSV(report *Report) ([]byte, error) {
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 识别 UTF-8
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(buf)
	if err := writer.Write(Header(report.View)); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}

	cols := columnsFor(report.View)
	for _, record := range report.Entities {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = formatCell(col.value(record))
		}
		if err := writer.Write(row); err != nil {
			return nil, errors.ErrExportFailed.WithError(err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	return buf.Bytes(), nil
}

// XLSX 导出 Excel，数值列写为数字
func (e *ReportExporter) XLSX(report *Report) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := string(report.View)
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}

	header := make([]interface{}, 0)
	for _, h := range Header(report.View) {
		header = append(header, h)
	}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}

	cols := columnsFor(report.View)
	for ri, record := range report.Entities {
		row := make([]interface{}, len(cols))
		for i, col := range cols {
			row[i] = col.value(record)
		}
		cell, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return nil, errors.ErrExportFailed.WithError(err)
		}
		if err := xl.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, errors.ErrExportFailed.WithError(err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	return buf.Bytes(), nil
}
