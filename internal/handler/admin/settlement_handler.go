// Package admin 管理端 HTTP Handler
package admin

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/errors"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/handler"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/response"
	settlementService "github.com/dumeirei/affiliate-settlement-backend/internal/service/settlement"
)

// SettlementHandler 分销结算报表处理器
type SettlementHandler struct {
	reportService *settlementService.ReportService
}

// NewSettlementHandler 创建分销结算报表处理器
func NewSettlementHandler(reportSvc *settlementService.ReportService) *SettlementHandler {
	return &SettlementHandler{reportService: reportSvc}
}

// ManagerSettlement 分公司经理结算报表
// @Summary 分公司经理结算报表
// @Description 指定 managerId 时只返回该经理，并在其下嵌套名下代理
// @Tags 管理-分销结算
// @Produce json
// @Produce text/csv
// @Security Bearer
// @Param search query string false "名称/编码/电话/分公司关键字"
// @Param managerId query int false "经理ID"
// @Param from query string false "开始日期 YYYY-MM-DD"
// @Param to query string false "结束日期 YYYY-MM-DD（含当天）"
// @Param format query string false "json|csv|xlsx" default(json)
// @Param months query int false "趋势月数 1-24"
// @Success 200 {object} settlement.Report
// @Failure 400 {object} response.Failure
// @Failure 401 {object} response.Failure
// @Failure 403 {object} response.Failure
// @Failure 500 {object} response.Failure
// @Router /api/admin/affiliates/managers/settlement [get]
func (h *SettlementHandler) ManagerSettlement(c *gin.Context) {
	h.report(c, settlementService.ViewManagers)
}

// AgentSettlement 销售代理结算报表
// @Summary 销售代理结算报表
// @Description 指定 managerId 时只返回与该经理存在 ACTIVE/PAUSED 关系的代理
// @Tags 管理-分销结算
// @Produce json
// @Produce text/csv
// @Security Bearer
// @Param search query string false "名称/编码/电话/分公司关键字"
// @Param managerId query int false "经理ID"
// @Param from query string false "开始日期 YYYY-MM-DD"
// @Param to query string false "结束日期 YYYY-MM-DD（含当天）"
// @Param format query string false "json|csv|xlsx" default(json)
// @Param months query int false "趋势月数 1-24"
// @Success 200 {object} settlement.Report
// @Failure 400 {object} response.Failure
// @Failure 401 {object} response.Failure
// @Failure 403 {object} response.Failure
// @Failure 500 {object} response.Failure
// @Router /api/admin/affiliates/agents/settlement [get]
func (h *SettlementHandler) AgentSettlement(c *gin.Context) {
	h.report(c, settlementService.ViewAgents)
}

func (h *SettlementHandler) report(c *gin.Context, view settlementService.View) {
	if _, ok := handler.RequireAdminID(c); !ok {
		return
	}

	query, format, err := h.parseQuery(c, view)
	if handler.HandleError(c, err) {
		return
	}

	ctx := c.Request.Context()
	if format == settlementService.FormatJSON {
		report, err := h.reportService.BuildReport(ctx, query)
		if handler.HandleError(c, err) {
			return
		}
		response.Success(c, report)
		return
	}

	file, err := h.reportService.Export(ctx, query, format)
	if handler.HandleError(c, err) {
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Data)
}

// parseQuery 解析并校验查询参数，任何查询执行前完成
func (h *SettlementHandler) parseQuery(c *gin.Context, view settlementService.View) (settlementService.Query, settlementService.Format, error) {
	query := settlementService.Query{
		View:   view,
		Search: strings.TrimSpace(c.Query("search")),
	}

	managerID, err := handler.ParseQueryID(c, "managerId")
	if err != nil {
		return query, "", errors.ErrInvalidManagerID
	}
	query.ManagerID = managerID

	query.From, query.To, err = handler.ParseQueryDateRange(c, "from", "to", h.reportService.Location())
	if err != nil {
		return query, "", err
	}

	format, err := settlementService.ParseFormat(c.Query("format"))
	if err != nil {
		return query, "", err
	}

	if months := strings.TrimSpace(c.Query("months")); months != "" {
		n, err := strconv.Atoi(months)
		if err != nil || n <= 0 {
			return query, "", errors.ErrInvalidParams.WithMessage("months 必须为正整数")
		}
		query.Months = n
	}

	return query, format, nil
}
