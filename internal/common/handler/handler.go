// Package handler 提供 API Handler 的通用辅助函数
// 用于减少 Handler 层的代码重复，统一错误处理、认证检查、参数解析等操作
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/errors"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/logger"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/response"
	"github.com/dumeirei/affiliate-settlement-backend/internal/middleware"
)

// ============================================================================
// 统一错误处理
// ============================================================================

// HTTPStatus 将应用错误码映射为 HTTP 状态码
func HTTPStatus(appErr *errors.AppError) int {
	switch {
	case appErr.Code == errors.ErrUnauthorized.Code,
		appErr.Code == errors.ErrTokenExpired.Code,
		appErr.Code == errors.ErrTokenInvalid.Code:
		return http.StatusUnauthorized
	case appErr.Code == errors.ErrPermissionDenied.Code:
		return http.StatusForbidden
	case appErr.Code == errors.ErrNotFound.Code:
		return http.StatusNotFound
	case appErr.Code == errors.ErrRateLimitExceed.Code:
		return http.StatusTooManyRequests
	case errors.IsValidation(appErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 处理错误并发送适当的响应
// 如果 err 为 nil，返回 false（表示无错误需要处理）
// 如果 err 不为 nil，发送错误响应并返回 true（调用方应该 return）
//
// 5xx 错误只返回错误码对应的固定消息，底层错误连同请求 ID 写入日志
//
// 使用示例:
//
//	report, err := service.BuildReport(ctx, query)
//	if handler.HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	appErr := errors.GetAppError(err)
	status := HTTPStatus(appErr)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logger.RequestID(middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("code", appErr.Code),
			zap.Error(err),
		)
		message := appErr.Message
		if appErr.Code == errors.ErrUnknown.Code {
			message = "服务器内部错误"
		}
		response.Fail(c, status, message)
		return true
	}

	response.Fail(c, status, appErr.Message)
	return true
}

// ============================================================================
// 用户认证检查
// ============================================================================

// RequireAdminID 获取当前管理员ID，如果未登录则返回401响应
func RequireAdminID(c *gin.Context) (int64, bool) {
	adminID := middleware.GetAdminID(c)
	if adminID == 0 {
		response.Unauthorized(c, "请先登录")
		return 0, false
	}
	return adminID, true
}

// ============================================================================
// 查询参数解析
// ============================================================================

// DateFormat 日期格式
const DateFormat = "2006-01-02"

// ParseQueryID 解析查询参数中的可选正整数 ID
// 参数为空返回 (nil, nil)，格式错误返回 ErrInvalidParams
//
// 使用示例:
//
//	managerID, err := handler.ParseQueryID(c, "managerId")
//	if err != nil {
//	    handler.HandleError(c, errors.ErrInvalidManagerID)
//	    return
//	}
func ParseQueryID(c *gin.Context, paramName string) (*int64, error) {
	idStr := strings.TrimSpace(c.Query(paramName))
	if idStr == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.ErrInvalidParams.WithMessage("无效的 " + paramName)
	}
	return &id, nil
}

// ParseQueryDate 从查询参数解析 YYYY-MM-DD 日期（指定时区的零点）
// 参数为空返回 (nil, nil)
func ParseQueryDate(c *gin.Context, paramName string, loc *time.Location) (*time.Time, error) {
	dateStr := strings.TrimSpace(c.Query(paramName))
	if dateStr == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateFormat, dateStr, loc)
	if err != nil {
		return nil, errors.ErrInvalidDate.WithMessage(paramName + " 日期格式错误，应为 YYYY-MM-DD")
	}
	return &t, nil
}

// ParseQueryDateRange 从查询参数解析闭区间日期范围
// 开始日期为当天 00:00:00，结束日期调整为当天 23:59:59
func ParseQueryDateRange(c *gin.Context, fromParam, toParam string, loc *time.Location) (*time.Time, *time.Time, error) {
	start, err := ParseQueryDate(c, fromParam, loc)
	if err != nil {
		return nil, nil, err
	}

	end, err := ParseQueryDate(c, toParam, loc)
	if err != nil {
		return nil, nil, err
	}
	if end != nil {
		endOfDay := EndOfDay(*end)
		end = &endOfDay
	}

	if start != nil && end != nil && start.After(*end) {
		return nil, nil, errors.ErrInvalidDateRange
	}

	return start, end, nil
}

// EndOfDay 返回当天 23:59:59
func EndOfDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, day.Location())
}
