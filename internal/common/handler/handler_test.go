package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/affiliate-settlement-backend/internal/common/errors"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/jwt"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/response"
	"github.com/dumeirei/affiliate-settlement-backend/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// 辅助函数：创建带查询参数的测试上下文
func createTestContextWithQuery(query string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c, w
}

// 辅助函数：解析失败响应
func parseFailure(t *testing.T, w *httptest.ResponseRecorder) response.Failure {
	var resp response.Failure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ============================================================================
// 错误处理测试
// ============================================================================

func TestHandleError_NilError(t *testing.T) {
	c, _ := createTestContextWithQuery("")
	assert.False(t, HandleError(c, nil))
}

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"未登录", errors.ErrUnauthorized, http.StatusUnauthorized, errors.ErrUnauthorized.Message},
		{"令牌过期", errors.ErrTokenExpired, http.StatusUnauthorized, errors.ErrTokenExpired.Message},
		{"令牌无效", errors.ErrTokenInvalid, http.StatusUnauthorized, errors.ErrTokenInvalid.Message},
		{"权限不足", errors.ErrPermissionDenied, http.StatusForbidden, errors.ErrPermissionDenied.Message},
		{"managerId 非法", errors.ErrInvalidManagerID, http.StatusBadRequest, errors.ErrInvalidManagerID.Message},
		{"日期非法", errors.ErrInvalidDate.WithMessage("from 日期格式错误"), http.StatusBadRequest, "from 日期格式错误"},
		{"格式非法", errors.ErrInvalidFormat, http.StatusBadRequest, errors.ErrInvalidFormat.Message},
		{"聚合失败", errors.ErrAggregationFailed.WithError(stderrors.New("dial tcp: refused")), http.StatusInternalServerError, errors.ErrAggregationFailed.Message},
		{"普通错误", stderrors.New("pq: relation does not exist"), http.StatusInternalServerError, "服务器内部错误"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := createTestContextWithQuery("")

			assert.True(t, HandleError(c, tt.err))
			assert.Equal(t, tt.status, w.Code)

			resp := parseFailure(t, w)
			assert.False(t, resp.OK)
			assert.Equal(t, tt.message, resp.Message)
			assert.NotContains(t, w.Body.String(), "refused")
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

// ============================================================================
// 认证检查测试
// ============================================================================

func TestRequireAdminID(t *testing.T) {
	t.Run("未登录", func(t *testing.T) {
		c, w := createTestContextWithQuery("")
		id, ok := RequireAdminID(c)
		assert.False(t, ok)
		assert.Zero(t, id)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("管理员", func(t *testing.T) {
		c, _ := createTestContextWithQuery("")
		c.Set(middleware.ContextKeyUserID, int64(3))
		c.Set(middleware.ContextKeyUserType, jwt.UserTypeAdmin)
		id, ok := RequireAdminID(c)
		assert.True(t, ok)
		assert.Equal(t, int64(3), id)
	})
}

// ============================================================================
// 参数解析测试
// ============================================================================

func TestParseQueryID(t *testing.T) {
	tests := []struct {
		query   string
		want    *int64
		wantErr bool
	}{
		{"", nil, false},
		{"managerId=12", int64Ptr(12), false},
		{"managerId=%2012%20", int64Ptr(12), false},
		{"managerId=abc", nil, true},
		{"managerId=0", nil, true},
		{"managerId=-3", nil, true},
		{"managerId=1.5", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := createTestContextWithQuery(tt.query)
			got, err := ParseQueryID(c, "managerId")
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQueryDateRange(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	t.Run("均为空", func(t *testing.T) {
		c, _ := createTestContextWithQuery("")
		from, to, err := ParseQueryDateRange(c, "from", "to", seoul)
		require.NoError(t, err)
		assert.Nil(t, from)
		assert.Nil(t, to)
	})

	t.Run("闭区间边界", func(t *testing.T) {
		c, _ := createTestContextWithQuery("from=2024-03-01&to=2024-03-31")
		from, to, err := ParseQueryDateRange(c, "from", "to", seoul)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, seoul), *from)
		assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 0, seoul), *to)
	})

	t.Run("日期格式错误", func(t *testing.T) {
		c, _ := createTestContextWithQuery("from=2024/03/01")
		_, _, err := ParseQueryDateRange(c, "from", "to", seoul)
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrInvalidDate.Code, appErr.Code)
	})

	t.Run("开始晚于结束", func(t *testing.T) {
		c, _ := createTestContextWithQuery("from=2024-04-01&to=2024-03-01")
		_, _, err := ParseQueryDateRange(c, "from", "to", seoul)
		assert.Equal(t, errors.ErrInvalidDateRange, err)
	})

	t.Run("同一天", func(t *testing.T) {
		c, _ := createTestContextWithQuery("from=2024-03-01&to=2024-03-01")
		from, to, err := ParseQueryDateRange(c, "from", "to", seoul)
		require.NoError(t, err)
		assert.True(t, to.After(*from))
	})
}

func int64Ptr(v int64) *int64 {
	return &v
}
