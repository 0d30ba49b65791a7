// Package response 统一响应格式单元测试
package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTest 创建测试用的 Gin 上下文
func setupTest() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// parseFailure 解析失败响应
func parseFailure(t *testing.T, w *httptest.ResponseRecorder) Failure {
	var resp Failure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	c, w := setupTest()

	Success(c, gin.H{"ok": true, "agents": []int{}})

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Empty(t, body["agents"])
}

func TestAttachment(t *testing.T) {
	c, w := setupTest()

	Attachment(c, "text/csv; charset=utf-8", "report.csv", []byte("a,b\n1,2\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=report.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n1,2\n", w.Body.String())
}

func TestFailureHelpers(t *testing.T) {
	tests := []struct {
		name    string
		call    func(c *gin.Context)
		status  int
		message string
	}{
		{"BadRequest", func(c *gin.Context) { BadRequest(c, "managerId 必须为正整数") }, http.StatusBadRequest, "managerId 必须为正整数"},
		{"BadRequest默认消息", func(c *gin.Context) { BadRequest(c, "") }, http.StatusBadRequest, "bad request"},
		{"Unauthorized", func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, "unauthorized"},
		{"Forbidden", func(c *gin.Context) { Forbidden(c, "权限不足") }, http.StatusForbidden, "权限不足"},
		{"NotFound", func(c *gin.Context) { NotFound(c, "") }, http.StatusNotFound, "not found"},
		{"InternalError", func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, "internal server error"},
		{"TooManyRequests", func(c *gin.Context) { TooManyRequests(c, "") }, http.StatusTooManyRequests, "too many requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTest()
			tt.call(c)

			assert.Equal(t, tt.status, w.Code)
			resp := parseFailure(t, w)
			assert.False(t, resp.OK)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}
