package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	CodeSuccess              = 0
	CodeParamError           = 1000
	CodeAuthFailed           = 1001
	CodePermissionDenied     = 1002
	CodeResourceNotFound     = 1003
	CodeQuotaExceeded        = 1004
	CodeDuplicateAction      = 1005
	CodeSubscriptionRequired = 1006
	CodeServerError          = 5000
)

// 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:              "success",
	CodeParamError:           "参数错误",
	CodeAuthFailed:           "认证失败",
	CodePermissionDenied:     "权限不足",
	CodeResourceNotFound:     "资源不存在",
	CodeQuotaExceeded:        "已达到今日上限",
	CodeDuplicateAction:      "重复操作",
	CodeSubscriptionRequired: "该功能需要有效的订阅或试用",
	CodeServerError:          "服务器内部错误",
}

// 错误码对应的 HTTP 状态
var codeStatus = map[int]int{
	CodeSuccess:              http.StatusOK,
	CodeParamError:           http.StatusBadRequest,
	CodeAuthFailed:           http.StatusUnauthorized,
	CodePermissionDenied:     http.StatusForbidden,
	CodeResourceNotFound:     http.StatusNotFound,
	CodeQuotaExceeded:        http.StatusTooManyRequests,
	CodeDuplicateAction:      http.StatusBadRequest,
	CodeSubscriptionRequired: http.StatusForbidden,
	CodeServerError:          http.StatusInternalServerError,
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageData 分页数据结构
type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Items    interface{} `json:"items"`
}

// StatusOf 返回错误码对应的 HTTP 状态，未知错误码按 500 处理
func StatusOf(code int) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessPage 分页成功响应
func SuccessPage(c *gin.Context, total int64, page, pageSize int, items interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data: PageData{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Items:    items,
		},
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 带附加数据的错误响应
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(StatusOf(code), Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// ParamError 参数错误
func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

// AuthError 认证失败
func AuthError(c *gin.Context, message string) {
	Error(c, CodeAuthFailed, message)
}

// PermissionError 权限不足
func PermissionError(c *gin.Context, message string) {
	Error(c, CodePermissionDenied, message)
}

// NotFoundError 资源不存在
func NotFoundError(c *gin.Context, message string) {
	Error(c, CodeResourceNotFound, message)
}

// QuotaError 超出每日上限
func QuotaError(c *gin.Context, message string) {
	Error(c, CodeQuotaExceeded, message)
}

// DuplicateError 重复操作
func DuplicateError(c *gin.Context, message string) {
	Error(c, CodeDuplicateAction, message)
}

// SubscriptionRequired 需要有效订阅
func SubscriptionRequired(c *gin.Context, message string) {
	Error(c, CodeSubscriptionRequired, message)
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}
