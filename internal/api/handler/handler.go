package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/api/middleware"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/pkg/validate"
	"github.com/qs3c/devmatch_server/internal/repository"
	"github.com/qs3c/devmatch_server/internal/service"
)

// maxUploadBody multipart 读取上限，具体大小限制由 UploadService 判断
const maxUploadBody = 32 << 20

var (
	notFoundErrors = []error{
		service.ErrUserNotFound, service.ErrCompanyNotFound, service.ErrEngineerNotFound,
		service.ErrJobNotFound, service.ErrApplicationNotFound, service.ErrProjectNotFound,
		service.ErrMessageNotFound, service.ErrReceiverNotFound, service.ErrScoutNotFound,
		service.ErrPaymentNotFound, service.ErrInquiryNotFound,
	}
	duplicateErrors = []error{
		service.ErrEmailExists, service.ErrAlreadyApplied, service.ErrAlreadyScouted,
		service.ErrDuplicateTitle, service.ErrTrialAlreadyUsed, service.ErrAlreadyVerified,
	}
	paramErrors = []error{
		service.ErrInvalidVerifyCode, service.ErrInvalidStatus, service.ErrJobClosed,
		service.ErrProjectClosed, service.ErrCannotMessageSelf, service.ErrEngineerClosedToScout,
		service.ErrNoCandidates, service.ErrInvalidPaymentMethod, service.ErrInvalidPurpose,
		service.ErrInvalidPlan, service.ErrPaymentSettled, service.ErrFileTooLarge,
		service.ErrInvalidFormat,
	}
)

// respondError 将服务层错误映射为统一响应，未知错误记入 c.Errors 由日志中间件输出
func respondError(c *gin.Context, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, err)
	case matches(err, notFoundErrors):
		response.NotFoundError(c, err.Error())
	case matches(err, duplicateErrors):
		response.DuplicateError(c, err.Error())
	case matches(err, paramErrors):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrOAuthRoleConflict):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrSubscriptionRequired), errors.Is(err, service.ErrScoutAccessRequired):
		response.SubscriptionRequired(c, err.Error())
	case errors.Is(err, service.ErrDailyLimitExceeded), errors.Is(err, service.ErrScoutLimitExceeded):
		response.QuotaError(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrEmailNotVerified):
		response.AuthError(c, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable), errors.Is(err, service.ErrOAuthNotConfigured):
		response.ServerError(c, err.Error())
	default:
		_ = c.Error(err)
		response.ServerError(c, "")
	}
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// currentUser 当前登录用户，未登录时写出 401
func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
	}
	return userID, ok
}

// idParam 解析路径中的数字 ID
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的 ID")
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ValidationError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.ValidationError(c, err)
		return false
	}
	return true
}

// pageOf 分页参数，返回值已补齐缺省值，可直接用于响应
func pageOf(q dto.PageQuery) repository.Page {
	return repository.Page{Page: q.Page, PageSize: q.PageSize}.Normalize()
}

// pageQuery 仅含分页参数的列表接口
func pageQuery(c *gin.Context) (repository.Page, bool) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return repository.Page{}, false
	}
	return pageOf(q), true
}

// readFile 读取 multipart 表单中的 file 字段
func readFile(c *gin.Context) (string, []byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
	header, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return "", nil, false
	}

	f, err := header.Open()
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return "", nil, false
	}
	return header.Filename, data, true
}
