package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

// PaidFeatures 付费功能检查中间件，企业需有有效订阅或试用
func PaidFeatures(companies *service.CompanyService, quota *service.QuotaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		company, err := companies.GetByUserID(userID)
		if err != nil {
			if errors.Is(err, service.ErrCompanyNotFound) {
				response.PermissionError(c, "仅企业账号可使用")
			} else {
				response.ServerError(c, "订阅检查失败")
			}
			c.Abort()
			return
		}

		if err := quota.CheckPaidFeatures(company); err != nil {
			response.SubscriptionRequired(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
