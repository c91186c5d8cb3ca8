package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/pkg/validate"
)

// ValidationData 字段级校验错误
type ValidationData struct {
	Errors map[string]string `json:"errors"`
}

// ValidationError 将绑定 / 校验错误转换为 400 响应，附带字段明细
func ValidationError(c *gin.Context, err error) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		ErrorWithData(c, CodeParamError, "", ValidationData{Errors: verr.Fields})
		return
	}

	fields := validate.Translate(err)
	if len(fields) == 0 {
		ParamError(c, "请求格式错误")
		return
	}
	ErrorWithData(c, CodeParamError, "", ValidationData{Errors: fields})
}
