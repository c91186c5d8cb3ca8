// Package validate 将 go-playground/validator 的错误转换为以 json 字段名为 key 的可读消息。
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Error 服务层主动产生的字段错误
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field 构造单字段错误
func Field(name, message string) *Error {
	return &Error{Fields: map[string]string{name: message}}
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = fld.Name
	}
	return name
}

// Translate 提取校验错误，非校验类错误返回 nil
func Translate(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return fields
}

// fieldPath 去掉顶层结构体名，保留嵌套路径，如 skills[0]
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "email":
		return "邮箱格式不正确"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("长度不能少于 %s", fe.Param())
		}
		return fmt.Sprintf("不能少于 %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("长度不能超过 %s", fe.Param())
		}
		return fmt.Sprintf("不能超过 %s", fe.Param())
	case "gte":
		return fmt.Sprintf("必须大于等于 %s", fe.Param())
	case "lte":
		return fmt.Sprintf("必须小于等于 %s", fe.Param())
	case "gtfield", "gtefield":
		return fmt.Sprintf("必须不小于 %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("必须是以下之一: %s", fe.Param())
	case "url":
		return "URL 格式不正确"
	case "len":
		return fmt.Sprintf("长度必须为 %s", fe.Param())
	case "numeric":
		return "必须为数字"
	case "dive":
		return "列表元素不合法"
	}
	return fmt.Sprintf("校验失败 (%s)", fe.Tag())
}
