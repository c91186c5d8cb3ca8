package validate

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     string   `json:"role" binding:"required,oneof=engineer company"`
	Skills   []string `json:"skills" binding:"max=2,dive,max=5"`
}

func TestTranslate_UsesJSONNames(t *testing.T) {
	err := binding.Validator.ValidateStruct(&signup{
		Email:    "nope",
		Password: "short",
		Role:     "admin",
		Skills:   []string{"golang-and-more"},
	})
	require.Error(t, err)

	fields := Translate(err)
	assert.Equal(t, "邮箱格式不正确", fields["email"])
	assert.Equal(t, "长度不能少于 8", fields["password"])
	assert.Equal(t, "必须是以下之一: engineer company", fields["role"])
	assert.Equal(t, "长度不能超过 5", fields["skills[0]"])
}

func TestTranslate_NonValidationError(t *testing.T) {
	assert.Nil(t, Translate(errors.New("EOF")))
}

func TestFieldError(t *testing.T) {
	err := Field("title", "已存在同名职位")
	assert.Equal(t, "validation failed: title: 已存在同名职位", err.Error())

	var verr *Error
	assert.True(t, errors.As(error(err), &verr))
}
