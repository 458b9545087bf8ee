package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bca-portal/pkg/clock"
)

// RegisterValidators 在 gin 的校验引擎上注册自定义标签：
//   - semester  学期号位于 1..maxSemester
//   - notfuture YYYY-MM-DD 日期不晚于 clk 的今天
func RegisterValidators(clk clock.Clock, maxSemester int) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	if err := v.RegisterValidation("semester", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 1 && n <= int64(maxSemester)
	}); err != nil {
		return err
	}

	return v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		d, err := clock.ParseDate(s)
		if err != nil {
			return false
		}
		return !d.After(clk.Today())
	})
}

// describeBindError 将校验错误转为简短提示
func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "请求体格式错误"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 不能为空", fe.Field())
	case "semester":
		return fmt.Sprintf("%s 学期超出范围", fe.Field())
	case "notfuture":
		return fmt.Sprintf("%s 不能晚于今天", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s 日期格式应为 YYYY-MM-DD", fe.Field())
	default:
		return fmt.Sprintf("%s 校验失败（%s）", fe.Field(), fe.Tag())
	}
}
