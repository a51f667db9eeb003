package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// awbPattern matches an air waybill number: 3-digit airline prefix, dash,
// 8-digit serial.
var awbPattern = regexp.MustCompile(`^\d{3}-\d{8}$`)

// SetupValidator configures gin's validator with custom tags. Field names in
// validation errors use the JSON tag instead of the Go field name.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("awb", validAWB)
}

func validAWB(fl validator.FieldLevel) bool {
	return awbPattern.MatchString(fl.Field().String())
}
