package validator

import (
	"log"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vibe-gaming/passwordless/pkg/otp"
)

// RegisterGinValidator makes gin report json (or form) field names and
// registers the otpcode tag. `binding:"otpcode"` checks codeLength digits,
// `binding:"otpcode=8"` overrides the length.
func RegisterGinValidator(codeLength int) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v, codeLength)
	}
}

func register(v *validator.Validate, codeLength int) {
	v.RegisterTagNameFunc(fieldName)

	err := v.RegisterValidation("otpcode", otpCodeValidator(codeLength))
	if err != nil {
		log.Fatal("register otpcode validator failed")
	}
}

func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		name = ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	return name
}

func otpCodeValidator(codeLength int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		length := codeLength
		if p := fl.Param(); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil {
				return false
			}
			length = n
		}
		return otp.IsNumeric(fl.Field().String(), length)
	}
}
