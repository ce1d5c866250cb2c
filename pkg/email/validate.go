package email

import (
	"github.com/go-playground/validator/v10"
)

const maxEmailLength = 254

var validate = validator.New()

func IsEmailValid(email string) bool {
	if len(email) < 3 || len(email) > maxEmailLength {
		return false
	}

	return validate.Var(email, "required,email") == nil
}
