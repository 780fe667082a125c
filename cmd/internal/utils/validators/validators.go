package validators

import (
	"github.com/go-playground/validator/v10"
	"leadfinder/cmd/internal/utils"
)

// Register installs the custom tags used across request and entity structs.
func Register(validate *validator.Validate) {
	_ = validate.RegisterValidation("statecode", StateCode)
	_ = validate.RegisterValidation("zipcode", Zipcode)
}

func StateCode(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return utils.IsStateCode(val)
}

// Zipcode lets empty values through, pair it with "required" when needed.
func Zipcode(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return val == "" || utils.IsZipcode(val)
}
