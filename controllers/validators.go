package controllers

import (
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// isoDate accepts "YYYY-MM-DD" strings.
var isoDate validator.Func = func(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := utils.ParseDate(raw)
	return err == nil
}

// RegisterValidators adds the custom binding tags used by the request structs.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("isodate", isoDate)
	}
}
