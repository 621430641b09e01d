package dto

import (
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var sessionFormat = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

// RegisterValidations installs the custom binding rules shared by the request
// payloads. Call once at startup, before the router binds anything.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("session", validSession)
}

// validSession accepts YYYY/YYYY with consecutive years. The services
// re-validate; this only rejects structurally broken payloads early.
func validSession(fl validator.FieldLevel) bool {
	match := sessionFormat.FindStringSubmatch(fl.Field().String())
	if match == nil {
		return false
	}
	start, _ := strconv.Atoi(match[1])
	end, _ := strconv.Atoi(match[2])
	return end == start+1
}
