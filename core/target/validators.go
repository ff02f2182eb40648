package target

import (
	"github.com/go-playground/validator/v10"

	"github.com/tmusoni/gradeplan/core"
)

var (
	scopeTag  = "targetscope"
	scopeText = "must be one of CAREER, YEAR or SEMESTER"
)

func init() {
	_ = core.Validate.RegisterValidation(scopeTag, scopeValidation)
	core.RegisterCustomTranslation(scopeTag, scopeText)
}

// scopeValidation checks that the value is a known session scope.
func scopeValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, scope := range Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
