package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/tmusoni/gradeplan/core"
)

var (
	letterGradeTag  = "lettergrade"
	letterGradeText = "must be one of A, B, C, D or F"

	gradingMethodTag  = "gradingmethod"
	gradingMethodText = "must be one of WEIGHTED or POINTS"
)

func init() {
	_ = core.Validate.RegisterValidation(letterGradeTag, letterGradeValidation)
	core.RegisterCustomTranslation(letterGradeTag, letterGradeText)

	_ = core.Validate.RegisterValidation(gradingMethodTag, gradingMethodValidation)
	core.RegisterCustomTranslation(gradingMethodTag, gradingMethodText)
}

// letterGradeValidation checks that the value is a known letter grade.
func letterGradeValidation(fl validator.FieldLevel) bool {
	return isOneOf(fl.Field().String(), LetterGrades)
}

// gradingMethodValidation checks that the value is a known grading method.
func gradingMethodValidation(fl validator.FieldLevel) bool {
	return isOneOf(fl.Field().String(), GradingMethods)
}

func isOneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
