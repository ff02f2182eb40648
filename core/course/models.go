package course

import (
	"strings"
	"time"

	"github.com/tmusoni/gradeplan/core"
)

// Grading methods
const (
	MethodWeighted = "WEIGHTED"
	MethodPoints   = "POINTS"
)

// Letter grades
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeF = "F"
)

var (
	LetterGrades   = []string{GradeA, GradeB, GradeC, GradeD, GradeF}
	GradingMethods = []string{MethodWeighted, MethodPoints}

	targetPercents = map[string]float64{
		GradeA: 0.90,
		GradeB: 0.80,
		GradeC: 0.70,
		GradeD: 0.60,
		GradeF: 0,
	}
)

// TargetPercent returns the percent threshold a letter grade calls for.
// An unknown or missing letter defaults to the GradeA threshold.
func TargetPercent(letter string) float64 {
	if pct, ok := targetPercents[letter]; ok {
		return pct
	}
	return targetPercents[GradeA]
}

// LetterFromPercent maps a [0..1] percent to its letter grade.
func LetterFromPercent(pct float64) string {
	switch {
	case pct >= targetPercents[GradeA]:
		return GradeA
	case pct >= targetPercents[GradeB]:
		return GradeB
	case pct >= targetPercents[GradeC]:
		return GradeC
	case pct >= targetPercents[GradeD]:
		return GradeD
	default:
		return GradeF
	}
}

type Assignment struct {
	ID             string     `json:"id" db:"id"`
	CategoryID     string     `json:"category_id" db:"category_id"`
	Name           string     `json:"name" db:"name"`
	MaxPoints      float64    `json:"max_points" db:"max_points"`
	IsExtraCredit  bool       `json:"is_extra_credit" db:"is_extra_credit"`
	IsGraded       bool       `json:"is_graded" db:"is_graded"`
	EarnedPoints   *float64   `json:"earned_points" db:"earned_points"`
	ExpectedPoints *float64   `json:"expected_points" db:"expected_points"`
	GradedAt       *time.Time `json:"graded_at" db:"graded_at"` // UTC
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type Category struct {
	ID            string       `json:"id" db:"id"`
	CourseID      string       `json:"course_id" db:"course_id"`
	Name          string       `json:"name" db:"name"`
	WeightPercent float64      `json:"weight_percent" db:"weight_percent"`
	DropLowest    int          `json:"drop_lowest" db:"drop_lowest"`
	Assignments   []Assignment `json:"assignments,omitempty" db:"-"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

type Course struct {
	ID                 string     `json:"id" db:"id"`
	OwnerID            string     `json:"-" db:"owner_id"`
	SemesterID         string     `json:"semester_id" db:"semester_id"`
	Name               string     `json:"name" db:"name"`
	Credits            int        `json:"credits" db:"credits"`
	DesiredLetterGrade string     `json:"desired_letter_grade" db:"desired_letter_grade"`
	GradingMethod      string     `json:"grading_method" db:"grading_method"`
	IsCompleted        bool       `json:"is_completed" db:"is_completed"`
	ActualLetterGrade  *string    `json:"actual_letter_grade" db:"actual_letter_grade"`
	ActualPercentGrade *float64   `json:"actual_percent_grade" db:"actual_percent_grade"`
	Categories         []Category `json:"categories,omitempty" db:"-"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	SemesterID         string `json:"semester_id" validate:"required"`
	Name               string `json:"name" validate:"required"`
	Credits            int    `json:"credits" validate:"min=0"`
	DesiredLetterGrade string `json:"desired_letter_grade" validate:"omitempty,lettergrade"`
	GradingMethod      string `json:"grading_method" validate:"omitempty,gradingmethod"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.DesiredLetterGrade = normalizeLetter(core.CleanString(nc.DesiredLetterGrade))
	nc.GradingMethod = normalizeMethod(core.CleanString(nc.GradingMethod))
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	SemesterID         string  `json:"semester_id"`
	Name               string  `json:"name"`
	Credits            *int    `json:"credits" validate:"omitempty,min=0"`
	DesiredLetterGrade string  `json:"desired_letter_grade" validate:"omitempty,lettergrade"`
	GradingMethod      string  `json:"grading_method" validate:"omitempty,gradingmethod"`
	IsCompleted        *bool   `json:"is_completed"`
	ActualLetterGrade  *string `json:"actual_letter_grade" validate:"omitempty,lettergrade"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	uc.DesiredLetterGrade = normalizeLetter(core.CleanString(uc.DesiredLetterGrade))
	uc.GradingMethod = normalizeMethod(core.CleanString(uc.GradingMethod))
	if uc.ActualLetterGrade != nil {
		letter := normalizeLetter(core.CleanString(*uc.ActualLetterGrade))
		uc.ActualLetterGrade = &letter
	}
	return core.Validate.Struct(uc)
}

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name          string  `json:"name" validate:"required"`
	WeightPercent float64 `json:"weight_percent"`
	DropLowest    int     `json:"drop_lowest" validate:"min=0"`
}

func (nc *NewCategory) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// UpdateCategory defines what information may be provided to modify an existing Category.
type UpdateCategory struct {
	Name          string   `json:"name"`
	WeightPercent *float64 `json:"weight_percent"`
	DropLowest    *int     `json:"drop_lowest" validate:"omitempty,min=0"`
}

func (uc *UpdateCategory) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Name           string   `json:"name" validate:"required"`
	MaxPoints      float64  `json:"max_points" validate:"min=0"`
	IsExtraCredit  bool     `json:"is_extra_credit"`
	ExpectedPoints *float64 `json:"expected_points" validate:"omitempty,min=0"`
}

func (na *NewAssignment) Validate() error {
	na.Name = core.CleanString(na.Name)
	return core.Validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	Name           string   `json:"name"`
	MaxPoints      *float64 `json:"max_points" validate:"omitempty,min=0"`
	IsExtraCredit  *bool    `json:"is_extra_credit"`
	ExpectedPoints *float64 `json:"expected_points" validate:"omitempty,min=0"`
}

func (ua *UpdateAssignment) Validate() error {
	ua.Name = core.CleanString(ua.Name)
	return core.Validate.Struct(ua)
}

// GradeAssignment records or clears an assignment's earned score.
// A nil EarnedPoints un-grades the assignment.
type GradeAssignment struct {
	EarnedPoints *float64 `json:"earned_points" validate:"omitempty,min=0"`
}

func (ga *GradeAssignment) Validate() error { return core.Validate.Struct(ga) }

func normalizeLetter(letter string) string {
	return strings.ToUpper(letter)
}

func normalizeMethod(method string) string {
	return strings.ToUpper(method)
}
