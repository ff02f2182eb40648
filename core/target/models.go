package target

import (
	"errors"
	"strings"
	"time"

	"github.com/tmusoni/gradeplan/core"
)

// Session scopes
const (
	ScopeCareer   = "CAREER"
	ScopeYear     = "YEAR"
	ScopeSemester = "SEMESTER"
)

var (
	Scopes = []string{ScopeCareer, ScopeYear, ScopeSemester}

	errYearIDRequired     = errors.New("a year is required for a year-scoped target")
	errSemesterIDRequired = errors.New("a semester is required for a semester-scoped target")
	errCareerWithScopeID  = errors.New("a career-scoped target cannot reference a year or semester")
)

// Session is a target GPA goal at career, year or semester scope. A session
// is active while DisabledAt is nil; disabling soft-closes it for audit and
// a later enable always creates a new row.
type Session struct {
	ID               string     `json:"id" db:"id"`
	OwnerID          string     `json:"-" db:"owner_id"`
	Scope            string     `json:"scope" db:"scope"`
	YearID           *string    `json:"year_id" db:"year_id"`
	SemesterID       *string    `json:"semester_id" db:"semester_id"`
	TargetGpa        float64    `json:"target_gpa" db:"target_gpa"`
	MaxAchievableGpa *float64   `json:"max_achievable_gpa" db:"max_achievable_gpa"`
	GpaShortfall     *float64   `json:"gpa_shortfall" db:"gpa_shortfall"`
	DisabledAt       *time.Time `json:"disabled_at" db:"disabled_at"` // UTC
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

func (s Session) IsActive() bool { return s.DisabledAt == nil }

// scopeID returns the scope-qualifying id, empty for career scope.
func (s Session) scopeID() string {
	switch s.Scope {
	case ScopeYear:
		if s.YearID != nil {
			return *s.YearID
		}
	case ScopeSemester:
		if s.SemesterID != nil {
			return *s.SemesterID
		}
	}
	return ""
}

// Snapshot records a course's desired letter grade as it was when a session
// was enabled, so it can be restored when the session is disabled.
type Snapshot struct {
	ID                         string    `json:"id" db:"id"`
	SessionID                  string    `json:"session_id" db:"session_id"`
	CourseID                   string    `json:"course_id" db:"course_id"`
	PreviousDesiredLetterGrade string    `json:"previous_desired_letter_grade" db:"previous_desired_letter_grade"`
	CreatedAt                  time.Time `json:"created_at" db:"created_at"`
}

// EnableTarget contains information needed to enable a target GPA session.
type EnableTarget struct {
	Scope      string  `json:"scope" validate:"required,targetscope"`
	TargetGpa  float64 `json:"target_gpa" validate:"min=0,max=4"`
	YearID     string  `json:"year_id"`
	SemesterID string  `json:"semester_id"`
}

func (et *EnableTarget) Validate() error {
	et.Scope = normalizeScope(et.Scope)
	et.YearID = core.CleanString(et.YearID)
	et.SemesterID = core.CleanString(et.SemesterID)
	if err := core.Validate.Struct(et); err != nil {
		return err
	}
	return validateScopeIDs(et.Scope, et.YearID, et.SemesterID)
}

// DisableTarget identifies the active session to disable.
type DisableTarget struct {
	Scope      string `json:"scope" validate:"required,targetscope"`
	YearID     string `json:"year_id"`
	SemesterID string `json:"semester_id"`
}

func (dt *DisableTarget) Validate() error {
	dt.Scope = normalizeScope(dt.Scope)
	dt.YearID = core.CleanString(dt.YearID)
	dt.SemesterID = core.CleanString(dt.SemesterID)
	if err := core.Validate.Struct(dt); err != nil {
		return err
	}
	return validateScopeIDs(dt.Scope, dt.YearID, dt.SemesterID)
}

// DisableResult reports whether a matching active session was found.
// Disabling a scope with no active session is a benign no-op.
type DisableResult struct {
	Disabled bool     `json:"disabled"`
	Session  *Session `json:"session,omitempty"`
}

// validateScopeIDs enforces the scope/id pairing: the qualifying id is
// required iff the scope requires it.
func validateScopeIDs(scope, yearID, semesterID string) error {
	switch scope {
	case ScopeCareer:
		if yearID != "" || semesterID != "" {
			return core.NewValidationError(errCareerWithScopeID)
		}
	case ScopeYear:
		if yearID == "" {
			return core.NewValidationError(errYearIDRequired, core.FieldError{Field: "year_id", Error: errYearIDRequired.Error()})
		}
	case ScopeSemester:
		if semesterID == "" {
			return core.NewValidationError(errSemesterIDRequired, core.FieldError{Field: "semester_id", Error: errSemesterIDRequired.Error()})
		}
	}
	return nil
}

func normalizeScope(scope string) string {
	return strings.ToUpper(core.CleanString(scope))
}
