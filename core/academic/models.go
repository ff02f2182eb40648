package academic

import (
	"time"

	"github.com/tmusoni/gradeplan/core"
)

type Year struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"-" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type Semester struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"-" db:"owner_id"`
	YearID    string    `json:"year_id" db:"year_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewYear contains information needed to create a new academic Year.
type NewYear struct {
	Name string `json:"name" validate:"required"`
}

func (ny *NewYear) Validate() error {
	ny.Name = core.CleanString(ny.Name)
	return core.Validate.Struct(ny)
}

// UpdateYear defines what information may be provided to modify an existing Year.
type UpdateYear struct {
	Name string `json:"name" validate:"required"`
}

func (uy *UpdateYear) Validate() error {
	uy.Name = core.CleanString(uy.Name)
	return core.Validate.Struct(uy)
}

// NewSemester contains information needed to create a new Semester.
type NewSemester struct {
	YearID string `json:"year_id" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

func (ns *NewSemester) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}

// UpdateSemester defines what information may be provided to modify an existing Semester.
type UpdateSemester struct {
	YearID string `json:"year_id"`
	Name   string `json:"name"`
}

func (us *UpdateSemester) Validate() error {
	us.Name = core.CleanString(us.Name)
	return core.Validate.Struct(us)
}
