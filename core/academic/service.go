package academic

import (
	"errors"
	"time"

	"github.com/tmusoni/gradeplan/core"
)

var (
	// errors
	ErrYearNotFound     = errors.New("year not found")
	ErrSemesterNotFound = errors.New("semester not found")
)

type (
	Repository interface {
		CreateYear(yr Year) (Year, error)
		QueryYears(ownerID string, orderings ...core.DBOrdering) ([]Year, error)
		GetYear(ownerID, id string) (Year, error)
		UpdateYear(yr Year) (Year, error)
		DeleteYearsByID(ownerID string, ids ...string) error

		CreateSemester(sem Semester) (Semester, error)
		QuerySemesters(ownerID string, orderings ...core.DBOrdering) ([]Semester, error)
		QuerySemestersByYear(ownerID, yearID string, orderings ...core.DBOrdering) ([]Semester, error)
		GetSemester(ownerID, id string) (Semester, error)
		UpdateSemester(sem Semester) (Semester, error)
		DeleteSemestersByID(ownerID string, ids ...string) error
	}

	// Recomputer reacts to structure mutations that change a governed
	// course set; in practice this is the target session coordinator
	// re-running its allocation. Deleting a year or semester cascades
	// its courses away, and moving a semester changes two years'
	// compositions, so those paths report the affected years.
	Recomputer interface {
		RecomputeForStructureChange(ownerID, yearID string) error
	}

	Service struct {
		repo       Repository
		recomputer Recomputer
	}
)

func NewService(repo Repository, recomputer Recomputer) *Service {
	return &Service{repo: repo, recomputer: recomputer}
}

func (svc *Service) CreateYear(ownerID string, ny NewYear) (Year, error) {
	now := time.Now().UTC()
	return svc.repo.CreateYear(Year{
		OwnerID:   ownerID,
		Name:      ny.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryYears(ownerID string, orderings ...core.DBOrdering) ([]Year, error) {
	return svc.repo.QueryYears(ownerID, orderings...)
}

func (svc *Service) GetYearByID(ownerID, id string) (Year, error) {
	return svc.repo.GetYear(ownerID, id)
}

func (svc *Service) UpdateYear(ownerID, id string, uy UpdateYear) (Year, error) {
	yr, err := svc.repo.GetYear(ownerID, id)
	if err != nil {
		return Year{}, err
	}
	yr.Name = uy.Name
	yr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateYear(yr)
}

func (svc *Service) DeleteYears(ownerID string, ids ...string) error {
	if err := svc.repo.DeleteYearsByID(ownerID, ids...); err != nil {
		return err
	}
	// the deleted years' own sessions cascade away; only a career
	// session can still govern the removed courses
	return svc.recompute(ownerID, "")
}

func (svc *Service) CreateSemester(ownerID string, ns NewSemester) (Semester, error) {
	if _, err := svc.repo.GetYear(ownerID, ns.YearID); err != nil {
		return Semester{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateSemester(Semester{
		OwnerID:   ownerID,
		YearID:    ns.YearID,
		Name:      ns.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QuerySemesters(ownerID string, orderings ...core.DBOrdering) ([]Semester, error) {
	return svc.repo.QuerySemesters(ownerID, orderings...)
}

func (svc *Service) QuerySemestersByYear(ownerID, yearID string, orderings ...core.DBOrdering) ([]Semester, error) {
	return svc.repo.QuerySemestersByYear(ownerID, yearID, orderings...)
}

func (svc *Service) GetSemesterByID(ownerID, id string) (Semester, error) {
	return svc.repo.GetSemester(ownerID, id)
}

func (svc *Service) UpdateSemester(ownerID, id string, us UpdateSemester) (Semester, error) {
	sem, err := svc.repo.GetSemester(ownerID, id)
	if err != nil {
		return Semester{}, err
	}
	origYearID := sem.YearID
	if us.YearID != "" {
		if _, err := svc.repo.GetYear(ownerID, us.YearID); err != nil {
			return Semester{}, err
		}
		sem.YearID = us.YearID
	}
	if us.Name != "" {
		sem.Name = us.Name
	}
	sem.UpdatedAt = time.Now().UTC()

	sem, err = svc.repo.UpdateSemester(sem)
	if err != nil {
		return Semester{}, err
	}

	// a moved semester changes two years' compositions
	if sem.YearID != origYearID {
		if err = svc.recompute(ownerID, origYearID); err != nil {
			return Semester{}, err
		}
		if err = svc.recompute(ownerID, sem.YearID); err != nil {
			return Semester{}, err
		}
	}
	return sem, nil
}

func (svc *Service) DeleteSemesters(ownerID string, ids ...string) error {
	// remember affected years before the rows go away
	years := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		sem, err := svc.repo.GetSemester(ownerID, id)
		if err != nil {
			if err == ErrSemesterNotFound {
				continue
			}
			return err
		}
		years[sem.YearID] = struct{}{}
	}

	if err := svc.repo.DeleteSemestersByID(ownerID, ids...); err != nil {
		return err
	}
	for yearID := range years {
		if err := svc.recompute(ownerID, yearID); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service) recompute(ownerID, yearID string) error {
	if svc.recomputer == nil {
		return nil
	}
	return svc.recomputer.RecomputeForStructureChange(ownerID, yearID)
}
