package dummydb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateYear(yr academic.Year) (academic.Year, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	yr.ID = uuid.New().String()
	repo.db.year.rows[yr.ID] = &yr
	repo.db.year.ids = append(repo.db.year.ids, yr.ID)
	return yr, nil
}

func (repo *academicRepository) QueryYears(ownerID string, orderings ...core.DBOrdering) ([]academic.Year, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	years := make([]academic.Year, 0)
	for _, id := range repo.db.year.ids {
		if yr := repo.db.year.rows[id]; yr.OwnerID == ownerID {
			years = append(years, *yr)
		}
	}
	sortYears(years, orderings)
	return years, nil
}

func (repo *academicRepository) GetYear(ownerID, id string) (academic.Year, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if yr, ok := repo.db.year.rows[id]; ok && yr.OwnerID == ownerID {
		return *yr, nil
	}
	return academic.Year{}, academic.ErrYearNotFound
}

func (repo *academicRepository) UpdateYear(yr academic.Year) (academic.Year, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.year.rows[yr.ID]
	if !ok || orig.OwnerID != yr.OwnerID {
		return academic.Year{}, academic.ErrYearNotFound
	}
	orig.Name = yr.Name
	orig.UpdatedAt = yr.UpdatedAt
	return *orig, nil
}

func (repo *academicRepository) DeleteYearsByID(ownerID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		yr, ok := repo.db.year.rows[id]
		if !ok || yr.OwnerID != ownerID {
			continue
		}
		for _, semID := range append([]string(nil), repo.db.semester.ids...) {
			if repo.db.semester.rows[semID].YearID == id {
				repo.db.deleteSemester(semID)
			}
		}
		for _, sessID := range append([]string(nil), repo.db.session.ids...) {
			sess := repo.db.session.rows[sessID]
			if sess.YearID != nil && *sess.YearID == id {
				repo.db.deleteSession(sessID)
			}
		}
		delete(repo.db.year.rows, id)
		repo.db.year.ids = dropID(repo.db.year.ids, id)
	}
	return nil
}

func (repo *academicRepository) CreateSemester(sem academic.Semester) (academic.Semester, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sem.ID = uuid.New().String()
	repo.db.semester.rows[sem.ID] = &sem
	repo.db.semester.ids = append(repo.db.semester.ids, sem.ID)
	return sem, nil
}

func (repo *academicRepository) QuerySemesters(ownerID string, orderings ...core.DBOrdering) ([]academic.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sems := make([]academic.Semester, 0)
	for _, id := range repo.db.semester.ids {
		if sem := repo.db.semester.rows[id]; sem.OwnerID == ownerID {
			sems = append(sems, *sem)
		}
	}
	sortSemesters(sems, orderings)
	return sems, nil
}

func (repo *academicRepository) QuerySemestersByYear(ownerID, yearID string, orderings ...core.DBOrdering) ([]academic.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sems := make([]academic.Semester, 0)
	for _, id := range repo.db.semester.ids {
		if sem := repo.db.semester.rows[id]; sem.OwnerID == ownerID && sem.YearID == yearID {
			sems = append(sems, *sem)
		}
	}
	sortSemesters(sems, orderings)
	return sems, nil
}

func (repo *academicRepository) GetSemester(ownerID, id string) (academic.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sem, ok := repo.db.semester.rows[id]; ok && sem.OwnerID == ownerID {
		return *sem, nil
	}
	return academic.Semester{}, academic.ErrSemesterNotFound
}

func (repo *academicRepository) UpdateSemester(sem academic.Semester) (academic.Semester, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.semester.rows[sem.ID]
	if !ok || orig.OwnerID != sem.OwnerID {
		return academic.Semester{}, academic.ErrSemesterNotFound
	}
	orig.Name = sem.Name
	if sem.YearID != "" {
		orig.YearID = sem.YearID
	}
	orig.UpdatedAt = sem.UpdatedAt
	return *orig, nil
}

func (repo *academicRepository) DeleteSemestersByID(ownerID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		sem, ok := repo.db.semester.rows[id]
		if !ok || sem.OwnerID != ownerID {
			continue
		}
		repo.db.deleteSemester(id)
	}
	return nil
}

// deleteSemester removes a semester with its courses and any session scoped
// to it, the way the schema's foreign keys would. Caller holds the lock.
func (db *DB) deleteSemester(id string) {
	for _, crsID := range append([]string(nil), db.course.ids...) {
		if db.course.rows[crsID].SemesterID == id {
			db.deleteCourse(crsID)
		}
	}
	for _, sessID := range append([]string(nil), db.session.ids...) {
		sess := db.session.rows[sessID]
		if sess.SemesterID != nil && *sess.SemesterID == id {
			db.deleteSession(sessID)
		}
	}
	delete(db.semester.rows, id)
	db.semester.ids = dropID(db.semester.ids, id)
}

// rows keep insertion order; only explicitly requested orderings re-sort.
// Unknown fields are ignored, like an index the store does not have.

func sortYears(years []academic.Year, orderings []core.DBOrdering) {
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		sort.SliceStable(years, func(a, b int) bool {
			x, y := years[a], years[b]
			if !ord.Ascending {
				x, y = y, x
			}
			switch ord.Field {
			case "name":
				return x.Name < y.Name
			case "created_at":
				return x.CreatedAt.Before(y.CreatedAt)
			}
			return false
		})
	}
}

func sortSemesters(sems []academic.Semester, orderings []core.DBOrdering) {
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		sort.SliceStable(sems, func(a, b int) bool {
			x, y := sems[a], sems[b]
			if !ord.Ascending {
				x, y = y, x
			}
			switch ord.Field {
			case "name":
				return x.Name < y.Name
			case "created_at":
				return x.CreatedAt.Before(y.CreatedAt)
			}
			return false
		})
	}
}
