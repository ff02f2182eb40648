package dummydb

import (
	"github.com/google/uuid"

	"github.com/tmusoni/gradeplan/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// buildTree copies a course row and loads its categories and their
// assignments in insertion order.
func (db *DB) buildTree(crs *course.Course) course.Course {
	full := *crs
	full.Categories = nil
	for _, catID := range db.category.ids {
		cat := db.category.rows[catID]
		if cat.CourseID != crs.ID {
			continue
		}
		fullCat := *cat
		fullCat.Assignments = nil
		for _, aID := range db.assignment.ids {
			if a := db.assignment.rows[aID]; a.CategoryID == cat.ID {
				fullCat.Assignments = append(fullCat.Assignments, *a)
			}
		}
		full.Categories = append(full.Categories, fullCat)
	}
	return full
}

// courseOf resolves a category's owning course; ok is false on a dangling ref.
func (db *DB) courseOf(cat *course.Category) (*course.Course, bool) {
	crs, ok := db.course.rows[cat.CourseID]
	return crs, ok
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	crs.Categories = nil
	repo.db.course.rows[crs.ID] = &crs
	repo.db.course.ids = append(repo.db.course.ids, crs.ID)
	return crs, nil
}

func (repo *courseRepository) GetCourse(ownerID, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.course.rows[id]; ok && crs.OwnerID == ownerID {
		return repo.db.buildTree(crs), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCoursesBySemester(ownerID, semesterID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, id := range repo.db.course.ids {
		crs := repo.db.course.rows[id]
		if crs.OwnerID == ownerID && crs.SemesterID == semesterID {
			courses = append(courses, repo.db.buildTree(crs))
		}
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(crs course.Course, isCompleted *bool) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.course.rows[crs.ID]
	if !ok || orig.OwnerID != crs.OwnerID {
		return course.Course{}, course.ErrNotFound
	}
	orig.SemesterID = crs.SemesterID
	orig.Name = crs.Name
	orig.Credits = crs.Credits
	orig.DesiredLetterGrade = crs.DesiredLetterGrade
	orig.GradingMethod = crs.GradingMethod
	orig.ActualLetterGrade = crs.ActualLetterGrade
	orig.ActualPercentGrade = crs.ActualPercentGrade
	if isCompleted != nil {
		orig.IsCompleted = *isCompleted
	}
	orig.UpdatedAt = crs.UpdatedAt
	return repo.db.buildTree(orig), nil
}

func (repo *courseRepository) DeleteCoursesByID(ownerID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		crs, ok := repo.db.course.rows[id]
		if !ok || crs.OwnerID != ownerID {
			continue
		}
		repo.db.deleteCourse(id)
	}
	return nil
}

// deleteCourse removes a course with its categories, assignments and target
// snapshots, the way the schema's foreign keys would. Caller holds the lock.
func (db *DB) deleteCourse(id string) {
	for _, catID := range append([]string(nil), db.category.ids...) {
		cat := db.category.rows[catID]
		if cat.CourseID != id {
			continue
		}
		db.deleteCategory(catID)
	}
	for _, snapID := range append([]string(nil), db.snapshot.ids...) {
		if db.snapshot.rows[snapID].CourseID == id {
			delete(db.snapshot.rows, snapID)
			db.snapshot.ids = dropID(db.snapshot.ids, snapID)
		}
	}
	delete(db.course.rows, id)
	db.course.ids = dropID(db.course.ids, id)
}

func (repo *courseRepository) SaveActualGrade(courseID string, letter *string, percent *float64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.course.rows[courseID]
	if !ok {
		return course.ErrNotFound
	}
	crs.ActualLetterGrade = letter
	crs.ActualPercentGrade = percent
	return nil
}

func (db *DB) deleteCategory(id string) {
	for _, aID := range append([]string(nil), db.assignment.ids...) {
		if a := db.assignment.rows[aID]; a.CategoryID == id {
			delete(db.assignment.rows, aID)
			db.assignment.ids = dropID(db.assignment.ids, aID)
		}
	}
	delete(db.category.rows, id)
	db.category.ids = dropID(db.category.ids, id)
}

func (repo *courseRepository) CreateCategory(ownerID string, cat course.Category) (course.Category, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.course.rows[cat.CourseID]
	if !ok || crs.OwnerID != ownerID {
		return course.Category{}, course.ErrNotFound
	}
	cat.ID = uuid.New().String()
	cat.Assignments = nil
	repo.db.category.rows[cat.ID] = &cat
	repo.db.category.ids = append(repo.db.category.ids, cat.ID)
	return cat, nil
}

func (repo *courseRepository) GetCategory(ownerID, id string) (course.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cat, ok := repo.db.category.rows[id]
	if !ok {
		return course.Category{}, course.ErrCategoryNotFound
	}
	if crs, ok := repo.db.courseOf(cat); !ok || crs.OwnerID != ownerID {
		return course.Category{}, course.ErrCategoryNotFound
	}
	return *cat, nil
}

func (repo *courseRepository) UpdateCategory(ownerID string, cat course.Category) (course.Category, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.category.rows[cat.ID]
	if !ok {
		return course.Category{}, course.ErrCategoryNotFound
	}
	if crs, ok := repo.db.courseOf(orig); !ok || crs.OwnerID != ownerID {
		return course.Category{}, course.ErrCategoryNotFound
	}
	orig.Name = cat.Name
	orig.WeightPercent = cat.WeightPercent
	orig.DropLowest = cat.DropLowest
	orig.UpdatedAt = cat.UpdatedAt
	return *orig, nil
}

func (repo *courseRepository) DeleteCategoriesByID(ownerID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		cat, ok := repo.db.category.rows[id]
		if !ok {
			continue
		}
		if crs, ok := repo.db.courseOf(cat); !ok || crs.OwnerID != ownerID {
			continue
		}
		repo.db.deleteCategory(id)
	}
	return nil
}

func (repo *courseRepository) CreateAssignment(ownerID string, a course.Assignment) (course.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cat, ok := repo.db.category.rows[a.CategoryID]
	if !ok {
		return course.Assignment{}, course.ErrCategoryNotFound
	}
	if crs, ok := repo.db.courseOf(cat); !ok || crs.OwnerID != ownerID {
		return course.Assignment{}, course.ErrCategoryNotFound
	}
	a.ID = uuid.New().String()
	repo.db.assignment.rows[a.ID] = &a
	repo.db.assignment.ids = append(repo.db.assignment.ids, a.ID)
	return a, nil
}

func (repo *courseRepository) GetAssignment(ownerID, id string) (course.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	a, ok := repo.db.assignment.rows[id]
	if !ok {
		return course.Assignment{}, course.ErrAssignmentNotFound
	}
	if !repo.db.ownsAssignment(ownerID, a) {
		return course.Assignment{}, course.ErrAssignmentNotFound
	}
	return *a, nil
}

func (repo *courseRepository) UpdateAssignment(ownerID string, a course.Assignment) (course.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.assignment.rows[a.ID]
	if !ok || !repo.db.ownsAssignment(ownerID, orig) {
		return course.Assignment{}, course.ErrAssignmentNotFound
	}
	orig.Name = a.Name
	orig.MaxPoints = a.MaxPoints
	orig.IsExtraCredit = a.IsExtraCredit
	orig.IsGraded = a.IsGraded
	orig.EarnedPoints = a.EarnedPoints
	orig.ExpectedPoints = a.ExpectedPoints
	orig.GradedAt = a.GradedAt
	orig.UpdatedAt = a.UpdatedAt
	return *orig, nil
}

func (repo *courseRepository) DeleteAssignmentsByID(ownerID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		a, ok := repo.db.assignment.rows[id]
		if !ok || !repo.db.ownsAssignment(ownerID, a) {
			continue
		}
		delete(repo.db.assignment.rows, id)
		repo.db.assignment.ids = dropID(repo.db.assignment.ids, id)
	}
	return nil
}

func (db *DB) ownsAssignment(ownerID string, a *course.Assignment) bool {
	cat, ok := db.category.rows[a.CategoryID]
	if !ok {
		return false
	}
	crs, ok := db.courseOf(cat)
	return ok && crs.OwnerID == ownerID
}
