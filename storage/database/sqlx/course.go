package sqlxrepos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tmusoni/gradeplan/core/course"
)

type courseRepository struct {
	db sqlx.Ext
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

const courseColumns = `id, owner_id, semester_id, name, credits, desired_letter_grade,
	grading_method, is_completed, actual_letter_grade, actual_percent_grade, created_at, updated_at`

// loadTrees attaches categories and assignments to the given courses,
// preserving creation order within each level.
func loadTrees(db sqlx.Ext, courses []course.Course) error {
	if len(courses) == 0 {
		return nil
	}
	courseIDs := make([]string, len(courses))
	byCourse := make(map[string]*course.Course, len(courses))
	for i := range courses {
		courseIDs[i] = courses[i].ID
		byCourse[courses[i].ID] = &courses[i]
	}

	var cats []course.Category
	query, args, err := sqlx.In(`
		SELECT id, course_id, name, weight_percent, drop_lowest, created_at, updated_at
		FROM category
		WHERE course_id IN (?)
		ORDER BY created_at, id`, courseIDs)
	if err != nil {
		return errors.Wrap(err, "loading categories")
	}
	if err = sqlx.Select(db, &cats, db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "loading categories")
	}
	if len(cats) == 0 {
		return nil
	}

	catIDs := make([]string, len(cats))
	byCat := make(map[string]*course.Category, len(cats))
	for i := range cats {
		catIDs[i] = cats[i].ID
		byCat[cats[i].ID] = &cats[i]
	}

	var assignments []course.Assignment
	query, args, err = sqlx.In(`
		SELECT id, category_id, name, max_points, is_extra_credit, is_graded,
			earned_points, expected_points, graded_at, created_at, updated_at
		FROM assignment
		WHERE category_id IN (?)
		ORDER BY created_at, id`, catIDs)
	if err != nil {
		return errors.Wrap(err, "loading assignments")
	}
	if err = sqlx.Select(db, &assignments, db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "loading assignments")
	}

	for _, a := range assignments {
		cat := byCat[a.CategoryID]
		cat.Assignments = append(cat.Assignments, a)
	}
	for i := range cats {
		crs := byCourse[cats[i].CourseID]
		crs.Categories = append(crs.Categories, cats[i])
	}
	return nil
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO course (id, owner_id, semester_id, name, credits, desired_letter_grade,
			grading_method, is_completed, actual_letter_grade, actual_percent_grade, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		crs.ID, crs.OwnerID, crs.SemesterID, crs.Name, crs.Credits, crs.DesiredLetterGrade,
		crs.GradingMethod, crs.IsCompleted, null.StringFromPtr(crs.ActualLetterGrade),
		null.Float64FromPtr(crs.ActualPercentGrade), crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourse(ownerID, id string) (course.Course, error) {
	var crs course.Course
	err := sqlx.Get(repo.db, &crs, `
		SELECT `+courseColumns+`
		FROM course
		WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "getting course")
	}

	courses := []course.Course{crs}
	if err = loadTrees(repo.db, courses); err != nil {
		return course.Course{}, err
	}
	return courses[0], nil
}

func (repo *courseRepository) QueryCoursesBySemester(ownerID, semesterID string) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := sqlx.Select(repo.db, &courses, `
		SELECT `+courseColumns+`
		FROM course
		WHERE owner_id = $1 AND semester_id = $2
		ORDER BY created_at, id`, ownerID, semesterID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	if err = loadTrees(repo.db, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(crs course.Course, isCompleted *bool) (course.Course, error) {
	res, err := repo.db.Exec(`
		UPDATE course
		SET semester_id = $3, name = $4, credits = $5, desired_letter_grade = $6,
			grading_method = $7, is_completed = COALESCE($8, is_completed),
			actual_letter_grade = $9, actual_percent_grade = $10, updated_at = $11
		WHERE id = $1 AND owner_id = $2`,
		crs.ID, crs.OwnerID, crs.SemesterID, crs.Name, crs.Credits, crs.DesiredLetterGrade,
		crs.GradingMethod, null.BoolFromPtr(isCompleted), null.StringFromPtr(crs.ActualLetterGrade),
		null.Float64FromPtr(crs.ActualPercentGrade), crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourse(crs.OwnerID, crs.ID)
}

func (repo *courseRepository) DeleteCoursesByID(ownerID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	// child rows go away via ON DELETE CASCADE
	query, args, err := sqlx.In(`DELETE FROM course WHERE owner_id = ? AND id IN (?)`, ownerID, ids)
	if err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

func (repo *courseRepository) SaveActualGrade(courseID string, letter *string, percent *float64) error {
	_, err := repo.db.Exec(`
		UPDATE course
		SET actual_letter_grade = $2, actual_percent_grade = $3
		WHERE id = $1`,
		courseID, null.StringFromPtr(letter), null.Float64FromPtr(percent),
	)
	return errors.Wrap(err, "saving actual grade")
}

func (repo *courseRepository) CreateCategory(ownerID string, cat course.Category) (course.Category, error) {
	// the owning course must belong to ownerID
	var exists bool
	err := sqlx.Get(repo.db, &exists,
		`SELECT EXISTS (SELECT 1 FROM course WHERE id = $1 AND owner_id = $2)`, cat.CourseID, ownerID)
	if err != nil {
		return course.Category{}, errors.Wrap(err, "creating category")
	}
	if !exists {
		return course.Category{}, course.ErrNotFound
	}

	cat.ID = uuid.New().String()
	_, err = repo.db.Exec(`
		INSERT INTO category (id, course_id, name, weight_percent, drop_lowest, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cat.ID, cat.CourseID, cat.Name, cat.WeightPercent, cat.DropLowest, cat.CreatedAt, cat.UpdatedAt,
	)
	if err != nil {
		return course.Category{}, errors.Wrap(err, "creating category")
	}
	return cat, nil
}

func (repo *courseRepository) GetCategory(ownerID, id string) (course.Category, error) {
	var cat course.Category
	err := sqlx.Get(repo.db, &cat, `
		SELECT c.id, c.course_id, c.name, c.weight_percent, c.drop_lowest, c.created_at, c.updated_at
		FROM category c
			JOIN course crs ON c.course_id = crs.id
		WHERE c.id = $1 AND crs.owner_id = $2`, id, ownerID)
	if err != nil {
		return course.Category{}, trapNoRowsErr(err, course.ErrCategoryNotFound, "getting category")
	}
	return cat, nil
}

func (repo *courseRepository) UpdateCategory(ownerID string, cat course.Category) (course.Category, error) {
	res, err := repo.db.Exec(`
		UPDATE category c
		SET name = $3, weight_percent = $4, drop_lowest = $5, updated_at = $6
		FROM course crs
		WHERE c.id = $1 AND c.course_id = crs.id AND crs.owner_id = $2`,
		cat.ID, ownerID, cat.Name, cat.WeightPercent, cat.DropLowest, cat.UpdatedAt,
	)
	if err != nil {
		return course.Category{}, errors.Wrap(err, "updating category")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Category{}, course.ErrCategoryNotFound
	}
	return repo.GetCategory(ownerID, cat.ID)
}

func (repo *courseRepository) DeleteCategoriesByID(ownerID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`
		DELETE FROM category c
		USING course crs
		WHERE c.course_id = crs.id AND crs.owner_id = ? AND c.id IN (?)`, ownerID, ids)
	if err != nil {
		return errors.Wrap(err, "deleting categories")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting categories")
	}
	return nil
}

func (repo *courseRepository) CreateAssignment(ownerID string, a course.Assignment) (course.Assignment, error) {
	// the owning category's course must belong to ownerID
	var exists bool
	err := sqlx.Get(repo.db, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM category c
				JOIN course crs ON c.course_id = crs.id
			WHERE c.id = $1 AND crs.owner_id = $2
		)`, a.CategoryID, ownerID)
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	if !exists {
		return course.Assignment{}, course.ErrCategoryNotFound
	}

	a.ID = uuid.New().String()
	_, err = repo.db.Exec(`
		INSERT INTO assignment (id, category_id, name, max_points, is_extra_credit, is_graded,
			earned_points, expected_points, graded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.CategoryID, a.Name, a.MaxPoints, a.IsExtraCredit, a.IsGraded,
		null.Float64FromPtr(a.EarnedPoints), null.Float64FromPtr(a.ExpectedPoints),
		null.TimeFromPtr(a.GradedAt), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return a, nil
}

func (repo *courseRepository) GetAssignment(ownerID, id string) (course.Assignment, error) {
	var a course.Assignment
	err := sqlx.Get(repo.db, &a, `
		SELECT a.id, a.category_id, a.name, a.max_points, a.is_extra_credit, a.is_graded,
			a.earned_points, a.expected_points, a.graded_at, a.created_at, a.updated_at
		FROM assignment a
			JOIN category c ON a.category_id = c.id
			JOIN course crs ON c.course_id = crs.id
		WHERE a.id = $1 AND crs.owner_id = $2`, id, ownerID)
	if err != nil {
		return course.Assignment{}, trapNoRowsErr(err, course.ErrAssignmentNotFound, "getting assignment")
	}
	return a, nil
}

func (repo *courseRepository) UpdateAssignment(ownerID string, a course.Assignment) (course.Assignment, error) {
	res, err := repo.db.Exec(`
		UPDATE assignment a
		SET name = $3, max_points = $4, is_extra_credit = $5, is_graded = $6,
			earned_points = $7, expected_points = $8, graded_at = $9, updated_at = $10
		FROM category c
			JOIN course crs ON c.course_id = crs.id
		WHERE a.id = $1 AND a.category_id = c.id AND crs.owner_id = $2`,
		a.ID, ownerID, a.Name, a.MaxPoints, a.IsExtraCredit, a.IsGraded,
		null.Float64FromPtr(a.EarnedPoints), null.Float64FromPtr(a.ExpectedPoints),
		null.TimeFromPtr(a.GradedAt), a.UpdatedAt,
	)
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Assignment{}, course.ErrAssignmentNotFound
	}
	return repo.GetAssignment(ownerID, a.ID)
}

func (repo *courseRepository) DeleteAssignmentsByID(ownerID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`
		DELETE FROM assignment a
		USING category c, course crs
		WHERE a.category_id = c.id AND c.course_id = crs.id AND crs.owner_id = ? AND a.id IN (?)`, ownerID, ids)
	if err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return nil
}
