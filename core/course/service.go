package course

import (
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		CreateCourse(crs Course) (Course, error)
		// GetCourse loads a course with its full category/assignment tree.
		GetCourse(ownerID, id string) (Course, error)
		QueryCoursesBySemester(ownerID, semesterID string) ([]Course, error)
		UpdateCourse(crs Course, isCompleted *bool) (Course, error)
		DeleteCoursesByID(ownerID string, ids ...string) error
		// SaveActualGrade stores the last computed grade snapshot on the course.
		SaveActualGrade(courseID string, letter *string, percent *float64) error

		CreateCategory(ownerID string, cat Category) (Category, error)
		GetCategory(ownerID, id string) (Category, error)
		UpdateCategory(ownerID string, cat Category) (Category, error)
		DeleteCategoriesByID(ownerID string, ids ...string) error

		CreateAssignment(ownerID string, a Assignment) (Assignment, error)
		GetAssignment(ownerID, id string) (Assignment, error)
		UpdateAssignment(ownerID string, a Assignment) (Assignment, error)
		DeleteAssignmentsByID(ownerID string, ids ...string) error
	}

	// Recomputer reacts to course-set mutations; in practice this is the
	// target session coordinator re-running its allocation.
	Recomputer interface {
		RecomputeForCourseChange(ownerID, semesterID string) error
	}

	Service struct {
		repo       Repository
		recomputer Recomputer
	}
)

func NewService(repo Repository, recomputer Recomputer) *Service {
	return &Service{repo: repo, recomputer: recomputer}
}

func (svc *Service) Create(ownerID string, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		OwnerID:            ownerID,
		SemesterID:         nc.SemesterID,
		Name:               nc.Name,
		Credits:            nc.Credits,
		DesiredLetterGrade: nc.DesiredLetterGrade,
		GradingMethod:      nc.GradingMethod,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if crs.DesiredLetterGrade == "" {
		crs.DesiredLetterGrade = GradeA
	}
	if crs.GradingMethod == "" {
		crs.GradingMethod = MethodWeighted
	}

	crs, err := svc.repo.CreateCourse(crs)
	if err != nil {
		return Course{}, err
	}
	return crs, svc.recompute(ownerID, crs.SemesterID)
}

func (svc *Service) GetByID(ownerID, id string) (Course, error) {
	return svc.repo.GetCourse(ownerID, id)
}

func (svc *Service) QueryBySemester(ownerID, semesterID string) ([]Course, error) {
	return svc.repo.QueryCoursesBySemester(ownerID, semesterID)
}

func (svc *Service) Update(ownerID, id string, uc UpdateCourse) (Course, error) {
	orig, err := svc.repo.GetCourse(ownerID, id)
	if err != nil {
		return Course{}, err
	}

	crs := Course{
		ID:                 id,
		OwnerID:            ownerID,
		SemesterID:         orig.SemesterID,
		Name:               orig.Name,
		Credits:            orig.Credits,
		DesiredLetterGrade: orig.DesiredLetterGrade,
		GradingMethod:      orig.GradingMethod,
		ActualLetterGrade:  orig.ActualLetterGrade,
		ActualPercentGrade: orig.ActualPercentGrade,
		UpdatedAt:          time.Now().UTC(),
	}
	if uc.SemesterID != "" {
		crs.SemesterID = uc.SemesterID
	}
	if uc.Name != "" {
		crs.Name = uc.Name
	}
	if uc.Credits != nil {
		crs.Credits = *uc.Credits
	}
	if uc.DesiredLetterGrade != "" {
		crs.DesiredLetterGrade = uc.DesiredLetterGrade
	}
	if uc.GradingMethod != "" {
		crs.GradingMethod = uc.GradingMethod
	}
	if uc.ActualLetterGrade != nil {
		crs.ActualLetterGrade = uc.ActualLetterGrade
	}

	crs, err = svc.repo.UpdateCourse(crs, uc.IsCompleted)
	if err != nil {
		return Course{}, err
	}

	// a moved course changes two semesters' compositions
	if orig.SemesterID != crs.SemesterID {
		if err = svc.recompute(ownerID, orig.SemesterID); err != nil {
			return Course{}, err
		}
	}
	return crs, svc.recompute(ownerID, crs.SemesterID)
}

func (svc *Service) Delete(ownerID string, ids ...string) error {
	// remember affected semesters before the rows go away
	semesters := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		crs, err := svc.repo.GetCourse(ownerID, id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return err
		}
		semesters[crs.SemesterID] = struct{}{}
	}

	if err := svc.repo.DeleteCoursesByID(ownerID, ids...); err != nil {
		return err
	}
	for semesterID := range semesters {
		if err := svc.recompute(ownerID, semesterID); err != nil {
			return err
		}
	}
	return nil
}

// Simulate runs the grade projection over the course's stored tree and
// persists the computed actual grade snapshot on the course.
func (svc *Service) Simulate(ownerID, id string) (Projection, error) {
	crs, err := svc.repo.GetCourse(ownerID, id)
	if err != nil {
		return Projection{}, err
	}

	proj := Project(crs)

	var letter *string
	if proj.ActualPercent != nil {
		l := LetterFromPercent(*proj.ActualPercent)
		letter = &l
	}
	if err = svc.repo.SaveActualGrade(crs.ID, letter, proj.ActualPercent); err != nil {
		return Projection{}, err
	}
	return proj, nil
}

// SimulateSemester runs Simulate for every course of a semester.
func (svc *Service) SimulateSemester(ownerID, semesterID string) ([]Projection, error) {
	courses, err := svc.repo.QueryCoursesBySemester(ownerID, semesterID)
	if err != nil {
		return nil, err
	}

	projections := make([]Projection, 0, len(courses))
	for _, crs := range courses {
		proj, err := svc.Simulate(ownerID, crs.ID)
		if err != nil {
			return nil, err
		}
		projections = append(projections, proj)
	}
	return projections, nil
}

func (svc *Service) CreateCategory(ownerID, courseID string, nc NewCategory) (Category, error) {
	now := time.Now().UTC()
	cat := Category{
		CourseID:      courseID,
		Name:          nc.Name,
		WeightPercent: nc.WeightPercent,
		DropLowest:    nc.DropLowest,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateCategory(ownerID, cat)
}

func (svc *Service) UpdateCategory(ownerID, id string, uc UpdateCategory) (Category, error) {
	orig, err := svc.repo.GetCategory(ownerID, id)
	if err != nil {
		return Category{}, err
	}

	cat := Category{
		ID:            id,
		CourseID:      orig.CourseID,
		Name:          orig.Name,
		WeightPercent: orig.WeightPercent,
		DropLowest:    orig.DropLowest,
		UpdatedAt:     time.Now().UTC(),
	}
	if uc.Name != "" {
		cat.Name = uc.Name
	}
	if uc.WeightPercent != nil {
		cat.WeightPercent = *uc.WeightPercent
	}
	if uc.DropLowest != nil {
		cat.DropLowest = *uc.DropLowest
	}
	return svc.repo.UpdateCategory(ownerID, cat)
}

func (svc *Service) DeleteCategories(ownerID string, ids ...string) error {
	return svc.repo.DeleteCategoriesByID(ownerID, ids...)
}

func (svc *Service) CreateAssignment(ownerID, categoryID string, na NewAssignment) (Assignment, error) {
	now := time.Now().UTC()
	a := Assignment{
		CategoryID:     categoryID,
		Name:           na.Name,
		MaxPoints:      na.MaxPoints,
		IsExtraCredit:  na.IsExtraCredit,
		ExpectedPoints: na.ExpectedPoints,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateAssignment(ownerID, a)
}

func (svc *Service) UpdateAssignment(ownerID, id string, ua UpdateAssignment) (Assignment, error) {
	orig, err := svc.repo.GetAssignment(ownerID, id)
	if err != nil {
		return Assignment{}, err
	}

	a := orig
	a.UpdatedAt = time.Now().UTC()
	if ua.Name != "" {
		a.Name = ua.Name
	}
	if ua.MaxPoints != nil {
		a.MaxPoints = *ua.MaxPoints
	}
	if ua.IsExtraCredit != nil {
		a.IsExtraCredit = *ua.IsExtraCredit
	}
	if ua.ExpectedPoints != nil {
		a.ExpectedPoints = ua.ExpectedPoints
	}
	return svc.repo.UpdateAssignment(ownerID, a)
}

// Grade records an assignment's earned score; a nil score un-grades it.
func (svc *Service) Grade(ownerID, id string, ga GradeAssignment) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ownerID, id)
	if err != nil {
		return Assignment{}, err
	}

	now := time.Now().UTC()
	a.EarnedPoints = ga.EarnedPoints
	a.UpdatedAt = now
	if ga.EarnedPoints != nil {
		a.IsGraded = true
		a.GradedAt = &now
	} else {
		a.IsGraded = false
		a.GradedAt = nil
	}
	return svc.repo.UpdateAssignment(ownerID, a)
}

func (svc *Service) DeleteAssignments(ownerID string, ids ...string) error {
	return svc.repo.DeleteAssignmentsByID(ownerID, ids...)
}

func (svc *Service) recompute(ownerID, semesterID string) error {
	if svc.recomputer == nil {
		return nil
	}
	return svc.recomputer.RecomputeForCourseChange(ownerID, semesterID)
}
