package course_test

import (
	"testing"

	"github.com/tmusoni/gradeplan/core/course"
	dummydb "github.com/tmusoni/gradeplan/storage/database/dummy"
)

const owner = "owner-1"

// recomputeSpy records which semesters were recomputed.
type recomputeSpy struct {
	calls []string
}

func (spy *recomputeSpy) RecomputeForCourseChange(ownerID, semesterID string) error {
	spy.calls = append(spy.calls, semesterID)
	return nil
}

func setup(t *testing.T) (*course.Service, *recomputeSpy) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	spy := &recomputeSpy{}
	return course.NewService(dummydb.NewCourseRepository(db), spy), spy
}

func seedCourse(t *testing.T, svc *course.Service, semesterID string) course.Course {
	t.Helper()
	crs, err := svc.Create(owner, course.NewCourse{SemesterID: semesterID, Name: "Algebra", Credits: 3})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return crs
}

func TestService_CreateDefaults(t *testing.T) {
	svc, spy := setup(t)

	crs := seedCourse(t, svc, "sem-1")

	if crs.DesiredLetterGrade != course.GradeA {
		t.Errorf("Create() desired grade = %q; want the A default", crs.DesiredLetterGrade)
	}
	if crs.GradingMethod != course.MethodWeighted {
		t.Errorf("Create() grading method = %q; want the weighted default", crs.GradingMethod)
	}
	if len(spy.calls) != 1 || spy.calls[0] != "sem-1" {
		t.Errorf("Create() recompute calls = %v; want [sem-1]", spy.calls)
	}
}

func TestService_UpdateMoveRecomputesBothSemesters(t *testing.T) {
	svc, spy := setup(t)
	crs := seedCourse(t, svc, "sem-1")
	spy.calls = nil

	if _, err := svc.Update(owner, crs.ID, course.UpdateCourse{SemesterID: "sem-2"}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if len(spy.calls) != 2 || spy.calls[0] != "sem-1" || spy.calls[1] != "sem-2" {
		t.Errorf("Update() recompute calls = %v; want [sem-1 sem-2]", spy.calls)
	}
}

func TestService_DeleteRecomputesAffectedSemester(t *testing.T) {
	svc, spy := setup(t)
	crs := seedCourse(t, svc, "sem-1")
	spy.calls = nil

	if err := svc.Delete(owner, crs.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := svc.GetByID(owner, crs.ID); err != course.ErrNotFound {
		t.Errorf("GetByID() after delete = %v; want %v", err, course.ErrNotFound)
	}
	if len(spy.calls) != 1 || spy.calls[0] != "sem-1" {
		t.Errorf("Delete() recompute calls = %v; want [sem-1]", spy.calls)
	}
}

func TestService_GradeAndSimulate(t *testing.T) {
	svc, _ := setup(t)
	crs := seedCourse(t, svc, "sem-1")

	cat, err := svc.CreateCategory(owner, crs.ID, course.NewCategory{Name: "Homework", WeightPercent: 100})
	if err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}
	a, err := svc.CreateAssignment(owner, cat.ID, course.NewAssignment{Name: "HW1", MaxPoints: 100})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}

	a, err = svc.Grade(owner, a.ID, course.GradeAssignment{EarnedPoints: fPtr(85)})
	if err != nil {
		t.Fatalf("Grade() failed: %v", err)
	}
	if !a.IsGraded || a.GradedAt == nil {
		t.Errorf("Grade() assignment = %+v; want it marked graded", a)
	}

	proj, err := svc.Simulate(owner, crs.ID)
	if err != nil {
		t.Fatalf("Simulate() failed: %v", err)
	}
	if proj.ActualPercent == nil || *proj.ActualPercent != 0.85 {
		t.Errorf("Simulate() actual = %v; want 0.85", proj.ActualPercent)
	}

	// the computed grade is persisted on the course
	crs, err = svc.GetByID(owner, crs.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if crs.ActualLetterGrade == nil || *crs.ActualLetterGrade != course.GradeB {
		t.Errorf("Simulate() stored letter = %v; want B", crs.ActualLetterGrade)
	}
	if crs.ActualPercentGrade == nil || *crs.ActualPercentGrade != 0.85 {
		t.Errorf("Simulate() stored percent = %v; want 0.85", crs.ActualPercentGrade)
	}
}

func TestService_UngradeClearsGradedState(t *testing.T) {
	svc, _ := setup(t)
	crs := seedCourse(t, svc, "sem-1")

	cat, err := svc.CreateCategory(owner, crs.ID, course.NewCategory{Name: "Homework", WeightPercent: 100})
	if err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}
	a, err := svc.CreateAssignment(owner, cat.ID, course.NewAssignment{Name: "HW1", MaxPoints: 100})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	if _, err = svc.Grade(owner, a.ID, course.GradeAssignment{EarnedPoints: fPtr(85)}); err != nil {
		t.Fatalf("Grade() failed: %v", err)
	}

	a, err = svc.Grade(owner, a.ID, course.GradeAssignment{})
	if err != nil {
		t.Fatalf("Grade() ungrade failed: %v", err)
	}
	if a.IsGraded || a.GradedAt != nil || a.EarnedPoints != nil {
		t.Errorf("Grade() ungraded assignment = %+v; want graded state cleared", a)
	}
}

func TestService_OwnerScoping(t *testing.T) {
	svc, _ := setup(t)
	crs := seedCourse(t, svc, "sem-1")

	if _, err := svc.GetByID("intruder", crs.ID); err != course.ErrNotFound {
		t.Errorf("GetByID() with foreign owner = %v; want %v", err, course.ErrNotFound)
	}
	if _, err := svc.CreateCategory("intruder", crs.ID, course.NewCategory{Name: "Hack", WeightPercent: 10}); err != course.ErrNotFound {
		t.Errorf("CreateCategory() with foreign owner = %v; want %v", err, course.ErrNotFound)
	}
}

func fPtr(f float64) *float64 { return &f }
