package academic_test

import (
	"testing"
	"time"

	"github.com/tmusoni/gradeplan/core/academic"
	"github.com/tmusoni/gradeplan/core/course"
	"github.com/tmusoni/gradeplan/core/target"
	dummydb "github.com/tmusoni/gradeplan/storage/database/dummy"
)

const owner = "owner-1"

type fixture struct {
	svc        *academic.Service
	targetSvc  *target.Service
	courseRepo course.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	targetSvc := target.NewService(dummydb.NewTargetRepository(db))
	return &fixture{
		svc:        academic.NewService(dummydb.NewAcademicRepository(db), targetSvc),
		targetSvc:  targetSvc,
		courseRepo: dummydb.NewCourseRepository(db),
	}
}

func (fx *fixture) addYear(t *testing.T, name string) academic.Year {
	t.Helper()
	yr, err := fx.svc.CreateYear(owner, academic.NewYear{Name: name})
	if err != nil {
		t.Fatalf("CreateYear() failed: %v", err)
	}
	return yr
}

func (fx *fixture) addSemester(t *testing.T, yearID, name string) academic.Semester {
	t.Helper()
	sem, err := fx.svc.CreateSemester(owner, academic.NewSemester{YearID: yearID, Name: name})
	if err != nil {
		t.Fatalf("CreateSemester() failed: %v", err)
	}
	return sem
}

func (fx *fixture) addCourse(t *testing.T, semesterID, name string, credits int, desired string, completed bool) course.Course {
	t.Helper()
	now := time.Now().UTC()
	crs, err := fx.courseRepo.CreateCourse(course.Course{
		OwnerID:            owner,
		SemesterID:         semesterID,
		Name:               name,
		Credits:            credits,
		DesiredLetterGrade: desired,
		GradingMethod:      course.MethodWeighted,
		IsCompleted:        completed,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func (fx *fixture) desiredGrade(t *testing.T, courseID string) string {
	t.Helper()
	crs, err := fx.courseRepo.GetCourse(owner, courseID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	return crs.DesiredLetterGrade
}

func (fx *fixture) activeSession(t *testing.T) target.Session {
	t.Helper()
	sessions, err := fx.targetSvc.ActiveSessions(owner)
	if err != nil {
		t.Fatalf("ActiveSessions() failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("ActiveSessions() = %d sessions; want 1", len(sessions))
	}
	return sessions[0]
}

func TestService_DeleteSemestersRecomputes(t *testing.T) {
	fx := setup(t)
	yr := fx.addYear(t, "Freshman")
	fall := fx.addSemester(t, yr.ID, "Fall")
	spring := fx.addSemester(t, yr.ID, "Spring")
	open := fx.addCourse(t, fall.ID, "Algebra", 3, course.GradeC, false)
	failed := fx.addCourse(t, spring.ID, "Failed", 3, "", true)

	// the completed F drags the year below the target
	if _, _, err := fx.targetSvc.Enable(owner, target.EnableTarget{
		Scope: target.ScopeYear, TargetGpa: 3, YearID: yr.ID,
	}); err != nil {
		t.Fatalf("Enable() failed: %v", err)
	}
	if sess := fx.activeSession(t); sess.MaxAchievableGpa == nil {
		t.Fatal("Enable() session feasible; want infeasible")
	}
	if got := fx.desiredGrade(t, open.ID); got != course.GradeA {
		t.Fatalf("Enable() open course grade = %q; want A", got)
	}

	if err := fx.svc.DeleteSemesters(owner, spring.ID); err != nil {
		t.Fatalf("DeleteSemesters() failed: %v", err)
	}

	// the semester's courses cascade away
	if _, err := fx.courseRepo.GetCourse(owner, failed.ID); err != course.ErrNotFound {
		t.Errorf("GetCourse() error = %v; want %v", err, course.ErrNotFound)
	}
	// and the surviving session is recomputed over the smaller year
	sess := fx.activeSession(t)
	if sess.MaxAchievableGpa != nil || sess.GpaShortfall != nil {
		t.Errorf("session feasibility = (%v, %v); want feasible again", sess.MaxAchievableGpa, sess.GpaShortfall)
	}
	if got := fx.desiredGrade(t, open.ID); got != course.GradeB {
		t.Errorf("open course grade = %q; want B", got)
	}
}

func TestService_MoveSemesterRecomputes(t *testing.T) {
	fx := setup(t)
	y1 := fx.addYear(t, "Freshman")
	y2 := fx.addYear(t, "Sophomore")
	fall := fx.addSemester(t, y1.ID, "Fall")
	winter := fx.addSemester(t, y2.ID, "Winter")
	moved := fx.addCourse(t, fall.ID, "Algebra", 3, course.GradeC, false)
	resident := fx.addCourse(t, winter.ID, "Chemistry", 3, course.GradeC, false)

	if _, _, err := fx.targetSvc.Enable(owner, target.EnableTarget{
		Scope: target.ScopeYear, TargetGpa: 3, YearID: y2.ID,
	}); err != nil {
		t.Fatalf("Enable() failed: %v", err)
	}
	if got := fx.desiredGrade(t, resident.ID); got != course.GradeB {
		t.Fatalf("Enable() resident course grade = %q; want B", got)
	}

	if _, err := fx.svc.UpdateSemester(owner, fall.ID, academic.UpdateSemester{YearID: y2.ID}); err != nil {
		t.Fatalf("UpdateSemester() failed: %v", err)
	}

	// the moved semester's courses now share the target's load
	if got := fx.desiredGrade(t, moved.ID); got != course.GradeA {
		t.Errorf("moved course grade = %q; want A", got)
	}
	if got := fx.desiredGrade(t, resident.ID); got != course.GradeC {
		t.Errorf("resident course grade = %q; want C", got)
	}
}

func TestService_DeleteYearsRecomputes(t *testing.T) {
	fx := setup(t)
	y1 := fx.addYear(t, "Freshman")
	y2 := fx.addYear(t, "Sophomore")
	fall := fx.addSemester(t, y1.ID, "Fall")
	winter := fx.addSemester(t, y2.ID, "Winter")
	open := fx.addCourse(t, fall.ID, "Algebra", 3, course.GradeC, false)
	fx.addCourse(t, winter.ID, "Failed", 3, "", true)

	if _, _, err := fx.targetSvc.Enable(owner, target.EnableTarget{
		Scope: target.ScopeCareer, TargetGpa: 3,
	}); err != nil {
		t.Fatalf("Enable() failed: %v", err)
	}
	if sess := fx.activeSession(t); sess.MaxAchievableGpa == nil {
		t.Fatal("Enable() session feasible; want infeasible")
	}

	if err := fx.svc.DeleteYears(owner, y2.ID); err != nil {
		t.Fatalf("DeleteYears() failed: %v", err)
	}

	if _, err := fx.svc.GetSemesterByID(owner, winter.ID); err != academic.ErrSemesterNotFound {
		t.Errorf("GetSemesterByID() error = %v; want %v", err, academic.ErrSemesterNotFound)
	}
	sess := fx.activeSession(t)
	if sess.MaxAchievableGpa != nil || sess.GpaShortfall != nil {
		t.Errorf("session feasibility = (%v, %v); want feasible again", sess.MaxAchievableGpa, sess.GpaShortfall)
	}
	if got := fx.desiredGrade(t, open.ID); got != course.GradeB {
		t.Errorf("open course grade = %q; want B", got)
	}
}
