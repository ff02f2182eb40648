package echoapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/tmusoni/gradeplan/core/academic"
	"github.com/tmusoni/gradeplan/core/course"
	"github.com/tmusoni/gradeplan/core/target"
)

// Test_plannerFlow walks the whole grade-planning surface: academic setup,
// course tree building, grading, simulation and target GPA sessions.
func Test_plannerFlow(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Awa Doe", "awa@test.cd", "secret11")
	token := getToken(t, usr)

	var yr academic.Year
	t.Run("create year", func(t *testing.T) {
		body := []byte(`{"name": "Freshman"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/years", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)
		decodeBody(t, rec, &yr)
	})

	var sem academic.Semester
	t.Run("create semester", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"year_id": %q, "name": "Fall"}`, yr.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/semesters", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)
		decodeBody(t, rec, &sem)
	})

	var crs course.Course
	t.Run("create course with defaults", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"semester_id": %q, "name": "Calculus", "credits": 3}`, sem.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)
		decodeBody(t, rec, &crs)

		if crs.DesiredLetterGrade != course.GradeA {
			t.Errorf("failed! desired grade = %q; want %q", crs.DesiredLetterGrade, course.GradeA)
		}
		if crs.GradingMethod != course.MethodWeighted {
			t.Errorf("failed! grading method = %q; want %q", crs.GradingMethod, course.MethodWeighted)
		}
	})

	t.Run("query requires a semester", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses", token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})

	var cat course.Category
	t.Run("create category", func(t *testing.T) {
		body := []byte(`{"name": "Homework", "weight_percent": 100}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/categories", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)
		decodeBody(t, rec, &cat)
	})

	var hw course.Assignment
	t.Run("create assignment", func(t *testing.T) {
		body := []byte(`{"name": "HW 1", "max_points": 100}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/categories/"+cat.ID+"/assignments", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)
		decodeBody(t, rec, &hw)
	})

	t.Run("grade assignment", func(t *testing.T) {
		body := []byte(`{"earned_points": 85}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/assignments/"+hw.ID+"/grade", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got course.Assignment
		decodeBody(t, rec, &got)
		if !got.IsGraded {
			t.Error("failed! assignment not graded")
		}
	})

	t.Run("simulate course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/simulate", token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var proj course.Projection
		decodeBody(t, rec, &proj)
		if proj.ActualPercent == nil || *proj.ActualPercent != 0.85 {
			t.Errorf("failed! actual percent = %v; want 0.85", proj.ActualPercent)
		}
	})

	t.Run("simulate semester", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/semesters/"+sem.ID+"/simulate", token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var projections []course.Projection
		decodeBody(t, rec, &projections)
		if len(projections) != 1 {
			t.Errorf("failed! got %d projections; want 1", len(projections))
		}
	})

	t.Run("enable target session", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"scope": "SEMESTER", "semester_id": %q, "target_gpa": 3}`, sem.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/target/enable", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)

		var resp EnableTargetResponse
		decodeBody(t, rec, &resp)
		if resp.Session.Scope != target.ScopeSemester {
			t.Errorf("failed! scope = %q; want %q", resp.Session.Scope, target.ScopeSemester)
		}
		if got := resp.Allocation.Assignments[crs.ID]; got != course.GradeB {
			t.Errorf("failed! allocated grade = %q; want %q", got, course.GradeB)
		}
	})

	t.Run("enable conflicting session", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"scope": "SEMESTER", "semester_id": %q, "target_gpa": 2}`, sem.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/target/enable", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusConflict)
	})

	t.Run("query active sessions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/target/sessions", token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var sessions []target.Session
		decodeBody(t, rec, &sessions)
		if len(sessions) != 1 {
			t.Errorf("failed! got %d sessions; want 1", len(sessions))
		}
	})

	t.Run("disable target session", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"scope": "SEMESTER", "semester_id": %q}`, sem.ID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/target/disable", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var res target.DisableResult
		decodeBody(t, rec, &res)
		if !res.Disabled {
			t.Error("failed! session not disabled")
		}
	})

	t.Run("intruder gets a 404", func(t *testing.T) {
		intruder := app.createUser(t, "Mallory", "mallory@test.cd", "secret11")
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID, getToken(t, intruder))
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})
}

func Test_academicApi_ordering(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Awa Doe", "awa@test.cd", "secret11")
	token := getToken(t, usr)

	for _, name := range []string{"Freshman", "Sophomore", "Junior"} {
		body := []byte(fmt.Sprintf(`{"name": %q}`, name))
		req, rec := newAuthRequest(http.MethodPost, "/v1/years", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)
	}

	tests := []struct {
		name      string
		query     string
		wantNames []string
	}{
		{name: "insertion order", query: "", wantNames: []string{"Freshman", "Sophomore", "Junior"}},
		{name: "by name", query: "?ordering=name", wantNames: []string{"Freshman", "Junior", "Sophomore"}},
		{name: "by name desc", query: "?ordering=-name", wantNames: []string{"Sophomore", "Junior", "Freshman"}},
		{name: "unknown field ignored", query: "?ordering=lol", wantNames: []string{"Freshman", "Sophomore", "Junior"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/years"+tt.query, token)
			app.server.ServeHTTP(rec, req)
			checkCode(t, rec, http.StatusOK)

			var years []academic.Year
			decodeBody(t, rec, &years)
			if len(years) != len(tt.wantNames) {
				t.Fatalf("failed! got %d years; want %d", len(years), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if years[i].Name != want {
					t.Errorf("failed! years[%d] = %q; want %q", i, years[i].Name, want)
				}
			}
		})
	}
}

func Test_academicApi_yearCRUD(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Awa Doe", "awa@test.cd", "secret11")
	token := getToken(t, usr)

	var yr academic.Year
	req, rec := newAuthRequest(http.MethodPost, "/v1/years", token, []byte(`{"name": "Freshman"}`))
	app.server.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusCreated)
	decodeBody(t, rec, &yr)

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/years/"+yr.ID, token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/years/"+yr.ID, token, []byte(`{"name": "First Year"}`))
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got academic.Year
		decodeBody(t, rec, &got)
		if got.Name != "First Year" {
			t.Errorf("failed! name = %q; want %q", got.Name, "First Year")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/years", token, []byte(`{}`))
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/years/"+yr.ID, token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNoContent)

		req, rec = newAuthRequest(http.MethodGet, "/v1/years/"+yr.ID, token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})
}
