package echoapi

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/core/academic"
	"github.com/tmusoni/gradeplan/core/course"
	"github.com/tmusoni/gradeplan/core/target"
	"github.com/tmusoni/gradeplan/core/user"
	emailsvc "github.com/tmusoni/gradeplan/services/email"
	logsvc "github.com/tmusoni/gradeplan/services/logger"
	dummydb "github.com/tmusoni/gradeplan/storage/database/dummy"
)

type testApp struct {
	server Server
	usrSvc *user.Service
}

func setup(t *testing.T) *testApp {
	db, err := dummydb.Open()
	require.NoError(t, err)

	usrSvc := user.NewService(dummydb.NewUserRepository(db), emailsvc.NewConsoleServiceMock())
	targetSvc := target.NewService(dummydb.NewTargetRepository(db))
	academicSvc := academic.NewService(dummydb.NewAcademicRepository(db), targetSvc)
	courseSvc := course.NewService(dummydb.NewCourseRepository(db), targetSvc)

	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), core.Conf)
	logger.Enable(false)

	app := &testApp{usrSvc: usrSvc}
	app.server = NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        usrSvc,
		AcademicSvc:    academicSvc,
		CourseSvc:      courseSvc,
		TargetSvc:      targetSvc,
	})
	return app
}

func (app *testApp) createUser(t *testing.T, name, email, pwd string) user.User {
	usr, err := app.usrSvc.Create(user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	require.NoError(t, err)
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr))
	require.NoError(t, err)
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decodeBody() failed: %v; body: %s", err, rec.Body.String())
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) {
	t.Helper()
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body: %s", rec.Code, wantCode, rec.Body.String())
	}
}
