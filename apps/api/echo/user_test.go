package echoapi

import (
	"net/http"
	"testing"

	"github.com/tmusoni/gradeplan/core/user"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	tests := []struct {
		name     string
		body     []byte
		wantCode int
	}{
		{
			name:     "valid registration",
			body:     []byte(`{"name": "Awa Doe", "email": "awa@test.cd", "password": "Secret#11", "password_confirm": "Secret#11"}`),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate email",
			body:     []byte(`{"name": "Awa Clone", "email": "awa@test.cd", "password": "Secret#11", "password_confirm": "Secret#11"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "password mismatch",
			body:     []byte(`{"name": "Jane", "email": "jane@test.cd", "password": "Secret#11", "password_confirm": "nope"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid email",
			body:     []byte(`{"name": "Jane", "email": "nope", "password": "Secret#11", "password_confirm": "Secret#11"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.server.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Awa Doe", "awa@test.cd", "secret11")

	tests := []struct {
		name     string
		body     []byte
		wantCode int
	}{
		{
			name:     "valid credentials",
			body:     []byte(`{"email": "awa@test.cd", "password": "secret11"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     []byte(`{"email": "awa@test.cd", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email": "ghost@test.cd", "password": "secret11"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.server.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				decodeBody(t, rec, &resp)
				if resp.Token == "" {
					t.Error("failed! empty token")
				}
			}
		})
	}
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Awa Doe", "awa@test.cd", "secret11")
	token := getToken(t, usr)

	t.Run("no token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusUnauthorized)
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got user.User
		decodeBody(t, rec, &got)
		if got.ID != usr.ID || got.Email != usr.Email {
			t.Errorf("failed! got %v; want %v", got, usr)
		}
	})

	t.Run("update name", func(t *testing.T) {
		body := []byte(`{"name": "Awa D."}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", token, body)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got user.User
		decodeBody(t, rec, &got)
		if got.Name != "Awa D." {
			t.Errorf("failed! name = %q; want %q", got.Name, "Awa D.")
		}
		if got.Email != usr.Email {
			t.Errorf("failed! email changed to %q", got.Email)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/me", token)
		app.server.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNoContent)

		if _, err := app.usrSvc.GetByID(usr.ID); err != user.ErrNotFound {
			t.Errorf("failed! err = %v; want %v", err, user.ErrNotFound)
		}
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Awa Doe", "awa@test.cd", "secret11")
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	app.server.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)

	var resp LoginResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Error("failed! empty token")
	}
}
