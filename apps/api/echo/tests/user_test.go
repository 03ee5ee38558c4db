package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/campusconnect/hub/apps/api/echo"
	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/user"
)

type pagedUsers struct {
	Items      []user.Info `json:"items"`
	PageNumber int         `json:"pageNumber"`
	PageSize   int         `json:"pageSize"`
	TotalCount int         `json:"totalCount"`
}

func Test_userApi_register(t *testing.T) {
	resetDB(t)

	createUser(t, "taken@test.edu", user.RoleStudent)

	body := func(email, pwd, first, last string) []byte {
		return marchallObj(t, map[string]string{
			"email": email, "password": pwd, "firstName": first, "lastName": last,
		})
	}

	tests := []httpTest{
		{name: "empty body", body: nil, wantCode: http.StatusBadRequest},
		{name: "invalid email", body: body("lol", "short-pwd-1", "A", "B"), wantCode: http.StatusBadRequest},
		{name: "short password", body: body("new@test.edu", "short", "A", "B"), wantCode: http.StatusBadRequest},
		{name: "email taken", body: body("taken@test.edu", "short-pwd-1", "A", "B"), wantCode: http.StatusBadRequest},
		{name: "registered", body: body("new@test.edu", "short-pwd-1", "New", "Student"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCode(t, tt.wantCode, rec)

			if rec.Code != http.StatusOK {
				return
			}
			var resp echoapi.AuthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Unmarshal(): %v", err)
			}
			if resp.Token == "" {
				t.Error("no token returned")
			}
			if resp.User.Role != user.RoleStudent {
				t.Errorf("role = %s; want %s", resp.User.Role, user.RoleStudent)
			}
			if resp.User.Email != "new@test.edu" {
				t.Errorf("email = %s; want new@test.edu", resp.User.Email)
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "awe@test.edu", user.RoleStudent)

	body := func(email, pwd string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": pwd})
	}
	badCreds := marchallObj(t, httpErr{Error: "invalid email or password"})

	tests := []httpTest{
		{name: "unknown email", body: body("lol@test.edu", "test-pwd-123"), wantCode: http.StatusBadRequest, wantData: badCreds},
		{name: "wrong password", body: body(usr.Email, "lol"), wantCode: http.StatusBadRequest, wantData: badCreds},
		{name: "logged in", body: body(usr.Email, "test-pwd-123"), wantCode: http.StatusOK},
		{name: "email is case-insensitive", body: body("AWE@Test.EDU", "test-pwd-123"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			checkCode(t, tt.wantCode, rec)
			var resp echoapi.AuthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Unmarshal(): %v", err)
			}
			if resp.Token == "" {
				t.Error("no token returned")
			}
			if resp.User.ID != usr.ID {
				t.Errorf("user ID = %s; want %s", resp.User.ID, usr.ID)
			}
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	resetDB(t)

	student := createUser(t, "hero@test.edu", user.RoleStudent)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   student.ID,
			Audience:  "Campus",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Email:        student.Email,
		Role:         string(student.Role),
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			checkCode(t, tt.wantCode, rec)
			var resp echoapi.TokenResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Unmarshal(): %v", err)
			}
			if resp.Token == "" {
				t.Error("no token returned")
			}
		})
	}
}

func Test_userApi_updateProfile(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "awe@test.edu", user.RoleStudent)
	other := createUser(t, "other@test.edu", user.RoleStudent)

	body := func(email, first, last string) []byte {
		return marchallObj(t, map[string]string{"email": email, "firstName": first, "lastName": last})
	}

	tests := []httpTest{
		{name: "Auth required", body: body("a@b.cd", "A", "B"), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "email taken", token: getToken(t, usr), body: body(other.Email, "A", "B"), wantCode: http.StatusBadRequest},
		{name: "own email kept", token: getToken(t, usr), body: body(usr.Email, "Renamed", "User"), wantCode: http.StatusOK},
		{name: "updated", token: getToken(t, usr), body: body("renamed@test.edu", "Renamed", "User"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/v1/auth/profile", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			checkCode(t, tt.wantCode, rec)
			if rec.Code != http.StatusOK {
				return
			}
			var resp echoapi.AuthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Unmarshal(): %v", err)
			}
			if resp.User.FirstName != "Renamed" {
				t.Errorf("firstName = %s; want Renamed", resp.User.FirstName)
			}
			if resp.Token == "" {
				t.Error("no token returned")
			}
		})
	}
}

func Test_userApi_changePassword(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "awe@test.edu", user.RoleStudent)
	token := getToken(t, usr)

	body := func(current, next string) []byte {
		return marchallObj(t, map[string]string{"currentPassword": current, "newPassword": next})
	}

	tests := []httpTest{
		{name: "Auth required", body: body("test-pwd-123", "new-pwd-1234"), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "wrong current password", token: token, body: body("lol", "new-pwd-1234"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"currentPassword": "current password is incorrect"}),
		},
		{name: "short new password", token: token, body: body("test-pwd-123", "short"), wantCode: http.StatusBadRequest},
		{
			name: "changed", token: token, body: body("test-pwd-123", "new-pwd-1234"), wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]string{"success": "Password changed successfully."}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/auth/change-password", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else {
				checkCode(t, tt.wantCode, rec)
			}
		})
	}

	// new password works
	refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if err = refreshed.CheckPassword("new-pwd-1234"); err != nil {
		t.Error("new password was not set")
	}
}

func Test_userApi_passwordReset(t *testing.T) {
	resetDB(t)

	createUser(t, "awe@test.edu", user.RoleStudent)

	success := marchallObj(t, map[string]string{
		"success": "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	tests := []httpTest{
		{name: "invalid email", body: marchallObj(t, map[string]string{"email": "lol"}), wantCode: http.StatusBadRequest},
		// an unknown account must look exactly like a known one
		{name: "unknown email", body: marchallObj(t, map[string]string{"email": "lol@test.edu"}), wantCode: http.StatusOK, wantData: success},
		{name: "known email", body: marchallObj(t, map[string]string{"email": "awe@test.edu"}), wantCode: http.StatusOK, wantData: success},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/password-reset", tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else {
				checkCode(t, tt.wantCode, rec)
			}
		})
	}
}

func Test_userApi_passwordResetConfirm(t *testing.T) {
	resetDB(t)

	usr := createUser(t, "awe@test.edu", user.RoleStudent)

	token, err := user.MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken(): %v", err)
	}
	uid := user.EncodeUID(usr)

	body := func(uid, token, pwd string) []byte {
		return marchallObj(t, map[string]string{"uid": uid, "token": token, "password": pwd})
	}

	tests := []httpTest{
		{name: "missing fields", body: body("", "", ""), wantCode: http.StatusBadRequest},
		{name: "bad uid", body: body("lol", token, "new-pwd-1234"), wantCode: http.StatusBadRequest},
		{name: "bad token", body: body(uid, "lol-token", "new-pwd-1234"), wantCode: http.StatusBadRequest},
		{name: "reset", body: body(uid, token, "new-pwd-1234"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/password-reset-confirm", tt.body)
			app.ServeHTTP(rec, req)
			checkCode(t, tt.wantCode, rec)
		})
	}

	refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if err = refreshed.CheckPassword("new-pwd-1234"); err != nil {
		t.Error("new password was not set")
	}
}

func Test_userApi_query(t *testing.T) {
	resetDB(t)

	path := func(search, role string, page, size int) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if role != "" {
			v.Add("role", role)
		}
		if page > 0 {
			v.Add("pageNumber", strconv.Itoa(page))
		}
		if size > 0 {
			v.Add("pageSize", strconv.Itoa(size))
		}
		return "/v1/users?" + v.Encode()
	}

	now := time.Now().UTC()
	admin := createUser(t, "admin@test.edu", user.RoleAdministrator, now)
	student1 := createUser(t, "awe@test.edu", user.RoleStudent, now.Add(time.Hour))
	student2 := createUser(t, "king@test.edu", user.RoleStudent, now.Add(2*time.Hour))

	adminToken := getToken(t, admin)

	asInfo := func(usrs ...user.User) []user.Info {
		infos := make([]user.Info, 0, len(usrs))
		for _, usr := range usrs {
			infos = append(infos, user.Info{User: usr})
		}
		return infos
	}
	paged := func(infos []user.Info, page, size, total int) []byte {
		return marchallObj(t, pagedUsers{Items: infos, PageNumber: page, PageSize: size, TotalCount: total})
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, student1), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		// ordered by creation time ascending
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: paged(asInfo(admin, student1, student2), 1, 20, 3)},
		{name: "search (unknown)", path: path("lol", "", 0, 0), token: adminToken, wantData: paged(asInfo(), 1, 20, 0)},
		{name: "search by email fragment", path: path("KING", "", 0, 0), token: adminToken, wantData: paged(asInfo(student2), 1, 20, 1)},
		{name: "role=Administrator", path: path("", "Administrator", 0, 0), token: adminToken, wantData: paged(asInfo(admin), 1, 20, 1)},
		{name: "role=Student", path: path("", "Student", 0, 0), token: adminToken, wantData: paged(asInfo(student1, student2), 1, 20, 2)},
		{name: "page 2 of 2", path: path("", "", 2, 2), token: adminToken, wantData: paged(asInfo(student2), 2, 2, 3)},
		{name: "oversized page clamped", path: path("", "", 1, 1000), token: adminToken, wantData: paged(asInfo(admin, student1, student2), 1, 100, 3)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieveAndActivity(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	student := createUser(t, "awe@test.edu", user.RoleStudent)
	adminToken := getToken(t, admin)

	post := createNewsPost(t, "Post", admin.ID, true)
	evt := createEvent(t, "Event", admin.ID, time.Now().AddDate(0, 0, 7), nil)
	rsvpDate := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	createRSVP(t, evt.ID, student.ID, "Confirmed", rsvpDate)

	t.Run("retrieve info", func(t *testing.T) {
		tt := httpTest{
			path: "/v1/users/" + admin.ID, wantCode: http.StatusOK,
			wantData: marchallObj(t, user.Info{User: admin, NewsPostsCount: 1, EventsCreatedCount: 1}),
		}
		req, rec := newAuthRequest(http.MethodGet, tt.path, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		tt := httpTest{
			path: "/v1/users/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "user not found"}),
		}
		req, rec := newAuthRequest(http.MethodGet, tt.path, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("activity", func(t *testing.T) {
		tt := httpTest{
			path: "/v1/users/" + student.ID + "/activity", wantCode: http.StatusOK,
			wantData: marchallObj(t, user.Activity{
				UserID:           student.ID,
				TotalRSVPs:       1,
				LastActivityDate: rsvpDate,
			}),
		}
		req, rec := newAuthRequest(http.MethodGet, tt.path, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	_ = post
}

func Test_userApi_changeRole(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	student := createUser(t, "awe@test.edu", user.RoleStudent)
	adminToken := getToken(t, admin)

	body := func(role string) []byte {
		return marchallObj(t, map[string]string{"role": role})
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + student.ID + "/role", body: body("Administrator"), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users/" + admin.ID + "/role", token: getToken(t, student), body: body("Student"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "invalid role", path: "/v1/users/" + student.ID + "/role", token: adminToken, body: body("Professor"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"role": "must be one of: Student, Administrator"}),
		},
		{
			name: "last admin cannot be demoted", path: "/v1/users/" + admin.ID + "/role", token: adminToken, body: body("Student"),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "cannot remove the last administrator"}),
		},
		{name: "promoted", path: "/v1/users/" + student.ID + "/role", token: adminToken, body: body("Administrator"), wantCode: http.StatusNoContent},
		// a second admin now exists; demotion goes through
		{name: "demoted", path: "/v1/users/" + admin.ID + "/role", token: adminToken, body: body("Student"), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else {
				checkCode(t, tt.wantCode, rec)
			}
		})
	}

	refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: student.ID})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if !refreshed.IsAdmin() {
		t.Error("student was not promoted")
	}
}

func Test_userApi_delete(t *testing.T) {
	resetDB(t)

	admin := createUser(t, "admin@test.edu", user.RoleAdministrator)
	author := createUser(t, "author@test.edu", user.RoleStudent)
	attendee := createUser(t, "attendee@test.edu", user.RoleStudent)
	adminToken := getToken(t, admin)

	evt := createEvent(t, "Event", author.ID, time.Now().AddDate(0, 0, 7), nil)
	createRSVP(t, evt.ID, attendee.ID, "Confirmed")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + attendee.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users/" + attendee.ID, token: getToken(t, attendee),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown user", path: "/v1/users/lol", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "cannot delete self", path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "cannot delete your own account"}),
		},
		{
			name: "cannot delete content author", path: "/v1/users/" + author.ID, token: adminToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "cannot delete a user with authored news posts or events"}),
		},
		// RSVPs are not authored content; they cascade
		{name: "deleted", path: "/v1/users/" + attendee.ID, token: adminToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else {
				checkCode(t, tt.wantCode, rec)
			}
		})
	}

	if _, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: attendee.ID}); err != user.ErrNotFound {
		t.Errorf("GetUser() err = %v; want ErrNotFound", err)
	}
	if _, err := eventRepo.GetRSVP(context.Background(), evt.ID, attendee.ID); err == nil {
		t.Error("RSVP was not cascade-deleted")
	}
}

func Test_userApi_deleteLastAdmin(t *testing.T) {
	resetDB(t)

	last := createUser(t, "admin@test.edu", user.RoleAdministrator)
	demoted := createUser(t, "demoted@test.edu", user.RoleAdministrator)

	// the token is minted while demoted is still an administrator
	staleAdminToken := getToken(t, demoted)
	demoted.Role = user.RoleStudent
	if _, err := usrRepo.UpdateUser(context.Background(), demoted); err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}

	tt := httpTest{
		path: "/v1/users/" + last.ID, token: staleAdminToken, wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: "cannot delete the last administrator"}),
	}
	req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	if _, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: last.ID}); err != nil {
		t.Errorf("last administrator was deleted: %v", err)
	}
}
