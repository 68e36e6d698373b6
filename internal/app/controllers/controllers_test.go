package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/lecturealert/internal/app/controllers"
	"github.com/yigit/lecturealert/internal/app/dashboard"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/app/routes"
	"github.com/yigit/lecturealert/internal/app/session"
	"github.com/yigit/lecturealert/internal/middleware"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/validation"
	"github.com/yigit/lecturealert/internal/pkg/websocket"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type account struct {
	password string
	identity models.Identity
}

type fakeBackend struct {
	mu         sync.Mutex
	accounts   map[string]account
	tokens     map[string]models.Identity
	signOutErr error
	signUps    []validation.SignUpForm
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts: map[string]account{
			"student@example.com": {password: "secret1", identity: models.Identity{
				ID: "stu-1", Email: "student@example.com", FullName: "Alan Turing", Role: models.RoleStudent}},
			"admin@example.com": {password: "secret1", identity: models.Identity{
				ID: "adm-1", Email: "admin@example.com", FullName: "Grace Hopper", Role: models.RoleAdmin}},
		},
		tokens: map[string]models.Identity{},
	}
}

func (b *fakeBackend) SignIn(_ context.Context, email, password string) (*session.Grant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[email]
	if !ok || acc.password != password {
		return nil, apperrors.ErrInvalidCredentials
	}
	token := "token-" + acc.identity.ID
	b.tokens[token] = acc.identity
	return &session.Grant{Token: token, TokenID: token, ExpiresAt: time.Now().Add(time.Hour), Identity: acc.identity}, nil
}

func (b *fakeBackend) SignUp(_ context.Context, form validation.SignUpForm) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[form.Email]; ok {
		return apperrors.ErrEmailAlreadyExists
	}
	b.signUps = append(b.signUps, form)
	return nil
}

func (b *fakeBackend) SignOut(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.signOutErr != nil {
		return b.signOutErr
	}
	delete(b.tokens, token)
	return nil
}

func (b *fakeBackend) CurrentSession(_ context.Context, token string) (*models.Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	identity, ok := b.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	return &identity, nil
}

type fakeVerifier struct{ valid string }

func (v fakeVerifier) VerifyEmail(_ context.Context, token string) error {
	if token != v.valid {
		return apperrors.ErrInvalidEmailToken
	}
	return nil
}

type fakeSource struct{}

func (fakeSource) ActiveEnrollments(_ context.Context, studentID string) ([]models.Enrollment, error) {
	return []models.Enrollment{{ID: "e1", StudentID: studentID, CourseID: "c1", IsActive: true}}, nil
}

func (fakeSource) CoursesByLecturer(context.Context, string) ([]models.Course, error) {
	return nil, nil
}

func (fakeSource) CountCourses(context.Context) (int, error) { return 7, nil }

func (fakeSource) UpcomingLectures(_ context.Context, _ []string, _ time.Time, _ int) ([]models.Lecture, error) {
	return []models.Lecture{
		{ID: "l1", Title: "Sorting", CourseID: "c1", CourseTitle: "Algorithms", CourseCode: "CS201",
			ScheduledAt: testNow.Add(2 * time.Hour), DurationMinutes: 90},
	}, nil
}

func (fakeSource) CountEnrollments(context.Context, []string) (int, error) { return 0, nil }

func (fakeSource) CountProfiles(context.Context, models.Role) (int, error) { return 42, nil }

type testApp struct {
	router  *gin.Engine
	backend *fakeBackend
	cookie  *http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := newFakeBackend()
	manager := session.NewManager(backend, session.NewMemoryStore(), zerolog.Nop())
	t.Cleanup(manager.Close)

	agg := dashboard.NewAggregator(fakeSource{},
		dashboard.WithClock(func() time.Time { return testNow }),
		dashboard.WithLocation(time.UTC),
		dashboard.WithLogger(zerolog.Nop()),
	)
	registry := dashboard.NewRegistry(agg, nil)
	manager.OnEvent(func(sessionID string, _ session.Event) { registry.Invalidate(sessionID) })

	router := gin.New()
	routes.SetupRouter(router, routes.Controllers{
		Auth:      controllers.NewAuthController(fakeVerifier{valid: "good-token"}, zerolog.Nop()),
		Dashboard: controllers.NewDashboardController(registry, time.UTC, zerolog.Nop()),
		Shell:     controllers.NewShellController(),
		Events:    controllers.NewEventsController(websocket.NewHub(zerolog.Nop()), zerolog.Nop()),
	}, middleware.NewSessionMiddleware(manager, false, time.Hour))

	return &testApp{router: router, backend: backend}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			a.cookie = c
		}
	}
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (a *testApp) signIn(t *testing.T, email string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]string{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSession_AnonymousByDefault(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, app.cookie, "a session cookie is issued")
	assert.True(t, app.cookie.HttpOnly)

	var state struct {
		Status string          `json:"status"`
		User   json.RawMessage `json:"user"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &state))
	assert.Equal(t, "anonymous", state.Status)
	assert.Equal(t, "null", string(state.User))
}

func TestSignIn_Success(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]string{
		"email": "student@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, session.MsgSignedIn, decode(t, w).Message)

	w = app.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	var state struct {
		Status string `json:"status"`
		User   struct {
			FullName string `json:"fullName"`
			Badge    struct {
				Label string `json:"label"`
			} `json:"badge"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &state))
	assert.Equal(t, "authenticated", state.Status)
	assert.Equal(t, "Alan Turing", state.User.FullName)
	assert.Equal(t, "Student", state.User.Badge.Label)
}

func TestSignIn_ValidationNeverReachesBackend(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]string{
		"email": "not-an-email", "password": "123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "VAL_001", env.Error.Code)
	assert.Equal(t, validation.MsgInvalidEmail, env.Error.Message)
	assert.Contains(t, string(env.Error.Details), validation.MsgPasswordShort)
}

func TestSignIn_BadCredentials(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]string{
		"email": "student@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	assert.Equal(t, "AUTH_001", env.Error.Code)
	assert.Equal(t, "Invalid login credentials", env.Error.Message)
}

func TestSignIn_MalformedBody(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_002", decode(t, w).Error.Code)
}

func TestSignUp(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/auth/sign-up", map[string]string{
		"email": "new@example.com", "password": "secret1", "fullName": "New Person",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, session.MsgSignedUp, decode(t, w).Message)
	require.Len(t, app.backend.signUps, 1)
	assert.Equal(t, "student", app.backend.signUps[0].Role, "role defaults to student")

	// sign-up never signs in
	w = app.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/v1/auth/sign-up", map[string]string{
		"email": "student@example.com", "password": "secret1", "fullName": "Again",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already registered", decode(t, w).Error.Message)
}

func TestSignOut(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "student@example.com")

	w := app.do(t, http.MethodPost, "/api/v1/auth/sign-out", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.MsgSignedOut, decode(t, w).Message)

	w = app.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignOut_FailureKeepsIdentity(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "student@example.com")
	app.backend.signOutErr = errors.New("network down")

	w := app.do(t, http.MethodPost, "/api/v1/auth/sign-out", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decode(t, w)
	assert.Equal(t, "AUTH_006", env.Error.Code)
	assert.Equal(t, session.MsgSignOutFailed, env.Error.Message)

	w = app.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyEmail(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/v1/auth/verify-email", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/auth/verify-email?token=bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/auth/verify-email?token=good-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboard_RequiresIdentity(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_003", decode(t, w).Error.Code)
}

func TestDashboard_Student(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "student@example.com")

	w := app.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Greeting string               `json:"greeting"`
		Role     string               `json:"role"`
		Stats    []dashboard.StatCard `json:"stats"`
		Lectures []struct {
			Title     string `json:"title"`
			DateLabel string `json:"dateLabel"`
			TimeLabel string `json:"timeLabel"`
		} `json:"lectures"`
		Stale bool `json:"stale"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.Equal(t, "Welcome back, Alan Turing!", resp.Greeting)
	assert.Equal(t, "student", resp.Role)
	assert.Len(t, resp.Stats, 3)
	assert.False(t, resp.Stale)
	require.Len(t, resp.Lectures, 1)
	assert.Equal(t, "Sorting", resp.Lectures[0].Title)
	assert.Equal(t, "Today", resp.Lectures[0].DateLabel)
	assert.Equal(t, "11:00", resp.Lectures[0].TimeLabel)
}

func TestDashboard_Admin(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "admin@example.com")

	w := app.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Stats []dashboard.StatCard `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	require.Len(t, resp.Stats, 4)
	assert.Equal(t, dashboard.StatCard{Key: "relatedPeople", Title: "Total Students", Value: 42}, resp.Stats[3])
	assert.Equal(t, 7, resp.Stats[0].Value)
}

func TestNavigation(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/v1/shell/navigation", nil)
	require.Equal(t, http.StatusOK, w.Code)

	app.signIn(t, "admin@example.com")
	w = app.do(t, http.MethodGet, "/api/v1/shell/navigation", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var nav struct {
		Items []struct {
			Href string `json:"href"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &nav))
	var hrefs []string
	for _, item := range nav.Items {
		hrefs = append(hrefs, item.Href)
	}
	assert.Contains(t, hrefs, "/users")
	assert.Contains(t, hrefs, "/admin")
}

func TestPages_Redirects(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		path     string
		location string
	}{
		{"/", "/auth"},
		{"/dashboard", "/auth"},
		{"/nowhere", "/"},
	}
	for _, tt := range tests {
		w := app.do(t, http.MethodGet, tt.path, nil)
		assert.Equal(t, http.StatusFound, w.Code, tt.path)
		assert.Equal(t, tt.location, w.Header().Get("Location"), tt.path)
	}

	app.signIn(t, "student@example.com")
	for path, location := range map[string]string{"/": "/dashboard", "/auth": "/dashboard", "/users": "/dashboard"} {
		w := app.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, location, w.Header().Get("Location"), path)
	}
}

func TestPages_Placeholder(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "student@example.com")

	w := app.do(t, http.MethodGet, "/courses", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Title       string `json:"title"`
		Placeholder bool   `json:"placeholder"`
		Message     string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Equal(t, "Courses", page.Title)
	assert.True(t, page.Placeholder)
	assert.Equal(t, "Courses coming soon", page.Message)
}

func TestPing(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
