package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"showbiz/internal/auth"
	"showbiz/internal/cache"
	"showbiz/internal/config"
	"showbiz/internal/dbtest"
	"showbiz/internal/handler"
	"showbiz/internal/metrics"
	"showbiz/internal/model"
	"showbiz/internal/notify"
	"showbiz/internal/repository"
	"showbiz/internal/service"
)

type fixedCode string

func (f fixedCode) NewCode() (string, error) { return string(f), nil }

func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()

	gormDB := dbtest.New(t)
	mr := miniredis.RunT(t)
	cacheClient := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cacheClient.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "showbiz-test")

	accounts := repository.NewAccountRepository(gormDB)
	profiles := repository.NewProfileRepository(gormDB)
	jwtService := auth.NewJWTService("router-secret", 0)
	tokenStore := auth.NewTokenStore(cacheClient)

	lifecycle := func(kind model.Kind) service.LifecycleService {
		return service.NewLifecycle(kind, service.LifecycleDeps{
			Accounts:    accounts,
			Hasher:      auth.NewBcryptHasher(bcrypt.MinCost),
			Codes:       fixedCode("123456"),
			Tokens:      jwtService,
			Revoker:     tokenStore,
			Notifier:    notify.NewLogNotifier(logger),
			Cache:       cacheClient,
			Metrics:     m,
			Logger:      logger,
			PhoneRegion: "IN",
		})
	}
	talents, hirers := lifecycle(model.KindTalent), lifecycle(model.KindHirer)
	profileService := service.NewProfileService(accounts, profiles, nil, cacheClient, logger, "IN")
	directory := service.NewDirectoryService(accounts, profiles)
	submissions := service.NewSubmissionService(accounts, repository.NewSubmissionRepository(gormDB))

	e := echo.New()
	Register(e, Deps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Gatherer: reg,
		JWT:      jwtService,
		Tokens:   tokenStore,
		Handlers: Handlers{
			TalentAuth:    handler.NewAuthHandler(talents),
			HirerAuth:     handler.NewAuthHandler(hirers),
			TalentProfile: handler.NewAccountHandler(model.KindTalent, profileService),
			HirerProfile:  handler.NewAccountHandler(model.KindHirer, profileService),
			Admin:         handler.NewAdminHandler(hirers, directory),
			Submissions:   handler.NewSubmissionHandler(submissions),
			Talents:       handler.NewTalentHandler(directory),
		},
	})
	return e
}

func do(e *echo.Echo, method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func registration(email, role string) map[string]interface{} {
	return map[string]interface{}{
		"name":     "Jane Doe",
		"email":    email,
		"phone":    "+919876543210",
		"gender":   "Female",
		"role":     role,
		"password": "secret1",
	}
}

func register(t *testing.T, e *echo.Echo, kind, email, role string) string {
	t.Helper()
	rec := do(e, http.MethodPost, "/api/"+kind+"/register", "", registration(email, role))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func testConfig() *config.Config {
	return &config.Config{AuthRateLimit: 0}
}

func TestRouter_Healthz(t *testing.T) {
	e := newTestServer(t, testConfig())

	rec := do(e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_TalentLifecycle(t *testing.T) {
	e := newTestServer(t, testConfig())

	token := register(t, e, "talent", "jane@x.com", "Actor")

	rec := do(e, http.MethodPost, "/api/talent/verify-otp", "", map[string]interface{}{"otp": 123456})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/api/talent/login", "", map[string]string{"email": "jane@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_VERIFIED", decode(t, rec)["code"])

	// the registration token only reaches the OTP routes
	rec = do(e, http.MethodPut, "/api/talent/update-profile", token, map[string]interface{}{"email": "other@x.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_VERIFIED", decode(t, rec)["code"])
	rec = do(e, http.MethodGet, "/api/talent/get-profile", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPost, "/api/talent/verify-otp", token, map[string]interface{}{"otp": 654321})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_OTP", decode(t, rec)["code"])

	// numeric and string codes are both accepted
	rec = do(e, http.MethodPost, "/api/talent/verify-otp", token, map[string]interface{}{"otp": 123456})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/talent/register", "", registration("jane@x.com", "Actor"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/api/talent/login", "", map[string]string{"email": "jane@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session, _ := decode(t, rec)["token"].(string)

	rec = do(e, http.MethodGet, "/api/talent/get-profile", session, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"email":"jane@x.com"`)

	rec = do(e, http.MethodPut, "/api/talent/update-profile", session, map[string]interface{}{"skills": "tap dance", "age": 27})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"skills":"tap dance"`)

	// a talent token does not open hirer routes
	rec = do(e, http.MethodGet, "/api/hirer/get-profile", session, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/api/talent/logout", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodGet, "/api/talent/get-profile", session, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_HirerApproval(t *testing.T) {
	e := newTestServer(t, &config.Config{AdminAPIKey: "admin-key"})

	token := register(t, e, "hirer", "boss@x.com", "Casting Director")
	rec := do(e, http.MethodPost, "/api/hirer/verify-otp", token, map[string]string{"otp": "123456"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	hirerID, _ := decode(t, rec)["id"].(string)

	login := map[string]string{"email": "boss@x.com", "password": "secret1"}
	rec = do(e, http.MethodPost, "/api/hirer/login", "", login)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_APPROVED", decode(t, rec)["code"])

	rec = do(e, http.MethodGet, "/api/hirer/pending-hirers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/api/hirer/pending-hirers", "", nil, AdminKeyHeader, "admin-key")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), hirerID)

	status := map[string]string{"status": "approved"}
	rec = do(e, http.MethodPost, "/api/hirer/manage-status/"+hirerID, "", status, AdminKeyHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(e, http.MethodPost, "/api/hirer/manage-status/not-a-uuid", "", status, AdminKeyHeader, "admin-key")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodPost, "/api/hirer/manage-status/"+hirerID, "", map[string]string{"status": "maybe"}, AdminKeyHeader, "admin-key")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodPost, "/api/hirer/manage-status/"+hirerID, "", status, AdminKeyHeader, "admin-key")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/hirer/login", "", login)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session, _ := decode(t, rec)["token"].(string)

	rec = do(e, http.MethodPost, "/api/hirer/submit", session, map[string]string{"subject": "Lead", "description": "Feature film"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/hirer/submissions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subject":"Lead"`)

	rec = do(e, http.MethodGet, "/api/hirer/hirer/"+hirerID+"/submissions", session, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// the directory exists once a talent is verified
	rec = do(e, http.MethodGet, "/api/talent/all-talents", session, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	talentToken := register(t, e, "talent", "t@x.com", "Actor")
	rec = do(e, http.MethodPost, "/api/talent/verify-otp", talentToken, map[string]string{"otp": "123456"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/talent/all-talents", session, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":null`)
	rec = do(e, http.MethodGet, "/api/talent/all-talents", talentToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(e, http.MethodGet, "/api/talent/public-talents", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"t@x.com"`)
}

func TestRouter_PasswordReset(t *testing.T) {
	e := newTestServer(t, testConfig())
	token := register(t, e, "talent", "jane@x.com", "Actor")
	rec := do(e, http.MethodPost, "/api/talent/verify-otp", token, map[string]string{"otp": "123456"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/api/talent/forgot-password", "", map[string]string{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/api/talent/forgot-password", "", map[string]string{"email": "jane@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/api/talent/reset-password/123456", "", map[string]string{"password": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodPost, "/api/talent/reset-password/000000", "", map[string]string{"password": "newsecret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(e, http.MethodPost, "/api/talent/reset-password/123456", "", map[string]string{"password": "newsecret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/talent/login", "", map[string]string{"email": "jane@x.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequestValidation(t *testing.T) {
	e := newTestServer(t, testConfig())

	tests := []struct {
		name string
		path string
		body interface{}
	}{
		{name: "malformed json", path: "/api/talent/login", body: "not-json"},
		{name: "missing password", path: "/api/talent/login", body: map[string]string{"email": "a@x.com"}},
		{name: "bad email", path: "/api/hirer/register", body: registration("nope", "Director")},
		{name: "short password", path: "/api/hirer/register", body: func() map[string]interface{} {
			r := registration("a@x.com", "Director")
			r["password"] = "p1"
			return r
		}()},
		{name: "unknown hirer role", path: "/api/hirer/register", body: registration("a@x.com", "Actor")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	e := newTestServer(t, &config.Config{AuthRateLimit: 1})

	var limited bool
	for i := 0; i < 5; i++ {
		rec := do(e, http.MethodPost, "/api/talent/login", "", map[string]string{"email": "a@x.com", "password": "x"})
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}

func TestRouter_Metrics(t *testing.T) {
	e := newTestServer(t, testConfig())
	register(t, e, "talent", "jane@x.com", "Actor")

	rec := do(e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `account_registrations_total{kind="talent",result="success",service="showbiz-test"} 1`)
	assert.Contains(t, body, `path="/api/talent/register"`)
}
