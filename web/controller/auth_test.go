package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/evergreenbank/panel/database"
	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/web/middleware"
	"github.com/evergreenbank/panel/web/service"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "bankpanel-logs")
	if err == nil {
		os.Setenv("BANKPANEL_LOG_FOLDER", tmp)
	}
	logger.InitLogger(logging.DEBUG)
	code := m.Run()
	if tmp != "" {
		os.RemoveAll(tmp)
	}
	os.Exit(code)
}

// newTestRouter wires the full API surface onto a fresh seeded store,
// mirroring the server's router.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dbPath := t.TempDir() + "/test.db"
	require.NoError(t, database.InitDB(dbPath))
	t.Cleanup(func() {
		database.CloseDB()
	})

	db := database.GetDB()
	settingService := service.NewSettingService(db)
	sessionService := service.NewSessionService(db, settingService)
	setupService := service.NewSetupService(db, settingService)
	userService := service.NewUserService(db, service.NewNotificationService(settingService))

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api")
	api.Use(middleware.SetupGate(setupService))
	NewAuthController(api, userService, sessionService, settingService)
	NewSetupController(api, setupService)
	NewUserController(api, userService, sessionService)
	NewSettingController(api, settingService, sessionService)
	return engine
}

func doJSON(engine *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "session_token" {
			return cookie
		}
	}
	t.Fatal("no session_token cookie in response")
	return nil
}

func completeSetup(t *testing.T, engine *gin.Engine) {
	t.Helper()
	w := doJSON(engine, http.MethodPost, "/api/setup/complete", map[string]string{
		"adminUsername": "admin",
		"adminPassword": "s3cret-pass",
		"adminEmail":    "admin@example.com",
		"bankName":      "First National",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func login(t *testing.T, engine *gin.Engine, username, password string) *http.Cookie {
	t.Helper()
	w := doJSON(engine, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

func TestSetupGateBlocksUntilComplete(t *testing.T) {
	engine := newTestRouter(t)

	// The status endpoint is reachable while pending.
	w := doJSON(engine, http.MethodGet, "/api/setup/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"setupComplete": false}`, w.Body.String())

	// Everything else answers with the setup-required signal, not a
	// generic authentication failure.
	for _, path := range []string{"/api/auth/session", "/api/users", "/api/settings"} {
		w = doJSON(engine, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["setupRequired"])
	}

	completeSetup(t, engine)

	w = doJSON(engine, http.MethodGet, "/api/setup/status", nil)
	assert.JSONEq(t, `{"setupComplete": true}`, w.Body.String())

	// The gate is open now; the same request fails for lack of a
	// session instead.
	w = doJSON(engine, http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetupCompleteOnlyOnceHTTP(t *testing.T) {
	engine := newTestRouter(t)
	completeSetup(t, engine)

	w := doJSON(engine, http.MethodPost, "/api/setup/complete", map[string]string{
		"adminUsername": "admin2",
		"adminPassword": "other-pass",
		"adminEmail":    "admin2@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already complete")
}

func TestLoginUniformFailureShape(t *testing.T) {
	engine := newTestRouter(t)
	completeSetup(t, engine)

	wrongPass := doJSON(engine, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "not-the-password",
	})
	noUser := doJSON(engine, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "nobody",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, noUser.Code, wrongPass.Code)
	assert.Equal(t, noUser.Body.String(), wrongPass.Body.String())
}

func TestLoginSessionLogout(t *testing.T) {
	engine := newTestRouter(t)
	completeSetup(t, engine)

	w := doJSON(engine, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Positive(t, cookie.MaxAge)

	var loginBody struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		BankName       string `json:"bankName"`
		SessionTimeout int    `json:"sessionTimeout"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginBody))
	assert.Equal(t, "admin", loginBody.User.Username)
	assert.Equal(t, "First National", loginBody.BankName)
	assert.Equal(t, 15, loginBody.SessionTimeout)

	// A session check validates, slides, and re-issues the carrier.
	w = doJSON(engine, http.MethodGet, "/api/auth/session", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	refreshed := sessionCookie(t, w)
	assert.Equal(t, cookie.Value, refreshed.Value)
	assert.Positive(t, refreshed.MaxAge)

	// Logout revokes; the token is dead afterwards and the carrier is
	// cleared on the next rejection.
	w = doJSON(engine, http.MethodPost, "/api/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/auth/session", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	cleared := sessionCookie(t, w)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestLogoutWithoutSession(t *testing.T) {
	engine := newTestRouter(t)
	completeSetup(t, engine)

	w := doJSON(engine, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleGating(t *testing.T) {
	engine := newTestRouter(t)
	completeSetup(t, engine)
	adminCookie := login(t, engine, "admin", "s3cret-pass")

	// Admin creates a regular user.
	w := doJSON(engine, http.MethodPost, "/api/users", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "alice-pass",
		"role":     "user",
	}, adminCookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	userCookie := login(t, engine, "alice", "alice-pass")

	// A regular user cannot list users or write settings.
	w = doJSON(engine, http.MethodGet, "/api/users", nil, userCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(engine, http.MethodPut, "/api/settings/bank_name", map[string]string{"value": "Other"}, userCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The admin can.
	w = doJSON(engine, http.MethodGet, "/api/users", nil, adminCookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// No session at all is unauthenticated, not forbidden.
	w = doJSON(engine, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	engine := newTestRouter(t)
	completeSetup(t, engine)
	adminCookie := login(t, engine, "admin", "s3cret-pass")

	// Reads are open.
	w := doJSON(engine, http.MethodGet, "/api/settings/bank_name", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key": "bank_name", "value": "First National"}`, w.Body.String())

	w = doJSON(engine, http.MethodGet, "/api/settings/no_such_key", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Batch updates are atomic and admin-only.
	w = doJSON(engine, http.MethodPost, "/api/settings/batch", map[string]any{
		"settings": []map[string]string{
			{"key": "bank_name", "value": "Second National"},
			{"key": "phone", "value": "(555) 000-1111"},
		},
	}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(engine, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var all map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, "Second National", all["bank_name"])
	assert.Equal(t, "(555) 000-1111", all["phone"])
}
