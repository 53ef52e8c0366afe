package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/auth"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
)

type fakeAccounts struct {
	accounts map[uuid.UUID]*model.Account
	calls    atomic.Int32
}

func (f *fakeAccounts) Account(_ context.Context, id uuid.UUID) (*model.Account, error) {
	f.calls.Add(1)
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, &errors.AppError{Code: errors.ErrUnauthorized, Message: "user not found"}
}

func setupAuth(t *testing.T) (*AuthMiddleware, *fakeAccounts, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtSvc := auth.NewJWTService("secret", time.Hour)
	accounts := &fakeAccounts{accounts: map[uuid.UUID]*model.Account{}}
	return NewAuthMiddleware(jwtSvc, accounts), accounts, jwtSvc
}

func addAccount(t *testing.T, accounts *fakeAccounts, jwtSvc auth.JWTService, role model.Role) (*model.Account, string) {
	t.Helper()
	a := &model.Account{ID: uuid.New(), Name: "A", Email: string(role) + "@example.com", Role: role}
	accounts.accounts[a.ID] = a
	token, err := jwtSvc.GenerateAccessToken(a)
	require.NoError(t, err)
	return a, token
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	m, accounts, jwtSvc := setupAuth(t)
	staff, token := addAccount(t, accounts, jwtSvc, model.RoleStaff)

	engine := gin.New()
	engine.GET("/", m.Authenticate(), func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		require.True(t, ok)
		actor, ok := model.ActorFromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, account.ID, actor.AccountID)
		c.String(http.StatusOK, account.ID.String())
	})

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"bearer header", "Bearer " + token, "", http.StatusOK},
		{"query token", "", "?access_token=" + token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, "", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(engine, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, staff.ID.String(), w.Body.String())
			}
		})
	}
}

func TestAuthenticateUnknownAccount(t *testing.T) {
	m, _, jwtSvc := setupAuth(t)
	token, err := jwtSvc.GenerateAccessToken(&model.Account{ID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)

	engine := gin.New()
	engine.GET("/", m.Authenticate(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(engine, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "user not found")
}

func TestAuthenticateCachesAccounts(t *testing.T) {
	m, accounts, jwtSvc := setupAuth(t)
	a, token := addAccount(t, accounts, jwtSvc, model.RoleStaff)

	engine := gin.New()
	engine.GET("/", m.Authenticate(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		require.Equal(t, http.StatusOK, serve(engine, req).Code)
	}
	assert.Equal(t, int32(1), accounts.calls.Load())

	m.cache.Delete(a.ID.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, serve(engine, req).Code)
	assert.Equal(t, int32(2), accounts.calls.Load())
}

func TestRequireRole(t *testing.T) {
	m, accounts, jwtSvc := setupAuth(t)
	_, staffToken := addAccount(t, accounts, jwtSvc, model.RoleStaff)
	_, adminToken := addAccount(t, accounts, jwtSvc, model.RoleAdmin)

	engine := gin.New()
	engine.POST("/beds", m.Authenticate(), m.RequireRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusCreated) })
	engine.GET("/open", m.RequireRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/beds", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	assert.Equal(t, http.StatusForbidden, serve(engine, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/beds", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusCreated, serve(engine, req).Code)

	// Without Authenticate there is no account to check.
	assert.Equal(t, http.StatusUnauthorized, serve(engine, httptest.NewRequest(http.MethodGet, "/open", nil)).Code)
}

func TestRequestIDEchoesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := serve(engine, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(HeaderXRequestID))
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Recovery())
	engine.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"internal server error"}`, w.Body.String())
}

func TestErrorHandlerRendersUnwrittenError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandler())
	engine.GET("/", func(c *gin.Context) { _ = c.Error(errors.BedNotFound) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "bed not found")
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(BodyLimit(8))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(SecurityHeaders(true))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://board.example.com"}

	engine := gin.New()
	engine.Use(CORS(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := serve(engine, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://board.example.com")
	w = serve(engine, req)
	assert.Equal(t, "https://board.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Timeout(TimeoutConfig{Duration: time.Minute}))
	engine.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	engine := gin.New()
	engine.Use(rl.RateLimit())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	assert.Equal(t, http.StatusOK, serve(engine, first).Code)

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.RemoteAddr = "10.0.0.1:1001"
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, again).Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1000"
	assert.Equal(t, http.StatusOK, serve(engine, other).Code)
}

func TestLoggerRedactsQueryToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	engine := gin.New()
	engine.Use(Logger())
	engine.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(engine, httptest.NewRequest(http.MethodGet, "/events?access_token=supersecret", nil))
	assert.Contains(t, buf.String(), "request processed")
	assert.Contains(t, buf.String(), "REDACTED")
	assert.NotContains(t, buf.String(), "supersecret")
}
