package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/cohesia-portal/internal/application"
	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	"github.com/oksasatya/cohesia-portal/internal/infrastructure/session"
	"github.com/oksasatya/cohesia-portal/pkg/events"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func withSession(sess *entity.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess != nil {
			c.Set(CtxSessionKey, sess)
		}
		c.Next()
	}
}

func serve(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		sess     *entity.Session
		status   int
		location string
		body     string
	}{
		{"no session redirects", nil, http.StatusFound, "/login.html", ""},
		{"wrong role is forbidden", &entity.Session{UserID: "E2", Role: entity.RoleEmployee}, http.StatusForbidden, "", MsgAccessDenied},
		{"case matters", &entity.Session{UserID: "E3", Role: "hr"}, http.StatusForbidden, "", MsgAccessDenied},
		{"matching role passes", &entity.Session{UserID: "E1", Role: entity.RoleHR}, http.StatusOK, "", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/hr", withSession(tt.sess), RequireRole(entity.RoleHR, "/login.html"), func(c *gin.Context) {
				c.String(http.StatusOK, "secret")
			})

			w := serve(r, http.MethodGet, "/hr")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
			if tt.status != http.StatusOK {
				assert.NotContains(t, w.Body.String(), "secret")
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	r := gin.New()
	handler := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/anon", RequireAuth("/login.html"), handler)
	r.GET("/authed", withSession(&entity.Session{UserID: "E1", Role: "anything"}), RequireAuth("/login.html"), handler)

	w := serve(r, http.MethodGet, "/anon")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login.html", w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/authed")
	assert.Equal(t, http.StatusOK, w.Code)
}

func newStaticRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":         "landing",
		"login.html":         "login form",
		"hr_dashboard.html":  "hr only",
		"emp_dashboard.html": "employees only",
		"users.json":         `{"users":[]}`,
		".env":               "SESSION_SECRET=x",
		"css/site.css":       "body{}",
	}
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func TestStatic(t *testing.T) {
	root := newStaticRoot(t)
	r := gin.New()
	r.NoRoute(Static(root, "hr_dashboard.html", "emp_dashboard.html", "data/users.json"))

	served := map[string]string{
		"/":             "landing",
		"/login.html":   "login form",
		"/css/site.css": "body{}",
	}
	for target, body := range served {
		w := serve(r, http.MethodGet, target)
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, body, w.Body.String(), target)
	}

	blocked := []string{
		"/hr_dashboard.html",
		"/emp_dashboard.html",
		"/HR_Dashboard.HTML",
		"/css/../hr_dashboard.html",
		"//hr_dashboard.html",
		"/users.json",
		"/.env",
		"/../../etc/passwd",
		"/css",
		"/missing.html",
	}
	for _, target := range blocked {
		w := serve(r, http.MethodGet, target)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.NotContains(t, w.Body.String(), "only", target)
	}

	w := serve(r, http.MethodPost, "/login.html")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodHead, "/login.html")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServeFile(t *testing.T) {
	root := newStaticRoot(t)
	r := gin.New()
	r.GET("/hr_dashboard.html", func(c *gin.Context) { ServeFile(c, root, "hr_dashboard.html") })

	w := serve(r, http.MethodGet, "/hr_dashboard.html")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hr only", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestSessionLoader(t *testing.T) {
	store := session.NewMemoryStore()
	sessions := application.NewSessionService(store, helpers.NewSessionSigner("k", "test"), time.Hour, nil)
	cookies := helpers.NewCookie("sid", "", false)

	issued, err := sessions.Establish(context.Background(), &entity.User{EmployeeID: "E1", Name: "Ann", Role: entity.RoleHR}, "")
	require.NoError(t, err)

	r := gin.New()
	r.Use(SessionLoader(sessions, cookies, nil))
	r.GET("/", func(c *gin.Context) {
		if s := CurrentSession(c); s != nil {
			c.String(http.StatusOK, "%s|%s", s.UserID, SessionToken(c))
			return
		}
		c.String(http.StatusOK, "anon|%s", SessionToken(c))
	})

	do := func(cookie string) string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "sid", Value: cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String()
	}

	assert.Equal(t, "anon|", do(""))
	assert.Equal(t, "E1|"+issued.Token, do(issued.Token))
	assert.Equal(t, "anon|forged", do("forged"))
}

func TestLocalRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RealIP(false))
	r.POST("/login", LocalRateLimit(2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login").Code)
	}
	w := serve(r, http.MethodPost, "/login")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"`+MsgRateLimited+`"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestLocalRateLimit_AllowBypass(t *testing.T) {
	r := gin.New()
	r.Use(RealIP(false))
	r.POST("/login", LocalRateLimit(1, time.Minute, KeyByIPAndPath(), AllowPrivateIP()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// httptest requests come from 192.0.2.1, which is not private.
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/login").Code)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRealIP(t *testing.T) {
	var got string
	handler := func(c *gin.Context) { got = c.GetString("real_ip") }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

	r := gin.New()
	r.GET("/", RealIP(false), handler)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.9", got)

	r = gin.New()
	r.GET("/", RealIP(true), handler)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.7", got)

	req.Header.Set("CF-Connecting-IP", "2001:db8::1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "2001:db8::1", got)
}

func TestRequestID(t *testing.T) {
	var meta events.Meta
	r := gin.New()
	r.Use(RealIP(false), RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { meta = events.MetaFrom(c.Request.Context()) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "probe")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	id := w.Header().Get(HeaderRequestID)
	require.Len(t, id, 36)
	assert.Equal(t, id, meta.RequestID)
	assert.Equal(t, "192.0.2.1", meta.IP)
	assert.Equal(t, "probe", meta.UserAgent)

	const given = "0b0e7f3a-3a31-4a9e-9c2b-1f6d5a0f9e11"
	req.Header.Set(HeaderRequestID, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, given, w.Header().Get(HeaderRequestID))

	req.Header.Set(HeaderRequestID, "not-a-uuid\r\n")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid\r\n", w.Header().Get(HeaderRequestID))
}
