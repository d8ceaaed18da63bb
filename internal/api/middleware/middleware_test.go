package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/wacrm/internal/models"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func whoAmI(c *gin.Context) {
	p, ok := PrincipalFrom(c)
	if !ok {
		c.Status(http.StatusTeapot)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role, "ctx_user": c.GetString("user_id")})
}

func newAuthRouter(opts AuthOptions) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(opts))
	r.GET("/me", whoAmI)
	r.PUT("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_NoTokenIsAnonymous(t *testing.T) {
	r := newAuthRouter(AuthOptions{Secret: testSecret, DefaultPrincipalID: "system"})

	w := do(r, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"system","role":"user","ctx_user":"system"}`, w.Body.String())

	w = do(r, http.MethodPut, "/admin", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	r := newAuthRouter(AuthOptions{Secret: testSecret, Issuer: "https://x.supabase.co/auth/v1", Audience: "authenticated"})

	tok := signToken(t, jwt.MapClaims{
		"sub":          "6a1f0d2e-0000-4000-8000-000000000001",
		"iss":          "https://x.supabase.co/auth/v1",
		"aud":          "authenticated",
		"exp":          time.Now().Add(time.Hour).Unix(),
		"app_metadata": map[string]any{"role": "Admin"},
	})

	w := do(r, http.MethodGet, "/me", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"6a1f0d2e-0000-4000-8000-000000000001","role":"admin","ctx_user":"6a1f0d2e-0000-4000-8000-000000000001"}`, w.Body.String())

	w = do(r, http.MethodPut, "/admin", "Bearer "+tok)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthenticate_Rejections(t *testing.T) {
	valid := jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}

	cases := []struct {
		name   string
		opts   AuthOptions
		header string
		status int
	}{
		{"not bearer", AuthOptions{Secret: testSecret}, "Basic abc", http.StatusUnauthorized},
		{"empty bearer", AuthOptions{Secret: testSecret}, "Bearer ", http.StatusUnauthorized},
		{"garbage", AuthOptions{Secret: testSecret}, "Bearer not-a-jwt", http.StatusUnauthorized},
		{"no secret", AuthOptions{}, "Bearer " + signToken(t, valid), http.StatusInternalServerError},
		{"expired", AuthOptions{Secret: testSecret}, "Bearer " + signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"wrong issuer", AuthOptions{Secret: testSecret, Issuer: "other"}, "Bearer " + signToken(t, valid), http.StatusUnauthorized},
		{"wrong audience", AuthOptions{Secret: testSecret, Audience: "authenticated"}, "Bearer " + signToken(t, valid), http.StatusUnauthorized},
		{"no subject", AuthOptions{Secret: testSecret}, "Bearer " + signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newAuthRouter(tc.opts), http.MethodGet, "/me", tc.header)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAuthenticate_WrongSigningKey(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("other"))
	require.NoError(t, err)

	w := do(newAuthRouter(AuthOptions{Secret: testSecret}), http.MethodGet, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Role"); role != "" {
			setPrincipal(c, models.Principal{UserID: "u1", Role: models.UserRole(role)})
		}
	})
	r.GET("/svc", RequireRole(" Service "), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for role, want := range map[string]int{"service": http.StatusNoContent, "admin": http.StatusForbidden, "user": http.StatusForbidden, "": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/svc", nil)
		req.Header.Set("X-Role", role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func newCORSRouter() *gin.Engine {
	r := gin.New()
	r.Use(CORS())
	r.POST("/api/chat", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"reply": "hi"}) })
	return r
}

func TestCORS_PreflightIsEmpty200(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type,authorization")
	w := httptest.NewRecorder()
	newCORSRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_BareOptionsIsEmpty200(t *testing.T) {
	w := httptest.NewRecorder()
	newCORSRouter().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/anything", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestCORS_ActualRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	w := httptest.NewRecorder()
	newCORSRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"reply":"hi"}`, w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(RequestLogger(l), Authenticate(AuthOptions{DefaultPrincipalID: "system"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"user_id":"system"`)
	assert.Contains(t, buf.String(), `"path":"/x"`)

	buf.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	l.SetOutput(io.Discard)
}
