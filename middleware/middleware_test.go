package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"nursesrent/models"
	"nursesrent/services/auth"
	"nursesrent/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth authenticates a single fixed token.
type stubAuth struct {
	auth.AuthService
	token     string
	principal auth.Principal
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*auth.Principal, error) {
	if token != s.token {
		return nil, utils.Unauthenticated("Invalid token")
	}
	p := s.principal
	return &p, nil
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestRateLimitPerClientIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := http.Header{"X-Forwarded-For": []string{"198.51.100.1"}}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", first).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", first).Code)

	w := serve(r, http.MethodGet, "/ping", first)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests from this IP")

	other := http.Header{"X-Forwarded-For": []string{"198.51.100.2, 10.0.0.1"}}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", other).Code)
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := &stubAuth{token: "good", principal: auth.Principal{UserID: "h1", Role: models.RoleHost, IsVerified: true}}
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(svc), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID"), "role": c.GetString("role"), "id": p.UserID})
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", http.Header{"Authorization": []string{"good"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", bearer("bad")).Code)

	w := serve(r, http.MethodGet, "/me", bearer("good"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":"h1","role":"Host","id":"h1"}`, w.Body.String())
}

func TestRequireRoleAndVerified(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		chain     []gin.HandlerFunc
		want      int
	}{
		{"no principal", nil, []gin.HandlerFunc{RequireRole(models.RoleHost)}, http.StatusUnauthorized},
		{"matching role", &auth.Principal{UserID: "h1", Role: models.RoleHost}, []gin.HandlerFunc{RequireRole(models.RoleHost)}, http.StatusOK},
		{"any of several roles", &auth.Principal{UserID: "n1", Role: models.RoleNurse}, []gin.HandlerFunc{RequireRole(models.RoleHost, models.RoleNurse)}, http.StatusOK},
		{"wrong role", &auth.Principal{UserID: "n1", Role: models.RoleNurse}, []gin.HandlerFunc{RequireRole(models.RoleHost)}, http.StatusForbidden},
		{"unverified", &auth.Principal{UserID: "n1", Role: models.RoleNurse}, []gin.HandlerFunc{RequireVerified()}, http.StatusForbidden},
		{"verified", &auth.Principal{UserID: "n1", Role: models.RoleNurse, IsVerified: true}, []gin.HandlerFunc{RequireVerified()}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			handlers := []gin.HandlerFunc{func(c *gin.Context) {
				if tt.principal != nil {
					c.Set(principalKey, tt.principal)
				}
			}}
			handlers = append(handlers, tt.chain...)
			handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
			r.GET("/x", handlers...)

			assert.Equal(t, tt.want, serve(r, http.MethodGet, "/x", nil).Code)
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		remote string
		want   string
	}{
		{"forwarded for", http.Header{"X-Forwarded-For": []string{" 203.0.113.9 , 10.0.0.1"}}, "10.0.0.2:4000", "203.0.113.9"},
		{"real ip", http.Header{"X-Real-Ip": []string{"203.0.113.10"}}, "10.0.0.2:4000", "203.0.113.10"},
		{"remote addr", nil, "192.0.2.4:5123", "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header = tt.header
			if c.Request.Header == nil {
				c.Request.Header = http.Header{}
			}
			c.Request.RemoteAddr = tt.remote
			assert.Equal(t, tt.want, ClientIP(c))
		})
	}
}
