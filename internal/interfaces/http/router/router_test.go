package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func echo(body string, status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(status, body)
	}
}

func TestRouter(t *testing.T) {
	t.Run("defaults to the v1 prefix", func(t *testing.T) {
		r := NewRouter(gin.New())
		assert.Equal(t, "v1", r.apiVersion)
		assert.Empty(t, r.registrars)
	})

	t.Run("honors WithAPIVersion", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine, WithAPIVersion("v2"))

		g := NewDomainGroup("stats", "/stats")
		g.GET("", echo("ok", http.StatusOK))
		r.Register(g).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/stats").Code)
	})

	t.Run("mounts registered groups under the API prefix", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine)

		g := NewDomainGroup("system", "/system")
		g.GET("/ping", echo("pong", http.StatusOK))
		r.Register(g).Setup()

		w := serve(engine, http.MethodGet, "/api/v1/system/ping")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("root groups bypass the API prefix", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine)

		g := NewDomainGroup("shortlink", "/r")
		g.GET("/:code", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("code"))
		})
		r.RegisterRoot(g).Setup()

		w := serve(engine, http.MethodGet, "/r/alice2026")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice2026", w.Body.String())
	})
}

func TestDomainGroup(t *testing.T) {
	t.Run("exposes name and prefix", func(t *testing.T) {
		g := NewDomainGroup("members", "/members")
		assert.Equal(t, "members", g.Name())
		assert.Equal(t, "/members", g.Prefix())
	})

	t.Run("registers each HTTP method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("members", "/members")
		g.GET("", echo("list", http.StatusOK)).
			POST("", echo("created", http.StatusCreated)).
			PUT("/:id/capacity", echo("updated", http.StatusOK)).
			DELETE("/:id", echo("", http.StatusNoContent))
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method string
			path   string
			status int
		}{
			{http.MethodGet, "/api/v1/members", http.StatusOK},
			{http.MethodPost, "/api/v1/members", http.StatusCreated},
			{http.MethodPut, "/api/v1/members/7/capacity", http.StatusOK},
			{http.MethodDelete, "/api/v1/members/7", http.StatusNoContent},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.status, serve(engine, tt.method, tt.path).Code,
				"%s %s", tt.method, tt.path)
		}
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("stats", "/stats")
		g.Use(func(c *gin.Context) {
			c.Header("X-Group", "stats")
			c.Next()
		})
		g.GET("", echo("ok", http.StatusOK))
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/stats")
		assert.Equal(t, "stats", w.Header().Get("X-Group"))
	})
}

func TestRegisterAll(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	// Method values bind without invoking the handlers, so zero-value
	// handlers are enough to verify the route table shape.
	RegisterAll(r, Handlers{})
	r.Setup()

	registered := make(map[string]bool)
	for _, rt := range engine.Routes() {
		registered[rt.Method+" "+rt.Path] = true
	}

	want := []string{
		"POST /api/v1/auth/resolve",
		"GET /api/v1/auth/me",
		"GET /api/v1/members",
		"GET /api/v1/members/:id",
		"PUT /api/v1/members/:id/capacity",
		"POST /api/v1/members/:id/activate",
		"POST /api/v1/members/:id/deactivate",
		"GET /api/v1/me",
		"PUT /api/v1/me/referral-code",
		"GET /api/v1/me/stats",
		"POST /api/v1/referrals/assign",
		"GET /api/v1/referrals/random",
		"POST /api/v1/referrals/assignments/:id/complete",
		"POST /api/v1/referrals/assignments/:id/fail",
		"POST /api/v1/visits",
		"POST /api/v1/clicks/:id/convert",
		"GET /api/v1/stats",
		"GET /api/v1/system/info",
		"GET /api/v1/system/ping",
		"GET /r/:code",
		"POST /r/:code",
	}
	for _, route := range want {
		assert.True(t, registered[route], "route %s should be registered", route)
	}
}
