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
	return func(c *gin.Context) { c.String(status, body) }
}

func TestRouterSetup(t *testing.T) {
	t.Run("mounts groups under the default v1 prefix", func(t *testing.T) {
		engine := gin.New()
		reports := NewDomainGroup("reports", "/reports")
		reports.GET("/pnl", echo("pnl report", http.StatusOK))

		NewRouter(engine).Register(reports).Setup()

		w := serve(engine, http.MethodGet, "/api/v1/reports/pnl")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pnl report", w.Body.String())
	})

	t.Run("version option changes the prefix", func(t *testing.T) {
		engine := gin.New()
		orders := NewDomainGroup("orders", "/orders")
		orders.GET("/:id/pnl", echo("order pnl", http.StatusOK))

		NewRouter(engine, WithAPIVersion("v2")).Register(orders).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/orders/ord-1/pnl").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/orders/ord-1/pnl").Code)
	})

	t.Run("multiple groups coexist", func(t *testing.T) {
		engine := gin.New()
		procurement := NewDomainGroup("procurement", "/supplier-orders")
		procurement.POST("/:id/receipts", echo("receipt", http.StatusCreated))
		reports := NewDomainGroup("reports", "/reports")
		reports.GET("/pnl", echo("pnl", http.StatusOK))

		NewRouter(engine).Register(procurement).Register(reports).Setup()

		assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/v1/supplier-orders/so-1/receipts").Code)
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/reports/pnl").Code)
	})
}

func TestDomainGroupMethods(t *testing.T) {
	cases := []struct {
		method string
		status int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusCreated},
		{http.MethodPut, http.StatusOK},
		{http.MethodPatch, http.StatusOK},
		{http.MethodDelete, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			engine := gin.New()
			g := NewDomainGroup("orders", "/orders")
			handler := echo("", tc.status)
			switch tc.method {
			case http.MethodGet:
				g.GET("/:id", handler)
			case http.MethodPost:
				g.POST("/:id", handler)
			case http.MethodPut:
				g.PUT("/:id", handler)
			case http.MethodPatch:
				g.PATCH("/:id", handler)
			case http.MethodDelete:
				g.DELETE("/:id", handler)
			}

			g.RegisterRoutes(engine.Group("/api/v1"))
			assert.Equal(t, tc.status, serve(engine, tc.method, "/api/v1/orders/ord-7").Code)
		})
	}
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("reports", "/reports")
	g.Use(func(c *gin.Context) {
		c.Header("X-Report-Source", "allocation-engine")
		c.Next()
	})
	g.GET("/pnl", echo("ok", http.StatusOK))

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/reports/pnl")
	assert.Equal(t, "allocation-engine", w.Header().Get("X-Report-Source"))
}

func TestDomainGroupName(t *testing.T) {
	assert.Equal(t, "procurement", NewDomainGroup("procurement", "/supplier-orders").Name())
}

func TestDomainGroupChaining(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("orders", "/orders").
		GET("/:id/pnl", echo("pnl", http.StatusOK)).
		GET("/:id/pnl/colors", echo("colors", http.StatusOK))

	NewRouter(engine).Register(g).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/orders/ord-1/pnl").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/orders/ord-1/pnl/colors").Code)
}
