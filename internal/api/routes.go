package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MethodAny registers a route for every HTTP method.
const MethodAny = "ANY"

// Route is one entry of the route table. Every route is mounted behind its
// own error boundary, which names the route in the error view.
type Route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`

	handlers []gin.HandlerFunc
}

func (s *Server) routeTable() []Route {
	return []Route{
		{
			Method:      http.MethodGet,
			Path:        "/health",
			Title:       "Health",
			Description: "Liveness and build information.",
			handlers:    []gin.HandlerFunc{s.health},
		},
		{
			Method:      http.MethodGet,
			Path:        "/routes",
			Title:       "Routes",
			Description: "The route table served by this process.",
			handlers:    []gin.HandlerFunc{s.listRoutes},
		},
		{
			Method:      http.MethodGet,
			Path:        "/rates",
			Title:       "Yield rates",
			Description: "Fee-adjusted APR from every configured provider.",
			Icon:        "chart-line",
			handlers:    []gin.HandlerFunc{s.getRates},
		},
		{
			Method:      http.MethodGet,
			Path:        "/rates/:provider",
			Title:       "Yield rate",
			Description: "Fee-adjusted APR from a single provider.",
			Icon:        "chart-line",
			handlers:    []gin.HandlerFunc{s.getRate},
		},
		{
			Method:      http.MethodGet,
			Path:        "/min-out",
			Title:       "Minimum output",
			Description: "Slippage-adjusted minimum output for a swap amount.",
			Icon:        "calculator",
			handlers:    []gin.HandlerFunc{s.getMinOut},
		},
		{
			Method:      http.MethodGet,
			Path:        "/contracts/:chainId",
			Title:       "Contracts",
			Description: "Deployed contract addresses on a chain.",
			Icon:        "file-contract",
			handlers:    []gin.HandlerFunc{s.getContracts},
		},
		{
			Method:      http.MethodGet,
			Path:        "/convert/:chainId/:token",
			Title:       "Static token conversion",
			Description: "Converts an amount between static and dynamic units on chain.",
			Icon:        "right-left",
			handlers:    []gin.HandlerFunc{s.getConversion},
		},
		{
			Method:      http.MethodGet,
			Path:        "/ws/rates",
			Title:       "Rate stream",
			Description: "Websocket pushing aggregated rates on an interval.",
			Icon:        "tower-broadcast",
			handlers:    []gin.HandlerFunc{s.streamRates},
		},
		{
			Method:      http.MethodPost,
			Path:        "/admin/cache/flush",
			Title:       "Flush rate cache",
			Description: "Drops every cached quote. Requires an admin bearer token.",
			handlers:    []gin.HandlerFunc{requireAdmin(s.adminSecret), s.flushCache},
		},
		{
			Method:      MethodAny,
			Path:        LlamaPrefix + "/*path",
			Title:       "Pools API proxy",
			Description: "Forwards to the pools API with the prefix removed.",
			handlers:    []gin.HandlerFunc{s.proxyLlama},
		},
	}
}

func (s *Server) mount(r Route) {
	chain := append([]gin.HandlerFunc{errorBoundary(r, s.logger)}, r.handlers...)
	if r.Method == MethodAny {
		s.engine.Any(r.Path, chain...)
		return
	}
	s.engine.Handle(r.Method, r.Path, chain...)
}

// Routes returns the mounted route table.
func (s *Server) Routes() []Route {
	out := make([]Route, len(s.routes))
	copy(out, s.routes)
	return out
}
