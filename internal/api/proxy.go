package api

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LlamaPrefix is the local path prefix forwarded to the pools API.
const LlamaPrefix = "/llama"

func newLlamaProxy(target *url.URL, logger *zap.Logger) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			path := strings.TrimPrefix(r.In.URL.Path, LlamaPrefix)
			if path == "" {
				path = "/"
			}
			r.Out.URL.Path = path
			r.Out.URL.RawPath = ""
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("Pools proxy failed", zap.String("path", r.URL.Path), zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"pools upstream unavailable","route":"Pools API proxy"}`))
		},
	}
}

func (s *Server) proxyLlama(c *gin.Context) {
	s.proxy.ServeHTTP(c.Writer, c.Request)
}
