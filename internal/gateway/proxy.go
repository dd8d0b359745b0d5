package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// NewProxy builds a reverse proxy that forwards requests to target after
// stripping prefix from the request path. A request to {prefix}/api/products
// reaches the target as /api/products. Upstream failures surface as 502.
func NewProxy(target *url.URL, prefix string, logger *zap.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)

	defaultDirector := proxy.Director
	proxy.Director = func(r *http.Request) {
		defaultDirector(r)
		r.URL.Path = stripPrefix(r.URL.Path, prefix)
		r.Host = target.Host
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("Upstream request failed",
			zap.String("upstream", target.String()),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":"Bad Gateway"}`)
	}

	return proxy
}

func stripPrefix(path, prefix string) string {
	stripped := strings.TrimPrefix(path, prefix)
	if stripped == "" || !strings.HasPrefix(stripped, "/") {
		stripped = "/" + stripped
	}
	return stripped
}
