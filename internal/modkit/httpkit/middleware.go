package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"devquest/internal/platform/net/middleware"
)

// slow requests are logged at warn
const slowRequest = 500 * time.Millisecond

// CommonStack is the middleware every /api route runs through
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestLogger,
		middleware.RecoverJSON,
		middleware.AccessLog(slowRequest),
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}
