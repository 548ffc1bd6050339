package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger writes one line per request. Server errors log at ERROR,
// client errors at WARN, everything else at INFO.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			line := fmt.Sprintf("%s %s - %d (%s) [%s]", r.Method, r.URL.Path, status, time.Since(start), chimw.GetReqID(r.Context()))
			switch {
			case status >= 500:
				log.Error("API", line)
			case status >= 400:
				log.Warn("API", line)
			default:
				log.Info("API", line)
			}
		})
	}
}
