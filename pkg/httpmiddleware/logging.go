package httpmiddleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InjectLogger stores lg as the base logger of every request context so that
// handlers can retrieve it with zctx.From.
func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(zctx.Base(r.Context(), lg)))
		})
	}
}

// LogRequests logs one line per request once it completes. Server errors are
// logged at error level, everything else at debug.
func LogRequests() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			lvl := zapcore.DebugLevel
			if m.Code >= http.StatusInternalServerError {
				lvl = zapcore.ErrorLevel
			}
			lg := zctx.From(r.Context())
			if ce := lg.Check(lvl, "Request"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("route", RoutePattern(r)),
					zap.Int("status", m.Code),
					zap.Int64("bytes", m.Written),
					zap.Duration("duration", m.Duration),
				)
			}
		})
	}
}
