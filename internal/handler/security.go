package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/drinks-api/internal/auth"
)

// RequirePermission rejects requests whose bearer token does not grant
// permission. Verified claims are stored in the request context.
func (h *Handler) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, err := h.auth.Authorize(r, permission)
			if err != nil {
				zctx.From(ctx).Debug("Authorization failed",
					zap.String("permission", permission),
					zap.Error(err),
				)
				h.handleError(w, r, err)
				return
			}

			trace.SpanFromContext(ctx).SetAttributes(
				attribute.String("enduser.id", claims.Subject),
				attribute.String("drinks.permission", permission),
			)
			ctx = zctx.With(ctx, zap.String("subject", claims.Subject))
			ctx = auth.WithClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
