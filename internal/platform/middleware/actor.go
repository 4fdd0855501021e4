package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/platform/httputil"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
)

// ActorValidator resolves a bearer token to the acting principal it names.
type ActorValidator interface {
	ExtractActorID(tokenString string) (id.PrincipalID, error)
}

const devActorHeader = "X-Actor-ID"

// RequireActor authenticates the acting principal and injects it into the
// request context. Bearer tokens are the production path; when devHeader is
// enabled, X-Actor-ID stands in so local tooling can skip token minting.
func RequireActor(validator ActorValidator, devHeader bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				actor, err := validator.ExtractActorID(token)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
					return
				}
				next.ServeHTTP(w, r.WithContext(requestcontext.WithActorID(ctx, actor)))
				return
			}

			if devHeader {
				if raw := r.Header.Get(devActorHeader); raw != "" {
					actor, err := id.ParsePrincipalID(raw)
					if err != nil {
						httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "malformed actor header"))
						return
					}
					next.ServeHTTP(w, r.WithContext(requestcontext.WithActorID(ctx, actor)))
					return
				}
			}

			logger.WarnContext(ctx, "unauthorized access - missing token",
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
		})
	}
}
