package middleware

import (
	"net/http"
	"strings"
	"time"

	"travelbook/airports/internal/auth"
	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/logging"
)

// AdminAuthMiddleware requires a valid admin bearer token and stores its claims
// in the request context.
func AdminAuthMiddleware(signer *common.AdminTokenSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				common.RespondError(w, time.Now(), nil, constants.MsgUnauthorized, false, http.StatusUnauthorized)
				return
			}

			claims, err := signer.Validate(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logging.Warn("Rejected admin token", "request_id", auth.GetRequestID(r.Context()), "error", err.Error())
				common.RespondError(w, time.Now(), nil, constants.MsgUnauthorized, false, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetAdminClaims(r.Context(), claims)))
		})
	}
}

// RequireRole lets a request through only when allowed accepts the token role.
func RequireRole(allowed func(constants.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetAdminClaims(r.Context())
			if claims == nil || !allowed(claims.Role) {
				common.RespondError(w, time.Now(), nil, constants.MsgForbidden, false, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
