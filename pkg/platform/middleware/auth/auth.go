// Package auth authenticates the calling product layer. The surrounding
// product issues short-lived HS256 tokens naming the human actor and their
// role; the engine only needs that identity for audit attribution and
// capability checks, so the middleware stays deliberately small.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"amlgate/pkg/requestcontext"
)

// Claims are the token claims the engine consumes.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}

// RequireActor validates the bearer token and stores actor ID and role in the
// request context. Every state-changing endpoint sits behind this: the audit
// ledger needs a real actor on every entry.
func RequireActor(signingKey []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(header[len(bearerPrefix):], claims,
				func(t *jwt.Token) (any, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
					}
					return signingKey, nil
				},
			)
			if err != nil || !token.Valid {
				if logger != nil {
					logger.DebugContext(r.Context(), "token rejected", "error", err)
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			if claims.Subject == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "token has no subject")
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), claims.Subject)
			ctx = requestcontext.WithActorRole(ctx, parseRole(claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseRole(s string) requestcontext.Role {
	switch requestcontext.Role(strings.ToLower(strings.TrimSpace(s))) {
	case requestcontext.RoleComplianceOfficer:
		return requestcontext.RoleComplianceOfficer
	default:
		return requestcontext.RoleOperator
	}
}
