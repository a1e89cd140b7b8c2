package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/apiutil"
	"github.com/codr1/Courtbook/internal/api/authz"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
)

// Middleware resolves the bearer token, when present, into the request's
// authz.AuthUser. Requests without a token continue anonymously; handlers
// decide whether they need a caller. When q is set the role is reloaded from
// the users table so demotions apply before the token expires.
func Middleware(tokens *Tokens, q dbgen.Querier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				apiutil.WriteErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			logger := log.Ctx(r.Context())
			user, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				logger.Warn().Err(err).Msg("Rejected bearer token")
				apiutil.WriteErrorMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if q != nil {
				row, err := q.GetUserByID(r.Context(), user.ID)
				if err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						apiutil.WriteErrorMessage(w, http.StatusUnauthorized, "invalid token")
						return
					}
					logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to load token user")
					apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				role, ok := authz.ParseRole(row.Role)
				if !ok {
					apiutil.WriteErrorMessage(w, http.StatusUnauthorized, "invalid token")
					return
				}
				user.Role = role
				user.Email = row.Email
			}

			ctx := authz.ContextWithUser(r.Context(), &user)
			ctx = logger.With().Int64("user_id", user.ID).Logger().WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
