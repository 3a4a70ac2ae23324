package middleware

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	pkgAuth "github.com/angelmondragon/ecofinds-backend/pkg/auth"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

const (
	sessionIDHeader = "X-Session-Id"

	// EventSource clients cannot set headers, so the stream endpoint accepts
	// the same credentials as query parameters.
	sessionIDQuery   = "session_id"
	accessTokenQuery = "access_token"

	userOwnerPrefix    = "user:"
	sessionOwnerPrefix = "session:"
)

var sessionValidator = validator.New()

// UserCartOwner returns the cart key of a signed-in user.
func UserCartOwner(userID string) string {
	return userOwnerPrefix + userID
}

// SessionCartOwner returns the cart key of an anonymous session.
func SessionCartOwner(sessionID string) string {
	return sessionOwnerPrefix + sessionID
}

// Identity resolves the optional caller identity. A bearer token wins over an
// anonymous session id; a token that is present but invalid is rejected.
func Identity(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				claims, err := pkgAuth.ParseAccessToken(cfg, token)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}
				userID, err := claims.UserID()
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}
				ctx = WithUserID(ctx, userID.String())
				ctx = WithCartOwner(ctx, UserCartOwner(userID.String()))
				if logg != nil {
					ctx = logg.WithUserID(ctx, userID.String())
				}
			}

			if sid := sessionID(r); sid != "" {
				if err := sessionValidator.Var(sid, "max=128,printascii"); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid session id"))
					return
				}
				ctx = WithSessionID(ctx, sid)
				if CartOwnerFromContext(ctx) == "" {
					ctx = WithCartOwner(ctx, SessionCartOwner(sid))
				}
				if logg != nil {
					ctx = logg.WithSessionID(ctx, sid)
				}
			}

			if owner := CartOwnerFromContext(ctx); owner != "" && logg != nil {
				ctx = logg.WithCartOwner(ctx, owner)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without a valid bearer token.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCartOwner rejects requests that carry neither a bearer token nor a session id.
func RequireCartOwner(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CartOwnerFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token or "+sessionIDHeader+" header required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return strings.TrimSpace(r.URL.Query().Get(accessTokenQuery))
	}
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

func sessionID(r *http.Request) string {
	if sid := strings.TrimSpace(r.Header.Get(sessionIDHeader)); sid != "" {
		return sid
	}
	return strings.TrimSpace(r.URL.Query().Get(sessionIDQuery))
}
