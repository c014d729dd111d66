package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bankdki/stock-api/api/responses"
	pkgAuth "github.com/bankdki/stock-api/pkg/auth"
	"github.com/bankdki/stock-api/pkg/config"
	"github.com/bankdki/stock-api/pkg/db/models"
	pkgerrors "github.com/bankdki/stock-api/pkg/errors"
	"github.com/bankdki/stock-api/pkg/logger"
	"gorm.io/gorm"
)

// IdentityResolver loads the full credential record behind a token subject.
type IdentityResolver interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Auth validates a bearer token, resolves the identity it names, and seeds
// the request context with it. Requests without credentials are rejected
// here rather than passed through without identity.
func Auth(cfg config.JWTConfig, users IdentityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, tokenFailureMessage(err)))
				return
			}

			user, err := users.FindByUsername(r.Context(), claims.Username)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve identity"))
				return
			}

			if claims.Username != user.Username {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), user.ID.String(), user.Username)
			if logg != nil {
				ctx = logg.WithUsername(ctx, user.Username)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFailureMessage(err error) string {
	switch {
	case errors.Is(err, pkgAuth.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, pkgAuth.ErrTokenMalformed):
		return "token malformed"
	case errors.Is(err, pkgAuth.ErrUnsupportedAlgorithm):
		return "token signed with unsupported algorithm"
	case errors.Is(err, pkgAuth.ErrSignatureInvalid):
		return "token signature invalid"
	default:
		return "invalid token"
	}
}
