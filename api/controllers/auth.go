package controllers

import (
	"net/http"

	"github.com/bankdki/stock-api/api/responses"
	"github.com/bankdki/stock-api/internal/auth"
	pkgerrors "github.com/bankdki/stock-api/pkg/errors"
	"github.com/bankdki/stock-api/pkg/logger"
)

// AuthLogin wires the login endpoint into the HTTP layer. Credentials arrive
// as form fields (urlencoded or multipart), matching the frontend client.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")
		if username == "" || password == "" {
			err := pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := svc.Login(r.Context(), username, password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Login successful", map[string]string{"token": token})
	}
}
