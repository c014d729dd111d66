package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bankdki/stock-api/api/middleware"
	"github.com/bankdki/stock-api/api/responses"
	"github.com/bankdki/stock-api/api/validators"
	"github.com/bankdki/stock-api/internal/stocks"
	"github.com/bankdki/stock-api/pkg/config"
	pkgerrors "github.com/bankdki/stock-api/pkg/errors"
	"github.com/bankdki/stock-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const imageFormField = "gambarBarang"

// StockCreate handles the multipart create endpoint.
func StockCreate(svc stocks.Service, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := parseStockForm(r, mediaCfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), actorID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Stock created successfully", dto)
	}
}

// StockList handles the collection listing endpoint.
func StockList(svc stocks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dtos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Stocks retrieved successfully", dtos)
	}
}

// StockDetail handles the point lookup endpoint.
func StockDetail(svc stocks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := stockIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Stock retrieved successfully", dto)
	}
}

// StockUpdate handles the multipart update endpoint.
func StockUpdate(svc stocks.Service, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := stockIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := parseStockForm(r, mediaCfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), actorID, id, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Stock updated successfully", dto)
	}
}

// StockDelete handles the delete endpoint.
func StockDelete(svc stocks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := stockIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "Stock deleted successfully", nil)
	}
}

func parseStockForm(r *http.Request, mediaCfg config.MediaConfig) (*stocks.StockInput, error) {
	if err := validators.ParseMultipart(r, mediaCfg.MaxUploadMB); err != nil {
		return nil, err
	}

	input := stocks.StockInput{
		Name:           strings.TrimSpace(r.FormValue("namaBarang")),
		SerialNumber:   strings.TrimSpace(r.FormValue("nomorSeriBarang")),
		AdditionalInfo: r.FormValue("additionalInfo"),
	}

	if raw := strings.TrimSpace(r.FormValue("jumlahStok")); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "jumlahStok must be a whole number")
		}
		if quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "jumlahStok must not be negative")
		}
		input.Quantity = quantity
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File[imageFormField]; len(files) > 0 {
			input.Image = files[0]
		}
	}

	if err := validators.ValidateStruct(&input); err != nil {
		return nil, err
	}
	return &input, nil
}

func stockIDFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "id must be a valid UUID")
	}
	return id, nil
}

func actorFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	return id, nil
}
