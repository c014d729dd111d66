package stocks

import (
	"encoding/json"
	"mime/multipart"
	"time"

	"github.com/bankdki/stock-api/pkg/db/models"
	"github.com/google/uuid"
)

// StockInput carries the multipart form fields for create and update. Field
// names mirror the public API's business vocabulary.
type StockInput struct {
	Name           string `form:"namaBarang" validate:"required"`
	Quantity       int    `form:"jumlahStok"`
	SerialNumber   string `form:"nomorSeriBarang" validate:"required"`
	AdditionalInfo string `form:"additionalInfo"`
	Image          *multipart.FileHeader
}

// StockDTO is the response representation of a stock row. additionalInfo is
// emitted as a raw JSON document rather than a quoted string.
type StockDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"namaBarang"`
	Quantity       int             `json:"jumlahStok"`
	SerialNumber   string          `json:"nomorSeriBarang"`
	AdditionalInfo json.RawMessage `json:"additionalInfo"`
	ImagePath      *string         `json:"gambarBarang"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      uuid.UUID       `json:"createdBy"`
	UpdatedAt      *time.Time      `json:"updatedAt"`
	UpdatedBy      *uuid.UUID      `json:"updatedBy"`
}

// FromModel maps a persistence row to its response form.
func FromModel(m *models.Stock) StockDTO {
	dto := StockDTO{
		ID:           m.ID,
		Name:         m.Name,
		Quantity:     m.Quantity,
		SerialNumber: m.SerialNumber,
		ImagePath:    m.ImagePath,
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
		UpdatedAt:    m.UpdatedAt,
		UpdatedBy:    m.UpdatedBy,
	}
	if m.AdditionalInfo != nil {
		dto.AdditionalInfo = json.RawMessage(*m.AdditionalInfo)
	}
	return dto
}
