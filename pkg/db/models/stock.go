package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UniqueSerialNumberConstraint names the unique index guarding the serial
// number column, used to translate driver errors into a duplicate-key result.
const UniqueSerialNumberConstraint = "uc_stocks_nomor_seri_barang"

// Stock is a single inventory row. Column names keep the upstream Indonesian
// business vocabulary (nama barang = item name, jumlah stok = quantity,
// nomor seri barang = serial number, gambar barang = item image).
type Stock struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name           string     `gorm:"column:nama_barang;not null"`
	Quantity       int        `gorm:"column:jumlah_stok;not null"`
	SerialNumber   string     `gorm:"column:nomor_seri_barang;not null;uniqueIndex:uc_stocks_nomor_seri_barang"`
	AdditionalInfo *string    `gorm:"column:additional_info"`
	ImagePath      *string    `gorm:"column:gambar_barang"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	CreatedBy      uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	UpdatedAt      *time.Time `gorm:"column:updated_at"`
	UpdatedBy      *uuid.UUID `gorm:"column:updated_by;type:uuid"`
}

func (Stock) TableName() string {
	return "stocks"
}

func (s *Stock) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
