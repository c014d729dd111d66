package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bankdki/stock-api/internal/media"
	"github.com/bankdki/stock-api/pkg/config"
	"github.com/bankdki/stock-api/pkg/db"
	"github.com/bankdki/stock-api/pkg/db/models"
	pkgerrors "github.com/bankdki/stock-api/pkg/errors"
	"github.com/bankdki/stock-api/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the stock controllers.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, input StockInput) (*StockDTO, error)
	List(ctx context.Context) ([]StockDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StockDTO, error)
	Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input StockInput) (*StockDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, stock *models.Stock) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Stock, error)
	List(ctx context.Context) ([]models.Stock, error)
	Update(ctx context.Context, stock *models.Stock) error
	Delete(ctx context.Context, stock *models.Stock) error
}

type imageStore interface {
	Save(filename string, r io.Reader) (string, error)
	Remove(relPath string) error
}

type service struct {
	repo     repository
	images   imageStore
	mediaCfg config.MediaConfig
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a stock service.
type ServiceParams struct {
	Repo     repository
	Images   imageStore
	MediaCfg config.MediaConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService constructs a stock service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("stock repository is required")
	}
	if params.Images == nil {
		return nil, fmt.Errorf("image store is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		images:   params.Images,
		mediaCfg: params.MediaCfg,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Create validates the input, stores any attached image, and persists a new
// stock row stamped with the acting user's id. The image is written before
// the row; a failed insert removes the freshly written file again.
func (s *service) Create(ctx context.Context, actorID uuid.UUID, input StockInput) (*StockDTO, error) {
	additionalInfo, err := normalizeAdditionalInfo(input.AdditionalInfo)
	if err != nil {
		return nil, err
	}

	stock := &models.Stock{
		Name:           input.Name,
		Quantity:       input.Quantity,
		SerialNumber:   input.SerialNumber,
		AdditionalInfo: additionalInfo,
		CreatedAt:      s.now().UTC(),
		CreatedBy:      actorID,
	}

	if input.Image != nil {
		imagePath, err := s.storeImage(input)
		if err != nil {
			return nil, err
		}
		stock.ImagePath = &imagePath
	}

	if err := s.repo.Create(ctx, stock); err != nil {
		s.discardImage(ctx, stock.ImagePath)
		if db.IsUniqueViolation(err, models.UniqueSerialNumberConstraint) {
			return nil, duplicateSerialError(input.SerialNumber)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save stock")
	}

	dto := FromModel(stock)
	return &dto, nil
}

// List returns every stock row in response form.
func (s *service) List(ctx context.Context) ([]StockDTO, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stocks")
	}
	dtos := make([]StockDTO, 0, len(all))
	for i := range all {
		dtos = append(dtos, FromModel(&all[i]))
	}
	return dtos, nil
}

// GetByID performs a point lookup, failing with a not-found error when the
// id names no row.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StockDTO, error) {
	stock, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(stock)
	return &dto, nil
}

// Update overwrites all mutable fields, stamps the update metadata, and
// manages the image swap: the new file is safely on disk before the old one
// is removed, and a failed row write removes the new file again.
func (s *service) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, input StockInput) (*StockDTO, error) {
	stock, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	additionalInfo, err := normalizeAdditionalInfo(input.AdditionalInfo)
	if err != nil {
		return nil, err
	}

	previousImage := stock.ImagePath
	var newImage *string
	if input.Image != nil {
		imagePath, err := s.storeImage(input)
		if err != nil {
			return nil, err
		}
		newImage = &imagePath
	}

	now := s.now().UTC()
	stock.Name = input.Name
	stock.Quantity = input.Quantity
	stock.SerialNumber = input.SerialNumber
	stock.AdditionalInfo = additionalInfo
	stock.UpdatedAt = &now
	stock.UpdatedBy = &actorID
	if newImage != nil {
		stock.ImagePath = newImage
	}

	if err := s.repo.Update(ctx, stock); err != nil {
		s.discardImage(ctx, newImage)
		if db.IsUniqueViolation(err, models.UniqueSerialNumberConstraint) {
			return nil, duplicateSerialError(input.SerialNumber)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update stock")
	}

	if newImage != nil && previousImage != nil {
		s.discardImage(ctx, previousImage)
	}

	dto := FromModel(stock)
	return &dto, nil
}

// Delete removes the row and then its image file. The file removal is
// best-effort; an I/O failure there never fails the operation.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	stock, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, stock); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete stock")
	}

	s.discardImage(ctx, stock.ImagePath)
	return nil
}

func (s *service) fetch(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	stock, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("stock with id %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup stock")
	}
	return stock, nil
}

func (s *service) storeImage(input StockInput) (string, error) {
	if err := media.ValidateImageUpload(input.Image, s.mediaCfg.SniffContent); err != nil {
		return "", err
	}
	file, err := input.Image.Open()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open upload")
	}
	defer file.Close()

	imagePath, err := s.images.Save(input.Image.Filename, file)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
	}
	return imagePath, nil
}

func (s *service) discardImage(ctx context.Context, relPath *string) {
	if relPath == nil || *relPath == "" {
		return
	}
	if err := s.images.Remove(*relPath); err != nil && s.logg != nil {
		ctx = s.logg.WithField(ctx, "image_path", *relPath)
		s.logg.Warn(ctx, fmt.Sprintf("failed to remove image: %v", err))
	}
}

func normalizeAdditionalInfo(raw string) (*string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "additionalInfo must be valid JSON")
	}
	return &trimmed, nil
}

func duplicateSerialError(serial string) error {
	return pkgerrors.New(
		pkgerrors.CodeDuplicateKey,
		fmt.Sprintf("The 'Nomor Seri Barang' must be unique. The value '%s' already exists.", serial),
	).WithDetails(map[string]any{"nomorSeriBarang": serial})
}
