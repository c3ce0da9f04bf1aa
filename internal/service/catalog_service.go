package service

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/printshop/printshop-api/internal/config"
	"github.com/printshop/printshop-api/internal/models"
	"github.com/printshop/printshop-api/internal/utils"
)

var (
	minPrice = decimal.NewFromFloat(config.MinPrice)
	maxPrice = decimal.NewFromInt(config.MaxPrice)
)

// CatalogService implements product catalog administration: manual creation,
// single-field edits, hard deletion and bulk import. All mutations validate
// first and report the specific failing field.
type CatalogService struct {
	products ProductStore
	photos   PhotoFiles
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(products ProductStore, photos PhotoFiles) *CatalogService {
	return &CatalogService{products: products, photos: photos}
}

// ListActive returns the active products visible to both interfaces.
func (s *CatalogService) ListActive() ([]models.Product, error) {
	return s.products.ListActive()
}

// GetProduct returns one product or a NotFoundError for a stale id.
func (s *CatalogService) GetProduct(id int64) (*models.Product, error) {
	p, err := s.products.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("product", id)
		}
		return nil, err
	}
	return p, nil
}

// CountActive returns the number of active products.
func (s *CatalogService) CountActive() (int, error) {
	return s.products.CountActive()
}

// Create validates and inserts a new product, returning its id.
func (s *CatalogService) Create(name, description string, price decimal.Decimal, photoPath string) (int64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	if err := ValidateDescription(description); err != nil {
		return 0, err
	}
	if err := validatePriceRange(price); err != nil {
		return 0, err
	}
	return s.products.Create(name, description, price, photoPath)
}

// CreateWithPhoto validates the draft, stores the uploaded photo and inserts
// the product referencing it. Validation runs before the file is written so a
// bad draft leaves no orphan photo behind.
func (s *CatalogService) CreateWithPhoto(name, description string, price decimal.Decimal, uploadID string, content io.Reader) (int64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	if err := ValidateDescription(description); err != nil {
		return 0, err
	}
	if err := validatePriceRange(price); err != nil {
		return 0, err
	}
	path, err := s.photos.Save(name, uploadID, content)
	if err != nil {
		return 0, err
	}
	return s.products.Create(name, description, price, path)
}

// UpdateName validates and sets a new product name.
func (s *CatalogService) UpdateName(id int64, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return s.translateNoRows(s.products.UpdateName(id, name), id)
}

// UpdateDescription validates and sets a new product description.
func (s *CatalogService) UpdateDescription(id int64, description string) error {
	if err := ValidateDescription(description); err != nil {
		return err
	}
	return s.translateNoRows(s.products.UpdateDescription(id, description), id)
}

// UpdatePrice validates and sets a new product price.
func (s *CatalogService) UpdatePrice(id int64, price decimal.Decimal) error {
	if err := validatePriceRange(price); err != nil {
		return err
	}
	return s.translateNoRows(s.products.UpdatePrice(id, price), id)
}

// ReplacePhoto stores a new photo for the product, deleting the prior photo
// file first, and updates the row's photo reference.
func (s *CatalogService) ReplacePhoto(id int64, uploadID string, content io.Reader) error {
	p, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if p.PhotoPath.Valid {
		if err := s.photos.Delete(p.PhotoPath.String); err != nil {
			log.Warn().Err(err).Int64("product_id", id).Msg("failed to delete previous photo")
		}
	}
	path, err := s.photos.Save(p.Name, uploadID, content)
	if err != nil {
		return err
	}
	return s.translateNoRows(s.products.UpdatePhotoPath(id, path), id)
}

// Delete hard-deletes a product and removes its photo file if present.
// Snapshots on historical order items are not touched.
func (s *CatalogService) Delete(id int64) error {
	p, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if p.PhotoPath.Valid {
		if err := s.photos.Delete(p.PhotoPath.String); err != nil {
			log.Warn().Err(err).Int64("product_id", id).Msg("failed to delete product photo")
		}
	}
	return s.products.Delete(id)
}

// ValidateName checks the product name length limit.
func ValidateName(name string) error {
	if name == "" {
		return utils.NewValidationError("name", "название не может быть пустым")
	}
	if utf8.RuneCountInString(name) > config.MaxNameLength {
		return utils.NewValidationError("name",
			fmt.Sprintf("название слишком длинное (макс. %d символов)", config.MaxNameLength))
	}
	return nil
}

// ValidateDescription checks the product description length limit. Empty
// descriptions are allowed.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > config.MaxDescriptionLength {
		return utils.NewValidationError("description",
			fmt.Sprintf("описание слишком длинное (макс. %d символов)", config.MaxDescriptionLength))
	}
	return nil
}

// ParsePrice parses user-entered price text, accepting a comma as the decimal
// separator, and checks the allowed range.
func ParsePrice(text string) (decimal.Decimal, error) {
	price, err := parseDecimal(text)
	if err != nil {
		return decimal.Zero, utils.NewValidationError("price", "введите число")
	}
	if err := validatePriceRange(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func parseDecimal(text string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
}

func validatePriceRange(price decimal.Decimal) error {
	if price.LessThan(minPrice) || price.GreaterThan(maxPrice) {
		return utils.NewValidationError("price",
			fmt.Sprintf("цена должна быть от %v до %v ₽", config.MinPrice, config.MaxPrice))
	}
	return nil
}

func (s *CatalogService) translateNoRows(err error, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NewNotFoundError("product", id)
	}
	return err
}
