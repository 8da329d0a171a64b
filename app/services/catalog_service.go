package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/requests"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

const relatedLimit = 4

// ImageStore is where product images are written. storage.Disk satisfies it.
type ImageStore interface {
	Put(path string, content []byte) error
	Delete(path string) error
	URL(path string) string
}

// Upload is an image file received from the back office.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// CatalogService serves the catalogue to shoppers and lets the back office
// maintain it.
type CatalogService struct {
	repo   *repositories.Repository
	images ImageStore
}

func NewCatalogService(repo *repositories.Repository, images ImageStore) *CatalogService {
	return &CatalogService{repo: repo, images: images}
}

// ProductDetail is one product with its related products.
type ProductDetail struct {
	Product  *models.Product  `json:"product"`
	ImageURL string           `json:"image_url,omitempty"`
	Related  []models.Product `json:"related"`
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.repo.Products.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// ProductDetail loads a product and the newest few others to show next to it.
func (s *CatalogService) ProductDetail(ctx context.Context, id uint) (*ProductDetail, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	related, err := s.RelatedProducts(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &ProductDetail{Product: p, Related: related}
	if p.Image != "" && s.images != nil {
		d.ImageURL = s.images.URL(p.Image)
	}
	return d, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, perPage int) ([]models.Product, orm.Pagination, error) {
	return s.repo.Products.Paginate(ctx, page, perPage)
}

func (s *CatalogService) RelatedProducts(ctx context.Context, id uint) ([]models.Product, error) {
	return s.repo.Products.Related(ctx, id, relatedLimit)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.Products.Categories(ctx)
}

// ── Back office ──────────────────────────────────────────────────────────────

// CreateProduct validates form, stores the optional image and inserts the row.
func (s *CatalogService) CreateProduct(ctx context.Context, form requests.ProductForm, image *Upload) (*models.Product, error) {
	if err := s.validateProduct(ctx, &form, 0); err != nil {
		return nil, err
	}

	p := &models.Product{}
	form.Apply(p)

	if image != nil {
		path, err := s.storeImage(image)
		if err != nil {
			return nil, err
		}
		p.Image = path
	}

	if err := s.repo.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("catalog: product created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

// UpdateProduct replaces a product's fields. A new image replaces the old
// one; without one the old image is kept.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, form requests.ProductForm, image *Upload) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, &form, id); err != nil {
		return nil, err
	}

	oldImage := p.Image
	form.Apply(p)
	p.Category = nil

	if image != nil {
		path, err := s.storeImage(image)
		if err != nil {
			return nil, err
		}
		p.Image = path
	}

	if err := s.repo.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	if image != nil && oldImage != "" {
		if err := s.images.Delete(oldImage); err != nil {
			logger.WithCtx(ctx).Warn("catalog: old image not removed", "path", oldImage, "error", err)
		}
	}
	return p, nil
}

// DeleteProduct removes a product no cart or order refers to.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.repo.Products.Delete(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repositories.ErrInUse):
		return ErrProductInUse
	}
	return err
}

func (s *CatalogService) validateProduct(ctx context.Context, form *requests.ProductForm, id uint) error {
	errs := form.Validate()

	if _, ok := errs["category_id"]; !ok {
		if _, err := s.repo.Products.FindCategory(ctx, form.CategoryID); errors.Is(err, repositories.ErrNotFound) {
			errs["category_id"] = "The selected category_id is invalid."
		} else if err != nil {
			return err
		}
	}
	if _, ok := errs["sku"]; !ok {
		taken, err := s.repo.Products.SKUTaken(ctx, form.SKU, id)
		if err != nil {
			return err
		}
		if taken {
			errs["sku"] = "The sku has already been taken."
		}
	}
	return NewValidationError(errs)
}

// storeImage checks size and sniffed content type, then writes the file
// under a fresh name.
func (s *CatalogService) storeImage(u *Upload) (string, error) {
	if s.images == nil {
		return "", errors.New("catalog: no image store configured")
	}
	if u.Size > requests.MaxImageBytes {
		return "", &ValidationError{Fields: map[string]string{"image": "The image must not be larger than 5MB."}}
	}

	data, err := io.ReadAll(io.LimitReader(u.Body, requests.MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("catalog: read image: %w", err)
	}
	if len(data) > requests.MaxImageBytes {
		return "", &ValidationError{Fields: map[string]string{"image": "The image must not be larger than 5MB."}}
	}

	mt := mimetype.Detect(data)
	if !slices.Contains(requests.AllowedImageTypes, mt.String()) {
		return "", &ValidationError{Fields: map[string]string{"image": "The image must be a JPEG or PNG file."}}
	}

	path := "products/" + uuid.NewString() + mt.Extension()
	if err := s.images.Put(path, data); err != nil {
		return "", fmt.Errorf("catalog: store image: %w", err)
	}
	return path, nil
}
