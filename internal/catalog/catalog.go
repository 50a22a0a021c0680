// Package catalog exposes the commerce API's category and product surface
// as typed operations. Collection responses are shape-normalized at the
// API boundary, so this package never sees the backend's inconsistent
// nesting.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/exclusive-store/storefront/internal/api"
	apperrors "github.com/exclusive-store/storefront/internal/errors"
)

// Category is a product category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog product.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
	CategoryID  int64   `json:"categoryId,omitempty"`
}

// Page is one page of the product listing.
type Page struct {
	Items  []Product
	Total  int
	Number int
	Size   int
}

// Doer is the request surface this service needs; *api.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, path string, opts api.Options) api.Result
}

// ServiceOptions groups dependencies for NewService.
type ServiceOptions struct {
	API Doer

	// PageSize is the page size used by AllProducts.
	PageSize int

	// FetchConcurrency bounds concurrent page fetches in AllProducts.
	FetchConcurrency int

	Logger *slog.Logger
}

// Service provides catalog reads plus the admin-console writes.
type Service struct {
	api         Doer
	pageSize    int
	concurrency int
	logger      *slog.Logger
}

const (
	defaultPageSize    = 16
	defaultConcurrency = 4
	// maxSequentialPages caps the fallback walk when the server reports
	// no total count, so a misbehaving backend cannot loop us forever.
	maxSequentialPages = 100
)

// NewService constructs a Service.
func NewService(opts ServiceOptions) *Service {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	concurrency := opts.FetchConcurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:         opts.API,
		pageSize:    pageSize,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Categories lists all categories.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	res := s.api.Do(ctx, "/Category", api.Options{})
	if err := res.Failure("list categories"); err != nil {
		return nil, err
	}

	var categories []Category
	if err := api.DecodeInto(api.Items(res.Data), &categories); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode categories")
	}
	return categories, nil
}

// Products lists one page of products.
func (s *Service) Products(ctx context.Context, page, size int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = s.pageSize
	}

	path := fmt.Sprintf("/Product?PageNumber=%d&PageSize=%d", page, size)
	res := s.api.Do(ctx, path, api.Options{})
	if err := res.Failure("list products"); err != nil {
		return Page{}, err
	}

	var products []Product
	if err := api.DecodeInto(api.Items(res.Data), &products); err != nil {
		return Page{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode products")
	}
	return Page{
		Items:  products,
		Total:  api.Count(res.Data),
		Number: page,
		Size:   size,
	}, nil
}

// Product fetches a single product by id.
func (s *Service) Product(ctx context.Context, id int64) (Product, error) {
	res := s.api.Do(ctx, fmt.Sprintf("/Product/%d", id), api.Options{})
	if err := res.Failure(fmt.Sprintf("get product %d", id)); err != nil {
		return Product{}, err
	}

	obj := api.Object(res.Data)
	if obj == nil {
		return Product{}, apperrors.NotFoundf("product %d not found", id)
	}
	var product Product
	if err := api.DecodeInto(obj, &product); err != nil {
		return Product{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode product")
	}
	return product, nil
}

// AllProducts materializes the entire catalog. There is no server-side
// "get my wishlist" read, so wishlist rendering needs every product; when
// the first page reports a total count the remaining pages are fetched
// concurrently, otherwise pages are walked until a short one.
func (s *Service) AllProducts(ctx context.Context) ([]Product, error) {
	first, err := s.Products(ctx, 1, s.pageSize)
	if err != nil {
		return nil, err
	}
	if len(first.Items) < s.pageSize {
		return first.Items, nil
	}

	if first.Total > len(first.Items) {
		return s.fetchKnownTotal(ctx, first)
	}
	return s.fetchUntilShortPage(ctx, first)
}

func (s *Service) fetchKnownTotal(ctx context.Context, first Page) ([]Product, error) {
	pages := (first.Total + s.pageSize - 1) / s.pageSize
	results := make([][]Product, pages)
	results[0] = first.Items

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			p, err := s.Products(gctx, page, s.pageSize)
			if err != nil {
				return err
			}
			results[page-1] = p.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Product
	for _, items := range results {
		all = append(all, items...)
	}
	return all, nil
}

func (s *Service) fetchUntilShortPage(ctx context.Context, first Page) ([]Product, error) {
	all := first.Items
	for page := 2; page <= maxSequentialPages; page++ {
		p, err := s.Products(ctx, page, s.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if len(p.Items) < s.pageSize {
			return all, nil
		}
	}
	s.logger.Warn("catalog walk hit page cap", "pages", maxSequentialPages)
	return all, nil
}

// CreateCategoryInput shapes the admin create-category call.
type CreateCategoryInput struct {
	Name string `json:"name"`
}

// CreateCategory creates a category (admin console).
func (s *Service) CreateCategory(ctx context.Context, input CreateCategoryInput) (Category, error) {
	if input.Name == "" {
		return Category{}, apperrors.ValidationField("name", "category name is required")
	}

	res := s.api.Do(ctx, "/Category", api.Options{Method: http.MethodPost, Body: input})
	if err := res.Failure("create category"); err != nil {
		return Category{}, err
	}
	if !res.Succeeded() {
		return Category{}, apperrors.Unavailablef("create category: %s", api.Message(res.Data))
	}

	var created Category
	if obj := api.Object(res.Data); obj != nil {
		if err := api.DecodeInto(obj, &created); err != nil {
			return Category{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode created category")
		}
	}
	if created.Name == "" {
		created.Name = input.Name
	}
	return created, nil
}

// CreateProductInput shapes the admin create-product call.
type CreateProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	CategoryID  int64   `json:"categoryId"`
}

// CreateProduct creates a product (admin console).
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (Product, error) {
	if input.Name == "" {
		return Product{}, apperrors.ValidationField("name", "product name is required")
	}
	if input.Price < 0 {
		return Product{}, apperrors.ValidationField("price", "price must not be negative")
	}

	res := s.api.Do(ctx, "/Product", api.Options{Method: http.MethodPost, Body: input})
	if err := res.Failure("create product"); err != nil {
		return Product{}, err
	}
	if !res.Succeeded() {
		return Product{}, apperrors.Unavailablef("create product: %s", api.Message(res.Data))
	}

	var created Product
	if obj := api.Object(res.Data); obj != nil {
		if err := api.DecodeInto(obj, &created); err != nil {
			return Product{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode created product")
		}
	}
	if created.Name == "" {
		created.Name = input.Name
		created.Price = input.Price
	}
	return created, nil
}
