package service

import (
	"context"
	"errors"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apperr"
	"github.com/orhanozan33/epicebuhara-sub000/internal/catalog"
	"github.com/orhanozan33/epicebuhara-sub000/internal/dto"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"gorm.io/gorm"
)

// ProductService is the read-only catalog surface plus the stock audit log.
type ProductService interface {
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Get(ctx context.Context, id uint) (*dto.ProductResponse, error)
	Variants(ctx context.Context, id uint) (*dto.VariantsResponse, error)
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
	// ToBaseUnits converts a box count into base units with the product's
	// pack size. Products without a pack size are sold by unit.
	ToBaseUnits(ctx context.Context, id uint, boxes int) (int, error)
}

type productService struct {
	repo      repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewProductService(repo repository.ProductRepository, movements repository.StockMovementRepository) ProductService {
	return &productService{repo: repo, movements: movements}
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	products, total, err := s.repo.List(ctx, repository.ProductFilter{
		Name:  filter.Name,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Variants(ctx context.Context, id uint) (*dto.VariantsResponse, error) {
	target, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.VariantsResponse{ProductID: id, Variants: []dto.ProductResponse{}}
	for _, v := range catalog.VariantsOf(target, all) {
		resp.Variants = append(resp.Variants, productToResponse(v.Product))
	}
	return resp, nil
}

func (s *productService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	movements, total, err := s.movements.List(ctx, repository.StockMovementFilter{
		ProductID: filter.ProductID,
		SaleID:    filter.SaleID,
		Kind:      filter.Kind,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		name := ""
		if m.Product != nil {
			name = m.Product.Name
		}
		data = append(data, dto.StockMovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			ProductName: name,
			Kind:        m.Kind,
			Delta:       m.Delta,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			SaleID:      m.SaleID,
			CreatedAt:   formatTime(m.CreatedAt),
		})
	}
	return &dto.StockMovementListResponse{Data: data, Total: total}, nil
}

func (s *productService) ToBaseUnits(ctx context.Context, id uint, boxes int) (int, error) {
	if boxes <= 0 {
		return 0, apperr.Validation("boxes must be greater than zero")
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.BaseUnits(boxes), nil
}

func (s *productService) find(ctx context.Context, id uint) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product %d not found", id)
	}
	return p, err
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		PackSize:  p.PackSize,
		PackLabel: p.PackLabel,
		FamilyID:  p.FamilyID,
	}
}
