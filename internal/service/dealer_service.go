package service

import (
	"context"
	"errors"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apperr"
	"github.com/orhanozan33/epicebuhara-sub000/internal/dto"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/money"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"gorm.io/gorm"
)

// DealerService is the dealer upkeep surface. Sales only read dealers
// through DealerDirectory.
type DealerService interface {
	Create(ctx context.Context, req dto.CreateDealerRequest) (*dto.DealerResponse, error)
	Get(ctx context.Context, id uint) (*dto.DealerResponse, error)
	List(ctx context.Context, onlyActive bool) ([]dto.DealerResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateDealerRequest) (*dto.DealerResponse, error)
}

type dealerService struct {
	repo      repository.DealerRepository
	directory DealerDirectory
}

func NewDealerService(repo repository.DealerRepository, directory DealerDirectory) DealerService {
	return &dealerService{repo: repo, directory: directory}
}

func (s *dealerService) Create(ctx context.Context, req dto.CreateDealerRequest) (*dto.DealerResponse, error) {
	if !money.ValidPercent(req.DiscountPercent) {
		return nil, apperr.Validation(money.PercentRule)
	}
	d := &model.Dealer{
		CompanyName:     req.CompanyName,
		Email:           req.Email,
		DiscountPercent: money.Round2(req.DiscountPercent),
		Active:          true,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return dealerToResponse(d), nil
}

func (s *dealerService) Get(ctx context.Context, id uint) (*dto.DealerResponse, error) {
	d, err := s.directory.GetDealer(ctx, id)
	if err != nil {
		return nil, err
	}
	return dealerToResponse(d), nil
}

func (s *dealerService) List(ctx context.Context, onlyActive bool) ([]dto.DealerResponse, error) {
	dealers, err := s.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DealerResponse, 0, len(dealers))
	for i := range dealers {
		out = append(out, *dealerToResponse(&dealers[i]))
	}
	return out, nil
}

// Update changes dealer fields. A discount change affects only sales
// created or repriced afterwards; existing totals are not rewritten.
func (s *dealerService) Update(ctx context.Context, id uint, req dto.UpdateDealerRequest) (*dto.DealerResponse, error) {
	// read the row itself, never the cached copy, before writing it back
	d, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("dealer %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if req.CompanyName != nil {
		d.CompanyName = *req.CompanyName
	}
	if req.Email != nil {
		d.Email = req.Email
	}
	if req.DiscountPercent != nil {
		if !money.ValidPercent(*req.DiscountPercent) {
			return nil, apperr.Validation(money.PercentRule)
		}
		d.DiscountPercent = money.Round2(*req.DiscountPercent)
	}
	if req.Active != nil {
		d.Active = *req.Active
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.directory.Invalidate(ctx, id)
	return dealerToResponse(d), nil
}

func dealerToResponse(d *model.Dealer) *dto.DealerResponse {
	return &dto.DealerResponse{
		ID:              d.ID,
		CompanyName:     d.CompanyName,
		Email:           d.Email,
		DiscountPercent: d.DiscountPercent,
		Active:          d.Active,
	}
}
