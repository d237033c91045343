package repository

import (
	"context"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"

	"gorm.io/gorm"
)

type DealerRepository interface {
	Create(ctx context.Context, d *model.Dealer) error
	FindByID(ctx context.Context, id uint) (*model.Dealer, error)
	List(ctx context.Context, onlyActive bool) ([]model.Dealer, error)
	Update(ctx context.Context, d *model.Dealer) error
}

type dealerRepo struct{ db *gorm.DB }

func NewDealerRepository(db *gorm.DB) DealerRepository { return &dealerRepo{db: db} }

func (r *dealerRepo) Create(ctx context.Context, d *model.Dealer) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *dealerRepo) FindByID(ctx context.Context, id uint) (*model.Dealer, error) {
	var d model.Dealer
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dealerRepo) List(ctx context.Context, onlyActive bool) ([]model.Dealer, error) {
	var dealers []model.Dealer
	q := r.db.WithContext(ctx).Order("company_name ASC")
	if onlyActive {
		q = q.Where("active = true")
	}
	err := q.Find(&dealers).Error
	return dealers, err
}

func (r *dealerRepo) Update(ctx context.Context, d *model.Dealer) error {
	return r.db.WithContext(ctx).Save(d).Error
}
