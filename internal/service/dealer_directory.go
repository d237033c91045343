package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apperr"
	"github.com/orhanozan33/epicebuhara-sub000/internal/model"
	"github.com/orhanozan33/epicebuhara-sub000/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DealerDirectory resolves dealers and their default discount, reading
// through a Redis cache that dealer updates invalidate.
type DealerDirectory interface {
	GetDealer(ctx context.Context, dealerID uint) (*model.Dealer, error)
	// GetDefaultDiscount returns the dealer's default discount percent;
	// zero means the dealer has none.
	GetDefaultDiscount(ctx context.Context, dealerID uint) (decimal.Decimal, error)
	Invalidate(ctx context.Context, dealerID uint)
}

type dealerDirectory struct {
	repo repository.DealerRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewDealerDirectory caches dealer rows in Redis for ttl. A nil rdb
// disables the cache.
func NewDealerDirectory(repo repository.DealerRepository, rdb *redis.Client, ttl time.Duration) DealerDirectory {
	return &dealerDirectory{repo: repo, rdb: rdb, ttl: ttl}
}

func dealerCacheKey(dealerID uint) string {
	return fmt.Sprintf("dealer:%d", dealerID)
}

// GetDealer reads through the cache; a cache hit skips the database.
func (d *dealerDirectory) GetDealer(ctx context.Context, dealerID uint) (*model.Dealer, error) {
	if dealer, ok := d.cached(ctx, dealerID); ok {
		return dealer, nil
	}

	dealer, err := d.repo.FindByID(ctx, dealerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("dealer %d not found", dealerID)
	}
	if err != nil {
		return nil, err
	}
	d.store(ctx, dealer)
	return dealer, nil
}

func (d *dealerDirectory) GetDefaultDiscount(ctx context.Context, dealerID uint) (decimal.Decimal, error) {
	dealer, err := d.GetDealer(ctx, dealerID)
	if err != nil {
		return decimal.Zero, err
	}
	return dealer.DiscountPercent, nil
}

func (d *dealerDirectory) Invalidate(ctx context.Context, dealerID uint) {
	if d.rdb == nil {
		return
	}
	if err := d.rdb.Del(ctx, dealerCacheKey(dealerID)).Err(); err != nil {
		log.Warn().Err(err).Uint("dealer_id", dealerID).Msg("dealer cache: invalidate failed")
	}
}

func (d *dealerDirectory) cached(ctx context.Context, dealerID uint) (*model.Dealer, bool) {
	if d.rdb == nil {
		return nil, false
	}
	raw, err := d.rdb.Get(ctx, dealerCacheKey(dealerID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Uint("dealer_id", dealerID).Msg("dealer cache: read failed, falling back to database")
		}
		return nil, false
	}
	var dealer model.Dealer
	if err := json.Unmarshal(raw, &dealer); err != nil {
		log.Warn().Err(err).Uint("dealer_id", dealerID).Msg("dealer cache: unreadable entry")
		return nil, false
	}
	return &dealer, true
}

func (d *dealerDirectory) store(ctx context.Context, dealer *model.Dealer) {
	if d.rdb == nil {
		return
	}
	raw, err := json.Marshal(dealer)
	if err != nil {
		return
	}
	if err := d.rdb.Set(ctx, dealerCacheKey(dealer.ID), raw, d.ttl).Err(); err != nil {
		log.Warn().Err(err).Uint("dealer_id", dealer.ID).Msg("dealer cache: write failed")
	}
}
