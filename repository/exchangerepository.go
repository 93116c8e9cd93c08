package repository

import (
	"context"
	"errors"
	"time"

	"github.com/apppanel/apiclient-core/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrExchangeNotFound = errors.New("exchange not found")

type ExchangeRepository interface {
	Save(ctx context.Context, exchange *models.ExchangeDB) error
	Recent(ctx context.Context, limit int) ([]models.ExchangeDB, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ExchangeDB, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

type exchangeRepository struct {
	db *gorm.DB
}

func NewExchangeRepository(db *gorm.DB) ExchangeRepository {
	return &exchangeRepository{
		db: db,
	}
}

// Migrate creates or updates the journal table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ExchangeDB{})
}

func (r *exchangeRepository) Save(ctx context.Context, exchange *models.ExchangeDB) error {
	if err := r.db.WithContext(ctx).Create(exchange).Error; err != nil {
		log.Error().
			Err(err).
			Str("method", exchange.Method).
			Str("url", exchange.URL).
			Msg("Failed to store exchange")
		return err
	}
	return nil
}

func (r *exchangeRepository) Recent(ctx context.Context, limit int) ([]models.ExchangeDB, error) {
	if limit <= 0 {
		limit = 50
	}

	var exchanges []models.ExchangeDB
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&exchanges).Error
	if err != nil {
		log.Error().
			Err(err).
			Int("limit", limit).
			Msg("Failed to list recent exchanges")
		return nil, err
	}
	return exchanges, nil
}

func (r *exchangeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ExchangeDB, error) {
	var exchange models.ExchangeDB

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&exchange).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug().
				Str("id", id.String()).
				Msg("Exchange not found in journal")
			return nil, ErrExchangeNotFound
		}
		return nil, err
	}
	return &exchange, nil
}

func (r *exchangeRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.ExchangeDB{})
	if result.Error != nil {
		return 0, result.Error
	}

	log.Debug().
		Int64("rows", result.RowsAffected).
		Time("before", before).
		Msg("Purged journal")
	return result.RowsAffected, nil
}
