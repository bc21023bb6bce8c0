package persistence

import (
	"context"
	"errors"

	"github.com/ryznreal/offers/internal/domain/listing"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/ryznreal/offers/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// propertyBatchSize bounds the rows of one INSERT statement
const propertyBatchSize = 200

// GormPropertyRepository implements listing.PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindAll returns every standalone property, highest position first
func (r *GormPropertyRepository) FindAll(ctx context.Context) ([]listing.Property, error) {
	var rows []models.PropertyModel
	if err := r.db.WithContext(ctx).Order("position DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	props := make([]listing.Property, len(rows))
	for i := range rows {
		props[i] = rows[i].ToDomain()
	}
	return props, nil
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id string) (*listing.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	prop := model.ToDomain()
	return &prop, nil
}

// SaveBatch stores props above every existing position. The first
// element gets the highest position so the batch lists in input order.
func (r *GormPropertyRepository) SaveBatch(ctx context.Context, props []listing.Property) error {
	if len(props) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var top int64
		if err := tx.Model(&models.PropertyModel{}).
			Select("COALESCE(MAX(position), 0)").
			Scan(&top).Error; err != nil {
			return err
		}

		rows := make([]*models.PropertyModel, len(props))
		for i, p := range props {
			rows[i] = models.PropertyModelFromDomain(p)
			rows[i].Position = top + int64(len(props)-i)
		}
		if err := tx.CreateInBatches(rows, propertyBatchSize).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError(shared.CodeAlreadyExists, "A property with this ID already exists")
			}
			return err
		}
		return nil
	})
}

// Delete removes a property, returning shared.ErrNotFound when absent
func (r *GormPropertyRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.PropertyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPropertyRepository implements PropertyRepository
var _ listing.PropertyRepository = (*GormPropertyRepository)(nil)
