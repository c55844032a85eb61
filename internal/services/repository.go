package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/serviprohq/servipro-backend/pkg/db/models"
	"github.com/serviprohq/servipro-backend/pkg/pagination"
)

const listingColumns = "s.id, s.user_id, s.title, s.description, s.category, s.price, s.location, s.image_path, s.created_at, s.updated_at, u.name AS owner_name"

// Repository wires together listing persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new listing row.
func (r *Repository) Create(ctx context.Context, svc *models.Service) (*models.Service, error) {
	if err := r.db.WithContext(ctx).Create(svc).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

// FindByID loads the listing without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	if err := r.db.WithContext(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// FindDetail loads the listing together with its owner's display name.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*listingRecord, error) {
	var record listingRecord
	err := r.db.WithContext(ctx).
		Table("services s").
		Select(listingColumns).
		Joins("JOIN users u ON u.id = s.user_id").
		Where("s.id = ?", id).
		Take(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Save updates an existing listing row.
func (r *Repository) Save(ctx context.Context, svc *models.Service) (*models.Service, error) {
	if err := r.db.WithContext(ctx).Save(svc).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

// Delete removes a listing by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Service{}).Error
}

type listQuery struct {
	Filters    ListFilters
	Sort       ListSort
	Pagination pagination.Params
	OwnerID    *uuid.UUID
}

// List returns one page of listings plus the total row count for the query.
func (r *Repository) List(ctx context.Context, query listQuery) ([]listingRecord, int64, error) {
	var total int64
	if err := r.applyListConditions(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	qb := r.applyListConditions(ctx, query).
		Select(listingColumns).
		Order(query.Sort.orderClause()).
		Offset(query.Pagination.Offset()).
		Limit(query.Pagination.PerPage)

	var records []listingRecord
	if err := qb.Scan(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *Repository) applyListConditions(ctx context.Context, query listQuery) *gorm.DB {
	qb := r.db.WithContext(ctx).
		Table("services s").
		Joins("JOIN users u ON u.id = s.user_id")

	if query.OwnerID != nil {
		qb = qb.Where("s.user_id = ?", *query.OwnerID)
	}
	if query.Filters.Category != nil {
		qb = qb.Where("s.category = ?", *query.Filters.Category)
	}
	if search := strings.TrimSpace(query.Filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(s.title) LIKE ? OR LOWER(s.description) LIKE ? OR LOWER(u.name) LIKE ?)", pattern, pattern, pattern)
	}
	return qb
}

// Latest returns the newest listings up to the provided limit.
func (r *Repository) Latest(ctx context.Context, limit int, ownerID *uuid.UUID) ([]listingRecord, error) {
	qb := r.db.WithContext(ctx).
		Table("services s").
		Select(listingColumns).
		Joins("JOIN users u ON u.id = s.user_id")
	if ownerID != nil {
		qb = qb.Where("s.user_id = ?", *ownerID)
	}

	var records []listingRecord
	err := qb.Order("s.created_at DESC, s.id DESC").Limit(limit).Scan(&records).Error
	return records, err
}

// Count returns the total number of listings.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Service{}).Count(&count).Error
	return count, err
}

// CountByOwner returns the number of listings a user owns.
func (r *Repository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("user_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

// CountRecentByOwner counts the owner's listings created after the cutoff.
func (r *Repository) CountRecentByOwner(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("user_id = ? AND created_at >= ?", ownerID, since).
		Count(&count).Error
	return count, err
}

// CountWithImageByOwner counts the owner's listings that carry an image.
func (r *Repository) CountWithImageByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("user_id = ? AND image_path IS NOT NULL AND image_path <> ''", ownerID).
		Count(&count).Error
	return count, err
}

// CountDistinctCategories counts how many categories currently have listings.
func (r *Repository) CountDistinctCategories(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Distinct("category").
		Count(&count).Error
	return count, err
}

type listingRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	Location    *string
	ImagePath   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OwnerName   string
}
