package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/serviprohq/servipro-backend/pkg/db"
	"github.com/serviprohq/servipro-backend/pkg/db/models"
	"github.com/serviprohq/servipro-backend/pkg/enums"
	pkgerrors "github.com/serviprohq/servipro-backend/pkg/errors"
	"github.com/serviprohq/servipro-backend/pkg/logger"
	"github.com/serviprohq/servipro-backend/pkg/pagination"
	"github.com/serviprohq/servipro-backend/pkg/postcommit"
	"github.com/serviprohq/servipro-backend/pkg/storage/local"
)

// PublicPageSize is the browse page size.
const PublicPageSize = 12

// OwnedPageSize is the page size for a user's own listings.
const OwnedPageSize = 10

const imageKind = "services"

var (
	priceMin = decimal.RequireFromString("0.01")
	priceMax = decimal.RequireFromString("999999.99")
)

// Service exposes listing management operations. Every mutating operation
// takes the acting user explicitly; there is no ambient identity.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*ServiceDTO, error)
	Update(ctx context.Context, actorID, serviceID uuid.UUID, input UpdateInput) (*ServiceDTO, error)
	Delete(ctx context.Context, actorID, serviceID uuid.UUID) error
	Get(ctx context.Context, serviceID uuid.UUID) (*ServiceDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*ListResult, error)
	Home(ctx context.Context) (*HomeSummary, error)
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*DashboardSummary, error)
}

// ImageUpload carries a validated image stream ready for storage.
type ImageUpload struct {
	Reader io.Reader
	Ext    string
}

// CreateInput holds the payload to publish a listing.
type CreateInput struct {
	Title       string
	Description string
	Category    enums.ServiceCategory
	Price       decimal.Decimal
	Location    *string
	Image       *ImageUpload
}

// UpdateInput holds optional mutation values for a listing. Nil fields are
// left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *enums.ServiceCategory
	Price       *decimal.Decimal
	Location    *string
	Image       *ImageUpload
}

// HomeSummary is the public landing payload.
type HomeSummary struct {
	Featured   []ServiceDTO `json:"featured"`
	Services   int64        `json:"services"`
	Users      int64        `json:"users"`
	Categories int64        `json:"categories"`
}

// DashboardSummary aggregates a user's own listing activity.
type DashboardSummary struct {
	Total     int64        `json:"total"`
	Recent    int64        `json:"recent"`
	WithImage int64        `json:"with_image"`
	Latest    []ServiceDTO `json:"latest"`
}

type fileStore interface {
	Save(ctx context.Context, r io.Reader, kind, ext string) (string, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	store    fileStore
	users    userCounter
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a listing service instance.
func NewService(repo *Repository, dbClient *db.Client, store fileStore, users userCounter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if store == nil {
		return nil, fmt.Errorf("file store required")
	}
	if users == nil {
		return nil, fmt.Errorf("user counter required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		store:    store,
		users:    users,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create publishes a new listing owned by the acting user.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*ServiceDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}

	title := normalizeText(input.Title)
	description := normalizeText(input.Description)
	location := normalizeOptionalText(input.Location)

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	// The file lands on disk before the row exists; a failed insert removes it
	// so storage never leaks orphans.
	imagePath, err := s.saveImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	svc := &models.Service{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Category:    input.Category,
		Price:       input.Price,
		Location:    location,
		ImagePath:   imagePath,
	}

	if _, err := s.repo.Create(ctx, svc); err != nil {
		s.discardImage(ctx, imagePath)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert service")
	}

	return s.loadDTO(ctx, svc.ID)
}

// Update applies a partial edit to a listing the actor owns.
func (s *service) Update(ctx context.Context, actorID, serviceID uuid.UUID, input UpdateInput) (*ServiceDTO, error) {
	svc, err := s.loadOwned(ctx, actorID, serviceID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := normalizeText(*input.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		svc.Title = title
	}
	if input.Description != nil {
		description := normalizeText(*input.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		svc.Description = description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		svc.Category = *input.Category
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		svc.Price = *input.Price
	}
	// A location that collapses to empty is dropped, not written as NULL.
	if location := normalizeOptionalText(input.Location); location != nil {
		if err := validateLocation(location); err != nil {
			return nil, err
		}
		svc.Location = location
	}

	previousImage := svc.ImagePath
	newImage, err := s.saveImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}
	if newImage != nil {
		svc.ImagePath = newImage
	}

	queue := postcommit.New()
	if newImage != nil {
		s.queueImageDelete(queue, previousImage)
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Save(ctx, svc); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update service")
		}
		return nil
	})
	if err != nil {
		queue.Discard()
		s.discardImage(ctx, newImage)
		return nil, err
	}

	queue.Drain(ctx)
	return s.loadDTO(ctx, svc.ID)
}

// Delete removes a listing the actor owns. The stored image is cleaned up
// after the row is gone, best effort.
func (s *service) Delete(ctx context.Context, actorID, serviceID uuid.UUID) error {
	svc, err := s.loadOwned(ctx, actorID, serviceID)
	if err != nil {
		return err
	}

	queue := postcommit.New()
	s.queueImageDelete(queue, svc.ImagePath)

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, serviceID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete service")
		}
		return nil
	})
	if err != nil {
		queue.Discard()
		return err
	}

	queue.Drain(ctx)
	return nil
}

// Get returns any listing by id.
func (s *service) Get(ctx context.Context, serviceID uuid.UUID) (*ServiceDTO, error) {
	return s.loadDTO(ctx, serviceID)
}

// List returns one public browse page.
func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	params := input.Pagination.Normalize(PublicPageSize)

	records, total, err := s.repo.List(ctx, listQuery{
		Filters:    input.Filters,
		Sort:       input.Sort,
		Pagination: params,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list services")
	}

	return &ListResult{
		Services: s.toDTOs(records),
		Page:     pagination.NewPage(params, total),
	}, nil
}

// ListOwned returns one page of the acting user's listings, latest first.
func (s *service) ListOwned(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	normalized := params.Normalize(OwnedPageSize)

	records, total, err := s.repo.List(ctx, listQuery{
		Sort:       SortLatest,
		Pagination: normalized,
		OwnerID:    &ownerID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list own services")
	}

	return &ListResult{
		Services: s.toDTOs(records),
		Page:     pagination.NewPage(normalized, total),
	}, nil
}

// Home assembles the public landing payload.
func (s *service) Home(ctx context.Context) (*HomeSummary, error) {
	featured, err := s.repo.Latest(ctx, 6, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: latest services")
	}
	serviceCount, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count services")
	}
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count users")
	}
	categoryCount, err := s.repo.CountDistinctCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count categories")
	}

	return &HomeSummary{
		Featured:   s.toDTOs(featured),
		Services:   serviceCount,
		Users:      userCount,
		Categories: categoryCount,
	}, nil
}

// Dashboard aggregates the acting user's listing stats.
func (s *service) Dashboard(ctx context.Context, ownerID uuid.UUID) (*DashboardSummary, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}

	total, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count own services")
	}
	recent, err := s.repo.CountRecentByOwner(ctx, ownerID, s.now().Add(-RecentWindow))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count recent services")
	}
	withImage, err := s.repo.CountWithImageByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count services with image")
	}
	latest, err := s.repo.Latest(ctx, 5, &ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: latest own services")
	}

	return &DashboardSummary{
		Total:     total,
		Recent:    recent,
		WithImage: withImage,
		Latest:    s.toDTOs(latest),
	}, nil
}

func (s *service) loadOwned(ctx context.Context, actorID, serviceID uuid.UUID) (*models.Service, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	svc, err := s.repo.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load service")
	}
	if svc.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "service does not belong to user")
	}
	return svc, nil
}

func (s *service) loadDTO(ctx context.Context, serviceID uuid.UUID) (*ServiceDTO, error) {
	record, err := s.repo.FindDetail(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load service detail")
	}
	dto := record.toDTO(s.now(), s.store.PublicURL)
	return &dto, nil
}

func (s *service) toDTOs(records []listingRecord) []ServiceDTO {
	now := s.now()
	out := make([]ServiceDTO, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDTO(now, s.store.PublicURL))
	}
	return out
}

func (s *service) saveImage(ctx context.Context, upload *ImageUpload) (*string, error) {
	if upload == nil {
		return nil, nil
	}
	path, err := s.store.Save(ctx, upload.Reader, imageKind, upload.Ext)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage: save image")
	}
	return &path, nil
}

func (s *service) discardImage(ctx context.Context, path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := s.store.Delete(ctx, *path); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to remove orphaned image")
	}
}

// queueImageDelete registers a best-effort removal of a local file once the
// surrounding transaction commits. External URLs stored verbatim are skipped.
func (s *service) queueImageDelete(queue *postcommit.Queue, path *string) {
	if path == nil || !local.IsLocal(*path) {
		return
	}
	stored := *path
	queue.Add(func(ctx context.Context) {
		if err := s.store.Delete(ctx, stored); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to remove replaced image")
		}
	})
}

func validateTitle(title string) error {
	runes := len([]rune(title))
	if runes < 3 || runes > 255 {
		return pkgerrors.New(pkgerrors.CodeValidation, "title must be between 3 and 255 characters")
	}
	return nil
}

func validateDescription(description string) error {
	runes := len([]rune(description))
	if runes < 10 || runes > 2000 {
		return pkgerrors.New(pkgerrors.CodeValidation, "description must be between 10 and 2000 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.LessThan(priceMin) || price.GreaterThan(priceMax) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be between 0.01 and 999999.99")
	}
	if price.Exponent() < -2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot have more than two decimal places")
	}
	return nil
}

func validateLocation(location *string) error {
	if location == nil {
		return nil
	}
	if len([]rune(*location)) > 255 {
		return pkgerrors.New(pkgerrors.CodeValidation, "location must be at most 255 characters")
	}
	return nil
}
