package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/serviprohq/servipro-backend/pkg/enums"
)

// Service represents a published service listing.
type Service struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	User        *User                 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Title       string                `gorm:"column:title;not null"`
	Description string                `gorm:"column:description;not null"`
	Category    enums.ServiceCategory `gorm:"column:category;not null"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	Location    *string               `gorm:"column:location"`
	ImagePath   *string               `gorm:"column:image_path"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
