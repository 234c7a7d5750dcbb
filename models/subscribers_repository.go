package models

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

func (s *Subscriber) TableName() string {
	return "newsletter_subscribers"
}

type SubscribersRepository struct {
	db *gorm.DB
}

func NewSubscribersRepository(db *gorm.DB) *SubscribersRepository {
	return &SubscribersRepository{db: db}
}

// Subscribe records email as a newsletter recipient. Subscribing an address
// twice succeeds without creating a second row.
func (r *SubscribersRepository) Subscribe(ctx context.Context, email string) error {
	subscriber := Subscriber{Email: strings.ToLower(strings.TrimSpace(email))}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&subscriber).Error
}
